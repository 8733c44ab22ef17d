package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
	"github.com/custodia-labs/flowwatch/internal/core/ports/driven"
)

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.prompts[name], nil
}

// chatRecorder captures requests to the fake completion endpoint.
type chatRecorder struct {
	mu       sync.Mutex
	requests []map[string]any
	auth     string
}

func (r *chatRecorder) last() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[len(r.requests)-1]
}

func newChatServer(t *testing.T, status int, content string) (*httptest.Server, *chatRecorder) {
	t.Helper()
	rec := &chatRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		rec.mu.Lock()
		rec.requests = append(rec.requests, body)
		rec.auth = r.Header.Get("Authorization")
		rec.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded","type":"insufficient_quota"}}`))
			return
		}
		resp := map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"model":   "deepseek-chat",
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": content}, "finish_reason": "stop"}},
			"usage":   map[string]any{"prompt_tokens": 100, "completion_tokens": 50, "total_tokens": 150},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func testInput() domain.AnalysisInput {
	return domain.AnalysisInput{
		Snapshot: &domain.Snapshot{
			ID:           3,
			TotalScore:   620,
			FlowLevel:    "high",
			SuccessCount: 20,
			HotTopics: []domain.HotTopic{
				{Topic: "降息", Heat: 95, CrossPlatform: 4},
				{Topic: "芯片", Heat: 80, CrossPlatform: 3},
			},
			RelevantRecords: []domain.RelevantRecord{
				{Record: domain.Record{Title: "央行宣布降息"}},
			},
		},
		Model: &domain.ModelResult{
			Viral:    domain.ViralResult{K: 1.4},
			FlowType: domain.FlowTypeResult{Type: domain.FlowTypeIncremental},
		},
		Sentiment: &domain.SentimentResult{
			Index: 72,
			Class: domain.SentimentOptimistic,
			Stage: domain.StageResult{Stage: domain.StageAcceleration, Signal: domain.SignalParticipate},
			Risk:  domain.RiskAssessment{Score: 4, Level: "medium"},
		},
	}
}

const validAnswer = `{"affected_sectors":["银行","地产"],"recommended_stocks":["600036"],
"risk_level":"中","risk_factors":["政策落地不及预期"],"advice":"持有","confidence":0.8,"summary":"降息利好金融板块"}`

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAnalyzerUnavailable)
}

func TestNew_Defaults(t *testing.T) {
	a, err := New(Config{APIKey: "sk-test"}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, a.Model())
}

func TestAnalyze_Success(t *testing.T) {
	srv, rec := newChatServer(t, http.StatusOK, validAnswer)

	a, err := New(Config{APIKey: "sk-test", BaseURL: srv.URL + "/", Model: "deepseek-chat", Timeout: 5 * time.Second}, nil)
	require.NoError(t, err)

	result, err := a.Analyze(context.Background(), testInput())
	require.NoError(t, err)

	assert.Equal(t, []string{"银行", "地产"}, result.AffectedSectors)
	assert.Equal(t, []string{"600036"}, result.RecommendedStocks)
	assert.Equal(t, "中", result.RiskLevel)
	assert.Equal(t, []string{"政策落地不及预期"}, result.RiskFactors)
	assert.Equal(t, "持有", result.Advice)
	assert.InDelta(t, 0.8, result.Confidence, 1e-9)
	assert.Equal(t, "降息利好金融板块", result.Summary)

	assert.Equal(t, "Bearer sk-test", rec.auth)
	req := rec.last()
	assert.Equal(t, "deepseek-chat", req["model"])
	assert.Equal(t, map[string]any{"type": "json_object"}, req["response_format"])

	messages, ok := req["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	user := messages[1].(map[string]any)["content"].(string)
	assert.Contains(t, user, `"flow_score": 620`)
	assert.Contains(t, user, "降息")
	assert.Contains(t, user, "央行宣布降息")
	assert.Contains(t, user, `"flow_stage": "acceleration"`)
	assert.NotContains(t, user, "%s")
}

func TestAnalyze_UsesPromptStore(t *testing.T) {
	srv, rec := newChatServer(t, http.StatusOK, validAnswer)
	store := &mockPromptStore{prompts: map[string]string{
		driven.PromptAnalysisSystem: "custom system",
		driven.PromptAnalysisUser:   "custom user 100%% sure: %s",
	}}

	a, err := New(Config{APIKey: "sk-test", BaseURL: srv.URL}, store)
	require.NoError(t, err)

	_, err = a.Analyze(context.Background(), testInput())
	require.NoError(t, err)

	messages := rec.last()["messages"].([]any)
	assert.Equal(t, "custom system", messages[0].(map[string]any)["content"])
	user := messages[1].(map[string]any)["content"].(string)
	assert.True(t, strings.HasPrefix(user, "custom user 100%% sure: {"))
}

func TestAnalyze_PromptStoreFallbacks(t *testing.T) {
	tests := []struct {
		name  string
		store *mockPromptStore
	}{
		{"store error", &mockPromptStore{err: errors.New("disk gone")}},
		{"missing placeholder", &mockPromptStore{prompts: map[string]string{
			driven.PromptAnalysisUser: "no placeholder here",
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, rec := newChatServer(t, http.StatusOK, validAnswer)
			a, err := New(Config{APIKey: "sk-test", BaseURL: srv.URL}, tt.store)
			require.NoError(t, err)

			_, err = a.Analyze(context.Background(), testInput())
			require.NoError(t, err)

			messages := rec.last()["messages"].([]any)
			assert.Equal(t, defaultSystemPrompt, messages[0].(map[string]any)["content"])
			user := messages[1].(map[string]any)["content"].(string)
			assert.Contains(t, user, `"flow_score": 620`)
		})
	}
}

func TestAnalyze_APIError(t *testing.T) {
	srv, _ := newChatServer(t, http.StatusTooManyRequests, "")

	a, err := New(Config{APIKey: "sk-test", BaseURL: srv.URL}, nil)
	require.NoError(t, err)

	_, err = a.Analyze(context.Background(), testInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat completion")
}

func TestAnalyze_NoSnapshot(t *testing.T) {
	a, err := New(Config{APIKey: "sk-test", BaseURL: "http://127.0.0.1:1"}, nil)
	require.NoError(t, err)

	_, err = a.Analyze(context.Background(), domain.AnalysisInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParseResult(t *testing.T) {
	tests := []struct {
		name           string
		content        string
		wantErr        bool
		wantConfidence float64
	}{
		{"plain", `{"advice":"观望","confidence":0.6}`, false, 0.6},
		{"code fence", "```json\n{\"advice\":\"观望\",\"confidence\":0.5}\n```", false, 0.5},
		{"percent scale", `理由如下 {"advice":"买入","confidence":75} 完毕`, false, 0.75},
		{"clamped", `{"confidence":-3}`, false, 0},
		{"no object", "I cannot help with that", true, 0},
		{"broken json", `{"advice": }`, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseResult(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.wantConfidence, got.Confidence, 1e-9)
		})
	}
}

func TestBuildContext_Limits(t *testing.T) {
	input := testInput()
	for i := 0; i < 30; i++ {
		input.Snapshot.HotTopics = append(input.Snapshot.HotTopics, domain.HotTopic{Topic: "t"})
		input.Snapshot.RelevantRecords = append(input.Snapshot.RelevantRecords, domain.RelevantRecord{})
	}
	input.Model = nil
	input.Sentiment = nil

	c := buildContext(input)
	assert.Len(t, c.HotTopics, maxContextTopics)
	assert.Len(t, c.Headlines, maxContextHeadlines)
	assert.Empty(t, c.Stage)
	assert.Zero(t, c.ViralK)
}
