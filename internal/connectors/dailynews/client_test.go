package dailynews

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
)

var (
	weibo = domain.Source{ID: "weibo", Name: "微博热搜", Category: domain.CategorySocial}
	cls   = domain.Source{ID: "cls", Name: "财联社", Category: domain.CategoryFinance}
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestNew_Defaults(t *testing.T) {
	c := New("", 0)
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, DefaultTimeout, c.http.Timeout)

	c = New("http://example.com/api/", time.Second)
	assert.Equal(t, "http://example.com/api", c.baseURL)
	assert.Equal(t, time.Second, c.http.Timeout)
}

func TestFetch_Success(t *testing.T) {
	var gotPlatform string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPlatform = r.URL.Query().Get("platform")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"200","msg":"","data":[
			{"title":" 热搜一 ","content":"**重要** 消息","url":"https://weibo.com/1","source":"微博","publish_time":"2024-05-01","hot_value":"123456"},
			{"title":"热搜二","hot_value":789},
			{"title":"热搜三","hot_value":"1.2万"},
			{"title":"热搜四","hot_value":"很热"}
		]}`)
	})

	records, err := New(srv.URL, time.Second).Fetch(context.Background(), weibo)
	require.NoError(t, err)
	assert.Equal(t, "weibo", gotPlatform)
	require.Len(t, records, 4)

	first := records[0]
	assert.Equal(t, "热搜一", first.Title)
	assert.Equal(t, "重要 消息", first.Body)
	assert.Equal(t, "https://weibo.com/1", first.URL)
	assert.Equal(t, "微博", first.Origin)
	assert.Equal(t, "2024-05-01", first.PublishTime)
	assert.Equal(t, 1, first.Rank)
	assert.Equal(t, "weibo", first.SourceID)
	assert.Equal(t, domain.CategorySocial, first.Category)
	require.NotNil(t, first.Social)
	assert.Equal(t, int64(123456), first.Social.HotValue)
	assert.Nil(t, first.Finance)

	assert.Equal(t, 2, records[1].Rank)
	require.NotNil(t, records[1].Social)
	assert.Equal(t, int64(789), records[1].Social.HotValue)

	assert.Equal(t, 3, records[2].Rank)
	require.NotNil(t, records[2].Social)
	assert.Equal(t, int64(12000), records[2].Social.HotValue)

	assert.Equal(t, 4, records[3].Rank)
	assert.Nil(t, records[3].Social, "unparseable hot values are dropped")
}

func TestParseHotValue(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
	}{
		{"123456", 123456},
		{"1,234", 1234},
		{"1.2万", 12000},
		{"3亿", 300000000},
		{"345k", 345000},
		{"2.5W", 25000},
		{"1.5M", 1500000},
		{"10万+", 100000},
		{"88.6", 89},
		{"", 0},
		{"很热", 0},
		{"-3", -3},
		{"-2万", 0},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, parseHotValue(tt.raw))
		})
	}
}

func TestFetch_FinanceTickers(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"200","data":[
			{"title":"贵州茅台(600519)涨停","content":"与 000858 同步走强，600519 再创新高"},
			{"title":"央行降息"}
		]}`)
	})

	records, err := New(srv.URL, time.Second).Fetch(context.Background(), cls)
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.NotNil(t, records[0].Finance)
	assert.Equal(t, []string{"600519", "000858"}, records[0].Finance.Tickers)
	assert.Nil(t, records[0].Social)
	assert.Nil(t, records[1].Finance)
}

func TestFetch_EmptyData(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"200","data":[]}`)
	})

	records, err := New(srv.URL, time.Second).Fetch(context.Background(), weibo)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFetch_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantAPI bool
	}{
		{"http error", http.StatusBadGateway, "bad gateway", true},
		{"invalid json", http.StatusOK, "{not json", false},
		{"api status", http.StatusOK, `{"status":"500","msg":"platform unsupported","data":null}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			_, err := New(srv.URL, time.Second).Fetch(context.Background(), weibo)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrSourceMalformed)

			var fe *domain.SourceFetchError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, "weibo", fe.SourceID)

			var apiErr *APIError
			assert.Equal(t, tt.wantAPI, errors.As(err, &apiErr))
		})
	}
}

func TestFetch_Timeout(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	_, err := New(srv.URL, 50*time.Millisecond).Fetch(context.Background(), weibo)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceTimeout)
}

func TestFetch_ContextDeadline(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := New(srv.URL, 5*time.Second).Fetch(ctx, weibo)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceTimeout)
}

func TestFetch_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := New(addr, time.Second).Fetch(context.Background(), weibo)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceConnection)
}

func TestFetch_EmptyPlatform(t *testing.T) {
	_, err := New("http://127.0.0.1:1", time.Second).Fetch(context.Background(), domain.Source{})
	assert.ErrorIs(t, err, ErrEmptyPlatform)
	assert.ErrorIs(t, err, domain.ErrSourceMalformed)
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"plain", "plain"},
		{"# 标题\n\n正文 *强调*", "标题 正文 强调"},
		{"[链接](https://example.com) & more", "链接 & more"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, plainText(tt.in), tt.in)
	}
}

func TestTickers(t *testing.T) {
	assert.Equal(t, []string{"300750", "601318"}, tickers("宁德时代300750 中国平安601318 300750"))
	assert.Nil(t, tickers("无代码 12345 1234567"))
}
