package dailynews

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
	"github.com/custodia-labs/flowwatch/internal/core/ports/driven"
	"github.com/custodia-labs/flowwatch/internal/logger"
)

const (
	// DefaultBaseURL is the public aggregation endpoint.
	DefaultBaseURL = "https://newsapi.ws4.cn/api/v1/dailynews"

	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 10 * time.Second

	// maxBodyBytes caps how much of a response is read.
	maxBodyBytes = 8 << 20

	statusOK = "200"
)

// Ensure Client implements the interface.
var _ driven.SourceFetcher = (*Client)(nil)

// Client fetches one platform's hot list per call.
type Client struct {
	http    *http.Client
	baseURL string
	log     *slog.Logger
}

// New creates a client. Empty baseURL and zero timeout select the defaults.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     logger.Component("dailynews"),
	}
}

// envelope is the API response wrapper.
type envelope struct {
	Status string `json:"status"`
	Data   []item `json:"data"`
	Msg    string `json:"msg"`
}

type item struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	URL         string   `json:"url"`
	Source      string   `json:"source"`
	PublishTime string   `json:"publish_time"`
	HotValue    hotValue `json:"hot_value,omitempty"`
}

// hotValue accepts a number or a numeric string with an optional unit
// suffix such as "1.2万" or "345k". Anything else decodes to zero.
type hotValue int64

func (h *hotValue) UnmarshalJSON(data []byte) error {
	*h = hotValue(parseHotValue(strings.Trim(string(data), `"`)))
	return nil
}

// hotUnits maps a trailing unit to its multiplier.
var hotUnits = map[string]float64{
	"万": 1e4,
	"w": 1e4,
	"W": 1e4,
	"亿": 1e8,
	"k": 1e3,
	"K": 1e3,
	"m": 1e6,
	"M": 1e6,
}

func parseHotValue(raw string) int64 {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(raw, "+")
	raw = strings.ReplaceAll(raw, ",", "")
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v
	}

	mult := 1.0
	for unit, m := range hotUnits {
		if strings.HasSuffix(raw, unit) {
			raw = strings.TrimSpace(strings.TrimSuffix(raw, unit))
			mult = m
			break
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int64(math.Round(f * mult))
}

// Fetch requests the source's hot list.
func (c *Client) Fetch(ctx context.Context, source domain.Source) ([]domain.Record, error) {
	if source.ID == "" {
		return nil, malformed(source.ID, ErrEmptyPlatform)
	}

	endpoint := c.baseURL + "/?platform=" + url.QueryEscape(source.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, malformed(source.ID, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classify(source.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, malformed(source.ID, &APIError{StatusCode: resp.StatusCode})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, classify(source.ID, fmt.Errorf("read body: %w", err))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, malformed(source.ID, fmt.Errorf("decode response: %w", err))
	}
	if env.Status != statusOK {
		return nil, malformed(source.ID, &APIError{Status: env.Status, Message: env.Msg})
	}

	records := make([]domain.Record, 0, len(env.Data))
	for i, it := range env.Data {
		records = append(records, toRecord(it, i+1, source))
	}

	c.log.Debug("platform fetched",
		"platform", source.ID,
		"items", len(records),
		"elapsed", time.Since(start))
	return records, nil
}

// toRecord converts an API item and attaches the category extension.
func toRecord(it item, rank int, source domain.Source) domain.Record {
	r := domain.Record{
		Title:       strings.TrimSpace(it.Title),
		Body:        plainText(it.Content),
		URL:         strings.TrimSpace(it.URL),
		Origin:      strings.TrimSpace(it.Source),
		PublishTime: strings.TrimSpace(it.PublishTime),
		Rank:        rank,
		SourceID:    source.ID,
		Category:    source.Category,
	}

	switch source.Category {
	case domain.CategoryFinance:
		if codes := tickers(r.Title + " " + r.Body); len(codes) > 0 {
			r.Finance = &domain.FinanceExtension{Tickers: codes}
		}
	case domain.CategorySocial:
		if it.HotValue > 0 {
			r.Social = &domain.SocialExtension{HotValue: int64(it.HotValue)}
		}
	}
	return r
}
