package cricketfeed

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/crichq/standings/internal/domain/match"
	"github.com/crichq/standings/internal/domain/series"
	"github.com/crichq/standings/internal/platform/logging"
	"github.com/crichq/standings/internal/platform/resilience"
	"github.com/crichq/standings/internal/usecase"
)

const defaultBaseURL = "https://api.cricketfeed.io/v1"

var apiKeyParamRegex = regexp.MustCompile(`apikey=[^&\s"']+`)
var errFeedTransient = crerr.New("cricket feed transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the upstream cricket data feed and returns domain records.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// FetchSeriesByID looks a series up by its upstream identifier. A 404 from
// the feed reports not-found rather than an error so callers can fall
// through to the next resolution step.
func (c *Client) FetchSeriesByID(ctx context.Context, id string) (series.Series, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return series.Series{}, false, fmt.Errorf("series id is required")
	}

	var envelope seriesDetailEnvelope
	if err := c.doJSON(ctx, "/series/"+url.PathEscape(id), nil, &envelope); err != nil {
		if stderrors.Is(err, errFeedNotFound) {
			return series.Series{}, false, nil
		}
		return series.Series{}, false, fmt.Errorf("fetch series id=%s: %w", id, err)
	}
	if len(envelope.Data) == 0 {
		return series.Series{}, false, nil
	}

	record := mapSeries(envelope.Data)
	if record.ID == "" {
		record.ID = id
	}
	return record, true, nil
}

// ListSeries fetches the current series listing.
func (c *Client) ListSeries(ctx context.Context) ([]series.Series, error) {
	var envelope seriesListEnvelope
	if err := c.doJSON(ctx, "/series", nil, &envelope); err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}

	out := make([]series.Series, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		record := mapSeries(item)
		if record.ID == "" && record.Name == "" {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

// ListMatches fetches and normalizes the match list for a series. Records
// that cannot name two teams are dropped.
func (c *Client) ListMatches(ctx context.Context, seriesID string) ([]match.Match, error) {
	seriesID = strings.TrimSpace(seriesID)
	if seriesID == "" {
		return nil, fmt.Errorf("series id is required")
	}

	var envelope matchListEnvelope
	if err := c.doJSON(ctx, "/series/"+url.PathEscape(seriesID)+"/matches", nil, &envelope); err != nil {
		return nil, fmt.Errorf("list matches series_id=%s: %w", seriesID, err)
	}

	out := make([]match.Match, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		record, ok := mapMatch(item)
		if !ok {
			continue
		}
		record.SeriesID = seriesID
		out = append(out, record)
	}
	return out, nil
}

var errFeedNotFound = crerr.New("cricket feed resource not found")

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "cricket feed circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: cricket feed is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	if c.apiKey != "" {
		values.Set("apikey", c.apiKey)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	key := path + "?" + values.Encode()
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && stderrors.Is(reqErr, errFeedTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode feed payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errFeedTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errFeedTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if resp.StatusCode == http.StatusNotFound {
				return nil, errFeedNotFound
			} else {
				if isRetryableStatus(resp.StatusCode) {
					lastErr = fmt.Errorf("%w: feed status=%d body=%s", errFeedTransient, resp.StatusCode, abbreviateBody(raw))
				} else {
					return nil, fmt.Errorf("feed status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
				}
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("feed request failed")
	}
	c.logger.WarnContext(ctx, "cricket feed request failed", "url", redactAPIURL(fullURL), "error", lastErr)
	return nil, lastErr
}

func sanitizeSensitiveText(value, apiKey string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if apiKey != "" {
		value = strings.ReplaceAll(value, apiKey, "REDACTED")
	}
	return apiKeyParamRegex.ReplaceAllString(value, "apikey=REDACTED")
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func redactAPIURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := parsed.Query()
	if query.Has("apikey") {
		query.Set("apikey", "REDACTED")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}

type seriesDetailEnvelope struct {
	Data map[string]any `json:"data"`
}

type seriesListEnvelope struct {
	Data []map[string]any `json:"data"`
}

type matchListEnvelope struct {
	Data []map[string]any `json:"data"`
}
