package leetcode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/leetscope/leetscope/internal/domain/shared"
	"github.com/leetscope/leetscope/pkg/circuitbreaker"
	"github.com/leetscope/leetscope/pkg/logger"
	"github.com/leetscope/leetscope/pkg/metrics"
	"github.com/leetscope/leetscope/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Browser-like headers. The endpoint rejects requests that do not look
// like they come from the leetcode.com frontend.
const (
	headerUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"
	headerReferer   = "https://leetcode.com"
	headerOrigin    = "https://leetcode.com"
)

// defaultContestPageSize mirrors the page size the leetcode.com frontend
// requests for the past-contest listing.
const defaultContestPageSize = 10

// ClientConfig contains configuration for the LeetCode API client.
type ClientConfig struct {
	// BaseURL is the GraphQL endpoint URL
	BaseURL string

	// Timeout is the HTTP request timeout
	Timeout time.Duration

	// RateLimiterConfig for API rate limiting
	RateLimiterConfig RateLimiterConfig

	// Retry behavior
	MaxRetries     int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration

	// Circuit breaker settings
	CircuitBreakerThreshold   int
	CircuitBreakerTimeout     time.Duration
	CircuitBreakerHalfOpenMax int

	// Logger for structured logging
	Logger *logger.Logger

	// Debug enables debug logging of outgoing requests
	Debug bool
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL:                   baseURL,
		Timeout:                   30 * time.Second,
		RateLimiterConfig:         DefaultRateLimiterConfig(),
		MaxRetries:                3,
		RetryBaseDelay:            1 * time.Second,
		RetryMaxDelay:             30 * time.Second,
		CircuitBreakerThreshold:   3,
		CircuitBreakerTimeout:     60 * time.Second,
		CircuitBreakerHalfOpenMax: 1,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the LeetCode GraphQL API client.
type Client struct {
	config      ClientConfig
	httpClient  *http.Client
	logger      *logger.Logger
	rateLimiter *RateLimiter
	breaker     *circuitbreaker.CircuitBreaker
	retrier     *retry.Retrier
	mapper      *Mapper
}

// NewClient creates a new LeetCode API client.
func NewClient(config ClientConfig) *Client {
	log := config.Logger
	if log == nil {
		log = logger.Default()
	}
	log = log.With(logger.Component("leetcode_client"))

	breaker := circuitbreaker.New(
		"leetcode-api",
		circuitbreaker.WithFailureThreshold(config.CircuitBreakerThreshold),
		circuitbreaker.WithTimeout(config.CircuitBreakerTimeout),
		circuitbreaker.WithMaxHalfOpenRequests(config.CircuitBreakerHalfOpenMax),
		circuitbreaker.WithOnStateChange(func(name string, from, to circuitbreaker.State) {
			metrics.UpdateUpstreamCircuitState(int(to))
			log.Warn("circuit breaker state change",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		}),
	)

	retrier := retry.New(
		retry.WithMaxAttempts(config.MaxRetries),
		retry.WithInitialDelay(config.RetryBaseDelay),
		retry.WithMaxDelay(config.RetryMaxDelay),
	)

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger:      log,
		rateLimiter: NewRateLimiter(config.RateLimiterConfig),
		breaker:     breaker,
		retrier:     retrier,
		mapper:      NewMapper(),
	}
}

// Mapper returns the DTO-to-domain mapper used by this client.
func (c *Client) Mapper() *Mapper {
	return c.mapper
}

// ══════════════════════════════════════════════════════════════════════════════
// CONTEST HISTORY OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// FetchUserContestHistory fetches the full contest history for a user.
// Returns (nil, nil) when the upstream has no history for the user -
// callers treat that as "no data", not as a failure.
func (c *Client) FetchUserContestHistory(ctx context.Context, username string) ([]HistoryItemDTO, error) {
	var response graphqlResponse[historyData]
	err := c.doRequest(ctx, opUserContestHistory, queryUserContestHistory,
		map[string]any{"username": username}, &response)
	if err != nil {
		return nil, fmt.Errorf("fetch contest history: %w", err)
	}

	if len(response.Errors) > 0 {
		// The endpoint reports unknown users through the errors array
		// with a 200 status. Treated as absent data.
		c.logger.Debug("upstream reported errors for contest history",
			logger.Username(username),
			logger.String("error", response.Errors[0].Message),
		)
		return nil, nil
	}

	return response.Data.UserContestRankingHistory, nil
}

// FetchUserRankingSummary fetches the aggregate contest-ranking view of a
// user. Returns (nil, nil) for users who never attended a contest.
func (c *Client) FetchUserRankingSummary(ctx context.Context, username string) (*RankingDTO, error) {
	var response graphqlResponse[rankingData]
	err := c.doRequest(ctx, opUserContestRanking, queryUserContestRanking,
		map[string]any{"username": username}, &response)
	if err != nil {
		return nil, fmt.Errorf("fetch ranking summary: %w", err)
	}

	if len(response.Errors) > 0 {
		return nil, nil
	}

	return response.Data.UserContestRanking, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// PAST CONTEST OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// FetchContestPage fetches one page of the global past-contest listing.
// Pages are 1-based. Returns (nil, nil) when the upstream reports no data.
func (c *Client) FetchContestPage(ctx context.Context, pageNo, numPerPage int) (*ContestPageDTO, error) {
	var response graphqlResponse[pastContestsData]
	err := c.doRequest(ctx, opPastContests, queryPastContests,
		map[string]any{"pageNo": pageNo, "numPerPage": numPerPage}, &response)
	if err != nil {
		return nil, fmt.Errorf("fetch contest page %d: %w", pageNo, err)
	}

	if len(response.Errors) > 0 {
		return nil, nil
	}

	return response.Data.PastContests, nil
}

// FetchAllPastContests walks the paginated global listing starting at
// page 1 and flattens it into one ordered slice, preserving intra-page
// order. The walk is sequential: each request's parameters depend on the
// previous page's reported pagination metadata.
//
// Termination relies solely on the reported current-page/total-pages
// comparison, never on item count, so a short page cannot cause an
// infinite loop. A mid-walk failure or an empty page truncates the
// result rather than failing the whole aggregation.
func (c *Client) FetchAllPastContests(ctx context.Context, pageSize int) ([]PastContestDTO, error) {
	var all []PastContestDTO
	page := 1

	for {
		dto, err := c.FetchContestPage(ctx, page, pageSize)
		if err != nil {
			c.logger.Warn("contest listing truncated",
				logger.Page(page),
				logger.RecordCount(len(all)),
				logger.Err(err),
			)
			break
		}
		if dto == nil || len(dto.Data) == 0 {
			break
		}

		all = append(all, dto.Data...)

		if dto.CurrentPage >= dto.PageNum {
			break
		}
		page++
	}

	return all, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HTTP REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// statusError is an HTTP-level failure from the endpoint.
type statusError struct {
	Code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("leetcode api: status %d", e.Code)
}

// doRequest performs a GraphQL request with rate limiting, circuit
// breaking, and retries.
func (c *Client) doRequest(ctx context.Context, opName, query string, variables map[string]any, result any) error {
	err := c.retrier.Do(ctx, func(ctx context.Context) error {
		// Wait for rate limiter
		if err := c.rateLimiter.Allow(ctx); err != nil {
			metrics.RecordUpstreamRateLimited()
			return retry.Permanent(err)
		}

		start := time.Now()
		err := c.breaker.Execute(ctx, func(ctx context.Context) error {
			return c.doSingleRequest(ctx, opName, query, variables, result)
		})
		metrics.RecordUpstreamRequestDuration(time.Since(start).Seconds())

		if err == nil {
			metrics.RecordUpstreamRequest(opName, "success")
			return nil
		}

		// A tripped breaker will not recover within this retry budget.
		if errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
			metrics.RecordUpstreamRequest(opName, "error")
			return retry.Permanent(err)
		}

		var rateLimitErr *RateLimitError
		if errors.As(err, &rateLimitErr) {
			metrics.RecordUpstreamRequest(opName, "rate_limited")
			c.rateLimiter.RecordRateLimitHit(rateLimitErr.RetryAfter)
			return retry.Retryable(err)
		}

		metrics.RecordUpstreamRequest(opName, "error")
		if c.isRetryable(err) {
			return retry.Retryable(err)
		}
		return retry.Permanent(err)
	})
	if err != nil {
		return shared.WrapError("leetcode", "Request", shared.ErrExternalService, opName+" failed", err)
	}
	return nil
}

// doSingleRequest performs a single GraphQL POST.
func (c *Client) doSingleRequest(ctx context.Context, opName, query string, variables map[string]any, result any) error {
	body, err := json.Marshal(graphqlRequest{
		Query:         query,
		Variables:     variables,
		OperationName: opName,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", headerUserAgent)
	req.Header.Set("Referer", headerReferer)
	req.Header.Set("Origin", headerOrigin)

	if c.config.Debug {
		c.logger.Debug("leetcode api request", logger.Operation(opName))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	// Handle rate limiting
	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := 60 * time.Second
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if seconds, err := strconv.Atoi(ra); err == nil {
				retryAfter = time.Duration(seconds) * time.Second
			}
		}
		return &RateLimitError{
			RetryAfter: retryAfter,
			Message:    "rate limit exceeded",
		}
	}

	if resp.StatusCode >= 400 {
		return &statusError{Code: resp.StatusCode}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return shared.WrapError("leetcode", "Parse", shared.ErrInvalidFormat,
				"unmarshal response", err)
		}
	}

	return nil
}

// isRetryable checks if an error is retryable.
func (c *Client) isRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Server-side failures are retryable, client errors are not.
	var stErr *statusError
	if errors.As(err, &stErr) {
		return stErr.Code >= 500
	}

	// Malformed payloads will not improve on retry.
	if errors.Is(err, shared.ErrInvalidFormat) {
		return false
	}

	// Network-level errors are generally retryable.
	errStr := err.Error()
	return containsAny(errStr, []string{"timeout", "connection refused", "temporary", "reset", "EOF"})
}

// containsAny checks if s contains any of the substrings.
func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if len(s) >= len(sub) && findStr(s, sub) >= 0 {
			return true
		}
	}
	return false
}

// findStr finds substr in s.
func findStr(s, substr string) int {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH AND STATUS
// ══════════════════════════════════════════════════════════════════════════════

// IsHealthy checks if the LeetCode endpoint is reachable.
func (c *Client) IsHealthy(ctx context.Context) bool {
	var response graphqlResponse[map[string]any]
	err := c.doSingleRequest(ctx, "healthProbe", `query healthProbe { __typename }`, nil, &response)
	return err == nil
}

// ClientStatus describes the current state of the client.
type ClientStatus struct {
	RateLimiter    RateLimiterStatus
	CircuitBreaker circuitbreaker.State
	IsHealthy      bool
}

// Status returns the current status of the client.
func (c *Client) Status(ctx context.Context) ClientStatus {
	return ClientStatus{
		RateLimiter:    c.rateLimiter.Status(),
		CircuitBreaker: c.breaker.State(),
		IsHealthy:      c.IsHealthy(ctx),
	}
}

// Reset resets the rate limiter and circuit breaker.
func (c *Client) Reset() {
	c.rateLimiter.Reset()
	c.breaker.Reset()
}
