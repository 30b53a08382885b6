// Package feeds implements the Source Clients for the four upstream grid
// telemetry feeds (generation mix, carbon emissions, market price, national
// demand). All outbound HTTP calls are routed through the BaseClient, which
// enforces consistent resilience patterns: circuit breaking, bounded
// timeouts, gzip decoding, and error mapping into the feed failure taxonomy.
//
// A Source Client performs exactly one network round-trip per invocation.
// There is no internal retry: the de facto retry is the next scheduled
// refresh cycle, a policy that belongs to the caller, not the client.
package feeds

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/klauspost/compress/gzip"
	"github.com/sony/gobreaker/v2"

	"gridpulse/internal/types"
)

// maxResponseSize caps upstream response bodies (4 MB). Feeds are small
// JSON/CSV documents; anything larger is a malformed or hostile payload.
const maxResponseSize = 4 << 20

// BaseClient wraps an *http.Client and a circuit breaker to enforce
// consistent behavior on all upstream feed fetches. Each feed client embeds
// a BaseClient with its own breaker so one tripping upstream never blocks
// the others.
type BaseClient struct {
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[*http.Response]
	url       string
	userAgent string
}

// NewBaseClient creates a BaseClient for one fixed upstream URL. breakerName
// identifies the breaker in logs and should match the feed name.
func NewBaseClient(httpClient *http.Client, breakerName, url, userAgent string) *BaseClient {
	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	})

	return &BaseClient{
		client:    httpClient,
		breaker:   cb,
		url:       url,
		userAgent: userAgent,
	}
}

// Get performs one GET round-trip against the client's upstream URL and
// returns the decoded response body.
//
// Failure mapping:
//   - request construction or network failure -> feed_transport_failure
//   - open circuit breaker                    -> feed_transport_failure
//   - non-2xx status                          -> feed_status_failure
//   - unreadable or over-sized body           -> feed_parse_failure
//
// Gzip-encoded responses are decoded transparently. Shape and payload
// validation belong to the per-feed parsers, not here.
func (c *BaseClient) Get(ctx context.Context) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, "", types.NewAppError(types.ErrCodeFeedTransport,
			fmt.Sprintf("building request for %s feed", c.breaker.Name()), err)
	}
	req.Header.Set("Accept-Encoding", "gzip")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if traceID := types.GetRequestID(ctx); traceID != "" {
		req.Header.Set("X-Request-Id", traceID)
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		r, doErr := c.client.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		// Non-2xx counts as a failure for the breaker; the status itself is
		// classified below.
		if r.StatusCode < 200 || r.StatusCode > 299 {
			return r, fmt.Errorf("upstream returned %d", r.StatusCode)
		}
		return r, nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, "", types.NewAppError(types.ErrCodeFeedTransport,
				fmt.Sprintf("%s feed circuit breaker open", c.breaker.Name()), err)
		}
		if resp != nil {
			defer resp.Body.Close()
			return nil, "", types.NewAppError(types.ErrCodeFeedStatus,
				fmt.Sprintf("%s feed returned status %d", c.breaker.Name(), resp.StatusCode), err)
		}
		return nil, "", types.NewAppError(types.ErrCodeFeedTransport,
			fmt.Sprintf("%s feed request failed", c.breaker.Name()), err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return nil, "", types.NewAppError(types.ErrCodeFeedParse,
			fmt.Sprintf("reading %s feed response body", c.breaker.Name()), err)
	}

	return body, resp.Header.Get("Content-Type"), nil
}

// readBody drains the response body, decoding gzip content when the upstream
// honored the Accept-Encoding header, and enforcing the size cap.
func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body

	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("opening gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	body, err := io.ReadAll(io.LimitReader(reader, maxResponseSize+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxResponseSize {
		return nil, fmt.Errorf("response exceeds %d byte limit", maxResponseSize)
	}
	return body, nil
}
