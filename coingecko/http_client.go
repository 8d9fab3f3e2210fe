package coingecko

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// StatusHandler receives the outcome of HTTP requests, used to feed metrics
type StatusHandler interface {
	// OnRequest handles a request with its status result
	OnRequest(status string)
	// OnRetry handles retry events
	OnRetry()
}

// HTTPClientOptions configures timeout and retry behavior
type HTTPClientOptions struct {
	// RequestTimeout is the total request timeout including reading the body
	RequestTimeout time.Duration
	// RetryBackoff is the fixed wait before the single retry after a 429
	RetryBackoff time.Duration
	LogPrefix    string
}

// DefaultHTTPClientOptions returns the reference timeouts: 10s request
// deadline, 10s backoff before the rate-limit retry
func DefaultHTTPClientOptions() HTTPClientOptions {
	return HTTPClientOptions{
		RequestTimeout: 10 * time.Second,
		RetryBackoff:   10 * time.Second,
		LogPrefix:      "HTTP",
	}
}

// HTTPClientWithRetry wraps an http.Client with status-code branching
// and a single retry on rate limiting.
//
// Retry policy: a 429 response is retried exactly once after a fixed
// backoff; a second 429 is terminal for the call. Timeouts and other
// failures are never retried
type HTTPClientWithRetry struct {
	client        *http.Client
	opts          HTTPClientOptions
	statusHandler StatusHandler
	limiter       *rate.Limiter
	sleep         func(time.Duration)
}

// NewHTTPClientWithRetry creates a new client. handler and limiter may be nil
func NewHTTPClientWithRetry(opts HTTPClientOptions, handler StatusHandler, limiter *rate.Limiter) *HTTPClientWithRetry {
	return &HTTPClientWithRetry{
		client: &http.Client{
			Timeout: opts.RequestTimeout,
		},
		opts:          opts,
		statusHandler: handler,
		limiter:       limiter,
		sleep:         time.Sleep,
	}
}

// NewRateLimiter builds a limiter from a requests-per-minute budget
func NewRateLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 5)
}

// ExecuteRequest executes the request, retrying once on a 429
func (c *HTTPClientWithRetry) ExecuteRequest(req *http.Request) ([]byte, error) {
	body, err := c.attempt(req)

	if ferr := AsFetchError(err); ferr != nil && ferr.Status == http.StatusTooManyRequests {
		log.Printf("%s: rate limited, retrying once after %.0fs",
			c.opts.LogPrefix, c.opts.RetryBackoff.Seconds())
		if c.statusHandler != nil {
			c.statusHandler.OnRetry()
		}
		c.sleep(c.opts.RetryBackoff)

		body, err = c.attempt(req)
	}

	return body, err
}

func (c *HTTPClientWithRetry) attempt(req *http.Request) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			c.onStatus("error")
			return nil, &FetchError{Kind: KindTransport, Err: fmt.Errorf("rate limiter wait failed: %w", err)}
		}
	}

	requestStart := time.Now()
	resp, err := c.client.Do(req)
	requestDuration := time.Since(requestStart)

	if err != nil {
		if isTimeout(err) {
			c.onStatus("timeout")
			return nil, &FetchError{Kind: KindTimeout,
				Err: fmt.Errorf("request timed out after %.2fs: %w", requestDuration.Seconds(), err)}
		}
		c.onStatus("error")
		return nil, &FetchError{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	c.observeLatency(requestDuration)

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			c.onStatus("error")
			return nil, &FetchError{Kind: KindTransport, Err: fmt.Errorf("error reading response: %w", err)}
		}
		c.onStatus("success")
		return body, nil

	case resp.StatusCode == http.StatusUnauthorized:
		c.onStatus("error")
		return nil, &FetchError{Kind: KindUnauthorized, Status: resp.StatusCode,
			Err: fmt.Errorf("unauthorized after %.2fs", requestDuration.Seconds())}

	case resp.StatusCode == http.StatusTooManyRequests:
		c.onStatus("rate_limited")
		retryAfter := resp.Header.Get("Retry-After")
		return nil, &FetchError{Kind: KindHTTP, Status: resp.StatusCode,
			Err: fmt.Errorf("rate limit exceeded, retry after %q", retryAfter)}

	default:
		c.onStatus("error")
		body, _ := io.ReadAll(resp.Body)
		return nil, &FetchError{Kind: KindHTTP, Status: resp.StatusCode,
			Err: fmt.Errorf("request failed with status %d after %.2fs: %s",
				resp.StatusCode, requestDuration.Seconds(), truncateBody(body))}
	}
}

func (c *HTTPClientWithRetry) onStatus(status string) {
	if c.statusHandler != nil {
		c.statusHandler.OnRequest(status)
	}
}

// observeLatency forwards the request duration when the status handler
// can record it
func (c *HTTPClientWithRetry) observeLatency(d time.Duration) {
	if lw, ok := c.statusHandler.(interface{ RecordUpstreamLatency(time.Duration) }); ok {
		lw.RecordUpstreamLatency(d)
	}
}

// isTimeout reports whether the transport error was a deadline expiry
func isTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	for e := err; e != nil; {
		if te, ok := e.(timeout); ok && te.Timeout() {
			return true
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = u.Unwrap()
	}
	return false
}

func truncateBody(body []byte) string {
	const maxLen = 256
	if len(body) > maxLen {
		return string(body[:maxLen]) + "..."
	}
	return string(body)
}
