package bot

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"time"
)

// apiClientOptions tunes the HTTP client used for Telegram API calls.
// Zero values pick defaults.
type apiClientOptions struct {
	Timeout time.Duration
	Retries int
	Backoff time.Duration
}

const (
	apiDialTimeout   = 5 * time.Second
	apiHeaderTimeout = 5 * time.Second
	apiIdleTimeout   = 30 * time.Second
	apiClientTimeout = 30 * time.Second
	apiRetries       = 3
	apiRetryBackoff  = 2 * time.Second
)

// buildHTTPClient returns an HTTP client that retries transient network
// failures below telebot, so flaky connectivity to the API does not bubble
// up as handler errors.
func buildHTTPClient(opts apiClientOptions) *http.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = apiClientTimeout
	}
	if opts.Retries <= 0 {
		opts.Retries = apiRetries
	}
	if opts.Backoff <= 0 {
		opts.Backoff = apiRetryBackoff
	}

	return &http.Client{
		Timeout: opts.Timeout,
		Transport: &retryTransport{
			next: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           (&net.Dialer{Timeout: apiDialTimeout, KeepAlive: apiIdleTimeout}).DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       apiIdleTimeout,
				TLSHandshakeTimeout:   apiDialTimeout,
				ResponseHeaderTimeout: apiHeaderTimeout,
			},
			retries: opts.Retries,
			backoff: opts.Backoff,
		},
	}
}

// retryTransport replays requests that failed with a retryable network error,
// backing off linearly between attempts.
type retryTransport struct {
	next    http.RoundTripper
	retries int
	backoff time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		resp, err := next.RoundTrip(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if attempt == t.retries || !shouldRetry(err) {
			return nil, lastErr
		}

		replay, ok := rewindRequest(req)
		if !ok {
			return nil, lastErr
		}
		req = replay

		if err := sleepBackoff(req.Context(), t.backoff*time.Duration(attempt+1)); err != nil {
			return nil, err
		}
	}
}

// rewindRequest clones the request for another attempt. Requests whose body
// was consumed and cannot be re-read are not replayable.
func rewindRequest(req *http.Request) (*http.Request, bool) {
	clone := req.Clone(req.Context())
	if req.Body == nil {
		return clone, true
	}
	if req.GetBody == nil {
		return nil, false
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	clone.Body = body
	return clone, true
}

func sleepBackoff(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// shouldRetry reports whether a network error is worth retrying. It focuses on
// transient dial/timeout failures produced by net/http while contacting the
// Telegram API.
func shouldRetry(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() || opErr.Op == "dial" {
			return true
		}
		if nested, ok := opErr.Err.(net.Error); ok && nested.Timeout() {
			return true
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true
		}
		if urlErr.Err != nil && !errors.Is(urlErr.Err, err) {
			return shouldRetry(urlErr.Err)
		}
	}

	return false
}
