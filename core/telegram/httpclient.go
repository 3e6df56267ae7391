package telegram

import (
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/cotabot/core/logger"
	"github.com/m3rciful/cotabot/core/telegram/netutil"
	"log/slog"
)

// HTTPClientOptions configures outbound Bot API client behavior.
type HTTPClientOptions struct {
	TimeoutSeconds int
	Retries        int
	BackoffMS      int
}

// BuildHTTPClient creates an HTTP client with sane connection pooling and a
// retrying transport for transient network failures.
func BuildHTTPClient(opts HTTPClientOptions) *http.Client {
	timeout := time.Duration(opts.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
	base := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	retries := opts.Retries
	if retries < 0 {
		retries = 0
	}
	backoff := time.Duration(opts.BackoffMS) * time.Millisecond
	if backoff <= 0 {
		backoff = 250 * time.Millisecond
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &retryTransport{
			next:    base,
			retries: retries,
			backoff: backoff,
		},
	}
}

// retryTransport retries idempotent Bot API calls on transient errors.
type retryTransport struct {
	next    http.RoundTripper
	retries int
	backoff time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error

	for attempt := 0; ; attempt++ {
		resp, err = t.next.RoundTrip(req)
		if err == nil || attempt >= t.retries || !netutil.ShouldRetry(err) {
			return resp, err
		}
		if req.Body != nil && req.GetBody == nil {
			// Non-replayable body, cannot retry safely.
			return resp, err
		}
		if req.GetBody != nil {
			body, bodyErr := req.GetBody()
			if bodyErr != nil {
				return resp, err
			}
			req.Body = body
		}

		wait := t.backoff * time.Duration(attempt+1)
		logger.TWire.LogAttrs(req.Context(), slog.LevelDebug, "http.retry",
			slog.Int("attempt", attempt+1),
			slog.String("wait", wait.String()),
			slog.String("err", err.Error()),
		)
		time.Sleep(wait)
	}
}
