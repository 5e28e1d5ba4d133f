package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
)

// DefaultMaxBody caps how much of an archive response is buffered.
const DefaultMaxBody = 64 << 20

// ResponseData is a fully buffered response.
type ResponseData struct {
	Status    int
	Headers   http.Header
	BodyBytes []byte
	Duration  time.Duration
}

// Executor sends archive API requests with a per-attempt timeout and retries
// transient failures.
type Executor struct {
	client  *http.Client
	timeout time.Duration
	retries int
	backoff time.Duration
	maxBody int64
}

type ExecutorOption func(*Executor)

// WithTimeout bounds each attempt, not the whole retry loop.
func WithTimeout(timeout time.Duration) ExecutorOption {
	return func(e *Executor) { e.timeout = timeout }
}

func WithClient(client *http.Client) ExecutorOption {
	return func(e *Executor) { e.client = client }
}

// WithRetries sets how many times a failed attempt is repeated. The wait
// before retry n is n*backoff.
func WithRetries(retries int, backoff time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.retries = retries
		e.backoff = backoff
	}
}

// WithMaxBody caps the buffered body; longer bodies are truncated.
func WithMaxBody(n int64) ExecutorOption {
	return func(e *Executor) { e.maxBody = n }
}

func NewExecutor(opts ...ExecutorOption) *Executor {
	cfg := DefaultConfig()
	e := &Executor{
		client:  New(cfg),
		timeout: cfg.Timeout,
		backoff: time.Second,
		maxBody: DefaultMaxBody,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Do performs a single attempt and buffers the body.
func (e *Executor) Do(ctx context.Context, req *http.Request) (ResponseData, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := e.client.Do(req.WithContext(ctx))
	if err != nil {
		return ResponseData{Duration: time.Since(start)}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBody))
	out := ResponseData{
		Status:    resp.StatusCode,
		Headers:   resp.Header.Clone(),
		BodyBytes: body,
		Duration:  time.Since(start),
	}
	if err != nil {
		return out, fmt.Errorf("read body: %w", err)
	}
	return out, nil
}

// Fetch executes req until it returns a 2xx response or the retry budget
// runs out. Client errors other than 429 are not retried.
func (e *Executor) Fetch(ctx context.Context, req *http.Request) (ResponseData, error) {
	var lastErr error
	for attempt := 0; attempt <= e.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ResponseData{}, ctx.Err()
			case <-time.After(time.Duration(attempt) * e.backoff):
			}
		}

		resp, err := e.Do(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return resp, ctx.Err()
			}
			lastErr = err
			continue
		}
		if resp.Status >= 200 && resp.Status < 300 {
			return resp, nil
		}

		lastErr = fmt.Errorf("%s %s: status %d: %w", req.Method, req.URL.Redacted(), resp.Status, domain.ErrRemote)
		if !Retryable(resp.Status) {
			break
		}
	}

	return ResponseData{}, &domain.OpError{
		Op:   "httpclient.fetch",
		Kind: domain.KindRemote,
		Path: req.URL.Redacted(),
		Err:  lastErr,
	}
}

// Retryable reports whether a response status is worth another attempt.
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
