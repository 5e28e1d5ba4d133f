package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
	"github.com/dhruv-ramu/FragmentFusion/internal/infra/httpclient"
	"github.com/dhruv-ramu/FragmentFusion/internal/infra/logger"
	"github.com/dhruv-ramu/FragmentFusion/internal/ports"
)

// PartSuffix marks an incomplete download next to its destination.
const PartSuffix = ".part"

var errRetry = errors.New("retry")

// Downloader fetches archive files over HTTP(S), resuming partial files
// with Range requests.
type Downloader struct {
	client  *http.Client
	timeout time.Duration
	retries int
	backoff time.Duration
}

var _ ports.Fetcher = (*Downloader)(nil)

type Option func(*Downloader)

// WithClient sets the HTTP client.
func WithClient(c *http.Client) Option {
	return func(d *Downloader) { d.client = c }
}

// WithTimeout bounds each attempt.
func WithTimeout(t time.Duration) Option {
	return func(d *Downloader) { d.timeout = t }
}

// WithRetries sets the retry budget and the initial backoff, doubled after
// every failed attempt.
func WithRetries(n int, backoff time.Duration) Option {
	return func(d *Downloader) {
		d.retries = n
		d.backoff = backoff
	}
}

func NewDownloader(opts ...Option) *Downloader {
	cfg := httpclient.DefaultConfig()
	cfg.Timeout = 0
	d := &Downloader{
		client:  httpclient.New(cfg),
		retries: 3,
		backoff: 2 * time.Second,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Fetch downloads url into dest and returns the final file size. Progress is
// kept in dest+".part" between attempts and runs; dest only appears once the
// transfer is complete.
func (d *Downloader) Fetch(ctx context.Context, url, dest string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, &domain.OpError{Op: "fetch.mkdir", Kind: domain.KindExecution, Path: dest, Err: err}
	}

	part := dest + PartSuffix
	wait := d.backoff
	var lastErr error

	for attempt := 0; attempt <= d.retries; attempt++ {
		if attempt > 0 {
			logger.L().Warn("fetch.retry", "url", url, "attempt", attempt, "error", lastErr)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return 0, ctx.Err()
			case <-timer.C:
			}
			wait *= 2
		}

		err := d.attempt(ctx, url, part)
		if err == nil {
			info, err := os.Stat(part)
			if err != nil {
				return 0, &domain.OpError{Op: "fetch.stat", Kind: domain.KindExecution, Path: part, Err: err}
			}
			if err := os.Rename(part, dest); err != nil {
				return 0, &domain.OpError{Op: "fetch.rename", Kind: domain.KindExecution, Path: dest, Err: err}
			}
			return info.Size(), nil
		}
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		lastErr = err
		if !errors.Is(err, errRetry) {
			break
		}
	}

	return 0, &domain.OpError{Op: "fetch.download", Kind: domain.KindRemote, Path: url, Err: lastErr}
}

// Discard removes dest and any partial download next to it.
func (d *Downloader) Discard(dest string) error {
	for _, p := range []string{dest, dest + PartSuffix} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return &domain.OpError{Op: "fetch.discard", Kind: domain.KindExecution, Path: p, Err: err}
		}
	}
	return nil
}

func (d *Downloader) attempt(ctx context.Context, url, part string) error {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	var offset int64
	if info, err := os.Stat(part); err == nil {
		offset = info.Size()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if offset > 0 {
		req.Header.Set("Range", "bytes="+strconv.FormatInt(offset, 10)+"-")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", errRetry, err)
	}
	defer resp.Body.Close()

	flags := os.O_CREATE | os.O_WRONLY
	switch {
	case resp.StatusCode == http.StatusPartialContent && offset > 0:
		flags |= os.O_APPEND
	case resp.StatusCode == http.StatusOK:
		flags |= os.O_TRUNC
	case resp.StatusCode == http.StatusRequestedRangeNotSatisfiable && offset > 0:
		// The partial file already holds every byte.
		return nil
	case httpclient.Retryable(resp.StatusCode):
		return fmt.Errorf("%w: status %d", errRetry, resp.StatusCode)
	default:
		return fmt.Errorf("status %d: %w", resp.StatusCode, domain.ErrRemote)
	}

	f, err := os.OpenFile(part, flags, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: %v", errRetry, err)
	}
	return f.Close()
}
