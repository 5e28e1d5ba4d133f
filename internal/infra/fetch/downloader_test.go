package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
)

const payload = "@read1\nACGT\n+\nIIII\n"

// rangeServer serves payload and honours "bytes=N-" ranges.
func rangeServer(t *testing.T, failFirst int32) (*httptest.Server, *atomic.Int32, *atomic.Value) {
	t.Helper()
	var calls atomic.Int32
	var lastRange atomic.Value
	lastRange.Store("")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n <= failFirst {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		rng := r.Header.Get("Range")
		lastRange.Store(rng)
		if rng == "" {
			_, _ = w.Write([]byte(payload))
			return
		}
		start, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(rng, "bytes="), "-"))
		if err != nil || start > len(payload) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if start == len(payload) {
			w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
			return
		}
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write([]byte(payload[start:]))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls, &lastRange
}

func TestFetch_FullDownload(t *testing.T) {
	srv, _, _ := rangeServer(t, 0)
	dest := filepath.Join(t.TempDir(), "fastq", "ERR1_1.fastq.gz")

	n, err := NewDownloader(WithRetries(0, time.Millisecond)).Fetch(context.Background(), srv.URL, dest)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if n != int64(len(payload)) {
		t.Fatalf("expected %d bytes, got %d", len(payload), n)
	}
	b, _ := os.ReadFile(dest)
	if string(b) != payload {
		t.Fatalf("unexpected content %q", b)
	}
	if _, err := os.Stat(dest + PartSuffix); !os.IsNotExist(err) {
		t.Fatalf("expected part file to be gone")
	}
}

func TestFetch_ResumesPartialFile(t *testing.T) {
	srv, _, lastRange := rangeServer(t, 0)
	dest := filepath.Join(t.TempDir(), "ERR1_1.fastq.gz")
	if err := os.WriteFile(dest+PartSuffix, []byte(payload[:5]), 0o644); err != nil {
		t.Fatalf("write part: %v", err)
	}

	if _, err := NewDownloader().Fetch(context.Background(), srv.URL, dest); err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if got := lastRange.Load().(string); got != "bytes=5-" {
		t.Fatalf("expected range bytes=5-, got %q", got)
	}
	b, _ := os.ReadFile(dest)
	if string(b) != payload {
		t.Fatalf("unexpected content %q", b)
	}
}

func TestFetch_CompletePartFile(t *testing.T) {
	srv, _, _ := rangeServer(t, 0)
	dest := filepath.Join(t.TempDir(), "ERR1_1.fastq.gz")
	if err := os.WriteFile(dest+PartSuffix, []byte(payload), 0o644); err != nil {
		t.Fatalf("write part: %v", err)
	}

	n, err := NewDownloader().Fetch(context.Background(), srv.URL, dest)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if n != int64(len(payload)) {
		t.Fatalf("expected %d bytes, got %d", len(payload), n)
	}
}

func TestFetch_RetriesTransientErrors(t *testing.T) {
	srv, calls, _ := rangeServer(t, 2)
	dest := filepath.Join(t.TempDir(), "f.fastq.gz")

	if _, err := NewDownloader(WithRetries(2, time.Millisecond)).Fetch(context.Background(), srv.URL, dest); err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 calls, got %d", calls.Load())
	}
}

func TestFetch_GivesUpAfterRetries(t *testing.T) {
	srv, calls, _ := rangeServer(t, 10)
	dest := filepath.Join(t.TempDir(), "f.fastq.gz")

	_, err := NewDownloader(WithRetries(1, time.Millisecond)).Fetch(context.Background(), srv.URL, dest)
	if !domain.IsKind(err, domain.KindRemote) {
		t.Fatalf("expected KindRemote, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatalf("destination must not exist after failure")
	}
}

func TestFetch_NotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewDownloader(WithRetries(3, time.Millisecond)).Fetch(context.Background(), srv.URL, filepath.Join(t.TempDir(), "x"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 call, got %d", calls.Load())
	}
}

func TestDiscard(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "bad.fastq.gz")
	for _, p := range []string{dest, dest + PartSuffix} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	d := NewDownloader()
	if err := d.Discard(dest); err != nil {
		t.Fatalf("Discard error: %v", err)
	}
	for _, p := range []string{dest, dest + PartSuffix} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Fatalf("expected %s removed", p)
		}
	}
	if err := d.Discard(dest); err != nil {
		t.Fatalf("Discard of missing file should succeed: %v", err)
	}
}
