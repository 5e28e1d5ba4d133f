package samplefs

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestWatch_CoalescesEventsAndFollowsNewDirs(t *testing.T) {
	dir := t.TempDir()
	w := &Watcher{Debounce: 20 * time.Millisecond}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changes := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, dir, func() error {
			changes <- struct{}{}
			return nil
		})
	}()

	// Give the watcher time to register the tree.
	time.Sleep(100 * time.Millisecond)
	touch(t, filepath.Join(dir, "nested", "s1.fastq.gz"), "x")

	select {
	case <-changes:
	case <-ctx.Done():
		t.Fatalf("no change reported")
	}

	time.Sleep(100 * time.Millisecond)
	touch(t, filepath.Join(dir, "nested", "s2.fastq.gz"), "x")
	select {
	case <-changes:
	case <-ctx.Done():
		t.Fatalf("no change reported for new subdirectory")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Watch returned %v", err)
	}
}

func TestWatch_CallbackErrorStops(t *testing.T) {
	dir := t.TempDir()
	w := &Watcher{Debounce: 10 * time.Millisecond}
	boom := errors.New("boom")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, dir, func() error { return boom })
	}()

	time.Sleep(100 * time.Millisecond)
	touch(t, filepath.Join(dir, "s.fastq.gz"), "x")

	select {
	case err := <-done:
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
	case <-ctx.Done():
		t.Fatalf("watch did not stop")
	}
}
