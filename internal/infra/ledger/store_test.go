package ledger

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), ".fragfusion", "downloads.db"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndLookup(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	e := domain.LedgerEntry{
		Source:      domain.SourceENA,
		Project:     "PRJEB1",
		Run:         "ERR1",
		Path:        "data/raw/cfdna/fastq/ERR1_1.fastq.gz",
		Size:        42,
		Checksum:    "abc",
		CompletedAt: at,
	}
	if err := s.Record(ctx, e); err != nil {
		t.Fatalf("Record error: %v", err)
	}

	got, ok, err := s.Lookup(ctx, e.Path)
	if err != nil || !ok {
		t.Fatalf("Lookup: ok=%v err=%v", ok, err)
	}
	if !got.CompletedAt.Equal(at) {
		t.Fatalf("expected completed_at %v, got %v", at, got.CompletedAt)
	}
	got.CompletedAt = e.CompletedAt
	if got != e {
		t.Fatalf("expected %+v, got %+v", e, got)
	}

	e.Size = 43
	if err := s.Record(ctx, e); err != nil {
		t.Fatalf("Record (update) error: %v", err)
	}
	got, _, _ = s.Lookup(ctx, e.Path)
	if got.Size != 43 {
		t.Fatalf("expected upsert, got size %d", got.Size)
	}

	if _, ok, err := s.Lookup(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing entry: ok=%v err=%v", ok, err)
	}
}

func TestListFiltersBySource(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	entries := []domain.LedgerEntry{
		{Source: domain.SourceNCBI, Project: "PRJNA1", Run: "SRR2", Path: "b", CompletedAt: base.Add(2 * time.Minute)},
		{Source: domain.SourceENA, Project: "PRJEB1", Run: "ERR1", Path: "a", CompletedAt: base.Add(time.Minute)},
		{Source: domain.SourceNCBI, Project: "PRJNA1", Run: "SRR1", Path: "c", CompletedAt: base},
	}
	for _, e := range entries {
		if err := s.Record(ctx, e); err != nil {
			t.Fatalf("Record error: %v", err)
		}
	}

	all, err := s.List(ctx, "")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(all) != 3 || all[0].Path != "c" || all[1].Path != "a" || all[2].Path != "b" {
		t.Fatalf("unexpected order: %+v", all)
	}

	ncbi, err := s.List(ctx, domain.SourceNCBI)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(ncbi) != 2 {
		t.Fatalf("expected 2 ncbi entries, got %d", len(ncbi))
	}
}

func TestConcurrentRecords(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e := domain.LedgerEntry{Source: domain.SourceENA, Project: "P", Run: "R", Path: filepath.Join("f", string(rune('a'+i)))}
			if err := s.Record(ctx, e); err != nil {
				t.Errorf("Record error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	all, err := s.List(ctx, domain.SourceENA)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(all) != 16 {
		t.Fatalf("expected 16 entries, got %d", len(all))
	}
}
