package inputs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
)

func TestCheckFile(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "s1.fastq.gz")
	empty := filepath.Join(dir, "s2.fastq.gz")
	if err := os.WriteFile(full, []byte("@r1\nACGT\n+\nIIII\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c := NewChecker()
	if err := c.CheckFile(full); err != nil {
		t.Fatalf("expected valid file, got %v", err)
	}

	cases := map[string]error{
		filepath.Join(dir, "missing.fastq.gz"): ErrMissing,
		dir:                                   ErrIsDirectory,
		empty:                                 ErrEmpty,
	}
	for path, want := range cases {
		err := c.CheckFile(path)
		if !domain.IsKind(err, domain.KindInvalidInput) {
			t.Fatalf("%s: expected KindInvalidInput, got %v", path, err)
		}
		if !errors.Is(err, want) {
			t.Fatalf("%s: expected %v, got %v", path, want, err)
		}
	}
}

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results", "fragmentomics")
	c := NewChecker()
	if err := c.EnsureDir(path); err != nil {
		t.Fatalf("EnsureDir error: %v", err)
	}
	if err := c.EnsureDir(path); err != nil {
		t.Fatalf("EnsureDir should be idempotent: %v", err)
	}
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		t.Fatalf("expected directory, got %v", err)
	}
}
