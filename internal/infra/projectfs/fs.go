package projectfs

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
	"github.com/dhruv-ramu/FragmentFusion/internal/ports"
)

// FS reads files below a project root for QC checks and result mirroring.
// Paths in and out are relative to the root unless absolute.
type FS struct {
	Root string
}

func New(root string) *FS { return &FS{Root: root} }

var (
	_ ports.ReportSource = (*FS)(nil)
	_ ports.ProjectFiles = (*FS)(nil)
)

// Glob expands every pattern and returns the sorted, deduplicated matches.
// Directories are skipped.
func (s *FS) Glob(patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string

	for _, p := range patterns {
		matches, err := filepath.Glob(s.abs(p))
		if err != nil {
			return nil, &domain.OpError{
				Op:   "projectfs.glob",
				Kind: domain.KindInvalidConfig,
				Path: p,
				Err:  fmt.Errorf("bad glob: %w", err),
			}
		}
		for _, m := range matches {
			if info, err := os.Stat(m); err != nil || info.IsDir() {
				continue
			}
			rel := s.rel(m)
			if !seen[rel] {
				seen[rel] = true
				out = append(out, rel)
			}
		}
	}

	sort.Strings(out)
	return out, nil
}

func (s *FS) Read(path string) ([]byte, error) {
	b, err := os.ReadFile(s.abs(path))
	if err != nil {
		kind := domain.KindExecution
		if os.IsNotExist(err) {
			kind = domain.KindNotFound
		}
		return nil, &domain.OpError{Op: "projectfs.read", Kind: kind, Path: path, Err: err}
	}
	return b, nil
}

// Files lists regular files at or below each path, sorted and deduplicated.
// Missing paths are skipped, as are partial downloads and temp files.
func (s *FS) Files(paths []string) ([]domain.LocalFile, error) {
	seen := map[string]bool{}
	out := []domain.LocalFile{}

	for _, p := range paths {
		root := s.abs(p)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) && path == root {
					return fs.SkipAll
				}
				return err
			}
			if !d.Type().IsRegular() || skipped(d.Name()) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			rel := s.rel(path)
			if !seen[rel] {
				seen[rel] = true
				out = append(out, domain.LocalFile{Path: rel, Size: info.Size()})
			}
			return nil
		})
		if err != nil {
			return nil, &domain.OpError{Op: "projectfs.files", Kind: domain.KindExecution, Path: p, Err: err}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (s *FS) Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(s.abs(path))
	if err != nil {
		kind := domain.KindExecution
		if os.IsNotExist(err) {
			kind = domain.KindNotFound
		}
		return nil, &domain.OpError{Op: "projectfs.open", Kind: kind, Path: path, Err: err}
	}
	return f, nil
}

func skipped(name string) bool {
	return strings.HasSuffix(name, ".part") || strings.HasSuffix(name, ".tmp")
}

func (s *FS) abs(p string) string {
	if filepath.IsAbs(p) || s.Root == "" {
		return p
	}
	return filepath.Join(s.Root, p)
}

func (s *FS) rel(p string) string {
	if s.Root == "" {
		return p
	}
	if r, err := filepath.Rel(s.Root, p); err == nil {
		return filepath.ToSlash(r)
	}
	return p
}
