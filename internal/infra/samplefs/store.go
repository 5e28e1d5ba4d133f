package samplefs

import (
	"bufio"
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
	"github.com/dhruv-ramu/FragmentFusion/internal/ports"
)

// Store discovers samples on the local filesystem.
type Store struct{}

func NewStore() *Store { return &Store{} }

var _ ports.SampleStore = (*Store)(nil)

// Scan walks dir recursively and returns the sorted, deduplicated stems of
// regular files named *suffix. The first path in walk order wins for a stem.
func (s *Store) Scan(dir, suffix string) (domain.SampleList, error) {
	list := domain.SampleList{Dir: dir, Suffix: suffix, Samples: []domain.Sample{}}
	if suffix == "" {
		return list, &domain.OpError{
			Op:   "samplefs.scan",
			Kind: domain.KindInvalidConfig,
			Err:  domain.ErrInvalidConfig,
		}
	}

	info, err := os.Stat(dir)
	if err != nil {
		kind := domain.KindExecution
		if os.IsNotExist(err) {
			kind = domain.KindNotFound
		}
		return list, &domain.OpError{Op: "samplefs.scan", Kind: kind, Path: dir, Err: err}
	}
	if !info.IsDir() {
		return list, &domain.OpError{Op: "samplefs.scan", Kind: domain.KindInvalidInput, Path: dir, Err: domain.ErrInvalidInput}
	}

	seen := map[string]string{}
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		stem, ok := domain.SampleStem(d.Name(), suffix)
		if !ok {
			return nil
		}
		if _, dup := seen[stem]; !dup {
			seen[stem] = p
		}
		return nil
	})
	if err != nil {
		return list, &domain.OpError{Op: "samplefs.scan", Kind: domain.KindExecution, Path: dir, Err: err}
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	// Byte order, as `LC_ALL=C sort` would produce.
	sort.Strings(names)

	for _, n := range names {
		list.Samples = append(list.Samples, domain.Sample{Name: n, Path: seen[n]})
	}
	return list, nil
}

// WriteList writes one name per line, replacing path atomically.
func (s *Store) WriteList(path string, list domain.SampleList) error {
	var buf bytes.Buffer
	for _, n := range list.Names() {
		buf.WriteString(n)
		buf.WriteByte('\n')
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &domain.OpError{Op: "samplefs.write", Kind: domain.KindExecution, Path: path, Err: err}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return &domain.OpError{Op: "samplefs.write", Kind: domain.KindExecution, Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return &domain.OpError{Op: "samplefs.write", Kind: domain.KindExecution, Path: path, Err: err}
	}
	return nil
}

// ReadList returns the non-empty lines of a sample list file.
func (s *Store) ReadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		kind := domain.KindExecution
		if os.IsNotExist(err) {
			kind = domain.KindNotFound
		}
		return nil, &domain.OpError{Op: "samplefs.read", Kind: kind, Path: path, Err: err}
	}
	defer f.Close()

	names := []string{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if n := strings.TrimSpace(sc.Text()); n != "" {
			names = append(names, n)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &domain.OpError{Op: "samplefs.read", Kind: domain.KindExecution, Path: path, Err: err}
	}
	return names, nil
}
