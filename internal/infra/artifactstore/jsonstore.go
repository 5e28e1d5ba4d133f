package artifactstore

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
	"github.com/dhruv-ramu/FragmentFusion/internal/infra/logger"
	"github.com/dhruv-ramu/FragmentFusion/internal/ports"
)

const (
	metadataSuffix = "_metadata.json"
	summarySuffix  = "_download_summary.json"
	indexFile      = "index.jsonl"
)

// JSONStore writes project metadata and download summaries as indented JSON
// files in the metadata directory.
type JSONStore struct {
	dir        string
	writeIndex bool
	now        func() time.Time
	log        *slog.Logger
}

type Option func(*JSONStore)

// WithIndex appends one line per saved summary to index.jsonl.
func WithIndex(enabled bool) Option {
	return func(s *JSONStore) { s.writeIndex = enabled }
}

// WithLogger replaces the package logger for index warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *JSONStore) { s.log = l }
}

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *JSONStore) { s.now = now }
}

// NewJSONStore stores artifacts under root/<metadata dir>.
func NewJSONStore(root string, cfg domain.Config, opts ...Option) *JSONStore {
	dir := cfg.DataCollection.Storage.Metadata
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	s := &JSONStore{dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.ArtifactStore = (*JSONStore)(nil)

// Dir is the directory artifacts are written to.
func (s *JSONStore) Dir() string { return s.dir }

func (s *JSONStore) SaveMetadata(meta domain.ProjectMetadata) (string, error) {
	if meta.DownloadDate.IsZero() {
		meta.DownloadDate = s.now().UTC()
	}
	return s.write(meta.ProjectAccession+metadataSuffix, meta)
}

func (s *JSONStore) SaveSummary(summary domain.DownloadSummary) (string, error) {
	if summary.Errors == nil {
		summary.Errors = []string{}
	}
	if summary.EndedAt.IsZero() {
		summary.EndedAt = s.now().UTC()
	}

	path, err := s.write(summary.ProjectAccession+summarySuffix, summary)
	if err != nil {
		return "", err
	}
	if s.writeIndex {
		if err := s.appendIndex(filepath.Base(path), summary); err != nil {
			s.logger().Warn("artifactstore.index_failed", "path", filepath.Join(s.dir, indexFile), "error", err)
		}
	}
	return path, nil
}

// ListSummaries reads every summary in the directory, ordered by file name.
func (s *JSONStore) ListSummaries() ([]domain.DownloadSummary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.DownloadSummary{}, nil
		}
		return nil, &domain.OpError{Op: "artifactstore.list", Kind: domain.KindExecution, Path: s.dir, Err: err}
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), summarySuffix) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make([]domain.DownloadSummary, 0, len(names))
	for _, n := range names {
		path := filepath.Join(s.dir, n)
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, &domain.OpError{Op: "artifactstore.read", Kind: domain.KindExecution, Path: path, Err: err}
		}
		var sum domain.DownloadSummary
		if err := json.Unmarshal(b, &sum); err != nil {
			return nil, &domain.OpError{Op: "artifactstore.decode", Kind: domain.KindInvalidInput, Path: path, Err: err}
		}
		out = append(out, sum)
	}
	return out, nil
}

func (s *JSONStore) write(filename string, v any) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", &domain.OpError{Op: "artifactstore.mkdir", Kind: domain.KindExecution, Path: s.dir, Err: err}
	}
	path := filepath.Join(s.dir, filename)

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", &domain.OpError{Op: "artifactstore.marshal", Kind: domain.KindExecution, Path: path, Err: err}
	}

	// Atomic-ish write: tmp then rename.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(b, '\n'), 0o644); err != nil {
		return "", &domain.OpError{Op: "artifactstore.write", Kind: domain.KindExecution, Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", &domain.OpError{Op: "artifactstore.rename", Kind: domain.KindExecution, Path: path, Err: err}
	}
	return path, nil
}

func (s *JSONStore) logger() *slog.Logger {
	if s.log != nil {
		return s.log
	}
	return logger.L()
}

func (s *JSONStore) appendIndex(filename string, sum domain.DownloadSummary) error {
	type idx struct {
		File    string        `json:"file"`
		Source  domain.Source `json:"source"`
		Project string        `json:"project"`
		Failed  bool          `json:"failed"`
		EndedAt time.Time     `json:"ended_at"`
	}
	line, err := json.Marshal(idx{
		File:    filename,
		Source:  sum.Source,
		Project: sum.ProjectAccession,
		Failed:  sum.Failed(),
		EndedAt: sum.EndedAt,
	})
	if err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(s.dir, indexFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(append(line, '\n'))
	return err
}
