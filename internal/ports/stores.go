package ports

import (
	"context"
	"io"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
)

// ArtifactStore persists project metadata and download summaries.
type ArtifactStore interface {
	SaveMetadata(meta domain.ProjectMetadata) (path string, err error)
	SaveSummary(summary domain.DownloadSummary) (path string, err error)
	ListSummaries() ([]domain.DownloadSummary, error)
}

// Ledger tracks files that finished downloading and validated.
type Ledger interface {
	Record(ctx context.Context, e domain.LedgerEntry) error
	Lookup(ctx context.Context, path string) (domain.LedgerEntry, bool, error)
	List(ctx context.Context, source domain.Source) ([]domain.LedgerEntry, error)
}

// ObjectStore is the remote side of result mirroring.
type ObjectStore interface {
	// Head returns the stored size and whether the key exists.
	Head(ctx context.Context, key string) (int64, bool, error)
	Put(ctx context.Context, key string, r io.Reader, size int64) error
}

// ReportSource locates and reads JSON reports for QC checks.
type ReportSource interface {
	Glob(patterns []string) ([]string, error)
	Read(path string) ([]byte, error)
}

// DownloadMetrics receives download outcomes.
type DownloadMetrics interface {
	ObserveFile(source domain.Source, ok bool, bytes int64)
	ObserveSummary(summary domain.DownloadSummary)
}

// ProjectFiles lists and opens files below the project root for mirroring.
type ProjectFiles interface {
	Files(paths []string) ([]domain.LocalFile, error)
	Open(path string) (io.ReadCloser, error)
}

// QCMetrics receives QC outcomes.
type QCMetrics interface {
	ObserveQC(report domain.QCReport)
}
