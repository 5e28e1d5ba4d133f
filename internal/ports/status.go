package ports

import (
	"context"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
)

// SampleScanner discovers samples without writing a list.
type SampleScanner interface {
	Scan(req domain.SamplesRequest) (domain.SampleList, error)
}

// DownloadStatus reads the download ledger and summaries.
type DownloadStatus interface {
	Status(ctx context.Context, source domain.Source) ([]domain.LedgerEntry, error)
	Summaries() ([]domain.DownloadSummary, error)
}

// QCRunner evaluates QC checks; an empty name runs all of them.
type QCRunner interface {
	Execute(ctx context.Context, name string) (domain.QCReport, error)
}
