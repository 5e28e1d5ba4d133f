package ports

import (
	"context"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
)

// ENAArchive reads study, sample and run metadata from the European Nucleotide Archive.
type ENAArchive interface {
	SearchProjects(ctx context.Context, keyword string) ([]domain.Project, error)
	ProjectSamples(ctx context.Context, project string) ([]domain.ArchiveSample, error)
	SampleRuns(ctx context.Context, sample string) ([]domain.Run, error)
	FileURL(run, filename string) string
}

// NCBIArchive reads SRA metadata through the Entrez E-utilities.
type NCBIArchive interface {
	// SearchProjectIDs returns UIDs of cfDNA whole-genome projects matching keyword.
	SearchProjectIDs(ctx context.Context, keyword string) ([]string, error)
	// ProjectRunIDs returns the UIDs of every run in a project.
	ProjectRunIDs(ctx context.Context, project string) ([]string, error)
	ProjectSummary(ctx context.Context, id string) (domain.Project, bool, error)
	RunSummary(ctx context.Context, id string) (domain.Run, bool, error)
}

// SRAToolkit drives the sra-tools binaries.
type SRAToolkit interface {
	Prefetch(ctx context.Context, run string) error
	FasterqDump(ctx context.Context, run, outDir string, threads, minReadLen int) error
	// Outputs lists the FASTQ files fasterq-dump produced for run in outDir.
	Outputs(outDir, run string) ([]domain.LocalFile, error)
}

// Fetcher downloads a URL to a local path, resuming partial files.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string) (int64, error)
	// Discard removes a downloaded file that failed validation.
	Discard(dest string) error
}

// FileVerifier validates a downloaded file against archive metadata.
type FileVerifier interface {
	Verify(path string, file domain.RunFile) (ok bool, err error)
	// Size reports the size of the regular file at path, if there is one.
	Size(path string) (int64, bool)
}
