package usecase

import (
	"context"
	"fmt"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
	"github.com/dhruv-ramu/FragmentFusion/internal/ports"
)

// SyncFailure is a file that could not be mirrored.
type SyncFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// SyncReport lists what a sync uploaded (or would upload on a dry run) and
// what it skipped.
type SyncReport struct {
	DryRun   bool               `json:"dry_run"`
	Uploaded []domain.LocalFile `json:"uploaded"`
	Skipped  []domain.LocalFile `json:"skipped"`
	Failed   []SyncFailure      `json:"failed"`
}

// SyncResults mirrors project outputs to object storage.
type SyncResults struct {
	logged
	files ports.ProjectFiles
	store ports.ObjectStore
}

func NewSyncResults(files ports.ProjectFiles, store ports.ObjectStore) *SyncResults {
	return &SyncResults{files: files, store: store}
}

// Execute uploads every file below paths whose remote copy is missing or has
// a different size. It keeps going after a failed file.
func (uc *SyncResults) Execute(ctx context.Context, paths []string, dryRun bool) (SyncReport, error) {
	report := SyncReport{
		DryRun:   dryRun,
		Uploaded: []domain.LocalFile{},
		Skipped:  []domain.LocalFile{},
		Failed:   []SyncFailure{},
	}

	files, err := uc.files.Files(paths)
	if err != nil {
		return report, err
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		size, exists, err := uc.store.Head(ctx, f.Path)
		if err != nil {
			report.Failed = append(report.Failed, SyncFailure{Path: f.Path, Error: err.Error()})
			uc.logger().Error("sync.head_failed", "path", f.Path, "error", err)
			continue
		}
		if exists && size == f.Size {
			report.Skipped = append(report.Skipped, f)
			continue
		}
		if dryRun {
			report.Uploaded = append(report.Uploaded, f)
			continue
		}

		if err := uc.upload(ctx, f); err != nil {
			report.Failed = append(report.Failed, SyncFailure{Path: f.Path, Error: err.Error()})
			uc.logger().Error("sync.upload_failed", "path", f.Path, "error", err)
			continue
		}
		report.Uploaded = append(report.Uploaded, f)
		uc.logger().Info("sync.uploaded", "path", f.Path, "bytes", f.Size)
	}

	uc.logger().Info("sync.done",
		"dry_run", dryRun,
		"uploaded", len(report.Uploaded),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed),
	)
	if len(report.Failed) > 0 {
		return report, &domain.OpError{
			Op:   "sync",
			Kind: domain.KindRemote,
			Err:  fmt.Errorf("%d file(s) failed to upload: %w", len(report.Failed), domain.ErrRemote),
		}
	}
	return report, nil
}

func (uc *SyncResults) upload(ctx context.Context, f domain.LocalFile) error {
	rc, err := uc.files.Open(f.Path)
	if err != nil {
		return err
	}
	defer rc.Close()
	return uc.store.Put(ctx, f.Path, rc, f.Size)
}
