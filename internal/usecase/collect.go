package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
	"github.com/dhruv-ramu/FragmentFusion/internal/ports"
)

// CollectDeps are the adapters data collection talks to. Ledger, Metrics and
// Dirs may be nil.
type CollectDeps struct {
	ENA       ports.ENAArchive
	NCBI      ports.NCBIArchive
	SRA       ports.SRAToolkit
	Fetcher   ports.Fetcher
	Verifier  ports.FileVerifier
	Artifacts ports.ArtifactStore
	Ledger    ports.Ledger
	Metrics   ports.DownloadMetrics
	Dirs      ports.InputChecker
	Now       func() time.Time
}

// CollectSettings control where and how data is downloaded.
type CollectSettings struct {
	// Root makes ledger paths project-relative.
	Root          string
	FASTQDir      string
	Concurrency   int
	MinReadLength int
	// Prefetch runs `prefetch` before fasterq-dump for NCBI runs.
	Prefetch bool
	// Dirs are created before any download starts.
	Dirs []string
}

// ProjectDownload is the outcome of downloading one project.
type ProjectDownload struct {
	Summary      domain.DownloadSummary
	MetadataPath string
	SummaryPath  string
}

// CollectData searches public archives for cfDNA projects and downloads their
// FASTQ data.
type CollectData struct {
	logged
	deps     CollectDeps
	settings CollectSettings
}

func NewCollectData(deps CollectDeps, settings CollectSettings) *CollectData {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if settings.Concurrency < 1 {
		settings.Concurrency = 1
	}
	return &CollectData{deps: deps, settings: settings}
}

var _ ports.DownloadStatus = (*CollectData)(nil)

// Search queries source once per keyword. A failing keyword is logged and
// skipped; the error is returned only when every keyword failed. Projects are
// deduplicated by accession, first keyword wins.
func (uc *CollectData) Search(ctx context.Context, source domain.Source, keywords []string) ([]domain.Project, error) {
	if err := uc.requireSource(source); err != nil {
		return nil, err
	}

	out := []domain.Project{}
	seen := map[string]bool{}
	var lastErr error
	failed := 0

	for _, kw := range keywords {
		var (
			found []domain.Project
			err   error
		)
		switch source {
		case domain.SourceENA:
			found, err = uc.deps.ENA.SearchProjects(ctx, kw)
		case domain.SourceNCBI:
			found, err = uc.searchNCBI(ctx, kw)
		}
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			failed++
			lastErr = err
			uc.logger().Warn("data.search.keyword_failed", "source", source, "keyword", kw, "error", err)
			continue
		}

		for _, p := range found {
			if p.Accession == "" || seen[p.Accession] {
				continue
			}
			seen[p.Accession] = true
			out = append(out, p)
		}
		uc.logger().Info("data.search.keyword", "source", source, "keyword", kw, "found", len(found))
	}

	if len(keywords) > 0 && failed == len(keywords) {
		return out, lastErr
	}
	return out, nil
}

func (uc *CollectData) searchNCBI(ctx context.Context, keyword string) ([]domain.Project, error) {
	ids, err := uc.deps.NCBI.SearchProjectIDs(ctx, keyword)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Project, 0, len(ids))
	for _, id := range ids {
		p, ok, err := uc.deps.NCBI.ProjectSummary(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			uc.logger().Warn("data.search.summary_failed", "source", domain.SourceNCBI, "id", id, "error", err)
			continue
		}
		if !ok {
			continue
		}
		p.Keyword = keyword
		out = append(out, p)
	}
	return out, nil
}

// DownloadMany downloads every project in turn. A failed project does not stop
// the others; their errors are joined.
func (uc *CollectData) DownloadMany(ctx context.Context, source domain.Source, projects []string, max int) ([]ProjectDownload, error) {
	out := make([]ProjectDownload, 0, len(projects))
	var errs []error
	for _, p := range projects {
		d, err := uc.Download(ctx, source, p, max)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
			continue
		}
		out = append(out, d)
	}
	return out, errors.Join(errs...)
}

// Download fetches one project. max limits samples (ENA) or runs (NCBI);
// zero means all.
func (uc *CollectData) Download(ctx context.Context, source domain.Source, project string, max int) (ProjectDownload, error) {
	if err := uc.requireSource(source); err != nil {
		return ProjectDownload{}, err
	}
	if project == "" {
		return ProjectDownload{}, &domain.OpError{
			Op:   "data.download",
			Kind: domain.KindInvalidInput,
			Err:  fmt.Errorf("project accession is required: %w", domain.ErrInvalidInput),
		}
	}
	if err := uc.prepareDirs(); err != nil {
		return ProjectDownload{}, err
	}

	uc.logger().Info("data.download.start", "source", source, "project", project, "max", max)
	if source == domain.SourceENA {
		return uc.downloadENA(ctx, project, max)
	}
	return uc.downloadNCBI(ctx, project, max)
}

// Status lists ledger entries for source, or for every source when empty.
func (uc *CollectData) Status(ctx context.Context, source domain.Source) ([]domain.LedgerEntry, error) {
	if uc.deps.Ledger == nil {
		return []domain.LedgerEntry{}, nil
	}
	return uc.deps.Ledger.List(ctx, source)
}

// Summaries lists the download summaries written so far.
func (uc *CollectData) Summaries() ([]domain.DownloadSummary, error) {
	return uc.deps.Artifacts.ListSummaries()
}

func (uc *CollectData) downloadENA(ctx context.Context, project string, max int) (ProjectDownload, error) {
	samples, err := uc.deps.ENA.ProjectSamples(ctx, project)
	if err != nil {
		return ProjectDownload{}, err
	}
	if max > 0 && len(samples) > max {
		samples = samples[:max]
	}

	var out ProjectDownload
	out.MetadataPath, err = uc.deps.Artifacts.SaveMetadata(domain.ProjectMetadata{
		Source:           domain.SourceENA,
		ProjectAccession: project,
		Samples:          samples,
		DownloadDate:     uc.deps.Now().UTC(),
	})
	if err != nil {
		return out, err
	}

	t := uc.newTally(domain.SourceENA, project)
	t.sum.TotalSamples = len(samples)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.settings.Concurrency)
	for _, s := range samples {
		g.Go(func() error {
			ok, errs := uc.downloadSample(gctx, project, s.Accession, t)
			if gctx.Err() != nil {
				return gctx.Err()
			}
			t.sample(ok, errs)
			return nil
		})
	}
	werr := g.Wait()

	return uc.finish(ctx, out, t, werr)
}

// downloadSample fetches every FASTQ file of every run of a sample. ok is
// false when the sample has no runs or any file failed.
func (uc *CollectData) downloadSample(ctx context.Context, project, sample string, t *tally) (ok bool, errs []string) {
	runs, err := uc.deps.ENA.SampleRuns(ctx, sample)
	if err != nil {
		return false, []string{fmt.Sprintf("Error processing sample %s: %v", sample, err)}
	}
	if len(runs) == 0 {
		return false, []string{fmt.Sprintf("No runs found for sample %s", sample)}
	}

	ok = true
	for _, run := range runs {
		for _, f := range run.Files {
			if !f.IsFASTQ() {
				continue
			}
			if ctx.Err() != nil {
				return false, nil
			}
			if err := uc.downloadFile(ctx, project, run.Accession, f); err != nil {
				ok = false
				t.file(false, 0)
				errs = append(errs, fmt.Sprintf("Failed to download %s: %v", f.Filename, err))
				uc.logger().Error("download.failed", "source", domain.SourceENA, "run", run.Accession, "file", f.Filename, "error", err)
				continue
			}
			t.file(true, 0)
		}
	}
	return ok, errs
}

// downloadFile fetches one run file unless a valid copy is already present.
// A file that fails validation after download is removed.
func (uc *CollectData) downloadFile(ctx context.Context, project, run string, f domain.RunFile) error {
	dest := filepath.Join(uc.settings.FASTQDir, filepath.Base(f.Filename))

	if size, exists := uc.deps.Verifier.Size(dest); exists {
		valid, err := uc.deps.Verifier.Verify(dest, f)
		if err != nil {
			return err
		}
		if valid {
			uc.logger().Info("download.skipped", "source", domain.SourceENA, "path", dest)
			return uc.complete(ctx, domain.SourceENA, project, run, dest, size, f.Checksum)
		}
	}

	size, err := uc.deps.Fetcher.Fetch(ctx, uc.deps.ENA.FileURL(run, f.Filename), dest)
	if err != nil {
		return err
	}
	valid, err := uc.deps.Verifier.Verify(dest, f)
	if err != nil {
		return err
	}
	if !valid {
		if derr := uc.deps.Fetcher.Discard(dest); derr != nil {
			uc.logger().Warn("download.discard_failed", "path", dest, "error", derr)
		}
		return &domain.OpError{
			Op:   "data.verify",
			Kind: domain.KindInvalidInput,
			Path: dest,
			Err:  fmt.Errorf("file failed validation: %w", domain.ErrInvalidInput),
		}
	}
	uc.logger().Info("download.ok", "source", domain.SourceENA, "path", dest, "bytes", size)
	return uc.complete(ctx, domain.SourceENA, project, run, dest, size, f.Checksum)
}

func (uc *CollectData) downloadNCBI(ctx context.Context, project string, max int) (ProjectDownload, error) {
	ids, err := uc.deps.NCBI.ProjectRunIDs(ctx, project)
	if err != nil {
		return ProjectDownload{}, err
	}

	runs := make([]domain.Run, 0, len(ids))
	for _, id := range ids {
		r, ok, err := uc.deps.NCBI.RunSummary(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return ProjectDownload{}, ctx.Err()
			}
			uc.logger().Warn("data.run_summary_failed", "source", domain.SourceNCBI, "id", id, "error", err)
			continue
		}
		if ok && r.Accession != "" {
			runs = append(runs, r)
		}
	}
	if max > 0 && len(runs) > max {
		runs = runs[:max]
	}

	var out ProjectDownload
	out.MetadataPath, err = uc.deps.Artifacts.SaveMetadata(domain.ProjectMetadata{
		Source:           domain.SourceNCBI,
		ProjectAccession: project,
		Runs:             runs,
		DownloadDate:     uc.deps.Now().UTC(),
	})
	if err != nil {
		return out, err
	}

	t := uc.newTally(domain.SourceNCBI, project)
	t.sum.TotalRuns = len(runs)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.settings.Concurrency)
	for _, r := range runs {
		run := r.Accession
		g.Go(func() error {
			files, err := uc.downloadRun(gctx, project, run)
			if gctx.Err() != nil {
				return gctx.Err()
			}
			t.run(run, files, err)
			return nil
		})
	}
	werr := g.Wait()

	return uc.finish(ctx, out, t, werr)
}

// downloadRun converts one SRA run to FASTQ files, reusing files already on
// disk.
func (uc *CollectData) downloadRun(ctx context.Context, project, run string) ([]domain.LocalFile, error) {
	dir := uc.settings.FASTQDir

	files, err := uc.deps.SRA.Outputs(dir, run)
	if err != nil {
		return nil, err
	}
	if len(files) > 0 {
		uc.logger().Info("download.skipped", "source", domain.SourceNCBI, "run", run, "files", len(files))
		return files, uc.completeAll(ctx, project, run, files)
	}

	if uc.settings.Prefetch {
		if err := uc.deps.SRA.Prefetch(ctx, run); err != nil {
			return nil, err
		}
	}
	if err := uc.deps.SRA.FasterqDump(ctx, run, dir, uc.settings.Concurrency, uc.settings.MinReadLength); err != nil {
		return nil, err
	}

	files, err = uc.deps.SRA.Outputs(dir, run)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &domain.OpError{
			Op:   "data.fasterq_dump",
			Kind: domain.KindExecution,
			Path: run,
			Err:  fmt.Errorf("no FASTQ files created: %w", domain.ErrExecution),
		}
	}
	uc.logger().Info("download.ok", "source", domain.SourceNCBI, "run", run, "files", len(files))
	return files, uc.completeAll(ctx, project, run, files)
}

func (uc *CollectData) completeAll(ctx context.Context, project, run string, files []domain.LocalFile) error {
	for _, f := range files {
		if err := uc.complete(ctx, domain.SourceNCBI, project, run, f.Path, f.Size, ""); err != nil {
			return err
		}
	}
	return nil
}

// complete records a validated file in the ledger and metrics.
func (uc *CollectData) complete(ctx context.Context, source domain.Source, project, run, path string, size int64, checksum string) error {
	if uc.deps.Metrics != nil {
		uc.deps.Metrics.ObserveFile(source, true, size)
	}
	if uc.deps.Ledger == nil {
		return nil
	}
	return uc.deps.Ledger.Record(ctx, domain.LedgerEntry{
		Source:      source,
		Project:     project,
		Run:         run,
		Path:        uc.rel(path),
		Size:        size,
		Checksum:    checksum,
		CompletedAt: uc.deps.Now().UTC(),
	})
}

func (uc *CollectData) finish(ctx context.Context, out ProjectDownload, t *tally, werr error) (ProjectDownload, error) {
	out.Summary = t.result(uc.deps.Now().UTC())

	path, err := uc.deps.Artifacts.SaveSummary(out.Summary)
	if err != nil {
		return out, err
	}
	out.SummaryPath = path
	if uc.deps.Metrics != nil {
		uc.deps.Metrics.ObserveSummary(out.Summary)
	}

	s := out.Summary
	uc.logger().Info("data.download.done",
		"source", s.Source,
		"project", s.ProjectAccession,
		"downloaded_files", s.DownloadedFiles,
		"failed_files", s.FailedFiles,
		"failed_samples", s.FailedSamples,
		"failed_runs", s.FailedRuns,
	)

	if werr != nil {
		return out, werr
	}
	return out, ctx.Err()
}

func (uc *CollectData) prepareDirs() error {
	if uc.deps.Dirs == nil {
		return nil
	}
	for _, d := range uc.settings.Dirs {
		if err := uc.deps.Dirs.EnsureDir(d); err != nil {
			return err
		}
	}
	return nil
}

func (uc *CollectData) requireSource(source domain.Source) error {
	var ok bool
	switch source {
	case domain.SourceENA:
		ok = uc.deps.ENA != nil
	case domain.SourceNCBI:
		ok = uc.deps.NCBI != nil && uc.deps.SRA != nil
	}
	if ok {
		return nil
	}
	return &domain.OpError{
		Op:   "data.source",
		Kind: domain.KindInvalidInput,
		Err:  fmt.Errorf("unsupported source %q: %w", source, domain.ErrInvalidInput),
	}
}

func (uc *CollectData) rel(path string) string {
	if uc.settings.Root == "" {
		return filepath.ToSlash(path)
	}
	if r, err := filepath.Rel(uc.settings.Root, path); err == nil {
		return filepath.ToSlash(r)
	}
	return filepath.ToSlash(path)
}

// tally accumulates a summary across download workers.
type tally struct {
	mu      sync.Mutex
	sum     domain.DownloadSummary
	metrics ports.DownloadMetrics
}

func (uc *CollectData) newTally(source domain.Source, project string) *tally {
	return &tally{
		metrics: uc.deps.Metrics,
		sum: domain.DownloadSummary{
			Source:           source,
			ProjectAccession: project,
			StartedAt:        uc.deps.Now().UTC(),
			Errors:           []string{},
		},
	}
}

func (t *tally) file(ok bool, bytes int64) {
	t.mu.Lock()
	if ok {
		t.sum.DownloadedFiles++
	} else {
		t.sum.FailedFiles++
	}
	t.mu.Unlock()
	if !ok && t.metrics != nil {
		t.metrics.ObserveFile(t.sum.Source, false, bytes)
	}
}

func (t *tally) sample(ok bool, errs []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ok {
		t.sum.DownloadedSamples++
	} else {
		t.sum.FailedSamples++
	}
	t.sum.Errors = append(t.sum.Errors, errs...)
}

func (t *tally) run(run string, files []domain.LocalFile, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.sum.FailedRuns++
		t.sum.Errors = append(t.sum.Errors, fmt.Sprintf("Failed to download run %s: %v", run, err))
		if t.metrics != nil {
			t.metrics.ObserveFile(t.sum.Source, false, 0)
		}
		return
	}
	t.sum.DownloadedRuns++
	t.sum.DownloadedFiles += len(files)
}

// result returns the summary with errors sorted, since workers finish in any
// order.
func (t *tally) result(ended time.Time) domain.DownloadSummary {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.sum
	s.Errors = append([]string{}, t.sum.Errors...)
	sort.Strings(s.Errors)
	s.EndedAt = ended
	return s
}
