package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
)

// --- samples ---

type fakeSampleStore struct {
	list    domain.SampleList
	scanErr error
	names   []string
	written []domain.SampleList
	outs    []string
}

func (f *fakeSampleStore) Scan(dir, suffix string) (domain.SampleList, error) {
	l := f.list
	l.Dir, l.Suffix = dir, suffix
	return l, f.scanErr
}

func (f *fakeSampleStore) WriteList(path string, list domain.SampleList) error {
	f.outs = append(f.outs, path)
	f.written = append(f.written, list)
	return nil
}

func (f *fakeSampleStore) ReadList(string) ([]string, error) { return f.names, nil }

type fakeWorkflowWriter struct {
	path  string
	names []string
}

func (f *fakeWorkflowWriter) SetSamples(path string, names []string) error {
	f.path, f.names = path, names
	return nil
}

// fakeWatcher fires onChange a fixed number of times, then returns.
type fakeWatcher struct {
	fires int
	dir   string
}

func (f *fakeWatcher) Watch(_ context.Context, dir string, onChange func() error) error {
	f.dir = dir
	for i := 0; i < f.fires; i++ {
		if err := onChange(); err != nil {
			return err
		}
	}
	return nil
}

type fakeChecker struct {
	bad     map[string]error
	ensured []string
}

func (f *fakeChecker) CheckFile(path string) error {
	if err, ok := f.bad[path]; ok {
		return &domain.OpError{Op: "inputs.check", Kind: domain.KindInvalidInput, Path: path, Err: err}
	}
	return nil
}

func (f *fakeChecker) EnsureDir(path string) error {
	f.ensured = append(f.ensured, path)
	return nil
}

// --- docker ---

type fakeEngine struct {
	builds      []domain.ImageRef
	runs        []domain.ContainerRun
	runResults  []domain.CommandResult
	imageExists bool
	containers  map[bool][]string
	stopped     [][]string
	removed     [][]string
	rmi         [][]domain.ImageRef
	pruned      bool
	stopResult  domain.CommandResult
	rmiErr      error
}

func (f *fakeEngine) Build(_ context.Context, image domain.ImageRef, _ string, _ bool) (domain.CommandResult, error) {
	f.builds = append(f.builds, image)
	return domain.CommandResult{}, nil
}

func (f *fakeEngine) Run(_ context.Context, r domain.ContainerRun) (domain.CommandResult, error) {
	f.runs = append(f.runs, r)
	if len(f.runResults) == 0 {
		return domain.CommandResult{}, nil
	}
	res := f.runResults[0]
	f.runResults = f.runResults[1:]
	return res, nil
}

func (f *fakeEngine) ImageExists(context.Context, domain.ImageRef) (bool, error) {
	return f.imageExists, nil
}

func (f *fakeEngine) ListContainers(_ context.Context, _ string, all bool) ([]string, error) {
	return f.containers[all], nil
}

func (f *fakeEngine) Stop(_ context.Context, ids ...string) (domain.CommandResult, error) {
	f.stopped = append(f.stopped, ids)
	return f.stopResult, nil
}

func (f *fakeEngine) Remove(_ context.Context, ids ...string) (domain.CommandResult, error) {
	f.removed = append(f.removed, ids)
	return domain.CommandResult{}, nil
}

func (f *fakeEngine) RemoveImages(_ context.Context, images ...domain.ImageRef) (domain.CommandResult, error) {
	f.rmi = append(f.rmi, images)
	return domain.CommandResult{}, f.rmiErr
}

func (f *fakeEngine) PruneImages(context.Context) (domain.CommandResult, error) {
	f.pruned = true
	return domain.CommandResult{}, nil
}

// --- archives ---

type fakeENA struct {
	projects map[string][]domain.Project
	samples  []domain.ArchiveSample
	runs     map[string][]domain.Run
	failKW   map[string]bool
}

func (f *fakeENA) SearchProjects(_ context.Context, kw string) ([]domain.Project, error) {
	if f.failKW[kw] {
		return nil, &domain.OpError{Op: "ena.search", Kind: domain.KindRemote, Err: domain.ErrRemote}
	}
	return f.projects[kw], nil
}

func (f *fakeENA) ProjectSamples(context.Context, string) ([]domain.ArchiveSample, error) {
	return f.samples, nil
}

func (f *fakeENA) SampleRuns(_ context.Context, sample string) ([]domain.Run, error) {
	return f.runs[sample], nil
}

func (f *fakeENA) FileURL(run, filename string) string {
	return "https://ftp.example/" + run + "/" + filename
}

type fakeNCBI struct {
	projectIDs map[string][]string
	runIDs     []string
	projects   map[string]domain.Project
	runs       map[string]domain.Run
}

func (f *fakeNCBI) SearchProjectIDs(_ context.Context, kw string) ([]string, error) {
	return f.projectIDs[kw], nil
}

func (f *fakeNCBI) ProjectRunIDs(context.Context, string) ([]string, error) { return f.runIDs, nil }

func (f *fakeNCBI) ProjectSummary(_ context.Context, id string) (domain.Project, bool, error) {
	p, ok := f.projects[id]
	return p, ok, nil
}

func (f *fakeNCBI) RunSummary(_ context.Context, id string) (domain.Run, bool, error) {
	r, ok := f.runs[id]
	return r, ok, nil
}

// fakeSRA "produces" files for runs not listed in fail.
type fakeSRA struct {
	mu         sync.Mutex
	existing   map[string][]domain.LocalFile
	produced   map[string][]domain.LocalFile
	fail       map[string]bool
	dumped     []string
	prefetched []string
}

func (f *fakeSRA) Prefetch(_ context.Context, run string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefetched = append(f.prefetched, run)
	return nil
}

func (f *fakeSRA) FasterqDump(_ context.Context, run, _ string, _, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dumped = append(f.dumped, run)
	if f.fail[run] {
		return &domain.OpError{Op: "sratools.fasterq_dump", Kind: domain.KindExecution, Path: run, Err: domain.ErrExecution}
	}
	if f.existing == nil {
		f.existing = map[string][]domain.LocalFile{}
	}
	f.existing[run] = f.produced[run]
	return nil
}

func (f *fakeSRA) Outputs(_, run string) ([]domain.LocalFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.existing[run], nil
}

// fakeFetcher serves per-file results keyed by the file's base name.
type fakeFetcher struct {
	mu        sync.Mutex
	fail      map[string]bool
	fetched   []string
	discarded []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url, dest string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, dest)
	for name := range f.fail {
		if strings.HasSuffix(url, "/"+name) {
			return 0, &domain.OpError{Op: "fetch.download", Kind: domain.KindRemote, Path: url, Err: errors.New("503")}
		}
	}
	return 100, nil
}

func (f *fakeFetcher) Discard(dest string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.discarded = append(f.discarded, dest)
	return nil
}

// fakeVerifier treats paths in present as on disk and checksums "bad" as invalid.
type fakeVerifier struct {
	present map[string]int64
}

func (f *fakeVerifier) Verify(_ string, file domain.RunFile) (bool, error) {
	return file.Checksum != "bad", nil
}

func (f *fakeVerifier) Size(path string) (int64, bool) {
	n, ok := f.present[path]
	return n, ok
}

// --- stores ---

type fakeArtifacts struct {
	mu        sync.Mutex
	metadata  []domain.ProjectMetadata
	summaries []domain.DownloadSummary
}

func (f *fakeArtifacts) SaveMetadata(m domain.ProjectMetadata) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metadata = append(f.metadata, m)
	return "metadata/" + m.ProjectAccession + "_metadata.json", nil
}

func (f *fakeArtifacts) SaveSummary(s domain.DownloadSummary) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries = append(f.summaries, s)
	return "metadata/" + s.ProjectAccession + "_download_summary.json", nil
}

func (f *fakeArtifacts) ListSummaries() ([]domain.DownloadSummary, error) {
	return f.summaries, nil
}

type fakeLedger struct {
	mu      sync.Mutex
	entries []domain.LedgerEntry
}

func (f *fakeLedger) Record(_ context.Context, e domain.LedgerEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeLedger) Lookup(_ context.Context, path string) (domain.LedgerEntry, bool, error) {
	for _, e := range f.entries {
		if e.Path == path {
			return e, true, nil
		}
	}
	return domain.LedgerEntry{}, false, nil
}

func (f *fakeLedger) List(_ context.Context, source domain.Source) ([]domain.LedgerEntry, error) {
	var out []domain.LedgerEntry
	for _, e := range f.entries {
		if source == "" || e.Source == source {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeMetrics struct {
	mu        sync.Mutex
	ok, fail  int
	summaries int
	qc        []domain.QCReport
}

func (f *fakeMetrics) ObserveFile(_ domain.Source, ok bool, _ int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ok {
		f.ok++
	} else {
		f.fail++
	}
}

func (f *fakeMetrics) ObserveSummary(domain.DownloadSummary) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries++
}

func (f *fakeMetrics) ObserveQC(r domain.QCReport) { f.qc = append(f.qc, r) }

type fakeReports struct {
	files map[string]string
	globs map[string][]string
}

func (f *fakeReports) Glob(patterns []string) ([]string, error) {
	var out []string
	for _, p := range patterns {
		out = append(out, f.globs[p]...)
	}
	return out, nil
}

func (f *fakeReports) Read(path string) ([]byte, error) {
	s, ok := f.files[path]
	if !ok {
		return nil, &domain.OpError{Op: "reports.read", Kind: domain.KindNotFound, Path: path, Err: domain.ErrNotFound}
	}
	return []byte(s), nil
}

type fakeProjectFiles struct {
	files   []domain.LocalFile
	content map[string]string
}

func (f *fakeProjectFiles) Files([]string) ([]domain.LocalFile, error) { return f.files, nil }

func (f *fakeProjectFiles) Open(path string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(f.content[path])), nil
}

type fakeObjectStore struct {
	sizes  map[string]int64
	puts   map[string]string
	putErr map[string]bool
}

func (f *fakeObjectStore) Head(_ context.Context, key string) (int64, bool, error) {
	n, ok := f.sizes[key]
	return n, ok, nil
}

func (f *fakeObjectStore) Put(_ context.Context, key string, r io.Reader, _ int64) error {
	if f.putErr[key] {
		return &domain.OpError{Op: "s3.put", Kind: domain.KindRemote, Path: key, Err: domain.ErrRemote}
	}
	b, _ := io.ReadAll(r)
	if f.puts == nil {
		f.puts = map[string]string{}
	}
	f.puts[key] = string(b)
	return nil
}
