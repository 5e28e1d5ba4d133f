package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
	"github.com/dhruv-ramu/FragmentFusion/internal/infra/artifactstore"
	"github.com/dhruv-ramu/FragmentFusion/internal/infra/config"
	"github.com/dhruv-ramu/FragmentFusion/internal/infra/dockercli"
	"github.com/dhruv-ramu/FragmentFusion/internal/infra/ena"
	"github.com/dhruv-ramu/FragmentFusion/internal/infra/fetch"
	"github.com/dhruv-ramu/FragmentFusion/internal/infra/httpclient"
	"github.com/dhruv-ramu/FragmentFusion/internal/infra/inputs"
	"github.com/dhruv-ramu/FragmentFusion/internal/infra/ledger"
	"github.com/dhruv-ramu/FragmentFusion/internal/infra/logger"
	"github.com/dhruv-ramu/FragmentFusion/internal/infra/metrics"
	"github.com/dhruv-ramu/FragmentFusion/internal/infra/ncbi"
	"github.com/dhruv-ramu/FragmentFusion/internal/infra/projectfinder"
	"github.com/dhruv-ramu/FragmentFusion/internal/infra/projectfs"
	"github.com/dhruv-ramu/FragmentFusion/internal/infra/s3mirror"
	"github.com/dhruv-ramu/FragmentFusion/internal/infra/samplefs"
	"github.com/dhruv-ramu/FragmentFusion/internal/infra/shell"
	"github.com/dhruv-ramu/FragmentFusion/internal/infra/sratools"
	"github.com/dhruv-ramu/FragmentFusion/internal/infra/workflowcfg"
	"github.com/dhruv-ramu/FragmentFusion/internal/ports"
	"github.com/dhruv-ramu/FragmentFusion/internal/ui/tui"
	"github.com/dhruv-ramu/FragmentFusion/internal/usecase"
)

// retryBackoff is the base wait between archive request attempts.
const retryBackoff = 2 * time.Second

type projectCtx struct {
	root    string
	cfg     domain.Config
	log     *slog.Logger
	metrics *metrics.Collector

	closers []func() error
}

// loadProject resolves the project root, reads its config and starts the
// project log. Callers must call close.
func loadProject(projectFlag string, debug bool) (*projectCtx, error) {
	root, err := resolveProjectRoot(projectFlag)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadOrDefault(root)
	if err != nil {
		return nil, err
	}

	p := &projectCtx{root: root, cfg: cfg, metrics: metrics.NewCollector()}
	cleanup, lerr := logger.Setup(logger.Config{Root: root, Level: cfg.Logging.Level, Debug: debug})
	if cleanup != nil {
		p.closers = append(p.closers, cleanup)
	}
	p.log = logger.L()
	if lerr != nil {
		fmt.Fprintf(os.Stderr, "warning: project log disabled: %v\n", lerr)
	}
	return p, nil
}

func (p *projectCtx) close() {
	if err := p.metrics.WriteTextfile(p.abs(p.cfg.Metrics.Textfile)); err != nil {
		p.log.Warn("metrics.textfile_failed", "error", err)
	}
	for i := len(p.closers) - 1; i >= 0; i-- {
		_ = p.closers[i]()
	}
}

func resolveProjectRoot(projectFlag string) (string, error) {
	p := strings.TrimSpace(projectFlag)
	if p != "" {
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", fmt.Errorf("invalid project path: %w", err)
		}
		return abs, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	root, err := projectfinder.NewFinder().FindRoot(wd)
	if err != nil {
		return "", fmt.Errorf("project not found from %q (tip: run `fragfusion init`): %w", wd, err)
	}
	return root, nil
}

// abs resolves a config path against the project root. Empty stays empty.
func (p *projectCtx) abs(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.root, path)
}

func (p *projectCtx) samplesRequest() domain.SamplesRequest {
	return domain.SamplesRequest{
		Dir:    p.abs(p.cfg.Paths.RawDir),
		Suffix: p.cfg.Samples.Suffix,
		Out:    p.abs(p.cfg.Paths.SampleList),
	}
}

func (p *projectCtx) samples() *usecase.GenerateSamples {
	uc := usecase.NewGenerateSamples(samplefs.NewStore(), workflowcfg.NewWriter(), samplefs.NewWatcher())
	uc.SetLogger(p.log)
	return uc
}

func (p *projectCtx) validator() *usecase.ValidateInputs {
	uc := usecase.NewValidateInputs(inputs.NewChecker(), samplefs.NewStore())
	uc.SetLogger(p.log)
	return uc
}

func (p *projectCtx) images() (usecase.DockerImages, error) {
	var imgs usecase.DockerImages
	var err error
	d := p.cfg.Docker
	if imgs.Main, err = dockercli.ParseImage(d.Image); err != nil {
		return imgs, err
	}
	if imgs.Dev, err = dockercli.ParseImage(d.DevImage); err != nil {
		return imgs, err
	}
	if imgs.GPUProbe, err = dockercli.ParseImage(d.GPUProbeImage); err != nil {
		return imgs, err
	}
	return imgs, nil
}

func (p *projectCtx) docker() (*usecase.DockerOps, error) {
	imgs, err := p.images()
	if err != nil {
		return nil, err
	}
	engine := dockercli.NewClient(shell.NewRunner(), p.root)
	uc := usecase.NewDockerOps(engine, p.root, p.cfg.Docker, imgs, domain.NewVarResolver())
	uc.SetLogger(p.log)
	return uc, nil
}

func (p *projectCtx) executor(a domain.ArchiveConfig) *httpclient.Executor {
	hc := httpclient.DefaultConfig()
	hc.Timeout = a.Timeout
	hc.UserAgent = p.cfg.DataCollection.UserAgent
	return httpclient.NewExecutor(
		httpclient.WithClient(httpclient.New(hc)),
		httpclient.WithTimeout(a.Timeout),
		httpclient.WithRetries(a.MaxRetries, retryBackoff),
	)
}

// collector wires data collection. The download ledger is opened lazily and
// closed with the project.
func (p *projectCtx) collector(prefetch bool) (*usecase.CollectData, error) {
	dc := p.cfg.DataCollection

	led, err := ledger.Open(p.abs(dc.Storage.Ledger))
	if err != nil {
		return nil, err
	}
	p.closers = append(p.closers, led.Close)

	fastq := p.abs(dc.Storage.FASTQ)
	dirs := make([]string, 0, len(p.cfg.CollectionDirs()))
	for _, d := range p.cfg.CollectionDirs() {
		dirs = append(dirs, p.abs(d))
	}

	deps := usecase.CollectDeps{
		ENA:  ena.NewClient(dc.ENA, p.executor(dc.ENA)),
		NCBI: ncbi.NewClient(dc.NCBI, p.executor(dc.NCBI)),
		SRA:  sraToolkit(shell.NewRunner(), fastq, dc.NCBI),
		Fetcher: fetch.NewDownloader(
			fetch.WithTimeout(dc.ENA.Timeout),
			fetch.WithRetries(dc.ENA.MaxRetries, retryBackoff),
		),
		Verifier:  fetch.NewVerifier(dc.ValidateDownloads),
		Artifacts: artifactstore.NewJSONStore(p.root, p.cfg, artifactstore.WithIndex(true)),
		Ledger:    led,
		Metrics:   p.metrics,
		Dirs:      inputs.NewChecker(),
	}
	uc := usecase.NewCollectData(deps, usecase.CollectSettings{
		Root:          p.root,
		FASTQDir:      fastq,
		Concurrency:   dc.MaxConcurrentDownloads,
		MinReadLength: dc.MinReadLength,
		Prefetch:      prefetch,
		Dirs:          dirs,
	})
	uc.SetLogger(p.log)
	return uc, nil
}

// sraToolkit bounds prefetch and fasterq-dump by the NCBI request timeout.
func sraToolkit(runner ports.CommandRunner, dir string, archive domain.ArchiveConfig) *sratools.Toolkit {
	return sratools.NewToolkit(runner, dir, sratools.WithTimeout(archive.Timeout))
}

func (p *projectCtx) qc() *usecase.CheckQC {
	uc := usecase.NewCheckQC(projectfs.New(p.root), p.cfg.QC.Checks, p.metrics)
	uc.SetLogger(p.log)
	return uc
}

func (p *projectCtx) mirror(ctx context.Context) (*usecase.SyncResults, *s3mirror.Store, error) {
	store, err := s3mirror.New(ctx, p.cfg.Mirror.S3)
	if err != nil {
		return nil, nil, err
	}
	uc := usecase.NewSyncResults(projectfs.New(p.root), store)
	uc.SetLogger(p.log)
	return uc, store, nil
}

// syncPaths are the root-relative paths mirrored by sync.
func (p *projectCtx) syncPaths() []string {
	return []string{
		p.cfg.Paths.ResultsDir,
		p.cfg.DataCollection.Storage.Metadata,
		p.cfg.Paths.SampleList,
	}
}

func (p *projectCtx) dashboardDeps(debug bool) tui.Deps {
	d := tui.Deps{
		Root:           p.root,
		Samples:        p.samples(),
		SamplesRequest: p.samplesRequest(),
		QC:             p.qc(),
		Logger:         p.log,
		Debug:          debug,
	}
	if uc, err := p.collector(false); err == nil {
		d.Downloads = uc
	} else {
		p.log.Warn("tui.downloads_unavailable", "error", err)
	}
	return d
}
