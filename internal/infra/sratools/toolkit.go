package sratools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
	"github.com/dhruv-ramu/FragmentFusion/internal/ports"
)

// Toolkit runs prefetch and fasterq-dump from the NCBI sra-tools.
type Toolkit struct {
	runner  ports.CommandRunner
	dir     string
	timeout time.Duration

	prefetch    string
	fasterqDump string
}

type Option func(*Toolkit)

// WithTimeout bounds every tool invocation.
func WithTimeout(d time.Duration) Option {
	return func(t *Toolkit) { t.timeout = d }
}

// NewToolkit runs the tools from dir; prefetch stores its cache there.
func NewToolkit(runner ports.CommandRunner, dir string, opts ...Option) *Toolkit {
	t := &Toolkit{
		runner:      runner,
		dir:         dir,
		prefetch:    "prefetch",
		fasterqDump: "fasterq-dump",
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

var _ ports.SRAToolkit = (*Toolkit)(nil)

func (t *Toolkit) Prefetch(ctx context.Context, run string) error {
	args := []string{"--max-size", "100G", "--output-directory", ".", run}
	return t.exec(ctx, "sratools.prefetch", run, t.prefetch, args)
}

func (t *Toolkit) FasterqDump(ctx context.Context, run, outDir string, threads, minReadLen int) error {
	if threads < 1 {
		threads = 1
	}
	args := []string{
		"--outdir", outDir,
		"--threads", strconv.Itoa(threads),
		"--split-files",
		"--skip-technical",
		"--min-read-len", strconv.Itoa(minReadLen),
		run,
	}
	return t.exec(ctx, "sratools.fasterq_dump", run, t.fasterqDump, args)
}

// Outputs lists regular files in outDir named <run>.fastq* or <run>_*.fastq*.
// The separator check keeps SRR1 from matching SRR10 files.
func (t *Toolkit) Outputs(outDir, run string) ([]domain.LocalFile, error) {
	matches, err := filepath.Glob(filepath.Join(outDir, run+"*.fastq*"))
	if err != nil {
		return nil, &domain.OpError{Op: "sratools.outputs", Kind: domain.KindInvalidInput, Path: run, Err: err}
	}
	sort.Strings(matches)

	out := []domain.LocalFile{}
	for _, m := range matches {
		rest := strings.TrimPrefix(filepath.Base(m), run)
		if !strings.HasPrefix(rest, "_") && !strings.HasPrefix(rest, ".") {
			continue
		}
		info, err := os.Stat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		out = append(out, domain.LocalFile{Path: m, Size: info.Size()})
	}
	return out, nil
}

func (t *Toolkit) exec(ctx context.Context, op, run, bin string, args []string) error {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	res, err := t.runner.Run(ctx, domain.Command{Name: bin, Args: args, Dir: t.dir, Capture: true})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", t.timeout, err)
		}
		return &domain.OpError{Op: op, Kind: domain.KindExecution, Path: run, Err: err}
	}
	if !res.OK() {
		msg := strings.TrimSpace(res.Stderr)
		if msg == "" {
			msg = bin + " exited with a non-zero status"
		}
		return &domain.OpError{
			Op:   op,
			Kind: domain.KindExecution,
			Path: run,
			Err:  fmt.Errorf("exit %d: %s: %w", res.ExitCode, msg, domain.ErrExecution),
		}
	}
	return nil
}
