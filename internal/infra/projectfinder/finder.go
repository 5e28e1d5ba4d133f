// Package projectfinder locates the FragmentFusion project a command runs in.
package projectfinder

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
	"github.com/dhruv-ramu/FragmentFusion/internal/infra/config"
)

// EnvProject names a project root that wins over the upward search.
const EnvProject = "FRAGFUSION_PROJECT"

// Finder walks up from a start directory until it sees the config file.
type Finder struct {
	marker string
	getenv func(string) string
}

type Option func(*Finder)

// WithMarker changes the file that marks a project root.
func WithMarker(name string) Option {
	return func(f *Finder) { f.marker = name }
}

// WithGetenv replaces os.Getenv.
func WithGetenv(fn func(string) string) Option {
	return func(f *Finder) { f.getenv = fn }
}

func NewFinder(opts ...Option) *Finder {
	f := &Finder{marker: config.FileName, getenv: os.Getenv}
	for _, o := range opts {
		o(f)
	}
	return f
}

// FindRoot returns the project root for startDir. A FRAGFUSION_PROJECT that
// holds the marker is used as is; otherwise startDir (or the directory of a
// file path) and its parents are searched.
func (f *Finder) FindRoot(startDir string) (string, error) {
	if env := f.getenv(EnvProject); env != "" {
		if root, err := filepath.Abs(env); err == nil && f.isRoot(root) {
			return root, nil
		}
	}

	if startDir == "" {
		return "", &domain.OpError{
			Op:   "projectfinder.findroot",
			Kind: domain.KindInvalidInput,
			Err:  errors.New("start directory is empty"),
		}
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", &domain.OpError{Op: "projectfinder.findroot", Kind: domain.KindExecution, Path: startDir, Err: err}
	}
	if st, err := os.Stat(dir); err == nil && !st.IsDir() {
		dir = filepath.Dir(dir)
	}

	for d := dir; ; {
		if f.isRoot(d) {
			return d, nil
		}
		parent := filepath.Dir(d)
		if parent == d {
			break
		}
		d = parent
	}
	return "", &domain.OpError{
		Op:   "projectfinder.findroot",
		Kind: domain.KindNotFound,
		Path: dir,
		Err:  domain.ErrNotFound,
	}
}

func (f *Finder) isRoot(dir string) bool {
	st, err := os.Stat(filepath.Join(dir, f.marker))
	return err == nil && !st.IsDir()
}
