package inputs

import (
	"errors"
	"os"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
	"github.com/dhruv-ramu/FragmentFusion/internal/ports"
)

var (
	ErrMissing     = errors.New("file does not exist")
	ErrIsDirectory = errors.New("path is a directory")
	ErrEmpty       = errors.New("file is empty")
)

// Checker validates workflow input files on the local filesystem.
type Checker struct{}

func NewChecker() *Checker { return &Checker{} }

var _ ports.InputChecker = (*Checker)(nil)

func (c *Checker) CheckFile(path string) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return invalid(path, ErrMissing)
	case err != nil:
		return invalid(path, err)
	case info.IsDir():
		return invalid(path, ErrIsDirectory)
	case info.Size() == 0:
		return invalid(path, ErrEmpty)
	}
	return nil
}

func (c *Checker) EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return &domain.OpError{Op: "inputs.ensure_dir", Kind: domain.KindExecution, Path: path, Err: err}
	}
	return nil
}

func invalid(path string, err error) error {
	return &domain.OpError{Op: "inputs.check", Kind: domain.KindInvalidInput, Path: path, Err: err}
}
