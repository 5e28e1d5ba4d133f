package ports

import (
	"context"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
)

// SampleStore discovers samples on disk and persists sample lists.
type SampleStore interface {
	Scan(dir, suffix string) (domain.SampleList, error)
	WriteList(path string, list domain.SampleList) error
	ReadList(path string) ([]string, error)
}

// WorkflowConfigWriter updates the workflow engine's config file.
type WorkflowConfigWriter interface {
	SetSamples(path string, names []string) error
}

// InputChecker validates workflow inputs on disk.
type InputChecker interface {
	// CheckFile fails when the path is missing, a directory, or empty.
	CheckFile(path string) error
	EnsureDir(path string) error
}

// DirWatcher calls onChange after filesystem activity below dir until ctx ends.
type DirWatcher interface {
	Watch(ctx context.Context, dir string, onChange func() error) error
}
