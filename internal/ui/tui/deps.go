package tui

import (
	"log/slog"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
	"github.com/dhruv-ramu/FragmentFusion/internal/ports"
)

// Deps wires the dashboard. When Root is empty the dashboard looks for a
// project with Locator and offers Initializer to create one.
type Deps struct {
	Root        string
	Locator     ports.ProjectLocator
	Initializer ports.ProjectInitializer

	Samples        ports.SampleScanner
	SamplesRequest domain.SamplesRequest
	Downloads      ports.DownloadStatus
	QC             ports.QCRunner

	Logger *slog.Logger
	Debug  bool
}
