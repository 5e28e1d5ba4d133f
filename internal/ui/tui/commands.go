package tui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
)

// loadTimeout bounds every dashboard read.
const loadTimeout = 2 * time.Minute

var errUnavailable = errors.New("not available without a project")

func cmdLoadSamples(deps Deps) tea.Cmd {
	return func() tea.Msg {
		if deps.Samples == nil {
			return samplesLoadedMsg{err: errUnavailable}
		}
		list, err := deps.Samples.Scan(deps.SamplesRequest)
		return samplesLoadedMsg{list: list, err: err}
	}
}

func cmdLoadDownloads(deps Deps) tea.Cmd {
	return func() tea.Msg {
		if deps.Downloads == nil {
			return downloadsLoadedMsg{err: errUnavailable}
		}
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		sums, err := deps.Downloads.Summaries()
		if err != nil {
			return downloadsLoadedMsg{err: err}
		}
		entries, err := deps.Downloads.Status(ctx, "")
		return downloadsLoadedMsg{summaries: sums, entries: entries, err: err}
	}
}

func cmdRunQC(deps Deps, log *slog.Logger) tea.Cmd {
	return func() tea.Msg {
		if deps.QC == nil {
			return qcDoneMsg{err: errUnavailable}
		}
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		report, err := deps.QC.Execute(ctx, "")
		if err != nil {
			log.Error("tui.qc_failed", "error", err)
		} else {
			log.Info("tui.qc_done", "checks", len(report.Checks), "failed", report.FailedChecks())
		}
		return qcDoneMsg{report: report, err: err}
	}
}

func cmdInitProjectHere(deps Deps, root string) tea.Cmd {
	return func() tea.Msg {
		if deps.Initializer == nil {
			return initProjectDoneMsg{root: root, err: errors.New("project initializer is not configured")}
		}
		err := deps.Initializer.Init(domain.ProjectSpec{Root: root}, false)
		return initProjectDoneMsg{root: root, err: err}
	}
}
