package tui

import "github.com/dhruv-ramu/FragmentFusion/internal/domain"

type samplesLoadedMsg struct {
	list domain.SampleList
	err  error
}

type downloadsLoadedMsg struct {
	summaries []domain.DownloadSummary
	entries   []domain.LedgerEntry
	err       error
}

type qcDoneMsg struct {
	report domain.QCReport
	err    error
}

type initProjectDoneMsg struct {
	root string
	err  error
}
