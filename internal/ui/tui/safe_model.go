package tui

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
)

const panicToast = "Unexpected error (see logs)"

// safeModel keeps a panic in Update or View from tearing down the terminal.
// Update falls back to the menu; View falls back to a one-line notice.
type safeModel struct {
	m   model
	log *slog.Logger
}

func wrapSafe(m model, log *slog.Logger) safeModel {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return safeModel{m: m, log: log}
}

func (s safeModel) Init() tea.Cmd { return s.m.Init() }

func (s safeModel) Update(msg tea.Msg) (next tea.Model, cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			s.report("update", r)
			s.m.goHome()
			s.m.toast = panicToast
			next, cmd = s, nil
		}
	}()

	inner, c := s.m.Update(msg)
	switch v := inner.(type) {
	case model:
		s.m = v
	case safeModel:
		s = v
	}
	return s, c
}

func (s safeModel) View() (out string) {
	defer func() {
		if r := recover(); r != nil {
			s.report("view", r)
			out = panicToast
		}
	}()
	return s.m.View()
}

func (s safeModel) report(where string, r any) {
	s.log.Error("tui.panic",
		"where", where,
		"screen", s.m.active,
		"panic", fmt.Sprint(r),
		"stack", string(debug.Stack()),
	)
}

var _ tea.Model = safeModel{}
