package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
)

type fakeScanner struct {
	list domain.SampleList
	err  error
	req  domain.SamplesRequest
}

func (f *fakeScanner) Scan(req domain.SamplesRequest) (domain.SampleList, error) {
	f.req = req
	return f.list, f.err
}

type fakeDownloads struct {
	sums    []domain.DownloadSummary
	entries []domain.LedgerEntry
}

func (f *fakeDownloads) Status(context.Context, domain.Source) ([]domain.LedgerEntry, error) {
	return f.entries, nil
}

func (f *fakeDownloads) Summaries() ([]domain.DownloadSummary, error) { return f.sums, nil }

type fakeQC struct{ report domain.QCReport }

func (f fakeQC) Execute(context.Context, string) (domain.QCReport, error) { return f.report, nil }

type fakeInit struct{ spec domain.ProjectSpec }

func (f *fakeInit) Init(spec domain.ProjectSpec, _ bool) error {
	f.spec = spec
	return nil
}

type noProject struct{}

func (noProject) FindRoot(string) (string, error) {
	return "", &domain.OpError{Op: "projectfinder.findroot", Kind: domain.KindNotFound, Err: domain.ErrNotFound}
}

func selectItem(t *testing.T, m model, title string) model {
	t.Helper()
	tm, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = tm.(model)
	for i, it := range m.menu.Items() {
		if it.(menuItem).title == title {
			m.menu.Select(i)
			return m
		}
	}
	t.Fatalf("menu has no %q item", title)
	return m
}

func press(m model, key string) (model, tea.Cmd) {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	tm, cmd := m.Update(msg)
	return tm.(model), cmd
}

func TestModel_SamplesScreenLoadsAndRenders(t *testing.T) {
	scan := &fakeScanner{list: domain.SampleList{
		Dir:     "data/raw",
		Suffix:  ".fastq.gz",
		Samples: []domain.Sample{{Name: "S1", Path: "data/raw/S1.fastq.gz"}},
	}}
	req := domain.SamplesRequest{Dir: "/p/data/raw", Suffix: ".fastq.gz"}
	m := newModel(Deps{Root: "/p", Samples: scan, SamplesRequest: req})

	m = selectItem(t, m, itemSamples)
	m, cmd := press(m, "enter")
	if m.scr != screenDetail || !m.loading || cmd == nil {
		t.Fatalf("expected detail screen loading with a command, got scr=%v loading=%v", m.scr, m.loading)
	}

	msg := cmd()
	if scan.req != req {
		t.Errorf("scanner got %+v, want %+v", scan.req, req)
	}
	tm, _ := m.Update(msg)
	m = tm.(model)
	if m.loading {
		t.Error("expected loading to end")
	}
	if view := m.View(); !strings.Contains(view, "S1") {
		t.Errorf("expected sample in view, got:\n%s", view)
	}

	m, _ = press(m, "esc")
	if m.scr != screenHome {
		t.Errorf("expected home after esc, got %v", m.scr)
	}
}

func TestModel_LoadErrorShowsUserMessage(t *testing.T) {
	scan := &fakeScanner{err: &domain.OpError{
		Op: "samplefs.scan", Kind: domain.KindNotFound, Path: "data/raw", Err: domain.ErrNotFound,
	}}
	m := newModel(Deps{Root: "/p", Samples: scan})
	m = selectItem(t, m, itemSamples)
	m, cmd := press(m, "enter")

	tm, _ := m.Update(cmd())
	m = tm.(model)
	if view := m.View(); !strings.Contains(view, "Sample directory not found: data/raw") {
		t.Errorf("expected friendly error, got:\n%s", view)
	}
}

func TestModel_DownloadsAndQC(t *testing.T) {
	d := &fakeDownloads{
		sums:    []domain.DownloadSummary{{Source: domain.SourceENA, ProjectAccession: "PRJEB9", DownloadedFiles: 2}},
		entries: []domain.LedgerEntry{{Path: "data/raw/cfdna/fastq/ERR1.fastq.gz", Project: "PRJEB9", Run: "ERR1", Size: 10}},
	}
	qc := fakeQC{report: domain.QCReport{Checks: []domain.QCCheckResult{{Name: "downloads", Error: "no report matched x"}}}}
	m := newModel(Deps{Root: "/p", Downloads: d, QC: qc})

	m = selectItem(t, m, itemDownloads)
	m, cmd := press(m, "enter")
	tm, _ := m.Update(cmd())
	m = tm.(model)
	view := m.View()
	if !strings.Contains(view, "PRJEB9") || !strings.Contains(view, "Ledger: 1 file(s), 10 bytes") {
		t.Errorf("unexpected downloads view:\n%s", view)
	}

	m, _ = press(m, "b")
	m = selectItem(t, m, itemQC)
	m, cmd = press(m, "enter")
	tm, _ = m.Update(cmd())
	m = tm.(model)
	if view := m.View(); !strings.Contains(view, "downloads [FAIL]") {
		t.Errorf("unexpected qc view:\n%s", view)
	}
}

func TestModel_NoProjectOffersInit(t *testing.T) {
	fi := &fakeInit{}
	m := newModel(Deps{Locator: noProject{}, Initializer: fi})
	if m.projectFound {
		t.Fatal("expected no project")
	}

	m = selectItem(t, m, itemSamples)
	m, cmd := press(m, "enter")
	if cmd != nil || m.scr != screenHome || !strings.Contains(m.toast, "No project found") {
		t.Fatalf("expected toast and no command, got toast=%q", m.toast)
	}

	m = selectItem(t, m, itemInit)
	m, cmd = press(m, "enter")
	if cmd == nil {
		t.Fatal("expected init command")
	}
	tm, _ := m.Update(cmd())
	m = tm.(model)
	if fi.spec.Root != m.cwd {
		t.Errorf("init root = %q, want %q", fi.spec.Root, m.cwd)
	}
	if !strings.Contains(m.toast, "Project created") {
		t.Errorf("unexpected toast %q", m.toast)
	}
}

func TestModel_ProjectFoundHidesInit(t *testing.T) {
	m := newModel(Deps{Root: "/p"})
	for _, it := range m.menu.Items() {
		if it.(menuItem).title == itemInit {
			t.Fatal("init item shown inside a project")
		}
	}
}

func TestSafeModel_PassesUpdatesThrough(t *testing.T) {
	s := wrapSafe(newModel(Deps{Root: "/p"}), nil)

	tm, cmd := s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if _, ok := tm.(safeModel); !ok {
		t.Fatalf("expected safeModel, got %T", tm)
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestCmdLoad_WithoutDeps(t *testing.T) {
	msg := cmdLoadSamples(Deps{})().(samplesLoadedMsg)
	if !errors.Is(msg.err, errUnavailable) {
		t.Fatalf("expected errUnavailable, got %v", msg.err)
	}
	if got := userMessage(msg.err); got != "Not available without a project" {
		t.Errorf("unexpected message %q", got)
	}
}
