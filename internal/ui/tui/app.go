package tui

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type screen int

const (
	screenHome screen = iota
	screenDetail
)

const (
	itemSamples   = "Samples"
	itemDownloads = "Downloads"
	itemQC        = "QC"
	itemInit      = "Init project here"
	itemQuit      = "Quit"
)

type menuItem struct {
	title string
	desc  string
}

func (m menuItem) Title() string       { return m.title }
func (m menuItem) Description() string { return m.desc }
func (m menuItem) FilterValue() string { return m.title }

type model struct {
	theme Theme
	deps  Deps
	log   *slog.Logger

	scr    screen
	menu   list.Model
	detail viewport.Model
	active string

	loading bool
	toast   string

	projectFound bool
	projectRoot  string
	cwd          string
}

func Run(deps Deps) error {
	m := newModel(deps)
	p := tea.NewProgram(wrapSafe(m, m.log), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func newModel(deps Deps) model {
	log := deps.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	m := model{
		theme:  DefaultTheme(),
		deps:   deps,
		log:    log,
		scr:    screenHome,
		detail: viewport.New(80, 20),
	}

	if deps.Root != "" {
		m.projectFound = true
		m.projectRoot = deps.Root
	} else if wd, err := os.Getwd(); err == nil {
		m.cwd = wd
		if deps.Locator != nil {
			if root, err := deps.Locator.FindRoot(wd); err == nil {
				m.projectFound = true
				m.projectRoot = root
			}
		}
	}

	items := []list.Item{
		menuItem{itemSamples, "Samples found in the raw data directory"},
		menuItem{itemDownloads, "Download summaries and ledger"},
		menuItem{itemQC, "Run the configured QC checks"},
	}
	if !m.projectFound {
		items = append(items, menuItem{itemInit, "Scaffold fragfusion.yaml and the project tree"})
	}
	items = append(items, menuItem{itemQuit, "Exit FragmentFusion"})

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "FragmentFusion"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	m.menu = l

	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.menu.SetSize(msg.Width-4, msg.Height-10)
		m.detail.Width = max(msg.Width-8, 20)
		m.detail.Height = max(msg.Height-12, 5)
		return m, nil

	case samplesLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.showError(msg.err)
		} else {
			m.detail.SetContent(renderSamples(msg.list))
		}
		return m, nil

	case downloadsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.showError(msg.err)
		} else {
			m.detail.SetContent(renderDownloads(msg.summaries, msg.entries))
		}
		return m, nil

	case qcDoneMsg:
		m.loading = false
		if msg.err != nil {
			m.showError(msg.err)
		} else {
			m.detail.SetContent(renderQC(msg.report))
		}
		return m, nil

	case initProjectDoneMsg:
		m.loading = false
		if msg.err != nil {
			m.log.Error("tui.init_failed", "root", msg.root, "error", msg.err)
			m.toast = userMessage(msg.err)
		} else {
			m.log.Info("tui.init_done", "root", msg.root)
			m.toast = "Project created in " + msg.root + ". Restart fragfusion to load it."
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.scr == screenHome && m.menu.FilterState() != list.Filtering {
				return m, tea.Quit
			}
			if m.scr != screenHome {
				m.goHome()
				return m, nil
			}

		case "enter":
			if m.scr == screenHome && m.menu.FilterState() != list.Filtering {
				it, ok := m.menu.SelectedItem().(menuItem)
				if !ok {
					return m, nil
				}
				return m.open(it.title)
			}

		case "r":
			if m.scr == screenDetail && !m.loading {
				return m.open(m.active)
			}

		case "esc", "b":
			if m.scr != screenHome {
				m.goHome()
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	if m.scr == screenHome {
		m.menu, cmd = m.menu.Update(msg)
	} else {
		m.detail, cmd = m.detail.Update(msg)
	}
	return m, cmd
}

func (m model) open(item string) (tea.Model, tea.Cmd) {
	m.toast = ""
	switch item {
	case itemQuit:
		return m, tea.Quit
	case itemInit:
		m.loading = true
		return m, cmdInitProjectHere(m.deps, m.cwd)
	}

	if !m.projectFound {
		m.toast = "No project found. Choose " + itemInit + " or run `fragfusion init`."
		return m, nil
	}

	var cmd tea.Cmd
	switch item {
	case itemSamples:
		cmd = cmdLoadSamples(m.deps)
	case itemDownloads:
		cmd = cmdLoadDownloads(m.deps)
	case itemQC:
		cmd = cmdRunQC(m.deps, m.log)
	default:
		return m, nil
	}

	m.scr = screenDetail
	m.active = item
	m.loading = true
	m.detail.SetContent("Loading…")
	m.detail.GotoTop()
	return m, cmd
}

func (m *model) goHome() {
	m.scr = screenHome
	m.active = ""
	m.loading = false
}

func (m *model) showError(err error) {
	m.log.Error("tui.load_failed", "screen", m.active, "error", err)
	body := userMessage(err)
	if m.deps.Debug {
		body += "\n\n" + err.Error()
	}
	m.detail.SetContent(body)
}

func (m model) View() string {
	wrap := lipgloss.NewStyle().Padding(1, 2)
	header := m.theme.Title.Render("FragmentFusion") + "\n" +
		m.theme.Subtitle.Render("cfDNA fragmentomics project harness: samples, downloads and QC") + "\n"

	var banner string
	if m.projectFound {
		banner = m.theme.Help.Render(fmt.Sprintf("Project: %s", m.projectRoot))
	} else {
		banner = m.theme.Card.Render("⚠ No project found.\n\nChoose " + itemInit + " or run `fragfusion init`.")
	}
	if m.toast != "" {
		banner += "\n" + m.theme.Toast.Render(m.toast)
	}

	switch m.scr {
	case screenHome:
		help := m.theme.Help.Render("↑/↓ navigate • enter open • / search • q quit")
		return wrap.Render(header + "\n" + banner + "\n\n" + m.theme.Card.Render(m.menu.View()) + "\n" + help)

	case screenDetail:
		title := m.active
		if m.loading {
			title += m.theme.Subtitle.Render("  loading")
		}
		card := m.theme.Card.Render(m.theme.Title.Render(title) + "\n\n" + m.detail.View())
		help := m.theme.Help.Render("↑/↓ scroll • r reload • esc/b back • q home")
		return wrap.Render(header + "\n" + banner + "\n\n" + card + "\n" + help)

	default:
		return wrap.Render(header + "\n" + "unknown state")
	}
}
