// Package tui renders the presentation contract as a terminal dashboard.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rickgao/pricewatch/internal/lifecycle"
	"github.com/rickgao/pricewatch/internal/presentation"
)

// Source supplies views and accepts manual refreshes. presentation.Local and
// stream.Client both satisfy it.
type Source interface {
	Views() <-chan presentation.View
	Refresh()
}

type viewMsg presentation.View

// Model is the bubbletea model for the dashboard.
type Model struct {
	source  Source
	title   string
	view    presentation.View
	spinner spinner.Model
	keys    keyMap
	width   int
}

// New creates a dashboard over source.
func New(source Source, title string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = noticeStyle

	return Model{
		source:  source,
		title:   title,
		view:    presentation.From(lifecycle.State{}),
		spinner: s,
		keys:    defaultKeys(),
		width:   80,
	}
}

func waitForView(src Source) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-src.Views()
		if !ok {
			return nil
		}
		return viewMsg(v)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForView(m.source))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case viewMsg:
		m.view = presentation.View(msg)
		return m, waitForView(m.source)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			m.source.Refresh()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("%s  [%s]", m.title, m.view.Status)))
	b.WriteString("\n\n")
	b.WriteString(m.renderBody())
	b.WriteString("\n")

	footer := fmt.Sprintf("%s • %s",
		m.keys.Refresh.Help().Key+" "+m.keys.Refresh.Help().Desc,
		m.keys.Quit.Help().Key+" "+m.keys.Quit.Help().Desc,
	)
	if !m.view.UpdatedAt.IsZero() {
		footer += "  updated " + m.view.UpdatedAt.Local().Format("15:04:05")
	}
	b.WriteString(footerStyle.Render(footer))
	return b.String()
}

func (m Model) renderBody() string {
	v := m.view
	switch v.Display.Mode {
	case presentation.ModeData:
		return renderChart(*v.ViewModel, m.width, false) + "\n" + renderTable(*v.ViewModel, false)

	case presentation.ModeEmpty:
		return noticeStyle.Render(v.Display.Message) + "\n"

	case presentation.ModeError:
		out := errorStyle.Render(v.Display.Message) + "\n"
		if v.LastKnownGood != nil {
			out += "\n" + dimStyle.Render("last known prices:") + "\n" + renderTable(*v.LastKnownGood, true)
		}
		return out

	default:
		out := m.spinner.View() + " " + v.Display.Message + "\n"
		if v.LastKnownGood != nil {
			out += "\n" + renderChart(*v.LastKnownGood, m.width, true) + "\n" + renderTable(*v.LastKnownGood, true)
		}
		return out
	}
}
