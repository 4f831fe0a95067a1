package main

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/parcelgen"
	"github.com/wippyai/parcelgen/desc"
	"github.com/wippyai/parcelgen/errors"
	"github.com/wippyai/parcelgen/gogen"
	"github.com/wippyai/parcelgen/hierarchy"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type entry struct {
	err   error
	procs *parcelgen.Procedures
	agg   desc.Aggregate
}

type view int

const (
	viewListing view = iota
	viewSource
)

type modelState int

const (
	stateSelect modelState = iota
	stateFilter
	stateShow
)

type interactiveModel struct {
	oracle   hierarchy.Oracle
	opts     gogen.Options
	entries  []entry
	visible  []int
	filter   textinput.Model
	viewport viewport.Model
	selected int
	width    int
	height   int
	view     view
	state    modelState
}

func newInteractiveModel(aggs []desc.Aggregate, procs []*parcelgen.Procedures, genErr error, oracle hierarchy.Oracle, opts gogen.Options) *interactiveModel {
	entries := make([]entry, len(aggs))
	for i, a := range aggs {
		entries[i] = entry{agg: a}
		if i < len(procs) {
			entries[i].procs = procs[i]
		}
		if entries[i].procs == nil {
			entries[i].err = failureOf(genErr, a.Name)
		}
	}

	ti := textinput.New()
	ti.Placeholder = "aggregate name"
	ti.Prompt = "/ "
	ti.Width = 40

	m := &interactiveModel{
		oracle:   oracle,
		opts:     opts,
		entries:  entries,
		filter:   ti,
		viewport: viewport.New(80, 20),
		state:    stateSelect,
	}
	m.applyFilter()
	return m
}

// failureOf finds the error reported for one aggregate in a joined error.
func failureOf(err error, name string) error {
	if err == nil {
		return nil
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return err
	}
	for _, e := range joined.Unwrap() {
		var pe *errors.Error
		if stderrors.As(e, &pe) && pe.Owner == name {
			return e
		}
	}
	return stderrors.New("not generated")
}

func (m *interactiveModel) applyFilter() {
	q := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for i, e := range m.entries {
		if q == "" || strings.Contains(strings.ToLower(e.agg.Name), q) {
			m.visible = append(m.visible, i)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
}

func (m *interactiveModel) current() (entry, bool) {
	if len(m.visible) == 0 {
		return entry{}, false
	}
	return m.entries[m.visible[m.selected]], true
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-4, 1)
		return m, nil

	case tea.KeyMsg:
		if m.state == stateFilter {
			switch msg.String() {
			case "enter", "esc":
				m.filter.Blur()
				m.state = stateSelect
				return m, nil
			}
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.applyFilter()
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "/":
			if m.state == stateSelect {
				m.state = stateFilter
				return m, m.filter.Focus()
			}

		case "up", "k":
			if m.state == stateSelect && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelect && m.selected < len(m.visible)-1 {
				m.selected++
			}

		case "enter":
			if m.state == stateSelect {
				if _, ok := m.current(); ok {
					m.state = stateShow
					m.view = viewListing
					m.refresh()
				}
			}

		case "tab":
			if m.state == stateShow {
				m.view = 1 - m.view
				m.refresh()
			}

		case "esc":
			if m.state == stateShow {
				m.state = stateSelect
			}
		}
	}

	if m.state == stateShow {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// refresh renders the selected aggregate into the viewport.
func (m *interactiveModel) refresh() {
	e, ok := m.current()
	if !ok {
		return
	}
	var content string
	switch {
	case e.err != nil:
		content = errorStyle.Render(fmt.Sprintf("Error: %v", e.err))
	case m.view == viewSource:
		src, err := gogen.Render([]*parcelgen.Procedures{e.procs}, m.oracle, m.opts)
		if err != nil {
			content = errorStyle.Render(fmt.Sprintf("Error: %v", err))
		} else {
			content = string(src)
		}
	default:
		content = e.procs.String()
	}
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("parcelgen"))
	b.WriteString(fmt.Sprintf(" %d aggregates\n\n", len(m.entries)))

	switch m.state {
	case stateSelect, stateFilter:
		if m.state == stateFilter || m.filter.Value() != "" {
			b.WriteString(m.filter.View())
			b.WriteString("\n\n")
		}
		for i, idx := range m.visible {
			line := m.formatEntry(m.entries[idx])
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter show • / filter • q quit"))

	case stateShow:
		e, _ := m.current()
		title := "program listing"
		if m.view == viewSource {
			title = "Go source"
		}
		b.WriteString(fmt.Sprintf("%s: %s\n", nameStyle.Render(e.agg.Name), typeStyle.Render(title)))
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab listing/source • ↑/↓ scroll • esc back • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) formatEntry(e entry) string {
	fields := make([]string, len(e.agg.Fields))
	for i, f := range e.agg.Fields {
		fields[i] = f.Name + " " + typeStyle.Render(f.Type.String())
	}
	line := nameStyle.Render(e.agg.Name) + "(" + strings.Join(fields, ", ") + ")"
	if e.err != nil {
		line += " " + errorStyle.Render("rejected")
	}
	return line
}

func runInteractive(aggs []desc.Aggregate, procs []*parcelgen.Procedures, genErr error, oracle hierarchy.Oracle, opts gogen.Options) error {
	p := tea.NewProgram(newInteractiveModel(aggs, procs, genErr, oracle, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
