package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/binlayout/layout"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err      error
	search   textinput.Model
	filename string
	status   string
	stack    []*layout.Instance
	selected []int
	width    int
	state    modelState
	loaded   bool
}

type modelState int

const (
	stateBrowse modelState = iota
	stateSearch
)

type loadedMsg struct {
	err error
}

func newInteractiveModel(filename string, root *layout.Instance, width int) *interactiveModel {
	ti := textinput.New()
	ti.Prompt = "field: "
	ti.Placeholder = "name"
	ti.Width = 40

	return &interactiveModel{
		filename: filename,
		search:   ti,
		stack:    []*layout.Instance{root},
		selected: []int{0},
		width:    width,
		state:    stateBrowse,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.load
}

func (m *interactiveModel) load() tea.Msg {
	return loadedMsg{err: m.stack[0].Load()}
}

func (m *interactiveModel) current() *layout.Instance {
	return m.stack[len(m.stack)-1]
}

func (m *interactiveModel) cursor() *int {
	return &m.selected[len(m.selected)-1]
}

func (m *interactiveModel) push(inst *layout.Instance) {
	m.stack = append(m.stack, inst)
	m.selected = append(m.selected, 0)
}

func (m *interactiveModel) pop() {
	if len(m.stack) > 1 {
		m.stack = m.stack[:len(m.stack)-1]
		m.selected = m.selected[:len(m.selected)-1]
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case loadedMsg:
		m.err = msg.err
		m.loaded = true

	case tea.KeyMsg:
		if m.state == stateSearch {
			return m.updateSearch(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m *interactiveModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	children := m.current().Values()
	cur := m.cursor()

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "up", "k":
		if *cur > 0 {
			*cur--
		}

	case "down", "j":
		if *cur < len(children)-1 {
			*cur++
		}

	case "enter":
		if len(children) == 0 {
			return m, nil
		}
		m.status = ""
		m.open(children[*cur])

	case "backspace", "esc":
		m.status = ""
		m.pop()

	case "/":
		if len(children) > 0 {
			m.state = stateSearch
			m.search.SetValue("")
			return m, m.search.Focus()
		}
	}
	return m, nil
}

// open descends into containers and follows pointers.
func (m *interactiveModel) open(child *layout.Instance) {
	switch {
	case child.Type().Kind() == layout.KindPointer:
		target, err := child.Deref()
		if err != nil {
			m.status = err.Error()
			return
		}
		if err := target.Load(); err != nil {
			m.status = err.Error()
		}
		m.push(target)
	case child.Type().Kind().IsContainer():
		m.push(child)
	default:
		m.status = child.String()
	}
}

func (m *interactiveModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.state = stateBrowse
		m.search.Blur()
		return m, nil

	case "enter":
		m.state = stateBrowse
		m.search.Blur()
		f, err := m.current().Field(m.search.Value())
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		if idx := slices.Index(m.current().Values(), f); idx >= 0 {
			*m.cursor() = idx
		}
		m.status = f.String()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *interactiveModel) View() string {
	if !m.loaded {
		return "Loading layout..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Layout Inspector"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Load error: %v", m.err)))
		b.WriteString("\n")
	}

	cur := m.current()
	path := cur.Path()
	if path == "" {
		path = "-"
	}
	b.WriteString(pathStyle.Render(path))
	b.WriteString(" ")
	b.WriteString(typeStyle.Render(cur.Type().String()))
	b.WriteString("\n\n")

	children := cur.Values()
	if len(children) == 0 {
		b.WriteString(m.clip(cur.Details()))
		b.WriteString("\n")
	}
	if cur.Type().Kind() == layout.KindUnion {
		b.WriteString(m.clip("  " + cur.Object().String()))
		b.WriteString("\n")
	}
	for i, c := range children {
		line := m.clip("  " + c.String())
		if i == *m.cursor() {
			line = selectedStyle.Render(m.clip("> " + c.String()))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.state == stateSearch:
		b.WriteString(m.search.View())
		b.WriteString("\n")
	case m.status != "":
		b.WriteString(valueStyle.Render(m.clip(m.status)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select • enter open • / find field • backspace up • q quit"))
	return b.String()
}

func (m *interactiveModel) clip(s string) string {
	if m.width <= 0 {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(s)
}

func runInteractive(filename string, root *layout.Instance) error {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		width = 0
	}
	p := tea.NewProgram(newInteractiveModel(filename, root, width), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
