package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	opStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// historyLimit is the number of steps shown.
const historyLimit = 8

type interactiveModel struct {
	err     error
	session *Session
	cfg     Config
	ctx     context.Context
	input   textinput.Model
}

type sessionMsg struct {
	err     error
	session *Session
}

func newInteractiveModel(ctx context.Context, cfg Config) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "append:hello, push:1, pop, truncate:3, replace:f64=1.5"
	ti.Prompt = "op: "
	ti.Width = 48
	ti.Focus()

	return &interactiveModel{ctx: ctx, cfg: cfg, input: ti}
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.openSession)
}

func (m *interactiveModel) openSession() tea.Msg {
	s, err := NewSession(m.ctx, m.cfg)
	if err != nil {
		return sessionMsg{err: err}
	}
	for _, op := range m.cfg.Ops {
		s.Run(op)
	}
	return sessionMsg{session: s}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			if m.session != nil {
				m.session.Close()
			}
			return m, tea.Quit

		case "enter":
			op := strings.TrimSpace(m.input.Value())
			if op != "" && m.session != nil {
				m.session.Run(op)
			}
			m.input.SetValue("")
			return m, nil
		}

	case sessionMsg:
		m.err = msg.err
		m.session = msg.session
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress esc to quit.", m.err))
	}
	if m.session == nil {
		return "Creating storage..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Inline Inspector"))
	fmt.Fprintf(&b, " %s in %s, %d-byte words\n\n", m.cfg.Kind, m.cfg.Storage, m.cfg.WordSize)

	steps := m.session.Steps
	if len(steps) > historyLimit {
		steps = steps[len(steps)-historyLimit:]
	}
	for _, s := range steps {
		b.WriteString(opStyle.Render(s.Op))
		if s.Err != "" {
			b.WriteString(" ")
			b.WriteString(errorStyle.Render(s.Err))
		} else if s.Result != "" {
			b.WriteString(" ")
			b.WriteString(resultStyle.Render(s.Result))
		}
		b.WriteString("\n")
	}
	if len(steps) > 0 {
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Value: %s\n\n", m.session.Value())
	renderWords(&b, m.session.Layout(), true)
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter apply • esc quit"))

	return b.String()
}

func runInteractive(ctx context.Context, cfg Config) error {
	p := tea.NewProgram(newInteractiveModel(ctx, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
