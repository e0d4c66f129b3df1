// Package ui renders live job progress in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/winjanitor/winjanitor/internal/cleaner"
	"github.com/winjanitor/winjanitor/internal/jobs"
	"github.com/winjanitor/winjanitor/internal/scanner"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Outcome is what the progress view hands back once the job's event stream
// closes.
type Outcome struct {
	Scan      *scanner.ScanResult
	Clean     *cleaner.CleanResult
	Cancelled bool
	Err       error
}

type eventMsg struct {
	ev jobs.Event
	ok bool
}

// Model is a bubbletea model following one job handle to completion.
type Model struct {
	title   string
	handle  *jobs.Handle
	spin    spinner.Model
	bar     progress.Model
	label   string
	percent int
	outcome Outcome
	done    bool
}

// NewModel builds a progress view for a running job.
func NewModel(title string, h *jobs.Handle) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return &Model{
		title:  title,
		handle: h,
		spin:   s,
		bar:    progress.New(progress.WithDefaultGradient()),
	}
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.handle.Events
		return eventMsg{ev: ev, ok: ok}
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.waitForEvent())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			// Cooperative: the worker stops at its next boundary and the
			// cancelled event ends the program.
			m.handle.Cancel()
			return m, nil
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case eventMsg:
		if !msg.ok {
			m.done = true
			return m, tea.Quit
		}
		switch msg.ev.Type {
		case jobs.EventProgress:
			m.label = msg.ev.Label
			m.percent = msg.ev.Percent
		case jobs.EventCompleted:
			m.percent = 100
			m.outcome.Scan = msg.ev.Scan
			m.outcome.Clean = msg.ev.Clean
		case jobs.EventCancelled:
			m.outcome.Cancelled = true
		case jobs.EventFailed:
			m.outcome.Err = msg.ev.Err
		}
		return m, m.waitForEvent()
	}
	return m, nil
}

func (m *Model) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")
	b.WriteString(m.spin.View())
	b.WriteString(" ")
	if m.label != "" {
		b.WriteString(labelStyle.Render(truncatePath(m.label, 70)))
	}
	b.WriteString("\n")
	b.WriteString(m.bar.ViewAs(float64(m.percent) / 100))
	b.WriteString(fmt.Sprintf(" %3d%%", m.percent))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("press q to cancel"))
	if m.outcome.Err != nil {
		b.WriteString("\n")
		b.WriteString(errStyle.Render(m.outcome.Err.Error()))
	}
	b.WriteString("\n")
	return b.String()
}

// Run follows the job in a terminal program and returns its outcome.
func Run(title string, h *jobs.Handle) (Outcome, error) {
	m := NewModel(title, h)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return Outcome{}, err
	}
	return m.outcome, nil
}

func truncatePath(s string, width int) string {
	if len(s) <= width {
		return s
	}
	return "..." + s[len(s)-width+3:]
}
