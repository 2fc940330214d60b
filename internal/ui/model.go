// ABOUTME: Bubbletea model for the recorder TUI
// ABOUTME: Defines recording state, key handling and rendering
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/oply/opusrec/pkg/recorder"
)

const (
	statsInterval = 250 * time.Millisecond
	maxFinished   = 5
)

// Options wires the model to a recorder
type Options struct {
	Toggle    func() error          // start or stop recording
	Stats     func() recorder.Stats // polled for counters
	LastError func() error          // read after a failure event
	Source    string
	Codec     string
	Bitrate   int
}

// Model represents the TUI state
type Model struct {
	opts Options

	// Recording
	recording bool
	path      string
	elapsed   string

	// Stats
	framesWritten uint64
	framesDropped uint64
	failures      int
	lastErr       string

	// History
	finished []string

	// Dimensions
	width  int
	height int

	quitting bool
}

// Messages sent by the recorder listener
type (
	StartedMsg  struct{}
	FailedMsg   struct{}
	ProgressMsg struct{ Elapsed string }
	FinishedMsg struct{ Name string }
)

type tickMsg time.Time

type toggleResultMsg struct{ err error }

// NewModel creates a new TUI model
func NewModel(opts Options) Model {
	return Model{
		opts:    opts,
		elapsed: recorder.Elapsed(0).String(),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tickEvery()
}

func tickEvery() tea.Cmd {
	return tea.Tick(statsInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		m.applyStats()
		return m, tickEvery()
	case StartedMsg:
		m.recording = true
		m.elapsed = recorder.Elapsed(0).String()
		m.failures = 0
		m.lastErr = ""
		m.applyStats()
	case ProgressMsg:
		m.elapsed = msg.Elapsed
	case FailedMsg:
		m.failures++
		if m.opts.LastError != nil {
			if err := m.opts.LastError(); err != nil {
				m.lastErr = err.Error()
			}
		}
	case FinishedMsg:
		m.recording = false
		m.finished = append([]string{msg.Name}, m.finished...)
		if len(m.finished) > maxFinished {
			m.finished = m.finished[:maxFinished]
		}
		m.applyStats()
	case toggleResultMsg:
		if msg.err != nil {
			m.lastErr = msg.err.Error()
		}
	}

	return m, nil
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case " ", "space", "r":
		return m, toggle(m.opts.Toggle)
	}
	return m, nil
}

// toggle runs outside the event loop so Stop can wait on listener calls
func toggle(fn func() error) tea.Cmd {
	if fn == nil {
		return nil
	}
	return func() tea.Msg {
		return toggleResultMsg{err: fn()}
	}
}

func (m *Model) applyStats() {
	if m.opts.Stats == nil {
		return
	}
	stats := m.opts.Stats()
	m.recording = stats.State == recorder.StateActive
	if stats.Path != "" {
		m.path = stats.Path
	}
	m.framesWritten = stats.FramesWritten
	m.framesDropped = stats.FramesDropped
	if m.recording {
		m.elapsed = stats.Elapsed.String()
	}
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).MarginBottom(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	recStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Stopping recorder...\n"
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Opus Recorder"))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("State:   "))
	if m.recording {
		b.WriteString(recStyle.Render("● REC " + m.elapsed))
	} else {
		b.WriteString(valueStyle.Render("idle"))
	}
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("File:    "))
	b.WriteString(valueStyle.Render(orDash(m.path)))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Input:   "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%s, 16kHz mono", orDash(m.opts.Source))))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Output:  "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%s @ %d kbps", orDash(m.opts.Codec), m.opts.Bitrate/1000)))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("Frames:  "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d written, %d dropped", m.framesWritten, m.framesDropped)))
	b.WriteString("\n")

	if m.failures > 0 || m.lastErr != "" {
		b.WriteString(errStyle.Render(fmt.Sprintf("Failures: %d  %s", m.failures, truncate(m.lastErr, 60))))
		b.WriteString("\n")
	}

	if len(m.finished) > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("Recent:"))
		b.WriteString("\n")
		for _, name := range m.finished {
			b.WriteString(valueStyle.Render("  • " + name))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("space:Start/Stop  q:Quit"))
	b.WriteString("\n")

	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
