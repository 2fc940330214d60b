// ABOUTME: TUI initialization and recorder event bridge
// ABOUTME: Wraps the bubbletea program and forwards recorder callbacks as messages
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/oply/opusrec/pkg/recorder"
)

// Sender delivers messages to a running program
type Sender interface {
	Send(msg tea.Msg)
}

// Listener forwards recorder events to the TUI
type Listener struct {
	sender Sender
}

var _ recorder.Listener = Listener{}

// NewListener creates a listener sending to s
func NewListener(s Sender) Listener {
	return Listener{sender: s}
}

func (l Listener) OnStarted()                { l.sender.Send(StartedMsg{}) }
func (l Listener) OnFailed()                 { l.sender.Send(FailedMsg{}) }
func (l Listener) OnProgress(elapsed string) { l.sender.Send(ProgressMsg{Elapsed: elapsed}) }
func (l Listener) OnFinished(name string)    { l.sender.Send(FinishedMsg{Name: name}) }

// NewProgram creates the TUI program; call Run on it to take over the terminal
func NewProgram(opts Options) *tea.Program {
	return tea.NewProgram(NewModel(opts), tea.WithAltScreen())
}
