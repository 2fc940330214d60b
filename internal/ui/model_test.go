// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests recorder events, key handling and rendering
package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/oply/opusrec/pkg/recorder"
)

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return model, cmd
}

func TestNewModel(t *testing.T) {
	model := NewModel(Options{})

	if model.recording {
		t.Error("expected recording to be false initially")
	}
	if model.elapsed != "00:00:00" {
		t.Errorf("expected elapsed 00:00:00, got %s", model.elapsed)
	}
	if model.failures != 0 {
		t.Errorf("expected no failures, got %d", model.failures)
	}
}

func TestRecordingLifecycleMessages(t *testing.T) {
	model := NewModel(Options{})

	model, _ = update(t, model, StartedMsg{})
	if !model.recording {
		t.Error("expected recording after StartedMsg")
	}

	model, _ = update(t, model, ProgressMsg{Elapsed: "00:00:03"})
	if model.elapsed != "00:00:03" {
		t.Errorf("expected elapsed 00:00:03, got %s", model.elapsed)
	}

	model, _ = update(t, model, FinishedMsg{Name: "take.opus"})
	if model.recording {
		t.Error("expected idle after FinishedMsg")
	}
	if len(model.finished) != 1 || model.finished[0] != "take.opus" {
		t.Errorf("unexpected finished list: %v", model.finished)
	}
}

func TestFinishedHistoryIsBounded(t *testing.T) {
	model := NewModel(Options{})
	for i := 0; i < maxFinished+3; i++ {
		model, _ = update(t, model, FinishedMsg{Name: string(rune('a' + i))})
	}

	if len(model.finished) != maxFinished {
		t.Fatalf("expected %d entries, got %d", maxFinished, len(model.finished))
	}
	if model.finished[0] != string(rune('a'+maxFinished+2)) {
		t.Errorf("expected newest first, got %v", model.finished)
	}
}

func TestFailedMsgReadsLastError(t *testing.T) {
	model := NewModel(Options{
		LastError: func() error { return errors.New("frame write failed: disk full") },
	})

	model, _ = update(t, model, FailedMsg{})
	model, _ = update(t, model, FailedMsg{})

	if model.failures != 2 {
		t.Errorf("expected 2 failures, got %d", model.failures)
	}
	if !strings.Contains(model.lastErr, "disk full") {
		t.Errorf("expected last error to mention disk full, got %q", model.lastErr)
	}

	// a new recording clears the failure count
	model, _ = update(t, model, StartedMsg{})
	if model.failures != 0 || model.lastErr != "" {
		t.Errorf("expected failures reset, got %d %q", model.failures, model.lastErr)
	}
}

func TestTickAppliesStats(t *testing.T) {
	model := NewModel(Options{
		Stats: func() recorder.Stats {
			return recorder.Stats{
				State:         recorder.StateActive,
				Path:          "/tmp/take.opus",
				Elapsed:       61,
				FramesWritten: 1000,
				FramesDropped: 2,
			}
		},
	})

	model, cmd := update(t, model, tickMsg{})
	if cmd == nil {
		t.Error("expected tick to reschedule itself")
	}
	if !model.recording {
		t.Error("expected recording from stats")
	}
	if model.path != "/tmp/take.opus" {
		t.Errorf("expected path from stats, got %s", model.path)
	}
	if model.elapsed != "00:01:01" {
		t.Errorf("expected elapsed 00:01:01, got %s", model.elapsed)
	}
	if model.framesWritten != 1000 || model.framesDropped != 2 {
		t.Errorf("unexpected frame counters: %d/%d", model.framesWritten, model.framesDropped)
	}
}

func TestSpaceTogglesRecording(t *testing.T) {
	calls := 0
	model := NewModel(Options{
		Toggle: func() error {
			calls++
			return errors.New("no capture device")
		},
	})

	model, cmd := update(t, model, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if cmd == nil {
		t.Fatal("expected a toggle command")
	}
	if calls != 0 {
		t.Error("toggle must run as a command, not inside Update")
	}

	msg := cmd()
	if calls != 1 {
		t.Errorf("expected toggle to be called once, got %d", calls)
	}

	model, _ = update(t, model, msg)
	if model.lastErr != "no capture device" {
		t.Errorf("expected toggle error to be shown, got %q", model.lastErr)
	}
}

func TestToggleWithoutHandler(t *testing.T) {
	model := NewModel(Options{})
	_, cmd := update(t, model, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if cmd != nil {
		t.Error("expected no command without a toggle handler")
	}
}

func TestQuitKey(t *testing.T) {
	model := NewModel(Options{})

	model, cmd := update(t, model, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !model.quitting {
		t.Error("expected quitting after q")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestWindowSize(t *testing.T) {
	model := NewModel(Options{})
	model, _ = update(t, model, tea.WindowSizeMsg{Width: 80, Height: 24})
	if model.width != 80 || model.height != 24 {
		t.Errorf("expected 80x24, got %dx%d", model.width, model.height)
	}
}

func TestViewRendersState(t *testing.T) {
	model := NewModel(Options{Source: "mic", Codec: "opus", Bitrate: 32000})

	view := model.View()
	for _, want := range []string{"Opus Recorder", "idle", "opus @ 32 kbps", "space:Start/Stop"} {
		if !strings.Contains(view, want) {
			t.Errorf("idle view missing %q", want)
		}
	}

	model, _ = update(t, model, StartedMsg{})
	model, _ = update(t, model, ProgressMsg{Elapsed: "00:00:07"})
	view = model.View()
	if !strings.Contains(view, "REC 00:00:07") {
		t.Error("recording view missing elapsed time")
	}

	model.quitting = true
	if !strings.Contains(model.View(), "Stopping") {
		t.Error("expected quitting message")
	}
}

type fakeSender struct {
	msgs []tea.Msg
}

func (f *fakeSender) Send(msg tea.Msg) {
	f.msgs = append(f.msgs, msg)
}

func TestListenerForwardsEvents(t *testing.T) {
	sender := &fakeSender{}
	l := NewListener(sender)

	l.OnStarted()
	l.OnProgress("00:00:01")
	l.OnFailed()
	l.OnFinished("take.opus")

	if len(sender.msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(sender.msgs))
	}
	if _, ok := sender.msgs[0].(StartedMsg); !ok {
		t.Errorf("expected StartedMsg, got %T", sender.msgs[0])
	}
	if p, ok := sender.msgs[1].(ProgressMsg); !ok || p.Elapsed != "00:00:01" {
		t.Errorf("unexpected progress message: %#v", sender.msgs[1])
	}
	if _, ok := sender.msgs[2].(FailedMsg); !ok {
		t.Errorf("expected FailedMsg, got %T", sender.msgs[2])
	}
	if f, ok := sender.msgs[3].(FinishedMsg); !ok || f.Name != "take.opus" {
		t.Errorf("unexpected finished message: %#v", sender.msgs[3])
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("a very long error message", 10); got != "a very ..." {
		t.Errorf("truncate long = %q", got)
	}
}
