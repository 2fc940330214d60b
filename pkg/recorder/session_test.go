// ABOUTME: Tests for the recording session
// ABOUTME: Covers begin/feed/end transitions, frame drops and the partial-frame policy
package recorder

import (
	"errors"
	"testing"

	"github.com/oply/opusrec/pkg/audio"
	"github.com/oply/opusrec/pkg/audio/encode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(w *fakeWriter, onErr func(error)) *Session {
	op := &opener{writer: w}
	return NewSession(SessionConfig{Open: op.open, OnFrameError: onErr})
}

func TestSessionFeedWhileIdleIsNoop(t *testing.T) {
	w := &fakeWriter{}
	s := newTestSession(w, nil)

	s.Feed(pcm(0, 4*audio.FrameBytes))
	assert.Zero(t, w.frameCount())
	assert.False(t, s.Active())
	assert.Zero(t, s.Stats().PendingBytes)
}

func TestSessionBeginFailure(t *testing.T) {
	cause := errors.New("no space")
	s := NewSession(SessionConfig{
		Open: func(string, int) (encode.FrameWriter, error) { return nil, cause },
	})

	err := s.Begin("take.opus", 32000)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEncoderInit)
	assert.ErrorIs(t, err, cause)
	assert.False(t, s.Active())

	// nil writer without an error is also an init failure
	s = NewSession(SessionConfig{
		Open: func(string, int) (encode.FrameWriter, error) { return nil, nil },
	})
	assert.ErrorIs(t, s.Begin("take.opus", 32000), ErrEncoderInit)
	assert.False(t, s.Active())
}

func TestSessionBeginTwice(t *testing.T) {
	s := newTestSession(&fakeWriter{}, nil)
	require.NoError(t, s.Begin("a.opus", 32000))
	assert.Error(t, s.Begin("b.opus", 32000))
	assert.Equal(t, "a.opus", s.Path())
}

func TestSessionWritesWholeFrames(t *testing.T) {
	w := &fakeWriter{}
	s := newTestSession(w, nil)
	require.NoError(t, s.Begin("take.opus", 32000))

	s.Feed(pcm(0, 1000))
	assert.Zero(t, w.frameCount(), "no frame before the buffer fills")
	assert.Equal(t, 1000, s.Stats().PendingBytes)

	s.Feed(pcm(1000, 920))
	assert.Equal(t, 1, w.frameCount())

	s.Feed(pcm(1920, 2*audio.FrameBytes+5))
	assert.Equal(t, 3, w.frameCount())
	assert.Equal(t, 5, s.Stats().PendingBytes)

	assert.Equal(t, pcm(0, 3*audio.FrameBytes), w.written())

	stats := s.Stats()
	assert.Equal(t, uint64(3), stats.FramesWritten)
	assert.Equal(t, uint64(3*audio.FrameBytes), stats.BytesWritten)
}

func TestSessionDropsFailedFrame(t *testing.T) {
	w := &fakeWriter{failOn: map[int]bool{2: true}}
	var reported []error
	s := newTestSession(w, func(err error) { reported = append(reported, err) })
	require.NoError(t, s.Begin("take.opus", 32000))

	s.Feed(pcm(0, 4*audio.FrameBytes))

	assert.Equal(t, 3, w.frameCount())
	require.Len(t, reported, 1)
	assert.ErrorIs(t, reported[0], ErrFrameWrite)
	assert.True(t, s.Active(), "session survives a dropped frame")

	want := append(pcm(0, audio.FrameBytes), pcm(2*audio.FrameBytes, 2*audio.FrameBytes)...)
	assert.Equal(t, want, w.written())
	assert.Equal(t, uint64(1), s.Stats().FramesDropped)
}

func TestSessionEnd(t *testing.T) {
	w := &fakeWriter{}
	s := newTestSession(w, nil)
	require.NoError(t, s.Begin("take.opus", 32000))

	s.Feed(pcm(0, audio.FrameBytes+100))
	require.NoError(t, s.End())

	assert.False(t, s.Active())
	assert.Equal(t, 1, w.closeCount())
	assert.Equal(t, 1, w.frameCount(), "partial frame is not flushed")
	assert.Zero(t, s.Stats().PendingBytes)

	// idempotent
	require.NoError(t, s.End())
	assert.Equal(t, 1, w.closeCount())

	// feeding after End does nothing
	s.Feed(pcm(0, audio.FrameBytes))
	assert.Equal(t, 1, w.frameCount())
}

func TestSessionEndReportsCloseError(t *testing.T) {
	w := &fakeWriter{closeErr: errors.New("trailer failed")}
	s := newTestSession(w, nil)
	require.NoError(t, s.Begin("take.opus", 32000))

	err := s.End()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "take.opus")
	assert.False(t, s.Active())
}

func TestSessionRestartResetsState(t *testing.T) {
	w := &fakeWriter{}
	s := newTestSession(w, nil)

	require.NoError(t, s.Begin("one.opus", 32000))
	s.Feed(pcm(0, audio.FrameBytes+10))
	require.NoError(t, s.End())

	require.NoError(t, s.Begin("two.opus", 32000))
	assert.Zero(t, s.Stats().FramesWritten)
	assert.Zero(t, s.Stats().PendingBytes)

	s.Feed(pcm(0, audio.FrameBytes))
	assert.Equal(t, 2, w.frameCount())
	require.NoError(t, s.End())
}
