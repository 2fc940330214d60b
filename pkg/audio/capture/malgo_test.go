// ABOUTME: Tests for the malgo capture bridge
// ABOUTME: Exercises the callback-to-read ring buffer without opening a device
package capture

import (
	"testing"
	"time"

	"github.com/oply/opusrec/pkg/audio"
	"github.com/smallnest/ringbuffer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStream(capacity int) *malgoStream {
	return &malgoStream{
		ring:   ringbuffer.New(capacity),
		ready:  make(chan struct{}, 1),
		closed: make(chan struct{}),
		logger: zap.NewNop(),
	}
}

func TestMalgoMinBufferSize(t *testing.T) {
	src := NewMalgo(MalgoConfig{})
	size, err := src.MinBufferSize(audio.RecordFormat)
	require.NoError(t, err)
	assert.Equal(t, 320*2*2, size)

	src = NewMalgo(MalgoConfig{PeriodFrames: 480, Periods: 3})
	size, err = src.MinBufferSize(audio.RecordFormat)
	require.NoError(t, err)
	assert.Equal(t, 480*3*2, size)

	_, err = src.MinBufferSize(audio.Format{SampleRate: 16000, Channels: 1, BitDepth: 32})
	assert.Error(t, err)
}

func TestMalgoStreamDeliversCallbackData(t *testing.T) {
	s := newTestStream(64)

	s.onData(nil, []byte{1, 2, 3, 4}, 2)

	buf := make([]byte, 16)
	n, err := s.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, buf[:n])
}

func TestMalgoStreamReadWaitsForData(t *testing.T) {
	s := newTestStream(64)

	done := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 8)
		n, _ := s.Read(buf)
		done <- buf[:n]
	}()

	time.Sleep(10 * time.Millisecond)
	s.onData(nil, []byte{9, 9}, 1)

	select {
	case got := <-done:
		assert.Equal(t, []byte{9, 9}, got)
	case <-time.After(time.Second):
		t.Fatal("Read did not wake up on new data")
	}
}

func TestMalgoStreamOverrunIsTransient(t *testing.T) {
	s := newTestStream(4)

	s.onData(nil, []byte{1, 2, 3, 4}, 2)
	s.onData(nil, []byte{5, 6, 7, 8}, 2)

	_, err := s.Read(make([]byte, 8))
	assert.ErrorIs(t, err, ErrTransientRead)

	n, err := s.Read(make([]byte, 8))
	require.NoError(t, err, "buffered data is still readable after an overrun")
	assert.Greater(t, n, 0)
}

func TestMalgoStreamClosedUnblocksRead(t *testing.T) {
	s := newTestStream(64)

	done := make(chan error, 1)
	go func() {
		_, err := s.Read(make([]byte, 8))
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	close(s.closed)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrStreamClosed)
	case <-time.After(time.Second):
		t.Fatal("Read did not return after close")
	}

	// callbacks after close are ignored
	s.onData(nil, []byte{1, 2}, 1)
	assert.Equal(t, 0, s.ring.Length())
}
