// ABOUTME: Tests for the progress ticker
// ABOUTME: Checks elapsed formatting, self-cancellation and stop semantics
package recorder

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElapsedString(t *testing.T) {
	tests := []struct {
		elapsed Elapsed
		want    string
	}{
		{0, "00:00:00"},
		{1, "00:00:01"},
		{59, "00:00:59"},
		{60, "00:01:00"},
		{61, "00:01:01"},
		{3599, "00:59:59"},
		{3661, "01:01:01"},
		{86399, "23:59:59"},
		{360000, "100:00:00"},
		{-5, "00:00:00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.elapsed.String(), "elapsed %d", int64(tt.elapsed))
	}
}

func TestElapsedDuration(t *testing.T) {
	assert.Equal(t, 90*time.Second, Elapsed(90).Duration())
}

func TestTickerCountsWhileActive(t *testing.T) {
	var active atomic.Bool
	active.Store(true)

	var mu sync.Mutex
	var ticks []Elapsed
	tk := newProgressTicker(5*time.Millisecond, active.Load, func(e Elapsed) {
		mu.Lock()
		ticks = append(ticks, e)
		mu.Unlock()
	})
	tk.start()

	require.Eventually(t, func() bool { return tk.value() >= 3 }, time.Second, time.Millisecond)
	tk.stop()

	mu.Lock()
	defer mu.Unlock()
	for i, e := range ticks {
		assert.Equal(t, Elapsed(i+1), e)
	}
	assert.Equal(t, Elapsed(len(ticks)), tk.value())
}

func TestTickerSelfCancels(t *testing.T) {
	var active atomic.Bool
	var calls atomic.Int32
	tk := newProgressTicker(5*time.Millisecond, active.Load, func(Elapsed) { calls.Add(1) })
	tk.start()

	// the goroutine exits on the first tick that sees an inactive recorder
	done := make(chan struct{})
	go func() {
		tk.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ticker did not exit when inactive")
	}
	assert.Zero(t, calls.Load())
	tk.stop()
}

func TestTickerStopIsIdempotent(t *testing.T) {
	var active atomic.Bool
	active.Store(true)
	tk := newProgressTicker(time.Hour, active.Load, func(Elapsed) {})
	tk.start()

	tk.stop()
	tk.stop()
	assert.Equal(t, Elapsed(0), tk.value())
}
