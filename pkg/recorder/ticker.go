// ABOUTME: Progress ticker for active recordings
// ABOUTME: Counts elapsed seconds and reports them while the recorder is active
package recorder

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Elapsed is a whole number of recorded seconds
type Elapsed int64

// String formats e as HH:MM:SS; hours grow past two digits when needed
func (e Elapsed) String() string {
	secs := int64(e)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
}

// Duration converts e to a time.Duration
func (e Elapsed) Duration() time.Duration {
	return time.Duration(e) * time.Second
}

// progressTicker increments elapsed once per interval while active returns true.
// It exits on its own as soon as active reports false.
type progressTicker struct {
	interval time.Duration
	active   func() bool
	onTick   func(Elapsed)

	elapsed atomic.Int64

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func newProgressTicker(interval time.Duration, active func() bool, onTick func(Elapsed)) *progressTicker {
	return &progressTicker{
		interval: interval,
		active:   active,
		onTick:   onTick,
		stopChan: make(chan struct{}),
	}
}

func (t *progressTicker) start() {
	t.wg.Add(1)
	go t.run()
}

func (t *progressTicker) run() {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopChan:
			return
		case <-ticker.C:
			if !t.active() {
				return
			}
			t.onTick(Elapsed(t.elapsed.Add(1)))
		}
	}
}

// stop cancels the ticker and waits for an in-flight tick to finish
func (t *progressTicker) stop() {
	t.stopOnce.Do(func() {
		close(t.stopChan)
	})
	t.wg.Wait()
}

func (t *progressTicker) value() Elapsed {
	return Elapsed(t.elapsed.Load())
}
