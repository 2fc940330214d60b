// ABOUTME: Recording controller
// ABOUTME: State machine owning the feed goroutine, progress ticker and session lifecycle
package recorder

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oply/opusrec/pkg/audio"
	"github.com/oply/opusrec/pkg/audio/capture"
	"github.com/oply/opusrec/pkg/audio/encode"
	"go.uber.org/zap"
)

const (
	DefaultGracePeriod  = 200 * time.Millisecond
	DefaultTickInterval = time.Second
	DefaultPrefix       = "OpusRecord"
	DefaultBitrate      = 32000

	// pause after a hard read error so a dead device does not spin the loop
	readErrorBackoff = 20 * time.Millisecond
)

// State is the recorder state
type State int32

const (
	StateIdle State = iota
	StateActive
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// NameGenerator produces an output path when Start is given none
type NameGenerator interface {
	DefaultName(prefix string) (string, error)
}

// TrackRegistry is told about every finished recording
type TrackRegistry interface {
	RegisterCompleted(path string) error
}

// Config holds recorder configuration
type Config struct {
	Source capture.Source  // required
	Open   encode.OpenFunc // default: encode.OpenOpus
	Names  NameGenerator   // used when Start gets an empty path
	Tracks TrackRegistry   // optional

	Listener Listener
	Logger   *zap.Logger
	Metrics  Metrics

	// Format is the capture format (default: audio.RecordFormat)
	Format audio.Format

	// FrameSize is the encoder frame in bytes (default: audio.FrameBytes)
	FrameSize int

	// GracePeriod bounds each wait for the feed goroutine during Stop (default: 200ms)
	GracePeriod time.Duration

	// TickInterval is the progress period (default: 1s)
	TickInterval time.Duration

	// Prefix is passed to the NameGenerator (default: OpusRecord)
	Prefix string
}

// Stats is a snapshot of the recorder
type Stats struct {
	State         State
	Path          string
	Elapsed       Elapsed
	FramesWritten uint64
	FramesDropped uint64
	BytesWritten  uint64
}

// Recorder runs at most one capture-to-file recording at a time
type Recorder struct {
	config   Config
	logger   *zap.Logger
	listener Listener
	metrics  Metrics

	state atomic.Int32

	// mu serializes Start and Stop
	mu       sync.Mutex
	stream   capture.Stream
	stopChan chan struct{}
	feedDone chan struct{}

	// infoMu guards what Stats and Path read
	infoMu    sync.RWMutex
	session   *Session
	ticker    *progressTicker
	path      string
	startedAt time.Time

	errMu   sync.Mutex
	lastErr error
}

// New creates an idle recorder
func New(config Config) *Recorder {
	if config.Open == nil {
		config.Open = encode.OpenOpus
	}
	if config.Format == (audio.Format{}) {
		config.Format = audio.RecordFormat
	}
	if config.FrameSize <= 0 {
		config.FrameSize = audio.FrameBytes
	}
	if config.GracePeriod <= 0 {
		config.GracePeriod = DefaultGracePeriod
	}
	if config.TickInterval <= 0 {
		config.TickInterval = DefaultTickInterval
	}
	if config.Prefix == "" {
		config.Prefix = DefaultPrefix
	}

	listener := config.Listener
	if listener == nil {
		listener = NopListener{}
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := config.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}

	return &Recorder{
		config:   config,
		logger:   logger.Named("recorder"),
		listener: listener,
		metrics:  metrics,
	}
}

// Start begins recording to path at bitrate bits per second. An empty path
// asks the NameGenerator for one. Start while active is a no-op.
//
// Failures fire OnFailed and are also returned; the recorder stays idle.
func (r *Recorder) Start(path string, bitrate int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.IsActive() {
		r.logger.Debug("Start ignored, already recording", zap.String("path", r.Path()))
		return nil
	}
	if r.config.Source == nil {
		return r.fail(errors.New("no capture source configured"))
	}

	if path == "" {
		if r.config.Names == nil {
			return r.fail(ErrNoNameGenerator)
		}
		name, err := r.config.Names.DefaultName(r.config.Prefix)
		if err != nil {
			return r.fail(fmt.Errorf("failed to generate file name: %w", err))
		}
		path = name
	}

	minSize, err := r.config.Source.MinBufferSize(r.config.Format)
	if err != nil {
		return r.fail(fmt.Errorf("failed to query capture buffer size: %w", err))
	}
	bufferSize := audio.RoundUpToFrame(minSize, r.config.FrameSize)

	stream, err := r.config.Source.Open(r.config.Format, bufferSize)
	if err != nil {
		return r.fail(fmt.Errorf("failed to open capture: %w", err))
	}

	session := NewSession(SessionConfig{
		Open:         r.config.Open,
		FrameSize:    r.config.FrameSize,
		OnFrameError: r.report,
		Logger:       r.logger,
		Metrics:      r.metrics,
	})
	if err := session.Begin(path, bitrate); err != nil {
		if cerr := stream.Close(); cerr != nil {
			r.logger.Warn("Failed to close capture after encoder error", zap.Error(cerr))
		}
		return r.fail(err)
	}

	ticker := newProgressTicker(r.config.TickInterval, r.IsActive, r.onTick)

	r.infoMu.Lock()
	r.session = session
	r.ticker = ticker
	r.path = path
	r.startedAt = time.Now()
	r.infoMu.Unlock()

	r.stream = stream
	r.stopChan = make(chan struct{})
	r.feedDone = make(chan struct{})

	r.state.Store(int32(StateActive))
	r.metrics.RecordingStarted()
	r.logger.Info("Recording started",
		zap.String("path", path),
		zap.Int("bitrate", bitrate),
		zap.Int("buffer_size", bufferSize),
		zap.Int("min_buffer_size", minSize))
	r.listener.OnStarted()

	go r.feedLoop(stream, session, bufferSize, r.stopChan, r.feedDone)
	ticker.start()

	return nil
}

// Stop ends the recording, finalizes the file and fires OnFinished.
// Stop while idle is a no-op. A feed goroutine stuck in a read is given two
// grace periods, one before and one after the capture stream is closed.
func (r *Recorder) Stop() error {
	r.mu.Lock()

	if !r.state.CompareAndSwap(int32(StateActive), int32(StateIdle)) {
		r.mu.Unlock()
		return nil
	}

	close(r.stopChan)

	r.infoMu.RLock()
	session, ticker, path, startedAt := r.session, r.ticker, r.path, r.startedAt
	r.infoMu.RUnlock()

	ticker.stop()

	if !r.waitFeed() {
		r.logger.Debug("Feed loop still running, closing capture")
	}

	var errs []error
	if err := r.stream.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close capture: %w", err))
	}

	if !r.waitFeed() {
		r.logger.Warn("Feed loop did not exit within grace period", zap.Duration("grace", r.config.GracePeriod))
	}
	r.stream = nil

	if err := session.End(); err != nil {
		errs = append(errs, err)
	} else if r.config.Tracks != nil {
		if err := r.config.Tracks.RegisterCompleted(path); err != nil {
			r.logger.Warn("Failed to register track", zap.String("path", path), zap.Error(err))
			errs = append(errs, fmt.Errorf("failed to register track: %w", err))
		}
	}

	stats := session.Stats()
	r.metrics.RecordingStopped(time.Since(startedAt))
	r.logger.Info("Recording stopped",
		zap.String("path", path),
		zap.Duration("elapsed", ticker.value().Duration()),
		zap.Uint64("frames_written", stats.FramesWritten),
		zap.Uint64("frames_dropped", stats.FramesDropped))

	// Callbacks fire before mu is released so a concurrent Start cannot
	// deliver the next OnStarted ahead of this OnFinished.
	err := errors.Join(errs...)
	if err != nil {
		r.logger.Warn("Recording finished with errors", zap.Error(err))
		r.report(err)
	}
	r.listener.OnFinished(filepath.Base(path))

	r.mu.Unlock()
	return err
}

// Release stops any active recording
func (r *Recorder) Release() error {
	return r.Stop()
}

// IsActive reports whether a recording is in progress
func (r *Recorder) IsActive() bool {
	return State(r.state.Load()) == StateActive
}

// Path returns the output path of the current or last recording
func (r *Recorder) Path() string {
	r.infoMu.RLock()
	defer r.infoMu.RUnlock()
	return r.path
}

// Stats returns a snapshot of the current or last recording
func (r *Recorder) Stats() Stats {
	r.infoMu.RLock()
	session, ticker, path := r.session, r.ticker, r.path
	r.infoMu.RUnlock()

	stats := Stats{
		State: State(r.state.Load()),
		Path:  path,
	}
	if ticker != nil {
		stats.Elapsed = ticker.value()
	}
	if session != nil {
		ss := session.Stats()
		stats.FramesWritten = ss.FramesWritten
		stats.FramesDropped = ss.FramesDropped
		stats.BytesWritten = ss.BytesWritten
	}
	return stats
}

// LastError returns the most recent failure, or nil
func (r *Recorder) LastError() error {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	return r.lastErr
}

// feedLoop moves capture buffers into the session until the recorder goes idle
func (r *Recorder) feedLoop(stream capture.Stream, session *Session, bufferSize int, stopChan <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	buf := make([]byte, bufferSize)
	for r.IsActive() {
		select {
		case <-stopChan:
			return
		default:
		}

		switch r.feedOnce(stream, session, buf) {
		case feedExit:
			return
		case feedBackoff:
			select {
			case <-stopChan:
				return
			case <-time.After(readErrorBackoff):
			}
		}
	}
}

type feedResult int

const (
	feedContinue feedResult = iota
	feedBackoff
	feedExit
)

func (r *Recorder) feedOnce(stream capture.Stream, session *Session, buf []byte) (result feedResult) {
	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("%w: panic: %v", ErrFeedLoop, p)
			r.logger.Error("Recovered from panic while feeding", zap.Error(err))
			r.report(err)
			result = feedContinue
		}
	}()

	n, err := stream.Read(buf)
	switch {
	case err == nil:
	case errors.Is(err, capture.ErrTransientRead):
		r.metrics.TransientRead()
		r.logger.Debug("Skipping transient capture read error", zap.Error(err))
		return feedContinue
	case errors.Is(err, capture.ErrStreamClosed):
		return feedExit
	default:
		err = fmt.Errorf("%w: capture read: %w", ErrFeedLoop, err)
		r.logger.Warn("Capture read failed", zap.Error(err))
		r.report(err)
		return feedBackoff
	}

	if n > 0 && r.IsActive() {
		session.Feed(buf[:n])
	}
	return feedContinue
}

func (r *Recorder) onTick(elapsed Elapsed) {
	r.listener.OnProgress(elapsed.String())
}

// waitFeed waits up to one grace period for the feed goroutine to exit
func (r *Recorder) waitFeed() bool {
	timer := time.NewTimer(r.config.GracePeriod)
	defer timer.Stop()

	select {
	case <-r.feedDone:
		return true
	case <-timer.C:
		return false
	}
}

// fail reports a start failure and returns err
func (r *Recorder) fail(err error) error {
	r.logger.Error("Failed to start recording", zap.Error(err))
	r.report(err)
	return err
}

// report records err and fires OnFailed
func (r *Recorder) report(err error) {
	r.errMu.Lock()
	r.lastErr = err
	r.errMu.Unlock()

	r.metrics.Failure(failureKind(err))
	r.listener.OnFailed()
}
