// ABOUTME: Single recording session
// ABOUTME: Owns the frame writer and accumulator for one output file
package recorder

import (
	"fmt"
	"sync"

	"github.com/oply/opusrec/pkg/audio"
	"github.com/oply/opusrec/pkg/audio/encode"
	"github.com/oply/opusrec/pkg/audio/frame"
	"go.uber.org/zap"
)

// SessionConfig configures a Session
type SessionConfig struct {
	// Open creates the frame writer (default: encode.OpenOpus)
	Open encode.OpenFunc

	// FrameSize is the encoder frame size in bytes (default: audio.FrameBytes)
	FrameSize int

	// OnFrameError is called, without the session lock held, for every dropped frame
	OnFrameError func(err error)

	Logger  *zap.Logger
	Metrics Metrics
}

// SessionStats reports what a session has written
type SessionStats struct {
	FramesWritten uint64
	FramesDropped uint64
	BytesWritten  uint64
	PendingBytes  int
}

// Session writes fixed-size frames to one output file.
// Idle until Begin succeeds, idle again after End.
type Session struct {
	config  SessionConfig
	logger  *zap.Logger
	metrics Metrics

	mu      sync.Mutex
	writer  encode.FrameWriter
	acc     *frame.Accumulator
	path    string
	bitrate int
	stats   SessionStats
}

// NewSession creates an idle session
func NewSession(config SessionConfig) *Session {
	if config.Open == nil {
		config.Open = encode.OpenOpus
	}
	if config.FrameSize <= 0 {
		config.FrameSize = audio.FrameBytes
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := config.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Session{
		config:  config,
		logger:  logger,
		metrics: metrics,
		acc:     frame.NewAccumulator(config.FrameSize),
	}
}

// Begin opens the writer for path. On failure the session stays idle and the
// error wraps ErrEncoderInit.
func (s *Session) Begin(path string, bitrate int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writer != nil {
		return fmt.Errorf("session already active: %s", s.path)
	}

	writer, err := s.config.Open(path, bitrate)
	if err != nil {
		return fmt.Errorf("%w: %s at %d bps: %w", ErrEncoderInit, path, bitrate, err)
	}
	if writer == nil {
		return fmt.Errorf("%w: %s: encoder returned no writer", ErrEncoderInit, path)
	}

	s.writer = writer
	s.path = path
	s.bitrate = bitrate
	s.stats = SessionStats{}
	s.acc.Reset()

	s.logger.Info("Session started", zap.String("path", path), zap.Int("bitrate", bitrate))
	return nil
}

// Feed pushes p through the accumulator and writes every completed frame.
// A failed write drops that frame and feeding continues. No-op while idle.
// p is not retained.
func (s *Session) Feed(p []byte) {
	failures := s.feed(p)
	if s.config.OnFrameError == nil {
		return
	}
	for _, err := range failures {
		s.config.OnFrameError(err)
	}
}

func (s *Session) feed(p []byte) []error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writer == nil {
		return nil
	}

	var failures []error
	for f := range s.acc.Push(p) {
		if err := s.writer.WriteFrame(f); err != nil {
			s.stats.FramesDropped++
			s.metrics.FrameDropped()
			s.logger.Warn("Dropped frame", zap.Uint64("frame", s.stats.FramesWritten+s.stats.FramesDropped), zap.Error(err))
			failures = append(failures, fmt.Errorf("%w: %w", ErrFrameWrite, err))
			continue
		}
		s.stats.FramesWritten++
		s.stats.BytesWritten += uint64(len(f))
		s.metrics.FrameWritten(len(f))
	}
	return failures
}

// End finalizes the file. Any buffered partial frame is discarded.
// Calling End on an idle session is a no-op.
func (s *Session) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writer == nil {
		return nil
	}

	if pending := s.acc.Pending(); pending > 0 {
		s.logger.Debug("Discarding partial frame", zap.Int("bytes", pending))
	}
	s.acc.Reset()

	err := s.writer.Close()
	s.writer = nil

	s.logger.Info("Session ended",
		zap.String("path", s.path),
		zap.Uint64("frames_written", s.stats.FramesWritten),
		zap.Uint64("frames_dropped", s.stats.FramesDropped))

	if err != nil {
		return fmt.Errorf("failed to finalize %s: %w", s.path, err)
	}
	return nil
}

// Active reports whether the session has an open writer
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writer != nil
}

// Path returns the output path of the current or last recording
func (s *Session) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Stats returns a snapshot of the session counters
func (s *Session) Stats() SessionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := s.stats
	stats.PendingBytes = s.acc.Pending()
	return stats
}
