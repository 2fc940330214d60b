// ABOUTME: Oto-based audio output implementation
// ABOUTME: Handles PCM playback with software volume control using oto library
package output

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/oply/opusrec/pkg/audio"
	"go.uber.org/zap"
)

const drainPoll = 20 * time.Millisecond

// Oto output implementation using oto library
type Oto struct {
	logger     *zap.Logger
	otoCtx     *oto.Context
	player     *oto.Player
	pipeReader *io.PipeReader
	pipeWriter *io.PipeWriter
	format     audio.Format
	volume     int
	muted      bool
	ready      bool
}

// NewOto creates a new Oto output
func NewOto(logger *zap.Logger) *Oto {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Oto{
		logger: logger.Named("output"),
		volume: 100,
	}
}

// Open initializes the output device.
// oto allows one context per process, so a second Open with another format fails.
func (o *Oto) Open(format audio.Format) error {
	if format.BitDepth != 16 {
		return fmt.Errorf("unsupported bit depth: %d (supported: 16)", format.BitDepth)
	}

	if o.otoCtx != nil {
		if o.format.SampleRate == format.SampleRate && o.format.Channels == format.Channels {
			o.logger.Debug("Audio output already initialized with same format, reusing context")
			return nil
		}
		return fmt.Errorf("output already opened at %dHz %dch", o.format.SampleRate, o.format.Channels)
	}

	ctx, readyChan, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	o.otoCtx = ctx
	o.format = format

	// persistent player fed through a pipe
	o.pipeReader, o.pipeWriter = io.Pipe()
	o.player = o.otoCtx.NewPlayer(o.pipeReader)
	o.player.Play()
	o.ready = true

	o.logger.Info("Audio output initialized",
		zap.Int("sample_rate", format.SampleRate),
		zap.Int("channels", format.Channels))
	return nil
}

// Write outputs audio samples (blocks until written)
func (o *Oto) Write(samples []int16) error {
	if !o.ready {
		return fmt.Errorf("output not initialized")
	}

	out := audio.Int16ToBytes(applyVolume(samples, o.volume, o.muted))
	if _, err := o.pipeWriter.Write(out); err != nil {
		return fmt.Errorf("pipe write failed: %w", err)
	}
	return nil
}

// Drain closes the input side and waits for the player to finish
func (o *Oto) Drain(ctx context.Context) error {
	if !o.ready {
		return nil
	}
	o.pipeWriter.Close()

	ticker := time.NewTicker(drainPoll)
	defer ticker.Stop()
	for o.player.IsPlaying() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Close releases output resources
func (o *Oto) Close() error {
	if o.pipeWriter != nil {
		o.pipeWriter.Close()
		o.pipeWriter = nil
	}
	if o.player != nil {
		o.player.Close()
		o.player = nil
	}
	if o.pipeReader != nil {
		o.pipeReader.Close()
		o.pipeReader = nil
	}
	if o.otoCtx != nil {
		if err := o.otoCtx.Suspend(); err != nil {
			o.logger.Debug("Failed to suspend oto context", zap.Error(err))
		}
	}
	o.ready = false
	return nil
}

// SetVolume sets the volume (0-100)
func (o *Oto) SetVolume(volume int) {
	o.volume = max(0, min(100, volume))
	o.logger.Debug("Volume set", zap.Int("volume", o.volume))
}

// SetMuted sets mute state
func (o *Oto) SetMuted(muted bool) {
	o.muted = muted
}

// Volume returns current volume
func (o *Oto) Volume() int {
	return o.volume
}

// IsMuted returns mute state
func (o *Oto) IsMuted() bool {
	return o.muted
}

// applyVolume applies volume and mute to samples with clipping protection
func applyVolume(samples []int16, volume int, muted bool) []int16 {
	multiplier := getVolumeMultiplier(volume, muted)
	if multiplier == 1.0 {
		return samples
	}

	result := make([]int16, len(samples))
	for i, sample := range samples {
		scaled := math.Round(float64(sample) * multiplier)
		result[i] = int16(max(math.MinInt16, min(math.MaxInt16, scaled)))
	}
	return result
}

// getVolumeMultiplier calculates volume multiplier
func getVolumeMultiplier(volume int, muted bool) float64 {
	if muted {
		return 0.0
	}
	return float64(volume) / 100.0
}
