// ABOUTME: Synthetic tone capture source
// ABOUTME: Generates a sine wave paced like a real device for device-less recording
package capture

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/oply/opusrec/pkg/audio"
)

const (
	defaultToneFrequency = 440.0 // A4 note
	defaultToneVolume    = 0.5
)

// ToneConfig configures a Tone source
type ToneConfig struct {
	// Frequency in Hz (default: 440)
	Frequency float64

	// Volume from 0 to 1 (default: 0.5)
	Volume float64

	// Unpaced disables real-time pacing so reads return immediately
	Unpaced bool
}

// Tone is a Source that produces a sine wave instead of microphone input
type Tone struct {
	config ToneConfig
}

// NewTone creates a new tone source
func NewTone(config ToneConfig) *Tone {
	if config.Frequency <= 0 {
		config.Frequency = defaultToneFrequency
	}
	if config.Volume <= 0 || config.Volume > 1 {
		config.Volume = defaultToneVolume
	}
	return &Tone{config: config}
}

// MinBufferSize returns 20ms worth of audio
func (t *Tone) MinBufferSize(format audio.Format) (int, error) {
	if format.BitDepth != 16 {
		return 0, fmt.Errorf("unsupported bit depth: %d (supported: 16)", format.BitDepth)
	}
	return format.BytesFor(20 * time.Millisecond), nil
}

// Open starts a tone stream
func (t *Tone) Open(format audio.Format, bufferSize int) (Stream, error) {
	if format.BitDepth != 16 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16)", format.BitDepth)
	}
	if format.SampleRate <= 0 || format.Channels <= 0 {
		return nil, fmt.Errorf("invalid format: %dHz %dch", format.SampleRate, format.Channels)
	}
	return &toneStream{
		config: t.config,
		format: format,
		start:  time.Now(),
		closed: make(chan struct{}),
	}, nil
}

type toneStream struct {
	config ToneConfig
	format audio.Format
	start  time.Time

	mu          sync.Mutex
	sampleIndex uint64

	closed    chan struct{}
	closeOnce sync.Once
}

func (s *toneStream) Read(p []byte) (int, error) {
	select {
	case <-s.closed:
		return 0, ErrStreamClosed
	default:
	}

	s.mu.Lock()
	frameBytes := s.format.BytesPerFrame()
	numFrames := len(p) / frameBytes
	for i := 0; i < numFrames; i++ {
		t := float64(s.sampleIndex+uint64(i)) / float64(s.format.SampleRate)
		value := int16(math.Sin(2*math.Pi*s.config.Frequency*t) * 32767.0 * s.config.Volume)
		for ch := 0; ch < s.format.Channels; ch++ {
			binary.LittleEndian.PutUint16(p[i*frameBytes+ch*2:], uint16(value))
		}
	}
	s.sampleIndex += uint64(numFrames)
	due := s.start.Add(time.Duration(s.sampleIndex) * time.Second / time.Duration(s.format.SampleRate))
	s.mu.Unlock()

	if !s.config.Unpaced {
		if wait := time.Until(due); wait > 0 {
			timer := time.NewTimer(wait)
			defer timer.Stop()
			select {
			case <-s.closed:
				return 0, ErrStreamClosed
			case <-timer.C:
			}
		}
	}

	return numFrames * frameBytes, nil
}

func (s *toneStream) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}
