// ABOUTME: Encoder interface definition
// ABOUTME: Common interface and codec selection for frame-based file encoders
package encode

import (
	"errors"
	"fmt"

	"github.com/oply/opusrec/pkg/audio"
)

var (
	// ErrFrameSize is returned when a frame is not exactly audio.FrameBytes long
	ErrFrameSize = errors.New("frame size mismatch")
	// ErrInvalidBitrate is returned for bitrates the codec cannot honor
	ErrInvalidBitrate = errors.New("invalid bitrate")
	// ErrClosed is returned when writing to a closed encoder
	ErrClosed = errors.New("encoder closed")
)

// FrameWriter encodes fixed-size PCM frames into a file
type FrameWriter interface {
	// WriteFrame encodes one frame of exactly audio.FrameBytes bytes
	WriteFrame(frame []byte) error

	// Close flushes trailing state and writes the container trailer
	Close() error
}

// OpenFunc opens a FrameWriter for path at the given bitrate (bits per second)
type OpenFunc func(path string, bitrate int) (FrameWriter, error)

// Opener returns the OpenFunc for a codec name
func Opener(codec string) (OpenFunc, error) {
	switch codec {
	case audio.CodecOpus, "":
		return OpenOpus, nil
	case audio.CodecWAV:
		return OpenWAV, nil
	default:
		return nil, fmt.Errorf("unsupported codec: %s (supported: opus, wav)", codec)
	}
}

// Extension returns the file extension (with dot) for a codec name
func Extension(codec string) string {
	if codec == audio.CodecWAV {
		return ".wav"
	}
	return ".opus"
}

func checkFrame(frame []byte) error {
	if len(frame) != audio.FrameBytes {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrFrameSize, len(frame), audio.FrameBytes)
	}
	return nil
}
