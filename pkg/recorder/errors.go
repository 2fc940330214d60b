// ABOUTME: Recorder error taxonomy
// ABOUTME: Sentinel errors wrapped with context and matched with errors.Is
package recorder

import (
	"errors"

	"github.com/oply/opusrec/pkg/audio/capture"
)

var (
	// ErrEncoderInit means the encoder could not be opened; the recording never starts
	ErrEncoderInit = errors.New("encoder init failed")

	// ErrFrameWrite means one frame failed to encode and was dropped
	ErrFrameWrite = errors.New("frame write failed")

	// ErrFeedLoop covers any other failure while feeding, including recovered panics
	ErrFeedLoop = errors.New("feed loop failure")

	// ErrNoNameGenerator is returned by Start with an empty path and no NameGenerator
	ErrNoNameGenerator = errors.New("no name generator configured")
)

// failureKind labels an error for metrics
func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrEncoderInit):
		return "encoder_init"
	case errors.Is(err, ErrFrameWrite):
		return "frame_write"
	case errors.Is(err, ErrFeedLoop):
		return "feed_loop"
	case errors.Is(err, capture.ErrTransientRead):
		return "transient_read"
	default:
		return "other"
	}
}
