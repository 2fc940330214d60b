// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for audio playback backends
package output

import (
	"context"

	"github.com/oply/opusrec/pkg/audio"
)

// Output represents an audio output device
type Output interface {
	// Open initializes the output device for 16-bit PCM in format
	Open(format audio.Format) error

	// Write outputs interleaved samples (blocks until queued)
	Write(samples []int16) error

	// Drain waits until queued audio has played or ctx is done
	Drain(ctx context.Context) error

	// Close releases output resources
	Close() error
}
