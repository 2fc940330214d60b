// ABOUTME: Capture interface definitions
// ABOUTME: Common interfaces and errors for PCM capture backends
package capture

import (
	"errors"

	"github.com/oply/opusrec/pkg/audio"
)

var (
	// ErrTransientRead marks a read that failed but may be retried, such as a
	// buffer overrun. Callers skip the iteration.
	ErrTransientRead = errors.New("transient capture read error")

	// ErrStreamClosed is returned by Read once the stream has been closed
	ErrStreamClosed = errors.New("capture stream closed")
)

// Source opens capture streams
type Source interface {
	// MinBufferSize returns the smallest read buffer, in bytes, the backend supports for format
	MinBufferSize(format audio.Format) (int, error)

	// Open starts capturing in format and returns a stream sized for bufferSize reads
	Open(format audio.Format, bufferSize int) (Stream, error)
}

// Stream is an open capture stream
type Stream interface {
	// Read blocks until PCM is available and copies up to len(p) bytes into p
	Read(p []byte) (int, error)

	// Close releases the device and unblocks pending reads
	Close() error
}
