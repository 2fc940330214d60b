// ABOUTME: Fixed-size frame accumulator
// ABOUTME: Buffers partial input and yields complete frames lazily
package frame

import (
	"fmt"
	"iter"
)

// Accumulator owns a fixed-capacity buffer and emits it each time it fills.
// It is not safe for concurrent use.
type Accumulator struct {
	buf    []byte
	cursor int // 0 <= cursor <= len(buf)
}

// NewAccumulator creates an accumulator emitting frames of size bytes
func NewAccumulator(size int) *Accumulator {
	if size <= 0 {
		panic(fmt.Sprintf("frame: invalid frame size %d", size))
	}
	return &Accumulator{buf: make([]byte, size)}
}

// Push absorbs p and returns the sequence of frames it completes.
//
// The yielded slice aliases the internal buffer and is only valid until the
// loop body returns. The cursor is reset once the body returns, whether or not
// the frame was consumed successfully, so a failed write simply drops that frame.
// Nothing is copied until the sequence is ranged, and the caller must range it
// to completion: breaking early leaves the rest of p unbuffered.
func (a *Accumulator) Push(p []byte) iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		for len(p) > 0 {
			n := copy(a.buf[a.cursor:], p)
			a.cursor += n
			p = p[n:]

			if a.cursor < len(a.buf) {
				return
			}

			a.cursor = 0
			if !yield(a.buf) {
				return
			}
		}
	}
}

// Pending returns the number of buffered bytes not yet emitted
func (a *Accumulator) Pending() int {
	return a.cursor
}

// Size returns the frame size
func (a *Accumulator) Size() int {
	return len(a.buf)
}

// Remainder returns a copy of the buffered partial frame
func (a *Accumulator) Remainder() []byte {
	out := make([]byte, a.cursor)
	copy(out, a.buf[:a.cursor])
	return out
}

// Reset discards any buffered partial frame
func (a *Accumulator) Reset() {
	a.cursor = 0
}
