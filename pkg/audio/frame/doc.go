// ABOUTME: Frame re-chunking package
// ABOUTME: Regroups arbitrarily sized PCM chunks into fixed-size encoder frames
// Package frame regroups irregular capture buffers into fixed-size frames.
//
// Block-oriented encoders such as Opus accept exactly one frame per call.
// Capture devices deliver whatever their period happens to be. An
// Accumulator sits between the two, retaining partial data across calls.
//
// Example:
//
//	acc := frame.NewAccumulator(audio.FrameBytes)
//	for f := range acc.Push(chunk) {
//	    if err := w.WriteFrame(f); err != nil {
//	        // f is dropped, the accumulator is already empty
//	    }
//	}
package frame
