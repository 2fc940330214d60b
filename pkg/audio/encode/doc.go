// ABOUTME: Audio encoder package for writing fixed-size PCM frames to files
// ABOUTME: Provides the FrameWriter interface and Ogg Opus / WAV implementations
// Package encode provides block-oriented streaming file encoders.
//
// Supports: Ogg Opus (default), WAV
//
// Every encoder accepts exactly audio.FrameBytes of 16-bit little-endian
// PCM per WriteFrame call and finalizes the container on Close.
//
// Example:
//
//	w, err := encode.OpenOpus("take1.opus", 24000)
//	err = w.WriteFrame(frame)
//	err = w.Close()
package encode
