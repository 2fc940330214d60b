// ABOUTME: Audio capture package for reading PCM from input devices
// ABOUTME: Provides the Source/Stream interfaces, a malgo microphone source and a tone source
// Package capture provides blocking PCM capture streams.
//
// A Source describes a capture backend; opening it yields a Stream that is
// read like a file. Closing a Stream unblocks any Read in progress.
//
// Example:
//
//	src := capture.NewMalgo(capture.MalgoConfig{})
//	min, _ := src.MinBufferSize(audio.RecordFormat)
//	stream, err := src.Open(audio.RecordFormat, audio.RoundUpToFrame(min, audio.FrameBytes))
//	n, err := stream.Read(buf)
package capture
