// ABOUTME: Audio output package for playing recordings
// ABOUTME: Provides the Output interface and an oto implementation
// Package output provides audio playback.
//
// Example:
//
//	out := output.NewOto()
//	err := out.Open(audio.RecordFormat)
//	err = out.Write(samples)
//	err = out.Drain(ctx)
package output
