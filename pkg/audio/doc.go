// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, the recording frame geometry and PCM conversions
// Package audio provides the fundamental audio types shared by the recorder.
//
// This package defines:
//   - Format: Describes a PCM stream (codec, sample rate, channels, bit depth)
//   - RecordFormat: The capture format used for recordings (16kHz mono S16LE)
//   - FrameBytes/FrameSamples: The fixed encoder block size
//
// It also provides little-endian PCM helpers:
//   - []byte ↔ []int16 conversions
//   - byte count ↔ duration conversions
//
// Example:
//
//	format := audio.RecordFormat
//	samples := audio.BytesToInt16(frame)
//	d := format.Duration(len(frame))
package audio
