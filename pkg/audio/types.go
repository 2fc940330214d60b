// ABOUTME: Audio type definitions
// ABOUTME: Defines the recording format, frame geometry and PCM helpers
package audio

import (
	"encoding/binary"
	"time"
)

const (
	// CodecOpus selects Ogg Opus output
	CodecOpus = "opus"
	// CodecWAV selects uncompressed RIFF/WAVE output
	CodecWAV = "wav"
)

const (
	// RecordSampleRate is the capture rate for recordings
	RecordSampleRate = 16000
	// RecordChannels is the capture channel count (mono)
	RecordChannels = 1
	// RecordBitDepth is the capture sample width
	RecordBitDepth = 16

	// FrameSamples is the encoder block size in samples per channel (60ms at 16kHz)
	FrameSamples = 960
	// FrameBytes is the encoder block size in bytes; every encoder write is exactly this long
	FrameBytes = FrameSamples * RecordChannels * (RecordBitDepth / 8)
)

// Format describes a PCM stream format
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
}

// RecordFormat is the capture format handed to capture sources
var RecordFormat = Format{
	Codec:      CodecOpus,
	SampleRate: RecordSampleRate,
	Channels:   RecordChannels,
	BitDepth:   RecordBitDepth,
}

// BytesPerSample returns the size of one sample of one channel
func (f Format) BytesPerSample() int {
	return f.BitDepth / 8
}

// BytesPerFrame returns the size of one sample across all channels
func (f Format) BytesPerFrame() int {
	return f.BytesPerSample() * f.Channels
}

// BytesPerSecond returns the PCM data rate
func (f Format) BytesPerSecond() int {
	return f.SampleRate * f.BytesPerFrame()
}

// Duration returns the play time of n bytes of PCM in this format
func (f Format) Duration(n int) time.Duration {
	bps := f.BytesPerSecond()
	if bps == 0 {
		return 0
	}
	return time.Duration(int64(n) * int64(time.Second) / int64(bps))
}

// BytesFor returns the frame-aligned byte count covering d
func (f Format) BytesFor(d time.Duration) int {
	raw := int(d.Seconds() * float64(f.BytesPerSecond()))
	frame := f.BytesPerFrame()
	if frame == 0 {
		return 0
	}
	return (raw / frame) * frame
}

// RoundUpToFrame returns the smallest multiple of frameSize that is >= n.
// A non-positive n yields one frame.
func RoundUpToFrame(n, frameSize int) int {
	if n <= 0 {
		return frameSize
	}
	return ((n + frameSize - 1) / frameSize) * frameSize
}

// BytesToInt16 decodes little-endian 16-bit PCM; a trailing odd byte is ignored
func BytesToInt16(b []byte) []int16 {
	samples := make([]int16, len(b)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
	return samples
}

// Int16ToBytes encodes samples as little-endian 16-bit PCM
func Int16ToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}
