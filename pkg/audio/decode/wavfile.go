// ABOUTME: WAV file reader
// ABOUTME: Reads 16-bit PCM recordings back in fixed-size chunks
package decode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/oply/opusrec/pkg/audio"
)

// samples per Next call, matching one encoder frame
const wavChunkSamples = audio.FrameSamples

// WAVFile reads PCM from a WAV file
type WAVFile struct {
	file    *os.File
	decoder *wav.Decoder
	buf     *goaudio.IntBuffer
}

// OpenWAVFile opens path and validates its header
func OpenWAVFile(path string) (*WAVFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	decoder := wav.NewDecoder(f)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		f.Close()
		return nil, errors.New("not a valid wav file")
	}
	if decoder.BitDepth != 16 {
		f.Close()
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16)", decoder.BitDepth)
	}

	channels := int(decoder.NumChans)
	return &WAVFile{
		file:    f,
		decoder: decoder,
		buf: &goaudio.IntBuffer{
			Data:   make([]int, wavChunkSamples*channels),
			Format: &goaudio.Format{SampleRate: int(decoder.SampleRate), NumChannels: channels},
		},
	}, nil
}

// Format returns the PCM format produced by Next
func (w *WAVFile) Format() audio.Format {
	return audio.Format{
		Codec:      audio.CodecWAV,
		SampleRate: int(w.decoder.SampleRate),
		Channels:   int(w.decoder.NumChans),
		BitDepth:   int(w.decoder.BitDepth),
	}
}

// Next returns the next chunk of interleaved samples, or io.EOF
func (w *WAVFile) Next() ([]int16, error) {
	n, err := w.decoder.PCMBuffer(w.buf)
	if err != nil {
		return nil, fmt.Errorf("wav read failed: %w", err)
	}
	if n == 0 {
		return nil, io.EOF
	}

	out := make([]int16, n)
	for i, s := range w.buf.Data[:n] {
		out[i] = int16(s)
	}
	return out, nil
}

// Close closes the underlying file
func (w *WAVFile) Close() error {
	return w.file.Close()
}

// ProbeWAV reports the layout and duration of a WAV file
func ProbeWAV(path string) (FileInfo, error) {
	f, err := OpenWAVFile(path)
	if err != nil {
		return FileInfo{}, err
	}
	defer f.Close()

	duration, err := f.decoder.Duration()
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to read wav duration: %w", err)
	}

	return FileInfo{
		SampleRate: int(f.decoder.SampleRate),
		Channels:   int(f.decoder.NumChans),
		Duration:   duration.Round(time.Millisecond),
	}, nil
}
