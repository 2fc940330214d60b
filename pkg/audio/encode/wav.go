// ABOUTME: WAV file encoder
// ABOUTME: Writes 16-bit PCM frames into a RIFF/WAVE container
package encode

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/oply/opusrec/pkg/audio"
)

const wavFormatPCM = 1

// WAVFile writes an uncompressed WAV file one frame at a time
type WAVFile struct {
	file    *os.File
	encoder *wav.Encoder
	buf     *goaudio.IntBuffer
	closed  bool
}

// OpenWAV opens a WAV writer for the recording format; bitrate is ignored
func OpenWAV(path string, bitrate int) (FrameWriter, error) {
	return NewWAVFile(path, audio.RecordFormat)
}

// NewWAVFile creates path and prepares a WAV encoder for format
func NewWAVFile(path string, format audio.Format) (*WAVFile, error) {
	if format.BitDepth != 16 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16)", format.BitDepth)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create wav file: %w", err)
	}

	return &WAVFile{
		file:    f,
		encoder: wav.NewEncoder(f, format.SampleRate, format.BitDepth, format.Channels, wavFormatPCM),
		buf: &goaudio.IntBuffer{
			Format: &goaudio.Format{
				NumChannels: format.Channels,
				SampleRate:  format.SampleRate,
			},
			Data:           make([]int, audio.FrameSamples*format.Channels),
			SourceBitDepth: format.BitDepth,
		},
	}, nil
}

// WriteFrame appends one PCM frame to the data chunk
func (e *WAVFile) WriteFrame(frame []byte) error {
	if e.closed {
		return ErrClosed
	}
	if err := checkFrame(frame); err != nil {
		return err
	}

	for i, s := range audio.BytesToInt16(frame) {
		e.buf.Data[i] = int(s)
	}
	if err := e.encoder.Write(e.buf); err != nil {
		return fmt.Errorf("wav write failed: %w", err)
	}
	return nil
}

// Close patches the RIFF sizes and closes the file
func (e *WAVFile) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	encErr := e.encoder.Close()
	fileErr := e.file.Close()
	if encErr != nil {
		return fmt.Errorf("failed to finalize wav file: %w", encErr)
	}
	return fileErr
}
