// ABOUTME: Ogg Opus file encoder
// ABOUTME: Encodes 16-bit PCM frames with libopus and muxes them into Ogg pages
package encode

import (
	"fmt"
	"time"

	"github.com/oply/opusrec/pkg/audio"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4/pkg/media/oggwriter"
	"gopkg.in/hraban/opus.v2"
)

const (
	// MinOpusBitrate and MaxOpusBitrate bound the accepted bitrate
	MinOpusBitrate = 500
	MaxOpusBitrate = 512000

	maxPacketSize = 4000 // Opus can't exceed 4000 bytes per packet

	// Ogg Opus granule positions always count 48kHz samples
	granuleRate = 48000

	opusPayloadType = 111

	// PreSkip is the OpusHead pre-skip oggwriter declares, in 48kHz samples
	PreSkip = 3840
)

// primingFrames are encoded as silence ahead of the first captured frame so
// the decoder's pre-skip discards exactly them. They must sum to PreSkip.
var primingFrames = []time.Duration{60 * time.Millisecond, 20 * time.Millisecond}

// OpusFile writes an Ogg Opus file one frame at a time
type OpusFile struct {
	encoder *opus.Encoder
	ogg     *oggwriter.OggWriter
	format  audio.Format
	packet  []byte

	sequence uint16
	granule  uint64 // end of the last written packet, in 48kHz samples
	frames   int
	closed   bool
}

// OpenOpus opens an Ogg Opus writer for the recording format
func OpenOpus(path string, bitrate int) (FrameWriter, error) {
	return NewOpusFile(path, bitrate, audio.RecordFormat)
}

// NewOpusFile creates path and prepares an Opus encoder for format.
// Nothing is created on disk if the bitrate or format is rejected.
func NewOpusFile(path string, bitrate int, format audio.Format) (*OpusFile, error) {
	if bitrate < MinOpusBitrate || bitrate > MaxOpusBitrate {
		return nil, fmt.Errorf("%w: %d (supported: %d-%d)", ErrInvalidBitrate, bitrate, MinOpusBitrate, MaxOpusBitrate)
	}
	if format.BitDepth != 16 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16)", format.BitDepth)
	}

	// AppVoIP favors speech intelligibility, which is what microphones capture
	encoder, err := opus.NewEncoder(format.SampleRate, format.Channels, opus.AppVoIP)
	if err != nil {
		return nil, fmt.Errorf("failed to create opus encoder: %w", err)
	}
	if err := encoder.SetBitrate(bitrate); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBitrate, err)
	}

	ogg, err := oggwriter.New(path, uint32(format.SampleRate), uint16(format.Channels))
	if err != nil {
		return nil, fmt.Errorf("failed to create ogg file: %w", err)
	}
	if ogg == nil {
		// oggwriter reports header write failures by returning a nil writer
		return nil, fmt.Errorf("failed to write ogg headers to %s", path)
	}

	e := &OpusFile{
		encoder: encoder,
		ogg:     ogg,
		format:  format,
		packet:  make([]byte, maxPacketSize),
	}
	for _, d := range primingFrames {
		silence := make([]int16, int(int64(format.SampleRate)*int64(d)/int64(time.Second))*format.Channels)
		if err := e.writePacket(silence); err != nil {
			ogg.Close()
			return nil, fmt.Errorf("failed to write priming: %w", err)
		}
	}
	return e, nil
}

// WriteFrame encodes one PCM frame into one Opus packet on its own Ogg page
func (e *OpusFile) WriteFrame(frame []byte) error {
	if e.closed {
		return ErrClosed
	}
	if err := checkFrame(frame); err != nil {
		return err
	}

	if err := e.writePacket(audio.BytesToInt16(frame)); err != nil {
		return err
	}
	e.frames++
	return nil
}

// writePacket encodes pcm as one packet on its own page. oggwriter puts the
// first page at granule 1 and advances later pages by timestamp deltas, so
// each later page gets its true end granule when stamped with end-1.
func (e *OpusFile) writePacket(pcm []int16) error {
	n, err := e.encoder.Encode(pcm, e.packet)
	if err != nil {
		return fmt.Errorf("opus encode failed: %w", err)
	}

	samples := uint64(len(pcm) / e.format.Channels)
	end := e.granule + samples*granuleRate/uint64(e.format.SampleRate)

	var timestamp uint32
	if e.sequence > 0 {
		timestamp = uint32(end - 1)
	}

	packet := &rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			PayloadType:    opusPayloadType,
			SequenceNumber: e.sequence,
			Timestamp:      timestamp,
		},
		Payload: e.packet[:n],
	}
	if err := e.ogg.WriteRTP(packet); err != nil {
		return fmt.Errorf("ogg write failed: %w", err)
	}

	e.sequence++
	e.granule = end
	return nil
}

// Frames returns the number of captured frames written so far, excluding priming
func (e *OpusFile) Frames() int {
	return e.frames
}

// Close marks the last page as end-of-stream and closes the file
func (e *OpusFile) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	if err := e.ogg.Close(); err != nil {
		return fmt.Errorf("failed to finalize ogg file: %w", err)
	}
	return nil
}
