// ABOUTME: Ogg Opus file reader
// ABOUTME: Walks Ogg pages, decodes packets and summarizes recordings
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oply/opusrec/pkg/audio"
	"github.com/pion/webrtc/v4/pkg/media/oggreader"
)

const granuleRate = 48000

var opusTagsSignature = []byte("OpusTags")

// FileInfo summarizes an Ogg Opus file
type FileInfo struct {
	SampleRate int // original input rate from the OpusHead
	Channels   int
	PreSkip    int
	Packets    int
	Granule    uint64
	Duration   time.Duration
}

// OpusFile reads packets from an Ogg Opus file
type OpusFile struct {
	file    *os.File
	reader  *oggreader.OggReader
	header  *oggreader.OggHeader
	decoder *OpusDecoder
	granule uint64
	skip    int // pre-skip frames still to drop, at the output rate
}

// OpenOpusFile opens path and parses its OpusHead
func OpenOpusFile(path string) (*OpusFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	reader, header, err := oggreader.NewWith(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("not an ogg opus file: %w", err)
	}

	return &OpusFile{
		file:   f,
		reader: reader,
		header: header,
	}, nil
}

// Format returns the PCM format produced by Next
func (o *OpusFile) Format() audio.Format {
	return audio.Format{
		Codec:      audio.CodecOpus,
		SampleRate: int(o.header.SampleRate),
		Channels:   int(o.header.Channels),
		BitDepth:   16,
	}
}

// NextPacket returns the next audio packet, skipping the comment header.
// It returns io.EOF after the last page.
func (o *OpusFile) NextPacket() ([]byte, error) {
	for {
		payload, pageHeader, err := o.reader.ParseNextPage()
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("truncated ogg page: %w", err)
			}
			return nil, err
		}
		if bytes.HasPrefix(payload, opusTagsSignature) || len(payload) == 0 {
			continue
		}
		o.granule = pageHeader.GranulePosition
		return payload, nil
	}
}

// Next decodes the next packet to interleaved int16 samples. The OpusHead
// pre-skip is dropped from the start of the stream; packets that fall
// entirely inside it are skipped.
func (o *OpusFile) Next() ([]int16, error) {
	if o.decoder == nil {
		dec, err := newOpusDecoder(o.Format())
		if err != nil {
			return nil, err
		}
		o.decoder = dec
		o.skip = int(uint64(o.header.PreSkip) * uint64(o.header.SampleRate) / granuleRate)
	}

	for {
		packet, err := o.NextPacket()
		if err != nil {
			return nil, err
		}
		samples, err := o.decoder.Decode(packet)
		if err != nil {
			return nil, err
		}
		if o.skip == 0 {
			return samples, nil
		}

		channels := int(o.header.Channels)
		frames := len(samples) / channels
		if o.skip >= frames {
			o.skip -= frames
			continue
		}
		samples = samples[o.skip*channels:]
		o.skip = 0
		return samples, nil
	}
}

// Close closes the underlying file
func (o *OpusFile) Close() error {
	return o.file.Close()
}

// Probe reads every page of path and reports its layout and duration
func Probe(path string) (FileInfo, error) {
	f, err := OpenOpusFile(path)
	if err != nil {
		return FileInfo{}, err
	}
	defer f.Close()

	info := FileInfo{
		SampleRate: int(f.header.SampleRate),
		Channels:   int(f.header.Channels),
		PreSkip:    int(f.header.PreSkip),
	}

	for {
		if _, err := f.NextPacket(); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return info, err
		}
		info.Packets++
	}

	info.Granule = f.granule
	if info.Granule > uint64(info.PreSkip) {
		samples := info.Granule - uint64(info.PreSkip)
		info.Duration = time.Duration(samples * uint64(time.Second) / granuleRate)
	}
	return info, nil
}
