// ABOUTME: Recording reader selection
// ABOUTME: Opens or probes a recording by file extension
package decode

import (
	"path/filepath"
	"strings"

	"github.com/oply/opusrec/pkg/audio"
)

// Reader yields PCM from a recording
type Reader interface {
	Format() audio.Format
	Next() ([]int16, error)
	Close() error
}

// OpenFile opens a .wav file as WAV and anything else as Ogg Opus
func OpenFile(path string) (Reader, error) {
	if isWAV(path) {
		return OpenWAVFile(path)
	}
	return OpenOpusFile(path)
}

// ProbeFile summarizes a .wav or Ogg Opus recording
func ProbeFile(path string) (FileInfo, error) {
	if isWAV(path) {
		return ProbeWAV(path)
	}
	return Probe(path)
}

func isWAV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".wav")
}
