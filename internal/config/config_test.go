// ABOUTME: Tests for settings loading
// ABOUTME: Covers defaults, config files, environment overrides and validation
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// search only an empty directory
	v := viper.New()
	Setup(v, filepath.Join(t.TempDir(), "unused.yaml"))
	v.SetConfigFile("")
	v.SetConfigName("does-not-exist")
	v.AddConfigPath(t.TempDir())

	s, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 32000, s.Record.Bitrate)
	assert.Equal(t, "opus", s.Record.Codec)
	assert.Equal(t, "OpusRecord", s.Record.Prefix)
	assert.Equal(t, 200*time.Millisecond, s.Record.Grace)
	assert.Equal(t, time.Second, s.Record.Tick)
	assert.Equal(t, "mic", s.Capture.Source)
	assert.Equal(t, uint32(320), s.Capture.PeriodFrames)
	assert.True(t, s.UI.Enabled)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opusrec.yaml")
	yaml := `
record:
  dir: /srv/recordings
  bitrate: 64000
  codec: wav
  duration: 90s
capture:
  source: tone
  tone_hz: 880
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	v := viper.New()
	Setup(v, path)
	s, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "/srv/recordings", s.Record.Dir)
	assert.Equal(t, 64000, s.Record.Bitrate)
	assert.Equal(t, "wav", s.Record.Codec)
	assert.Equal(t, 90*time.Second, s.Record.Duration)
	assert.Equal(t, "tone", s.Capture.Source)
	assert.Equal(t, 880.0, s.Capture.ToneHz)
	assert.Equal(t, "debug", s.Log.Level)
	assert.Equal(t, "OpusRecord", s.Record.Prefix, "unset keys keep defaults")
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("OPUSREC_RECORD_BITRATE", "16000")
	t.Setenv("OPUSREC_CAPTURE_SOURCE", "tone")

	path := filepath.Join(t.TempDir(), "opusrec.yaml")
	require.NoError(t, os.WriteFile(path, []byte("record:\n  bitrate: 64000\n"), 0o644))

	v := viper.New()
	Setup(v, path)
	s, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 16000, s.Record.Bitrate)
	assert.Equal(t, "tone", s.Capture.Source)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opusrec.yaml")
	require.NoError(t, os.WriteFile(path, []byte("record: [unterminated"), 0o644))

	v := viper.New()
	Setup(v, path)
	_, err := Load(v)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Settings {
		return &Settings{
			Record: RecordSettings{
				Prefix:  "OpusRecord",
				Bitrate: 32000,
				Codec:   "opus",
				Grace:   200 * time.Millisecond,
				Tick:    time.Second,
			},
			Capture: CaptureSettings{Source: "mic"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Settings)
		errMsg string
	}{
		{"valid", func(*Settings) {}, ""},
		{"bitrate too low", func(s *Settings) { s.Record.Bitrate = 499 }, "record.bitrate"},
		{"bitrate too high", func(s *Settings) { s.Record.Bitrate = 512001 }, "record.bitrate"},
		{"bad codec", func(s *Settings) { s.Record.Codec = "mp3" }, "record.codec"},
		{"empty prefix", func(s *Settings) { s.Record.Prefix = "" }, "record.prefix"},
		{"zero grace", func(s *Settings) { s.Record.Grace = 0 }, "record.grace"},
		{"zero tick", func(s *Settings) { s.Record.Tick = 0 }, "record.tick"},
		{"negative duration", func(s *Settings) { s.Record.Duration = -time.Second }, "record.duration"},
		{"bad source", func(s *Settings) { s.Capture.Source = "line-in" }, "capture.source"},
		{"tone without pitch", func(s *Settings) { s.Capture.Source = "tone" }, "capture.tone_hz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)
			err := s.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
