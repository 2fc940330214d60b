// ABOUTME: Application settings for opusrec
// ABOUTME: Loads defaults, opusrec.yaml, OPUSREC_ environment variables and flags through viper
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oply/opusrec/pkg/audio"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. OPUSREC_RECORD_BITRATE
	EnvPrefix = "OPUSREC"

	// ConfigName is the config file name without extension
	ConfigName = "opusrec"

	MinBitrate = 500
	MaxBitrate = 512000
)

// Settings holds all configuration
type Settings struct {
	Record  RecordSettings  `mapstructure:"record"`
	Capture CaptureSettings `mapstructure:"capture"`
	Tracks  TrackSettings   `mapstructure:"tracks"`
	Log     LogSettings     `mapstructure:"log"`
	Metrics MetricsSettings `mapstructure:"metrics"`
	UI      UISettings      `mapstructure:"ui"`
}

// RecordSettings controls output files and recorder timing
type RecordSettings struct {
	Dir      string        `mapstructure:"dir"`
	Prefix   string        `mapstructure:"prefix"`
	Bitrate  int           `mapstructure:"bitrate"`
	Codec    string        `mapstructure:"codec"`
	Grace    time.Duration `mapstructure:"grace"`
	Tick     time.Duration `mapstructure:"tick"`
	Duration time.Duration `mapstructure:"duration"` // 0 records until stopped
}

// CaptureSettings selects the capture source
type CaptureSettings struct {
	Source       string  `mapstructure:"source"` // mic or tone
	Device       string  `mapstructure:"device"`
	PeriodFrames uint32  `mapstructure:"period_frames"`
	ToneHz       float64 `mapstructure:"tone_hz"`
}

type TrackSettings struct {
	DB string `mapstructure:"db"`
}

type LogSettings struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

type MetricsSettings struct {
	Listen string `mapstructure:"listen"` // empty disables the endpoint
}

type UISettings struct {
	Enabled bool `mapstructure:"enabled"`
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("record.dir", ".")
	v.SetDefault("record.prefix", "OpusRecord")
	v.SetDefault("record.bitrate", 32000)
	v.SetDefault("record.codec", audio.CodecOpus)
	v.SetDefault("record.grace", 200*time.Millisecond)
	v.SetDefault("record.tick", time.Second)
	v.SetDefault("record.duration", time.Duration(0))

	v.SetDefault("capture.source", "mic")
	v.SetDefault("capture.device", "")
	v.SetDefault("capture.period_frames", 320)
	v.SetDefault("capture.tone_hz", 440.0)

	v.SetDefault("tracks.db", "opusrec.db")

	v.SetDefault("log.file", "opusrec.log")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)

	v.SetDefault("metrics.listen", "")
	v.SetDefault("ui.enabled", true)
}

// Setup prepares v for Load: defaults, config search paths and environment binding.
// An explicit file, if given, replaces the search.
func Setup(v *viper.Viper, file string) {
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "opusrec"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads the config file if present, unmarshals and validates
func Load(v *viper.Viper) (*Settings, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return settings, nil
}

// Validate checks settings for values the recorder cannot use
func (s *Settings) Validate() error {
	var errs []error

	if s.Record.Bitrate < MinBitrate || s.Record.Bitrate > MaxBitrate {
		errs = append(errs, fmt.Errorf("record.bitrate %d out of range [%d, %d]", s.Record.Bitrate, MinBitrate, MaxBitrate))
	}
	switch s.Record.Codec {
	case audio.CodecOpus, audio.CodecWAV:
	default:
		errs = append(errs, fmt.Errorf("record.codec %q not supported (opus, wav)", s.Record.Codec))
	}
	if s.Record.Prefix == "" {
		errs = append(errs, errors.New("record.prefix must not be empty"))
	}
	if s.Record.Grace <= 0 {
		errs = append(errs, errors.New("record.grace must be positive"))
	}
	if s.Record.Tick <= 0 {
		errs = append(errs, errors.New("record.tick must be positive"))
	}
	if s.Record.Duration < 0 {
		errs = append(errs, errors.New("record.duration must not be negative"))
	}

	switch s.Capture.Source {
	case "mic", "tone":
	default:
		errs = append(errs, fmt.Errorf("capture.source %q not supported (mic, tone)", s.Capture.Source))
	}
	if s.Capture.Source == "tone" && s.Capture.ToneHz <= 0 {
		errs = append(errs, errors.New("capture.tone_hz must be positive"))
	}

	return errors.Join(errs...)
}
