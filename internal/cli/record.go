// ABOUTME: record command
// ABOUTME: Wires capture, encoder, registry and metrics into a recorder, driven by the TUI or headless
package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oply/opusrec/internal/config"
	"github.com/oply/opusrec/internal/metrics"
	"github.com/oply/opusrec/internal/tracks"
	"github.com/oply/opusrec/internal/ui"
	"github.com/oply/opusrec/pkg/audio/capture"
	"github.com/oply/opusrec/pkg/audio/encode"
	"github.com/oply/opusrec/pkg/recorder"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRecordCommand(a *app) *cobra.Command {
	var noTUI bool

	cmd := &cobra.Command{
		Use:   "record [output]",
		Short: "Record from the microphone",
		Long: `Record from the microphone (or a test tone) into an Ogg Opus or WAV file.

Without an output path a name like OpusRecord_20240102_150405.opus is
generated in the recording directory. The interactive screen toggles
recording with space; --no-tui or --duration records immediately and stops
on Ctrl+C or when the duration elapses.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			headless := func(s *config.Settings) bool { return !useTUI(s, noTUI) }
			if err := a.load(cmd, headless); err != nil {
				return err
			}
			s := a.settings
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return runRecord(cmd.Context(), a, s, path, useTUI(s, noTUI))
		},
	}

	f := cmd.Flags()
	f.BoolVar(&noTUI, "no-tui", false, "disable the interactive screen and log to the console")
	f.Int("bitrate", 32000, "encoder bitrate in bits per second")
	f.String("codec", "opus", "output codec: opus or wav")
	f.String("dir", ".", "directory for generated file names")
	f.String("prefix", "OpusRecord", "prefix for generated file names")
	f.String("source", "mic", "capture source: mic or tone")
	f.String("device", "", "capture device name (default: system default)")
	f.Float64("tone-hz", 440, "tone frequency when --source=tone")
	f.Duration("duration", 0, "stop automatically after this long")
	f.String("metrics-listen", "", "serve Prometheus metrics on this address, e.g. :9090")

	a.bind(cmd, "record.bitrate", "bitrate")
	a.bind(cmd, "record.codec", "codec")
	a.bind(cmd, "record.dir", "dir")
	a.bind(cmd, "record.prefix", "prefix")
	a.bind(cmd, "record.duration", "duration")
	a.bind(cmd, "capture.source", "source")
	a.bind(cmd, "capture.device", "device")
	a.bind(cmd, "capture.tone_hz", "tone-hz")
	a.bind(cmd, "metrics.listen", "metrics-listen")
	return cmd
}

// useTUI reports whether the interactive screen runs. A fixed duration
// means a scripted recording, which never needs it.
func useTUI(s *config.Settings, noTUI bool) bool {
	return s.UI.Enabled && !noTUI && s.Record.Duration == 0
}

// newSource picks the capture source named in settings
func newSource(s config.CaptureSettings, logger *zap.Logger) capture.Source {
	if s.Source == "tone" {
		return capture.NewTone(capture.ToneConfig{Frequency: s.ToneHz})
	}
	return capture.NewMalgo(capture.MalgoConfig{
		DeviceName:   s.Device,
		PeriodFrames: s.PeriodFrames,
		Logger:       logger,
	})
}

func runRecord(ctx context.Context, a *app, s *config.Settings, path string, tui bool) error {
	logger := a.logger

	open, err := encode.Opener(s.Record.Codec)
	if err != nil {
		return err
	}

	store, err := tracks.Open(s.Tracks.DB, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	registry := prometheus.NewRegistry()
	m, err := metrics.NewRecorder(registry)
	if err != nil {
		return err
	}
	if s.Metrics.Listen != "" {
		srv := metrics.NewServer(s.Metrics.Listen, registry, logger)
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Metrics server shutdown failed", zap.Error(err))
			}
		}()
	}

	cfg := recorder.Config{
		Source:       newSource(s.Capture, logger),
		Open:         open,
		Names:        tracks.NewNamer(s.Record.Dir, encode.Extension(s.Record.Codec)),
		Tracks:       store,
		Logger:       logger,
		Metrics:      m,
		GracePeriod:  s.Record.Grace,
		TickInterval: s.Record.Tick,
		Prefix:       s.Record.Prefix,
	}

	if tui {
		return recordInteractive(ctx, cfg, s, path)
	}
	return recordHeadless(ctx, a, cfg, s, path)
}

// recordHeadless records once and stops on ctx cancellation or after
// the configured duration
func recordHeadless(ctx context.Context, a *app, cfg recorder.Config, s *config.Settings, path string) error {
	logger := cfg.Logger
	cfg.Listener = recorder.Callbacks{
		Started: func() {
			logger.Info("Recording started")
		},
		Failed: func() {
			logger.Warn("Recording reported a failure")
		},
		Progress: func(elapsed string) {
			logger.Info("Recording", zap.String("elapsed", elapsed))
		},
		Finished: func(name string) {
			a.printf("Saved %s\n", name)
		},
	}

	rec := recorder.New(cfg)
	defer rec.Release()

	if err := rec.Start(path, s.Record.Bitrate); err != nil {
		return err
	}
	logger.Info("Recording to file",
		zap.String("path", rec.Path()),
		zap.String("codec", s.Record.Codec),
		zap.Int("bitrate", s.Record.Bitrate))

	var timeout <-chan time.Time
	if s.Record.Duration > 0 {
		timer := time.NewTimer(s.Record.Duration)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case <-timeout:
		logger.Info("Duration reached", zap.Duration("duration", s.Record.Duration))
	}

	return rec.Stop()
}

// recordInteractive runs the TUI; space toggles recording
func recordInteractive(ctx context.Context, cfg recorder.Config, s *config.Settings, path string) error {
	var (
		rec  *recorder.Recorder
		mu   sync.Mutex
		next = path
	)

	p := ui.NewProgram(ui.Options{
		Toggle: func() error {
			mu.Lock()
			defer mu.Unlock()
			if rec.IsActive() {
				return rec.Stop()
			}
			// A path given on the command line names the first recording only.
			target := next
			next = ""
			return rec.Start(target, s.Record.Bitrate)
		},
		Stats:     func() recorder.Stats { return rec.Stats() },
		LastError: func() error { return rec.LastError() },
		Source:    s.Capture.Source,
		Codec:     s.Record.Codec,
		Bitrate:   s.Record.Bitrate,
	})

	cfg.Listener = ui.NewListener(p)
	rec = recorder.New(cfg)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-runCtx.Done()
		p.Quit()
	}()

	_, runErr := p.Run()
	cancel()

	mu.Lock()
	releaseErr := rec.Release()
	mu.Unlock()

	if runErr != nil {
		runErr = fmt.Errorf("tui: %w", runErr)
	}
	return errors.Join(runErr, releaseErr)
}
