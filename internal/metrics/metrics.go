// ABOUTME: Prometheus metrics for recordings
// ABOUTME: Implements recorder.Metrics and serves the /metrics endpoint
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/oply/opusrec/pkg/recorder"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const metricsPath = "/metrics"

var _ recorder.Metrics = (*Recorder)(nil)

// Recorder holds the recording metrics
type Recorder struct {
	Active          prometheus.Gauge
	Recordings      prometheus.Counter
	FramesWritten   prometheus.Counter
	FramesDropped   prometheus.Counter
	BytesEncoded    prometheus.Counter
	TransientReads  prometheus.Counter
	Failures        *prometheus.CounterVec
	SessionDuration prometheus.Histogram
}

// NewRecorder creates the metrics and registers them with registry
func NewRecorder(registry prometheus.Registerer) (*Recorder, error) {
	m := &Recorder{
		Active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "opusrec_recording_active",
			Help: "1 while a recording is in progress",
		}),
		Recordings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "opusrec_recordings_total",
			Help: "Total number of recordings started",
		}),
		FramesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "opusrec_frames_written_total",
			Help: "Total number of PCM frames handed to the encoder",
		}),
		FramesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "opusrec_frames_dropped_total",
			Help: "Total number of frames dropped after an encoder write error",
		}),
		BytesEncoded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "opusrec_pcm_bytes_total",
			Help: "Total PCM bytes handed to the encoder",
		}),
		TransientReads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "opusrec_transient_read_errors_total",
			Help: "Capture reads skipped after a transient error",
		}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opusrec_failures_total",
			Help: "Failures reported to the listener, partitioned by kind",
		}, []string{"kind"}),
		SessionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "opusrec_recording_duration_seconds",
			Help:    "Length of finished recordings in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}

	for _, c := range []prometheus.Collector{
		m.Active, m.Recordings, m.FramesWritten, m.FramesDropped,
		m.BytesEncoded, m.TransientReads, m.Failures, m.SessionDuration,
	} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register recorder metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Recorder) RecordingStarted() {
	m.Active.Set(1)
	m.Recordings.Inc()
}

func (m *Recorder) RecordingStopped(elapsed time.Duration) {
	m.Active.Set(0)
	m.SessionDuration.Observe(elapsed.Seconds())
}

func (m *Recorder) FrameWritten(bytes int) {
	m.FramesWritten.Inc()
	m.BytesEncoded.Add(float64(bytes))
}

func (m *Recorder) FrameDropped() {
	m.FramesDropped.Inc()
}

func (m *Recorder) TransientRead() {
	m.TransientReads.Inc()
}

func (m *Recorder) Failure(kind string) {
	m.Failures.WithLabelValues(kind).Inc()
}

// Server serves a registry over HTTP
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer creates a metrics server for addr
func NewServer(addr string, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()
	mux.Handle(metricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Start serves in the background until Shutdown
func (s *Server) Start() {
	go func() {
		s.logger.Info("Metrics endpoint listening", zap.String("addr", s.httpServer.Addr), zap.String("path", metricsPath))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Metrics server error", zap.Error(err))
		}
	}()
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Shutdown stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
