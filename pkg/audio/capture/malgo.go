// ABOUTME: Malgo-based microphone capture
// ABOUTME: Uses miniaudio via malgo and bridges its callback into blocking reads
package capture

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
	"github.com/oply/opusrec/pkg/audio"
	"github.com/smallnest/ringbuffer"
	"go.uber.org/zap"
)

const (
	defaultPeriodFrames = 320 // 20ms at 16kHz
	defaultPeriods      = 2

	// ring capacity in multiples of the read buffer
	ringReads = 8
)

// MalgoConfig configures microphone capture
type MalgoConfig struct {
	// DeviceName selects a capture device by exact or partial name; empty uses the default
	DeviceName string

	// PeriodFrames is the device period in frames (default: 320)
	PeriodFrames uint32

	// Periods is the number of device periods (default: 2)
	Periods uint32

	Logger *zap.Logger
}

// DeviceInfo describes a capture device
type DeviceInfo struct {
	Name      string
	IsDefault bool
}

// Malgo captures from a microphone through miniaudio
type Malgo struct {
	config MalgoConfig
	logger *zap.Logger
}

// NewMalgo creates a new malgo capture source
func NewMalgo(config MalgoConfig) *Malgo {
	if config.PeriodFrames == 0 {
		config.PeriodFrames = defaultPeriodFrames
	}
	if config.Periods == 0 {
		config.Periods = defaultPeriods
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Malgo{config: config, logger: logger.Named("capture")}
}

// MinBufferSize returns the bytes covered by the configured device periods
func (m *Malgo) MinBufferSize(format audio.Format) (int, error) {
	if format.BitDepth != 16 {
		return 0, fmt.Errorf("unsupported bit depth: %d (supported: 16)", format.BitDepth)
	}
	return int(m.config.PeriodFrames*m.config.Periods) * format.BytesPerFrame(), nil
}

// Open initializes and starts the capture device
func (m *Malgo) Open(format audio.Format, bufferSize int) (Stream, error) {
	if format.BitDepth != 16 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16)", format.BitDepth)
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		m.logger.Debug("miniaudio", zap.String("message", strings.TrimSpace(message)))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = uint32(format.Channels)
	deviceConfig.SampleRate = uint32(format.SampleRate)
	deviceConfig.PeriodSizeInFrames = m.config.PeriodFrames
	deviceConfig.Periods = m.config.Periods
	deviceConfig.Alsa.NoMMap = 1

	if m.config.DeviceName != "" {
		info, err := findDevice(ctx, m.config.DeviceName)
		if err != nil {
			freeContext(ctx)
			return nil, err
		}
		deviceConfig.Capture.DeviceID = info.ID.Pointer()
	}

	stream := &malgoStream{
		ctx:    ctx,
		ring:   ringbuffer.New(bufferSize * ringReads),
		ready:  make(chan struct{}, 1),
		closed: make(chan struct{}),
		logger: m.logger,
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: stream.onData,
	})
	if err != nil {
		freeContext(ctx)
		return nil, fmt.Errorf("failed to initialize capture device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		freeContext(ctx)
		return nil, fmt.Errorf("failed to start capture device: %w", err)
	}
	stream.device = device

	m.logger.Info("Capture device started",
		zap.Int("sample_rate", format.SampleRate),
		zap.Int("channels", format.Channels),
		zap.Int("buffer_size", bufferSize),
		zap.String("device", m.config.DeviceName))

	return stream, nil
}

// ListDevices enumerates capture devices
func ListDevices() ([]DeviceInfo, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	defer freeContext(ctx)

	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate capture devices: %w", err)
	}

	devices := make([]DeviceInfo, 0, len(infos))
	for i := range infos {
		devices = append(devices, DeviceInfo{
			Name:      infos[i].Name(),
			IsDefault: infos[i].IsDefault == 1,
		})
	}
	return devices, nil
}

// findDevice prefers an exact name match, then a partial one
func findDevice(ctx *malgo.AllocatedContext, name string) (*malgo.DeviceInfo, error) {
	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate capture devices: %w", err)
	}

	for i := range infos {
		if infos[i].Name() == name {
			return &infos[i], nil
		}
	}
	for i := range infos {
		if strings.Contains(infos[i].Name(), name) {
			return &infos[i], nil
		}
	}
	return nil, fmt.Errorf("capture device not found: %s", name)
}

func freeContext(ctx *malgo.AllocatedContext) {
	_ = ctx.Uninit()
	ctx.Free()
}

// malgoStream buffers callback data until Read collects it
type malgoStream struct {
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	ring   *ringbuffer.RingBuffer
	logger *zap.Logger

	ready     chan struct{}
	closed    chan struct{}
	closeOnce sync.Once

	overruns atomic.Int64
}

// onData runs on the miniaudio thread and must not block
func (s *malgoStream) onData(_, input []byte, _ uint32) {
	select {
	case <-s.closed:
		return
	default:
	}

	if _, err := s.ring.Write(input); err != nil {
		s.overruns.Add(1)
	}

	select {
	case s.ready <- struct{}{}:
	default:
	}
}

// Read reports an overrun once as ErrTransientRead, then resumes with buffered data
func (s *malgoStream) Read(p []byte) (int, error) {
	for {
		select {
		case <-s.closed:
			return 0, ErrStreamClosed
		default:
		}

		if dropped := s.overruns.Swap(0); dropped > 0 {
			return 0, fmt.Errorf("%w: %d capture callbacks overran the buffer", ErrTransientRead, dropped)
		}

		n, err := s.ring.Read(p)
		if err == nil {
			return n, nil
		}
		if !errors.Is(err, ringbuffer.ErrIsEmpty) {
			return 0, fmt.Errorf("%w: %v", ErrTransientRead, err)
		}

		select {
		case <-s.closed:
			return 0, ErrStreamClosed
		case <-s.ready:
		}
	}
}

// Close stops the device and releases the malgo context
func (s *malgoStream) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
		if err := s.device.Stop(); err != nil {
			s.logger.Warn("Capture device stop error", zap.Error(err))
		}
		s.device.Uninit()
		freeContext(s.ctx)
		s.logger.Info("Capture device released")
	})
	return nil
}
