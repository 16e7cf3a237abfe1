package audio

import (
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"
	"github.com/petems/whisper-ptt/internal/config"
)

// PortAudio captures from a microphone through PortAudio. The library is
// initialized for the lifetime of the value; streams are opened per recording.
type PortAudio struct {
	deviceID string
}

// New initializes PortAudio for the configured input device
func New(cfg config.AudioConfig) (*PortAudio, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return &PortAudio{deviceID: cfg.DeviceID}, nil
}

// Open starts a mono 16-bit stream on the configured device
func (p *PortAudio) Open() (Stream, error) {
	device, err := p.inputDevice()
	if err != nil {
		return nil, err
	}

	buffer := make([]int16, ChunkSize)
	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: Channels,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      SampleRate,
		FramesPerBuffer: len(buffer),
	}, buffer)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio stream on %q: %w", device.Name, err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("failed to start audio stream on %q: %w", device.Name, err)
	}

	return &portAudioStream{stream: stream, buffer: buffer}, nil
}

func (p *PortAudio) inputDevice() (*portaudio.DeviceInfo, error) {
	if p.deviceID == "" {
		device, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("failed to get default input device: %w", err)
		}
		return device, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}
	for _, d := range devices {
		if d.Name == p.deviceID && d.MaxInputChannels > 0 {
			return d, nil
		}
	}
	return nil, fmt.Errorf("device not found: %s", p.deviceID)
}

// ListDevices returns every device with at least one input channel
func (p *PortAudio) ListDevices() ([]Device, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	result := make([]Device, 0, len(devices))
	defaultDevice, _ := portaudio.DefaultInputDevice()

	for _, d := range devices {
		if d.MaxInputChannels > 0 {
			result = append(result, Device{
				ID:      d.Name,
				Name:    d.Name,
				Default: d == defaultDevice,
			})
		}
	}

	return result, nil
}

// Close terminates PortAudio. Streams must be closed first.
func (p *PortAudio) Close() error {
	return portaudio.Terminate()
}

type portAudioStream struct {
	stream *portaudio.Stream
	buffer []int16
}

func (s *portAudioStream) ReadChunk() ([]int16, error) {
	err := s.stream.Read()
	if err != nil && !errors.Is(err, portaudio.InputOverflowed) {
		return nil, fmt.Errorf("failed to read audio stream: %w", err)
	}

	// PortAudio reuses the buffer on every read
	chunk := make([]int16, len(s.buffer))
	copy(chunk, s.buffer)

	if err != nil {
		return chunk, ErrInputOverflowed
	}
	return chunk, nil
}

func (s *portAudioStream) Close() error {
	return errors.Join(s.stream.Stop(), s.stream.Close())
}
