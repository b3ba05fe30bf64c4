// Package driverpa is a reference output driver backed by PortAudio. It
// is not imported by any core package: the core only ever calls a
// host-supplied pull callback (spec.md §6), and this package exists to
// demonstrate a concrete, runnable implementation of that contract.
// Build with the "portaudio" tag; without it the package is excluded
// from the default build so the cgo-backed dependency never leaks into
// a host that has no use for a concrete driver.

//go:build portaudio

package driverpa

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
)

// Renderer is the pull callback the driver invokes once per PortAudio
// buffer period. dst is planar, one slice per output channel, each of
// length frameCount; the callback returns the number of frames it
// actually produced (spec.md §6's fill(buffer, frame_count) contract).
type Renderer func(dst [][]float32, frameCount int) int

// Driver owns a PortAudio output stream and repeatedly pulls frames
// from a Renderer to fill it. Device selection, stream lifetime, and
// shutdown sequencing mirror the teacher's AudioEngine.Start/Stop.
type Driver struct {
	render     Renderer
	channels   int
	sampleRate float64
	frameSize  int

	outputDeviceID int

	mu     sync.Mutex
	stream *portaudio.Stream

	running  atomic.Bool
	wg       sync.WaitGroup
	stopCh   chan struct{}
	dropped  atomic.Uint64
	interleave []float32
	planar     [][]float32
}

// Config selects the device and block parameters for a Driver.
type Config struct {
	Channels       int
	SampleRate     float64
	FrameSize      int
	OutputDeviceID int // negative selects the system default
}

// New constructs a Driver bound to render. PortAudio itself must already
// be initialized by the caller (portaudio.Initialize), mirroring the
// teacher's lifecycle where Start/Stop only manage the stream, not the
// library handle.
func New(cfg Config, render Renderer) *Driver {
	if cfg.FrameSize <= 0 {
		cfg.FrameSize = 256
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 2
	}
	return &Driver{
		render:         render,
		channels:       cfg.Channels,
		sampleRate:     cfg.SampleRate,
		frameSize:      cfg.FrameSize,
		outputDeviceID: cfg.OutputDeviceID,
		interleave:     make([]float32, cfg.FrameSize*cfg.Channels),
		planar:         makePlanar(cfg.Channels, cfg.FrameSize),
	}
}

func makePlanar(channels, frames int) [][]float32 {
	planes := make([][]float32, channels)
	for i := range planes {
		planes[i] = make([]float32, frames)
	}
	return planes
}

// Start opens and starts the output stream and begins the playback
// loop on a background goroutine.
func (d *Driver) Start() error {
	if !d.running.CompareAndSwap(false, true) {
		return nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		d.running.Store(false)
		return fmt.Errorf("driverpa: enumerate devices: %w", err)
	}
	outputDev, err := resolveDevice(devices, d.outputDeviceID, portaudio.DefaultOutputDevice)
	if err != nil {
		d.running.Store(false)
		return fmt.Errorf("driverpa: resolve output device: %w", err)
	}

	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   outputDev,
			Channels: d.channels,
			Latency:  outputDev.DefaultLowOutputLatency,
		},
		SampleRate:      d.sampleRate,
		FramesPerBuffer: d.frameSize,
	}
	stream, err := portaudio.OpenStream(params, d.interleave)
	if err != nil {
		d.running.Store(false)
		return fmt.Errorf("driverpa: open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		d.running.Store(false)
		return fmt.Errorf("driverpa: start stream: %w", err)
	}

	d.mu.Lock()
	d.stream = stream
	d.mu.Unlock()
	d.stopCh = make(chan struct{})

	d.wg.Add(1)
	go func() { defer d.wg.Done(); d.playbackLoop() }()
	return nil
}

// resolveDevice returns the device at idx if valid, otherwise falls back.
func resolveDevice(devices []*portaudio.DeviceInfo, idx int, fallback func() (*portaudio.DeviceInfo, error)) (*portaudio.DeviceInfo, error) {
	if idx >= 0 && idx < len(devices) {
		return devices[idx], nil
	}
	return fallback()
}

// Stop halts the stream and waits for the playback goroutine to exit
// before closing the native stream object.
//
// Pa_StopStream unblocks any in-flight Write call, which is what lets
// playbackLoop return; only after wg.Wait() do we free the stream.
func (d *Driver) Stop() {
	if !d.running.CompareAndSwap(true, false) {
		return
	}
	close(d.stopCh)

	d.mu.Lock()
	if d.stream != nil {
		d.stream.Stop()
	}
	d.mu.Unlock()

	d.wg.Wait()

	d.mu.Lock()
	if d.stream != nil {
		d.stream.Close()
		d.stream = nil
	}
	d.mu.Unlock()
}

// DroppedFrames reports the number of frames zero-filled because the
// renderer callback underran a buffer period.
func (d *Driver) DroppedFrames() uint64 { return d.dropped.Load() }

func (d *Driver) playbackLoop() {
	for d.running.Load() {
		for _, plane := range d.planar {
			zeroFloat32(plane)
		}

		n := d.render(d.planar, d.frameSize)
		if n < d.frameSize {
			d.dropped.Add(uint64(d.frameSize - n))
		}

		interleave(d.planar, d.interleave, d.frameSize, d.channels)

		if err := d.stream.Write(); err != nil {
			if d.running.Load() {
				// stream error mid-session; stop rather than spin
				d.running.Store(false)
			}
			return
		}
	}
}

func interleave(planar [][]float32, dst []float32, frameCount, channels int) {
	for f := 0; f < frameCount; f++ {
		base := f * channels
		for c := 0; c < channels; c++ {
			dst[base+c] = clampFloat32(planar[c][f])
		}
	}
}

func zeroFloat32(buf []float32) {
	for i := range buf {
		buf[i] = 0
	}
}

func clampFloat32(v float32) float32 {
	if v > 1.0 {
		return 1.0
	}
	if v < -1.0 {
		return -1.0
	}
	return v
}
