package engine

import (
	"encoding/json"

	"amplitude/internal/ambisonic"
	"amplitude/internal/hrir"
	"amplitude/internal/mixer"
)

// PanningMode selects the default spatialization pan path a channel
// uses absent an explicit per-sound override.
type PanningMode int

const (
	PanNone PanningMode = iota
	PanPosition
	PanPositionOrientation
	PanHRTFMode
	// PanBinauralLow/Med/High encode the source to order-1/2/3 B-format,
	// rotate into listener space, decode through a virtual speaker
	// array, and convolve each virtual speaker against its HRIR before
	// summing to stereo (spec.md §4.9 step 7).
	PanBinauralLow
	PanBinauralMed
	PanBinauralHigh
)

// isBinauralPanningMode reports whether mode selects the ambisonic
// encode/rotate/decode/convolve binaural pan path.
func isBinauralPanningMode(mode PanningMode) bool {
	switch mode {
	case PanBinauralLow, PanBinauralMed, PanBinauralHigh:
		return true
	}
	return false
}

// binauralOrderFor maps an engine PanningMode to the Ambisonic order
// its binaural path encodes at, via the same Low/Med/High convention
// mixer.BinauralOrder uses for mixer.PanMode.
func binauralOrderFor(mode PanningMode) ambisonic.Order {
	switch mode {
	case PanBinauralLow:
		return mixer.BinauralOrder(mixer.PanBinauralLow)
	case PanBinauralMed:
		return mixer.BinauralOrder(mixer.PanBinauralMed)
	case PanBinauralHigh:
		return mixer.BinauralOrder(mixer.PanBinauralHigh)
	}
	return mixer.BinauralOrder(mixer.PanBinauralLow)
}

// CurveConfig names a normalized obstruction/occlusion curve: low-pass
// cutoff scaled by the curve's current value, plus a parallel gain
// curve, both evaluated by the pipeline's obstruction/occlusion stage.
type CurveConfig struct {
	LowPassCurve []float32 `json:"low_pass_curve"` // sampled at t in [0,1]
	GainCurve    []float32 `json:"gain_curve"`
}

// Config is the host-supplied, in-memory engine-config record consumed
// by Initialize. It round-trips through encoding/json the way the
// teacher's own config package persists its Config struct, used here to
// serialize bus trees and curve tables rather than a file on disk — the
// core itself is stateless across runs.
type Config struct {
	OutputSampleRate      uint32 `json:"output_sample_rate"`
	FramesPerBuffer       int    `json:"frames_per_buffer"`
	MaxChannels           int    `json:"max_channels"`
	ListenersCapacity     int    `json:"listeners_capacity"`
	EntitiesCapacity      int    `json:"entities_capacity"`
	EnvironmentsCapacity  int    `json:"environments_capacity"`
	RoomsCapacity         int    `json:"rooms_capacity"`
	SoundSpeed            float64 `json:"sound_speed"`
	DopplerFactor         float64 `json:"doppler_factor"`
	PanningMode           PanningMode `json:"panning_mode"`
	HRIRSamplingMode      hrir.SamplingMode `json:"hrir_sampling_mode"`
	HRIRSpherePath        string `json:"hrir_sphere_path"`
	ObstructionConfig     CurveConfig `json:"obstruction_config"`
	OcclusionConfig       CurveConfig `json:"occlusion_config"`
	PipelineID            string `json:"pipeline_id"`
	BusesBlob             json.RawMessage `json:"buses_blob"`
}

// DefaultConfig returns reasonable defaults for a desktop-class host.
func DefaultConfig() Config {
	return Config{
		OutputSampleRate:     48000,
		FramesPerBuffer:      512,
		MaxChannels:          32,
		ListenersCapacity:    4,
		EntitiesCapacity:     256,
		EnvironmentsCapacity: 16,
		RoomsCapacity:        8,
		SoundSpeed:           343,
		DopplerFactor:        1,
		PanningMode:          PanPosition,
		HRIRSamplingMode:     hrir.Bilinear,
	}
}

// Marshal/Unmarshal round-trip Config through JSON, mirroring the
// teacher's own persisted-config pattern but used here purely for
// in-memory blob transport (buses_blob, curve tables) rather than a
// file on disk.
func (c Config) Marshal() ([]byte, error) { return json.Marshal(c) }

func Unmarshal(data []byte) (Config, error) {
	var c Config
	err := json.Unmarshal(data, &c)
	return c, err
}
