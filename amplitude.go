// Package amplitude is the public entry point: a thin re-export of
// internal/engine so a host imports one package path ("amplitude")
// rather than reaching into internal/engine directly. Every exported
// name here is a direct alias; behavior lives in internal/engine.
package amplitude

import (
	"log/slog"

	"amplitude/internal/asset"
	"amplitude/internal/bus"
	"amplitude/internal/engine"
	"amplitude/internal/hrir"
	"amplitude/internal/spatial"
)

type (
	Engine        = engine.Engine
	Config        = engine.Config
	CurveConfig   = engine.CurveConfig
	PanningMode   = engine.PanningMode
	Handle        = engine.Handle
	Listener      = engine.Listener
	Entity        = engine.Entity
	Room          = engine.Room
	WallMaterial  = engine.WallMaterial
	ChannelEvent  = engine.ChannelEvent
	EventCanceler = engine.EventCanceler
	Stats         = engine.Stats
	BusID         = bus.ID
	Vec3          = spatial.Vec3
	SamplingMode  = hrir.SamplingMode
	Source        = asset.Source
	Format        = asset.Format
	Decoder       = asset.Decoder
)

// NewSource constructs a sound asset for Engine.RegisterSource.
func NewSource(id uint64, name string, format Format, streaming, loop bool, loopCount int, newDecoder func() (Decoder, error)) *Source {
	return asset.NewSource(id, name, format, streaming, loop, loopCount, newDecoder)
}

const (
	PanNone                = engine.PanNone
	PanPosition            = engine.PanPosition
	PanPositionOrientation = engine.PanPositionOrientation
	PanHRTF                = engine.PanHRTFMode

	EventStarted = engine.EventStarted
	EventStopped = engine.EventStopped
	EventPaused  = engine.EventPaused
	EventResumed = engine.EventResumed
	EventLooped  = engine.EventLooped
)

var Invalid = engine.Invalid

// DefaultConfig returns reasonable defaults for a desktop-class host.
func DefaultConfig() Config { return engine.DefaultConfig() }

// UnmarshalConfig parses a JSON config blob previously produced by
// Config.Marshal.
func UnmarshalConfig(data []byte) (Config, error) { return engine.Unmarshal(data) }

// Initialize constructs an Engine from cfg. Pass a nil logger to use
// slog.Default().
func Initialize(cfg Config, logger *slog.Logger) (*Engine, error) {
	return engine.Initialize(cfg, logger)
}
