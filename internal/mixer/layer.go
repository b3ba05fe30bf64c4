// Package mixer implements the real channel and its layer map: the
// bridge between a logical channel and the decoded, spatialized audio
// that actually gets mixed.
package mixer

import (
	"amplitude/internal/amerr"
	"amplitude/internal/asset"
)

// PlayState is a layer's playback state. Min is the "stopped and ready
// to be dropped" state, matching the source's own Min==stopped
// convention for a sentinel low value.
type PlayState int

const (
	Min PlayState = iota
	Play
	Loop
	PausedState
)

// Layer is a single decoded sound instance within a real channel: its
// bound instance, current play state, loop/stream flags, and gain.
type Layer struct {
	ID        uint32
	Instance  *asset.Instance
	State     PlayState
	Streaming bool
	Gain      float32
	Pan       float32
	Pitch     float32
}

// RealChannel bridges one logical channel to N live layers, tracking
// per-layer state, the current pan/pitch, and per-instance played
// history for sequence/random scheduling.
type RealChannel struct {
	ID     uint32
	layers map[uint32]*Layer

	pan   float32
	pitch float32

	playedSounds map[uint64]struct{} // per-scope played-history for collection scheduling
}

// NewRealChannel constructs an empty real channel bound to id.
func NewRealChannel(id uint32) *RealChannel {
	return &RealChannel{
		ID:           id,
		layers:       make(map[uint32]*Layer),
		pitch:        1,
		playedSounds: make(map[uint64]struct{}),
	}
}

// FindFreeLayer returns the smallest integer >= seed not present in the
// layer map.
func (rc *RealChannel) FindFreeLayer(seed uint32) uint32 {
	id := seed
	for {
		if _, ok := rc.layers[id]; !ok {
			return id
		}
		id++
	}
}

// CreateLayer binds inst to a new layer id (chosen via FindFreeLayer),
// resolving its initial play state to Play or Loop depending on
// inst.Source.Loop, and returns the layer. The caller is responsible
// for posting the corresponding mix command; this only mutates local
// bookkeeping.
func (rc *RealChannel) CreateLayer(seed uint32, inst *asset.Instance) *Layer {
	id := rc.FindFreeLayer(seed)
	state := Play
	if inst.Source.Loop {
		state = Loop
	}
	layer := &Layer{
		ID: id, Instance: inst, State: state,
		Streaming: inst.Source.Streaming, Gain: 1, Pitch: 1,
	}
	rc.layers[id] = layer
	return layer
}

// DestroyLayer sets the layer's state to Min, releases its instance, and
// removes the layer from the map. An unknown id returns NotFound.
func (rc *RealChannel) DestroyLayer(id uint32, freeList *asset.FreeList) error {
	layer, ok := rc.layers[id]
	if !ok {
		return amerr.New(amerr.NotFound, "mixer: unknown layer id")
	}
	layer.State = Min
	layer.Instance.Release(freeList)
	delete(rc.layers, id)
	return nil
}

// Playing reduces over all layers: true if any layer is in Play or Loop.
func (rc *RealChannel) Playing() bool {
	for _, l := range rc.layers {
		if l.State == Play || l.State == Loop {
			return true
		}
	}
	return false
}

// Paused reduces over all layers: true if every live layer is paused.
func (rc *RealChannel) Paused() bool {
	any := false
	for _, l := range rc.layers {
		any = true
		if l.State != PausedState {
			return false
		}
	}
	return any
}

// SetGain broadcasts a gain to every live layer.
func (rc *RealChannel) SetGain(gain float32) {
	for _, l := range rc.layers {
		l.Gain = gain
	}
}

// SetGainPan sets gain (scaled by an optional sound-kind base multiplier)
// and pan across every live layer.
func (rc *RealChannel) SetGainPan(gain, baseMultiplier, pan float32) {
	for _, l := range rc.layers {
		l.Gain = gain * baseMultiplier
		l.Pan = pan
	}
	rc.pan = pan
}

// SetPan broadcasts pan to every live layer and the channel's own pan
// state (used by the stereo-pan pipeline stage).
func (rc *RealChannel) SetPan(pan float32) {
	rc.pan = pan
	for _, l := range rc.layers {
		l.Pan = pan
	}
}

// SetPitch broadcasts pitch to every live layer.
func (rc *RealChannel) SetPitch(pitch float32) {
	rc.pitch = pitch
	for _, l := range rc.layers {
		l.Pitch = pitch
	}
}

// SetObstruction/SetOcclusion broadcast their scalars to every live
// layer's bound instance.
func (rc *RealChannel) SetObstruction(v float32) {
	for _, l := range rc.layers {
		l.Instance.Obstruction = v
	}
}

func (rc *RealChannel) SetOcclusion(v float32) {
	for _, l := range rc.layers {
		l.Instance.Occlusion = v
	}
}

// Layers returns the live layer map for the pipeline runner to iterate;
// callers must not retain it past the current block.
func (rc *RealChannel) Layers() map[uint32]*Layer { return rc.layers }

// Pan and Pitch report the real channel's current values.
func (rc *RealChannel) Pan() float32   { return rc.pan }
func (rc *RealChannel) Pitch() float32 { return rc.pitch }

// MarkPlayed records soundID in this scope's played-history set, used by
// AllSoundsPlayed's set-comparison resolution of the source's linear
// search.
func (rc *RealChannel) MarkPlayed(soundID uint64) {
	rc.playedSounds[soundID] = struct{}{}
}

// AllSoundsPlayed reports whether every id in itemSet has appeared in
// this scope's played history, via a direct set comparison rather than
// a linear search over history, per the resolved open question.
func (rc *RealChannel) AllSoundsPlayed(itemSet map[uint64]struct{}) bool {
	for id := range itemSet {
		if _, ok := rc.playedSounds[id]; !ok {
			return false
		}
	}
	return true
}

// ResetPlayedHistory clears the played-history set, e.g. when a
// collection's scope is recycled for a new playback.
func (rc *RealChannel) ResetPlayedHistory() {
	rc.playedSounds = make(map[uint64]struct{})
}
