package engine

import (
	"amplitude/internal/asset"
	"amplitude/internal/bus"
	"amplitude/internal/mixer"
	"amplitude/internal/spatial"
	"amplitude/internal/voice"
)

// PlayableKind distinguishes what a Channel is bound to: a single
// sound, a switch container, or a collection — exactly one is set on a
// live channel.
type PlayableKind int

const (
	PlayableSound PlayableKind = iota
	PlayableSwitch
	PlayableCollection
)

// ChannelEvent names the callback points a host can register per
// channel.
type ChannelEvent int

const (
	EventStarted ChannelEvent = iota
	EventStopped
	EventPaused
	EventResumed
	EventLooped
)

// ChannelSlot is the arena-resident logical voice: playback state
// machine, optional real-channel binding, the single playable it owns,
// current user gain/effective gain/pan/pitch/position, directivity,
// entity/listener bindings, per-listener doppler factors, and a
// registered event callback. Intrusive-list membership (priority, free,
// per-bus, per-entity) is represented implicitly via the engine's
// PriorityList and per-bus/per-entity id sets rather than prev/next
// indices, since Go's map types make that substitution direct.
type ChannelSlot struct {
	*voice.Channel

	realChannel Handle // into Engine.realChannels; zero value if virtual

	kind       PlayableKind
	source     *asset.Source
	instance   *asset.Instance
	switchC    *voice.SwitchContainer
	collection *voice.Collection

	UserGain        float32
	EffectiveGain   float32
	Pan             float32
	Pitch           float32
	Position        spatial.Vec3
	Directivity     float32
	DirectivitySharpness float32
	Obstruction     float32
	Occlusion       float32

	PriorityMultiplier float32

	Entity   Handle
	Listener Handle
	Bus      bus.ID

	doppler map[Handle]float64

	callback func(ChannelEvent)
}

func newChannelSlot() *ChannelSlot {
	return &ChannelSlot{
		Channel:            voice.NewChannel(),
		UserGain:           1,
		EffectiveGain:      1,
		Pitch:              1,
		PriorityMultiplier: 1,
		doppler:            make(map[Handle]float64),
	}
}

// Priority computes gain * priority_multiplier for the priority list.
func (c *ChannelSlot) Priority() float32 {
	return c.EffectiveGain * c.PriorityMultiplier
}

func (c *ChannelSlot) fireEvent(evt ChannelEvent) {
	if c.callback != nil {
		c.callback(evt)
	}
}

// realChannelState resolves the slot's bound *mixer.RealChannel, if any.
func (e *Engine) realChannelState(slot *ChannelSlot) (*mixer.RealChannel, bool) {
	if !slot.realChannel.IsValid() {
		return nil, false
	}
	return e.realChannels.Get(slot.realChannel)
}
