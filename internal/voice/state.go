// Package voice implements the logical channel: its playback state
// machine, fade envelope, priority-ordered virtualization list, switch
// container crossfade logic, and collection (random/sequence)
// scheduling.
package voice

// PlayState is the logical channel's playback state.
type PlayState int

const (
	Stopped PlayState = iota
	Playing
	FadingIn
	FadingOut
	SwitchingState
	Paused
)

// FadeTarget is the state a FadingOut transition resolves to once the
// fader reaches zero.
type FadeTarget int

const (
	TargetStopped FadeTarget = iota
	TargetPaused
)

// Channel is a logical voice: its state machine, fader, and the handle
// of the real-channel binding it owns while real. Entity/listener/
// sound bindings and the intrusive list memberships live in the engine
// package's arena slot, which embeds a *Channel.
type Channel struct {
	State      PlayState
	fadeTarget FadeTarget
	fader      *Fader
	hasReal    bool
}

// NewChannel constructs a channel in the Stopped state.
func NewChannel() *Channel {
	return &Channel{State: Stopped, fader: NewFader(DefaultBezier())}
}

// HasRealChannel reports whether this channel currently owns a real-
// channel binding; per the invariant, this is always false in Stopped.
func (c *Channel) HasRealChannel() bool { return c.hasReal }

// BindReal and UnbindReal track the real-channel binding; the actual
// RealChannel lives in the mixer package and is looked up by the
// engine's handle arena.
func (c *Channel) BindReal()   { c.hasReal = true }
func (c *Channel) UnbindReal() { c.hasReal = false }

// Play transitions Stopped -> Playing (fadeSeconds == 0) or Stopped ->
// FadingIn (fadeSeconds > 0), starting the fader at t=0.
func (c *Channel) Play(fadeSeconds float64, now float64) {
	if fadeSeconds <= 0 {
		c.State = Playing
		c.fader.Start(now, 0, 1, 1)
		return
	}
	c.State = FadingIn
	c.fader.Start(now, fadeSeconds, 0, 1)
}

// Stop transitions Playing -> FadingOut(target=Stopped), or immediately
// to Stopped if fadeSeconds == 0 or the channel is still at the very
// start of a fade-in.
func (c *Channel) Stop(fadeSeconds float64, now float64) {
	if c.State == FadingIn && now <= c.fader.startTime {
		// Stopped during fade-in at t=0: go directly to Stopped without
		// emitting audio, per the boundary-behavior requirement.
		c.State = Stopped
		c.UnbindReal()
		return
	}
	c.fadeTarget = TargetStopped
	if fadeSeconds <= 0 {
		c.State = Stopped
		c.UnbindReal()
		return
	}
	c.State = FadingOut
	c.fader.Start(now, fadeSeconds, c.fader.Value(now), 0)
}

// Pause transitions Playing -> FadingOut(target=Paused) for
// fadeSeconds>0, or directly to Paused for fadeSeconds==0.
func (c *Channel) Pause(fadeSeconds float64, now float64) {
	if fadeSeconds <= 0 {
		c.State = Paused
		return
	}
	c.fadeTarget = TargetPaused
	c.State = FadingOut
	c.fader.Start(now, fadeSeconds, c.fader.Value(now), 0)
}

// Resume transitions Paused -> FadingIn (fadeSeconds>0) or -> Playing
// (fadeSeconds==0).
func (c *Channel) Resume(fadeSeconds float64, now float64) {
	if fadeSeconds <= 0 {
		c.State = Playing
		c.fader.Start(now, 0, 1, 1)
		return
	}
	c.State = FadingIn
	c.fader.Start(now, fadeSeconds, 0, 1)
}

// EndOfStream transitions Playing -> Stopped when the sound is not
// looping; looping sounds never call this.
func (c *Channel) EndOfStream() {
	if c.State == Playing {
		c.State = Stopped
		c.UnbindReal()
	}
}

// BeginSwitchingState transitions Playing -> SwitchingState, invoked by
// the engine's switch-container handling when a bound switch group
// changes and at least one selected item has continue_between_states
// == false.
func (c *Channel) BeginSwitchingState() {
	if c.State == Playing {
		c.State = SwitchingState
	}
}

// Advance steps the fader for `now` and resolves FadingIn -> Playing or
// FadingOut -> target when the fader completes.
func (c *Channel) Advance(now float64) {
	switch c.State {
	case FadingIn:
		if c.fader.Done(now) {
			c.State = Playing
		}
	case FadingOut:
		if c.fader.Done(now) {
			switch c.fadeTarget {
			case TargetStopped:
				c.State = Stopped
				c.UnbindReal()
			case TargetPaused:
				c.State = Paused
			}
		}
	}
}

// FaderValue returns the current fade envelope value in [0,1] for `now`.
func (c *Channel) FaderValue(now float64) float64 {
	return c.fader.Value(now)
}
