package voice

import "testing"

func TestChannelPlayWithoutFadeIsImmediatelyPlaying(t *testing.T) {
	c := NewChannel()
	c.Play(0, 0)
	if c.State != Playing {
		t.Fatalf("State = %v, want Playing", c.State)
	}
}

func TestChannelPlayWithFadeEntersFadingIn(t *testing.T) {
	c := NewChannel()
	c.Play(1, 0)
	if c.State != FadingIn {
		t.Fatalf("State = %v, want FadingIn", c.State)
	}
	c.Advance(0.5)
	if c.State != FadingIn {
		t.Fatalf("should still be fading in mid-fade")
	}
	c.Advance(1)
	if c.State != Playing {
		t.Fatalf("State after fade completes = %v, want Playing", c.State)
	}
}

func TestChannelStopDuringFadeInAtOriginSkipsFadeOut(t *testing.T) {
	c := NewChannel()
	c.Play(1, 0)
	c.Stop(1, 0)
	if c.State != Stopped {
		t.Fatalf("State = %v, want Stopped (boundary stop at t=0)", c.State)
	}
}

func TestChannelStopTransitionsThroughFadingOut(t *testing.T) {
	c := NewChannel()
	c.Play(0, 0)
	c.Stop(1, 0)
	if c.State != FadingOut {
		t.Fatalf("State = %v, want FadingOut", c.State)
	}
	c.Advance(1)
	if c.State != Stopped {
		t.Fatalf("State after fade-out completes = %v, want Stopped", c.State)
	}
}

func TestChannelPauseResume(t *testing.T) {
	c := NewChannel()
	c.Play(0, 0)
	c.Pause(0, 0)
	if c.State != Paused {
		t.Fatalf("State = %v, want Paused", c.State)
	}
	c.Resume(0, 0)
	if c.State != Playing {
		t.Fatalf("State = %v, want Playing", c.State)
	}
}

func TestChannelPauseWithFadeResolvesToPaused(t *testing.T) {
	c := NewChannel()
	c.Play(0, 0)
	c.Pause(1, 0)
	if c.State != FadingOut {
		t.Fatalf("State = %v, want FadingOut", c.State)
	}
	c.Advance(1)
	if c.State != Paused {
		t.Fatalf("State after pause fade completes = %v, want Paused", c.State)
	}
}

func TestChannelEndOfStreamOnlyAffectsPlaying(t *testing.T) {
	c := NewChannel()
	c.BindReal()
	c.Play(0, 0)
	c.EndOfStream()
	if c.State != Stopped || c.HasRealChannel() {
		t.Fatalf("EndOfStream should stop and unbind a Playing channel")
	}

	c2 := NewChannel()
	c2.Pause(0, 0)
	c2.EndOfStream()
	if c2.State != Paused {
		t.Fatalf("EndOfStream should be a no-op outside Playing, got %v", c2.State)
	}
}

func TestChannelBeginSwitchingStateOnlyAffectsPlaying(t *testing.T) {
	c := NewChannel()
	c.Play(0, 0)
	c.BeginSwitchingState()
	if c.State != SwitchingState {
		t.Fatalf("State = %v, want SwitchingState", c.State)
	}

	c2 := NewChannel()
	c2.BeginSwitchingState()
	if c2.State != Stopped {
		t.Fatalf("BeginSwitchingState should be a no-op outside Playing, got %v", c2.State)
	}
}
