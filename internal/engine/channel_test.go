package engine

import "testing"

func TestNewChannelSlotDefaults(t *testing.T) {
	s := newChannelSlot()
	if s.UserGain != 1 || s.EffectiveGain != 1 || s.Pitch != 1 || s.PriorityMultiplier != 1 {
		t.Fatalf("newChannelSlot defaults = %+v, want unity gain/pitch/priority", s)
	}
	if s.realChannel.IsValid() {
		t.Fatalf("a freshly constructed slot should not have a real-channel binding")
	}
}

func TestChannelSlotPriorityMultipliesGainAndMultiplier(t *testing.T) {
	s := newChannelSlot()
	s.EffectiveGain = 0.5
	s.PriorityMultiplier = 4
	if got := s.Priority(); got != 2 {
		t.Fatalf("Priority = %v, want 2 (0.5*4)", got)
	}
}

func TestChannelSlotFireEventInvokesCallback(t *testing.T) {
	s := newChannelSlot()
	var got ChannelEvent
	fired := false
	s.callback = func(evt ChannelEvent) { got = evt; fired = true }
	s.fireEvent(EventStarted)
	if !fired || got != EventStarted {
		t.Fatalf("fireEvent did not invoke the registered callback with EventStarted")
	}
}

func TestChannelSlotFireEventNilCallbackIsNoOp(t *testing.T) {
	s := newChannelSlot()
	s.fireEvent(EventStopped) // must not panic
}

func TestRealChannelStateUnboundSlotReturnsFalse(t *testing.T) {
	e := newTestEngine(t, 4)
	s := newChannelSlot()
	if _, ok := e.realChannelState(s); ok {
		t.Fatalf("expected realChannelState to report false for an unbound slot")
	}
}
