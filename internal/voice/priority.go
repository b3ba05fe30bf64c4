package voice

import "sort"

// PriorityEntry is one channel's standing in the priority list: its
// handle-equivalent id (the engine arena index), and its computed
// priority = gain * priority_multiplier.
type PriorityEntry struct {
	ChannelID uint32
	Priority  float32
	Real      bool
}

// PriorityList keeps entries sorted descending by priority so the first
// MaxReal are "real" (decoded and mixed) and the tail is "virtual"
// (clock-tracked only). Devirtualization transfers the real-channel
// binding from a displaced channel to the newcomer.
type PriorityList struct {
	entries map[uint32]*PriorityEntry
	MaxReal int
}

// NewPriorityList constructs a list capped at maxReal real channels.
func NewPriorityList(maxReal int) *PriorityList {
	return &PriorityList{entries: make(map[uint32]*PriorityEntry), MaxReal: maxReal}
}

// Upsert adds or updates a channel's priority.
func (p *PriorityList) Upsert(channelID uint32, priority float32) {
	if e, ok := p.entries[channelID]; ok {
		e.Priority = priority
		return
	}
	p.entries[channelID] = &PriorityEntry{ChannelID: channelID, Priority: priority}
}

// Remove drops a channel from the list entirely, e.g. when it stops.
func (p *PriorityList) Remove(channelID uint32) {
	delete(p.entries, channelID)
}

// Resolve re-sorts the list and returns (becameReal, becameVirtual):
// channel ids that crossed the MaxReal boundary in either direction
// since the last Resolve call. The caller is responsible for actually
// binding/unbinding real-channel state for the returned ids.
func (p *PriorityList) Resolve() (becameReal, becameVirtual []uint32) {
	sorted := make([]*PriorityEntry, 0, len(p.entries))
	for _, e := range p.entries {
		sorted = append(sorted, e)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority > sorted[j].Priority
		}
		return sorted[i].ChannelID < sorted[j].ChannelID // deterministic tiebreak
	})

	for i, e := range sorted {
		shouldBeReal := i < p.MaxReal
		if shouldBeReal && !e.Real {
			e.Real = true
			becameReal = append(becameReal, e.ChannelID)
		} else if !shouldBeReal && e.Real {
			e.Real = false
			becameVirtual = append(becameVirtual, e.ChannelID)
		}
	}
	return becameReal, becameVirtual
}

// Window returns the current sort order, most-recent Resolve call's
// ranking, for the invariant check "every element's priority >= every
// tail element's priority within a MaxReal window."
func (p *PriorityList) Window() []PriorityEntry {
	sorted := make([]*PriorityEntry, 0, len(p.entries))
	for _, e := range p.entries {
		sorted = append(sorted, e)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority > sorted[j].Priority
		}
		return sorted[i].ChannelID < sorted[j].ChannelID
	})
	out := make([]PriorityEntry, len(sorted))
	for i, e := range sorted {
		out[i] = *e
	}
	return out
}
