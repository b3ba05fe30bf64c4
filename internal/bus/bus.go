// Package bus implements the bus tree: gain/mute nodes with child buses
// and the channels currently routed through each, read-only during
// render except for the gain/mute atomics.
package bus

import (
	"sync"
	"sync/atomic"

	"amplitude/internal/amerr"
	"amplitude/internal/buffer"
)

// ID names a bus within a Tree.
type ID uint32

// Bus is one node: a gain, a mute flag, children, and the set of
// channel ids currently routing through it. Structural membership
// (children, channel set) changes under mu; gain/mute are atomics so
// the audio thread can read them without locking, matching the bus
// tree's "constructed at init, read-only during render except for
// gain/mute atomics" invariant.
type Bus struct {
	id       ID
	name     string
	gainBits atomic.Uint32 // float32 bit pattern
	mute     atomic.Bool

	mu       sync.RWMutex
	parent   ID
	children []ID
	channels map[uint64]struct{}

	mix *buffer.Buffer
}

// Tree owns every Bus plus the master bus id.
type Tree struct {
	mu     sync.RWMutex
	buses  map[ID]*Bus
	master ID
	nextID atomic.Uint32
}

// NewTree constructs a tree with a single master bus at unity gain.
func NewTree(channels, frames int) *Tree {
	t := &Tree{buses: make(map[ID]*Bus)}
	master := t.newBus("master", 0)
	t.master = master.id
	master.mix = buffer.New(channels, frames)
	return t
}

func (t *Tree) newBus(name string, parent ID) *Bus {
	id := ID(t.nextID.Add(1))
	b := &Bus{id: id, name: name, parent: parent, channels: make(map[uint64]struct{})}
	b.gainBits.Store(float32bits(1))
	t.mu.Lock()
	t.buses[id] = b
	t.mu.Unlock()
	return b
}

// Master returns the master bus id.
func (t *Tree) Master() ID { return t.master }

// CreateBus allocates a new bus as a child of parent, with its own mix
// buffer sized channels x frames.
func (t *Tree) CreateBus(name string, parent ID, channels, frames int) (ID, error) {
	t.mu.RLock()
	p, ok := t.buses[parent]
	t.mu.RUnlock()
	if !ok {
		return 0, amerr.New(amerr.NotFound, "bus: unknown parent bus")
	}
	b := t.newBus(name, parent)
	b.mix = buffer.New(channels, frames)
	p.mu.Lock()
	p.children = append(p.children, b.id)
	p.mu.Unlock()
	return b.id, nil
}

// SetGain updates a bus's gain atomically; safe to call from the game
// thread while the audio thread reads it mid-render.
func (t *Tree) SetGain(id ID, gain float32) error {
	b, err := t.get(id)
	if err != nil {
		return err
	}
	b.gainBits.Store(float32bits(gain))
	return nil
}

// Gain reads a bus's current gain.
func (t *Tree) Gain(id ID) float32 {
	b, err := t.get(id)
	if err != nil {
		return 0
	}
	return float32frombits(b.gainBits.Load())
}

// SetMute updates a bus's mute flag atomically.
func (t *Tree) SetMute(id ID, mute bool) error {
	b, err := t.get(id)
	if err != nil {
		return err
	}
	b.mute.Store(mute)
	return nil
}

func (t *Tree) get(id ID) (*Bus, error) {
	t.mu.RLock()
	b, ok := t.buses[id]
	t.mu.RUnlock()
	if !ok {
		return nil, amerr.New(amerr.NotFound, "bus: unknown bus id")
	}
	return b, nil
}

// AttachChannel and DetachChannel are structural operations; they take
// the bus's own mutex and are only ever called from the game thread at
// play/stop time, never from the audio-thread render path.
func (t *Tree) AttachChannel(id ID, channelID uint64) error {
	b, err := t.get(id)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.channels[channelID] = struct{}{}
	b.mu.Unlock()
	return nil
}

func (t *Tree) DetachChannel(id ID, channelID uint64) error {
	b, err := t.get(id)
	if err != nil {
		return err
	}
	b.mu.Lock()
	delete(b.channels, channelID)
	b.mu.Unlock()
	return nil
}

// EffectiveGain returns the product of id's own gain and every
// ancestor's gain up to and including master, or 0 if any bus on the
// chain is muted (global mute is modeled as muting the master bus).
func (t *Tree) EffectiveGain(id ID) float32 {
	gain := float32(1)
	cur := id
	for {
		b, err := t.get(cur)
		if err != nil {
			break
		}
		if b.mute.Load() {
			return 0
		}
		gain *= float32frombits(b.gainBits.Load())
		if cur == t.master {
			break
		}
		cur = b.parent
	}
	return gain
}

// RenderMaster walks the tree bottom-up, summing each bus's children
// into it with bus gain applied, and writes the master bus's resulting
// mix into dst.
func (t *Tree) RenderMaster(dst *buffer.Buffer) {
	t.mu.RLock()
	master := t.buses[t.master]
	t.mu.RUnlock()
	t.renderBus(master)
	dst.CopyFrom(master.mix)
}

func (t *Tree) renderBus(b *Bus) {
	b.mu.RLock()
	children := append([]ID(nil), b.children...)
	b.mu.RUnlock()

	for _, childID := range children {
		t.mu.RLock()
		child := t.buses[childID]
		t.mu.RUnlock()
		t.renderBus(child)
		if child.mute.Load() {
			continue
		}
		gain := float32frombits(child.gainBits.Load())
		b.mix.AddFromScaled(child.mix, gain)
	}
}

// Mix returns the bus's own mix buffer for writers (the mixer/pipeline
// accumulate layer output directly into it before RenderMaster sums
// children into parents).
func (t *Tree) Mix(id ID) *buffer.Buffer {
	b, err := t.get(id)
	if err != nil {
		return nil
	}
	return b.mix
}

// ClearAll zeroes every bus's mix buffer, called once per block before
// layers accumulate into it.
func (t *Tree) ClearAll() {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, b := range t.buses {
		b.mix.Clear()
	}
}
