package voice

import "testing"

func TestPriorityListResolveRealAndVirtualSplit(t *testing.T) {
	p := NewPriorityList(2)
	p.Upsert(1, 5)
	p.Upsert(2, 10)
	p.Upsert(3, 1)

	becameReal, becameVirtual := p.Resolve()
	if len(becameVirtual) != 0 {
		t.Fatalf("first resolve should have no departures, got %v", becameVirtual)
	}
	realSet := map[uint32]bool{}
	for _, id := range becameReal {
		realSet[id] = true
	}
	if !realSet[2] || !realSet[1] {
		t.Fatalf("expected channels 1 and 2 (highest priority) to become real, got %v", becameReal)
	}

	window := p.Window()
	if window[0].ChannelID != 2 || window[1].ChannelID != 1 || window[2].ChannelID != 3 {
		t.Fatalf("Window order = %v, want [2,1,3] by descending priority", window)
	}
}

func TestPriorityListTieBreaksByChannelID(t *testing.T) {
	p := NewPriorityList(1)
	p.Upsert(5, 1)
	p.Upsert(2, 1)
	window := p.Window()
	if window[0].ChannelID != 2 {
		t.Fatalf("equal-priority entries should tiebreak by ascending channel id, got order %v", window)
	}
}

func TestPriorityListDevirtualizesOnPriorityIncrease(t *testing.T) {
	p := NewPriorityList(1)
	p.Upsert(1, 10)
	p.Upsert(2, 1)
	p.Resolve() // channel 1 becomes real

	p.Upsert(2, 20) // now outranks channel 1
	becameReal, becameVirtual := p.Resolve()
	if len(becameReal) != 1 || becameReal[0] != 2 {
		t.Fatalf("expected channel 2 to become real, got %v", becameReal)
	}
	if len(becameVirtual) != 1 || becameVirtual[0] != 1 {
		t.Fatalf("expected channel 1 to become virtual, got %v", becameVirtual)
	}
}

func TestPriorityListRemove(t *testing.T) {
	p := NewPriorityList(2)
	p.Upsert(1, 10)
	p.Remove(1)
	if len(p.Window()) != 0 {
		t.Fatalf("expected removed channel to be absent from the window")
	}
}
