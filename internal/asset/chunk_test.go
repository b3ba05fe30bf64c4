package asset

import "testing"

func TestChunkAcquireRelease(t *testing.T) {
	c := NewChunk([][]float32{{1, 2, 3}})
	if c.RefCount() != 0 {
		t.Fatalf("new chunk RefCount = %d, want 0", c.RefCount())
	}
	if got := c.Acquire(); got != 1 {
		t.Fatalf("Acquire = %d, want 1", got)
	}
	c.Acquire()
	if got := c.Release(); got != 1 {
		t.Fatalf("Release = %d, want 1", got)
	}
	if got := c.Release(); got != 0 {
		t.Fatalf("final Release = %d, want 0", got)
	}
}

func TestFreeListPushDrain(t *testing.T) {
	fl := NewFreeList(2)
	a, b := NewChunk(nil), NewChunk(nil)
	if !fl.Push(a) || !fl.Push(b) {
		t.Fatalf("expected both pushes to succeed within capacity")
	}

	var drained []*Chunk
	fl.Drain(func(c *Chunk) { drained = append(drained, c) })
	if len(drained) != 2 {
		t.Fatalf("Drain collected %d chunks, want 2", len(drained))
	}

	fl.Drain(func(c *Chunk) { t.Fatalf("Drain should be a no-op on an empty list") })
}

func TestFreeListPushDropsOnOverflow(t *testing.T) {
	fl := NewFreeList(1)
	if !fl.Push(NewChunk(nil)) {
		t.Fatalf("expected first push to succeed")
	}
	if fl.Push(NewChunk(nil)) {
		t.Fatalf("expected push beyond capacity to report failure rather than block")
	}
}
