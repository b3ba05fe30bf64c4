package asset

import "sync/atomic"

// Chunk is a reference-counted, fully-decoded sample buffer shared by
// every non-streaming instance of a sound asset. It is allocated on
// first instance acquisition and freed when the last instance releases
// it. The final decrement, if it happens on the audio thread, must not
// call into the allocator directly — it enqueues the chunk on a
// free-list instead, drained by the game thread.
type Chunk struct {
	Planes   [][]float32
	refcount int32
}

// NewChunk wraps pre-decoded planar samples with an initial refcount of
// zero; the first Acquire brings it to one.
func NewChunk(planes [][]float32) *Chunk {
	return &Chunk{Planes: planes}
}

// Acquire increments the chunk's reference count and returns the new
// count.
func (c *Chunk) Acquire() int32 {
	return atomic.AddInt32(&c.refcount, 1)
}

// Release decrements the reference count and returns the new count. A
// return of zero means the caller holds the last reference and should
// route the chunk to the free list rather than dropping it directly.
func (c *Chunk) Release() int32 {
	return atomic.AddInt32(&c.refcount, -1)
}

// RefCount reads the current count without modifying it.
func (c *Chunk) RefCount() int32 {
	return atomic.LoadInt32(&c.refcount)
}

// FreeList collects chunks whose last reference was released, possibly
// from the audio thread, so the game thread can drop them without the
// audio thread ever touching the Go allocator's finalizer path.
type FreeList struct {
	pending chan *Chunk
}

// NewFreeList builds a free list with the given bounded capacity.
func NewFreeList(capacity int) *FreeList {
	return &FreeList{pending: make(chan *Chunk, capacity)}
}

// Push enqueues a chunk for deferred release. It never blocks: a full
// free list returns false without keeping the chunk, rather than
// stalling the audio thread, so a later Drain never sees that chunk.
func (f *FreeList) Push(c *Chunk) bool {
	select {
	case f.pending <- c:
		return true
	default:
		return false
	}
}

// Drain empties the free list, calling fn for each chunk so the caller
// can clear its own bookkeeping (e.g. remove it from a by-id map).
func (f *FreeList) Drain(fn func(*Chunk)) {
	for {
		select {
		case c := <-f.pending:
			fn(c)
		default:
			return
		}
	}
}
