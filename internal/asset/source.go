package asset

import (
	"sync/atomic"

	"amplitude/internal/amerr"
)

// Source is an immutable sound asset: a format descriptor, a decoder
// factory, loop configuration, and a shared sample chunk when the asset
// is fully resident rather than streamed.
type Source struct {
	ID         uint64
	Name       string
	Format     Format
	Streaming  bool
	Loop       bool
	LoopCount  int // 0 = infinite when Loop is true

	chunk    *Chunk
	chunkRef int32

	newDecoder func() (Decoder, error)
}

// NewSource constructs a Source. newDecoder must open a fresh Decoder
// positioned at the start of the asset's data each time it is called,
// which is required for streaming assets (one decoder per instance) and
// used exactly once for resident assets (to decode into the shared
// chunk).
func NewSource(id uint64, name string, format Format, streaming, loop bool, loopCount int, newDecoder func() (Decoder, error)) *Source {
	return &Source{
		ID: id, Name: name, Format: format,
		Streaming: streaming, Loop: loop, LoopCount: loopCount,
		newDecoder: newDecoder,
	}
}

// AcquireChunk returns the shared sample chunk, decoding it fully on
// first use. Streaming sources never populate a chunk; callers must
// check Streaming first.
func (s *Source) AcquireChunk() (*Chunk, error) {
	if s.Streaming {
		return nil, amerr.New(amerr.InvalidParameter, "asset: AcquireChunk called on a streaming source")
	}
	if s.chunk == nil {
		dec, err := s.newDecoder()
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		planes := make([][]float32, s.Format.Channels)
		for c := range planes {
			planes[c] = make([]float32, s.Format.FrameCount)
		}
		if _, err := dec.ReadFrames(planes); err != nil {
			return nil, err
		}
		s.chunk = NewChunk(planes)
	}
	s.chunk.Acquire()
	atomic.AddInt32(&s.chunkRef, 1)
	return s.chunk, nil
}

// ReleaseChunk decrements the shared chunk's reference count, routing it
// to freeList when the last reference drops, per the reference-counting
// invariant: acquire() calls must equal release() calls over the
// engine's lifetime.
func (s *Source) ReleaseChunk(freeList *FreeList) {
	if s.chunk == nil {
		return
	}
	if s.chunk.Release() == 0 {
		freeList.Push(s.chunk)
		s.chunk = nil
	}
	atomic.AddInt32(&s.chunkRef, -1)
}

// OpenStreamDecoder opens a fresh decoder for a streaming instance. Each
// instance of a streaming source owns its own decoder; no per-instance
// scratch chunk is allocated.
func (s *Source) OpenStreamDecoder() (Decoder, error) {
	return s.newDecoder()
}
