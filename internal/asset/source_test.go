package asset

import "testing"

// fakeDecoder produces a fixed tone for a configurable frame budget, then
// reports end of stream. Seek(0, SeekStart) replenishes the budget, which
// is all loop wraparound needs from a decoder.
type fakeDecoder struct {
	format    Format
	level     float32
	remaining int
	total     int
	closed    bool
}

func newFakeDecoder(format Format, level float32, frames int) *fakeDecoder {
	return &fakeDecoder{format: format, level: level, remaining: frames, total: frames}
}

func (d *fakeDecoder) ReadFrames(dst [][]float32) (int, error) {
	want := len(dst[0])
	n := want
	if n > d.remaining {
		n = d.remaining
	}
	for c := range dst {
		for i := 0; i < n; i++ {
			dst[c][i] = d.level
		}
		for i := n; i < want; i++ {
			dst[c][i] = 0
		}
	}
	d.remaining -= n
	return n, nil
}

func (d *fakeDecoder) Seek(frame int64, origin Origin) (int64, error) {
	if origin == SeekStart && frame == 0 {
		d.remaining = d.total
	}
	return frame, nil
}

func (d *fakeDecoder) Close() error { d.closed = true; return nil }
func (d *fakeDecoder) Format() Format { return d.format }

func testFormat(frameCount uint64) Format {
	return Format{SampleRate: 48000, Channels: 1, BitsPerSample: 32, FrameCount: frameCount, SampleType: SampleF32}
}

func TestSourceAcquireChunkDecodesOnceAndShares(t *testing.T) {
	calls := 0
	src := NewSource(1, "tone", testFormat(8), false, false, 0, func() (Decoder, error) {
		calls++
		return newFakeDecoder(testFormat(8), 0.5, 8), nil
	})

	c1, err := src.AcquireChunk()
	if err != nil {
		t.Fatalf("AcquireChunk: %v", err)
	}
	c2, err := src.AcquireChunk()
	if err != nil {
		t.Fatalf("AcquireChunk: %v", err)
	}
	if c1 != c2 {
		t.Fatalf("expected the same shared chunk on repeated acquisition")
	}
	if calls != 1 {
		t.Fatalf("newDecoder was called %d times, want 1", calls)
	}
	if c1.RefCount() != 2 {
		t.Fatalf("RefCount = %d, want 2", c1.RefCount())
	}
}

func TestSourceAcquireChunkRejectsStreaming(t *testing.T) {
	src := NewSource(1, "tone", testFormat(8), true, false, 0, func() (Decoder, error) {
		return newFakeDecoder(testFormat(8), 0.5, 8), nil
	})
	if _, err := src.AcquireChunk(); err == nil {
		t.Fatalf("expected AcquireChunk to reject a streaming source")
	}
}

func TestSourceReleaseChunkRoutesLastReferenceToFreeList(t *testing.T) {
	src := NewSource(1, "tone", testFormat(8), false, false, 0, func() (Decoder, error) {
		return newFakeDecoder(testFormat(8), 0.5, 8), nil
	})
	if _, err := src.AcquireChunk(); err != nil {
		t.Fatalf("AcquireChunk: %v", err)
	}
	fl := NewFreeList(1)
	src.ReleaseChunk(fl)

	var drained *Chunk
	fl.Drain(func(c *Chunk) { drained = c })
	if drained == nil {
		t.Fatalf("expected the last release to push the chunk onto the free list")
	}
}

func TestSourceOpenStreamDecoderCallsNewDecoderEachTime(t *testing.T) {
	calls := 0
	src := NewSource(1, "tone", testFormat(8), true, false, 0, func() (Decoder, error) {
		calls++
		return newFakeDecoder(testFormat(8), 0.5, 8), nil
	})
	src.OpenStreamDecoder()
	src.OpenStreamDecoder()
	if calls != 2 {
		t.Fatalf("OpenStreamDecoder should open a fresh decoder every call, got %d calls", calls)
	}
}
