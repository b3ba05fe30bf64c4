package asset

// Instance is a single playback's worth of per-instance state over a
// shared Source: a decoder handle (fresh for streaming sources, or the
// shared chunk reader for resident ones), obstruction/occlusion
// scalars, the loop-iteration counter, and a unique monotonically
// increasing id.
type Instance struct {
	ID          uint64
	Source      *Source
	Decoder     Decoder // nil for resident sources; chunk is read directly
	Chunk       *Chunk  // nil for streaming sources
	Obstruction float32 // [0,1]
	Occlusion   float32 // [0,1]
	LoopIter    int
	readPos     int64 // frame cursor into Chunk, for resident playback
}

// NewInstance constructs an Instance bound to src, opening a streaming
// decoder or acquiring the shared chunk as appropriate.
func NewInstance(id uint64, src *Source) (*Instance, error) {
	inst := &Instance{ID: id, Source: src}
	if src.Streaming {
		dec, err := src.OpenStreamDecoder()
		if err != nil {
			return nil, err
		}
		inst.Decoder = dec
	} else {
		chunk, err := src.AcquireChunk()
		if err != nil {
			return nil, err
		}
		inst.Chunk = chunk
	}
	return inst, nil
}

// ReadFrames fills dst from either the streaming decoder or the shared
// chunk, advancing the instance's read cursor and handling loop
// wraparound per Source.Loop/LoopCount.
func (inst *Instance) ReadFrames(dst [][]float32) (int, error) {
	if inst.Decoder != nil {
		n, err := inst.Decoder.ReadFrames(dst)
		if n < len(dst[0]) && inst.Source.Loop && (inst.Source.LoopCount == 0 || inst.LoopIter < inst.Source.LoopCount) {
			inst.LoopIter++
			inst.Decoder.Seek(0, SeekStart)
			remaining := make([][]float32, len(dst))
			for c := range remaining {
				remaining[c] = dst[c][n:]
			}
			more, err2 := inst.Decoder.ReadFrames(remaining)
			return n + more, err2
		}
		return n, err
	}

	total := int64(len(inst.Chunk.Planes[0]))
	want := len(dst[0])
	written := 0
	for written < want {
		avail := total - inst.readPos
		if avail <= 0 {
			if inst.Source.Loop && (inst.Source.LoopCount == 0 || inst.LoopIter < inst.Source.LoopCount) {
				inst.LoopIter++
				inst.readPos = 0
				avail = total
				if avail <= 0 {
					break
				}
			} else {
				break
			}
		}
		n := int64(want - written)
		if n > avail {
			n = avail
		}
		for c := range dst {
			copy(dst[c][written:written+int(n)], inst.Chunk.Planes[c][inst.readPos:inst.readPos+n])
		}
		inst.readPos += n
		written += int(n)
	}
	for c := range dst {
		for i := written; i < want; i++ {
			dst[c][i] = 0
		}
	}
	return written, nil
}

// Release closes any owned decoder and releases the shared chunk
// reference, routing a final decrement through freeList.
func (inst *Instance) Release(freeList *FreeList) {
	if inst.Decoder != nil {
		inst.Decoder.Close()
		inst.Decoder = nil
	}
	if inst.Chunk != nil {
		inst.Source.ReleaseChunk(freeList)
		inst.Chunk = nil
	}
}
