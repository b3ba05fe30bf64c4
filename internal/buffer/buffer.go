// Package buffer implements the planar multichannel float32 sample
// buffer shared by the decode, mixer, and pipeline stages.
package buffer

import "amplitude/internal/amerr"

// Buffer holds Channels planes of Frames float32 samples each. Planes are
// independently addressable slices into a single backing array so a
// Buffer can be reused across render blocks without reallocating.
type Buffer struct {
	planes   [][]float32
	frames   int
	channels int
}

// New allocates a Buffer with the given channel count and frame capacity.
// All samples start at zero.
func New(channels, frames int) *Buffer {
	if channels <= 0 || frames < 0 {
		return &Buffer{}
	}
	backing := make([]float32, channels*frames)
	planes := make([][]float32, channels)
	for c := 0; c < channels; c++ {
		planes[c] = backing[c*frames : (c+1)*frames : (c+1)*frames]
	}
	return &Buffer{planes: planes, frames: frames, channels: channels}
}

// Channels returns the plane count.
func (b *Buffer) Channels() int { return b.channels }

// Frames returns the per-plane sample count.
func (b *Buffer) Frames() int { return b.frames }

// Plane returns the backing slice for channel c. The caller must not
// retain it past the next Resize.
func (b *Buffer) Plane(c int) []float32 {
	if c < 0 || c >= b.channels {
		return nil
	}
	return b.planes[c]
}

// Clear zeroes every plane without reallocating.
func (b *Buffer) Clear() {
	for _, p := range b.planes {
		for i := range p {
			p[i] = 0
		}
	}
}

// Resize rebinds b to the requested shape. Any change of shape allocates
// fresh zeroed storage; existing sample data is not preserved.
func (b *Buffer) Resize(channels, frames int) {
	if channels == b.channels && frames == b.frames {
		return
	}
	*b = *New(channels, frames)
}

// AddFrom accumulates src into b at unity gain, channel-for-channel. src
// and b must share the same channel count; frame counts may differ and
// the shorter length is used.
func (b *Buffer) AddFrom(src *Buffer) error {
	if src.channels != b.channels {
		return amerr.New(amerr.InvalidParameter, "buffer: channel count mismatch in AddFrom")
	}
	n := b.frames
	if src.frames < n {
		n = src.frames
	}
	for c := 0; c < b.channels; c++ {
		dst := b.planes[c]
		s := src.planes[c]
		for i := 0; i < n; i++ {
			dst[i] += s[i]
		}
	}
	return nil
}

// AddFromScaled accumulates src*gain into b, as AddFrom but with a
// per-call scalar gain applied to every sample of src.
func (b *Buffer) AddFromScaled(src *Buffer, gain float32) error {
	if src.channels != b.channels {
		return amerr.New(amerr.InvalidParameter, "buffer: channel count mismatch in AddFromScaled")
	}
	n := b.frames
	if src.frames < n {
		n = src.frames
	}
	for c := 0; c < b.channels; c++ {
		dst := b.planes[c]
		s := src.planes[c]
		for i := 0; i < n; i++ {
			dst[i] += s[i] * gain
		}
	}
	return nil
}

// Scale multiplies every sample in every plane by gain in place.
func (b *Buffer) Scale(gain float32) {
	for _, p := range b.planes {
		for i := range p {
			p[i] *= gain
		}
	}
}

// Clamp hard-limits every sample to [-1, 1], matching the single
// clamp-once-at-the-end pass the mixer performs after additive mixing.
func (b *Buffer) Clamp() {
	for _, p := range b.planes {
		for i, v := range p {
			if v > 1 {
				p[i] = 1
			} else if v < -1 {
				p[i] = -1
			}
		}
	}
}

// CopyFrom copies src into b verbatim; b must already have matching
// shape (use Resize first).
func (b *Buffer) CopyFrom(src *Buffer) error {
	if src.channels != b.channels || src.frames != b.frames {
		return amerr.New(amerr.InvalidParameter, "buffer: shape mismatch in CopyFrom")
	}
	for c := 0; c < b.channels; c++ {
		copy(b.planes[c], src.planes[c])
	}
	return nil
}

// InterleaveInto writes b's planes interleaved into dst, which must be at
// least Channels()*Frames() long. Used at the driver boundary where
// native APIs expect interleaved PCM.
func (b *Buffer) InterleaveInto(dst []float32) int {
	n := b.channels * b.frames
	if len(dst) < n {
		n = len(dst)
	}
	for i := 0; i < b.frames; i++ {
		for c := 0; c < b.channels; c++ {
			idx := i*b.channels + c
			if idx >= n {
				return n
			}
			dst[idx] = b.planes[c][i]
		}
	}
	return n
}

// DeinterleaveFrom fills b's planes from an interleaved src buffer.
func (b *Buffer) DeinterleaveFrom(src []float32) {
	for i := 0; i < b.frames; i++ {
		for c := 0; c < b.channels; c++ {
			idx := i*b.channels + c
			if idx >= len(src) {
				return
			}
			b.planes[c][i] = src[idx]
		}
	}
}
