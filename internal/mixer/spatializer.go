package mixer

import (
	"math"

	"amplitude/internal/ambisonic"
	"amplitude/internal/dspprim"
	"amplitude/internal/hrir"
	"amplitude/internal/spatial"
)

// PanMode selects how a real channel's mono downmix is spatialized,
// matching the engine frontend's spatialization ∈ {None, Position,
// PositionOrientation, HRTF} and pan ∈ {Stereo, BinauralLow/Med/High,
// HRTF} selections.
type PanMode int

const (
	PanStereo PanMode = iota
	PanBinauralLow
	PanBinauralMed
	PanBinauralHigh
	PanHRTF
)

// EqualPowerPan computes (gainL, gainR) for a pan in [-1, 1] using the
// equal-power law: L = cos(pi*(pan+1)/4)^2, R = sin(pi*(pan+1)/4)^2.
func EqualPowerPan(pan float32) (gainL, gainR float32) {
	t := math.Pi * (float64(pan) + 1) / 4
	return float32(math.Cos(t) * math.Cos(t)), float32(math.Sin(t) * math.Sin(t))
}

// SphericalPan reduces a listener-relative spherical direction to the
// same equal-power pair, additionally weighting by cos(elevation) so a
// source directly overhead or underfoot collapses toward center.
func SphericalPan(sp spatial.SphericalPosition) (gainL, gainR float32) {
	// Map azimuth (radians, clockwise from front) to a [-1,1] pan value
	// the way a source directly to the right/left maps to +-1.
	pan := float32(math.Sin(sp.Azimuth))
	gainL, gainR = EqualPowerPan(pan)
	w := float32(math.Cos(sp.Elevation))
	return gainL * w, gainR * w
}

// HRTFSpatializer renders the HRTF direct path for a point source: it
// interpolates the HRIR pair across sub-blocks as the source direction
// changes and convolves via overlap-save, maintaining previous-direction
// state per channel.
type HRTFSpatializer struct {
	sphere      *hrir.Sphere
	mode        hrir.SamplingMode
	convL, convR *dspprim.OverlapSaveConvolver
	prevDir     spatial.Vec3
	haveState   bool

	interpSteps     int
	interpBlockSize int
}

// NewHRTFSpatializer prepares a spatializer bound to sphere, with the
// spec's default interpolation_steps=16 across
// interpolation_block_size=128-frame sub-blocks.
func NewHRTFSpatializer(sphere *hrir.Sphere, mode hrir.SamplingMode) *HRTFSpatializer {
	return &HRTFSpatializer{
		sphere:          sphere,
		mode:            mode,
		interpSteps:     16,
		interpBlockSize: 128,
	}
}

// Process spatializes a mono input into stereo output for the given
// listener-space direction, sub-dividing the block into
// interpolation_steps chunks and cross-fading the HRIR pair across them.
func (h *HRTFSpatializer) Process(mono []float32, dir spatial.Vec3, outL, outR []float32) error {
	n := len(mono)
	if !h.haveState {
		h.prevDir = dir
		h.haveState = true
	}

	subLen := h.interpBlockSize
	steps := h.interpSteps
	if subLen*steps > n {
		subLen = n / steps
		if subLen == 0 {
			subLen = n
			steps = 1
		}
	}

	prevL, prevR, _, _, err := h.sphere.Sample(h.prevDir, h.mode)
	if err != nil {
		return err
	}
	curL, curR, _, _, err := h.sphere.Sample(dir, h.mode)
	if err != nil {
		return err
	}

	if h.convL == nil {
		h.convL = dspprim.NewOverlapSaveConvolver(toF64(curL), subLen)
		h.convR = dspprim.NewOverlapSaveConvolver(toF64(curR), subLen)
	}

	pos := 0
	for step := 0; step < steps && pos < n; step++ {
		end := pos + subLen
		if end > n {
			end = n
		}
		t := float64(step) / float64(steps-1)
		if steps == 1 {
			t = 1
		}
		blendedL := blend(prevL, curL, t)
		blendedR := blend(prevR, curR, t)
		// Update the existing convolver pair's impulse response in
		// place rather than constructing new ones: the input stream is
		// continuous across sub-blocks, so the retained overlap-save
		// tail must carry over even though the blended IR changes
		// every sub-block.
		h.convL.SetImpulse(toF64(blendedL))
		h.convR.SetImpulse(toF64(blendedR))

		block := toF64(mono[pos:end])
		convL := h.convL.Process(block)
		convR := h.convR.Process(block)

		inEnergy := rmsF64(block)
		for i := range convL {
			outL[pos+i] = float32(convL[i])
			outR[pos+i] = float32(convR[i])
		}
		// Energy-match the convolved output to the pre-HRTF mono input
		// within +-1dB at 0 elevation, resolving the source's ambiguous
		// FFT-normalization gain interpolation per the documented
		// decision.
		outEnergy := rmsF32(outL[pos:end]) + rmsF32(outR[pos:end])
		if outEnergy > 1e-9 && inEnergy > 1e-9 {
			target := float32(inEnergy)
			ratio := target / (outEnergy / 2)
			for i := pos; i < end; i++ {
				outL[i] *= ratio
				outR[i] *= ratio
			}
		}
		pos = end
	}
	h.prevDir = dir
	return nil
}

func blend(a, b []float32, t float64) []float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	out := make([]float32, n)
	ft := float32(t)
	for i := 0; i < n; i++ {
		out[i] = a[i]*(1-ft) + b[i]*ft
	}
	return out
}

func toF64(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

func rmsF64(in []float64) float64 {
	if len(in) == 0 {
		return 0
	}
	var sum float64
	for _, v := range in {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(in)))
}

func rmsF32(in []float32) float32 {
	if len(in) == 0 {
		return 0
	}
	var sum float64
	for _, v := range in {
		sum += float64(v) * float64(v)
	}
	return float32(math.Sqrt(sum / float64(len(in))))
}

// BinauralOrder maps a PanMode to the Ambisonic order used for its
// encode/rotate/decode chain (Low=1, Med=2, High=3).
func BinauralOrder(mode PanMode) ambisonic.Order {
	switch mode {
	case PanBinauralLow:
		return ambisonic.Order1
	case PanBinauralMed:
		return ambisonic.Order2
	case PanBinauralHigh:
		return ambisonic.Order3
	}
	return ambisonic.Order1
}

// binauralLayout picks a virtual speaker array sized to an order's
// channel count: a cube for order 1, a dodecahedron for order 2, and
// the full Lebedev26 quadrature for order 3, so decode error drops as
// the field order rises.
func binauralLayout(order ambisonic.Order) ambisonic.Layout {
	switch order {
	case ambisonic.Order1:
		return ambisonic.Cube
	case ambisonic.Order2:
		return ambisonic.Dodecahedron
	default:
		return ambisonic.Lebedev26
	}
}

// BinauralSpatializer renders the ambisonic binaural pan path: encode
// mono to B-format at the source's listener-space direction, rotate for
// listener head orientation, decode through a virtual loudspeaker
// array, and convolve each virtual speaker's signal against its own
// HRIR pair before summing to stereo (spec.md §4.9 step 7). It keeps
// one persistent convolver pair per virtual speaker, updated in place
// across calls the same way HRTFSpatializer reuses its convolver pair.
type BinauralSpatializer struct {
	sphere *hrir.Sphere
	mode   hrir.SamplingMode
	order  ambisonic.Order
	array  *ambisonic.Array
	rotator *ambisonic.Rotator

	bformat        [][]float32
	speakerSignals [][]float32
	convL, convR   []*dspprim.OverlapSaveConvolver
}

// NewBinauralSpatializer prepares a spatializer bound to sphere at the
// given Ambisonic order.
func NewBinauralSpatializer(sphere *hrir.Sphere, mode hrir.SamplingMode, order ambisonic.Order) *BinauralSpatializer {
	return &BinauralSpatializer{
		sphere:  sphere,
		mode:    mode,
		order:   order,
		array:   ambisonic.NewPresetArray(binauralLayout(order), order),
		rotator: ambisonic.NewRotator(order, true),
	}
}

// SetHeadOrientation sets the Euler angles the rotator applies to the
// B-format field before decode (ambisonic.Rotator documents the axis
// each angle turns about), for hosts that track head orientation
// independently of the per-channel listener-relative direction already
// folded into Process's dir argument.
func (b *BinauralSpatializer) SetHeadOrientation(alpha, beta, gamma float64) {
	b.rotator.SetAngles(alpha, beta, gamma)
}

// Process spatializes a mono input into stereo output for the given
// listener-space source direction.
func (b *BinauralSpatializer) Process(mono []float32, dir spatial.Vec3, outL, outR []float32) error {
	n := len(mono)
	chCount := ambisonic.ChannelCount(b.order, true)
	if len(b.bformat) != chCount {
		b.bformat = make([][]float32, chCount)
	}
	for i := range b.bformat {
		if len(b.bformat[i]) != n {
			b.bformat[i] = make([]float32, n)
		}
	}
	ambisonic.Encode(mono, dir, b.order, true, b.bformat)
	b.rotator.Process(b.bformat)

	nSpeakers := len(b.array.Speakers)
	if len(b.speakerSignals) != nSpeakers {
		b.speakerSignals = make([][]float32, nSpeakers)
	}
	for i := range b.speakerSignals {
		if len(b.speakerSignals[i]) != n {
			b.speakerSignals[i] = make([]float32, n)
		}
	}
	b.array.Decode(b.bformat, b.speakerSignals)

	if b.convL == nil {
		b.convL = make([]*dspprim.OverlapSaveConvolver, nSpeakers)
		b.convR = make([]*dspprim.OverlapSaveConvolver, nSpeakers)
	}

	for i := range outL {
		outL[i] = 0
	}
	for i := range outR {
		outR[i] = 0
	}

	for si, sp := range b.array.Speakers {
		hl, hr, _, _, err := b.sphere.Sample(sp.Position.ToCartesian(), b.mode)
		if err != nil {
			return err
		}
		if b.convL[si] == nil {
			b.convL[si] = dspprim.NewOverlapSaveConvolver(toF64(hl), n)
			b.convR[si] = dspprim.NewOverlapSaveConvolver(toF64(hr), n)
		} else {
			b.convL[si].SetImpulse(toF64(hl))
			b.convR[si].SetImpulse(toF64(hr))
		}

		block := toF64(b.speakerSignals[si])
		cl := b.convL[si].Process(block)
		cr := b.convR[si].Process(block)
		for i := range cl {
			if i < len(outL) {
				outL[i] += float32(cl[i])
			}
		}
		for i := range cr {
			if i < len(outR) {
				outR[i] += float32(cr[i])
			}
		}
	}
	return nil
}
