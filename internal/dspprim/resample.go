package dspprim

import "math"

// Resampler performs sample-rate conversion with a windowed-sinc
// polyphase FIR kernel, built the way spec.md §4.2 describes the
// default resampler: up/down = sr_out/gcd : sr_in/gcd, with phase i's
// coefficients occupying stride coeffs_per_phase through the flattened
// kernel table. Per-channel retained tail samples let it be fed
// block-by-block without a click or a gap at block boundaries, the same
// way the teacher's AEC keeps a modulo-indexed circular reference buffer
// addressed across calls instead of recomputing from scratch each time.
type Resampler struct {
	ratio    float64 // outRate / inRate
	up, down int     // outRate/gcd, inRate/gcd; up==down means identity
	taps     int
	coeffsPerPhase int
	kernel   []float64 // phase-major: kernel[phase*coeffsPerPhase+t]
	tail     [][]float64 // per-channel history, len == taps-1
	phase    []float64   // per-channel fractional read position
	channels int
}

const defaultResampleTaps = 32

// NewResampler builds a resampler converting inRate to outRate for the
// given channel count.
func NewResampler(channels int, inRate, outRate float64) *Resampler {
	upR, downR := ratioToInts(inRate, outRate)
	r := &Resampler{
		ratio:          outRate / inRate,
		up:             upR,
		down:           downR,
		taps:           defaultResampleTaps,
		coeffsPerPhase: defaultResampleTaps,
		channels:       channels,
	}
	if upR != downR {
		// One polyphase branch per output phase, each a taps-tap
		// windowed sinc centered at that phase's fractional offset.
		r.kernel = make([]float64, upR*r.coeffsPerPhase)
		for phase := 0; phase < upR; phase++ {
			frac := float64(phase) / float64(upR)
			copy(r.kernel[phase*r.coeffsPerPhase:(phase+1)*r.coeffsPerPhase], sincKernel(r.taps, math.Min(1, r.ratio), frac))
		}
	}
	r.tail = make([][]float64, channels)
	r.phase = make([]float64, channels)
	for c := range r.tail {
		r.tail[c] = make([]float64, r.taps-1)
	}
	return r
}

// ratioToInts reduces inRate:outRate to the smallest integer pair
// sharing their gcd, per spec.md §4.2's up/down construction. Rates are
// rounded to the nearest Hz before reduction; real-world sample rates
// are always integral, so this never masks a meaningful fraction.
func ratioToInts(inRate, outRate float64) (up, down int) {
	in := int(math.Round(inRate))
	out := int(math.Round(outRate))
	if in <= 0 || out <= 0 {
		return 1, 1
	}
	g := gcdInt(in, out)
	return out / g, in / g
}

func gcdInt(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

// sincKernel builds a taps-length windowed-sinc lowpass kernel centered
// at a fractional offset frac in [0,1) past tap 0, so a polyphase bank
// can address one branch per output phase.
func sincKernel(taps int, cutoff float64, frac float64) []float64 {
	k := make([]float64, taps)
	center := float64(taps-1)/2 + frac
	for i := 0; i < taps; i++ {
		x := float64(i) - center
		var s float64
		if x == 0 {
			s = cutoff
		} else {
			s = cutoff * math.Sin(math.Pi*cutoff*x) / (math.Pi * cutoff * x)
		}
		// Blackman window to tame sinc ringing.
		w := 0.42 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(taps-1)) + 0.08*math.Cos(4*math.Pi*float64(i)/float64(taps-1))
		k[i] = s * w
	}
	return k
}

// ProcessInto resamples src (one channel's plane) into dst for the given
// channel index, returning the number of output samples written. dst
// must be sized for ceil(len(src)*ratio)+1 or larger.
func (r *Resampler) ProcessInto(channel int, src []float32, dst []float32) int {
	if channel < 0 || channel >= r.channels {
		return 0
	}

	if r.up == r.down {
		// Identity ratio: a straight copy with no filtering at all,
		// per spec.md §4.2/§8 — running the kernel here would smear
		// a byte-exact passthrough through a lowpass for no reason.
		n := len(src)
		if n > len(dst) {
			n = len(dst)
		}
		copy(dst[:n], src[:n])
		return n
	}

	tail := r.tail[channel]
	taps := r.taps
	half := taps - 1

	// Build an extended buffer: retained tail history followed by src,
	// so the kernel can look back past the start of this block.
	ext := make([]float64, half+len(src))
	copy(ext, tail)
	for i, v := range src {
		ext[half+i] = float64(v)
	}

	out := 0
	pos := r.phase[channel]
	step := 1 / r.ratio
	limit := float64(len(src))
	for pos < limit && out < len(dst) {
		base := math.Floor(pos)
		idx := int(base) + half
		frac := pos - base

		// Pick the polyphase branch bracketing this fractional
		// offset and interpolate between the two for sub-phase
		// accuracy, rather than snapping to the nearest phase.
		phaseF := frac * float64(r.up)
		phaseLo := int(phaseF)
		if phaseLo >= r.up {
			phaseLo = r.up - 1
		}
		phaseHi := phaseLo + 1
		phaseFrac := phaseF - float64(phaseLo)
		if phaseHi >= r.up {
			phaseHi = r.up - 1
			phaseFrac = 0
		}
		rowLo := r.kernel[phaseLo*r.coeffsPerPhase : (phaseLo+1)*r.coeffsPerPhase]
		rowHi := r.kernel[phaseHi*r.coeffsPerPhase : (phaseHi+1)*r.coeffsPerPhase]

		var accLo, accHi float64
		for t := 0; t < taps; t++ {
			srcIdx := idx - half + t
			if srcIdx < 0 || srcIdx >= len(ext) {
				continue
			}
			v := ext[srcIdx]
			accLo += v * rowLo[t]
			accHi += v * rowHi[t]
		}
		dst[out] = float32(accLo + (accHi-accLo)*phaseFrac)
		out++
		pos += step
	}
	r.phase[channel] = pos - limit

	// Retain the trailing half-kernel worth of extended history for the
	// next call.
	if len(ext) >= half {
		copy(tail, ext[len(ext)-half:])
	}
	return out
}

// Reset clears retained tail/phase state for every channel, e.g. when a
// layer is retasked to a new sound instance.
func (r *Resampler) Reset() {
	for c := range r.tail {
		for i := range r.tail[c] {
			r.tail[c][i] = 0
		}
		r.phase[c] = 0
	}
}

// OutputFrames estimates how many output frames a block of inFrames
// produces at the configured ratio, for scratch-buffer sizing.
func (r *Resampler) OutputFrames(inFrames int) int {
	return int(math.Ceil(float64(inFrames)*r.ratio)) + 1
}
