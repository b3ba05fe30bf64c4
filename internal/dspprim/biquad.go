// Package dspprim implements the DSP primitives shared by the mixer and
// pipeline stages: biquad filtering, gain ramps, resampling, FFT-backed
// convolution, and an IMA ADPCM codec.
package dspprim

import "math"

// FilterType selects the biquad coefficient design used by Biquad.Retune.
type FilterType int

const (
	LowPass FilterType = iota
	HighPass
	BandPass
	Notch
	LowShelf
	HighShelf
	Peaking
)

// Biquad is a single second-order IIR section with per-channel state, so
// a stereo (or wider) signal can share one coefficient set while keeping
// independent history per channel. Coefficients are recomputed only when
// a parameter changes, matching the small-mutable-processor shape used
// throughout the engine's other per-block processors.
type Biquad struct {
	kind     FilterType
	freq     float64
	q        float64
	gainDB   float64
	sampRate float64

	b0, b1, b2 float64
	a1, a2     float64

	x1, x2, y1, y2 []float64
}

// NewBiquad constructs a biquad for the given channel count and sample
// rate, initialized to a low-pass at sampleRate/4 (half of Nyquist)
// with Q=0.707.
func NewBiquad(channels int, sampleRate float64) *Biquad {
	bq := &Biquad{
		kind:     LowPass,
		freq:     sampleRate / 4,
		q:        0.70710678,
		sampRate: sampleRate,
		x1:       make([]float64, channels),
		x2:       make([]float64, channels),
		y1:       make([]float64, channels),
		y2:       make([]float64, channels),
	}
	bq.recompute()
	return bq
}

// Retune changes the filter design and recomputes coefficients. It does
// not reset the per-channel history, so a parameter sweep stays
// click-free.
func (bq *Biquad) Retune(kind FilterType, freqHz, q, gainDB float64) {
	bq.kind = kind
	bq.freq = freqHz
	bq.q = q
	bq.gainDB = gainDB
	bq.recompute()
}

func (bq *Biquad) recompute() {
	w0 := 2 * math.Pi * bq.freq / bq.sampRate
	cosW0 := math.Cos(w0)
	sinW0 := math.Sin(w0)
	alpha := sinW0 / (2 * bq.q)
	a := math.Pow(10, bq.gainDB/40)

	var b0, b1, b2, a0, a1, a2 float64
	switch bq.kind {
	case LowPass:
		b0 = (1 - cosW0) / 2
		b1 = 1 - cosW0
		b2 = (1 - cosW0) / 2
		a0 = 1 + alpha
		a1 = -2 * cosW0
		a2 = 1 - alpha
	case HighPass:
		b0 = (1 + cosW0) / 2
		b1 = -(1 + cosW0)
		b2 = (1 + cosW0) / 2
		a0 = 1 + alpha
		a1 = -2 * cosW0
		a2 = 1 - alpha
	case BandPass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
		a0 = 1 + alpha
		a1 = -2 * cosW0
		a2 = 1 - alpha
	case Notch:
		b0 = 1
		b1 = -2 * cosW0
		b2 = 1
		a0 = 1 + alpha
		a1 = -2 * cosW0
		a2 = 1 - alpha
	case LowShelf:
		sq := math.Sqrt(a) * alpha * 2
		b0 = a * ((a + 1) - (a-1)*cosW0 + sq)
		b1 = 2 * a * ((a - 1) - (a+1)*cosW0)
		b2 = a * ((a + 1) - (a-1)*cosW0 - sq)
		a0 = (a + 1) + (a-1)*cosW0 + sq
		a1 = -2 * ((a - 1) + (a+1)*cosW0)
		a2 = (a + 1) + (a-1)*cosW0 - sq
	case HighShelf:
		sq := math.Sqrt(a) * alpha * 2
		b0 = a * ((a + 1) + (a-1)*cosW0 + sq)
		b1 = -2 * a * ((a - 1) + (a+1)*cosW0)
		b2 = a * ((a + 1) + (a-1)*cosW0 - sq)
		a0 = (a + 1) - (a-1)*cosW0 + sq
		a1 = 2 * ((a - 1) - (a+1)*cosW0)
		a2 = (a + 1) - (a-1)*cosW0 - sq
	case Peaking:
		b0 = 1 + alpha*a
		b1 = -2 * cosW0
		b2 = 1 - alpha*a
		a0 = 1 + alpha/a
		a1 = -2 * cosW0
		a2 = 1 - alpha/a
	}

	bq.b0 = b0 / a0
	bq.b1 = b1 / a0
	bq.b2 = b2 / a0
	bq.a1 = a1 / a0
	bq.a2 = a2 / a0
}

// Process filters plane in place for the given channel index, using that
// channel's retained history.
func (bq *Biquad) Process(channel int, plane []float32) {
	if channel < 0 || channel >= len(bq.x1) {
		return
	}
	x1, x2, y1, y2 := bq.x1[channel], bq.x2[channel], bq.y1[channel], bq.y2[channel]
	for i, in := range plane {
		x0 := float64(in)
		y0 := bq.b0*x0 + bq.b1*x1 + bq.b2*x2 - bq.a1*y1 - bq.a2*y2
		plane[i] = float32(y0)
		x2, x1 = x1, x0
		y2, y1 = y1, y0
	}
	bq.x1[channel], bq.x2[channel] = x1, x2
	bq.y1[channel], bq.y2[channel] = y1, y2
}

// Reset zeroes all channel history, e.g. after a voice is retasked for a
// new sound instance.
func (bq *Biquad) Reset() {
	for i := range bq.x1 {
		bq.x1[i], bq.x2[i], bq.y1[i], bq.y2[i] = 0, 0, 0, 0
	}
}
