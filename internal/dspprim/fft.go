package dspprim

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

// ComplexSpectrum is the split-complex container the FFT and
// convolution code exchange instead of passing around []complex128
// directly, so callers that never touch the imaginary rail (e.g. a
// magnitude-only analysis) don't need to import the complex type.
type ComplexSpectrum struct {
	Real []float64
	Imag []float64
}

func newComplexSpectrum(n int) *ComplexSpectrum {
	return &ComplexSpectrum{Real: make([]float64, n), Imag: make([]float64, n)}
}

// RealFFT runs a real-input forward FFT on in (zero-padded to the next
// power of two if needed) and returns the full split-complex spectrum.
// Wraps github.com/mjibson/go-dsp/fft.FFTReal the same way
// richinsley-goshadertoy's mic input stage does for live PCM analysis.
func RealFFT(in []float64) *ComplexSpectrum {
	n := nextPow2(len(in))
	padded := in
	if n != len(in) {
		padded = make([]float64, n)
		copy(padded, in)
	}
	out := fft.FFTReal(padded)
	spec := newComplexSpectrum(len(out))
	for i, c := range out {
		spec.Real[i] = real(c)
		spec.Imag[i] = imag(c)
	}
	return spec
}

// InverseFFT runs an inverse FFT on spec and returns the real part of
// the time-domain result (the imaginary part is expected to be
// negligible round-trip noise for the real-valued signals this engine
// convolves).
func InverseFFT(spec *ComplexSpectrum) []float64 {
	n := len(spec.Real)
	cplx := make([]complex128, n)
	for i := range cplx {
		cplx[i] = complex(spec.Real[i], spec.Imag[i])
	}
	out := fft.IFFT(cplx)
	result := make([]float64, n)
	for i, c := range out {
		result[i] = real(c)
	}
	return result
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// OverlapSaveConvolver convolves a long audio stream against a fixed
// impulse response block-by-block using the overlap-save method,
// retaining the irLen-1 sample tail across calls the same way the
// resampler and AEC-style processors retain history instead of
// recomputing from scratch per block.
type OverlapSaveConvolver struct {
	ir       []float64
	irSpec   *ComplexSpectrum
	fftSize  int
	blockLen int
	tail     []float64 // last irLen-1 input samples
}

// NewOverlapSaveConvolver prepares a convolver for impulse response ir,
// processing input in blocks of blockLen samples.
func NewOverlapSaveConvolver(ir []float64, blockLen int) *OverlapSaveConvolver {
	fftSize := nextPow2(len(ir) + blockLen - 1)
	padded := make([]float64, fftSize)
	copy(padded, ir)
	return &OverlapSaveConvolver{
		ir:       ir,
		irSpec:   RealFFT(padded),
		fftSize:  fftSize,
		blockLen: blockLen,
		tail:     make([]float64, len(ir)-1),
	}
}

// Process convolves one block of input against the stored impulse
// response, returning len(block) output samples that continue correctly
// from the previous call. block may be shorter than the blockLen the
// convolver was sized for (e.g. a partial trailing sub-block); it must
// not be longer.
func (c *OverlapSaveConvolver) Process(block []float64) []float64 {
	irLen := len(c.ir)
	outLen := len(block)
	ext := make([]float64, c.fftSize)
	copy(ext, c.tail)
	copy(ext[len(c.tail):], block)

	spec := RealFFT(ext)
	n := len(spec.Real)
	for i := 0; i < n && i < len(c.irSpec.Real); i++ {
		ar, ai := spec.Real[i], spec.Imag[i]
		br, bi := c.irSpec.Real[i], c.irSpec.Imag[i]
		spec.Real[i] = ar*br - ai*bi
		spec.Imag[i] = ar*bi + ai*br
	}
	full := InverseFFT(spec)

	out := make([]float64, outLen)
	start := irLen - 1
	for i := 0; i < outLen && start+i < len(full); i++ {
		out[i] = full[start+i] / float64(c.fftSize)
	}

	// Retain the trailing irLen-1 samples of this block's input as the
	// next call's lookback.
	if irLen > 1 {
		newTail := make([]float64, irLen-1)
		src := append(append([]float64{}, c.tail...), block...)
		if len(src) >= irLen-1 {
			copy(newTail, src[len(src)-(irLen-1):])
		}
		c.tail = newTail
	}
	return out
}

// Reset clears retained lookback, e.g. when the impulse response is
// swapped for a different HRIR pair.
func (c *OverlapSaveConvolver) Reset() {
	for i := range c.tail {
		c.tail[i] = 0
	}
}

// SetImpulse swaps in a new impulse response of the same length in
// place, recomputing only its spectrum and leaving the retained input
// tail untouched. Used by HRTF sub-block interpolation, where the
// blended IR changes every sub-block but the underlying input stream
// is continuous: replacing the convolver outright (as NewOverlapSaveConvolver
// would) would zero the tail and reintroduce a discontinuity at every
// sub-block boundary.
func (c *OverlapSaveConvolver) SetImpulse(ir []float64) {
	if len(ir) != len(c.ir) {
		fftSize := nextPow2(len(ir) + c.blockLen - 1)
		if fftSize != c.fftSize {
			c.fftSize = fftSize
		}
		newTail := make([]float64, len(ir)-1)
		if n := len(c.tail); n > 0 {
			copy(newTail[max(0, len(newTail)-n):], c.tail[max(0, n-len(newTail)):])
		}
		c.tail = newTail
	}
	padded := make([]float64, c.fftSize)
	copy(padded, ir)
	c.ir = ir
	c.irSpec = RealFFT(padded)
}

// Magnitude returns |spec| per bin, useful for spectral analysis
// consumers that don't need phase.
func Magnitude(spec *ComplexSpectrum) []float64 {
	out := make([]float64, len(spec.Real))
	for i := range out {
		out[i] = math.Hypot(spec.Real[i], spec.Imag[i])
	}
	return out
}
