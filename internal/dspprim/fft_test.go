package dspprim

import "testing"

func TestRealFFTInverseFFTRoundTrip(t *testing.T) {
	in := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	spec := RealFFT(in)
	out := InverseFFT(spec)
	n := nextPow2(len(in))
	for i := range in {
		got := out[i] / float64(n)
		if diff := got - in[i]; diff > 1e-6 || diff < -1e-6 {
			t.Fatalf("round trip sample %d = %v, want %v", i, got, in[i])
		}
	}
}

func TestNextPow2(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 5: 8, 8: 8, 9: 16}
	for in, want := range cases {
		if got := nextPow2(in); got != want {
			t.Errorf("nextPow2(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestOverlapSaveConvolverIdentityImpulse(t *testing.T) {
	ir := []float64{1, 0, 0, 0}
	conv := NewOverlapSaveConvolver(ir, 8)
	block := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	out := conv.Process(block)
	for i, v := range block {
		if diff := out[i] - v; diff > 1e-6 || diff < -1e-6 {
			t.Fatalf("identity impulse response should pass input through, out[%d]=%v want %v", i, out[i], v)
		}
	}
}

func TestOverlapSaveConvolverResetClearsTail(t *testing.T) {
	ir := []float64{0, 1}
	conv := NewOverlapSaveConvolver(ir, 4)
	conv.Process([]float64{1, 2, 3, 4})
	conv.Reset()
	for _, v := range conv.tail {
		if v != 0 {
			t.Fatalf("expected Reset to clear tail, got %v", conv.tail)
		}
	}
}

func TestOverlapSaveConvolverSetImpulsePreservesTail(t *testing.T) {
	ir := []float64{0, 1}
	conv := NewOverlapSaveConvolver(ir, 4)
	conv.Process([]float64{1, 2, 3, 4})

	// Swapping the impulse response must not reset the retained tail:
	// the next block's first sample should still reflect the previous
	// block's last input, the same as if Process had been called
	// without ever rebuilding the convolver.
	conv.SetImpulse([]float64{0, 1})
	out := conv.Process([]float64{5, 6, 7, 8})
	if diff := out[0] - 4; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("out[0] = %v, want 4 (previous block's last sample via the preserved tail)", out[0])
	}
}

func TestOverlapSaveConvolverProcessAcceptsShorterBlock(t *testing.T) {
	ir := []float64{1, 0, 0, 0}
	conv := NewOverlapSaveConvolver(ir, 8)
	out := conv.Process([]float64{1, 2, 3})
	if len(out) != 3 {
		t.Fatalf("Process on a 3-sample block should return 3 output samples, got %d", len(out))
	}
}

func TestMagnitude(t *testing.T) {
	spec := &ComplexSpectrum{Real: []float64{3}, Imag: []float64{4}}
	mag := Magnitude(spec)
	if mag[0] != 5 {
		t.Fatalf("Magnitude = %v, want 5", mag[0])
	}
}
