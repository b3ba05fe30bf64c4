package buffer

import "testing"

func TestAddFromAccumulates(t *testing.T) {
	dst := New(2, 4)
	src := New(2, 4)
	for c := 0; c < 2; c++ {
		for i := range dst.Plane(c) {
			dst.Plane(c)[i] = 0.25
			src.Plane(c)[i] = 0.5
		}
	}
	if err := dst.AddFrom(src); err != nil {
		t.Fatalf("AddFrom: %v", err)
	}
	for c := 0; c < 2; c++ {
		for i, v := range dst.Plane(c) {
			if v != 0.75 {
				t.Fatalf("plane %d[%d] = %v, want 0.75", c, i, v)
			}
		}
	}
}

func TestAddFromChannelMismatchErrors(t *testing.T) {
	dst := New(2, 4)
	src := New(1, 4)
	if err := dst.AddFrom(src); err == nil {
		t.Fatalf("expected error on channel count mismatch")
	}
}

func TestClampLimitsRange(t *testing.T) {
	b := New(1, 3)
	plane := b.Plane(0)
	plane[0] = 2
	plane[1] = -2
	plane[2] = 0.3
	b.Clamp()
	if plane[0] != 1 || plane[1] != -1 || plane[2] != 0.3 {
		t.Fatalf("Clamp produced %v", plane)
	}
}

func TestInterleaveRoundTrip(t *testing.T) {
	b := New(2, 3)
	b.Plane(0)[0], b.Plane(0)[1], b.Plane(0)[2] = 1, 2, 3
	b.Plane(1)[0], b.Plane(1)[1], b.Plane(1)[2] = -1, -2, -3

	interleaved := make([]float32, 6)
	n := b.InterleaveInto(interleaved)
	if n != 6 {
		t.Fatalf("InterleaveInto wrote %d samples, want 6", n)
	}
	want := []float32{1, -1, 2, -2, 3, -3}
	for i, v := range want {
		if interleaved[i] != v {
			t.Fatalf("interleaved[%d] = %v, want %v", i, interleaved[i], v)
		}
	}

	out := New(2, 3)
	out.DeinterleaveFrom(interleaved)
	for c := 0; c < 2; c++ {
		for i := range out.Plane(c) {
			if out.Plane(c)[i] != b.Plane(c)[i] {
				t.Fatalf("deinterleave mismatch plane %d[%d]: got %v want %v", c, i, out.Plane(c)[i], b.Plane(c)[i])
			}
		}
	}
}

func TestResizeRebindsShape(t *testing.T) {
	b := New(1, 4)
	b.Plane(0)[0] = 5
	b.Resize(2, 8)
	if b.Channels() != 2 || b.Frames() != 8 {
		t.Fatalf("Resize got channels=%d frames=%d", b.Channels(), b.Frames())
	}
	if b.Plane(0)[0] != 0 {
		t.Fatalf("expected zeroed data after a shape-changing resize")
	}
}
