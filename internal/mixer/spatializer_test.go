package mixer

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"amplitude/internal/hrir"
	"amplitude/internal/spatial"
)

func TestEqualPowerPanCenterIsBalanced(t *testing.T) {
	l, r := EqualPowerPan(0)
	if diff := l - r; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("center pan should be balanced, got L=%v R=%v", l, r)
	}
	if diff := l*l + r*r - 1; diff > 1e-5 || diff < -1e-5 {
		t.Fatalf("equal-power pan should conserve power, got L^2+R^2=%v", l*l+r*r)
	}
}

func TestEqualPowerPanHardLeftIsAllLeft(t *testing.T) {
	l, r := EqualPowerPan(-1)
	if l < 0.99 || r > 0.01 {
		t.Fatalf("hard-left pan = (%v,%v), want ~(1,0)", l, r)
	}
}

func TestSphericalPanCollapsesOverhead(t *testing.T) {
	l, r := SphericalPan(spatial.SphericalPosition{Azimuth: 0, Elevation: math.Pi / 2})
	if l > 0.01 || r > 0.01 {
		t.Fatalf("directly-overhead source should collapse toward silence via the elevation weight, got (%v,%v)", l, r)
	}
}

// encodeSphere serializes a sphere into the AMIR binary format Load
// expects, so tests can build a real *hrir.Sphere without reaching into
// its unexported fields.
func encodeSphere(irLen int, faces []spatial.Face, vertices []spatial.Vec3) *bytes.Buffer {
	var indices []uint32
	for _, f := range faces {
		indices = append(indices, uint32(f.I0), uint32(f.I1), uint32(f.I2))
	}

	buf := &bytes.Buffer{}
	buf.WriteString("AMIR")
	header := struct {
		Version     uint16
		SampleRate  uint32
		IRLength    uint32
		VertexCount uint32
		IndexCount  uint32
	}{Version: 1, SampleRate: 48000, IRLength: uint32(irLen), VertexCount: uint32(len(vertices)), IndexCount: uint32(len(indices))}
	binary.Write(buf, binary.LittleEndian, header)
	binary.Write(buf, binary.LittleEndian, indices)

	for _, p := range vertices {
		pos := [3]float32{float32(p.X), float32(p.Y), float32(p.Z)}
		binary.Write(buf, binary.LittleEndian, pos)
		left := make([]float32, irLen)
		right := make([]float32, irLen)
		left[0] = 1
		right[0] = 1
		binary.Write(buf, binary.LittleEndian, left)
		binary.Write(buf, binary.LittleEndian, right)
		binary.Write(buf, binary.LittleEndian, [2]float32{0, 0})
	}
	return buf
}

func testSphere() *hrir.Sphere {
	positions := []spatial.Vec3{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1}}
	faces := []spatial.Face{
		{I0: 0, I1: 2, I2: 4}, {I0: 2, I1: 1, I2: 4}, {I0: 1, I1: 3, I2: 4}, {I0: 3, I1: 0, I2: 4},
		{I0: 2, I1: 0, I2: 5}, {I0: 1, I1: 2, I2: 5}, {I0: 3, I1: 1, I2: 5}, {I0: 0, I1: 3, I2: 5},
	}
	s, err := hrir.Load(encodeSphere(8, faces, positions))
	if err != nil {
		panic(err)
	}
	return s
}

func TestHRTFSpatializerProcessProducesStereoOutput(t *testing.T) {
	sphere := testSphere()
	h := NewHRTFSpatializer(sphere, hrir.Bilinear)
	mono := make([]float32, 64)
	for i := range mono {
		mono[i] = 1
	}
	outL := make([]float32, len(mono))
	outR := make([]float32, len(mono))
	if err := h.Process(mono, spatial.Vec3{X: 1}, outL, outR); err != nil {
		t.Fatalf("Process: %v", err)
	}
	var sum float32
	for i := range outL {
		sum += outL[i]*outL[i] + outR[i]*outR[i]
	}
	if sum == 0 {
		t.Fatalf("expected non-zero energy in the spatialized output")
	}
}

func TestBinauralSpatializerProcessProducesStereoOutput(t *testing.T) {
	sphere := testSphere()
	b := NewBinauralSpatializer(sphere, hrir.Bilinear, BinauralOrder(PanBinauralLow))
	mono := make([]float32, 64)
	for i := range mono {
		mono[i] = 1
	}
	outL := make([]float32, len(mono))
	outR := make([]float32, len(mono))
	if err := b.Process(mono, spatial.Vec3{X: 1}, outL, outR); err != nil {
		t.Fatalf("Process: %v", err)
	}
	var sum float32
	for i := range outL {
		sum += outL[i]*outL[i] + outR[i]*outR[i]
	}
	if sum == 0 {
		t.Fatalf("expected non-zero energy in the binaural output")
	}

	// A second call with a different direction reuses the same
	// per-speaker convolvers (updated via SetImpulse) rather than
	// rebuilding them, and must not panic or error.
	if err := b.Process(mono, spatial.Vec3{X: -1}, outL, outR); err != nil {
		t.Fatalf("second Process call: %v", err)
	}
}

func TestBinauralOrderMapsPanModes(t *testing.T) {
	cases := map[PanMode]int{
		PanBinauralLow:  1,
		PanBinauralMed:  2,
		PanBinauralHigh: 3,
		PanStereo:       1,
	}
	for mode, want := range cases {
		if got := int(BinauralOrder(mode)); got != want {
			t.Errorf("BinauralOrder(%v) = %d, want %d", mode, got, want)
		}
	}
}
