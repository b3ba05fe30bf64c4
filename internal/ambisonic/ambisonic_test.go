package ambisonic

import (
	"testing"

	"amplitude/internal/spatial"
)

func TestChannelCountHorizontalAndFull3D(t *testing.T) {
	if got := ChannelCount(Order1, false); got != 3 {
		t.Errorf("ChannelCount(1, horizontal) = %d, want 3", got)
	}
	if got := ChannelCount(Order1, true); got != 4 {
		t.Errorf("ChannelCount(1, 3D) = %d, want 4", got)
	}
	if got := ChannelCount(Order3, true); got != 16 {
		t.Errorf("ChannelCount(3, 3D) = %d, want 16", got)
	}
}

func TestEncodeWFieldIsOmnidirectional(t *testing.T) {
	mono := []float32{1, 1, 1, 1}
	dst := make([][]float32, ChannelCount(Order1, true))
	for i := range dst {
		dst[i] = make([]float32, len(mono))
	}
	Encode(mono, spatial.Vec3{X: 1}, Order1, true, dst)
	for i, v := range dst[0] {
		if v != 1 {
			t.Fatalf("W channel[%d] = %v, want 1 regardless of direction", i, v)
		}
	}
}

func TestEncodeWritesNoMoreThanProvidedPlanes(t *testing.T) {
	mono := []float32{1}
	dst := [][]float32{{0}}
	// Should not panic or index past dst despite order-1's 4 channels.
	Encode(mono, spatial.Vec3{X: 1}, Order1, true, dst)
	if dst[0][0] != 1 {
		t.Fatalf("W channel = %v, want 1", dst[0][0])
	}
}
