package dspprim

import "testing"

func TestAdpcmEncodeDecodeRoundTrip(t *testing.T) {
	channels := 1
	src := []int16{0, 1000, 2000, 1500, 500, -500, -1500, -2500}

	enc := NewAdpcmEncoder(channels)
	enc.Seed(0, src[0])

	codes := make([]uint8, len(src)-1)
	for i := 1; i < len(src); i++ {
		codes[i-1] = enc.EncodeNibble(0, src[i])
	}

	dec := NewAdpcmDecoder(channels)
	dec.Reset(0, src[0], 0)
	out := make([]int16, len(codes))
	for i, c := range codes {
		out[i] = dec.DecodeNibble(0, c)
	}

	// Starting from step index 0 (step 7), the standard IMA tables can
	// only grow the step by a few table entries per sample, so the
	// decoder lags these large jumps by the envelope the tables allow.
	want := []int16{11, 41, 104, 240, -53, -684, -2041}
	for i, v := range out {
		if v != want[i] {
			t.Fatalf("sample %d decoded to %d, want %d (standard IMA reconstruction of %d)", i, v, want[i], src[i+1])
		}
	}
}

func TestAdpcmDecodeBlockPacksTwoNibblesPerByte(t *testing.T) {
	dec := NewAdpcmDecoder(1)
	dec.Reset(0, 0, 0)
	packed := []byte{0x21, 0x43}
	dst := make([]int16, 4)
	n := dec.DecodeBlock(0, packed, dst)
	if n != 4 {
		t.Fatalf("DecodeBlock wrote %d samples, want 4", n)
	}
}

func TestAdpcmOutOfRangeChannelIsSafe(t *testing.T) {
	dec := NewAdpcmDecoder(1)
	if v := dec.DecodeNibble(5, 0); v != 0 {
		t.Fatalf("expected 0 for an out-of-range channel, got %d", v)
	}
	enc := NewAdpcmEncoder(1)
	if c := enc.EncodeNibble(5, 100); c != 0 {
		t.Fatalf("expected 0 code for an out-of-range channel, got %d", c)
	}
}

func TestValidateExtensibleChunkSize(t *testing.T) {
	if err := ValidateExtensibleChunkSize(40); err != nil {
		t.Fatalf("chunk size 40 should be accepted, got %v", err)
	}
	if err := ValidateExtensibleChunkSize(16); err == nil {
		t.Fatalf("expected chunk size 16 to be rejected")
	}
}
