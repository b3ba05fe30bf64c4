package dspprim

import "amplitude/internal/amerr"

// IMA ADPCM step tables, standard values.
var imaIndexTable = [16]int{-1, -1, -1, -1, 2, 4, 6, 8, -1, -1, -1, -1, 2, 4, 6, 8}

var imaStepTable = [89]int{
	7, 8, 9, 10, 11, 12, 13, 14, 16, 17,
	19, 21, 23, 25, 28, 31, 34, 37, 41, 45,
	50, 55, 60, 66, 73, 80, 88, 97, 107, 118,
	130, 143, 157, 173, 190, 209, 230, 253, 279, 307,
	337, 371, 408, 449, 494, 544, 598, 658, 724, 796,
	876, 963, 1060, 1166, 1282, 1411, 1552, 1707, 1878, 2066,
	2272, 2499, 2749, 3024, 3327, 3660, 4026, 4428, 4871, 5358,
	5894, 6484, 7132, 7845, 8630, 9493, 10442, 11487, 12635, 13899,
	15289, 16818, 18500, 20350, 22385, 24623, 27086, 29794, 32767,
}

// AdpcmState holds the per-channel (predicted_sample, step_index) pair
// the IMA codec carries across blocks, the same small-struct-with-
// retained-state shape used by the engine's other stateful processors.
type AdpcmState struct {
	Predicted int32
	StepIndex int32
}

// AdpcmDecoder decodes 4-bit IMA ADPCM nibbles to int16 PCM, one state
// per channel.
type AdpcmDecoder struct {
	states []AdpcmState
}

// NewAdpcmDecoder constructs a decoder for the given channel count, with
// every channel's predictor reset to zero.
func NewAdpcmDecoder(channels int) *AdpcmDecoder {
	return &AdpcmDecoder{states: make([]AdpcmState, channels)}
}

// Reset reinitializes channel c's predictor to the given seed values, as
// read from a block header.
func (d *AdpcmDecoder) Reset(channel int, predicted int16, stepIndex int8) {
	if channel < 0 || channel >= len(d.states) {
		return
	}
	d.states[channel] = AdpcmState{Predicted: int32(predicted), StepIndex: int32(stepIndex)}
}

// DecodeNibble decodes a single 4-bit code for channel, returning the
// reconstructed int16 sample and advancing that channel's state.
func (d *AdpcmDecoder) DecodeNibble(channel int, code uint8) int16 {
	if channel < 0 || channel >= len(d.states) {
		return 0
	}
	st := &d.states[channel]
	step := imaStepTable[clampIndex(st.StepIndex)]

	diff := step >> 3
	if code&1 != 0 {
		diff += step >> 2
	}
	if code&2 != 0 {
		diff += step >> 1
	}
	if code&4 != 0 {
		diff += step
	}
	if code&8 != 0 {
		diff = -diff
	}

	predicted := st.Predicted + int32(diff)
	if predicted > 32767 {
		predicted = 32767
	} else if predicted < -32768 {
		predicted = -32768
	}
	st.Predicted = predicted

	st.StepIndex += int32(imaIndexTable[code&0x0f])
	st.StepIndex = clampIndex(st.StepIndex)

	return int16(predicted)
}

func clampIndex(idx int32) int32 {
	if idx < 0 {
		return 0
	}
	if idx > 88 {
		return 88
	}
	return idx
}

// DecodeBlock decodes a byte-packed nibble stream for channel into dst,
// two samples per input byte (low nibble first).
func (d *AdpcmDecoder) DecodeBlock(channel int, packed []byte, dst []int16) int {
	n := 0
	for _, b := range packed {
		if n >= len(dst) {
			break
		}
		dst[n] = d.DecodeNibble(channel, b&0x0f)
		n++
		if n >= len(dst) {
			break
		}
		dst[n] = d.DecodeNibble(channel, (b>>4)&0x0f)
		n++
	}
	return n
}

// AdpcmEncoder encodes int16 PCM to 4-bit IMA ADPCM nibbles, one state
// per channel. Each nibble is chosen from the current sample alone;
// there is no look-ahead and no noise shaping.
type AdpcmEncoder struct {
	states []AdpcmState
}

// NewAdpcmEncoder constructs an encoder for the given channel count.
func NewAdpcmEncoder(channels int) *AdpcmEncoder {
	return &AdpcmEncoder{states: make([]AdpcmState, channels)}
}

// Seed initializes channel c's predictor from the first PCM sample of a
// block, matching the decoder's block-header convention.
func (e *AdpcmEncoder) Seed(channel int, firstSample int16) {
	if channel < 0 || channel >= len(e.states) {
		return
	}
	e.states[channel] = AdpcmState{Predicted: int32(firstSample), StepIndex: 0}
}

// EncodeNibble encodes a single PCM sample for channel against that
// channel's retained predictor, returning the 4-bit code.
func (e *AdpcmEncoder) EncodeNibble(channel int, sample int16) uint8 {
	if channel < 0 || channel >= len(e.states) {
		return 0
	}
	st := &e.states[channel]
	step := imaStepTable[clampIndex(st.StepIndex)]

	diff := int32(sample) - st.Predicted
	code := uint8(0)
	if diff < 0 {
		code = 8
		diff = -diff
	}

	d := diff
	mask := uint8(4)
	tempStep := step
	for mask >= 1 {
		if d >= int32(tempStep) {
			code |= mask
			d -= int32(tempStep)
		}
		tempStep >>= 1
		mask >>= 1
	}

	// Reconstruct exactly what the decoder will produce, so encoder and
	// decoder state stay bit-identical.
	recon := e.DecodeLike(channel, code)
	_ = recon
	return code
}

// DecodeLike mirrors DecodeNibble's reconstruction and state advance
// without being a separate AdpcmDecoder, so encode/decode state tracks
// in lockstep from the same table-driven math.
func (e *AdpcmEncoder) DecodeLike(channel int, code uint8) int16 {
	st := &e.states[channel]
	step := imaStepTable[clampIndex(st.StepIndex)]

	diff := step >> 3
	if code&1 != 0 {
		diff += step >> 2
	}
	if code&2 != 0 {
		diff += step >> 1
	}
	if code&4 != 0 {
		diff += step
	}
	if code&8 != 0 {
		diff = -diff
	}

	predicted := st.Predicted + int32(diff)
	if predicted > 32767 {
		predicted = 32767
	} else if predicted < -32768 {
		predicted = -32768
	}
	st.Predicted = predicted
	st.StepIndex = clampIndex(st.StepIndex + int32(imaIndexTable[code&0x0f]))
	return int16(predicted)
}

// EncodeBlock encodes src (PCM for one channel) into packed nibbles,
// returning the number of bytes written.
func (e *AdpcmEncoder) EncodeBlock(channel int, src []int16, dst []byte) int {
	n := 0
	var low uint8
	haveLow := false
	for _, s := range src {
		code := e.EncodeNibble(channel, s)
		if !haveLow {
			low = code
			haveLow = true
			continue
		}
		if n >= len(dst) {
			break
		}
		dst[n] = low | (code << 4)
		n++
		haveLow = false
	}
	if haveLow && n < len(dst) {
		dst[n] = low
		n++
	}
	return n
}

// ValidateExtensibleChunkSize enforces the WAVE_FORMAT_EXTENSIBLE
// restriction: an ADPCM "fmt " chunk carrying an extensible header must
// be exactly 40 bytes; any other size is rejected rather than guessed
// at, matching the source's own hard check.
func ValidateExtensibleChunkSize(chunkSize int) error {
	if chunkSize != 40 {
		return amerr.New(amerr.LoadFailed, "adpcm: unsupported WAVE_FORMAT_EXTENSIBLE fmt chunk size")
	}
	return nil
}
