package asset

import (
	"amplitude/internal/amerr"

	opus "gopkg.in/hraban/opus.v2"
)

// OpusPacketSource supplies the next encoded Opus packet for a stream,
// or nil at end of stream. Assets built from a container format (Ogg,
// a custom framed blob) implement this to drive OpusDecoder without
// OpusDecoder needing to know the container.
type OpusPacketSource interface {
	NextPacket() ([]byte, error)
}

// OpusDecoder is the supplemental decoder for pre-compressed
// streaming voice-over/ambient assets, wrapping gopkg.in/hraban/opus.v2
// the same way the teacher's client/audio.go wraps its own Opus
// encoder/decoder pair behind a small interface for testability.
type OpusDecoder struct {
	dec      *opus.Decoder
	src      OpusPacketSource
	format   Format
	frameLen int // PCM samples per channel decoded per packet
	scratch  []float32
}

// NewOpusDecoder constructs a decoder for a mono or stereo Opus stream
// read from src, decoding frameLen samples per channel per packet.
func NewOpusDecoder(src OpusPacketSource, sampleRate, channels, frameLen int) (*OpusDecoder, error) {
	dec, err := opus.NewDecoder(sampleRate, channels)
	if err != nil {
		return nil, amerr.Wrap(amerr.LoadFailed, "opusdecoder: create decoder", err)
	}
	return &OpusDecoder{
		dec: dec,
		src: src,
		format: Format{
			SampleRate: uint32(sampleRate),
			Channels:   channels,
			SampleType: SampleF32,
		},
		frameLen: frameLen,
		scratch:  make([]float32, frameLen*channels),
	}, nil
}

func (d *OpusDecoder) Format() Format { return d.format }

func (d *OpusDecoder) ReadFrames(dst [][]float32) (int, error) {
	if len(dst) != d.format.Channels {
		return 0, amerr.New(amerr.InvalidParameter, "opusdecoder: dst channel count mismatch")
	}
	want := len(dst[0])
	written := 0
	for written < want {
		packet, err := d.src.NextPacket()
		if err != nil {
			return written, amerr.Wrap(amerr.LoadFailed, "opusdecoder: read packet", err)
		}
		if packet == nil {
			break
		}
		n, err := d.dec.DecodeFloat32(packet, d.scratch)
		if err != nil {
			return written, amerr.Wrap(amerr.LoadFailed, "opusdecoder: decode", err)
		}
		for i := 0; i < n && written < want; i++ {
			for c := 0; c < d.format.Channels; c++ {
				dst[c][written] = d.scratch[i*d.format.Channels+c]
			}
			written++
		}
	}
	return written, nil
}

// Seek is not supported on a streamed Opus source; packet-level seek
// would require a container index the decoder does not own.
func (d *OpusDecoder) Seek(frame int64, origin Origin) (int64, error) {
	return 0, amerr.New(amerr.NotImplemented, "opusdecoder: seek unsupported on streamed source")
}

func (d *OpusDecoder) Close() error { return nil }
