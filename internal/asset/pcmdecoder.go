package asset

import (
	"encoding/binary"
	"io"
	"math"

	"amplitude/internal/amerr"
)

// PCMDecoder decodes raw interleaved f32 or i16 PCM from a seekable
// reader, deinterleaving into the caller's planar destination.
type PCMDecoder struct {
	r      io.ReadSeeker
	format Format
	frame  int64 // current read position, in frames
}

// NewPCMDecoder wraps r, which must already be positioned at the start
// of the PCM data, as a Decoder for the given format.
func NewPCMDecoder(r io.ReadSeeker, format Format) *PCMDecoder {
	return &PCMDecoder{r: r, format: format}
}

func (d *PCMDecoder) Format() Format { return d.format }

func (d *PCMDecoder) ReadFrames(dst [][]float32) (int, error) {
	if len(dst) == 0 || len(dst) != d.format.Channels {
		return 0, amerr.New(amerr.InvalidParameter, "pcmdecoder: dst channel count mismatch")
	}
	want := len(dst[0])
	bytesPerSample := 4
	if d.format.SampleType == SampleI16 {
		bytesPerSample = 2
	}
	buf := make([]byte, want*d.format.Channels*bytesPerSample)
	n, err := io.ReadFull(d.r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return 0, amerr.Wrap(amerr.LoadFailed, "pcmdecoder: read", err)
	}
	framesRead := n / (d.format.Channels * bytesPerSample)

	for i := 0; i < framesRead; i++ {
		for c := 0; c < d.format.Channels; c++ {
			off := (i*d.format.Channels + c) * bytesPerSample
			var v float32
			if d.format.SampleType == SampleI16 {
				s := int16(binary.LittleEndian.Uint16(buf[off : off+2]))
				v = float32(s) / 32768
			} else {
				bits := binary.LittleEndian.Uint32(buf[off : off+4])
				v = math.Float32frombits(bits)
			}
			dst[c][i] = v
		}
	}
	d.frame += int64(framesRead)
	return framesRead, nil
}

func (d *PCMDecoder) Seek(frame int64, origin Origin) (int64, error) {
	bytesPerFrame := int64(d.format.Channels * 4)
	if d.format.SampleType == SampleI16 {
		bytesPerFrame = int64(d.format.Channels * 2)
	}
	var whence int
	switch origin {
	case SeekStart:
		whence = io.SeekStart
	case SeekCurrent:
		whence = io.SeekCurrent
	case SeekEnd:
		whence = io.SeekEnd
	}
	pos, err := d.r.Seek(frame*bytesPerFrame, whence)
	if err != nil {
		return 0, amerr.Wrap(amerr.InvalidParameter, "pcmdecoder: seek", err)
	}
	d.frame = pos / bytesPerFrame
	return d.frame, nil
}

func (d *PCMDecoder) Close() error {
	if c, ok := d.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
