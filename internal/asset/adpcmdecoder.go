package asset

import (
	"encoding/binary"
	"io"

	"amplitude/internal/amerr"
	"amplitude/internal/dspprim"
)

const (
	waveFormatIMAADPCM      = 0x11
	waveFormatExtensible    = 0xFFFE
)

// AMSHeader is the parsed subset of a RIFF WAVE/IMA-ADPCM header needed
// to construct an AdpcmFileDecoder.
type AMSHeader struct {
	SampleRate      uint32
	Channels        int
	BlockAlign      int
	SamplesPerBlock int
	DataOffset      int64
	DataSize        int64
}

// ParseAMSHeader reads the RIFF/fmt /fact/data chunk sequence described
// in the file-format notes: chunkSize 16 or 40 (extensible, restricted
// to exactly 40 bytes per the source's own check).
func ParseAMSHeader(r io.ReadSeeker) (*AMSHeader, error) {
	var riffID [4]byte
	if _, err := io.ReadFull(r, riffID[:]); err != nil || string(riffID[:]) != "RIFF" {
		return nil, amerr.New(amerr.LoadFailed, "ams: missing RIFF header")
	}
	var riffSize uint32
	binary.Read(r, binary.LittleEndian, &riffSize)
	var waveID [4]byte
	if _, err := io.ReadFull(r, waveID[:]); err != nil || string(waveID[:]) != "WAVE" {
		return nil, amerr.New(amerr.LoadFailed, "ams: missing WAVE tag")
	}

	hdr := &AMSHeader{}
	for {
		var chunkID [4]byte
		if _, err := io.ReadFull(r, chunkID[:]); err != nil {
			return nil, amerr.New(amerr.LoadFailed, "ams: missing data chunk")
		}
		var chunkSize uint32
		if err := binary.Read(r, binary.LittleEndian, &chunkSize); err != nil {
			return nil, amerr.Wrap(amerr.LoadFailed, "ams: read chunk size", err)
		}

		switch string(chunkID[:]) {
		case "fmt ":
			if chunkSize != 16 && chunkSize != 40 {
				return nil, amerr.New(amerr.LoadFailed, "ams: unsupported fmt chunk size")
			}
			if chunkSize == 40 {
				if err := dspprim.ValidateExtensibleChunkSize(int(chunkSize)); err != nil {
					return nil, err
				}
			}
			var formatTag uint16
			binary.Read(r, binary.LittleEndian, &formatTag)
			var channels uint16
			binary.Read(r, binary.LittleEndian, &channels)
			var sampleRate uint32
			binary.Read(r, binary.LittleEndian, &sampleRate)
			var byteRate uint32
			binary.Read(r, binary.LittleEndian, &byteRate)
			var blockAlign uint16
			binary.Read(r, binary.LittleEndian, &blockAlign)
			var bitsPerSample uint16
			binary.Read(r, binary.LittleEndian, &bitsPerSample)

			if formatTag != waveFormatIMAADPCM && formatTag != waveFormatExtensible {
				return nil, amerr.New(amerr.LoadFailed, "ams: unsupported format tag")
			}
			if formatTag == waveFormatExtensible {
				if err := dspprim.ValidateExtensibleChunkSize(int(chunkSize)); err != nil {
					return nil, err
				}
			}
			remaining := int64(chunkSize) - 16
			var samplesPerBlock uint16
			if remaining >= 2 {
				var extraSize uint16
				binary.Read(r, binary.LittleEndian, &extraSize)
				remaining -= 2
				if remaining >= 2 {
					binary.Read(r, binary.LittleEndian, &samplesPerBlock)
					remaining -= 2
				}
			}
			if remaining > 0 {
				io.CopyN(io.Discard, r, remaining)
			}
			hdr.SampleRate = sampleRate
			hdr.Channels = int(channels)
			hdr.BlockAlign = int(blockAlign)
			hdr.SamplesPerBlock = int(samplesPerBlock)
		case "fact":
			io.CopyN(io.Discard, r, int64(chunkSize))
		case "data":
			pos, _ := r.Seek(0, io.SeekCurrent)
			hdr.DataOffset = pos
			hdr.DataSize = int64(chunkSize)
			return hdr, nil
		default:
			skip := int64(chunkSize)
			if skip%2 == 1 {
				skip++ // RIFF chunks are word-aligned
			}
			io.CopyN(io.Discard, r, skip)
		}
	}
}

// AdpcmFileDecoder decodes an AMS (RIFF/IMA-ADPCM) file block by block,
// reading each channel's 4-byte header then its packed nibble stream
// per the format's fixed block layout.
type AdpcmFileDecoder struct {
	r      io.ReadSeeker
	hdr    *AMSHeader
	dec    *dspprim.AdpcmDecoder
	format Format

	blockBuf  []byte
	blockPos  int64 // frame index at start of current block's data region
	curBlock  int64
}

// NewAdpcmFileDecoder constructs a decoder positioned at the start of
// the data chunk described by hdr.
func NewAdpcmFileDecoder(r io.ReadSeeker, hdr *AMSHeader) (*AdpcmFileDecoder, error) {
	if _, err := r.Seek(hdr.DataOffset, io.SeekStart); err != nil {
		return nil, amerr.Wrap(amerr.LoadFailed, "adpcm: seek to data", err)
	}
	return &AdpcmFileDecoder{
		r:   r,
		hdr: hdr,
		dec: dspprim.NewAdpcmDecoder(hdr.Channels),
		format: Format{
			SampleRate:    hdr.SampleRate,
			Channels:      hdr.Channels,
			BitsPerSample: 16,
			FrameCount:    uint64(hdr.DataSize / int64(hdr.BlockAlign) * int64(hdr.SamplesPerBlock)),
			SampleType:    SampleI16,
		},
		blockBuf: make([]byte, hdr.BlockAlign),
	}, nil
}

func (d *AdpcmFileDecoder) Format() Format { return d.format }

func (d *AdpcmFileDecoder) readBlock() (int, error) {
	n, err := io.ReadFull(d.r, d.blockBuf)
	if err == io.EOF {
		return 0, nil
	}
	if err != nil && err != io.ErrUnexpectedEOF {
		return 0, amerr.Wrap(amerr.LoadFailed, "adpcm: read block", err)
	}
	if n < 4*d.hdr.Channels {
		return 0, nil
	}
	for c := 0; c < d.hdr.Channels; c++ {
		off := c * 4
		sample := int16(binary.LittleEndian.Uint16(d.blockBuf[off : off+2]))
		stepIndex := int8(d.blockBuf[off+2])
		d.dec.Reset(c, sample, stepIndex)
	}
	d.curBlock++
	return n, nil
}

// ReadFrames decodes whole blocks, writing each channel's PCM into its
// own plane of dst; a partial trailing block zero-fills the remainder per the
// engine's audio-thread recovery rule.
func (d *AdpcmFileDecoder) ReadFrames(dst [][]float32) (int, error) {
	if len(dst) != d.hdr.Channels {
		return 0, amerr.New(amerr.InvalidParameter, "adpcm: dst channel count mismatch")
	}
	want := len(dst[0])
	written := 0
	for written < want {
		n, err := d.readBlock()
		if err != nil {
			return written, err
		}
		if n == 0 {
			break
		}
		packedPerChannel := (d.hdr.BlockAlign/d.hdr.Channels - 4)
		pcm := make([]int16, d.hdr.SamplesPerBlock-1)
		for c := 0; c < d.hdr.Channels; c++ {
			start := 4*d.hdr.Channels + c*packedPerChannel
			end := start + packedPerChannel
			if end > len(d.blockBuf) {
				end = len(d.blockBuf)
			}
			decoded := d.dec.DecodeBlock(c, d.blockBuf[start:end], pcm)
			// First sample of each block is the header seed itself.
			if written < want {
				dst[c][written] = float32(int16(binary.LittleEndian.Uint16(d.blockBuf[c*4:c*4+2]))) / 32768
			}
			for i := 0; i < decoded && written+1+i < want; i++ {
				dst[c][written+1+i] = float32(pcm[i]) / 32768
			}
		}
		written += d.hdr.SamplesPerBlock
	}
	if written > want {
		written = want
	}
	for c := range dst {
		for i := written; i < want; i++ {
			dst[c][i] = 0
		}
	}
	return written, nil
}

func (d *AdpcmFileDecoder) Seek(frame int64, origin Origin) (int64, error) {
	var target int64
	switch origin {
	case SeekStart:
		target = frame
	case SeekCurrent:
		target = d.curBlock*int64(d.hdr.SamplesPerBlock) + frame
	case SeekEnd:
		target = int64(d.format.FrameCount) + frame
	}
	block := target / int64(d.hdr.SamplesPerBlock)
	if _, err := d.r.Seek(d.hdr.DataOffset+block*int64(d.hdr.BlockAlign), io.SeekStart); err != nil {
		return 0, amerr.Wrap(amerr.InvalidParameter, "adpcm: seek", err)
	}
	d.curBlock = block
	return block * int64(d.hdr.SamplesPerBlock), nil
}

func (d *AdpcmFileDecoder) Close() error {
	if c, ok := d.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
