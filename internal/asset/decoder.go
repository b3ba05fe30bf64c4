package asset

// Origin matches the io.Seeker Whence constants, kept local so callers
// of Decoder don't need to import io just to seek.
type Origin int

const (
	SeekStart Origin = iota
	SeekCurrent
	SeekEnd
)

// Decoder is the consumed interface every asset decode path implements:
// raw PCM, IMA ADPCM, and the supplemental Opus decoder. It is kept
// small and interface-wrapped the same way the teacher wraps its
// platform audio stream and codec objects, purely so tests can fake it.
type Decoder interface {
	// ReadFrames decodes up to len(dst[c]) frames into each channel plane
	// of dst, returning frames actually produced. Returns fewer frames
	// than requested at end of stream; never errors mid-stream except for
	// unrecoverable decode failures.
	ReadFrames(dst [][]float32) (int, error)
	Seek(frame int64, origin Origin) (int64, error)
	Close() error
	Format() Format
}
