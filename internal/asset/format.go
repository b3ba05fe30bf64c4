// Package asset implements sound assets, per-playback instances, their
// decoders, and reference-counted sample chunks.
package asset

// SampleType names the decoded sample representation a Decoder produces.
type SampleType int

const (
	SampleF32 SampleType = iota
	SampleI16
)

// Format describes an asset's immutable format facts, read once at load
// time and never mutated afterward.
type Format struct {
	SampleRate  uint32
	Channels    int
	BitsPerSample int
	FrameCount  uint64
	SampleType  SampleType
}
