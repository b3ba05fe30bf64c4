package ambisonic

import (
	"math"

	"amplitude/internal/spatial"
)

// Speaker is one output of a decoder: a spherical position plus the
// per-component decode weights computed for it.
type Speaker struct {
	Position spatial.SphericalPosition
	Weights  []float64
}

// Layout names a speaker array: either one of the preset arrangements,
// or Custom for an arbitrary arrangement. Both kinds are decoded by
// on-demand spherical-harmonic sampling.
type Layout int

const (
	Custom Layout = iota
	Mono
	Stereo
	Surround51
	Surround71
	Cube
	Dodecahedron
	Lebedev26
)

// Array is a speaker array bound to an Ambisonic order/dimensionality.
type Array struct {
	Layout   Layout
	Order    Order
	Is3D     bool
	Speakers []Speaker
}

// NewPresetArray builds one of the named preset layouts at the given
// order. Every preset, Stereo/5.1/7.1 included, is evaluated on demand
// from its speaker positions the same way a Custom layout would be; no
// analytic decoder tables are used.
func NewPresetArray(layout Layout, order Order) *Array {
	positions := presetPositions(layout)
	is3D := layout != Stereo && layout != Mono && layout != Surround51 && layout != Surround71
	a := &Array{Layout: layout, Order: order, Is3D: is3D}
	a.Speakers = make([]Speaker, len(positions))
	for i, p := range positions {
		a.Speakers[i] = Speaker{Position: p, Weights: decodeWeights(p, order, is3D, len(positions))}
	}
	return a
}

// NewCustomArray builds a decoder for an arbitrary set of speaker
// positions by sampling real spherical harmonics up to order, per
// speaker, and assigning per-speaker gain 1/N summed into the output.
func NewCustomArray(positions []spatial.SphericalPosition, order Order, is3D bool) *Array {
	a := &Array{Layout: Custom, Order: order, Is3D: is3D}
	a.Speakers = make([]Speaker, len(positions))
	for i, p := range positions {
		a.Speakers[i] = Speaker{Position: p, Weights: decodeWeights(p, order, is3D, len(positions))}
	}
	return a
}

func decodeWeights(p spatial.SphericalPosition, order Order, is3D bool, count int) []float64 {
	w := basisWeights(p.Azimuth, p.Elevation, order, is3D)
	n := float64(count)
	for i := range w {
		w[i] /= n
	}
	return w
}

// Decode reads B-format planes bformat and mixes them into one output
// plane per speaker in dst, via the array's decode weights.
func (a *Array) Decode(bformat [][]float32, dst [][]float32) {
	for si, sp := range a.Speakers {
		if si >= len(dst) {
			break
		}
		out := dst[si]
		for i := range out {
			var acc float64
			for ch, w := range sp.Weights {
				if ch >= len(bformat) || i >= len(bformat[ch]) {
					continue
				}
				acc += float64(bformat[ch][i]) * w
			}
			out[i] = float32(acc)
		}
	}
}

func presetPositions(layout Layout) []spatial.SphericalPosition {
	deg := func(d float64) float64 { return d * math.Pi / 180 }
	switch layout {
	case Mono:
		return []spatial.SphericalPosition{{Azimuth: 0, Elevation: 0, Radius: 1}}
	case Stereo:
		return []spatial.SphericalPosition{
			{Azimuth: deg(-30), Elevation: 0, Radius: 1},
			{Azimuth: deg(30), Elevation: 0, Radius: 1},
		}
	case Surround51:
		return []spatial.SphericalPosition{
			{Azimuth: deg(-30), Elevation: 0, Radius: 1},
			{Azimuth: deg(30), Elevation: 0, Radius: 1},
			{Azimuth: 0, Elevation: 0, Radius: 1},
			{Azimuth: 0, Elevation: 0, Radius: 0}, // LFE, carries no directional weight
			{Azimuth: deg(-110), Elevation: 0, Radius: 1},
			{Azimuth: deg(110), Elevation: 0, Radius: 1},
		}
	case Surround71:
		return []spatial.SphericalPosition{
			{Azimuth: deg(-30), Elevation: 0, Radius: 1},
			{Azimuth: deg(30), Elevation: 0, Radius: 1},
			{Azimuth: 0, Elevation: 0, Radius: 1},
			{Azimuth: 0, Elevation: 0, Radius: 0},
			{Azimuth: deg(-110), Elevation: 0, Radius: 1},
			{Azimuth: deg(110), Elevation: 0, Radius: 1},
			{Azimuth: deg(-150), Elevation: 0, Radius: 1},
			{Azimuth: deg(150), Elevation: 0, Radius: 1},
		}
	case Cube:
		out := make([]spatial.SphericalPosition, 0, 8)
		for _, el := range []float64{35.2, -35.2} {
			for a := 0; a < 4; a++ {
				out = append(out, spatial.SphericalPosition{
					Azimuth:   deg(45 + float64(a)*90),
					Elevation: deg(el),
					Radius:    1,
				})
			}
		}
		return out
	case Dodecahedron:
		out := make([]spatial.SphericalPosition, 0, 12)
		for a := 0; a < 12; a++ {
			out = append(out, spatial.SphericalPosition{Azimuth: deg(float64(a) * 30), Elevation: 0, Radius: 1})
		}
		return out
	case Lebedev26:
		return lebedev26()
	}
	return nil
}

// lebedev26 returns a fixed 26-point spherical quadrature: face centers,
// edge midpoints, and vertices of a cube inscribed in the unit sphere.
func lebedev26() []spatial.SphericalPosition {
	pts := []spatial.Vec3{}
	// 6 face centers (+-1,0,0) etc.
	for _, axis := range []spatial.Vec3{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1}} {
		pts = append(pts, axis)
	}
	// 12 edge midpoints (+-1,+-1,0) normalized, and permutations.
	s := 1 / math.Sqrt2
	for _, sx := range []float64{1, -1} {
		for _, sy := range []float64{1, -1} {
			pts = append(pts, spatial.Vec3{X: sx * s, Y: sy * s, Z: 0})
			pts = append(pts, spatial.Vec3{X: sx * s, Y: 0, Z: sy * s})
			pts = append(pts, spatial.Vec3{X: 0, Y: sx * s, Z: sy * s})
		}
	}
	// 8 cube vertices (+-1,+-1,+-1) normalized.
	c := 1 / math.Sqrt(3)
	for _, sx := range []float64{1, -1} {
		for _, sy := range []float64{1, -1} {
			for _, sz := range []float64{1, -1} {
				pts = append(pts, spatial.Vec3{X: sx * c, Y: sy * c, Z: sz * c})
			}
		}
	}
	out := make([]spatial.SphericalPosition, len(pts))
	for i, p := range pts {
		out[i] = spatial.FromWorldSpace(p)
		out[i].Radius = 1
	}
	return out
}
