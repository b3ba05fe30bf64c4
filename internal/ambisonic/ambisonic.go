// Package ambisonic implements B-format encoding, listener-space
// rotation, and decoding to speaker layouts and virtual arrays.
package ambisonic

import (
	"math"

	"amplitude/internal/spatial"
)

// Order is the Ambisonic order, 1 through 3.
type Order int

const (
	Order1 Order = 1
	Order2 Order = 2
	Order3 Order = 3
)

// ChannelCount returns (order+1)^2 for a full 3D field, or 2*order+1 for
// a horizontal-only (is3D=false) field.
func ChannelCount(order Order, is3D bool) int {
	if is3D {
		return (int(order) + 1) * (int(order) + 1)
	}
	return 2*int(order) + 1
}

// Encode projects a mono signal arriving from direction dir (in
// listener space) onto the real spherical-harmonic basis up to order,
// writing one plane of output per B-format channel. dst must already be
// sized ChannelCount(order, is3D) x len(mono).
func Encode(mono []float32, dir spatial.Vec3, order Order, is3D bool, dst [][]float32) {
	sp := spatial.FromWorldSpace(dir)
	weights := basisWeights(sp.Azimuth, sp.Elevation, order, is3D)
	for ch, w := range weights {
		if ch >= len(dst) {
			break
		}
		out := dst[ch]
		wf := float32(w)
		for i, s := range mono {
			if i >= len(out) {
				break
			}
			out[i] = s * wf
		}
	}
}

// basisWeights evaluates the real spherical harmonics (ACN-ordered) at
// (azimuth, elevation) up to order, returning one weight per channel.
func basisWeights(azimuth, elevation float64, order Order, is3D bool) []float64 {
	cosE := math.Cos(elevation)
	sinE := math.Sin(elevation)
	cosA := math.Cos(azimuth)
	sinA := math.Sin(azimuth)

	if !is3D {
		n := 2*int(order) + 1
		out := make([]float64, n)
		out[0] = 1 // W
		for o := 1; o <= int(order); o++ {
			out[2*o-1] = math.Cos(float64(o) * azimuth)
			out[2*o] = math.Sin(float64(o) * azimuth)
		}
		return out
	}

	out := make([]float64, 0, ChannelCount(order, true))
	// Order 0: W
	out = append(out, 1)
	if order >= Order1 {
		// Order 1 (ACN 1,2,3): Y, Z, X
		out = append(out, cosE*sinA, sinE, cosE*cosA)
	}
	if order >= Order2 {
		const sqrt3 = 1.7320508075688772
		out = append(out,
			sqrt3*cosE*cosE*sinA*cosA,       // V
			sqrt3*sinE*cosE*sinA,            // T
			(3*sinE*sinE-1)/2,               // R
			sqrt3*sinE*cosE*cosA,            // S
			sqrt3/2*cosE*cosE*(cosA*cosA-sinA*sinA), // U
		)
	}
	if order >= Order3 {
		const sqrt3_2 = 1.224744871391589
		const sqrt5_2 = 1.5811388300841898
		const sqrt15 = 3.872983346207417
		s3a, c3a := math.Sin(3*azimuth), math.Cos(3*azimuth)
		s2a, c2a := math.Sin(2*azimuth), math.Cos(2*azimuth)
		ce2, ce3 := cosE*cosE, cosE*cosE*cosE
		se := sinE
		out = append(out,
			sqrt5_2/2*ce3*s3a,
			sqrt15*se*ce2*s2a,
			sqrt3_2*cosE*(5*se*se-1)*sinA,
			se*(5*se*se-3)/2,
			sqrt3_2*cosE*(5*se*se-1)*cosA,
			sqrt15/2*se*ce2*c2a,
			sqrt5_2/2*ce3*c3a,
		)
	}
	return out
}
