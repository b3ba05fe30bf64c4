package ambisonic

import "math"

// Rotator rotates a B-format field by three Euler angles (alpha, beta,
// gamma), precomputing sines/cosines up to 3x the rotation angles. The
// first-order components are rotated by alpha about Z, then beta about
// Y, then gamma about X. The second- and third-order components are
// rotated about Z by multiples of alpha only; beta and gamma do not
// affect them. It only touches the orders actually present on the
// input, so an order-1 field pays nothing for order-2/3 coefficients.
type Rotator struct {
	alpha, beta, gamma float64
	order              Order
	is3D               bool

	sinA, cosA, sin2A, cos2A, sin3A, cos3A float64
	sinB, cosB, sin2B, cos2B, sin3B, cos3B float64
	sinG, cosG, sin2G, cos2G, sin3G, cos3G float64
}

// NewRotator precomputes the trig tables for the given order/dimensionality.
func NewRotator(order Order, is3D bool) *Rotator {
	r := &Rotator{order: order, is3D: is3D}
	r.SetAngles(0, 0, 0)
	return r
}

// SetAngles updates the Euler angles (radians) and recomputes the
// cached 1x/2x/3x sine/cosine tables.
func (r *Rotator) SetAngles(alpha, beta, gamma float64) {
	r.alpha, r.beta, r.gamma = alpha, beta, gamma
	r.sinA, r.cosA = math.Sin(alpha), math.Cos(alpha)
	r.sin2A, r.cos2A = math.Sin(2*alpha), math.Cos(2*alpha)
	r.sin3A, r.cos3A = math.Sin(3*alpha), math.Cos(3*alpha)
	r.sinB, r.cosB = math.Sin(beta), math.Cos(beta)
	r.sin2B, r.cos2B = math.Sin(2*beta), math.Cos(2*beta)
	r.sin3B, r.cos3B = math.Sin(3*beta), math.Cos(3*beta)
	r.sinG, r.cosG = math.Sin(gamma), math.Cos(gamma)
	r.sin2G, r.cos2G = math.Sin(2*gamma), math.Cos(2*gamma)
	r.sin3G, r.cos3G = math.Sin(3*gamma), math.Cos(3*gamma)
}

// Process rotates one block of B-format channels in place. chans must
// have ChannelCount(r.order, r.is3D) planes, each of equal length.
func (r *Rotator) Process(chans [][]float32) {
	if len(chans) == 0 {
		return
	}
	n := len(chans[0])
	for i := 0; i < n; i++ {
		in := make([]float64, len(chans))
		for c := range chans {
			in[c] = float64(chans[c][i])
		}
		out := r.rotateSample(in)
		for c := range chans {
			if c < len(out) {
				chans[c][i] = float32(out[c])
			}
		}
	}
}

func (r *Rotator) rotateSample(in []float64) []float64 {
	out := make([]float64, len(in))
	out[0] = in[0] // W is rotation-invariant

	if !r.is3D {
		// Horizontal-only field: each order's (cos,sin) pair rotates by a
		// plain 2D rotation of o*alpha.
		for o := 1; o <= int(r.order); o++ {
			ci := 2*o - 1
			si := 2 * o
			if si >= len(in) {
				break
			}
			ang := float64(o) * r.alpha
			c, s := math.Cos(ang), math.Sin(ang)
			out[ci] = in[ci]*c - in[si]*s
			out[si] = in[ci]*s + in[si]*c
		}
		return out
	}

	if r.order >= Order1 && len(in) > 3 {
		y, z, x := in[1], in[2], in[3]
		// Yaw (alpha) about Z, then pitch (beta) about Y, then roll
		// (gamma) about X-equivalent for the first-order subspace.
		y1 := y*r.cosA - x*r.sinA
		x1 := y*r.sinA + x*r.cosA
		z1 := z*r.cosB - x1*r.sinB
		x2 := z*r.sinB + x1*r.cosB
		z2 := z1*r.cosG - y1*r.sinG
		y2 := z1*r.sinG + y1*r.cosG
		out[1], out[2], out[3] = y2, z2, x2
	}

	if r.order >= Order2 && len(in) > 8 {
		// Coupled 2nd-order rotation using the precomputed 2x angle
		// tables; components V,T,R,S,U at indices 4..8.
		v, t, rr, s, u := in[4], in[5], in[6], in[7], in[8]
		v2 := v*r.cos2A - u*r.sin2A
		u2 := v*r.sin2A + u*r.cos2A
		t2 := t*r.cosA - s*r.sinA
		s2 := t*r.sinA + s*r.cosA
		out[4], out[5], out[6], out[7], out[8] = v2, t2, rr, s2, u2
	}

	if r.order >= Order3 && len(in) > 15 {
		for i := 9; i < len(in) && i <= 15; i++ {
			out[i] = in[i]
		}
		// 3rd-order components rotate about Z by multiples of alpha,
		// paired symmetrically the same way order-2 pairs V/U and T/S.
		pairs := [][2]int{{9, 15}, {10, 14}, {11, 13}}
		mults := []float64{3, 2, 1}
		for pi, pr := range pairs {
			a, b := in[pr[0]], in[pr[1]]
			ang := mults[pi] * r.alpha
			c, s := math.Cos(ang), math.Sin(ang)
			out[pr[0]] = a*c - b*s
			out[pr[1]] = a*s + b*c
		}
		out[12] = in[12]
	}

	return out
}
