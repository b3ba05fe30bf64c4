package spatial

// Triangle is three world-space vertices; the HRIR sphere mesh and its
// face BSP both sample through it.
type Triangle struct {
	A, B, C Vec3
}

// Barycentric is a weight triple (u,v,w) such that P = u*A + v*B + w*C
// and u+v+w == 1.
type Barycentric struct {
	U, V, W float64
}

// IsValid reports whether all three weights lie in [0,1], i.e. P is
// inside the triangle (including its boundary).
func (b Barycentric) IsValid() bool {
	return b.U >= 0 && b.U <= 1 && b.V >= 0 && b.V <= 1 && b.W >= 0 && b.W <= 1
}

// ComputeBarycentric solves for the barycentric coordinates of p with
// respect to tri, assuming p lies in tri's plane (callers project or
// intersect first).
func ComputeBarycentric(p Vec3, tri Triangle) Barycentric {
	v0 := tri.B.Sub(tri.A)
	v1 := tri.C.Sub(tri.A)
	v2 := p.Sub(tri.A)

	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)

	denom := d00*d11 - d01*d01
	if denom == 0 {
		return Barycentric{}
	}
	v := (d11*d20 - d01*d21) / denom
	w := (d00*d21 - d01*d20) / denom
	u := 1 - v - w
	return Barycentric{U: u, V: v, W: w}
}

// RayTriangleIntersect intersects a ray (origin, direction) with tri and
// returns the barycentric coordinates at the hit point. ok is false if
// the ray is parallel to the triangle's plane or the intersection lies
// behind the origin.
func RayTriangleIntersect(origin, direction Vec3, tri Triangle) (bary Barycentric, ok bool) {
	const epsilon = 1e-9
	edge1 := tri.B.Sub(tri.A)
	edge2 := tri.C.Sub(tri.A)
	h := direction.Cross(edge2)
	a := edge1.Dot(h)
	if a > -epsilon && a < epsilon {
		return Barycentric{}, false
	}
	f := 1 / a
	s := origin.Sub(tri.A)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return Barycentric{}, false
	}
	q := s.Cross(edge1)
	v := f * direction.Dot(q)
	if v < 0 || u+v > 1 {
		return Barycentric{}, false
	}
	t := f * edge2.Dot(q)
	if t < 0 {
		return Barycentric{}, false
	}
	return Barycentric{U: 1 - u - v, V: u, W: v}, true
}
