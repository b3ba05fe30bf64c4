package spatial

import "math"

// Shape is implemented by every spatial variant (Box, Sphere, Capsule,
// Cone). Each exposes containment, distance-to-edge, and closest-point
// queries with variant-matching semantics.
type Shape interface {
	Contains(p Vec3) bool
	ShortestDistanceToEdge(p Vec3) float64
	ClosestPoint(p Vec3) Vec3
}

// SphereShape is a ball centered at Location with radius Radius.
type SphereShape struct {
	Location Vec3
	Radius   float64
}

func (s *SphereShape) Contains(p Vec3) bool {
	return p.Sub(s.Location).Length() <= s.Radius
}

func (s *SphereShape) ShortestDistanceToEdge(p Vec3) float64 {
	return s.Radius - p.Sub(s.Location).Length()
}

func (s *SphereShape) ClosestPoint(p Vec3) Vec3 {
	d := p.Sub(s.Location)
	l := d.Length()
	if l == 0 {
		return s.Location.Add(Vec3{s.Radius, 0, 0})
	}
	return s.Location.Add(d.Scale(s.Radius / l))
}

// BoxShape is an oriented box. Its axis frame is cached and only
// recomputed when extents, location, or orientation change — the
// explicit invariant the source's m_needUpdate flag expressed.
type BoxShape struct {
	Location    Vec3
	Orientation Quat
	HalfExtents Vec3 // half-width along each local axis

	dirty      bool
	axisX      Vec3
	axisY      Vec3
	axisZ      Vec3
}

// NewBoxShape constructs a box with the given center, orientation, and
// half-extents, with its axis frame computed eagerly.
func NewBoxShape(location Vec3, orientation Quat, halfExtents Vec3) *BoxShape {
	b := &BoxShape{Location: location, Orientation: orientation, HalfExtents: halfExtents, dirty: true}
	b.recomputeAxes()
	return b
}

// SetExtents updates the half-extents and marks the axis frame dirty.
func (b *BoxShape) SetExtents(halfExtents Vec3) {
	b.HalfExtents = halfExtents
	b.dirty = true
	b.recomputeAxes()
}

// SetLocation updates the center and marks the axis frame dirty.
func (b *BoxShape) SetLocation(location Vec3) {
	b.Location = location
	b.dirty = true
	b.recomputeAxes()
}

// SetOrientation updates the rotation and marks the axis frame dirty.
func (b *BoxShape) SetOrientation(orientation Quat) {
	b.Orientation = orientation
	b.dirty = true
	b.recomputeAxes()
}

// recomputeAxes rebuilds the cached orthonormal axis frame whenever a
// mutator is called. It is never invoked lazily from Contains: the
// invariant is "recomputed after any mutation," not "recomputed on next
// query."
func (b *BoxShape) recomputeAxes() {
	if !b.dirty {
		return
	}
	b.axisX = b.Orientation.Rotate(Vec3{1, 0, 0})
	b.axisY = b.Orientation.Rotate(Vec3{0, 1, 0})
	b.axisZ = b.Orientation.Rotate(Vec3{0, 0, 1})
	b.dirty = false
}

func (b *BoxShape) projections(p Vec3) (px, py, pz float64) {
	d := p.Sub(b.Location)
	return d.Dot(b.axisX), d.Dot(b.axisY), d.Dot(b.axisZ)
}

func (b *BoxShape) Contains(p Vec3) bool {
	px, py, pz := b.projections(p)
	return math.Abs(px) <= b.HalfExtents.X &&
		math.Abs(py) <= b.HalfExtents.Y &&
		math.Abs(pz) <= b.HalfExtents.Z
}

func (b *BoxShape) ClosestPoint(p Vec3) Vec3 {
	px, py, pz := b.projections(p)
	px = clamp(px, -b.HalfExtents.X, b.HalfExtents.X)
	py = clamp(py, -b.HalfExtents.Y, b.HalfExtents.Y)
	pz = clamp(pz, -b.HalfExtents.Z, b.HalfExtents.Z)
	return b.Location.Add(b.axisX.Scale(px)).Add(b.axisY.Scale(py)).Add(b.axisZ.Scale(pz))
}

func (b *BoxShape) ShortestDistanceToEdge(p Vec3) float64 {
	px, py, pz := b.projections(p)
	dx := b.HalfExtents.X - math.Abs(px)
	dy := b.HalfExtents.Y - math.Abs(py)
	dz := b.HalfExtents.Z - math.Abs(pz)
	if dx < dy && dx < dz {
		return dx
	}
	if dy < dz {
		return dy
	}
	return dz
}

// CapsuleShape is a cylinder with hemispherical caps along the local up
// axis, between two endpoints half HalfHeight apart from Location.
type CapsuleShape struct {
	Location    Vec3
	Orientation Quat
	Radius      float64
	HalfHeight  float64 // half the cylindrical segment length, excluding caps
}

func (c *CapsuleShape) axis() Vec3 { return c.Orientation.Rotate(Vec3{0, 0, 1}) }

func (c *CapsuleShape) segment() (a, b Vec3) {
	up := c.axis()
	return c.Location.Sub(up.Scale(c.HalfHeight)), c.Location.Add(up.Scale(c.HalfHeight))
}

func closestOnSegment(p, a, b Vec3) Vec3 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return a
	}
	t := clamp(p.Sub(a).Dot(ab)/l2, 0, 1)
	return a.Add(ab.Scale(t))
}

func (c *CapsuleShape) Contains(p Vec3) bool {
	a, b := c.segment()
	cp := closestOnSegment(p, a, b)
	return p.Sub(cp).Length() <= c.Radius
}

func (c *CapsuleShape) ClosestPoint(p Vec3) Vec3 {
	a, b := c.segment()
	cp := closestOnSegment(p, a, b)
	d := p.Sub(cp)
	l := d.Length()
	if l == 0 {
		return cp.Add(Vec3{c.Radius, 0, 0})
	}
	return cp.Add(d.Scale(c.Radius / l))
}

func (c *CapsuleShape) ShortestDistanceToEdge(p Vec3) float64 {
	a, b := c.segment()
	cp := closestOnSegment(p, a, b)
	return c.Radius - p.Sub(cp).Length()
}

// ConeShape has its apex at Location, axis along the orientation's
// forward direction, linearly interpolated radius from 0 at the apex to
// Radius at Height.
type ConeShape struct {
	Location    Vec3
	Orientation Quat
	Height      float64
	Radius      float64
}

func (c *ConeShape) axis() Vec3 { return c.Orientation.Rotate(Vec3{0, 1, 0}) }

func (c *ConeShape) Contains(p Vec3) bool {
	d := p.Sub(c.Location)
	axis := c.axis()
	axial := d.Dot(axis)
	if axial < 0 || axial > c.Height {
		return false
	}
	radial := d.Sub(axis.Scale(axial)).Length()
	allowed := c.Radius * (axial / c.Height)
	return radial <= allowed
}

func (c *ConeShape) ClosestPoint(p Vec3) Vec3 {
	d := p.Sub(c.Location)
	axis := c.axis()
	axial := clamp(d.Dot(axis), 0, c.Height)
	allowed := c.Radius * (axial / c.Height)
	radialVec := d.Sub(axis.Scale(d.Dot(axis)))
	rl := radialVec.Length()
	var radial Vec3
	if rl > 0 {
		radial = radialVec.Scale(math.Min(rl, allowed) / rl)
	}
	return c.Location.Add(axis.Scale(axial)).Add(radial)
}

func (c *ConeShape) ShortestDistanceToEdge(p Vec3) float64 {
	d := p.Sub(c.Location)
	axis := c.axis()
	axial := d.Dot(axis)
	radial := d.Sub(axis.Scale(axial)).Length()
	allowed := c.Radius * (axial / c.Height)
	return allowed - radial
}
