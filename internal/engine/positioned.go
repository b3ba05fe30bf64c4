package engine

import "amplitude/internal/spatial"

// Positioned is the state shared by Listener and Entity: a caller-
// supplied id, position, orientation (forward+up), and a velocity
// derived from successive position updates over dt.
type Positioned struct {
	UserID      uint64
	Position    spatial.Vec3
	Forward     spatial.Vec3
	Up          spatial.Vec3
	velocity    spatial.Vec3
	hasPrevious bool
	previous    spatial.Vec3
}

// NewPositioned constructs a Positioned at the origin with the default
// right-handed Z-up forward/up basis.
func NewPositioned(userID uint64) Positioned {
	return Positioned{UserID: userID, Forward: spatial.Vec3{Y: 1}, Up: spatial.Vec3{Z: 1}}
}

// Update sets a new position and orientation, deriving velocity from the
// displacement over dt seconds.
func (p *Positioned) Update(position, forward, up spatial.Vec3, dt float64) {
	if p.hasPrevious && dt > 0 {
		p.velocity = position.Sub(p.previous).Scale(1 / dt)
	}
	p.previous = position
	p.hasPrevious = true
	p.Position = position
	p.Forward = forward
	p.Up = up
}

// Velocity returns the most recently derived velocity.
func (p *Positioned) Velocity() spatial.Vec3 { return p.velocity }

// Listener is a Positioned that channels render relative to.
type Listener struct {
	Positioned
}

// Entity is a Positioned that channels can be bound to as their sound
// source location.
type Entity struct {
	Positioned
}

// WallMaterial carries the nine absorption coefficients (one per
// third-octave band, matching the source's fixed 9-band material
// model) for one face of a Room's box shape.
type WallMaterial struct {
	Absorption [9]float32
}

// Room owns a box shape, six wall materials, a cutoff frequency for its
// reflection filter, and a reflections-gain scalar.
type Room struct {
	Shape           *spatial.BoxShape
	Walls           [6]WallMaterial // -X,+X,-Y,+Y,-Z,+Z
	CutoffFrequency float32
	ReflectionsGain float32
}
