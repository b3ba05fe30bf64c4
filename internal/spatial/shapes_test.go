package spatial

import "testing"

func TestSphereShapeContains(t *testing.T) {
	s := &SphereShape{Location: Vec3{}, Radius: 2}
	if !s.Contains(Vec3{X: 1}) {
		t.Fatalf("expected point within radius to be contained")
	}
	if s.Contains(Vec3{X: 3}) {
		t.Fatalf("expected point beyond radius to not be contained")
	}
}

func TestSphereShapeClosestPoint(t *testing.T) {
	s := &SphereShape{Location: Vec3{}, Radius: 2}
	cp := s.ClosestPoint(Vec3{X: 10})
	if !approxEqual(cp.X, 2, 1e-9) || cp.Y != 0 || cp.Z != 0 {
		t.Fatalf("ClosestPoint = %v, want (2,0,0)", cp)
	}
}

func TestBoxShapeContainsAxisAligned(t *testing.T) {
	b := NewBoxShape(Vec3{}, IdentityQuat(), Vec3{X: 1, Y: 1, Z: 1})
	if !b.Contains(Vec3{X: 0.5, Y: 0.5, Z: 0.5}) {
		t.Fatalf("expected point inside box to be contained")
	}
	if b.Contains(Vec3{X: 2}) {
		t.Fatalf("expected point outside box to not be contained")
	}
}

func TestBoxShapeRecomputesAxesOnMutators(t *testing.T) {
	b := NewBoxShape(Vec3{}, IdentityQuat(), Vec3{X: 1, Y: 1, Z: 1})
	// Rotate 90deg about Z so local +X maps to world +Y.
	quarter := 0.70710678
	b.SetOrientation(Quat{Z: quarter, W: quarter})
	b.SetExtents(Vec3{X: 2, Y: 1, Z: 1})
	if !b.Contains(Vec3{Y: 1.5}) {
		t.Fatalf("expected rotated box's extended local-X axis (now world Y) to contain a point 1.5 units along Y")
	}
	b.SetLocation(Vec3{X: 10})
	if b.Contains(Vec3{Y: 1.5}) {
		t.Fatalf("expected box moved far away to no longer contain the same world point")
	}
}

func TestCapsuleShapeContains(t *testing.T) {
	c := &CapsuleShape{Location: Vec3{}, Orientation: IdentityQuat(), Radius: 1, HalfHeight: 2}
	if !c.Contains(Vec3{Z: 3}) {
		t.Fatalf("expected point within the cylindrical segment (with caps) to be contained")
	}
	if c.Contains(Vec3{Z: 10}) {
		t.Fatalf("expected far point to not be contained")
	}
}

func TestConeShapeContains(t *testing.T) {
	c := &ConeShape{Location: Vec3{}, Orientation: IdentityQuat(), Height: 10, Radius: 2}
	if !c.Contains(Vec3{Y: 5}) {
		t.Fatalf("expected point on the cone's axis within height to be contained")
	}
	if c.Contains(Vec3{Y: 1, X: 5}) {
		t.Fatalf("expected point far outside the cone's radius to not be contained")
	}
	if c.Contains(Vec3{Y: -1}) {
		t.Fatalf("expected point behind the apex to not be contained")
	}
}
