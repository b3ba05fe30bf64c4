package spatial

import "testing"

func TestComputeBarycentricRecoversVertices(t *testing.T) {
	tri := Triangle{A: Vec3{X: 0}, B: Vec3{X: 1}, C: Vec3{Y: 1}}
	cases := []struct {
		p    Vec3
		want Barycentric
	}{
		{tri.A, Barycentric{U: 1}},
		{tri.B, Barycentric{V: 1}},
		{tri.C, Barycentric{W: 1}},
	}
	for _, c := range cases {
		got := ComputeBarycentric(c.p, tri)
		if !approxEqual(got.U, c.want.U, 1e-9) || !approxEqual(got.V, c.want.V, 1e-9) || !approxEqual(got.W, c.want.W, 1e-9) {
			t.Errorf("ComputeBarycentric(%v) = %v, want %v", c.p, got, c.want)
		}
	}
}

func TestComputeBarycentricDegenerateTriangle(t *testing.T) {
	tri := Triangle{A: Vec3{}, B: Vec3{}, C: Vec3{}}
	got := ComputeBarycentric(Vec3{X: 1}, tri)
	if got != (Barycentric{}) {
		t.Fatalf("degenerate triangle should yield zero barycentric, got %v", got)
	}
}

func TestBarycentricIsValid(t *testing.T) {
	if !(Barycentric{U: 0.2, V: 0.3, W: 0.5}).IsValid() {
		t.Fatalf("expected in-range weights to be valid")
	}
	if (Barycentric{U: -0.1, V: 0.5, W: 0.6}).IsValid() {
		t.Fatalf("expected a negative weight to be invalid")
	}
}

func TestRayTriangleIntersectHitsCenter(t *testing.T) {
	tri := Triangle{A: Vec3{X: -1, Z: 1}, B: Vec3{X: 1, Z: 1}, C: Vec3{Y: 1, Z: 1}}
	bary, ok := RayTriangleIntersect(Vec3{}, Vec3{Z: 1}, tri)
	if !ok {
		t.Fatalf("expected ray straight through the triangle's plane to hit")
	}
	if !bary.IsValid() {
		t.Fatalf("expected a valid barycentric result, got %v", bary)
	}
}

func TestRayTriangleIntersectMissesParallelRay(t *testing.T) {
	tri := Triangle{A: Vec3{X: -1, Z: 1}, B: Vec3{X: 1, Z: 1}, C: Vec3{Y: 1, Z: 1}}
	_, ok := RayTriangleIntersect(Vec3{}, Vec3{X: 1}, tri)
	if ok {
		t.Fatalf("expected a ray parallel to the triangle's plane to miss")
	}
}

func TestRayTriangleIntersectMissesBehindOrigin(t *testing.T) {
	tri := Triangle{A: Vec3{X: -1, Z: 1}, B: Vec3{X: 1, Z: 1}, C: Vec3{Y: 1, Z: 1}}
	_, ok := RayTriangleIntersect(Vec3{}, Vec3{Z: -1}, tri)
	if ok {
		t.Fatalf("expected intersection behind the ray origin to be rejected")
	}
}
