package spatial

import "testing"

func octahedronMesh() ([]Vec3, []Face) {
	vertices := []Vec3{
		{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1},
	}
	faces := []Face{
		{I0: 0, I1: 2, I2: 4}, {I0: 2, I1: 1, I2: 4}, {I0: 1, I1: 3, I2: 4}, {I0: 3, I1: 0, I2: 4},
		{I0: 2, I1: 0, I2: 5}, {I0: 1, I1: 2, I2: 5}, {I0: 3, I1: 1, I2: 5}, {I0: 0, I1: 3, I2: 5},
	}
	return vertices, faces
}

func TestFaceBSPQueryFindsContainingFace(t *testing.T) {
	vertices, faces := octahedronMesh()
	tree := BuildFaceBSP(vertices, faces)

	for i, want := range faces {
		centroid := tree.centroid(want)
		_, idx, ok := tree.Query(centroid)
		if !ok {
			t.Fatalf("face %d centroid direction: expected a hit", i)
		}
		got := faces[idx]
		if got != want {
			t.Errorf("face %d centroid resolved to face %d (%v), want %v", i, idx, got, want)
		}
	}
}

func TestFaceBSPQueryVertexDirection(t *testing.T) {
	vertices, faces := octahedronMesh()
	tree := BuildFaceBSP(vertices, faces)
	_, _, ok := tree.Query(Vec3{X: 1})
	if !ok {
		t.Fatalf("expected a direction exactly at a mesh vertex to resolve to some adjacent face")
	}
}
