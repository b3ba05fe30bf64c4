// Package hrir loads head-related impulse response spheres and samples
// them for an incident direction.
package hrir

import (
	"encoding/binary"
	"io"

	"amplitude/internal/amerr"
	"amplitude/internal/spatial"
)

const magic = "AMIR"

// SamplingMode selects how Sample blends the three vertices of the
// containing face.
type SamplingMode int

const (
	Bilinear SamplingMode = iota
	NearestNeighbor
)

// Vertex carries one HRIR sphere sample point: position plus a left/ear
// impulse-response pair and per-ear onset delay.
type Vertex struct {
	Position  spatial.Vec3
	LeftIR    []float32
	RightIR   []float32
	LeftDelay float32
	RightDelay float32
}

// Sphere is a triangle mesh over the unit sphere, BSP-indexed for fast
// direction queries, each vertex carrying an HRIR pair.
type Sphere struct {
	Version    uint16
	SampleRate uint32
	IRLength   uint32
	Vertices   []Vertex
	Indices    []uint32
	Faces      []spatial.Face
	bsp        *spatial.FaceBSP
}

const kEpsilon = 1e-5

// Load parses the AMIR binary format from r: magic, header, indices,
// then per-vertex position/IR/delay records.
func Load(r io.Reader) (*Sphere, error) {
	var magicBuf [4]byte
	if _, err := io.ReadFull(r, magicBuf[:]); err != nil {
		return nil, amerr.Wrap(amerr.LoadFailed, "hrir: read magic", err)
	}
	if string(magicBuf[:]) != magic {
		return nil, amerr.New(amerr.LoadFailed, "hrir: bad magic, expected AMIR")
	}

	var header struct {
		Version      uint16
		SampleRate   uint32
		IRLength     uint32
		VertexCount  uint32
		IndexCount   uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, amerr.Wrap(amerr.LoadFailed, "hrir: read header", err)
	}

	indices := make([]uint32, header.IndexCount)
	if err := binary.Read(r, binary.LittleEndian, &indices); err != nil {
		return nil, amerr.Wrap(amerr.LoadFailed, "hrir: read indices", err)
	}

	vertices := make([]Vertex, header.VertexCount)
	for i := range vertices {
		var pos [3]float32
		if err := binary.Read(r, binary.LittleEndian, &pos); err != nil {
			return nil, amerr.Wrap(amerr.LoadFailed, "hrir: read vertex position", err)
		}
		left := make([]float32, header.IRLength)
		if err := binary.Read(r, binary.LittleEndian, &left); err != nil {
			return nil, amerr.Wrap(amerr.LoadFailed, "hrir: read left IR", err)
		}
		right := make([]float32, header.IRLength)
		if err := binary.Read(r, binary.LittleEndian, &right); err != nil {
			return nil, amerr.Wrap(amerr.LoadFailed, "hrir: read right IR", err)
		}
		var delays [2]float32
		if err := binary.Read(r, binary.LittleEndian, &delays); err != nil {
			return nil, amerr.Wrap(amerr.LoadFailed, "hrir: read delays", err)
		}
		vertices[i] = Vertex{
			Position:   spatial.Vec3{X: float64(pos[0]), Y: float64(pos[1]), Z: float64(pos[2])},
			LeftIR:     left,
			RightIR:    right,
			LeftDelay:  delays[0],
			RightDelay: delays[1],
		}
	}

	if len(indices)%3 != 0 {
		return nil, amerr.New(amerr.LoadFailed, "hrir: index count not a multiple of 3")
	}
	faces := make([]spatial.Face, 0, len(indices)/3)
	for i := 0; i+2 < len(indices); i += 3 {
		faces = append(faces, spatial.Face{I0: int(indices[i]), I1: int(indices[i+1]), I2: int(indices[i+2])})
	}

	positions := make([]spatial.Vec3, len(vertices))
	for i, v := range vertices {
		positions[i] = v.Position
	}

	s := &Sphere{
		Version:    header.Version,
		SampleRate: header.SampleRate,
		IRLength:   header.IRLength,
		Vertices:   vertices,
		Indices:    indices,
		Faces:      faces,
		bsp:        spatial.BuildFaceBSP(positions, faces),
	}
	return s, nil
}

// Sample returns the left/right IR pair (and delays) for direction dir
// under the given sampling mode. If dir lies within kEpsilon of a
// vertex, that vertex's data is returned directly without blending.
func (s *Sphere) Sample(dir spatial.Vec3, mode SamplingMode) (left, right []float32, leftDelay, rightDelay float32, err error) {
	face, _, ok := s.bsp.Query(dir)
	if !ok {
		return nil, nil, 0, 0, amerr.New(amerr.NotFound, "hrir: direction not covered by any face")
	}
	tri := spatial.Triangle{A: s.Vertices[face.I0].Position, B: s.Vertices[face.I1].Position, C: s.Vertices[face.I2].Position}
	dirN := dir.Normalized()

	if v, ok := nearestVertexWithinEpsilon(dirN, tri, face); ok {
		vtx := s.Vertices[v]
		return vtx.LeftIR, vtx.RightIR, vtx.LeftDelay, vtx.RightDelay, nil
	}

	bary, ok := spatial.RayTriangleIntersect(spatial.Vec3{}, dirN, tri)
	if !ok {
		bary = spatial.ComputeBarycentric(dirN, tri)
	}

	switch mode {
	case NearestNeighbor:
		idx := face.I0
		w := bary.U
		if bary.V > w {
			idx, w = face.I1, bary.V
		}
		if bary.W > w {
			idx = face.I2
		}
		vtx := s.Vertices[idx]
		return vtx.LeftIR, vtx.RightIR, vtx.LeftDelay, vtx.RightDelay, nil
	default: // Bilinear
		a, b, c := s.Vertices[face.I0], s.Vertices[face.I1], s.Vertices[face.I2]
		left = blendIR(a.LeftIR, b.LeftIR, c.LeftIR, bary)
		right = blendIR(a.RightIR, b.RightIR, c.RightIR, bary)
		leftDelay = float32(bary.U)*a.LeftDelay + float32(bary.V)*b.LeftDelay + float32(bary.W)*c.LeftDelay
		rightDelay = float32(bary.U)*a.RightDelay + float32(bary.V)*b.RightDelay + float32(bary.W)*c.RightDelay
		return left, right, leftDelay, rightDelay, nil
	}
}

func blendIR(a, b, c []float32, bary spatial.Barycentric) []float32 {
	n := len(a)
	out := make([]float32, n)
	u, v, w := float32(bary.U), float32(bary.V), float32(bary.W)
	for i := 0; i < n; i++ {
		out[i] = a[i]*u + b[i]*v + c[i]*w
	}
	return out
}

func nearestVertexWithinEpsilon(dir spatial.Vec3, tri spatial.Triangle, face spatial.Face) (int, bool) {
	verts := [3]spatial.Vec3{tri.A, tri.B, tri.C}
	idxs := [3]int{face.I0, face.I1, face.I2}
	for i, v := range verts {
		d := v.Normalized().Sub(dir)
		if d.Dot(d) <= kEpsilon*kEpsilon {
			return idxs[i], true
		}
	}
	return 0, false
}
