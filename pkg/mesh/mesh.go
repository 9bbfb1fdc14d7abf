// Package mesh provides an indexed triangle surface and the geometric
// operations the remeshing pipeline needs.
package mesh

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh errors.
var (
	ErrVertexIndex = errors.New("triangle references vertex out of range")
)

// Mesh is an indexed triangle surface. Vertices are kept at double
// precision regardless of how the source file encoded them; Triangles
// hold 0-based indices into Vertices.
//
// A Mesh is treated as immutable once built: operations return a new
// Mesh rather than modifying the receiver.
type Mesh struct {
	Vertices  []r3.Vec
	Triangles [][3]int
}

// Validate checks that every triangle references an existing vertex.
func (m *Mesh) Validate() error {
	n := len(m.Vertices)
	for i, t := range m.Triangles {
		for _, idx := range t {
			if idx < 0 || idx >= n {
				return fmt.Errorf("%w: triangle %d, vertex %d of %d", ErrVertexIndex, i, idx, n)
			}
		}
	}
	return nil
}

// Flipped returns a copy of the mesh with every triangle's winding
// reversed, inverting the outward-normal convention. Flipping twice
// restores the original index tuples.
func (m *Mesh) Flipped() *Mesh {
	out := &Mesh{
		Vertices:  append([]r3.Vec(nil), m.Vertices...),
		Triangles: make([][3]int, len(m.Triangles)),
	}
	for i, t := range m.Triangles {
		out.Triangles[i] = [3]int{t[2], t[1], t[0]}
	}
	return out
}

// FaceNormal returns the unit normal of triangle i, following the
// right-hand rule over its winding. Degenerate triangles yield a zero
// vector.
func (m *Mesh) FaceNormal(i int) r3.Vec {
	t := m.Triangles[i]
	a, b, c := m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]
	n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
	if r3.Norm2(n) == 0 {
		return r3.Vec{}
	}
	return r3.Unit(n)
}

// SignedVolume returns the volume enclosed by the surface, signed by
// winding: positive when triangle normals point away from the enclosed
// region, negative when they point into it. The result is meaningless
// for surfaces that are not closed.
func (m *Mesh) SignedVolume() float64 {
	var v float64
	for _, t := range m.Triangles {
		a, b, c := m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]
		v += r3.Dot(a, r3.Cross(b, c))
	}
	return v / 6
}

// IsClosed reports whether the surface is watertight with consistent
// orientation: every edge is shared by exactly two triangles that
// traverse it in opposite directions.
func (m *Mesh) IsClosed() bool {
	if len(m.Triangles) == 0 {
		return false
	}
	edges := make(map[[2]int]int, 3*len(m.Triangles))
	for _, t := range m.Triangles {
		for k := 0; k < 3; k++ {
			edges[[2]int{t[k], t[(k+1)%3]}]++
		}
	}
	for e, n := range edges {
		if n != 1 || edges[[2]int{e[1], e[0]}] != 1 {
			return false
		}
	}
	return true
}

// Bounds returns the axis-aligned bounding box corners of the mesh.
// Both corners are zero for a mesh without vertices.
func (m *Mesh) Bounds() (min, max r3.Vec) {
	if len(m.Vertices) == 0 {
		return r3.Vec{}, r3.Vec{}
	}
	min, max = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		if v.X < min.X {
			min.X = v.X
		}
		if v.Y < min.Y {
			min.Y = v.Y
		}
		if v.Z < min.Z {
			min.Z = v.Z
		}
		if v.X > max.X {
			max.X = v.X
		}
		if v.Y > max.Y {
			max.Y = v.Y
		}
		if v.Z > max.Z {
			max.Z = v.Z
		}
	}
	return min, max
}

// Subdivided returns the mesh refined by n rounds of midpoint
// subdivision. Each round splits every triangle into four, reusing
// edge midpoints between neighboring triangles. For n <= 0 the
// receiver is returned unchanged.
func (m *Mesh) Subdivided(n int) *Mesh {
	out := m
	for ; n > 0; n-- {
		out = out.subdivideOnce()
	}
	return out
}

func (m *Mesh) subdivideOnce() *Mesh {
	verts := append([]r3.Vec(nil), m.Vertices...)
	mids := make(map[[2]int]int, 3*len(m.Triangles)/2)

	midpoint := func(a, b int) int {
		key := [2]int{a, b}
		if a > b {
			key = [2]int{b, a}
		}
		if idx, ok := mids[key]; ok {
			return idx
		}
		verts = append(verts, r3.Scale(0.5, r3.Add(m.Vertices[a], m.Vertices[b])))
		mids[key] = len(verts) - 1
		return len(verts) - 1
	}

	tris := make([][3]int, 0, 4*len(m.Triangles))
	for _, t := range m.Triangles {
		ab := midpoint(t[0], t[1])
		bc := midpoint(t[1], t[2])
		ca := midpoint(t[2], t[0])
		tris = append(tris,
			[3]int{t[0], ab, ca},
			[3]int{ab, t[1], bc},
			[3]int{ca, bc, t[2]},
			[3]int{ab, bc, ca},
		)
	}
	return &Mesh{Vertices: verts, Triangles: tris}
}
