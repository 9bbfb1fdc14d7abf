//go:build ignore

// This program generates a small binary STL cube for unit tests.
// Run with: go run generate.go
package main

import (
	"bytes"
	"encoding/binary"
	"os"
)

func main() {
	verts := [8][3]float32{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
	}
	tris := [12][3]int{
		{0, 2, 1}, {0, 3, 2},
		{4, 5, 6}, {4, 6, 7},
		{0, 1, 5}, {0, 5, 4},
		{2, 7, 6}, {2, 3, 7},
		{0, 4, 7}, {0, 7, 3},
		{1, 2, 6}, {1, 6, 5},
	}

	buf := new(bytes.Buffer)

	// 80-byte header, then facet count
	header := make([]byte, 80)
	copy(header, "unit cube test fixture")
	buf.Write(header)
	binary.Write(buf, binary.LittleEndian, uint32(len(tris)))

	for _, t := range tris {
		a, b, c := verts[t[0]], verts[t[1]], verts[t[2]]
		binary.Write(buf, binary.LittleEndian, normal(a, b, c))
		binary.Write(buf, binary.LittleEndian, a)
		binary.Write(buf, binary.LittleEndian, b)
		binary.Write(buf, binary.LittleEndian, c)
		binary.Write(buf, binary.LittleEndian, uint16(0))
	}

	if err := os.WriteFile("cube.stl", buf.Bytes(), 0644); err != nil {
		panic(err)
	}
}

// normal returns the (unnormalized) cross product of the triangle edges.
// Cube faces are axis-aligned, so components are -1, 0 or 1 already.
func normal(a, b, c [3]float32) [3]float32 {
	u := [3]float32{b[0] - a[0], b[1] - a[1], b[2] - a[2]}
	v := [3]float32{c[0] - a[0], c[1] - a[1], c[2] - a[2]}
	return [3]float32{
		u[1]*v[2] - u[2]*v[1],
		u[2]*v[0] - u[0]*v[2],
		u[0]*v[1] - u[1]*v[0],
	}
}
