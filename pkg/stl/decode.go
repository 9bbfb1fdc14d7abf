package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/remesh/pkg/mesh"
)

const (
	binaryHeaderSize = 80
	binaryFacetSize  = 50 // 12 normal + 36 vertices + 2 attribute bytes
)

// DecodeFile reads an STL file into a mesh. A missing or zero-length
// file fails with ErrFileMissingOrEmpty before any parsing is attempted.
func (c *Codec) DecodeFile(path string) (*mesh.Mesh, error) {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrFileMissingOrEmpty, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	m, err := c.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return m, nil
}

// Decode parses STL data, auto-detecting the ASCII and binary variants.
// Vertices shared by neighboring facets are welded by exact coordinate
// equality, so the result is an indexed mesh rather than a triangle soup.
func (c *Codec) Decode(data []byte) (*mesh.Mesh, error) {
	if len(data) == 0 {
		return nil, ErrTruncatedData
	}

	var (
		verts []r3.Vec
		conn  []int
		err   error
	)
	if isASCII(data) {
		verts, conn, err = decodeASCII(data)
	} else {
		verts, conn, err = decodeBinary(data)
	}
	if err != nil {
		return nil, err
	}

	polys, err := c.polygonize(conn)
	if err != nil {
		return nil, err
	}

	m := buildMesh(verts, polys)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	c.log.Debug("decoded STL",
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("triangles", len(m.Triangles)),
		zap.Int("polygons", len(polys)))
	return m, nil
}

// isASCII sniffs the STL variant. A binary file whose length matches its
// declared facet count is always binary, even when its header happens to
// start with "solid"; otherwise a leading "solid" keyword plus a "facet"
// token near the start means ASCII.
func isASCII(data []byte) bool {
	if len(data) >= binaryHeaderSize+4 {
		count := binary.LittleEndian.Uint32(data[binaryHeaderSize:])
		if len(data) == binaryHeaderSize+4+int(count)*binaryFacetSize {
			return false
		}
	}
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	trimmed := bytes.TrimLeft(head, " \t\r\n")
	return bytes.HasPrefix(trimmed, []byte("solid")) && bytes.Contains(head, []byte("facet"))
}

// decodeBinary reads the binary variant: an 80-byte header, a uint32
// facet count and 50-byte facet records. It returns the per-corner
// vertex list and a flat count-prefixed connectivity buffer.
func decodeBinary(data []byte) ([]r3.Vec, []int, error) {
	if len(data) < binaryHeaderSize+4 {
		return nil, nil, fmt.Errorf("%w: %d byte header", ErrTruncatedData, len(data))
	}
	count := int(binary.LittleEndian.Uint32(data[binaryHeaderSize:]))
	body := data[binaryHeaderSize+4:]
	if len(body) < count*binaryFacetSize {
		return nil, nil, fmt.Errorf("%w: %d facets declared, %d bytes of records", ErrTruncatedData, count, len(body))
	}

	verts := make([]r3.Vec, 0, 3*count)
	conn := make([]int, 0, 4*count)
	for i := 0; i < count; i++ {
		rec := body[i*binaryFacetSize:]
		// First 12 bytes are the stored normal; it is recomputed from
		// the winding on encode, so it is skipped here.
		conn = append(conn, 3)
		for v := 0; v < 3; v++ {
			off := 12 + v*12
			verts = append(verts, r3.Vec{
				X: float64(float32FromLE(rec[off:])),
				Y: float64(float32FromLE(rec[off+4:])),
				Z: float64(float32FromLE(rec[off+8:])),
			})
			conn = append(conn, len(verts)-1)
		}
	}
	return verts, conn, nil
}

func float32FromLE(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

// decodeASCII reads the text variant. Facet loops are not required to
// hold exactly three vertices; whatever each "outer loop" contains
// becomes one polygon record in the connectivity buffer.
func decodeASCII(data []byte) ([]r3.Vec, []int, error) {
	var (
		verts    []r3.Vec
		conn     []int
		loop     []int
		inLoop   bool
		sawSolid bool
	)

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "solid":
			sawSolid = true
		case "outer":
			inLoop = true
			loop = loop[:0]
		case "vertex":
			if !inLoop {
				return nil, nil, fmt.Errorf("%w: vertex outside loop at line %d", ErrNotSTL, line)
			}
			if len(fields) < 4 {
				return nil, nil, fmt.Errorf("%w: short vertex at line %d", ErrTruncatedData, line)
			}
			var v r3.Vec
			var err error
			if v.X, err = strconv.ParseFloat(fields[1], 64); err == nil {
				if v.Y, err = strconv.ParseFloat(fields[2], 64); err == nil {
					v.Z, err = strconv.ParseFloat(fields[3], 64)
				}
			}
			if err != nil {
				return nil, nil, fmt.Errorf("parsing vertex at line %d: %w", line, err)
			}
			verts = append(verts, v)
			loop = append(loop, len(verts)-1)
		case "endloop":
			if !inLoop {
				return nil, nil, fmt.Errorf("%w: endloop without loop at line %d", ErrNotSTL, line)
			}
			conn = append(conn, len(loop))
			conn = append(conn, loop...)
			inLoop = false
		case "facet", "endfacet", "endsolid":
			// Facet normals are recomputed from the winding; nothing to keep.
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("scanning STL text: %w", err)
	}
	if !sawSolid {
		return nil, nil, fmt.Errorf("%w: no solid keyword", ErrNotSTL)
	}
	return verts, conn, nil
}

// polygonize turns the flat count-prefixed connectivity buffer into
// per-polygon index tuples using the configured layout strategy.
func (c *Codec) polygonize(conn []int) ([][]int, error) {
	if len(conn) == 0 {
		return nil, nil
	}
	switch c.layout {
	case LayoutStrided:
		return stridedPolygons(conn)
	case LayoutScan:
		return scanPolygons(conn)
	default:
		if polys, err := stridedPolygons(conn); err == nil {
			return polys, nil
		}
		c.log.Debug("connectivity not uniform, scanning records")
		return scanPolygons(conn)
	}
}

// stridedPolygons handles the uniform case: every record holds the same
// vertex count n, so the buffer reshapes into rows of n+1 values with
// the leading count column stripped.
func stridedPolygons(conn []int) ([][]int, error) {
	n := conn[0]
	if n <= 0 || len(conn)%(n+1) != 0 {
		return nil, fmt.Errorf("%w: length %d not divisible by %d", ErrConnectivity, len(conn), n+1)
	}
	rows := len(conn) / (n + 1)
	polys := make([][]int, rows)
	for i := 0; i < rows; i++ {
		rec := conn[i*(n+1) : (i+1)*(n+1)]
		if rec[0] != n {
			return nil, fmt.Errorf("%w: record %d has count %d, expected %d", ErrConnectivity, i, rec[0], n)
		}
		polys[i] = rec[1:]
	}
	return polys, nil
}

// scanPolygons walks count-prefixed records one by one, tolerating mixed
// polygon sizes.
func scanPolygons(conn []int) ([][]int, error) {
	var polys [][]int
	for i := 0; i < len(conn); {
		n := conn[i]
		if n <= 0 || i+1+n > len(conn) {
			return nil, fmt.Errorf("%w: record at offset %d with count %d", ErrConnectivity, i, n)
		}
		polys = append(polys, conn[i+1:i+1+n])
		i += n + 1
	}
	return polys, nil
}

// buildMesh welds coincident vertices and fan-triangulates polygons.
// Polygons with fewer than three vertices are dropped.
func buildMesh(verts []r3.Vec, polys [][]int) *mesh.Mesh {
	welded := make([]r3.Vec, 0, len(verts)/3)
	remap := make([]int, len(verts))
	seen := make(map[r3.Vec]int, len(verts)/3)
	for i, v := range verts {
		if idx, ok := seen[v]; ok {
			remap[i] = idx
			continue
		}
		welded = append(welded, v)
		seen[v] = len(welded) - 1
		remap[i] = len(welded) - 1
	}

	var tris [][3]int
	for _, p := range polys {
		if len(p) < 3 {
			continue
		}
		for k := 1; k < len(p)-1; k++ {
			tris = append(tris, [3]int{remap[p[0]], remap[p[k]], remap[p[k+1]]})
		}
	}
	return &mesh.Mesh{Vertices: welded, Triangles: tris}
}
