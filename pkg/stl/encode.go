package stl

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/remesh/pkg/mesh"
)

// Allowed per-element component widths for diagnostic attributes:
// scalar, 2/3/4-vector, 3x3 tensor.
var validComponents = map[int]bool{1: true, 2: true, 3: true, 4: true, 9: true}

// EncodeOptions controls how a mesh is written.
type EncodeOptions struct {
	// Binary selects the binary variant; false writes ASCII.
	Binary bool
	// Name is the solid name (ASCII) or header comment (binary).
	Name string
	// Attributes are named diagnostic arrays attached per vertex or per
	// triangle. STL persists none of them; they are validated against
	// the mesh and reported on the debug channel.
	Attributes map[string]Attribute
}

// EncodeFile writes a mesh to an STL file, overwriting it if present.
func (c *Codec) EncodeFile(path string, m *mesh.Mesh, opts EncodeOptions) error {
	if !c.writer {
		return ErrNoWriter
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := c.Encode(f, m, opts); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

// Encode writes a mesh as STL, one facet per triangle. Facet normals
// are recomputed from each triangle's winding.
func (c *Codec) Encode(w io.Writer, m *mesh.Mesh, opts EncodeOptions) error {
	if !c.writer {
		return ErrNoWriter
	}
	if err := c.checkAttributes(m, opts.Attributes); err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return err
	}
	if opts.Binary {
		return encodeBinary(w, m, opts.Name)
	}
	return encodeASCII(w, m, opts.Name)
}

// checkAttributes validates diagnostic arrays against the mesh. Every
// array must match its scope's element count exactly and carry a
// supported component width.
func (c *Codec) checkAttributes(m *mesh.Mesh, attrs map[string]Attribute) error {
	for name, a := range attrs {
		if a.Scope != ScopePoint && a.Scope != ScopeCell {
			return fmt.Errorf("%w: attribute %q", ErrAttributeScope, name)
		}
		if !validComponents[a.Components] {
			return fmt.Errorf("%w: attribute %q has %d components", ErrComponentWidth, name, a.Components)
		}
		switch a.Scope {
		case ScopePoint:
			if len(a.Data) != a.Components*len(m.Vertices) {
				return fmt.Errorf("%w: attribute %q has %d values for %d vertices x %d components",
					ErrPointDataLength, name, len(a.Data), len(m.Vertices), a.Components)
			}
		case ScopeCell:
			if len(a.Data) != a.Components*len(m.Triangles) {
				return fmt.Errorf("%w: attribute %q has %d values for %d triangles x %d components",
					ErrCellDataLength, name, len(a.Data), len(m.Triangles), a.Components)
			}
		}
		c.log.Debug("attribute validated, not persisted by STL",
			zap.String("name", name),
			zap.Stringer("scope", a.Scope),
			zap.Int("components", a.Components))
	}
	return nil
}

func encodeBinary(w io.Writer, m *mesh.Mesh, name string) error {
	bw := bufio.NewWriter(w)

	header := make([]byte, binaryHeaderSize)
	copy(header, name)
	if _, err := bw.Write(header); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(m.Triangles))); err != nil {
		return err
	}

	rec := make([]byte, binaryFacetSize)
	for i, t := range m.Triangles {
		n := m.FaceNormal(i)
		putFloat32LE(rec[0:], n.X)
		putFloat32LE(rec[4:], n.Y)
		putFloat32LE(rec[8:], n.Z)
		for v := 0; v < 3; v++ {
			p := m.Vertices[t[v]]
			off := 12 + v*12
			putFloat32LE(rec[off:], p.X)
			putFloat32LE(rec[off+4:], p.Y)
			putFloat32LE(rec[off+8:], p.Z)
		}
		rec[48], rec[49] = 0, 0 // attribute byte count
		if _, err := bw.Write(rec); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func putFloat32LE(b []byte, v float64) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
}

func encodeASCII(w io.Writer, m *mesh.Mesh, name string) error {
	if name == "" {
		name = "mesh"
	}
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "solid %s\n", name)
	for i, t := range m.Triangles {
		n := m.FaceNormal(i)
		fmt.Fprintf(bw, "  facet normal %e %e %e\n", n.X, n.Y, n.Z)
		fmt.Fprintf(bw, "    outer loop\n")
		for _, idx := range t {
			p := m.Vertices[idx]
			fmt.Fprintf(bw, "      vertex %e %e %e\n", p.X, p.Y, p.Z)
		}
		fmt.Fprintf(bw, "    endloop\n")
		fmt.Fprintf(bw, "  endfacet\n")
	}
	fmt.Fprintf(bw, "endsolid %s\n", name)
	return bw.Flush()
}
