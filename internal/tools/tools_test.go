package tools

import (
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/remesh/pkg/mesh"
	"github.com/Faultbox/remesh/pkg/stl"
)

func TestExpandArgs(t *testing.T) {
	tests := []struct {
		name     string
		template []string
		values   map[string]string
		want     []string
	}{
		{
			name:     "plain substitution",
			template: []string{"acvd", "{input}", "{output}", "{count}"},
			values:   map[string]string{"{input}": "a.stl", "{output}": "b.stl", "{count}": "1000"},
			want:     []string{"acvd", "a.stl", "b.stl", "1000"},
		},
		{
			name:     "placeholder inside flag",
			template: []string{"admesh", "--write-binary-stl={output}", "{input}"},
			values:   map[string]string{"{input}": "in.stl", "{output}": "out.stl"},
			want:     []string{"admesh", "--write-binary-stl=out.stl", "in.stl"},
		},
		{
			name:     "unused values",
			template: []string{"tool", "{input}"},
			values:   map[string]string{"{input}": "x", "{subdivisions}": "2"},
			want:     []string{"tool", "x"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandArgs(tt.template, tt.values); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expandArgs = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasPlaceholder(t *testing.T) {
	template := []string{"acvdq", "--subdivide={subdivisions}", "{input}"}
	if !hasPlaceholder(template, "{subdivisions}") {
		t.Error("expected {subdivisions} to be found")
	}
	if hasPlaceholder(template, "{count}") {
		t.Error("did not expect {count} to be found")
	}
}

// tetra is the smallest closed mesh, enough to exercise the adapters.
func tetra() *mesh.Mesh {
	return &mesh.Mesh{
		Vertices: []r3.Vec{
			{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 0, Y: 0, Z: 1},
		},
		Triangles: [][3]int{
			{0, 2, 1}, {0, 1, 3}, {1, 2, 3}, {0, 3, 2},
		},
	}
}

func TestRepairerRunsCommand(t *testing.T) {
	if _, err := exec.LookPath("cp"); err != nil {
		t.Skip("cp not available")
	}

	dir := t.TempDir()
	src := filepath.Join(dir, "in.stl")
	dst := filepath.Join(dir, "out.stl")
	if err := stl.NewCodec().EncodeFile(src, tetra(), stl.EncodeOptions{Binary: true}); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	// cp stands in for a repair tool that copies input to output.
	r := NewRepairer([]string{"cp", "{input}", "{output}"}, nil)
	if err := r.Repair(src, dst); err != nil {
		t.Fatalf("Repair failed: %v", err)
	}

	if _, err := os.Stat(dst); err != nil {
		t.Fatalf("destination not written: %v", err)
	}
	if _, err := stl.NewCodec().DecodeFile(dst); err != nil {
		t.Errorf("destination is not valid STL: %v", err)
	}
}

func TestRepairerCommandFailure(t *testing.T) {
	r := NewRepairer([]string{"cp", "{input}", "{output}"}, nil)
	dir := t.TempDir()
	if err := r.Repair(filepath.Join(dir, "missing.stl"), filepath.Join(dir, "out.stl")); err == nil {
		t.Error("expected error from failing command")
	}
}

func TestRemesherRoundTrip(t *testing.T) {
	if _, err := exec.LookPath("cp"); err != nil {
		t.Skip("cp not available")
	}

	codec := stl.NewCodec()
	// cp stands in for an identity remesher.
	r := NewRemesher([]string{"cp", "{input}", "{output}"}, codec, nil)

	got, err := r.Remesh(tetra(), 0, 4)
	if err != nil {
		t.Fatalf("Remesh failed: %v", err)
	}
	if len(got.Vertices) != 4 || len(got.Triangles) != 4 {
		t.Errorf("unexpected mesh: %d vertices, %d triangles", len(got.Vertices), len(got.Triangles))
	}
}

func TestRemesherPreSubdividesWithoutPlaceholder(t *testing.T) {
	if _, err := exec.LookPath("cp"); err != nil {
		t.Skip("cp not available")
	}

	codec := stl.NewCodec()
	r := NewRemesher([]string{"cp", "{input}", "{output}"}, codec, nil)

	// One refinement round of a tetrahedron: 4 + 6 edge midpoints = 10
	// vertices, 16 triangles. The template has no {subdivisions}
	// placeholder, so the adapter must refine before invoking the tool.
	got, err := r.Remesh(tetra(), 1, 100)
	if err != nil {
		t.Fatalf("Remesh failed: %v", err)
	}
	if len(got.Vertices) != 10 {
		t.Errorf("expected 10 vertices after refinement, got %d", len(got.Vertices))
	}
	if len(got.Triangles) != 16 {
		t.Errorf("expected 16 triangles after refinement, got %d", len(got.Triangles))
	}
}
