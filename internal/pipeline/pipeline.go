// Package pipeline orchestrates the remeshing of one STL file: load,
// repair, remesh, repair again, orientation check, save.
package pipeline

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/Faultbox/remesh/pkg/mesh"
	"github.com/Faultbox/remesh/pkg/stl"
)

// Pipeline errors. Failures of the external capabilities are wrapped in
// the matching sentinel so callers can tell the stages apart.
var (
	ErrRepairFailed      = errors.New("mesh repair failed")
	ErrRemeshFailed      = errors.New("remeshing failed")
	ErrCavityCheckFailed = errors.New("cavity check failed")
)

// Repairer cleans a mesh file: duplicate vertices removed, self
// intersections fixed, orientation made consistent. It reads one STL
// location and overwrites another (possibly the same) with the result.
type Repairer interface {
	Repair(src, dst string) error
}

// Remesher resamples a mesh to approximately targetCount uniformly
// distributed vertices. subdivisions says how many times to refine the
// input first, for targets above the input's resolution.
type Remesher interface {
	Remesh(m *mesh.Mesh, subdivisions, targetCount int) (*mesh.Mesh, error)
}

// CavityChecker reports whether a closed, consistently oriented mesh
// encloses a void rather than a solid. Behavior on open meshes is up to
// the implementation; it should fail rather than guess.
type CavityChecker interface {
	IsCavity(m *mesh.Mesh) (bool, error)
}

// Request describes one remeshing run.
type Request struct {
	Input       string // Source STL path
	Output      string // Destination STL path, overwritten
	TargetNodes int    // Desired output vertex count
	Cavity      bool   // Whether the surface is expected to enclose a void
	Binary      bool   // Write binary STL
}

// Pipeline wires the codec and the external capabilities together.
// Cavity may be nil; orientation is then left unverified.
type Pipeline struct {
	codec    *stl.Codec
	repairer Repairer
	remesher Remesher
	cavity   CavityChecker
	log      *zap.Logger
}

// New returns a Pipeline. codec, repairer and remesher are required;
// cavity is optional and log may be nil.
func New(codec *stl.Codec, repairer Repairer, remesher Remesher, cavity CavityChecker, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		codec:    codec,
		repairer: repairer,
		remesher: remesher,
		cavity:   cavity,
		log:      log,
	}
}

// Subdivisions returns how many uniform refinement rounds are needed
// before clustering so the input resolution reaches targetCount:
// ceil(log2(targetCount/inputVertices)), never negative. Each round
// roughly quadruples the triangle count and the clustering step only
// ever reduces resolution.
func Subdivisions(inputVertices, targetCount int) int {
	if inputVertices <= 0 || targetCount <= inputVertices {
		return 0
	}
	return int(math.Ceil(math.Log2(float64(targetCount) / float64(inputVertices))))
}

// Run executes the full pipeline for one file. Every stage failure
// aborts the run; nothing is retried.
func (p *Pipeline) Run(req Request) error {
	// Load the raw input. The pre-repair vertex count drives the
	// subdivision formula.
	input, err := p.codec.DecodeFile(req.Input)
	if err != nil {
		return err
	}
	inputVertices := len(input.Vertices)
	p.log.Debug("loaded input mesh",
		zap.String("path", req.Input),
		zap.Int("vertices", inputVertices),
		zap.Int("triangles", len(input.Triangles)))

	// First repair pass, input to output location.
	if err := p.repairer.Repair(req.Input, req.Output); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrRepairFailed, req.Input, err)
	}

	// Reload: repair may have added or removed vertices.
	repaired, err := p.codec.DecodeFile(req.Output)
	if err != nil {
		return err
	}

	subdivisions := Subdivisions(inputVertices, req.TargetNodes)
	p.log.Debug("remeshing",
		zap.Int("subdivisions", subdivisions),
		zap.Int("target_nodes", req.TargetNodes))

	remeshed, err := p.remesher.Remesh(repaired, subdivisions, req.TargetNodes)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrRemeshFailed, req.Input, err)
	}
	if err := p.codec.EncodeFile(req.Output, remeshed, stl.EncodeOptions{Binary: req.Binary}); err != nil {
		return err
	}

	// Second repair pass: clustering remeshers can leave minor
	// non-manifold artifacts behind.
	if err := p.repairer.Repair(req.Output, req.Output); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrRepairFailed, req.Output, err)
	}

	final, err := p.codec.DecodeFile(req.Output)
	if err != nil {
		return err
	}

	final, err = p.orient(final, req.Cavity)
	if err != nil {
		return err
	}

	min, max := final.Bounds()
	p.log.Debug("writing final mesh",
		zap.String("path", req.Output),
		zap.Int("vertices", len(final.Vertices)),
		zap.Int("triangles", len(final.Triangles)),
		zap.Any("bounds_min", min),
		zap.Any("bounds_max", max))

	return p.codec.EncodeFile(req.Output, final, stl.EncodeOptions{Binary: req.Binary})
}

// orient flips the winding when the checker's verdict disagrees with
// the requested orientation. Without a checker the mesh passes through
// unverified.
func (p *Pipeline) orient(m *mesh.Mesh, wantCavity bool) (*mesh.Mesh, error) {
	if p.cavity == nil {
		p.log.Debug("no cavity checker configured, orientation not verified")
		return m, nil
	}
	actual, err := p.cavity.IsCavity(m)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCavityCheckFailed, err)
	}
	if actual == wantCavity {
		return m, nil
	}
	p.log.Debug("flipping winding",
		zap.Bool("requested_cavity", wantCavity),
		zap.Bool("actual_cavity", actual))
	return m.Flipped(), nil
}
