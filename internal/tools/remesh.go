package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/Faultbox/remesh/pkg/mesh"
	"github.com/Faultbox/remesh/pkg/stl"
)

// Remesher resamples a mesh by round-tripping it through an external
// clustering remesher. The argv template must read {input}, write
// {output} and take the target vertex count as {count}; it may also
// take {subdivisions}. Templates without a {subdivisions} placeholder
// get the refinement applied in-process before the tool runs, so the
// gateway contract holds either way.
type Remesher struct {
	command []string
	codec   *stl.Codec
	log     *zap.Logger
}

// NewRemesher returns a Remesher for the given argv template. log may
// be nil.
func NewRemesher(command []string, codec *stl.Codec, log *zap.Logger) *Remesher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Remesher{command: command, codec: codec, log: log}
}

// Remesh refines the mesh subdivisions times, hands it to the external
// tool and returns the decoded result.
func (r *Remesher) Remesh(m *mesh.Mesh, subdivisions, targetCount int) (*mesh.Mesh, error) {
	if !hasPlaceholder(r.command, "{subdivisions}") && subdivisions > 0 {
		r.log.Debug("tool takes no subdivision parameter, refining in-process",
			zap.Int("subdivisions", subdivisions))
		m = m.Subdivided(subdivisions)
		subdivisions = 0
	}

	dir, err := os.MkdirTemp("", "remesh-")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input.stl")
	output := filepath.Join(dir, "output.stl")
	if err := r.codec.EncodeFile(input, m, stl.EncodeOptions{Binary: true}); err != nil {
		return nil, err
	}

	err = run(expandArgs(r.command, map[string]string{
		"{input}":        input,
		"{output}":       output,
		"{count}":        strconv.Itoa(targetCount),
		"{subdivisions}": strconv.Itoa(subdivisions),
	}), r.log)
	if err != nil {
		return nil, err
	}

	return r.codec.DecodeFile(output)
}
