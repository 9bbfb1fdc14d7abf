package tools

import (
	"go.uber.org/zap"
)

// Repairer cleans a mesh file by running an external repair program,
// admesh by default. The argv template must read {input} and write the
// cleaned mesh to {output}.
type Repairer struct {
	command []string
	log     *zap.Logger
}

// NewRepairer returns a Repairer for the given argv template. log may
// be nil.
func NewRepairer(command []string, log *zap.Logger) *Repairer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repairer{command: command, log: log}
}

// Repair reads src and overwrites dst with the cleaned mesh.
func (r *Repairer) Repair(src, dst string) error {
	return run(expandArgs(r.command, map[string]string{
		"{input}":  src,
		"{output}": dst,
	}), r.log)
}
