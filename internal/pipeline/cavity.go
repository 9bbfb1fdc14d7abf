package pipeline

import (
	"fmt"

	"github.com/Faultbox/remesh/pkg/mesh"
)

// VolumeChecker decides cavity orientation from the signed enclosed
// volume: a consistently inward-facing surface has negative volume.
type VolumeChecker struct{}

// IsCavity reports whether the mesh's winding encloses a void. The
// verdict is only meaningful for a watertight surface, so an open mesh
// is reported as a failure.
func (VolumeChecker) IsCavity(m *mesh.Mesh) (bool, error) {
	if !m.IsClosed() {
		return false, fmt.Errorf("surface is not closed")
	}
	return m.SignedVolume() < 0, nil
}
