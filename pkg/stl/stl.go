// Package stl reads and writes STL triangle meshes, in both the ASCII
// and the binary variant of the format.
package stl

import (
	"errors"

	"go.uber.org/zap"
)

// STL codec errors.
var (
	ErrFileMissingOrEmpty = errors.New("input file missing or empty")
	ErrNoWriter           = errors.New("STL writing not configured")
	ErrNotSTL             = errors.New("not a recognizable STL stream")
	ErrTruncatedData      = errors.New("truncated STL data")
	ErrConnectivity       = errors.New("malformed polygon connectivity")
	ErrAttributeScope     = errors.New("unrecognized attribute scope")
	ErrPointDataLength    = errors.New("point data length does not match vertex count")
	ErrCellDataLength     = errors.New("cell data length does not match triangle count")
	ErrComponentWidth     = errors.New("unsupported attribute component width")
)

// Layout selects how the codec interprets the flat polygon-connectivity
// buffer produced while decoding.
type Layout int

// Connectivity layout strategies.
const (
	// LayoutAuto tries the strided path and falls back to the scan path.
	LayoutAuto Layout = iota
	// LayoutStrided requires a uniform buffer and reshapes it in one step.
	LayoutStrided
	// LayoutScan always walks count-prefixed records one by one.
	LayoutScan
)

// String returns the layout name.
func (l Layout) String() string {
	switch l {
	case LayoutAuto:
		return "auto"
	case LayoutStrided:
		return "strided"
	case LayoutScan:
		return "scan"
	default:
		return "unknown"
	}
}

// Scope says whether an attribute array is attached per vertex or per
// triangle.
type Scope int

// Attribute scopes.
const (
	ScopePoint Scope = iota // One element per vertex
	ScopeCell               // One element per triangle
)

// String returns the scope name.
func (s Scope) String() string {
	switch s {
	case ScopePoint:
		return "point"
	case ScopeCell:
		return "cell"
	default:
		return "unknown"
	}
}

// Attribute is a named scalar or vector array attached to a mesh for
// diagnostic export. Data holds Components values per element, flattened.
type Attribute struct {
	Scope      Scope
	Components int
	Data       []float64
}

// Codec converts between STL byte streams and meshes. Decode strategy
// and writer availability are fixed at construction.
type Codec struct {
	layout Layout
	writer bool
	log    *zap.Logger
}

// Option configures a Codec.
type Option func(*Codec)

// WithLayout sets the connectivity layout strategy.
func WithLayout(l Layout) Option {
	return func(c *Codec) { c.layout = l }
}

// WithoutWriter disables STL writing; Encode calls fail with ErrNoWriter.
func WithoutWriter() Option {
	return func(c *Codec) { c.writer = false }
}

// WithLogger attaches a logger for decode/encode diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(c *Codec) { c.log = log }
}

// NewCodec returns a Codec with the given options applied. The default
// codec auto-selects the connectivity layout, has writing enabled and
// logs nowhere.
func NewCodec(opts ...Option) *Codec {
	c := &Codec{
		layout: LayoutAuto,
		writer: true,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
