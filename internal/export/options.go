// Package export runs the full pipeline from container bytes to a
// serialized mesh: decode, repair, validate, resolve, transform, normalize,
// triangulate and serialize.
package export

import (
	"errors"
	"fmt"
	gomath "math"
	"strings"

	"github.com/Faultbox/partmesh/internal/config"
	"github.com/Faultbox/partmesh/pkg/formats"
	"github.com/Faultbox/partmesh/pkg/math"
)

// ErrInvalidOptions is returned for option values the exporter cannot use.
var ErrInvalidOptions = errors.New("invalid export options")

// Format selects the output serialization.
type Format string

const (
	FormatSTL       Format = "stl"
	FormatBinarySTL Format = "stl-binary"
)

// ContentType returns the MIME type of the serialized output.
func (f Format) ContentType() string {
	if f == FormatBinarySTL {
		return "application/octet-stream"
	}
	return "model/stl"
}

// UpAxis selects the vertical axis of the exported coordinates.
type UpAxis string

const (
	// UpAxisY keeps the authored Y-up coordinates.
	UpAxisY UpAxis = "y"
	// UpAxisZ rotates +90 degrees about X so authored +Y points to +Z.
	UpAxisZ UpAxis = "z"
)

// Matrix returns the axis conversion. It is always a proper rotation, so
// facet winding and handedness are preserved.
func (a UpAxis) Matrix() math.Mat4 {
	if a == UpAxisZ {
		// RotateX(pi/2) with the cosine terms exactly zero.
		return math.Mat4{
			1, 0, 0, 0,
			0, 0, 1, 0,
			0, -1, 0, 0,
			0, 0, 0, 1,
		}
	}
	return math.Identity()
}

// Defaults used when Options fields are left zero.
const (
	DefaultTargetExtent = 4.0
	DefaultUnitScale    = 1.0
)

// Options configures one export.
type Options struct {
	Format Format

	// ApplyDisplayNormalization exports the geometry as the viewer shows
	// it: centred at the origin with its largest extent equal to
	// TargetExtent. Otherwise the authored world scale is kept.
	ApplyDisplayNormalization bool
	TargetExtent              float64

	// UnitScale multiplies the final coordinates.
	UnitScale float64
	UpAxis    UpAxis
	SolidName string

	// SkipRepair disables the structural repair pass.
	SkipRepair bool

	// Workers bounds the concurrent buffer decoding.
	Workers int

	// RequestID tags logs and the result. A random one is generated when
	// empty.
	RequestID string

	Decode formats.DecodeOptions
}

// DefaultOptions returns ASCII STL in authored world scale.
func DefaultOptions() Options {
	return Options{
		Format:       FormatSTL,
		TargetExtent: DefaultTargetExtent,
		UnitScale:    DefaultUnitScale,
		UpAxis:       UpAxisY,
		SolidName:    formats.DefaultSolidName,
		Workers:      4,
	}
}

// FromConfig builds options from the export section of the config file.
func FromConfig(c config.ExportConfig) (Options, error) {
	format, err := ParseFormat(c.Format)
	if err != nil {
		return Options{}, err
	}
	axis, err := ParseUpAxis(c.UpAxis)
	if err != nil {
		return Options{}, err
	}
	opts := DefaultOptions()
	opts.Format = format
	opts.UpAxis = axis
	opts.ApplyDisplayNormalization = c.Normalize
	opts.TargetExtent = c.TargetExtent
	opts.UnitScale = c.UnitScale
	opts.SolidName = c.SolidName
	opts.SkipRepair = c.SkipRepair
	opts.Workers = c.Workers
	return opts.withDefaults()
}

// withDefaults fills zero fields and rejects unusable values.
func (o Options) withDefaults() (Options, error) {
	if o.Format == "" {
		o.Format = FormatSTL
	}
	if o.TargetExtent == 0 {
		o.TargetExtent = DefaultTargetExtent
	}
	if o.UnitScale == 0 {
		o.UnitScale = DefaultUnitScale
	}
	if o.UpAxis == "" {
		o.UpAxis = UpAxisY
	}
	if o.Workers < 1 {
		o.Workers = 1
	}

	var err error
	if o.Format, err = ParseFormat(string(o.Format)); err != nil {
		return o, err
	}
	if o.UpAxis, err = ParseUpAxis(string(o.UpAxis)); err != nil {
		return o, err
	}
	if !(o.TargetExtent > 0) || gomath.IsInf(o.TargetExtent, 0) {
		return o, fmt.Errorf("%w: target extent %v must be positive", ErrInvalidOptions, o.TargetExtent)
	}
	if !(o.UnitScale > 0) || gomath.IsInf(o.UnitScale, 0) {
		return o, fmt.Errorf("%w: unit scale %v must be positive", ErrInvalidOptions, o.UnitScale)
	}
	return o, nil
}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatSTL, FormatBinarySTL:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", ErrInvalidOptions, s)
	}
}

// ParseUpAxis parses an up-axis name, case-insensitively.
func ParseUpAxis(s string) (UpAxis, error) {
	switch a := UpAxis(strings.ToLower(s)); a {
	case UpAxisY, UpAxisZ:
		return a, nil
	default:
		return "", fmt.Errorf("%w: unknown up axis %q", ErrInvalidOptions, s)
	}
}
