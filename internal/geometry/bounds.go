package geometry

import (
	"github.com/Faultbox/partmesh/pkg/math"
	"github.com/Faultbox/partmesh/pkg/scene"
)

// EmptyBounds is the box reported for a scene without vertices.
var EmptyBounds = scene.Bounds{
	Min: math.Vec3{X: -0.5, Y: -0.5, Z: -0.5},
	Max: math.Vec3{X: 0.5, Y: 0.5, Z: 0.5},
}

// ComputeBounds returns the axis-aligned box of every world-space vertex.
// Accessor min/max are never consulted. With no vertices it returns
// EmptyBounds and empty is true.
func ComputeBounds(w *World) (b scene.Bounds, empty bool) {
	first := true
	for i := range w.Primitives {
		for _, v := range w.Primitives[i].Positions {
			if first {
				b.Min, b.Max = v, v
				first = false
				continue
			}
			b.Min = b.Min.Min(v)
			b.Max = b.Max.Max(v)
		}
	}
	if first {
		return EmptyBounds, true
	}
	return b, false
}

// BoundsOf returns the box of a triangle list, EmptyBounds when there are
// none.
func BoundsOf(tris []scene.Triangle) scene.Bounds {
	if len(tris) == 0 {
		return EmptyBounds
	}
	b := scene.Bounds{Min: tris[0].Vertices[0], Max: tris[0].Vertices[0]}
	for _, t := range tris {
		for _, v := range t.Vertices {
			b.Min = b.Min.Min(v)
			b.Max = b.Max.Max(v)
		}
	}
	return b
}

// Normalization is the uniform scale and offset that fit a scene into a
// cube of TargetExtent centred at the origin. Applying it scales first,
// then translates.
type Normalization struct {
	Scale        float64   `json:"scale"`
	Offset       math.Vec3 `json:"offset"`
	TargetExtent float64   `json:"target_extent"`
}

// IdentityNormalization leaves coordinates unchanged.
func IdentityNormalization() Normalization {
	return Normalization{Scale: 1}
}

// Normalize derives the display normalization for b. A box with no
// positive extent keeps scale 1.
func Normalize(b scene.Bounds, targetExtent float64) Normalization {
	scale := 1.0
	if extent := b.Size().MaxComponent(); extent > 0 {
		scale = targetExtent / extent
	}
	return Normalization{
		Scale:        scale,
		Offset:       b.Center().Scale(-scale),
		TargetExtent: targetExtent,
	}
}

// Apply maps a world-space point into normalized space.
func (n Normalization) Apply(v math.Vec3) math.Vec3 {
	return v.Scale(n.Scale).Add(n.Offset)
}

// Matrix returns the normalization as Translate(Offset) * Scale(Scale).
func (n Normalization) Matrix() math.Mat4 {
	return math.Translate(n.Offset.X, n.Offset.Y, n.Offset.Z).
		Mul(math.Scale(n.Scale, n.Scale, n.Scale))
}
