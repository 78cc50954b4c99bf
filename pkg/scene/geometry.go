package scene

import "github.com/Faultbox/partmesh/pkg/math"

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3 `json:"min"`
	Max math.Vec3 `json:"max"`
}

// Size returns the box extent along each axis.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the box midpoint.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Triangle is one world-space facet with its unit normal.
type Triangle struct {
	Normal   math.Vec3
	Vertices [3]math.Vec3
}
