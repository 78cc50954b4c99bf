package geometry

import (
	"github.com/Faultbox/partmesh/pkg/scene"
)

// SurfaceArea sums the area of every facet.
func SurfaceArea(tris []scene.Triangle) float64 {
	var area float64
	for _, t := range tris {
		v := t.Vertices
		area += v[1].Sub(v[0]).Cross(v[2].Sub(v[0])).Length() / 2
	}
	return area
}

// SignedVolume returns the enclosed volume by the divergence theorem. It is
// only meaningful for closed meshes; counter-clockwise outward winding gives
// a positive value.
func SignedVolume(tris []scene.Triangle) float64 {
	var vol float64
	for _, t := range tris {
		v := t.Vertices
		vol += v[0].Dot(v[1].Cross(v[2])) / 6
	}
	return vol
}
