package geometry

import (
	"fmt"

	"github.com/Faultbox/partmesh/pkg/math"
	"github.com/Faultbox/partmesh/pkg/scene"
)

// Triangulate builds facets from positions. Indexed primitives take index
// triples, non-indexed ones take consecutive vertex triples; trailing
// indices or vertices that do not complete a triangle are dropped. Strips
// and fans are expanded to independent triangles with the winding of the
// source. An out-of-range index fails the whole primitive.
func Triangulate(positions []math.Vec3, indices []uint32, mode int) ([]scene.Triangle, error) {
	if indices != nil {
		if err := CheckIndices(indices, len(positions)); err != nil {
			return nil, err
		}
	}
	n := len(positions)
	if indices != nil {
		n = len(indices)
	}
	at := func(i int) math.Vec3 {
		if indices != nil {
			return positions[indices[i]]
		}
		return positions[i]
	}

	var tris []scene.Triangle
	switch mode {
	case scene.ModeTriangles:
		tris = make([]scene.Triangle, 0, n/3)
		for i := 0; i+2 < n; i += 3 {
			tris = append(tris, NewTriangle(at(i), at(i+1), at(i+2)))
		}
	case scene.ModeTriangleStrip:
		for i := 0; i+2 < n; i++ {
			if i%2 == 0 {
				tris = append(tris, NewTriangle(at(i), at(i+1), at(i+2)))
			} else {
				tris = append(tris, NewTriangle(at(i), at(i+2), at(i+1)))
			}
		}
	case scene.ModeTriangleFan:
		for i := 1; i+1 < n; i++ {
			tris = append(tris, NewTriangle(at(i), at(i+1), at(0)))
		}
	default:
		return nil, fmt.Errorf("%w: mode %d", ErrUnsupportedMode, mode)
	}
	return tris, nil
}

// NewTriangle returns the facet a, b, c with its face normal.
func NewTriangle(a, b, c math.Vec3) scene.Triangle {
	return scene.Triangle{
		Normal:   FaceNormal(a, b, c),
		Vertices: [3]math.Vec3{a, b, c},
	}
}

// FaceNormal returns normalize((b-a) x (c-a)), or the zero vector for a
// degenerate triangle.
func FaceNormal(a, b, c math.Vec3) math.Vec3 {
	return b.Sub(a).Cross(c.Sub(a)).Normalize()
}
