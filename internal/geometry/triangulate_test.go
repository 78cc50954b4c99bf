package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/partmesh/pkg/math"
	"github.com/Faultbox/partmesh/pkg/scene"
)

var quad = []math.Vec3{
	{X: 0, Y: 0, Z: 0},
	{X: 1, Y: 0, Z: 0},
	{X: 1, Y: 1, Z: 0},
	{X: 0, Y: 1, Z: 0},
}

func TestTriangulate_IndexedQuad(t *testing.T) {
	tris, err := Triangulate(quad, []uint32{0, 1, 2, 2, 3, 0}, scene.ModeTriangles)
	require.NoError(t, err)
	require.Len(t, tris, 2)

	assert.Equal(t, [3]math.Vec3{quad[0], quad[1], quad[2]}, tris[0].Vertices)
	assert.Equal(t, [3]math.Vec3{quad[2], quad[3], quad[0]}, tris[1].Vertices)
	for _, tri := range tris {
		assert.Equal(t, math.Vec3{Z: 1}, tri.Normal)
	}
}

func TestTriangulate_NonIndexedDropsRemainder(t *testing.T) {
	tris, err := Triangulate(quad, nil, scene.ModeTriangles)
	require.NoError(t, err)
	require.Len(t, tris, 1)
	assert.Equal(t, [3]math.Vec3{quad[0], quad[1], quad[2]}, tris[0].Vertices)
}

func TestTriangulate_IndexedDropsRemainder(t *testing.T) {
	tris, err := Triangulate(quad, []uint32{0, 1, 2, 3}, scene.ModeTriangles)
	require.NoError(t, err)
	assert.Len(t, tris, 1)
}

func TestTriangulate_Strip(t *testing.T) {
	// 0-1-3-2 strip covers the quad with consistent winding.
	tris, err := Triangulate(quad, []uint32{0, 1, 3, 2}, scene.ModeTriangleStrip)
	require.NoError(t, err)
	require.Len(t, tris, 2)
	assert.Equal(t, [3]math.Vec3{quad[0], quad[1], quad[3]}, tris[0].Vertices)
	assert.Equal(t, [3]math.Vec3{quad[1], quad[2], quad[3]}, tris[1].Vertices)
	for _, tri := range tris {
		assert.Equal(t, math.Vec3{Z: 1}, tri.Normal)
	}
}

func TestTriangulate_Fan(t *testing.T) {
	tris, err := Triangulate(quad, nil, scene.ModeTriangleFan)
	require.NoError(t, err)
	require.Len(t, tris, 2)
	assert.Equal(t, [3]math.Vec3{quad[1], quad[2], quad[0]}, tris[0].Vertices)
	assert.Equal(t, [3]math.Vec3{quad[2], quad[3], quad[0]}, tris[1].Vertices)
	for _, tri := range tris {
		assert.Equal(t, math.Vec3{Z: 1}, tri.Normal)
	}
}

func TestTriangulate_IndexOutOfRange(t *testing.T) {
	tris, err := Triangulate(quad, []uint32{0, 1, 2, 2, 3, 4}, scene.ModeTriangles)
	assert.ErrorIs(t, err, scene.ErrUnresolvableReference)
	assert.Nil(t, tris)
}

func TestTriangulate_UnsupportedMode(t *testing.T) {
	_, err := Triangulate(quad, nil, scene.ModePoints)
	assert.ErrorIs(t, err, ErrUnsupportedMode)
}

func TestFaceNormal_Degenerate(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c math.Vec3
	}{
		{"repeated vertex", math.Vec3{X: 1}, math.Vec3{X: 1}, math.Vec3{Y: 1}},
		{"collinear", math.Vec3{}, math.Vec3{X: 1}, math.Vec3{X: 2}},
		{"single point", math.Vec3{Z: 3}, math.Vec3{Z: 3}, math.Vec3{Z: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, math.Vec3{}, FaceNormal(tt.a, tt.b, tt.c))
		})
	}
}

func TestFaceNormal_Winding(t *testing.T) {
	a, b, c := math.Vec3{}, math.Vec3{X: 2}, math.Vec3{Y: 5}
	assert.Equal(t, math.Vec3{Z: 1}, FaceNormal(a, b, c))
	assert.Equal(t, math.Vec3{Z: -1}, FaceNormal(a, c, b))
}

// unitCube returns the 12 outward-wound facets of [0,1]^3.
func unitCube() []scene.Triangle {
	v := func(x, y, z float64) math.Vec3 { return math.Vec3{X: x, Y: y, Z: z} }
	faces := [][4]math.Vec3{
		{v(0, 0, 0), v(0, 1, 0), v(1, 1, 0), v(1, 0, 0)}, // -z
		{v(0, 0, 1), v(1, 0, 1), v(1, 1, 1), v(0, 1, 1)}, // +z
		{v(0, 0, 0), v(1, 0, 0), v(1, 0, 1), v(0, 0, 1)}, // -y
		{v(0, 1, 0), v(0, 1, 1), v(1, 1, 1), v(1, 1, 0)}, // +y
		{v(0, 0, 0), v(0, 0, 1), v(0, 1, 1), v(0, 1, 0)}, // -x
		{v(1, 0, 0), v(1, 1, 0), v(1, 1, 1), v(1, 0, 1)}, // +x
	}
	var tris []scene.Triangle
	for _, f := range faces {
		tris = append(tris, NewTriangle(f[0], f[1], f[2]), NewTriangle(f[2], f[3], f[0]))
	}
	return tris
}

func TestMeasurements_UnitCube(t *testing.T) {
	cube := unitCube()
	assert.InDelta(t, 6.0, SurfaceArea(cube), 1e-12)
	assert.InDelta(t, 1.0, SignedVolume(cube), 1e-12)

	for _, tri := range cube {
		c := tri.Vertices[0].Add(tri.Vertices[1]).Add(tri.Vertices[2]).Scale(1.0 / 3)
		outward := c.Sub(math.Vec3{X: 0.5, Y: 0.5, Z: 0.5})
		assert.Positive(t, tri.Normal.Dot(outward))
	}
}
