package geometry

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/partmesh/pkg/math"
	"github.com/Faultbox/partmesh/pkg/scene"
)

// ErrUnsupportedMode is reported for primitives that do not describe
// triangles (points and lines).
var ErrUnsupportedMode = errors.New("geometry: unsupported primitive mode")

// WorldPrimitive is one primitive instance with its vertices in world space.
type WorldPrimitive struct {
	Node      int
	Mesh      int
	Primitive int
	Mode      int

	// Positions are world-space vertices, Indices index into them (nil for
	// non-indexed primitives).
	Positions []math.Vec3
	Indices   []uint32

	// Mirrored is set when the world matrix flips handedness.
	Mirrored bool
}

// Warning records a primitive skipped during the transform.
type Warning struct {
	Node      int
	Mesh      int
	Primitive int
	Err       error
}

func (w Warning) String() string {
	return fmt.Sprintf("node %d mesh %d primitive %d: %v", w.Node, w.Mesh, w.Primitive, w.Err)
}

// World is the flattened scene.
type World struct {
	Primitives []WorldPrimitive
	Warnings   []Warning
}

// VertexCount returns the number of world-space vertices.
func (w *World) VertexCount() int {
	n := 0
	for i := range w.Primitives {
		n += len(w.Primitives[i].Positions)
	}
	return n
}

type primKey struct{ mesh, prim int }

type decodedPrim struct {
	positions []math.Vec3
	indices   []uint32
	err       error
}

type transformer struct {
	ctx   context.Context
	doc   *scene.Document
	res   *Resolver
	log   *zap.Logger
	world *World
	cache map[primKey]*decodedPrim
}

// Transform walks the node hierarchy of the active scene and emits every
// mesh instance in world space. With no scene declared, every mesh-bearing
// node is treated as a root: it is emitted once with its own local matrix
// and its parents are ignored. doc must already be validated.
//
// A primitive that cannot be decoded is skipped and recorded as a Warning.
// Cancellation is checked between primitives and returns only ctx.Err().
func Transform(ctx context.Context, doc *scene.Document, res *Resolver, log *zap.Logger) (*World, error) {
	if log == nil {
		log = zap.NewNop()
	}
	t := &transformer{
		ctx:   ctx,
		doc:   doc,
		res:   res,
		log:   log,
		world: &World{},
		cache: make(map[primKey]*decodedPrim),
	}

	if si := doc.ActiveScene(); si >= 0 {
		for _, root := range doc.Scenes[si].Nodes {
			if err := t.visit(root, math.Identity()); err != nil {
				return nil, err
			}
		}
		return t.world, nil
	}

	for ni := range doc.Nodes {
		if doc.Nodes[ni].Mesh == nil {
			continue
		}
		if err := t.emitNode(ni, LocalMatrix(&doc.Nodes[ni])); err != nil {
			return nil, err
		}
	}
	return t.world, nil
}

// LocalMatrix returns the node's local transform: the explicit matrix when
// present, otherwise T * R * S.
func LocalMatrix(n *scene.Node) math.Mat4 {
	if n.HasMatrix() {
		m, _ := math.Mat4FromSlice(n.Matrix)
		return m
	}
	t := math.Vec3FromSlice(n.Translation, math.Vec3{})
	r := math.QuatFromSlice(n.Rotation).Normalize()
	s := math.Vec3FromSlice(n.Scale, math.Vec3{X: 1, Y: 1, Z: 1})
	return math.FromTRS(t, r, s)
}

func (t *transformer) visit(ni int, parent math.Mat4) error {
	n := &t.doc.Nodes[ni]
	world := parent.Mul(LocalMatrix(n))
	if err := t.emitNode(ni, world); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := t.visit(c, world); err != nil {
			return err
		}
	}
	return nil
}

func (t *transformer) emitNode(ni int, world math.Mat4) error {
	n := &t.doc.Nodes[ni]
	if n.Mesh == nil {
		return nil
	}
	mi := *n.Mesh
	mirrored := world.Determinant3x3() < 0
	if mirrored {
		t.log.Debug("node transform mirrors geometry", zap.Int("node", ni), zap.String("name", n.Name))
	}

	for pi := range t.doc.Meshes[mi].Primitives {
		if err := t.ctx.Err(); err != nil {
			return err
		}
		p := &t.doc.Meshes[mi].Primitives[pi]
		d := t.decode(mi, pi, p)
		if d.err != nil {
			w := Warning{Node: ni, Mesh: mi, Primitive: pi, Err: d.err}
			t.world.Warnings = append(t.world.Warnings, w)
			t.log.Warn("skipping primitive",
				zap.Int("node", ni), zap.Int("mesh", mi), zap.Int("primitive", pi), zap.Error(d.err))
			continue
		}

		positions := make([]math.Vec3, len(d.positions))
		for i, v := range d.positions {
			positions[i] = world.TransformPoint(v)
		}
		t.world.Primitives = append(t.world.Primitives, WorldPrimitive{
			Node:      ni,
			Mesh:      mi,
			Primitive: pi,
			Mode:      p.TopologyMode(),
			Positions: positions,
			Indices:   d.indices,
			Mirrored:  mirrored,
		})
	}
	return nil
}

// decode reads a primitive's local vertices and indices once per export;
// instances of the same mesh share the result.
func (t *transformer) decode(mi, pi int, p *scene.Primitive) *decodedPrim {
	key := primKey{mi, pi}
	if d, ok := t.cache[key]; ok {
		return d
	}
	d := &decodedPrim{}
	t.cache[key] = d

	switch mode := p.TopologyMode(); mode {
	case scene.ModeTriangles, scene.ModeTriangleStrip, scene.ModeTriangleFan:
	default:
		d.err = fmt.Errorf("%w: mode %d", ErrUnsupportedMode, mode)
		return d
	}

	d.positions, d.err = t.res.Positions(p)
	if d.err != nil {
		return d
	}
	d.indices, d.err = t.res.PrimitiveIndices(p)
	if d.err != nil {
		return d
	}
	d.err = CheckIndices(d.indices, len(d.positions))
	return d
}

// CheckIndices fails when an index does not address a vertex.
func CheckIndices(indices []uint32, vertexCount int) error {
	for i, idx := range indices {
		if int(idx) >= vertexCount {
			return fmt.Errorf("%w: index %d at position %d, primitive has %d vertices",
				scene.ErrUnresolvableReference, idx, i, vertexCount)
		}
	}
	return nil
}
