package geometry

import (
	"encoding/binary"
	gomath "math"

	"github.com/Faultbox/partmesh/pkg/scene"
)

// docBuilder assembles small documents backed by a single out-of-band
// buffer.
type docBuilder struct {
	doc *scene.Document
	bin []byte
}

func newDocBuilder() *docBuilder {
	return &docBuilder{doc: &scene.Document{Asset: &scene.Asset{Version: "2.0"}}}
}

func (b *docBuilder) view(data []byte, stride int) int {
	for len(b.bin)%4 != 0 {
		b.bin = append(b.bin, 0)
	}
	b.doc.BufferViews = append(b.doc.BufferViews, scene.BufferView{
		Buffer:     0,
		ByteOffset: len(b.bin),
		ByteLength: len(data),
		ByteStride: stride,
	})
	b.bin = append(b.bin, data...)
	return len(b.doc.BufferViews) - 1
}

func (b *docBuilder) accessor(a scene.Accessor) int {
	b.doc.Accessors = append(b.doc.Accessors, a)
	return len(b.doc.Accessors) - 1
}

func (b *docBuilder) positions(xyz ...float32) int {
	v := b.view(float32Bytes(xyz), 0)
	return b.accessor(scene.Accessor{
		BufferView:    intPtr(v),
		ComponentType: scene.ComponentFloat,
		Count:         len(xyz) / 3,
		Type:          scene.TypeVec3,
	})
}

func (b *docBuilder) indices(idx ...uint16) int {
	data := make([]byte, 2*len(idx))
	for i, x := range idx {
		binary.LittleEndian.PutUint16(data[2*i:], x)
	}
	v := b.view(data, 0)
	return b.accessor(scene.Accessor{
		BufferView:    intPtr(v),
		ComponentType: scene.ComponentUnsignedShort,
		Count:         len(idx),
		Type:          scene.TypeScalar,
	})
}

// mesh adds a triangle-list mesh. idx may be nil for non-indexed geometry.
func (b *docBuilder) mesh(xyz []float32, idx []uint16) int {
	p := scene.Primitive{Attributes: map[string]int{scene.AttributePosition: b.positions(xyz...)}}
	if idx != nil {
		p.Indices = intPtr(b.indices(idx...))
	}
	b.doc.Meshes = append(b.doc.Meshes, scene.Mesh{Primitives: []scene.Primitive{p}})
	return len(b.doc.Meshes) - 1
}

func (b *docBuilder) node(n scene.Node) int {
	b.doc.Nodes = append(b.doc.Nodes, n)
	return len(b.doc.Nodes) - 1
}

func (b *docBuilder) scene(roots ...int) {
	b.doc.Scenes = append(b.doc.Scenes, scene.Scene{Nodes: roots})
}

func (b *docBuilder) build() *scene.Document {
	buf := scene.Buffer{ByteLength: len(b.bin)}
	buf.SetData(b.bin)
	b.doc.Buffers = []scene.Buffer{buf}
	return b.doc
}

func float32Bytes(values []float32) []byte {
	data := make([]byte, 4*len(values))
	for i, f := range values {
		binary.LittleEndian.PutUint32(data[4*i:], gomath.Float32bits(f))
	}
	return data
}

func intPtr(v int) *int {
	return &v
}

var unitTriangle = []float32{
	0, 0, 0,
	1, 0, 0,
	0, 1, 0,
}
