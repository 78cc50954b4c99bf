// Package scene holds the in-memory scene document: nodes, meshes,
// accessors, buffer views, buffers and materials, addressed by integer
// handle. It has no geometry behaviour beyond structural validation and the
// repair pass.
package scene

import "fmt"

// Accessor component types.
const (
	ComponentByte          = 5120
	ComponentUnsignedByte  = 5121
	ComponentShort         = 5122
	ComponentUnsignedShort = 5123
	ComponentUnsignedInt   = 5125
	ComponentFloat         = 5126
)

// Accessor element shapes.
const (
	TypeScalar = "SCALAR"
	TypeVec2   = "VEC2"
	TypeVec3   = "VEC3"
	TypeVec4   = "VEC4"
	TypeMat2   = "MAT2"
	TypeMat3   = "MAT3"
	TypeMat4   = "MAT4"
)

// Primitive topology modes.
const (
	ModePoints        = 0
	ModeLines         = 1
	ModeLineLoop      = 2
	ModeLineStrip     = 3
	ModeTriangles     = 4
	ModeTriangleStrip = 5
	ModeTriangleFan   = 6
)

// AttributePosition is the primitive attribute holding vertex positions.
const AttributePosition = "POSITION"

// Document is a parsed scene.
type Document struct {
	Asset       *Asset       `json:"asset,omitempty"`
	Scene       *int         `json:"scene,omitempty"`
	Scenes      []Scene      `json:"scenes,omitempty"`
	Nodes       []Node       `json:"nodes,omitempty"`
	Meshes      []Mesh       `json:"meshes,omitempty"`
	Materials   []Material   `json:"materials,omitempty"`
	Accessors   []Accessor   `json:"accessors,omitempty"`
	BufferViews []BufferView `json:"bufferViews,omitempty"`
	Buffers     []Buffer     `json:"buffers,omitempty"`
}

// Asset is the document metadata block.
type Asset struct {
	Version    string `json:"version"`
	Generator  string `json:"generator,omitempty"`
	Copyright  string `json:"copyright,omitempty"`
	MinVersion string `json:"minVersion,omitempty"`
}

// Scene lists the root nodes of one scene.
type Scene struct {
	Name  string `json:"name,omitempty"`
	Nodes []int  `json:"nodes,omitempty"`
}

// Node is one element of the node forest. Either Matrix (16 values,
// column-major) or the Translation/Rotation/Scale triple describes its
// local transform.
type Node struct {
	Name        string    `json:"name,omitempty"`
	Mesh        *int      `json:"mesh,omitempty"`
	Children    []int     `json:"children,omitempty"`
	Matrix      []float64 `json:"matrix,omitempty"`
	Translation []float64 `json:"translation,omitempty"`
	Rotation    []float64 `json:"rotation,omitempty"`
	Scale       []float64 `json:"scale,omitempty"`
}

// HasMatrix reports whether the node carries an explicit matrix.
func (n *Node) HasMatrix() bool {
	return len(n.Matrix) > 0
}

// Mesh is an ordered list of primitives.
type Mesh struct {
	Name       string      `json:"name,omitempty"`
	Primitives []Primitive `json:"primitives"`
}

// Primitive is one drawable geometry unit.
type Primitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices,omitempty"`
	Material   *int           `json:"material,omitempty"`
	Mode       *int           `json:"mode,omitempty"`
}

// PositionAccessor returns the POSITION accessor index.
func (p *Primitive) PositionAccessor() (int, bool) {
	idx, ok := p.Attributes[AttributePosition]
	return idx, ok
}

// TopologyMode returns the primitive mode, triangles when unset.
func (p *Primitive) TopologyMode() int {
	if p.Mode == nil {
		return ModeTriangles
	}
	return *p.Mode
}

// Material is kept for completeness; the exporter only needs it to exist.
type Material struct {
	Name                 string                `json:"name,omitempty"`
	PBRMetallicRoughness *PBRMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
	DoubleSided          bool                  `json:"doubleSided,omitempty"`
}

// PBRMetallicRoughness holds the base color factors of a material.
type PBRMetallicRoughness struct {
	BaseColorFactor []float64 `json:"baseColorFactor,omitempty"`
	MetallicFactor  *float64  `json:"metallicFactor,omitempty"`
	RoughnessFactor *float64  `json:"roughnessFactor,omitempty"`
}

// Accessor describes how to read typed elements out of a buffer view.
type Accessor struct {
	Name          string    `json:"name,omitempty"`
	BufferView    *int      `json:"bufferView,omitempty"`
	ByteOffset    int       `json:"byteOffset,omitempty"`
	ComponentType int       `json:"componentType"`
	Normalized    bool      `json:"normalized,omitempty"`
	Count         int       `json:"count"`
	Type          string    `json:"type"`
	Min           []float64 `json:"min,omitempty"`
	Max           []float64 `json:"max,omitempty"`

	// BoundsPlaceholder marks Min/Max filled in by Repair. They are never
	// authoritative.
	BoundsPlaceholder bool `json:"-"`
}

// BufferView is a byte range of a buffer.
type BufferView struct {
	Buffer     int `json:"buffer"`
	ByteOffset int `json:"byteOffset,omitempty"`
	ByteLength int `json:"byteLength"`
	ByteStride int `json:"byteStride,omitempty"`
}

// Buffer is a block of raw bytes, either inline-encoded in URI or supplied
// out of band.
type Buffer struct {
	URI        string `json:"uri,omitempty"`
	ByteLength int    `json:"byteLength"`

	data []byte
}

// SetData attaches already-decoded bytes to the buffer.
func (b *Buffer) SetData(data []byte) {
	b.data = data
}

// Data returns the out-of-band bytes, or nil.
func (b *Buffer) Data() []byte {
	return b.data
}

// HasData reports whether bytes were supplied out of band.
func (b *Buffer) HasData() bool {
	return b.data != nil
}

// ComponentSize returns the byte size of one component, or 0 for an
// unknown component type.
func ComponentSize(componentType int) int {
	switch componentType {
	case ComponentByte, ComponentUnsignedByte:
		return 1
	case ComponentShort, ComponentUnsignedShort:
		return 2
	case ComponentUnsignedInt, ComponentFloat:
		return 4
	default:
		return 0
	}
}

// ComponentCount returns the number of components of an element shape, or
// 0 for an unknown shape.
func ComponentCount(typ string) int {
	switch typ {
	case TypeScalar:
		return 1
	case TypeVec2:
		return 2
	case TypeVec3:
		return 3
	case TypeVec4, TypeMat2:
		return 4
	case TypeMat3:
		return 9
	case TypeMat4:
		return 16
	default:
		return 0
	}
}

// ActiveScene returns the index of the scene to export, or -1 when the
// document declares no scene.
func (d *Document) ActiveScene() int {
	if len(d.Scenes) == 0 {
		return -1
	}
	if d.Scene != nil && *d.Scene >= 0 && *d.Scene < len(d.Scenes) {
		return *d.Scene
	}
	return 0
}

// Stats summarizes element counts for logging.
func (d *Document) Stats() string {
	return fmt.Sprintf("scenes=%d nodes=%d meshes=%d accessors=%d bufferViews=%d buffers=%d materials=%d",
		len(d.Scenes), len(d.Nodes), len(d.Meshes), len(d.Accessors),
		len(d.BufferViews), len(d.Buffers), len(d.Materials))
}

// PrimitiveCount returns the total number of primitives across all meshes.
func (d *Document) PrimitiveCount() int {
	total := 0
	for _, m := range d.Meshes {
		total += len(m.Primitives)
	}
	return total
}
