package geometry

import (
	"encoding/binary"
	"fmt"
	gomath "math"
	"strconv"

	"github.com/Faultbox/partmesh/pkg/math"
	"github.com/Faultbox/partmesh/pkg/scene"
)

// MaxUnbackedCount caps the element count of an accessor without a buffer
// view. Such accessors read as zeros and have no byte range to bound them.
const MaxUnbackedCount = 1 << 20

// Floats reads accessor ai as count*components float64 values. Integer
// components are converted, and mapped to [-1, 1] or [0, 1] when the
// accessor is normalized.
func (r *Resolver) Floats(ai int) ([]float64, error) {
	a, raw, stride, err := r.elements(ai)
	if err != nil {
		return nil, err
	}
	n := scene.ComponentCount(a.Type)
	size := scene.ComponentSize(a.ComponentType)
	out := make([]float64, a.Count*n)
	if raw == nil {
		return out, nil
	}
	for e := 0; e < a.Count; e++ {
		base := e * stride
		for c := 0; c < n; c++ {
			out[e*n+c] = readComponent(raw[base+c*size:], a.ComponentType, a.Normalized)
		}
	}
	return out, nil
}

// Indices reads accessor ai as unsigned integer indices.
func (r *Resolver) Indices(ai int) ([]uint32, error) {
	if ai < 0 || ai >= len(r.doc.Accessors) {
		return nil, fmt.Errorf("%w: index accessor %d (%d accessors)",
			scene.ErrUnresolvableReference, ai, len(r.doc.Accessors))
	}
	a := &r.doc.Accessors[ai]
	switch a.ComponentType {
	case scene.ComponentUnsignedByte, scene.ComponentUnsignedShort, scene.ComponentUnsignedInt:
	default:
		return nil, fmt.Errorf("%w: index accessor %d uses component type %d",
			scene.ErrUnsupportedComponentType, ai, a.ComponentType)
	}
	if a.Type != scene.TypeScalar {
		return nil, fmt.Errorf("%w: index accessor %d has type %s, want %s",
			scene.ErrUnsupportedComponentType, ai, a.Type, scene.TypeScalar)
	}

	a, raw, stride, err := r.elements(ai)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, a.Count)
	if raw == nil {
		return out, nil
	}
	for e := range out {
		b := raw[e*stride:]
		switch a.ComponentType {
		case scene.ComponentUnsignedByte:
			out[e] = uint32(b[0])
		case scene.ComponentUnsignedShort:
			out[e] = uint32(binary.LittleEndian.Uint16(b))
		default:
			out[e] = binary.LittleEndian.Uint32(b)
		}
	}
	return out, nil
}

// Positions reads the POSITION attribute of a primitive.
func (r *Resolver) Positions(p *scene.Primitive) ([]math.Vec3, error) {
	ai, ok := p.PositionAccessor()
	if !ok {
		return nil, fmt.Errorf("%w: primitive has no %s attribute", scene.ErrMissingAttribute, scene.AttributePosition)
	}
	if ai < 0 || ai >= len(r.doc.Accessors) {
		return nil, fmt.Errorf("%w: %s accessor %d (%d accessors)",
			scene.ErrUnresolvableReference, scene.AttributePosition, ai, len(r.doc.Accessors))
	}
	if t := r.doc.Accessors[ai].Type; t != scene.TypeVec3 {
		return nil, fmt.Errorf("%w: %s accessor %d has type %s, want %s",
			scene.ErrMissingAttribute, scene.AttributePosition, ai, t, scene.TypeVec3)
	}
	flat, err := r.Floats(ai)
	if err != nil {
		return nil, err
	}
	out := make([]math.Vec3, len(flat)/3)
	for i := range out {
		out[i] = math.Vec3{X: flat[i*3], Y: flat[i*3+1], Z: flat[i*3+2]}
	}
	return out, nil
}

// PrimitiveIndices reads the index accessor of a primitive. A non-indexed
// primitive yields nil without error.
func (r *Resolver) PrimitiveIndices(p *scene.Primitive) ([]uint32, error) {
	if p.Indices == nil {
		return nil, nil
	}
	return r.Indices(*p.Indices)
}

// elements locates the bytes backing accessor ai. raw starts at the first
// element; stride is the distance between elements. raw is nil for an
// accessor without a buffer view (all zeros).
func (r *Resolver) elements(ai int) (a *scene.Accessor, raw []byte, stride int, err error) {
	if ai < 0 || ai >= len(r.doc.Accessors) {
		return nil, nil, 0, fmt.Errorf("%w: accessor %d (%d accessors)",
			scene.ErrUnresolvableReference, ai, len(r.doc.Accessors))
	}
	a = &r.doc.Accessors[ai]

	size := scene.ComponentSize(a.ComponentType)
	if size == 0 {
		return nil, nil, 0, fmt.Errorf("%w: accessor %d component type %d",
			scene.ErrUnsupportedComponentType, ai, a.ComponentType)
	}
	n := scene.ComponentCount(a.Type)
	if n == 0 {
		return nil, nil, 0, fmt.Errorf("%w: accessor %d element type %q",
			scene.ErrUnsupportedComponentType, ai, a.Type)
	}
	if a.Count < 0 {
		return nil, nil, 0, fmt.Errorf("%w: accessor %d has count %d",
			scene.ErrUnresolvableReference, ai, a.Count)
	}
	if a.BufferView == nil {
		if a.Count > MaxUnbackedCount {
			return nil, nil, 0, fmt.Errorf("%w: accessor %d has no buffer view and count %d exceeds %d",
				scene.ErrUnresolvableReference, ai, a.Count, MaxUnbackedCount)
		}
		return a, nil, 0, nil
	}
	if a.Count == 0 {
		return a, nil, 0, nil
	}

	if *a.BufferView < 0 || *a.BufferView >= len(r.doc.BufferViews) {
		return nil, nil, 0, fmt.Errorf("%w: accessor %d buffer view %d (%d views)",
			scene.ErrUnresolvableReference, ai, *a.BufferView, len(r.doc.BufferViews))
	}
	view := &r.doc.BufferViews[*a.BufferView]
	data, err := r.BufferData(view.Buffer)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("accessor %d: %w", ai, err)
	}

	viewEnd := view.ByteOffset + view.ByteLength
	if viewEnd > len(data) {
		return nil, nil, 0, fmt.Errorf("%w: buffer view %d ends at byte %d, buffer %d has %d bytes",
			scene.ErrUnresolvableReference, *a.BufferView, viewEnd, view.Buffer, len(data))
	}

	elemSize := size * n
	stride = elemSize
	if view.ByteStride > 0 {
		stride = view.ByteStride
	}
	start := view.ByteOffset + a.ByteOffset
	// The last element must start at or before viewEnd-elemSize.
	room := viewEnd - start - elemSize
	if view.ByteOffset < 0 || a.ByteOffset < 0 || room < 0 || a.Count-1 > room/stride {
		return nil, nil, 0, fmt.Errorf("%w: accessor %d reads bytes [%d, %s), buffer view %d ends at %d",
			scene.ErrUnresolvableReference, ai, start, readEnd(start, stride, elemSize, a.Count), *a.BufferView, viewEnd)
	}
	end := start + stride*(a.Count-1) + elemSize
	return a, data[start:end], stride, nil
}

// readEnd formats the end of an accessor's byte range, which may not fit in
// an int for hostile counts.
func readEnd(start, stride, elemSize, count int) string {
	if count-1 > (gomath.MaxInt-start-elemSize)/stride {
		return "overflow"
	}
	return strconv.Itoa(start + stride*(count-1) + elemSize)
}

func readComponent(b []byte, componentType int, normalized bool) float64 {
	switch componentType {
	case scene.ComponentFloat:
		return float64(gomath.Float32frombits(binary.LittleEndian.Uint32(b)))
	case scene.ComponentByte:
		v := float64(int8(b[0]))
		if normalized {
			return gomath.Max(v/127, -1)
		}
		return v
	case scene.ComponentUnsignedByte:
		v := float64(b[0])
		if normalized {
			return v / 255
		}
		return v
	case scene.ComponentShort:
		v := float64(int16(binary.LittleEndian.Uint16(b)))
		if normalized {
			return gomath.Max(v/32767, -1)
		}
		return v
	case scene.ComponentUnsignedShort:
		v := float64(binary.LittleEndian.Uint16(b))
		if normalized {
			return v / 65535
		}
		return v
	default:
		v := float64(binary.LittleEndian.Uint32(b))
		if normalized {
			return v / 4294967295
		}
		return v
	}
}
