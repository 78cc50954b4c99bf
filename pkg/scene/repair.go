package scene

import "fmt"

// RepairGenerator is written into asset metadata inserted by Repair.
const RepairGenerator = "partmesh repair"

// Report lists the fixes applied by Repair, in order.
type Report struct {
	Fixes []string
}

// Empty reports whether no fix was needed.
func (r Report) Empty() bool {
	return len(r.Fixes) == 0
}

func (r *Report) add(format string, args ...any) {
	r.Fixes = append(r.Fixes, fmt.Sprintf(format, args...))
}

// Repair fills in elements that upstream generators are known to omit so
// the document can be exported. It only adds missing elements and clamps
// out-of-range material indices; well-formed elements are never removed or
// reordered. Running it twice is the same as running it once.
func Repair(d *Document) Report {
	var r Report

	if d.Asset == nil {
		d.Asset = &Asset{Version: "2.0", Generator: RepairGenerator}
		r.add("inserted default asset metadata")
	}

	if len(d.Nodes) == 0 {
		node := Node{Name: "root"}
		if len(d.Meshes) > 0 {
			mesh := 0
			node.Mesh = &mesh
			r.add("inserted node 0 referencing mesh 0")
		} else {
			r.add("inserted empty node 0")
		}
		d.Nodes = []Node{node}
	}

	if len(d.Scenes) == 0 {
		d.Scenes = []Scene{{Nodes: []int{0}}}
		r.add("inserted scene 0 referencing node 0")
	}

	repairMaterials(d, &r)
	repairAccessorBounds(d, &r)

	return r
}

func repairMaterials(d *Document, r *Report) {
	needsMaterial := false
	for _, m := range d.Meshes {
		for _, p := range m.Primitives {
			if p.Material != nil {
				needsMaterial = true
			}
		}
	}
	if needsMaterial && len(d.Materials) == 0 {
		d.Materials = []Material{DefaultMaterial()}
		r.add("inserted default material 0")
	}

	for mi := range d.Meshes {
		for pi := range d.Meshes[mi].Primitives {
			p := &d.Meshes[mi].Primitives[pi]
			if p.Material == nil || inRange(*p.Material, len(d.Materials)) {
				continue
			}
			r.add("mesh %d primitive %d: clamped material %d to 0", mi, pi, *p.Material)
			clamped := 0
			p.Material = &clamped
		}
	}
}

func repairAccessorBounds(d *Document, r *Report) {
	for ai := range d.Accessors {
		a := &d.Accessors[ai]
		if len(a.Min) > 0 && len(a.Max) > 0 {
			continue
		}
		n := ComponentCount(a.Type)
		if n == 0 {
			continue
		}
		if len(a.Min) == 0 {
			a.Min = filled(n, -1)
		}
		if len(a.Max) == 0 {
			a.Max = filled(n, 1)
		}
		a.BoundsPlaceholder = true
		r.add("accessor %d: placeholder min/max", ai)
	}
}

// DefaultMaterial is the material inserted when primitives reference one
// that does not exist.
func DefaultMaterial() Material {
	metallic, roughness := 0.0, 0.5
	return Material{
		Name: "default",
		PBRMetallicRoughness: &PBRMetallicRoughness{
			BaseColorFactor: []float64{0.8, 0.8, 0.8, 1},
			MetallicFactor:  &metallic,
			RoughnessFactor: &roughness,
		},
	}
}

func filled(n int, v float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}
