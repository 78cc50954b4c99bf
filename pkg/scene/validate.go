package scene

import (
	"errors"
	"fmt"
)

// Validate checks that every index in the document resolves and that the
// node graph has no cycles. It runs after Repair and before any geometry
// work. All problems are reported together.
func (d *Document) Validate() error {
	var errs []error
	ref := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrUnresolvableReference}, args...)...))
	}
	syntax := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidSceneSyntax}, args...)...))
	}

	if d.Scene != nil && len(d.Scenes) > 0 && (*d.Scene < 0 || *d.Scene >= len(d.Scenes)) {
		ref("active scene %d out of range (%d scenes)", *d.Scene, len(d.Scenes))
	}
	for si, s := range d.Scenes {
		for _, n := range s.Nodes {
			if !inRange(n, len(d.Nodes)) {
				ref("scene %d references node %d (%d nodes)", si, n, len(d.Nodes))
			}
		}
	}

	for ni := range d.Nodes {
		n := &d.Nodes[ni]
		if n.Mesh != nil && !inRange(*n.Mesh, len(d.Meshes)) {
			ref("node %d references mesh %d (%d meshes)", ni, *n.Mesh, len(d.Meshes))
		}
		for _, c := range n.Children {
			if !inRange(c, len(d.Nodes)) {
				ref("node %d references child %d (%d nodes)", ni, c, len(d.Nodes))
			}
		}
		if len(n.Matrix) != 0 && len(n.Matrix) != 16 {
			syntax("node %d matrix has %d values, want 16", ni, len(n.Matrix))
		}
		if len(n.Translation) != 0 && len(n.Translation) != 3 {
			syntax("node %d translation has %d values, want 3", ni, len(n.Translation))
		}
		if len(n.Rotation) != 0 && len(n.Rotation) != 4 {
			syntax("node %d rotation has %d values, want 4", ni, len(n.Rotation))
		}
		if len(n.Scale) != 0 && len(n.Scale) != 3 {
			syntax("node %d scale has %d values, want 3", ni, len(n.Scale))
		}
	}

	for mi, m := range d.Meshes {
		for pi, p := range m.Primitives {
			for name, a := range p.Attributes {
				if !inRange(a, len(d.Accessors)) {
					ref("mesh %d primitive %d attribute %s references accessor %d (%d accessors)",
						mi, pi, name, a, len(d.Accessors))
				}
			}
			if p.Indices != nil && !inRange(*p.Indices, len(d.Accessors)) {
				ref("mesh %d primitive %d indices reference accessor %d (%d accessors)",
					mi, pi, *p.Indices, len(d.Accessors))
			}
			if p.Material != nil && !inRange(*p.Material, len(d.Materials)) {
				ref("mesh %d primitive %d references material %d (%d materials)",
					mi, pi, *p.Material, len(d.Materials))
			}
		}
	}

	for ai, a := range d.Accessors {
		if a.BufferView != nil && !inRange(*a.BufferView, len(d.BufferViews)) {
			ref("accessor %d references buffer view %d (%d views)", ai, *a.BufferView, len(d.BufferViews))
		}
		if a.Count < 0 || a.ByteOffset < 0 {
			syntax("accessor %d has negative count or byte offset", ai)
		}
	}

	for vi, v := range d.BufferViews {
		if !inRange(v.Buffer, len(d.Buffers)) {
			ref("buffer view %d references buffer %d (%d buffers)", vi, v.Buffer, len(d.Buffers))
		}
		if v.ByteOffset < 0 || v.ByteLength < 0 || v.ByteStride < 0 {
			syntax("buffer view %d has a negative offset, length or stride", vi)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	// Cycle detection needs in-range children, so it runs last.
	return d.checkCycles()
}

// checkCycles walks the node graph depth first from every node.
func (d *Document) checkCycles() error {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make([]uint8, len(d.Nodes))

	var visit func(n int) error
	visit = func(n int) error {
		switch state[n] {
		case inProgress:
			return fmt.Errorf("%w: node %d is its own ancestor", ErrCyclicHierarchy, n)
		case done:
			return nil
		}
		state[n] = inProgress
		for _, c := range d.Nodes[n].Children {
			if err := visit(c); err != nil {
				return err
			}
		}
		state[n] = done
		return nil
	}

	for n := range d.Nodes {
		if err := visit(n); err != nil {
			return err
		}
	}
	return nil
}

func inRange(i, n int) bool {
	return i >= 0 && i < n
}
