// Package geometry turns a validated scene document into world-space
// triangles: buffer resolution, scene graph transforms, bounds and
// normalization, triangulation.
package geometry

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/partmesh/pkg/encoding"
	"github.com/Faultbox/partmesh/pkg/scene"
)

// Resolver materializes accessor data. Buffer bytes are resolved at most
// once per buffer and shared by every accessor reading from it. A Resolver
// belongs to a single export and never modifies the document.
type Resolver struct {
	doc   *scene.Document
	slots []bufferSlot
}

type bufferSlot struct {
	once sync.Once
	data []byte
	err  error
}

// NewResolver creates a resolver for doc.
func NewResolver(doc *scene.Document) *Resolver {
	return &Resolver{
		doc:   doc,
		slots: make([]bufferSlot, len(doc.Buffers)),
	}
}

// Preload resolves every buffer up front, fanning inline decoding out over
// at most workers goroutines. Per-buffer failures are remembered and
// reported by the accessors that need the buffer; only cancellation is
// returned here.
func (r *Resolver) Preload(ctx context.Context, workers int) error {
	if workers < 1 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range r.slots {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r.BufferData(i)
			return nil
		})
	}
	return g.Wait()
}

// BufferData returns the raw bytes of buffer i.
func (r *Resolver) BufferData(i int) ([]byte, error) {
	if i < 0 || i >= len(r.slots) {
		return nil, fmt.Errorf("%w: buffer %d (%d buffers)", scene.ErrUnresolvableReference, i, len(r.slots))
	}
	s := &r.slots[i]
	s.once.Do(func() {
		s.data, s.err = r.loadBuffer(i)
	})
	return s.data, s.err
}

func (r *Resolver) loadBuffer(i int) ([]byte, error) {
	b := &r.doc.Buffers[i]
	switch {
	case b.HasData():
		return b.Data(), nil
	case encoding.IsDataURI(b.URI):
		data, err := encoding.DecodeDataURI(b.URI)
		if err != nil {
			return nil, fmt.Errorf("%w: buffer %d: decoding inline data: %v", scene.ErrUnresolvableReference, i, err)
		}
		return data, nil
	case b.URI == "":
		return nil, fmt.Errorf("%w: buffer %d has no data", scene.ErrUnresolvableReference, i)
	default:
		return nil, fmt.Errorf("%w: buffer %d uri %q was not supplied", scene.ErrUnresolvableReference, i, b.URI)
	}
}
