package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/partmesh/internal/geometry"
	"github.com/Faultbox/partmesh/pkg/formats"
	"github.com/Faultbox/partmesh/pkg/math"
	"github.com/Faultbox/partmesh/pkg/scene"
)

// Result is a finished export: the serialized mesh plus measurements of
// the geometry it contains.
type Result struct {
	RequestID string `json:"request_id"`
	Format    Format `json:"format"`
	Data      []byte `json:"-"`

	TriangleCount int `json:"triangle_count"`
	VertexCount   int `json:"vertex_count"`

	// WorldBounds covers the authored world-space vertices, or is the unit
	// box when there were none. EmptyGeometry is set when no triangle was
	// produced.
	WorldBounds   scene.Bounds           `json:"world_bounds"`
	EmptyGeometry bool                   `json:"empty_geometry"`
	Normalization geometry.Normalization `json:"normalization"`

	// ExportBounds and Dimensions describe the coordinates actually
	// written, after normalization, axis conversion and unit scale.
	ExportBounds scene.Bounds `json:"export_bounds"`
	Dimensions   math.Vec3    `json:"dimensions"`
	SurfaceArea  float64      `json:"surface_area"`
	Volume       float64      `json:"volume"`

	Repairs  []string `json:"repairs,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Mirrored bool     `json:"mirrored,omitempty"`
}

// Export decodes data and runs the whole pipeline. The serialized output is
// built in memory and returned only when complete.
func Export(ctx context.Context, data []byte, opts Options, log *zap.Logger) (*Result, error) {
	opts, log, err := prepare(opts, log)
	if err != nil {
		return nil, err
	}
	doc, err := formats.Decode(data, opts.Decode)
	if err != nil {
		return nil, err
	}
	return exportDocument(ctx, doc, opts, log)
}

// ExportFile reads a container from disk. External buffer URIs are
// resolved relative to the file unless opts.Decode.ResolveURI is set.
func ExportFile(ctx context.Context, path string, opts Options, log *zap.Logger) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if opts.Decode.ResolveURI == nil {
		opts.Decode.ResolveURI = formats.RelativeResolver(filepath.Dir(path))
	}
	return Export(ctx, data, opts, log)
}

// ExportDocument runs the pipeline on an already decoded document. The
// document is repaired in place unless opts.SkipRepair is set.
func ExportDocument(ctx context.Context, doc *scene.Document, opts Options, log *zap.Logger) (*Result, error) {
	opts, log, err := prepare(opts, log)
	if err != nil {
		return nil, err
	}
	return exportDocument(ctx, doc, opts, log)
}

func prepare(opts Options, log *zap.Logger) (Options, *zap.Logger, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return opts, nil, err
	}
	if opts.RequestID == "" {
		opts.RequestID = uuid.NewString()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return opts, log.With(zap.String("request_id", opts.RequestID)), nil
}

func exportDocument(ctx context.Context, doc *scene.Document, opts Options, log *zap.Logger) (*Result, error) {
	start := time.Now()
	res := &Result{RequestID: opts.RequestID, Format: opts.Format}
	log.Debug("decoded document", zap.String("stats", doc.Stats()))

	if !opts.SkipRepair {
		report := scene.Repair(doc)
		res.Repairs = report.Fixes
		for _, fix := range report.Fixes {
			log.Info("repaired document", zap.String("fix", fix))
		}
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	resolver := geometry.NewResolver(doc)
	if err := resolver.Preload(ctx, opts.Workers); err != nil {
		return nil, err
	}
	world, err := geometry.Transform(ctx, doc, resolver, log)
	if err != nil {
		return nil, err
	}
	for _, w := range world.Warnings {
		res.Warnings = append(res.Warnings, w.String())
	}

	res.WorldBounds, _ = geometry.ComputeBounds(world)

	res.Normalization = geometry.IdentityNormalization()
	if opts.ApplyDisplayNormalization {
		res.Normalization = geometry.Normalize(res.WorldBounds, opts.TargetExtent)
	}
	xf := math.Scale(opts.UnitScale, opts.UnitScale, opts.UnitScale).
		Mul(opts.UpAxis.Matrix()).
		Mul(res.Normalization.Matrix())

	tris, err := triangulate(ctx, world, xf, res, log)
	if err != nil {
		return nil, err
	}
	res.TriangleCount = len(tris)
	if len(tris) == 0 {
		res.EmptyGeometry = true
		res.Warnings = append(res.Warnings, scene.ErrEmptyGeometry.Error())
		log.Warn("export produced no triangles",
			zap.Int("vertices", world.VertexCount()), zap.Error(scene.ErrEmptyGeometry))
	}
	res.VertexCount = world.VertexCount()
	res.ExportBounds = geometry.BoundsOf(tris)
	res.Dimensions = res.ExportBounds.Size()
	res.SurfaceArea = geometry.SurfaceArea(tris)
	res.Volume = geometry.SignedVolume(tris)

	var buf bytes.Buffer
	if err := serialize(&buf, opts, tris); err != nil {
		return nil, fmt.Errorf("serializing %s: %w", opts.Format, err)
	}
	res.Data = buf.Bytes()

	log.Info("export complete",
		zap.String("format", string(opts.Format)),
		zap.Int("triangles", res.TriangleCount),
		zap.Int("bytes", len(res.Data)),
		zap.Int("warnings", len(res.Warnings)),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

func triangulate(ctx context.Context, world *geometry.World, xf math.Mat4, res *Result, log *zap.Logger) ([]scene.Triangle, error) {
	var tris []scene.Triangle
	for i := range world.Primitives {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := &world.Primitives[i]
		if p.Mirrored {
			res.Mirrored = true
		}

		positions := make([]math.Vec3, len(p.Positions))
		for j, v := range p.Positions {
			positions[j] = xf.TransformPoint(v)
		}
		pt, err := geometry.Triangulate(positions, p.Indices, p.Mode)
		if err != nil {
			w := geometry.Warning{Node: p.Node, Mesh: p.Mesh, Primitive: p.Primitive, Err: err}
			res.Warnings = append(res.Warnings, w.String())
			log.Warn("skipping primitive", zap.Int("node", p.Node), zap.Int("mesh", p.Mesh),
				zap.Int("primitive", p.Primitive), zap.Error(err))
			continue
		}
		tris = append(tris, pt...)
	}
	return tris, nil
}

func serialize(buf *bytes.Buffer, opts Options, tris []scene.Triangle) error {
	if opts.Format == FormatBinarySTL {
		return formats.WriteBinarySTL(buf, opts.SolidName, tris)
	}
	return formats.WriteSTL(buf, opts.SolidName, tris)
}
