// Package corepipe is a pure Go STEP/IFC geometry engine: it tokenizes a
// STEP-21 file, indexes its entities, and routes every geometry-bearing
// element through profile extraction, extrusion, placement, void
// subtraction, and styling to produce triangle meshes in IFC's native Z-up
// frame. The pipeline does not convert to Y-up; ToDisplayFrame does that
// for a caller that needs it.
//
// ProcessFile is the simplest way to process a whole file; it is a
// convenience wrapper over the staged API (step.BuildIndex, decode.New,
// router.NewRouterWithUnits, stream.ProcessStreaming) for callers that want
// one call and don't need progressive output.
package corepipe

import (
	"context"
	"errors"
	"fmt"

	"github.com/ifcgeom/corepipe/diag"
	"github.com/ifcgeom/corepipe/schema"
	"github.com/ifcgeom/corepipe/stream"
)

// Mesh is the output of geometry processing for one element: position,
// normal, and index buffers (mesh.Mesh's shape) plus the metadata a caller
// needs to place it in a scene.
type Mesh struct {
	ElementID int64
	TypeTag   string
	Positions []float32
	Normals   []float32
	Indices   []uint32
	Color     schema.RGBA
}

// VertexCount returns the number of vertices in the mesh.
func (m Mesh) VertexCount() int { return len(m.Positions) / 3 }

// TriangleCount returns the number of triangles in the mesh.
func (m Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// Summary is ProcessFile's result: every mesh the file produced, aggregate
// statistics, file-level metadata, and a diagnostics snapshot describing
// anything skipped or recovered along the way.
type Summary struct {
	Meshes      []Mesh
	Stats       stream.Stats
	Metadata    stream.Metadata
	Diagnostics diag.Snapshot
}

// ProcessFile runs the full pipeline over src with the given options,
// returning every geometry-bearing element's mesh plus aggregate stats.
// It builds the entity index, prepares the priority-ordered job list and
// style index, then processes every element — internally driving the same
// streaming scheduler stream.ProcessStreaming uses, collected here into one
// synchronous result for callers that don't need progressive output.
//
// A FatalError (wrapped) is returned if preparation fails or the scheduler
// itself faults; a per-entity fault never fails the call, it is recorded in
// Summary.Diagnostics and the entity is simply omitted from Summary.Meshes.
func ProcessFile(ctx context.Context, src []byte, cfg Config) (*Summary, error) {
	catalog := schema.Default()
	opts := stream.Options{
		InitialBatchSize: cfg.InitialBatchSize,
		MaxBatchSize:     cfg.MaxBatchSize,
		PipelineDepth:    cfg.PipelineDepth,
	}

	collector := diag.NewCollector()
	summary := &Summary{}

	for ev := range stream.ProcessStreaming(ctx, src, catalog, opts) {
		switch ev.Kind {
		case stream.EventBatch:
			for _, m := range ev.Meshes {
				summary.Meshes = append(summary.Meshes, Mesh{
					ElementID: m.ElementID,
					TypeTag:   m.TypeTag,
					Positions: m.Positions,
					Normals:   m.Normals,
					Indices:   m.Indices,
					Color:     m.Color,
				})
			}
		case stream.EventCompleted:
			summary.Stats = ev.Stats
			summary.Metadata = ev.Metadata
			summary.Diagnostics = ev.Diagnostics
		case stream.EventError:
			collector.Errorf(diag.PhaseStream, "%s", ev.Message)
			summary.Diagnostics = collector.Snapshot()
			return summary, NewFatalError("stream", "%s", ev.Message)
		}
	}

	if ctx.Err() != nil {
		summary.Diagnostics = collector.Snapshot()
		return summary, fmt.Errorf("corepipe: %w", ctx.Err())
	}

	return summary, nil
}

// ProcessFileWithDefaults is ProcessFile with DefaultConfig() and a
// background context, the shape most callers that just want "give me the
// meshes" reach for first.
func ProcessFileWithDefaults(src []byte) (*Summary, error) {
	return ProcessFile(context.Background(), src, DefaultConfig())
}

// IsFatal reports whether err (or anything it wraps) is a FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
