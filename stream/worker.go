package stream

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ifcgeom/corepipe/decode"
	"github.com/ifcgeom/corepipe/diag"
	"github.com/ifcgeom/corepipe/router"
	"github.com/ifcgeom/corepipe/schema"
	"github.com/ifcgeom/corepipe/step"
)

// processBatch runs one batch's jobs through the geometry pipeline as a
// data-parallel fork-join over runtime.GOMAXPROCS(0) workers (spec.md §5).
// Each job gets its own Decoder and Router, since both hold mutable
// per-instance caches (the decoder's decoded-entity cache, the router's
// placement cache) that are not safe to share across goroutines; src, idx,
// catalog, and styles are read-only after prepare and shared by reference.
// Within a batch, mesh order is unspecified — only batch-to-batch order is
// guaranteed.
func processBatch(
	ctx context.Context,
	src []byte,
	idx *step.Index,
	catalog *schema.Catalog,
	styles *router.StyleIndex,
	unitScale float64,
	rtc rtcParams,
	voidIndex map[int64][]int64,
	jobs []EntityJob,
) ([]MeshPayload, string, *diag.Collector, error) {
	slots := make([]*MeshPayload, len(jobs))
	diags := make([]*diag.Collector, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, job := range jobs {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			slots[i], diags[i] = processJob(src, idx, catalog, styles, unitScale, rtc, voidIndex, job)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, "", nil, err
	}

	meshes := make([]MeshPayload, 0, len(jobs))
	for _, slot := range slots {
		if slot != nil {
			meshes = append(meshes, *slot)
		}
	}

	batchDiag := diag.NewCollector()
	for _, d := range diags {
		batchDiag.Merge(d)
	}

	lastType := ""
	if len(jobs) > 0 {
		lastType = jobs[len(jobs)-1].TypeTag
	}
	return meshes, lastType, batchDiag, nil
}

// processJob produces job's mesh payload, or nil for an empty result or a
// per-entity processing fault. A fault on one entity is recovered as "no
// geometry" rather than failing the batch (spec.md §5's panics/faults rule):
// one malformed element must not take down the whole stream. Its Router's
// accumulated diagnostics (placement warnings, CSG fallbacks) are folded
// into a per-job Collector that processBatch merges upward, rather than
// discarded with the Router once the call returns.
func processJob(
	src []byte,
	idx *step.Index,
	catalog *schema.Catalog,
	styles *router.StyleIndex,
	unitScale float64,
	rtc rtcParams,
	voidIndex map[int64][]int64,
	job EntityJob,
) (payload *MeshPayload, collector *diag.Collector) {
	collector = diag.NewCollector()
	defer func() {
		if p := recover(); p != nil {
			collector.ErrorEntityf(diag.PhaseGeometry, job.ID, "panic: %v", p)
			payload = nil
		}
	}()

	dec := decode.New(src, idx)
	r := router.NewWithStyles(dec, catalog, unitScale, styles)
	if rtc.active {
		r.WithRTC(rtc.x, rtc.y, rtc.z)
	}

	m, err := r.ProcessElementWithVoids(job.ID, voidIndex[job.ID])
	for _, d := range r.Diagnostics() {
		collector.WarnEntityf(diag.PhaseGeometry, job.ID, "%s", d)
	}
	if err != nil {
		collector.ErrorEntityf(diag.PhaseGeometry, job.ID, "%v", err)
		return nil, collector
	}
	if m.Empty() {
		collector.Record(diag.DiagMessage{Level: diag.Info, Phase: diag.PhaseGeometry, EntityID: job.ID, HasEntity: true, Message: "no geometry produced, entity skipped"})
		return nil, collector
	}
	if len(m.Normals) == 0 {
		m.ComputeNormals()
	}

	return &MeshPayload{
		ElementID: job.ID,
		TypeTag:   job.TypeTag,
		Positions: m.Positions,
		Normals:   m.Normals,
		Indices:   m.Indices,
		Color:     styles.ColorOfReadOnly(job.ID, job.TypeTag),
	}, collector
}
