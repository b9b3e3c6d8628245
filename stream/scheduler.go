// Package stream implements the streaming geometry scheduler (C20): a
// two-phase prepare (entity scan + unit scale, then style-index build) and
// a pipelined, priority-ordered batch loop that emits meshes as an ordered
// channel of Events, the progressive-output counterpart to corepipe's
// one-shot ProcessFile.
package stream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ifcgeom/corepipe/decode"
	"github.com/ifcgeom/corepipe/diag"
	"github.com/ifcgeom/corepipe/placement"
	"github.com/ifcgeom/corepipe/router"
	"github.com/ifcgeom/corepipe/schema"
	"github.com/ifcgeom/corepipe/step"
)

// rtcParams is the model-wide large-coordinate offset decision (C18),
// made once during prepare and applied identically by every batch worker.
type rtcParams struct {
	active  bool
	x, y, z float64
}

// Options tunes the scheduler's batching behavior (spec.md §6's
// InitialBatchSize/MaxBatchSize knobs).
type Options struct {
	InitialBatchSize int
	MaxBatchSize     int

	// PipelineDepth overrides how many batches may be processed
	// concurrently. Zero (the default) derives the depth from the file's
	// total job count via pipelineDepth.
	PipelineDepth int
}

// DefaultOptions matches spec.md's documented defaults: a 200-entity first
// batch, capped ordinarily at 1000 entities per batch (calculateBatchSize
// scales the cap up further for very large files).
func DefaultOptions() Options {
	return Options{InitialBatchSize: 200, MaxBatchSize: 1000}
}

type batchRange struct{ start, end int }

type batchOutcome struct {
	meshes   []MeshPayload
	lastType string
	diags    *diag.Collector
	err      error
}

// ProcessStreaming runs the full streaming pipeline over src and returns a
// channel of Events. The channel is closed after at most one EventCompleted
// or EventError (spec.md's stream invariant: exactly one terminal event, or
// none if ctx is cancelled first). Cancelling ctx stops the stream; in-flight
// batches are dropped and workers observe the cancellation before starting
// their next entity, never mid-entity.
func ProcessStreaming(ctx context.Context, src []byte, catalog *schema.Catalog, opts Options) <-chan Event {
	out := make(chan Event, 8)
	go run(ctx, src, catalog, opts, out)
	return out
}

func run(ctx context.Context, src []byte, catalog *schema.Catalog, opts Options, out chan<- Event) {
	defer close(out)
	totalStart := time.Now()

	idx, err := step.BuildIndex(src)
	if err != nil {
		out <- Event{Kind: EventError, Message: fmt.Sprintf("quick preparation failed: %v", err)}
		return
	}

	// collector is the scheduler-owned diagnostics sink (C25): every
	// skipped-record, depth-hit, and CSG-fallback message recorded anywhere
	// in prepare or in a batch worker is merged into it before the stream's
	// one terminal event, rather than discarded with its per-job source.
	collector := diag.NewCollector()
	for _, d := range idx.Diagnostics() {
		collector.Record(diag.DiagMessage{Level: diag.Warning, Phase: diag.PhaseParse, Message: d.Message})
	}

	dec := decode.New(src, idx)
	unitScale := router.ExtractUnitScale(dec)

	// Phase A (continued): decide once, file-wide, whether RTC activates
	// (spec.md testable property 8) using a throwaway placement resolver —
	// each batch worker's own Router still resolves placements again through
	// its own thread-local resolver, since that cache is per-instance and
	// unsafe to share, but the activation decision itself must be made once.
	rtc := rtcParams{}
	if ox, oy, oz, ok := router.DetectRTCOffset(dec, idx, placement.NewResolver(dec)); ok {
		rtc = rtcParams{active: true, x: ox, y: oy, z: oz}
	}

	prepStart := time.Now()
	state := scanEntitiesWithPriority(dec, catalog)
	parseTime := time.Since(prepStart)
	totalJobs := len(state.jobs)

	if !sendEvent(ctx, out, Event{Kind: EventStarted, TotalEstimate: totalJobs}) {
		return
	}
	if !sendEvent(ctx, out, Event{Kind: EventProgress, Total: totalJobs, CurrentType: "preparing"}) {
		return
	}

	// Phase B: build the style index and precompute every job's color while
	// it is still single-threaded, so the concurrent batch workers below can
	// read it through ColorOfReadOnly without racing on its cache.
	styles := router.NewStyleIndex(dec, catalog)
	styles.Precompute(jobIDs(state.jobs))

	if ctx.Err() != nil {
		return
	}

	ranges := computeBatches(totalJobs, opts.InitialBatchSize, opts.MaxBatchSize)
	depth := opts.PipelineDepth
	if depth <= 0 {
		depth = pipelineDepth(totalJobs)
	}

	outcomes := make([]chan batchOutcome, len(ranges))
	for i := range outcomes {
		outcomes[i] = make(chan batchOutcome, 1)
	}

	g, gctx := errgroup.WithContext(ctx)
	if len(ranges) > 0 {
		g.SetLimit(depth)
	}
	for b, rng := range ranges {
		b, rng := b, rng
		g.Go(func() error {
			meshes, lastType, batchDiag, err := processBatch(gctx, src, idx, catalog, styles, unitScale, rtc, state.voidIndex, state.jobs[rng.start:rng.end])
			outcomes[b] <- batchOutcome{meshes: meshes, lastType: lastType, diags: batchDiag, err: err}
			return err
		})
	}

	waitDone := make(chan error, 1)
	go func() { waitDone <- g.Wait() }()

	geometryStart := time.Now()
	var totalProcessed, totalMeshes, totalVertices, totalTriangles int
	var streamErr error

	for b, rng := range ranges {
		select {
		case oc := <-outcomes[b]:
			if oc.err != nil {
				streamErr = oc.err
			} else {
				collector.Merge(oc.diags)
				totalProcessed += rng.end - rng.start
				totalMeshes += len(oc.meshes)
				for _, m := range oc.meshes {
					totalVertices += len(m.Positions) / 3
					totalTriangles += len(m.Indices) / 3
				}
				if len(oc.meshes) > 0 {
					if !sendEvent(ctx, out, Event{Kind: EventBatch, Meshes: oc.meshes, BatchNumber: b + 1}) {
						return
					}
				}
				if !sendEvent(ctx, out, Event{Kind: EventProgress, Processed: totalProcessed, Total: totalJobs, CurrentType: oc.lastType}) {
					return
				}
			}
		case <-ctx.Done():
			return
		}
		if streamErr != nil {
			break
		}
	}

	<-waitDone

	if streamErr != nil {
		if errors.Is(streamErr, context.Canceled) {
			return
		}
		out <- Event{Kind: EventError, Message: streamErr.Error()}
		return
	}

	out <- Event{
		Kind: EventCompleted,
		Stats: Stats{
			TotalMeshes:    totalMeshes,
			TotalVertices:  totalVertices,
			TotalTriangles: totalTriangles,
			ParseTimeMS:    parseTime.Milliseconds(),
			GeometryTimeMS: time.Since(geometryStart).Milliseconds(),
			TotalTimeMS:    time.Since(totalStart).Milliseconds(),
		},
		Metadata: Metadata{
			SchemaVersion:       state.schemaVersion,
			EntityCount:         state.totalEntities,
			GeometryEntityCount: totalJobs,
			UnitScale:           unitScale,
			RTCActive:           rtc.active,
			RTCOffset:           [3]float64{rtc.x, rtc.y, rtc.z},
		},
		Diagnostics: collector.Snapshot(),
	}
}

// computeBatches partitions [0, totalJobs) into the ranges
// calculateBatchSize dictates, ahead of time, since batch boundaries are a
// deterministic function of batch number and total job count rather than of
// runtime timing.
func computeBatches(totalJobs, initialBatchSize, maxBatchSize int) []batchRange {
	var ranges []batchRange
	jobIndex, batchNum := 0, 0
	for jobIndex < totalJobs {
		batchNum++
		size := calculateBatchSize(batchNum, initialBatchSize, maxBatchSize, totalJobs)
		end := jobIndex + size
		if end > totalJobs {
			end = totalJobs
		}
		ranges = append(ranges, batchRange{start: jobIndex, end: end})
		jobIndex = end
	}
	return ranges
}

func jobIDs(jobs []EntityJob) []int64 {
	ids := make([]int64, len(jobs))
	for i, j := range jobs {
		ids[i] = j.ID
	}
	return ids
}

func sendEvent(ctx context.Context, out chan<- Event, e Event) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case out <- e:
		return true
	case <-ctx.Done():
		return false
	}
}
