package stream

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifcgeom/corepipe/diag"
	"github.com/ifcgeom/corepipe/schema"
)

const twoWallsSrc = `DATA;
#1=IFCCARTESIANPOINT((0.,0.,0.));
#2=IFCAXIS2PLACEMENT3D(#1,$,$);
#3=IFCLOCALPLACEMENT($,#2);

#10=IFCCARTESIANPOINT((0.,0.));
#11=IFCCARTESIANPOINT((4.,0.));
#12=IFCCARTESIANPOINT((4.,1.));
#13=IFCCARTESIANPOINT((0.,1.));
#14=IFCPOLYLINE((#10,#11,#12,#13,#10));
#15=IFCARBITRARYCLOSEDPROFILEDEF(.AREA.,$,#14);
#16=IFCDIRECTION((0.,0.,1.));
#17=IFCEXTRUDEDAREASOLID(#15,$,#16,3.);
#18=IFCSHAPEREPRESENTATION($,'Body','SweptSolid',(#17));
#19=IFCPRODUCTDEFINITIONSHAPE($,$,(#18));
#20=IFCWALLSTANDARDCASE('guid-1',$,$,$,$,#3,#19,$);

#30=IFCCARTESIANPOINT((0.,0.));
#31=IFCCARTESIANPOINT((2.,0.));
#32=IFCCARTESIANPOINT((2.,1.));
#33=IFCCARTESIANPOINT((0.,1.));
#34=IFCPOLYLINE((#30,#31,#32,#33,#30));
#35=IFCARBITRARYCLOSEDPROFILEDEF(.AREA.,$,#34);
#36=IFCDIRECTION((0.,0.,1.));
#37=IFCEXTRUDEDAREASOLID(#35,$,#36,3.);
#38=IFCSHAPEREPRESENTATION($,'Body','SweptSolid',(#37));
#39=IFCPRODUCTDEFINITIONSHAPE($,$,(#38));
#40=IFCSLAB('guid-2',$,$,$,$,#3,#39,$);

#50=IFCSIUNIT($,.LENGTHUNIT.,.MILLI.,.METRE.);
#51=IFCUNITASSIGNMENT((#50));
ENDSEC;
`

func drain(t *testing.T, ch <-chan Event) []Event {
	t.Helper()
	var events []Event
	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, e)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for stream events")
		}
	}
}

func TestProcessStreamingEmitsOrderedEventsAndCompletes(t *testing.T) {
	events := drain(t, ProcessStreaming(context.Background(), []byte(twoWallsSrc), schema.Default(), DefaultOptions()))

	require.NotEmpty(t, events)
	assert.Equal(t, EventStarted, events[0].Kind)
	assert.Equal(t, 2, events[0].TotalEstimate)

	last := events[len(events)-1]
	require.Equal(t, EventCompleted, last.Kind)
	assert.Equal(t, 2, last.Stats.TotalMeshes)
	assert.Equal(t, 0.001, last.Metadata.UnitScale)
	assert.Equal(t, "IFC2X3", last.Metadata.SchemaVersion)
	assert.Equal(t, 2, last.Metadata.GeometryEntityCount)

	var batchNumbers []int
	var sawMeshes int
	for _, e := range events {
		if e.Kind == EventBatch {
			batchNumbers = append(batchNumbers, e.BatchNumber)
			sawMeshes += len(e.Meshes)
		}
	}
	require.NotEmpty(t, batchNumbers)
	for i := 1; i < len(batchNumbers); i++ {
		assert.Greater(t, batchNumbers[i], batchNumbers[i-1], "batch numbers must be strictly ascending")
	}
	assert.Equal(t, 2, sawMeshes)

	for _, e := range events {
		if e.Kind == EventError {
			t.Fatalf("unexpected error event: %s", e.Message)
		}
	}
}

func TestProcessStreamingMeshPayloadsHaveMatchingPositionsAndNormals(t *testing.T) {
	events := drain(t, ProcessStreaming(context.Background(), []byte(twoWallsSrc), schema.Default(), DefaultOptions()))

	for _, e := range events {
		if e.Kind != EventBatch {
			continue
		}
		for _, m := range e.Meshes {
			assert.Equal(t, len(m.Positions), len(m.Normals))
			assert.NotEmpty(t, m.Positions)
		}
	}
}

func TestProcessStreamingCancelledContextEmitsNoEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := drain(t, ProcessStreaming(ctx, []byte(twoWallsSrc), schema.Default(), DefaultOptions()))
	assert.Empty(t, events)
}

func TestProcessStreamingEmptySourceCompletesWithZeroStats(t *testing.T) {
	events := drain(t, ProcessStreaming(context.Background(), []byte("not a step file"), schema.Default(), DefaultOptions()))

	require.NotEmpty(t, events)
	last := events[len(events)-1]
	require.Equal(t, EventCompleted, last.Kind)
	assert.Zero(t, last.Stats.TotalMeshes)
	assert.Zero(t, last.Metadata.GeometryEntityCount)
}

const largeCoordinateSiteSrc = `DATA;
#1=IFCCARTESIANPOINT((2679000.,1247000.,430.));
#2=IFCAXIS2PLACEMENT3D(#1,$,$);
#3=IFCLOCALPLACEMENT($,#2);

#10=IFCCARTESIANPOINT((0.,0.));
#11=IFCCARTESIANPOINT((4.,0.));
#12=IFCCARTESIANPOINT((4.,1.));
#13=IFCCARTESIANPOINT((0.,1.));
#14=IFCPOLYLINE((#10,#11,#12,#13,#10));
#15=IFCARBITRARYCLOSEDPROFILEDEF(.AREA.,$,#14);
#16=IFCDIRECTION((0.,0.,1.));
#17=IFCEXTRUDEDAREASOLID(#15,$,#16,3.);
#18=IFCSHAPEREPRESENTATION($,'Body','SweptSolid',(#17));
#19=IFCPRODUCTDEFINITIONSHAPE($,$,(#18));
#20=IFCWALLSTANDARDCASE('guid-1',$,$,$,$,#3,#19,$);
ENDSEC;
`

func TestProcessStreamingActivatesRTCForLargeCoordinateSite(t *testing.T) {
	events := drain(t, ProcessStreaming(context.Background(), []byte(largeCoordinateSiteSrc), schema.Default(), DefaultOptions()))

	last := events[len(events)-1]
	require.Equal(t, EventCompleted, last.Kind)
	assert.True(t, last.Metadata.RTCActive)
	assert.InDelta(t, 2679000.0, last.Metadata.RTCOffset[0], 1.0)
	assert.InDelta(t, 1247000.0, last.Metadata.RTCOffset[1], 1.0)

	for _, e := range events {
		if e.Kind != EventBatch {
			continue
		}
		for _, m := range e.Meshes {
			for i := 0; i < len(m.Positions); i += 3 {
				assert.Less(t, math.Abs(float64(m.Positions[i])), 100000.0, "RTC-corrected positions should be near origin, not the raw world coordinate")
			}
		}
	}
}

func TestProcessStreamingReportsSkippedEntityDiagnosticsInCompletedEvent(t *testing.T) {
	src := `DATA;
#1=IFCWALLSTANDARDCASE('guid-1',$,$,$,$,$,$,$);
ENDSEC;
`
	events := drain(t, ProcessStreaming(context.Background(), []byte(src), schema.Default(), DefaultOptions()))

	last := events[len(events)-1]
	require.Equal(t, EventCompleted, last.Kind)
	counts := last.Diagnostics.CountsByPhase[diag.PhaseGeometry]
	assert.Equal(t, 1, counts.Info, "the wall with no representation should be counted as a skipped entity")
	require.Len(t, last.Diagnostics.Messages, 1)
	assert.Equal(t, int64(1), last.Diagnostics.Messages[0].EntityID)
}

func TestComputeBatchesCoversEveryJobExactlyOnce(t *testing.T) {
	ranges := computeBatches(537, 200, 1000)
	require.NotEmpty(t, ranges)
	assert.Equal(t, 0, ranges[0].start)
	assert.Equal(t, 537, ranges[len(ranges)-1].end)
	for i := 1; i < len(ranges); i++ {
		assert.Equal(t, ranges[i-1].end, ranges[i].start, "batches must be contiguous")
	}
}

func TestDetectSchemaVersionPrefersMostSpecificMatch(t *testing.T) {
	assert.Equal(t, "IFC4X3", detectSchemaVersion([]byte("FILE_SCHEMA(('IFC4X3'));")))
	assert.Equal(t, "IFC4", detectSchemaVersion([]byte("FILE_SCHEMA(('IFC4'));")))
	assert.Equal(t, "IFC2X3", detectSchemaVersion([]byte("FILE_SCHEMA(('IFC2X3'));")))
}
