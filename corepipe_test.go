package corepipe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifcgeom/corepipe/diag"
)

const simpleWallSrc = `DATA;
#1=IFCCARTESIANPOINT((0.,0.,0.));
#2=IFCAXIS2PLACEMENT3D(#1,$,$);
#3=IFCLOCALPLACEMENT($,#2);

#10=IFCCARTESIANPOINT((0.,0.));
#11=IFCCARTESIANPOINT((10.,0.));
#12=IFCCARTESIANPOINT((10.,0.3));
#13=IFCCARTESIANPOINT((0.,0.3));
#14=IFCPOLYLINE((#10,#11,#12,#13,#10));
#15=IFCARBITRARYCLOSEDPROFILEDEF(.AREA.,$,#14);
#16=IFCDIRECTION((0.,0.,1.));
#17=IFCEXTRUDEDAREASOLID(#15,$,#16,2.7);
#18=IFCSHAPEREPRESENTATION($,'Body','SweptSolid',(#17));
#19=IFCPRODUCTDEFINITIONSHAPE($,$,(#18));
#20=IFCWALLSTANDARDCASE('guid-1',$,$,$,$,#3,#19,$);
ENDSEC;
`

func TestProcessFileSimpleWallProducesOneMesh(t *testing.T) {
	summary, err := ProcessFileWithDefaults([]byte(simpleWallSrc))
	require.NoError(t, err)
	require.Len(t, summary.Meshes, 1)

	m := summary.Meshes[0]
	assert.Equal(t, int64(20), m.ElementID)
	assert.Equal(t, "IFCWALLSTANDARDCASE", m.TypeTag)
	assert.Equal(t, len(m.Positions), len(m.Normals))
	assert.Zero(t, len(m.Positions)%3)
	assert.NotEmpty(t, m.Indices)

	for _, idx := range m.Indices {
		assert.Less(t, int(idx), len(m.Positions)/3)
	}

	// A 10x0.3 rectangle extruded 2.7m with no openings: bounding box
	// [0,0,0]..[10,0.3,2.7] in the Z-up frame ProcessFile returns (no Y-up
	// flip applied by the core — see ToDisplayFrame for that conversion).
	min, max := bounds(m.Positions)
	assert.InDelta(t, 0, min[0], 1e-4)
	assert.InDelta(t, 0, min[1], 1e-4)
	assert.InDelta(t, 0, min[2], 1e-4)
	assert.InDelta(t, 10, max[0], 1e-4)
	assert.InDelta(t, 0.3, max[1], 1e-4)
	assert.InDelta(t, 2.7, max[2], 1e-4)

	assert.Equal(t, 1, summary.Stats.TotalMeshes)
	assert.Equal(t, 1, summary.Metadata.GeometryEntityCount)
	assert.False(t, summary.Diagnostics.HasErrors())
}

func bounds(positions []float32) (min, max [3]float32) {
	min = [3]float32{positions[0], positions[1], positions[2]}
	max = min
	for i := 0; i < len(positions); i += 3 {
		for a := 0; a < 3; a++ {
			v := positions[i+a]
			if v < min[a] {
				min[a] = v
			}
			if v > max[a] {
				max[a] = v
			}
		}
	}
	return min, max
}

func TestProcessFileEmptyRepresentationProducesNoMesh(t *testing.T) {
	src := `DATA;
#1=IFCWALLSTANDARDCASE('guid-1',$,$,$,$,$,$,$);
ENDSEC;
`
	summary, err := ProcessFileWithDefaults([]byte(src))
	require.NoError(t, err)
	assert.Empty(t, summary.Meshes)
	assert.Equal(t, 1, summary.Metadata.GeometryEntityCount)

	counts := summary.Diagnostics.CountsByPhase[diag.PhaseGeometry]
	assert.Equal(t, 1, counts.Info, "the skipped entity should be reflected in the final diagnostics snapshot")
}

func TestProcessFileEmptyFileCompletesWithZeroStats(t *testing.T) {
	summary, err := ProcessFileWithDefaults([]byte("DATA;\nENDSEC;\n"))
	require.NoError(t, err)
	assert.Empty(t, summary.Meshes)
	assert.Zero(t, summary.Stats.TotalMeshes)
	assert.Zero(t, summary.Metadata.GeometryEntityCount)
}

func TestProcessFileCancelledContextReturnsError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := ProcessFile(ctx, []byte(simpleWallSrc), DefaultConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, summary.Meshes)
}

func TestDefaultConfigMatchesDocumentedDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 200, cfg.InitialBatchSize)
	assert.Equal(t, 1000, cfg.MaxBatchSize)
	assert.Equal(t, 10_000.0, cfg.RTCThresholdM)
	assert.Equal(t, 20, cfg.CSGMaxDepth)
	assert.Equal(t, 100, cfg.PlacementMaxDepth)
	assert.Equal(t, 24, cfg.CircleSegmentsMin)
	assert.Equal(t, 120, cfg.CircleSegmentsMax)
	assert.Equal(t, 0.08, cfg.CircleTargetChordM)
}

func TestIsFatalDistinguishesFatalFromRecoverable(t *testing.T) {
	assert.True(t, IsFatal(NewFatalError("stream", "worker pool failure")))
	assert.False(t, IsFatal(NewRecoverableError("geometry", 42, "degenerate profile")))
}
