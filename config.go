package corepipe

// Config carries every tunable knob the pipeline exposes, mirroring the
// teacher's CompileOptions/spirv.Options/glsl.Options shape: one flat
// struct, one DefaultConfig constructor, no env var or file-based config in
// the core itself.
type Config struct {
	// InitialBatchSize is the streaming scheduler's first-batch mesh count
	// lower bound.
	InitialBatchSize int
	// MaxBatchSize caps the steady-state batch size; calculateBatchSize
	// multiplies it 5-20x for very large files.
	MaxBatchSize int
	// PipelineDepth overrides the scheduler's concurrent-batch limit. Zero
	// means "derive from total job count", the streaming package's default.
	PipelineDepth int

	// RTCThresholdM records the large-coordinate (RTC) activation threshold
	// in meters. ProcessFile does not read it: activation uses the constant
	// router.RTCActivationThresholdM, which has the same default value.
	RTCThresholdM float64

	// CSGMaxDepth records the 3D CSG depth bound. ProcessFile does not read
	// it: the bound in force is the constant csg.MaxBooleanDepth.
	CSGMaxDepth int
	// PlacementMaxDepth records the placement-chain depth bound. ProcessFile
	// does not read it: the bound in force is the constant
	// placement.MaxDepth.
	PlacementMaxDepth int

	// CircleSegmentsMin and CircleSegmentsMax record the segment bounds for
	// circular profiles, and CircleTargetChordM the target chord length.
	// ProcessFile does not pass them on: meshes are tessellated with
	// profile.DefaultCircleConfig, whose values are these defaults.
	CircleSegmentsMin  int
	CircleSegmentsMax  int
	CircleTargetChordM float64
}

// DefaultConfig returns the documented defaults: a 200-entity first batch,
// a 1000-entity steady-state cap, automatic pipeline depth, a 10km RTC
// threshold, depth bounds of 20 (CSG) and 100 (placement), and circle
// tessellation between 24 and 120 segments targeting an 8cm chord.
func DefaultConfig() Config {
	return Config{
		InitialBatchSize: 200,
		MaxBatchSize:     1000,
		PipelineDepth:    0,

		RTCThresholdM: 10_000,

		CSGMaxDepth:       20,
		PlacementMaxDepth: 100,

		CircleSegmentsMin:  24,
		CircleSegmentsMax:  120,
		CircleTargetChordM: 0.08,
	}
}
