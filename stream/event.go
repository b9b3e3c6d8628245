package stream

import (
	"github.com/ifcgeom/corepipe/diag"
	"github.com/ifcgeom/corepipe/schema"
)

// EventKind tags an Event's variant (spec.md's "stream event" tagged record).
type EventKind uint8

const (
	EventStarted EventKind = iota
	EventProgress
	EventBatch
	EventCompleted
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventProgress:
		return "progress"
	case EventBatch:
		return "batch"
	case EventCompleted:
		return "completed"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// MeshPayload is one element's finished mesh plus the identity and color a
// consumer needs to place it in a scene without a second lookup.
type MeshPayload struct {
	ElementID int64
	TypeTag   string
	Positions []float32
	Normals   []float32
	Indices   []uint32
	Color     schema.RGBA
}

// Stats summarizes a completed stream, mirroring spec.md's ProcessingStats.
type Stats struct {
	TotalMeshes    int
	TotalVertices  int
	TotalTriangles int
	ParseTimeMS    int64
	GeometryTimeMS int64
	TotalTimeMS    int64
}

// Metadata describes the file-level facts gathered during quick prepare.
type Metadata struct {
	SchemaVersion       string
	EntityCount         int
	GeometryEntityCount int
	UnitScale           float64
	RTCActive           bool
	RTCOffset           [3]float64
}

// Event is the tagged union a Stream emits. Only the fields relevant to Kind
// are populated; the rest are zero.
type Event struct {
	Kind EventKind

	// EventStarted
	TotalEstimate int

	// EventProgress
	Processed   int
	Total       int
	CurrentType string

	// EventBatch
	Meshes      []MeshPayload
	BatchNumber int

	// EventCompleted
	Stats       Stats
	Metadata    Metadata
	Diagnostics diag.Snapshot

	// EventError
	Message string
}
