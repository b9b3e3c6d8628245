package stream

import (
	"bytes"
	"sort"

	"github.com/ifcgeom/corepipe/decode"
	"github.com/ifcgeom/corepipe/schema"
)

// EntityJob is one geometry-bearing entity waiting to be processed, carrying
// just enough to dispatch it into a batch and sort it by priority.
type EntityJob struct {
	ID       int64
	TypeTag  string
	Priority schema.ElementPriority
}

// scanState is the product of a single linear pass over the entity index
// (C20 Phase A), the bare minimum the scheduler needs before it can start
// handing out batches.
type scanState struct {
	jobs          []EntityJob
	voidIndex     map[int64][]int64
	styledItemIDs []int64
	totalEntities int
	schemaVersion string
}

// scanEntitiesWithPriority performs spec.md's single combined scan: it
// collects the geometry-bearing job list, builds the void index from every
// IFCRELVOIDSELEMENT, and records every IFCSTYLEDITEM id in styledItemIDs
// (the Phase B style-index build does its own scan and does not read that
// list). Jobs are returned sorted by priority
// (PrioritySimple first) so the first batches carry the building geometry a
// viewer wants to show immediately.
func scanEntitiesWithPriority(dec *decode.Decoder, catalog *schema.Catalog) scanState {
	idx := dec.Index()
	ids := idx.IDs()

	state := scanState{
		jobs:          make([]EntityJob, 0, len(ids)),
		voidIndex:     make(map[int64][]int64, 64),
		styledItemIDs: make([]int64, 0, 64),
		totalEntities: len(ids),
		schemaVersion: detectSchemaVersion(idx.Source()),
	}

	for _, id := range ids {
		rec, ok := idx.Lookup(id)
		if !ok {
			continue
		}

		switch rec.TypeTag {
		case "IFCRELVOIDSELEMENT":
			e, err := dec.DecodeByID(id)
			if err != nil {
				continue
			}
			host, hostOK := decode.AsRef(e.Attr(4))
			opening, openingOK := decode.AsRef(e.Attr(5))
			if hostOK && openingOK {
				state.voidIndex[host] = append(state.voidIndex[host], opening)
			}
		case "IFCSTYLEDITEM":
			state.styledItemIDs = append(state.styledItemIDs, id)
		}

		if catalog.HasGeometryByName(rec.TypeTag) {
			state.jobs = append(state.jobs, EntityJob{
				ID:       id,
				TypeTag:  rec.TypeTag,
				Priority: catalog.PriorityOf(rec.TypeTag),
			})
		}
	}

	sort.SliceStable(state.jobs, func(i, j int) bool {
		return state.jobs[i].Priority < state.jobs[j].Priority
	})

	return state
}

// detectSchemaVersion does a fast substring search rather than parsing the
// FILE_SCHEMA header, matching the teacher corpus's "good enough, very fast"
// approach to file-level metadata a human never blocks on.
func detectSchemaVersion(src []byte) string {
	switch {
	case bytes.Contains(src, []byte("IFC4X3")):
		return "IFC4X3"
	case bytes.Contains(src, []byte("IFC4")):
		return "IFC4"
	default:
		return "IFC2X3"
	}
}
