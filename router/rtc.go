package router

import (
	"math"

	"github.com/ifcgeom/corepipe/decode"
	"github.com/ifcgeom/corepipe/placement"
	"github.com/ifcgeom/corepipe/step"
)

// RTCActivationThresholdM is the model-wide bounding-box magnitude (in
// meters, matching Config.RTCThresholdM's default) beyond which RTC is
// activated for the file at all — spec.md's "10 km from origin" rule. This
// is a coarser, one-time decision distinct from LargeCoordThreshold, which
// decides per mesh whether an already-activated RTC offset is subtracted
// from that mesh's vertices.
const RTCActivationThresholdM = 10000.0

// LargeCoordThreshold is the per-axis world-translation magnitude above
// which a single mesh, once RTC is active, has the offset subtracted
// (C18). Matches spec.md's documented 1000 m per-mesh rule.
const LargeCoordThreshold = 1000.0

func exceeds(v, threshold float64) bool {
	return math.Abs(v) > threshold
}

func isLargeCoordinate(v float64) bool {
	return exceeds(v, LargeCoordThreshold)
}

// DetectRTCOffset scans every IFCLOCALPLACEMENT record in idx, resolves its
// world transform, and — if any placement's translation exceeds
// RTCActivationThresholdM on any axis — returns the centroid of those large
// placements as the RTC offset. ok is false when no placement crosses the
// activation threshold, in which case the caller should not call
// Router.WithRTC at all.
func DetectRTCOffset(dec *decode.Decoder, idx *step.Index, resolver *placement.Resolver) (ox, oy, oz float64, ok bool) {
	var sumX, sumY, sumZ float64
	var count int

	for _, id := range idx.IDs() {
		rec, found := idx.Lookup(id)
		if !found || rec.TypeTag != "IFCLOCALPLACEMENT" {
			continue
		}
		m := resolver.Transform(id)
		tx, ty, tz := m.Translation()
		if exceeds(tx, RTCActivationThresholdM) || exceeds(ty, RTCActivationThresholdM) || exceeds(tz, RTCActivationThresholdM) {
			sumX += tx
			sumY += ty
			sumZ += tz
			count++
		}
	}

	if count == 0 {
		return 0, 0, 0, false
	}
	n := float64(count)
	return sumX / n, sumY / n, sumZ / n, true
}
