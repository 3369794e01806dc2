package agentsvc

import (
	"github.com/townloop/engine/domain"
)

// VisionRadius returns the effective vision radius for the given time of
// day, applying the night-vision factor (default 0.6,
// floor 1) when it is night. This multiplier must be applied identically
// everywhere visibility is checked.
func VisionRadius(baseRadius int, tod domain.TimeOfDay, nightVisionFactor float64) int {
	if tod != domain.Night {
		return baseRadius
	}
	reduced := int(float64(baseRadius) * nightVisionFactor)
	if reduced < 1 {
		return 1
	}
	return reduced
}

// PresenceSighting is one entry of sense_others' result: a known agent's
// coarse bearing.
type PresenceSighting struct {
	Other           string
	DirectionBucket string
	DistanceBucket  domain.DistanceBucket
}

// SenseOthers returns a coarse bearing for every agent the seer knows
// about and who is currently within visionRadius, sorted by name for
// deterministic ordering. Unknown agents are always omitted, even if
// within range.
func SenseOthers(seer *domain.Agent, all map[string]*domain.Agent, visionRadius int) []PresenceSighting {
	var out []PresenceSighting
	for name, other := range all {
		if name == seer.Name || !seer.Knows(name) {
			continue
		}
		dist := seer.Position.ChebyshevDistance(other.Position)
		if dist > visionRadius {
			continue
		}
		bucket, ok := seer.Position.DirectionBucket(other.Position)
		if !ok {
			continue
		}
		out = append(out, PresenceSighting{Other: name, DirectionBucket: bucket, DistanceBucket: domain.BucketFor(dist)})
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Other > out[j].Other; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// VisibleAgents returns every agent (regardless of known_agents) within
// visionRadius of the seer, sorted by name. This is the raw perception set
// used to build the grid view and to drive the known_agents ledger update;
// SenseOthers (the action) additionally filters by Knows.
func VisibleAgents(seer *domain.Agent, all map[string]*domain.Agent, visionRadius int) []*domain.Agent {
	var out []*domain.Agent
	for name, other := range all {
		if name == seer.Name {
			continue
		}
		if seer.Position.ChebyshevDistance(other.Position) <= visionRadius {
			out = append(out, other)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Name > out[j].Name; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// UpdateMeetingLedger adds every pair of mutually visible agents to each
// other's known_agents set. Symmetric and monotonic: once learned, a
// name is never forgotten.
func UpdateMeetingLedger(all map[string]*domain.Agent, visionRadius int) {
	for _, seer := range all {
		for _, seen := range VisibleAgents(seer, all, visionRadius) {
			seer.Learn(seen.Name)
			seen.Learn(seer.Name)
		}
	}
}
