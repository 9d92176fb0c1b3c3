package priority

import (
	"image"
	"sort"

	"rescuecam/tracking"
)

// minAllowedRatio is the fraction of an object's disc that must overlap
// the allowed (non-fence) area for the object to remain a candidate.
const minAllowedRatio = 0.7

// FenceFilter reports how much of an object overlaps the allowed
// detection area. The region detector provides the mask-backed
// implementation; tests provide synthetic ones.
type FenceFilter interface {
	// AllowedRatio returns the fraction in [0,1] of the disc centered at
	// (x, y) with the given radius that falls inside the allowed area.
	AllowedRatio(x, y, radius int) float64
}

// ZoneLocator resolves which team's drop zone, if any, contains a point.
type ZoneLocator interface {
	ZoneAt(pt image.Point) (owner tracking.ColorClass, ok bool)
}

// Selector applies the competition ruleset to one frame's candidates.
//
// Membership convention: the fence check uses the area-overlap ratio of
// the object disc against the allowed mask, while zone checks use plain
// center-point containment. The two checks answer different questions
// (partial fence occlusion vs. "already delivered") and each uses one
// test consistently.
type Selector struct {
	Rules Ruleset
}

// NewSelector creates a selector bound to a loaded ruleset.
func NewSelector(rules Ruleset) *Selector {
	return &Selector{Rules: rules}
}

type scoredObject struct {
	obj   tracking.Object
	score int
}

// SelectTarget picks at most one object to pursue this frame, or nil.
// held lists the color classes of objects already secured in the current
// carrying batch. objects, zones, and fence are owned by the caller for
// the duration of this call only.
func (s *Selector) SelectTarget(objects []tracking.Object, zones ZoneLocator, fence FenceFilter, pick PickState, held []tracking.ColorClass) *tracking.Object {
	if len(objects) == 0 {
		return nil
	}

	// A held hazard blocks every further pick until it is placed.
	if s.Rules.HazardIsSingleton && countClass(held, tracking.ClassYellow) > 0 {
		return nil
	}

	candidates := make([]scoredObject, 0, len(objects))
	for _, obj := range objects {
		if fence != nil && fence.AllowedRatio(obj.X, obj.Y, obj.Radius) < minAllowedRatio {
			continue
		}
		if zones != nil {
			if owner, ok := zones.ZoneAt(obj.Center()); ok && owner == s.Rules.destinationOwner(obj.Class) {
				// Already at its destination; nothing to do for it.
				continue
			}
		}
		candidates = append(candidates, scoredObject{obj: obj, score: s.scoreObject(obj, pick)})
	}

	// Stable sort keeps detector emission order among equal scores.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	batchCount := countClass(held, s.Rules.TeamColor) + countClass(held, tracking.ClassBlack)
	for _, c := range candidates {
		if c.score <= 0 {
			break
		}
		if s.Rules.HazardIsSingleton && c.obj.Class == tracking.ClassYellow && len(held) > 0 {
			// Hazards travel alone.
			continue
		}
		if c.obj.Class == s.Rules.TeamColor || c.obj.Class == tracking.ClassBlack {
			if batchCount >= s.Rules.MaxNormalPlusCore {
				continue
			}
		}
		obj := c.obj
		return &obj
	}
	return nil
}

// scoreObject applies the enemy exclusion and the first-pick latch on top
// of the configured table.
func (s *Selector) scoreObject(obj tracking.Object, pick PickState) int {
	if obj.Class == s.Rules.EnemyColor {
		return 0
	}
	if s.Rules.FirstPickMustBeTeam && pick == FirstPickPending {
		if obj.Class == s.Rules.TeamColor {
			return firstPickScore
		}
		return 0
	}
	return s.Rules.Score(obj.Class)
}

func countClass(held []tracking.ColorClass, class tracking.ColorClass) int {
	n := 0
	for _, c := range held {
		if c == class {
			n++
		}
	}
	return n
}
