package vision

import (
	"rescuecam/region"
	"rescuecam/tracking"
)

// zoneHold is a small hysteresis layer over the stateless zone detector:
// when a team's zone vanishes for a frame (occlusion, glare) the last
// known zone is reused for up to ttl frames before it truly disappears.
type zoneHold struct {
	ttl  int
	last map[tracking.ColorClass]heldZone
}

type heldZone struct {
	zone      *region.Zone
	remaining int
}

func newZoneHold(ttl int) *zoneHold {
	return &zoneHold{ttl: ttl, last: make(map[tracking.ColorClass]heldZone)}
}

// update merges fresh detections with held ones and returns the merged
// set. Fresh detections always replace a held zone and reset its ttl.
func (h *zoneHold) update(fresh *region.Zones) *region.Zones {
	merged := &region.Zones{ByOwner: make(map[tracking.ColorClass]*region.Zone)}
	for _, owner := range tracking.TeamClasses {
		if zone := fresh.Get(owner); zone != nil {
			h.last[owner] = heldZone{zone: zone, remaining: h.ttl}
			merged.ByOwner[owner] = zone
			continue
		}
		held, ok := h.last[owner]
		if !ok || held.remaining <= 0 {
			continue
		}
		held.remaining--
		h.last[owner] = held
		merged.ByOwner[owner] = held.zone
	}
	return merged
}
