// Package priority implements the rule-governed target selection engine.
// It operates purely on detected objects and region memberships so the
// competition rules stay testable without any OpenCV dependency.
package priority

import (
	"rescuecam/tracking"
)

// firstPickScore is the forced score for team-color objects while the
// first-pick rule is still in effect.
const firstPickScore = 1000

// Ruleset holds the competition constraints. It is loaded once at startup
// and read-only for the lifetime of a run.
type Ruleset struct {
	TeamColor  tracking.ColorClass
	EnemyColor tracking.ColorClass

	// PriorityTable maps a color class to its selection score. Enemy
	// objects are never consulted here; their score is forced to zero.
	PriorityTable map[tracking.ColorClass]int

	// FirstPickMustBeTeam forces the very first pick of a run to be a
	// team-colored object.
	FirstPickMustBeTeam bool

	// HazardIsSingleton forbids carrying a hazard object together with
	// anything else.
	HazardIsSingleton bool

	// MaxNormalPlusCore caps how many team-color plus core objects one
	// carrying batch may hold. Hazard objects are exempt.
	MaxNormalPlusCore int
}

// DefaultRuleset returns the canonical competition ruleset for the given
// team color: core 200, hazard 150, team 100, enemy never selectable,
// first pick must be team-colored, hazards travel alone, at most four
// normal-plus-core objects per batch.
func DefaultRuleset(team tracking.ColorClass) Ruleset {
	return Ruleset{
		TeamColor:  team,
		EnemyColor: team.Opponent(),
		PriorityTable: map[tracking.ColorClass]int{
			tracking.ClassBlack:  200,
			tracking.ClassYellow: 150,
			team:                 100,
		},
		FirstPickMustBeTeam: true,
		HazardIsSingleton:   true,
		MaxNormalPlusCore:   4,
	}
}

// Score returns the nominal table score for a class, before any of the
// per-frame rules are applied.
func (r Ruleset) Score(class tracking.ColorClass) int {
	if class == r.EnemyColor {
		return 0
	}
	return r.PriorityTable[class]
}

// destinationOwner returns which team's drop zone is an object's natural
// destination. Everything our robot handles ends up in our own zone;
// enemy objects belong to the enemy zone and are not ours to move.
func (r Ruleset) destinationOwner(class tracking.ColorClass) tracking.ColorClass {
	if class == r.EnemyColor {
		return r.EnemyColor
	}
	return r.TeamColor
}
