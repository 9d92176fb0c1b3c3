package priority

// PickState tracks whether the mandatory first pick of the run has been
// completed. It is an explicit value handed into and out of the selector
// rather than hidden selector state, so callers and tests can see the
// transition.
type PickState int

const (
	// FirstPickPending means no object has been secured yet; the first
	// pick must be team-colored when the ruleset demands it.
	FirstPickPending PickState = iota
	// Normal means the first pick has been physically secured and table
	// scores apply.
	Normal
)

// CompleteFirstPick latches the state to Normal. The transition is
// one-way: once Normal, the state never returns to FirstPickPending for
// the lifetime of the run.
func (s PickState) CompleteFirstPick() PickState {
	return Normal
}

func (s PickState) String() string {
	if s == FirstPickPending {
		return "first-pick-pending"
	}
	return "normal"
}
