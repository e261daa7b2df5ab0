package enums

type SwipeDecision string

const (
	DecisionLike      SwipeDecision = "like"
	DecisionPass      SwipeDecision = "pass"
	DecisionSuperLike SwipeDecision = "super_like"
)

func (d SwipeDecision) Valid() bool {
	switch d {
	case DecisionLike, DecisionPass, DecisionSuperLike:
		return true
	default:
		return false
	}
}

// ConsumesQuota reports whether the decision counts against the daily
// swipe allowance. Passing is always free.
func (d SwipeDecision) ConsumesQuota() bool {
	return d == DecisionLike || d == DecisionSuperLike
}
