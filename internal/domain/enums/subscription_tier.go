package enums

type SubscriptionTier string

const (
	TierFree     SubscriptionTier = "free"
	TierGold     SubscriptionTier = "gold"
	TierPlatinum SubscriptionTier = "platinum"
)

func (t SubscriptionTier) Valid() bool {
	switch t {
	case TierFree, TierGold, TierPlatinum:
		return true
	default:
		return false
	}
}

// CanSeeLikes reports whether the tier unlocks the likes inbox with
// full swiper identities instead of a bare count.
func (t SubscriptionTier) CanSeeLikes() bool {
	return t == TierGold || t == TierPlatinum
}
