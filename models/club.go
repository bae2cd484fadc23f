package models

import "time"

// SubscriptionTier определяет набор возможностей клуба.
type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "free"
	TierPremium SubscriptionTier = "premium"
)

const DefaultCourts = 4

// Capabilities is the feature set the stats and pairing engines run with.
type Capabilities struct {
	RatingEnabled bool `json:"rating_enabled"`
}

// Capabilities returns the engine feature set for the tier.
func (t SubscriptionTier) Capabilities() Capabilities {
	return Capabilities{RatingEnabled: t == TierPremium}
}

func (t SubscriptionTier) Valid() bool {
	return t == TierFree || t == TierPremium
}

type Club struct {
	ID        int              `json:"id" db:"id"`
	Code      string           `json:"code" db:"code"`
	Name      string           `json:"name" db:"name"`
	Courts    int              `json:"courts" db:"courts"`
	Tier      SubscriptionTier `json:"subscription_tier" db:"subscription_tier"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}
