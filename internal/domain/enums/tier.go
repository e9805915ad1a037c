package enums

import (
	"fmt"
	"strings"
)

// Tier is the subscription plan level that selects which ceiling set applies.
type Tier string

const (
	TierFree   Tier = "free"
	TierPro    Tier = "pro"
	TierAgency Tier = "agency"
)

func AllTiers() []Tier {
	return []Tier{TierFree, TierPro, TierAgency}
}

func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierPro, TierAgency:
		return true
	}
	return false
}

func ParseTier(raw string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(raw)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown tier %q", raw)
	}
	return t, nil
}
