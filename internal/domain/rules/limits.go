package rules

import (
	"fmt"

	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/enums"
)

// Unlimited marks a ceiling that is not enforced.
const Unlimited = -1

func IsUnlimited(limit int) bool {
	return limit < 0
}

// TierCeilings holds one tier's ceilings per window. Storage ceilings are
// keyed by collection kind because they bound live row counts, not counters.
type TierCeilings struct {
	Daily   map[enums.Feature]int
	Monthly map[enums.Feature]int
	Storage map[enums.CollectionKind]int
}

// LimitTable is the immutable tier x window x feature ceiling table. It is
// built once at startup, validated for totality, and shared read-only across
// requests.
type LimitTable struct {
	ceilings map[enums.Tier]TierCeilings
}

func NewLimitTable(ceilings map[enums.Tier]TierCeilings) (*LimitTable, error) {
	table := &LimitTable{ceilings: make(map[enums.Tier]TierCeilings, len(ceilings))}
	for tier, tc := range ceilings {
		table.ceilings[tier] = TierCeilings{
			Daily:   copyFeatureMap(tc.Daily),
			Monthly: copyFeatureMap(tc.Monthly),
			Storage: copyKindMap(tc.Storage),
		}
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// Ceiling resolves the limit for a tracked feature. Holes are configuration
// errors; Validate guarantees they cannot survive startup, so an error here
// means the table was built without NewLimitTable.
func (t *LimitTable) Ceiling(tier enums.Tier, window enums.Window, feature enums.Feature) (int, error) {
	tc, ok := t.ceilings[tier]
	if !ok {
		return 0, fmt.Errorf("tier %q has no ceiling set", tier)
	}

	var byFeature map[enums.Feature]int
	switch window {
	case enums.WindowDaily:
		byFeature = tc.Daily
	case enums.WindowMonthly:
		byFeature = tc.Monthly
	default:
		return 0, fmt.Errorf("window %q does not track feature ceilings", window)
	}

	limit, ok := byFeature[feature]
	if !ok {
		return 0, fmt.Errorf("feature %q has no %s ceiling for tier %q", feature, window, tier)
	}
	return limit, nil
}

// StorageCeiling resolves the permanent ceiling for a countable collection.
func (t *LimitTable) StorageCeiling(tier enums.Tier, kind enums.CollectionKind) (int, error) {
	tc, ok := t.ceilings[tier]
	if !ok {
		return 0, fmt.Errorf("tier %q has no ceiling set", tier)
	}
	limit, ok := tc.Storage[kind]
	if !ok {
		return 0, fmt.Errorf("collection %q has no storage ceiling for tier %q", kind, tier)
	}
	return limit, nil
}

// Validate checks the table is total: every tier, every tracked feature in
// its window, every collection kind. It also cross-checks the counter-column
// resolver so a feature cannot have a ceiling without a counter column or
// vice versa.
func (t *LimitTable) Validate() error {
	if err := ValidateCounterColumns(); err != nil {
		return err
	}

	for _, tier := range enums.AllTiers() {
		tc, ok := t.ceilings[tier]
		if !ok {
			return fmt.Errorf("limit table: missing tier %q", tier)
		}
		for _, feature := range enums.AllFeatures() {
			window, err := WindowOf(feature)
			if err != nil {
				return err
			}
			byFeature := tc.Daily
			if window == enums.WindowMonthly {
				byFeature = tc.Monthly
			}
			if _, ok := byFeature[feature]; !ok {
				return fmt.Errorf("limit table: tier %q missing %s ceiling for %q", tier, window, feature)
			}
		}
		if extra := len(tc.Daily) + len(tc.Monthly) - len(enums.AllFeatures()); extra > 0 {
			return fmt.Errorf("limit table: tier %q has %d ceilings for untracked features", tier, extra)
		}
		for _, kind := range enums.AllCollectionKinds() {
			if _, ok := tc.Storage[kind]; !ok {
				return fmt.Errorf("limit table: tier %q missing storage ceiling for %q", tier, kind)
			}
		}
	}
	return nil
}

func copyFeatureMap(in map[enums.Feature]int) map[enums.Feature]int {
	out := make(map[enums.Feature]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyKindMap(in map[enums.CollectionKind]int) map[enums.CollectionKind]int {
	out := make(map[enums.CollectionKind]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
