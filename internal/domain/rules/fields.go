package rules

import (
	"fmt"

	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/enums"
)

// counterColumns is the total mapping from (window, feature) to the
// usage_records column holding that counter. Column names do not follow a
// derivable convention, so every tracked feature must be listed here; a miss
// is a configuration error, never a guessed name. The usage repo interpolates
// these values into SQL, so they must only ever come from this map.
var counterColumns = map[enums.Window]map[enums.Feature]string{
	enums.WindowDaily: {
		enums.FeatureSearchQueries:   "search_queries_today",
		enums.FeatureChannelAnalyses: "channel_analyses_today",
	},
	enums.WindowMonthly: {
		enums.FeatureContentIdeations:  "content_ideations_month",
		enums.FeatureScriptGenerations: "script_generations_month",
	},
}

func CounterColumn(window enums.Window, feature enums.Feature) (string, error) {
	byFeature, ok := counterColumns[window]
	if !ok {
		return "", fmt.Errorf("window %q has no tracked counters", window)
	}
	column, ok := byFeature[feature]
	if !ok {
		return "", fmt.Errorf("feature %q is not tracked in the %s window", feature, window)
	}
	return column, nil
}

// WindowOf returns the single window a feature is tracked in.
func WindowOf(feature enums.Feature) (enums.Window, error) {
	for window, byFeature := range counterColumns {
		if _, ok := byFeature[feature]; ok {
			return window, nil
		}
	}
	return "", fmt.Errorf("feature %q is not tracked in any window", feature)
}

// DailyColumns and MonthlyColumns list the counter columns zeroed by a window
// reset, in a stable order.
func DailyColumns() []string {
	return []string{"search_queries_today", "channel_analyses_today"}
}

func MonthlyColumns() []string {
	return []string{"content_ideations_month", "script_generations_month"}
}

// ValidateCounterColumns checks the resolver is total over the feature enum
// and that no feature appears in two windows. Run at startup.
func ValidateCounterColumns() error {
	seen := map[enums.Feature]enums.Window{}
	for window, byFeature := range counterColumns {
		for feature := range byFeature {
			if prev, dup := seen[feature]; dup {
				return fmt.Errorf("feature %q mapped in both %s and %s windows", feature, prev, window)
			}
			seen[feature] = window
		}
	}
	for _, feature := range enums.AllFeatures() {
		if _, ok := seen[feature]; !ok {
			return fmt.Errorf("feature %q has no counter column", feature)
		}
	}
	return nil
}
