package enums

import (
	"fmt"
	"strings"
)

// Feature is a closed set of quota-tracked capabilities. The limit table, the
// counter-column resolver and every call site share this enum, so a key that
// exists in one table but not another fails startup validation instead of
// silently resolving to a made-up counter.
type Feature string

const (
	FeatureSearchQueries     Feature = "search_queries"
	FeatureChannelAnalyses   Feature = "channel_analyses"
	FeatureContentIdeations  Feature = "content_ideations"
	FeatureScriptGenerations Feature = "script_generations"
)

func AllFeatures() []Feature {
	return []Feature{
		FeatureSearchQueries,
		FeatureChannelAnalyses,
		FeatureContentIdeations,
		FeatureScriptGenerations,
	}
}

func (f Feature) Valid() bool {
	switch f {
	case FeatureSearchQueries, FeatureChannelAnalyses, FeatureContentIdeations, FeatureScriptGenerations:
		return true
	}
	return false
}

func ParseFeature(raw string) (Feature, error) {
	f := Feature(strings.ToLower(strings.TrimSpace(raw)))
	if !f.Valid() {
		return "", fmt.Errorf("unknown feature %q", raw)
	}
	return f, nil
}
