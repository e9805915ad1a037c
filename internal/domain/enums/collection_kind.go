package enums

import (
	"fmt"
	"strings"
)

// CollectionKind names a countable per-user collection with a permanent
// storage ceiling on the free tier.
type CollectionKind string

const (
	CollectionSavedIdeas   CollectionKind = "saved_ideas"
	CollectionSavedScripts CollectionKind = "saved_scripts"
)

func AllCollectionKinds() []CollectionKind {
	return []CollectionKind{CollectionSavedIdeas, CollectionSavedScripts}
}

func (k CollectionKind) Valid() bool {
	switch k {
	case CollectionSavedIdeas, CollectionSavedScripts:
		return true
	}
	return false
}

func ParseCollectionKind(raw string) (CollectionKind, error) {
	k := CollectionKind(strings.ToLower(strings.TrimSpace(raw)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown collection kind %q", raw)
	}
	return k, nil
}
