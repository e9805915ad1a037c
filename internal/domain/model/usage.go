package model

import (
	"time"

	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/enums"
)

// UsageRecord mirrors one row of usage_records. Counters are mutated only by
// the reset protocol (zeroing) and the quota enforcer (incrementing); they are
// never decremented by feature code.
type UsageRecord struct {
	UserID           int64
	Tier             enums.Tier
	Daily            map[enums.Feature]int
	Monthly          map[enums.Feature]int
	LastDailyReset   time.Time
	LastMonthlyReset time.Time
	TZName           string
	UpdatedAt        time.Time
}

func (u UsageRecord) Counter(window enums.Window, feature enums.Feature) int {
	switch window {
	case enums.WindowDaily:
		return u.Daily[feature]
	case enums.WindowMonthly:
		return u.Monthly[feature]
	}
	return 0
}
