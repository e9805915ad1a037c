package rules

import "time"

// DefaultRenewalDay anchors the monthly window. With the default of 1 the
// monthly reset reduces to "first request in a new calendar month".
const DefaultRenewalDay = 1

// ResetDecision says which windows have rolled over and carries the boundary
// timestamps the usage repo uses to guard the zeroing update, so two
// concurrent evaluations of the same rollover persist at most one reset.
type ResetDecision struct {
	ResetDaily   bool
	ResetMonthly bool
	DayStart     time.Time
	CycleStart   time.Time
}

func (d ResetDecision) Any() bool {
	return d.ResetDaily || d.ResetMonthly
}

// EvaluateReset decides whether the daily and/or monthly window has elapsed.
// Daily rolls over when the last daily reset falls strictly before the start
// of the current local calendar day. Monthly rolls over when the last monthly
// reset sits in a different month/year and the local day-of-month has reached
// the renewal day.
func EvaluateReset(now, lastDaily, lastMonthly time.Time, renewalDay int, loc *time.Location) ResetDecision {
	if loc == nil {
		loc = time.UTC
	}
	renewalDay = clampRenewalDay(renewalDay)

	local := now.In(loc)
	dayStart := StartOfDay(now, loc)

	lastDailyLocal := lastDaily.In(loc)
	lastMonthlyLocal := lastMonthly.In(loc)

	decision := ResetDecision{
		DayStart:   dayStart.UTC(),
		CycleStart: time.Date(local.Year(), local.Month(), renewalDay, 0, 0, 0, 0, loc).UTC(),
	}

	if lastDailyLocal.Before(dayStart) {
		decision.ResetDaily = true
	}

	sameMonth := lastMonthlyLocal.Year() == local.Year() && lastMonthlyLocal.Month() == local.Month()
	if !sameMonth && local.Day() >= renewalDay {
		decision.ResetMonthly = true
	}

	return decision
}

// StartOfDay returns local midnight of now's calendar day.
func StartOfDay(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// NextDailyResetAt is the next daily boundary, reported to clients in UTC.
func NextDailyResetAt(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc).UTC()
}

// NextMonthlyResetAt is the next renewal-day boundary in UTC.
func NextMonthlyResetAt(now time.Time, renewalDay int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	renewalDay = clampRenewalDay(renewalDay)
	local := now.In(loc)

	next := time.Date(local.Year(), local.Month(), renewalDay, 0, 0, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month()+1, renewalDay, 0, 0, 0, 0, loc)
	}
	return next.UTC()
}

// DayKey formats now's local calendar day, used for burst-limiter keys and
// logging, not for quota storage.
func DayKey(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format("2006-01-02")
}

// Renewal days past 28 would skip short months, so they are clamped.
func clampRenewalDay(day int) int {
	if day < 1 {
		return DefaultRenewalDay
	}
	if day > 28 {
		return 28
	}
	return day
}
