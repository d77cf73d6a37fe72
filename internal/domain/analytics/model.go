// Package analytics defines the per-day metrics bucket and the canonical
// calendar-day normalization every comparison and storage key uses.
package analytics

import "time"

// Analytics is one day's accumulated counters. Date is always a day key
// (UTC midnight); there is at most one row per day.
type Analytics struct {
	ID          int64     `json:"id"`
	Date        time.Time `json:"date"`
	TotalVisits int       `json:"totalVisits"`
	NewUsers    int       `json:"newUsers"`
	ActiveUsers int       `json:"activeUsers"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Delta is the set of non-negative increments applied to a day's bucket.
// Omitted counters stay zero, leaving the stored values untouched.
type Delta struct {
	TotalVisits int `json:"totalVisits,omitempty"`
	NewUsers    int `json:"newUsers,omitempty"`
	ActiveUsers int `json:"activeUsers,omitempty"`
}

// DayKey normalizes t to its UTC calendar day. Two instants belong to the
// same bucket exactly when their day keys are equal.
func DayKey(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
