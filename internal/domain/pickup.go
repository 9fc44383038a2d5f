package domain

import (
	"fmt"
	"time"
)

// PickupSchedule lists upcoming pickups for one service in the order the
// upstream returned them (ascending).
type PickupSchedule []time.Time

// ResolvePickup picks the pickup to report at referenceNow.
//
// The first entry wins unless its calendar date is before referenceNow's, in
// which case the second entry is used when there is one. Entries past the
// second are never inspected and the schedule is not re-sorted. A single stale
// entry is returned unchanged.
func ResolvePickup(schedule PickupSchedule, referenceNow time.Time) (time.Time, error) {
	if len(schedule) == 0 {
		return time.Time{}, ErrEmptySchedule
	}

	candidate := schedule[0]
	if dateBefore(candidate, referenceNow) && len(schedule) > 1 {
		return schedule[1], nil
	}

	return candidate, nil
}

// dateBefore compares calendar dates, each taken in its own location.
func dateBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}

	return ad < bd
}

type ResolvedPickup struct {
	SubscriptionID string
	Value          time.Time
	ResolvedAt     time.Time
}

func (r ResolvedPickup) String() string {
	return fmt.Sprintf("%s@%s", r.SubscriptionID, r.Value.Format(time.RFC3339))
}
