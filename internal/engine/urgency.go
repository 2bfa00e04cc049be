package engine

import "github.com/friendskids/friendskids/internal/config"

// Urgency buckets DaysUntil for display.
type Urgency string

const (
	UrgencyToday    Urgency = "today"
	UrgencySoon     Urgency = "soon"
	UrgencyUpcoming Urgency = "upcoming"
	UrgencyLater    Urgency = "later"
)

// urgencyTable is ordered by ascending upper bound (inclusive).
var urgencyTable = []struct {
	maxDays int
	urgency Urgency
}{
	{0, UrgencyToday},
	{config.UrgencySoonDays, UrgencySoon},
	{config.UrgencyUpcomingDays, UrgencyUpcoming},
}

// UrgencyFor maps a day count to its bucket.
func UrgencyFor(daysUntil int) Urgency {
	for _, row := range urgencyTable {
		if daysUntil <= row.maxDays {
			return row.urgency
		}
	}
	return UrgencyLater
}
