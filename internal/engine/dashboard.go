package engine

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/friendskids/friendskids/internal/config"
	"github.com/friendskids/friendskids/internal/models"
	"golang.org/x/text/cases"
)

// Filter selects one dashboard predicate.
type Filter string

const (
	FilterAll         Filter = "all"
	FilterThisMonth   Filter = "this-month"
	FilterMilestones  Filter = "milestones"
	FilterPendingRSVP Filter = "pending-rsvp"
	FilterNoGift      Filter = "no-gift"
	FilterNotTexted   Filter = "not-texted"
)

// Filters lists every accepted filter value.
var Filters = []Filter{
	FilterAll, FilterThisMonth, FilterMilestones, FilterPendingRSVP, FilterNoGift, FilterNotTexted,
}

// ParseFilter maps a raw value to a Filter. Unknown values fall back to FilterAll.
func ParseFilter(value string) Filter {
	f := Filter(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range Filters {
		if f == known {
			return f
		}
	}
	return FilterAll
}

// KidRecord is a stored kid together with its friend's name.
type KidRecord struct {
	Kid        models.Kid
	FriendName string
}

// Annotated is a kid decorated with its projection, ready for display.
type Annotated struct {
	models.Kid
	FriendName string     `json:"friend_name"`
	Projection Projection `json:"projection"`
	Urgency    Urgency    `json:"urgency"`

	birth time.Time
}

// Query drives Upcoming.
type Query struct {
	Search string
	Filter Filter
	Limit  int // <= 0 means no limit
}

// Annotate projects every record against now. Records with an unparseable
// birthdate are logged and left out; they never abort the pass.
func Annotate(records []KidRecord, now time.Time) []Annotated {
	out := make([]Annotated, 0, len(records))
	for _, r := range records {
		birth, err := ParseBirthdate(r.Kid.Birthdate)
		if err != nil {
			slog.Warn(config.MsgSkippedKid,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyKid, r.Kid.ID.String(),
				config.LogKeyValue, r.Kid.Birthdate,
			)
			continue
		}
		p := Project(birth, now)
		out = append(out, Annotated{
			Kid:        r.Kid,
			FriendName: r.FriendName,
			Projection: p,
			Urgency:    UrgencyFor(p.DaysUntil),
			birth:      birth,
		})
	}
	return out
}

// Upcoming annotates, searches, filters and sorts kids for the dashboard.
// The result is sorted by DaysUntil, ties keeping the input order.
func Upcoming(records []KidRecord, now time.Time, q Query) []Annotated {
	annotated := Annotate(records, now)

	match := searchMatcher(q.Search)
	keep := q.Filter.predicate(now)

	out := make([]Annotated, 0, len(annotated))
	for _, a := range annotated {
		if match(a) && keep(a) {
			out = append(out, a)
		}
	}

	SortByDaysUntil(out)

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// SortByDaysUntil sorts in place, stable.
func SortByDaysUntil(kids []Annotated) {
	sort.SliceStable(kids, func(i, j int) bool {
		return kids[i].Projection.DaysUntil < kids[j].Projection.DaysUntil
	})
}

// searchMatcher builds a case-folded substring matcher on kid or friend name.
func searchMatcher(term string) func(Annotated) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return func(Annotated) bool { return true }
	}

	fold := cases.Fold()
	needle := fold.String(term)
	return func(a Annotated) bool {
		return strings.Contains(fold.String(a.Name), needle) ||
			strings.Contains(fold.String(a.FriendName), needle)
	}
}

func (f Filter) predicate(now time.Time) func(Annotated) bool {
	switch f {
	case FilterThisMonth:
		month := now.Month()
		return func(a Annotated) bool { return a.birth.Month() == month }
	case FilterMilestones:
		return func(a Annotated) bool { return a.Projection.IsMilestone }
	case FilterPendingRSVP:
		return func(a Annotated) bool { return a.RSVPStatus == models.StatusNA }
	case FilterNoGift:
		return func(a Annotated) bool {
			return a.GiftBought == models.StatusNo || a.GiftBought == models.StatusNA
		}
	case FilterNotTexted:
		return func(a Annotated) bool {
			return !a.TextedHB && a.Projection.DaysUntil <= config.NotTextedWindowDays
		}
	default:
		return func(Annotated) bool { return true }
	}
}
