package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/friendskids/friendskids/internal/config"
)

// ErrInvalidDate is returned when a stored date is not a valid YYYY-MM-DD value.
var ErrInvalidDate = errors.New(config.ErrInvalidDate)

// milestoneAges is the closed set of ages highlighted on the dashboard.
var milestoneAges = map[int]struct{}{
	1: {}, 5: {}, 10: {}, 13: {}, 16: {}, 18: {}, 21: {},
}

// IsMilestone reports whether age is one of the milestone ages.
func IsMilestone(age int) bool {
	_, ok := milestoneAges[age]
	return ok
}

// Projection is the derived, never persisted view of a birthdate relative to "now".
type Projection struct {
	// NextOccurrence is midnight (in the location of "now") of the next birthday,
	// today included.
	NextOccurrence time.Time `json:"-"`
	NextDate       string    `json:"next_date"`
	DaysUntil      int       `json:"days_until"`
	AgeAtNext      int       `json:"age_at_next"`

	// CurrentAge is the plain year difference. It does not check whether this
	// year's birthday already happened.
	CurrentAge  int  `json:"current_age"`
	IsMilestone bool `json:"is_milestone"`
}

// ParseBirthdate parses a YYYY-MM-DD date. Errors wrap ErrInvalidDate.
func ParseBirthdate(value string) (time.Time, error) {
	t, err := time.Parse(config.DateFormatISO, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return t, nil
}

// Project computes the next occurrence of birth relative to now.
// Only the calendar date of now matters; its location defines "today".
func Project(birth, now time.Time) Projection {
	loc := now.Location()
	today := startOfDay(now)

	next := occurrence(today.Year(), birth, loc)
	if next.Before(today) {
		next = occurrence(today.Year()+1, birth, loc)
	}

	age := next.Year() - birth.Year()
	return Projection{
		NextOccurrence: next,
		NextDate:       next.Format(config.DateFormatISO),
		DaysUntil:      daysBetween(today, next),
		AgeAtNext:      age,
		CurrentAge:     today.Year() - birth.Year(),
		IsMilestone:    IsMilestone(age),
	}
}

// ProjectString parses birthdate and projects it.
func ProjectString(birthdate string, now time.Time) (Projection, error) {
	birth, err := ParseBirthdate(birthdate)
	if err != nil {
		return Projection{}, err
	}
	return Project(birth, now), nil
}

// DaysUntilDate returns the signed number of calendar days from now to date.
// Used for pregnancy due dates, which may be overdue.
func DaysUntilDate(date string, now time.Time) (int, error) {
	d, err := ParseBirthdate(date)
	if err != nil {
		return 0, err
	}
	return daysBetween(startOfDay(now), d), nil
}

// occurrence returns the birthday observed in year. Feb 29 falls on Feb 28 in
// non-leap years.
func occurrence(year int, birth time.Time, loc *time.Location) time.Time {
	month, day := birth.Month(), birth.Day()
	if month == time.February && day == 29 && !isLeap(year) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days on the civil dates of a and b, so DST
// transitions and locations never skew the result.
func daysBetween(a, b time.Time) int {
	return int(civilDay(b) - civilDay(a))
}

func civilDay(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
