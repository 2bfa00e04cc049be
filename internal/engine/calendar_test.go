package engine_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/friendskids/friendskids/internal/config"
	"github.com/friendskids/friendskids/internal/engine"
	"github.com/friendskids/friendskids/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(name, friend, birthdate string) engine.KidRecord {
	return engine.KidRecord{
		Kid:        models.Kid{ID: uuid.New(), Name: name, Birthdate: birthdate},
		FriendName: friend,
	}
}

func builderAt(now time.Time) *engine.CalendarBuilder {
	return &engine.CalendarBuilder{Clock: engine.FixedClock(now)}
}

func TestCalendarBuilder_TodayCount(t *testing.T) {
	b := builderAt(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC))

	ics, today, err := b.Build(context.Background(), []engine.KidRecord{
		record("Mia", "Sarah", "2020-01-01"),
		record("Leo", "Tom", "2015-06-15"),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, today, "Only Mia has her birthday today")
	icsStr := string(ics)
	assert.Contains(t, icsStr, "BEGIN:VCALENDAR")
	assert.Contains(t, icsStr, "SUMMARY:Birthday: Mia (5)")
	assert.Contains(t, icsStr, "DESCRIPTION:Sarah")
}

func TestCalendarBuilder_GeneratesYearRange(t *testing.T) {
	// Current Date: 2025-01-01. Birth: 2010-12-31.
	b := builderAt(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	ics, _, err := b.Build(context.Background(), []engine.KidRecord{record("Range", "F", "2010-12-31")})
	require.NoError(t, err)

	icsStr := string(ics)
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20241231", "Should include previous year")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20251231", "Should include current year")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20261231", "Should include next year")
	assert.Equal(t, 3, strings.Count(icsStr, "BEGIN:VEVENT"))
}

func TestCalendarBuilder_StableUIDs(t *testing.T) {
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	r := record("Mia", "Sarah", "2020-02-10")

	first, _, err := builderAt(now).Build(context.Background(), []engine.KidRecord{r})
	require.NoError(t, err)
	second, _, err := builderAt(now.Add(3*time.Hour)).Build(context.Background(), []engine.KidRecord{r})
	require.NoError(t, err)

	uid := fmt.Sprintf(config.FormatUID, r.Kid.ID.String(), 2025, config.ICalDomain)
	assert.Contains(t, string(first), "UID:"+uid)
	assert.Contains(t, string(second), "UID:"+uid)
}

func TestCalendarBuilder_LeaplingObservedFeb28(t *testing.T) {
	b := builderAt(time.Date(2025, 2, 28, 8, 0, 0, 0, time.UTC))

	ics, today, err := b.Build(context.Background(), []engine.KidRecord{record("Leap", "F", "2020-02-29")})
	require.NoError(t, err)

	assert.Equal(t, 1, today)
	icsStr := string(ics)
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20240229")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20250228")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20260228")
}

func TestCalendarBuilder_BabyBornThisYear(t *testing.T) {
	// Expected: 2024 (skipped), 2025 (Birth), 2026 (1 year).
	b := builderAt(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	b.FormatSummary = func(name string, age int) string {
		if age == 0 {
			return fmt.Sprintf("Welcome %s", name)
		}
		return fmt.Sprintf("%s turns %d", name, age)
	}

	ics, _, err := b.Build(context.Background(), []engine.KidRecord{record("Baby", "F", "2025-05-01")})
	require.NoError(t, err)

	icsStr := string(ics)
	assert.NotContains(t, icsStr, "DTSTART;VALUE=DATE:20240501", "Should NOT generate event before birth")
	assert.Contains(t, icsStr, "SUMMARY:Welcome Baby")
	assert.Contains(t, icsStr, "SUMMARY:Baby turns 1")
	assert.Equal(t, 2, strings.Count(icsStr, "BEGIN:VEVENT"))
}

func TestCalendarBuilder_WithReminders(t *testing.T) {
	b := builderAt(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	b.ReminderTrigger = "-P1D"

	ics, _, err := b.Build(context.Background(), []engine.KidRecord{record("Mia", "Sarah", "2020-02-10")})
	require.NoError(t, err)

	icsStr := string(ics)
	assert.Contains(t, icsStr, "BEGIN:VALARM", "ICS should contain an alarm component")
	assert.Contains(t, icsStr, "TRIGGER:-P1D", "Alarm trigger should match configuration")
	assert.Contains(t, icsStr, "ACTION:DISPLAY")
}

func TestCalendarBuilder_EmptyAndInvalid(t *testing.T) {
	b := builderAt(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	ics, today, err := b.Build(context.Background(), []engine.KidRecord{record("Broken", "F", "31/12/2020")})
	require.NoError(t, err)
	assert.Equal(t, 0, today)
	assert.Equal(t, config.StubVCalendar, string(ics), "An empty feed is still a valid calendar")
}

func TestCalendarBuilder_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := builderAt(time.Now()).Build(ctx, []engine.KidRecord{record("Mia", "Sarah", "2020-02-10")})
	assert.ErrorIs(t, err, context.Canceled)
}
