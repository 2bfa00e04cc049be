package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/friendskids/friendskids/internal/config"
)

// CalendarBuilder renders kids' birthdays as an iCalendar feed.
type CalendarBuilder struct {
	Clock Clock

	// ReminderTrigger is an ISO8601 duration (e.g. "-P1D"); empty disables alarms.
	ReminderTrigger string

	// FormatSummary allows the caller to inject localized strings.
	// age 0 is the day of birth.
	FormatSummary func(name string, age int) string
}

// Build returns the ICS data and the number of birthdays falling today.
func (b *CalendarBuilder) Build(ctx context.Context, records []KidRecord) ([]byte, int, error) {
	start := time.Now()

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986: Suggest a refresh interval
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	// Local time drives the logic, UTC only stamps the events. The stamp has
	// day granularity so unchanged data renders identical bytes all day.
	now := b.Clock.Now()
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(startOfDay(now).UTC())

	today := 0
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		birth, err := ParseBirthdate(r.Kid.Birthdate)
		if err != nil {
			slog.Debug(config.MsgSkippedKid,
				config.LogKeyComponent, config.CompCalendar,
				config.LogKeyKid, r.Kid.ID.String(),
				config.LogKeyValue, r.Kid.Birthdate)
			continue
		}

		events, isToday := b.createEvents(r, birth, now)
		if isToday {
			today++
		}
		for _, e := range events {
			e.Props.Set(dtStampProp)
			cal.Children = append(cal.Children, e.Component)
		}
	}

	// An empty VCALENDAR is still a valid feed; the encoder rejects it.
	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), 0, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Debug(config.MsgCalendarBuilt,
		config.LogKeyComponent, config.CompCalendar,
		config.LogKeyCount, len(cal.Children),
		config.LogKeyDuration, time.Since(start).Milliseconds())
	return buf.Bytes(), today, nil
}

// createEvents generates events for the previous, current and next year so
// calendar clients can scroll without a refresh. No event precedes the birth.
func (b *CalendarBuilder) createEvents(r KidRecord, birth, now time.Time) ([]*ical.Event, bool) {
	currentYear := now.Year()
	loc := now.Location()
	todayStart := startOfDay(now)

	var events []*ical.Event
	isToday := false

	for _, y := range []int{currentYear - 1, currentYear, currentYear + 1} {
		if y < birth.Year() {
			continue
		}

		age := y - birth.Year()
		summary := b.summary(r.Kid.Name, age)

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, r.Kid.ID.String(), y, config.ICalDomain))
		event.Props.SetText(config.PropSummary, summary)
		if r.FriendName != "" {
			event.Props.SetText(config.PropDescription, r.FriendName)
		}

		eventDate := occurrence(y, birth, loc)
		if eventDate.Equal(todayStart) {
			isToday = true
		}

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(eventDate)
		event.Props.Set(dtStartProp)

		if b.ReminderTrigger != "" {
			addAlarm(event, b.ReminderTrigger, summary)
		}

		events = append(events, event)
	}
	return events, isToday
}

func (b *CalendarBuilder) summary(name string, age int) string {
	if b.FormatSummary != nil {
		if s := b.FormatSummary(name, age); s != "" {
			return s
		}
	}
	if age == 0 {
		return fmt.Sprintf(config.FallbackSummaryBirth, name)
	}
	return fmt.Sprintf(config.FallbackSummaryAge, name, age)
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}
