// Package reminder periodically looks for birthdays at a configured lead time
// and hands them to a Notifier.
package reminder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/friendskids/friendskids/internal/config"
	"github.com/friendskids/friendskids/internal/engine"
	"github.com/friendskids/friendskids/internal/models"
	"github.com/google/uuid"
)

// Source lists the kids whose reminders are enabled on both the kid and the friend.
type Source interface {
	ListReminderCandidates(ctx context.Context) ([]models.ReminderCandidate, error)
}

// Notification is one due reminder.
type Notification struct {
	UserID     uuid.UUID
	KidID      uuid.UUID
	KidName    string
	FriendName string
	Projection engine.Projection
	LeadDays   int
}

// Notifier delivers reminders.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes reminders to the structured log.
type LogNotifier struct{}

// Notify implements Notifier.
func (LogNotifier) Notify(_ context.Context, n Notification) error {
	slog.Info(config.MsgReminderDue,
		config.LogKeyComponent, config.CompWorker,
		config.LogKeyUser, n.UserID.String(),
		config.LogKeyKid, n.KidID.String(),
		config.LogKeyName, n.KidName,
		config.LogKeyFriend, n.FriendName,
		config.LogKeyDaysUntil, n.Projection.DaysUntil,
		config.LogKeyAge, n.Projection.AgeAtNext,
	)
	return nil
}

// ScanResult summarizes one pass.
type ScanResult struct {
	Total    int
	Notified int
	Skipped  int
}

// sentKey identifies one reminder: a kid, an occurrence and a lead time.
type sentKey struct {
	kid  uuid.UUID
	date string
	lead int
}

// Worker scans on a fixed interval. Each (kid, occurrence, lead) is notified
// at most once per process.
type Worker struct {
	Source   Source
	Notifier Notifier
	Clock    engine.Clock
	Interval time.Duration
	LeadDays []int

	mu   sync.Mutex
	sent map[sentKey]struct{}
}

// Run scans immediately, then on every tick until ctx is done.
func (w *Worker) Run(ctx context.Context) {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	interval := w.Interval
	if interval <= 0 {
		interval = config.DefaultReminderEvery
	}

	w.scanAndLog(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, interval.String())

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return

		case <-ticker.C:
			w.scanAndLog(ctx)
		}
	}
}

func (w *Worker) scanAndLog(ctx context.Context) {
	res, err := w.Scan(ctx)
	if err != nil {
		slog.Error(config.MsgReminderFailed,
			config.LogKeyComponent, config.CompWorker,
			config.LogKeyError, err,
		)
		return
	}
	slog.Info(config.MsgReminderScan,
		config.LogKeyComponent, config.CompWorker,
		config.LogKeyTotal, res.Total,
		config.LogKeyNotified, res.Notified,
		config.LogKeySkipped, res.Skipped,
	)
}

// Scan runs one pass. The clock is read once so the whole pass shares one "today".
// A failed notification is not recorded and is retried on the next pass.
func (w *Worker) Scan(ctx context.Context) (ScanResult, error) {
	candidates, err := w.Source.ListReminderCandidates(ctx)
	if err != nil {
		return ScanResult{}, err
	}

	now := w.Clock.Now()
	today := now.Format(config.DateFormatISO)
	leads := make(map[int]bool, len(w.LeadDays))
	for _, d := range w.LeadDays {
		leads[d] = true
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sent == nil {
		w.sent = make(map[sentKey]struct{})
	}
	w.prune(today)

	res := ScanResult{Total: len(candidates)}
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		p, err := engine.ProjectString(c.Kid.Birthdate, now)
		if err != nil {
			res.Skipped++
			slog.Warn(config.MsgSkippedKid,
				config.LogKeyComponent, config.CompWorker,
				config.LogKeyKid, c.Kid.ID.String(),
				config.LogKeyValue, c.Kid.Birthdate,
			)
			continue
		}
		if !leads[p.DaysUntil] {
			continue
		}

		key := sentKey{kid: c.Kid.ID, date: p.NextDate, lead: p.DaysUntil}
		if _, done := w.sent[key]; done {
			continue
		}

		n := Notification{
			UserID:     c.UserID,
			KidID:      c.Kid.ID,
			KidName:    c.Kid.Name,
			FriendName: c.FriendName,
			Projection: p,
			LeadDays:   p.DaysUntil,
		}
		if err := w.Notifier.Notify(ctx, n); err != nil {
			slog.Error(config.MsgNotifyFailed,
				config.LogKeyComponent, config.CompWorker,
				config.LogKeyKid, c.Kid.ID.String(),
				config.LogKeyError, err,
			)
			continue
		}
		w.sent[key] = struct{}{}
		res.Notified++
	}
	return res, nil
}

// prune forgets occurrences already in the past.
func (w *Worker) prune(today string) {
	for k := range w.sent {
		if k.date < today {
			delete(w.sent, k)
		}
	}
}
