package reminder

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/friendskids/friendskids/internal/engine"
	"github.com/friendskids/friendskids/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) ListReminderCandidates(ctx context.Context) ([]models.ReminderCandidate, error) {
	args := m.Called(ctx)
	if c := args.Get(0); c != nil {
		return c.([]models.ReminderCandidate), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, n Notification) error {
	return m.Called(ctx, n).Error(0)
}

func candidate(name, birthdate string) models.ReminderCandidate {
	return models.ReminderCandidate{
		Kid:        models.Kid{ID: uuid.New(), Name: name, Birthdate: birthdate, ReminderEnabled: true},
		FriendName: "Sarah",
		UserID:     uuid.New(),
	}
}

func newWorker(src Source, n Notifier, now time.Time) *Worker {
	return &Worker{
		Source:   src,
		Notifier: n,
		Clock:    engine.FixedClock(now),
		LeadDays: []int{7, 1, 0},
	}
}

func TestScan_LeadDays(t *testing.T) {
	now := time.Date(2024, 2, 3, 9, 0, 0, 0, time.UTC)
	week := candidate("Week", "2020-02-10")
	tomorrow := candidate("Tomorrow", "2019-02-04")
	today := candidate("Today", "2018-02-03")
	other := candidate("Other", "2018-03-20")

	src := new(MockSource)
	src.On("ListReminderCandidates", mock.Anything).
		Return([]models.ReminderCandidate{week, tomorrow, today, other}, nil)

	var got []Notification
	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { got = append(got, args.Get(1).(Notification)) }).
		Return(nil)

	res, err := newWorker(src, notifier, now).Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ScanResult{Total: 4, Notified: 3}, res)
	require.Len(t, got, 3)
	assert.Equal(t, "Week", got[0].KidName)
	assert.Equal(t, 7, got[0].LeadDays)
	assert.Equal(t, "Sarah", got[0].FriendName)
	assert.Equal(t, week.UserID, got[0].UserID)
	assert.Equal(t, 1, got[1].LeadDays)
	assert.Equal(t, 0, got[2].LeadDays)
	assert.Equal(t, 6, got[2].Projection.AgeAtNext)
}

func TestScan_NotifiesOnce(t *testing.T) {
	now := time.Date(2024, 2, 3, 9, 0, 0, 0, time.UTC)
	src := new(MockSource)
	src.On("ListReminderCandidates", mock.Anything).
		Return([]models.ReminderCandidate{candidate("Today", "2018-02-03")}, nil)

	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.Anything).Return(nil).Once()

	w := newWorker(src, notifier, now)
	_, err := w.Scan(context.Background())
	require.NoError(t, err)

	w.Clock = engine.FixedClock(now.Add(3 * time.Hour))
	res, err := w.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Notified)

	notifier.AssertNumberOfCalls(t, "Notify", 1)
}

func TestScan_FailedNotificationRetried(t *testing.T) {
	now := time.Date(2024, 2, 3, 9, 0, 0, 0, time.UTC)
	src := new(MockSource)
	src.On("ListReminderCandidates", mock.Anything).
		Return([]models.ReminderCandidate{candidate("Today", "2018-02-03")}, nil)

	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()
	notifier.On("Notify", mock.Anything, mock.Anything).Return(nil).Once()

	w := newWorker(src, notifier, now)
	res, err := w.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Notified)

	res, err = w.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Notified)
	notifier.AssertExpectations(t)
}

func TestScan_InvalidBirthdateSkipped(t *testing.T) {
	src := new(MockSource)
	src.On("ListReminderCandidates", mock.Anything).
		Return([]models.ReminderCandidate{candidate("Broken", "2018/02/03")}, nil)

	res, err := newWorker(src, new(MockNotifier), time.Now()).Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ScanResult{Total: 1, Skipped: 1}, res)
}

func TestScan_SourceError(t *testing.T) {
	src := new(MockSource)
	src.On("ListReminderCandidates", mock.Anything).Return(nil, errors.New("backend down"))

	_, err := newWorker(src, new(MockNotifier), time.Now()).Scan(context.Background())
	assert.ErrorContains(t, err, "backend down")
}

func TestScan_PrunesPastOccurrences(t *testing.T) {
	now := time.Date(2024, 2, 3, 9, 0, 0, 0, time.UTC)
	src := new(MockSource)
	src.On("ListReminderCandidates", mock.Anything).
		Return([]models.ReminderCandidate{candidate("Today", "2018-02-03")}, nil)
	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)

	w := newWorker(src, notifier, now)
	_, err := w.Scan(context.Background())
	require.NoError(t, err)
	assert.Len(t, w.sent, 1)

	w.Clock = engine.FixedClock(now.AddDate(0, 0, 1))
	_, err = w.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, w.sent)
}

func TestRun_StopsOnCancel(t *testing.T) {
	var scans atomic.Int32
	src := new(MockSource)
	src.On("ListReminderCandidates", mock.Anything).
		Run(func(mock.Arguments) { scans.Add(1) }).
		Return([]models.ReminderCandidate{}, nil)

	w := newWorker(src, LogNotifier{}, time.Now())
	w.Interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return scans.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestLogNotifier(t *testing.T) {
	assert.NoError(t, LogNotifier{}.Notify(context.Background(), Notification{KidName: "Mia"}))
}
