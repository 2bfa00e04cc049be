package server

import (
	"context"

	"github.com/friendskids/friendskids/internal/engine"
	"github.com/friendskids/friendskids/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStore implements store.Store using testify/mock. Create and Update
// calls accept a function return to echo the written row.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.Friend, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Friend), args.Error(1)
}

func (m *MockStore) GetFriend(ctx context.Context, userID, friendID uuid.UUID) (models.Friend, error) {
	args := m.Called(ctx, userID, friendID)
	return args.Get(0).(models.Friend), args.Error(1)
}

func (m *MockStore) CreateFriend(ctx context.Context, f models.Friend) (models.Friend, error) {
	args := m.Called(ctx, f)
	if fn, ok := args.Get(0).(func(context.Context, models.Friend) models.Friend); ok {
		return fn(ctx, f), args.Error(1)
	}
	return args.Get(0).(models.Friend), args.Error(1)
}

func (m *MockStore) UpdateFriend(ctx context.Context, f models.Friend) (models.Friend, error) {
	args := m.Called(ctx, f)
	if fn, ok := args.Get(0).(func(context.Context, models.Friend) models.Friend); ok {
		return fn(ctx, f), args.Error(1)
	}
	return args.Get(0).(models.Friend), args.Error(1)
}

func (m *MockStore) DeleteFriend(ctx context.Context, userID, friendID uuid.UUID) error {
	return m.Called(ctx, userID, friendID).Error(0)
}

func (m *MockStore) ListKids(ctx context.Context, userID, friendID uuid.UUID) ([]models.Kid, error) {
	args := m.Called(ctx, userID, friendID)
	return args.Get(0).([]models.Kid), args.Error(1)
}

func (m *MockStore) ListKidRecords(ctx context.Context, userID uuid.UUID) ([]engine.KidRecord, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]engine.KidRecord), args.Error(1)
}

func (m *MockStore) GetKid(ctx context.Context, userID, kidID uuid.UUID) (models.Kid, error) {
	args := m.Called(ctx, userID, kidID)
	return args.Get(0).(models.Kid), args.Error(1)
}

func (m *MockStore) CreateKid(ctx context.Context, k models.Kid) (models.Kid, error) {
	args := m.Called(ctx, k)
	if fn, ok := args.Get(0).(func(context.Context, models.Kid) models.Kid); ok {
		return fn(ctx, k), args.Error(1)
	}
	return args.Get(0).(models.Kid), args.Error(1)
}

func (m *MockStore) UpdateKid(ctx context.Context, userID uuid.UUID, k models.Kid) (models.Kid, error) {
	args := m.Called(ctx, userID, k)
	if fn, ok := args.Get(0).(func(context.Context, uuid.UUID, models.Kid) models.Kid); ok {
		return fn(ctx, userID, k), args.Error(1)
	}
	return args.Get(0).(models.Kid), args.Error(1)
}

func (m *MockStore) DeleteKid(ctx context.Context, userID, kidID uuid.UUID) error {
	return m.Called(ctx, userID, kidID).Error(0)
}

func (m *MockStore) ListPregnancies(ctx context.Context, userID uuid.UUID) ([]models.PregnancyWithFriend, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.PregnancyWithFriend), args.Error(1)
}

func (m *MockStore) GetPregnancy(ctx context.Context, userID, id uuid.UUID) (models.Pregnancy, error) {
	args := m.Called(ctx, userID, id)
	return args.Get(0).(models.Pregnancy), args.Error(1)
}

func (m *MockStore) CreatePregnancy(ctx context.Context, p models.Pregnancy) (models.Pregnancy, error) {
	args := m.Called(ctx, p)
	if fn, ok := args.Get(0).(func(context.Context, models.Pregnancy) models.Pregnancy); ok {
		return fn(ctx, p), args.Error(1)
	}
	return args.Get(0).(models.Pregnancy), args.Error(1)
}

func (m *MockStore) UpdatePregnancy(ctx context.Context, userID uuid.UUID, p models.Pregnancy) (models.Pregnancy, error) {
	args := m.Called(ctx, userID, p)
	if fn, ok := args.Get(0).(func(context.Context, uuid.UUID, models.Pregnancy) models.Pregnancy); ok {
		return fn(ctx, userID, p), args.Error(1)
	}
	return args.Get(0).(models.Pregnancy), args.Error(1)
}

func (m *MockStore) DeletePregnancy(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockStore) ListReminderCandidates(ctx context.Context) ([]models.ReminderCandidate, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.ReminderCandidate), args.Error(1)
}

func (m *MockStore) Close() {}
