// Package store defines the persistence boundary of the service. Two backends
// implement it: the hosted auto-REST API (rest) and a direct Postgres pool
// (postgres).
package store

import (
	"context"
	"errors"

	"github.com/friendskids/friendskids/internal/config"
	"github.com/friendskids/friendskids/internal/engine"
	"github.com/friendskids/friendskids/internal/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned for missing rows and for rows owned by another user.
var ErrNotFound = errors.New(config.ErrNotFound)

// Store is the full set of operations the API, the CLI and the reminder worker
// need. Every user-scoped call takes the caller's ID and never returns rows of
// another user.
type Store interface {
	ListFriends(ctx context.Context, userID uuid.UUID) ([]models.Friend, error)
	GetFriend(ctx context.Context, userID, friendID uuid.UUID) (models.Friend, error)
	CreateFriend(ctx context.Context, f models.Friend) (models.Friend, error)
	UpdateFriend(ctx context.Context, f models.Friend) (models.Friend, error)
	DeleteFriend(ctx context.Context, userID, friendID uuid.UUID) error

	// ListKids returns the kids of one friend ordered by birthdate.
	ListKids(ctx context.Context, userID, friendID uuid.UUID) ([]models.Kid, error)
	// ListKidRecords returns every kid of the user with its friend's name.
	ListKidRecords(ctx context.Context, userID uuid.UUID) ([]engine.KidRecord, error)
	GetKid(ctx context.Context, userID, kidID uuid.UUID) (models.Kid, error)
	CreateKid(ctx context.Context, k models.Kid) (models.Kid, error)
	UpdateKid(ctx context.Context, userID uuid.UUID, k models.Kid) (models.Kid, error)
	DeleteKid(ctx context.Context, userID, kidID uuid.UUID) error

	// ListPregnancies returns the pregnancies in progress ordered by due date.
	ListPregnancies(ctx context.Context, userID uuid.UUID) ([]models.PregnancyWithFriend, error)
	GetPregnancy(ctx context.Context, userID, pregnancyID uuid.UUID) (models.Pregnancy, error)
	CreatePregnancy(ctx context.Context, p models.Pregnancy) (models.Pregnancy, error)
	UpdatePregnancy(ctx context.Context, userID uuid.UUID, p models.Pregnancy) (models.Pregnancy, error)
	DeletePregnancy(ctx context.Context, userID, pregnancyID uuid.UUID) error

	// ListReminderCandidates crosses users; only the reminder worker calls it.
	ListReminderCandidates(ctx context.Context) ([]models.ReminderCandidate, error)

	Close()
}

type tokenKey struct{}

// WithAccessToken attaches the caller's access token so backends relying on
// row-level security act on the user's behalf.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// AccessToken returns the token set by WithAccessToken.
func AccessToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}
