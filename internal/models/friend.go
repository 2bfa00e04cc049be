package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Friend is the adult contact (guardian) a user tracks kids for.
type Friend struct {
	ID              uuid.UUID `json:"id" db:"id"`
	UserID          uuid.UUID `json:"user_id" db:"user_id"`
	Name            string    `json:"name" db:"name"`
	Email           *string   `json:"email,omitempty" db:"email"`
	Phone           *string   `json:"phone,omitempty" db:"phone"`
	Notes           *string   `json:"notes,omitempty" db:"notes"`
	ReminderEnabled bool      `json:"reminder_enabled" db:"reminder_enabled"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// FriendWithKids is a friend and its kids ordered by birthdate.
type FriendWithKids struct {
	Friend
	Kids []Kid `json:"kids"`
}

// FriendCreateRequest is the request body for POST /api/friends
type FriendCreateRequest struct {
	Name            string  `json:"name" binding:"required"`
	Email           *string `json:"email,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	ReminderEnabled *bool   `json:"reminder_enabled,omitempty"`
}

// FriendUpdateRequest is the request body for PATCH /api/friends/:id
type FriendUpdateRequest struct {
	Name            *string `json:"name,omitempty"`
	Email           *string `json:"email,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	ReminderEnabled *bool   `json:"reminder_enabled,omitempty"`
}

func (r FriendCreateRequest) Validate() error {
	if err := validateName(r.Name); err != nil {
		return err
	}
	return validateNotes(r.Notes)
}

// NewFriend builds the row for a create request. Reminders default to on.
func NewFriend(userID uuid.UUID, r FriendCreateRequest) Friend {
	reminder := true
	if r.ReminderEnabled != nil {
		reminder = *r.ReminderEnabled
	}
	return Friend{
		ID:              uuid.New(),
		UserID:          userID,
		Name:            strings.TrimSpace(r.Name),
		Email:           emptyToNil(r.Email),
		Phone:           emptyToNil(r.Phone),
		Notes:           emptyToNil(r.Notes),
		ReminderEnabled: reminder,
	}
}

func (r FriendUpdateRequest) Validate() error {
	if r.Name != nil {
		if err := validateName(*r.Name); err != nil {
			return err
		}
	}
	return validateNotes(r.Notes)
}

// Apply copies the set fields onto f.
func (r FriendUpdateRequest) Apply(f *Friend) {
	if r.Name != nil {
		f.Name = strings.TrimSpace(*r.Name)
	}
	if r.Email != nil {
		f.Email = emptyToNil(r.Email)
	}
	if r.Phone != nil {
		f.Phone = emptyToNil(r.Phone)
	}
	if r.Notes != nil {
		f.Notes = emptyToNil(r.Notes)
	}
	if r.ReminderEnabled != nil {
		f.ReminderEnabled = *r.ReminderEnabled
	}
}
