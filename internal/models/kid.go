package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kid is a friend's child. Birthdate is stored as YYYY-MM-DD.
type Kid struct {
	ID              uuid.UUID `json:"id" db:"id"`
	FriendID        uuid.UUID `json:"friend_id" db:"friend_id"`
	Name            string    `json:"name" db:"name"`
	Birthdate       string    `json:"birthdate" db:"birthdate"`
	ReminderEnabled bool      `json:"reminder_enabled" db:"reminder_enabled"`
	GiftNotes       *string   `json:"gift_notes,omitempty" db:"gift_notes"`
	RSVPStatus      Status    `json:"rsvp_status" db:"rsvp_status"`
	GiftBought      Status    `json:"gift_bought" db:"gift_bought"`
	TextedHB        bool      `json:"texted_hb" db:"texted_hb"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// ReminderCandidate is a kid whose friend and own reminders are both enabled.
type ReminderCandidate struct {
	Kid        Kid       `json:"kid"`
	FriendName string    `json:"friend_name"`
	UserID     uuid.UUID `json:"user_id"`
}

// KidCreateRequest is the request body for POST /api/friends/:id/kids
type KidCreateRequest struct {
	Name            string  `json:"name" binding:"required"`
	Birthdate       string  `json:"birthdate" binding:"required"`
	ReminderEnabled *bool   `json:"reminder_enabled,omitempty"`
	GiftNotes       *string `json:"gift_notes,omitempty"`
	RSVPStatus      Status  `json:"rsvp_status,omitempty"`
	GiftBought      Status  `json:"gift_bought,omitempty"`
	TextedHB        bool    `json:"texted_hb"`
}

// KidUpdateRequest is the request body for PATCH /api/kids/:id
type KidUpdateRequest struct {
	Name            *string `json:"name,omitempty"`
	Birthdate       *string `json:"birthdate,omitempty"`
	ReminderEnabled *bool   `json:"reminder_enabled,omitempty"`
	GiftNotes       *string `json:"gift_notes,omitempty"`
	RSVPStatus      *Status `json:"rsvp_status,omitempty"`
	GiftBought      *Status `json:"gift_bought,omitempty"`
	TextedHB        *bool   `json:"texted_hb,omitempty"`
}

func (r KidCreateRequest) Validate() error {
	if err := validateName(r.Name); err != nil {
		return err
	}
	if err := validateDate(r.Birthdate); err != nil {
		return err
	}
	if err := validateNotes(r.GiftNotes); err != nil {
		return err
	}
	if err := validateStatus(r.RSVPStatus); err != nil {
		return err
	}
	return validateStatus(r.GiftBought)
}

// NewKid builds the row for a create request. Unset statuses become n/a.
func NewKid(friendID uuid.UUID, r KidCreateRequest) Kid {
	reminder := true
	if r.ReminderEnabled != nil {
		reminder = *r.ReminderEnabled
	}
	return Kid{
		ID:              uuid.New(),
		FriendID:        friendID,
		Name:            strings.TrimSpace(r.Name),
		Birthdate:       r.Birthdate,
		ReminderEnabled: reminder,
		GiftNotes:       emptyToNil(r.GiftNotes),
		RSVPStatus:      r.RSVPStatus.orDefault(),
		GiftBought:      r.GiftBought.orDefault(),
		TextedHB:        r.TextedHB,
	}
}

func (r KidUpdateRequest) Validate() error {
	if r.Name != nil {
		if err := validateName(*r.Name); err != nil {
			return err
		}
	}
	if err := validateOptionalDate(r.Birthdate); err != nil {
		return err
	}
	if err := validateNotes(r.GiftNotes); err != nil {
		return err
	}
	if r.RSVPStatus != nil && !r.RSVPStatus.Valid() {
		return errStatus
	}
	if r.GiftBought != nil && !r.GiftBought.Valid() {
		return errStatus
	}
	return nil
}

// Apply copies the set fields onto k.
func (r KidUpdateRequest) Apply(k *Kid) {
	if r.Name != nil {
		k.Name = strings.TrimSpace(*r.Name)
	}
	if r.Birthdate != nil {
		k.Birthdate = *r.Birthdate
	}
	if r.ReminderEnabled != nil {
		k.ReminderEnabled = *r.ReminderEnabled
	}
	if r.GiftNotes != nil {
		k.GiftNotes = emptyToNil(r.GiftNotes)
	}
	if r.RSVPStatus != nil {
		k.RSVPStatus = *r.RSVPStatus
	}
	if r.GiftBought != nil {
		k.GiftBought = *r.GiftBought
	}
	if r.TextedHB != nil {
		k.TextedHB = *r.TextedHB
	}
}
