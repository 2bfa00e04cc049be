package models

import (
	"time"

	"github.com/google/uuid"
)

// Pregnancy tracks a friend's expected baby until it is born.
type Pregnancy struct {
	ID        uuid.UUID `json:"id" db:"id"`
	FriendID  uuid.UUID `json:"friend_id" db:"friend_id"`
	DueDate   string    `json:"due_date" db:"due_date"`
	Notes     *string   `json:"notes,omitempty" db:"notes"`
	BabyBorn  bool      `json:"baby_born" db:"baby_born"`
	BirthDate *string   `json:"birth_date,omitempty" db:"birth_date"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PregnancyWithFriend is a pregnancy in progress with its friend's name.
type PregnancyWithFriend struct {
	Pregnancy
	FriendName string `json:"friend_name"`
}

// PregnancyCreateRequest is the request body for POST /api/friends/:id/pregnancies
type PregnancyCreateRequest struct {
	DueDate string  `json:"due_date" binding:"required"`
	Notes   *string `json:"notes,omitempty"`
}

// PregnancyUpdateRequest is the request body for PATCH /api/pregnancies/:id
type PregnancyUpdateRequest struct {
	DueDate   *string `json:"due_date,omitempty"`
	Notes     *string `json:"notes,omitempty"`
	BabyBorn  *bool   `json:"baby_born,omitempty"`
	BirthDate *string `json:"birth_date,omitempty"`
}

func (r PregnancyCreateRequest) Validate() error {
	if err := validateDate(r.DueDate); err != nil {
		return err
	}
	return validateNotes(r.Notes)
}

func NewPregnancy(friendID uuid.UUID, r PregnancyCreateRequest) Pregnancy {
	return Pregnancy{
		ID:       uuid.New(),
		FriendID: friendID,
		DueDate:  r.DueDate,
		Notes:    emptyToNil(r.Notes),
	}
}

func (r PregnancyUpdateRequest) Validate() error {
	if err := validateOptionalDate(r.DueDate); err != nil {
		return err
	}
	if err := validateOptionalDate(r.BirthDate); err != nil {
		return err
	}
	return validateNotes(r.Notes)
}

// Apply copies the set fields onto p. Setting a birth date marks the baby born.
func (r PregnancyUpdateRequest) Apply(p *Pregnancy) {
	if r.DueDate != nil {
		p.DueDate = *r.DueDate
	}
	if r.Notes != nil {
		p.Notes = emptyToNil(r.Notes)
	}
	if r.BabyBorn != nil {
		p.BabyBorn = *r.BabyBorn
	}
	if r.BirthDate != nil {
		p.BirthDate = r.BirthDate
		p.BabyBorn = true
	}
}
