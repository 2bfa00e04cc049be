package models

import (
	"errors"
	"strings"
	"time"

	"github.com/friendskids/friendskids/internal/config"
)

// Status is the tri-state value of the RSVP and gift purchase fields.
type Status string

const (
	StatusYes Status = "yes"
	StatusNo  Status = "no"
	StatusNA  Status = "n/a"
)

// Valid reports whether s is one of the three accepted values.
func (s Status) Valid() bool {
	switch s {
	case StatusYes, StatusNo, StatusNA:
		return true
	}
	return false
}

// orDefault returns n/a for the zero value.
func (s Status) orDefault() Status {
	if s == "" {
		return StatusNA
	}
	return s
}

var (
	errNameRequired = errors.New(config.ErrNameRequired)
	errNameTooLong  = errors.New(config.ErrNameTooLong)
	errNotesTooLong = errors.New(config.ErrNotesTooLong)
	errStatus       = errors.New(config.ErrStatusInvalid)
	errDate         = errors.New(config.ErrInvalidDate)
)

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errNameRequired
	}
	if len(name) > config.MaxNameLength {
		return errNameTooLong
	}
	return nil
}

func validateNotes(notes *string) error {
	if notes != nil && len(*notes) > config.MaxNotesLength {
		return errNotesTooLong
	}
	return nil
}

func validateDate(value string) error {
	if _, err := time.Parse(config.DateFormatISO, value); err != nil {
		return errDate
	}
	return nil
}

func validateOptionalDate(value *string) error {
	if value == nil {
		return nil
	}
	return validateDate(*value)
}

func validateStatus(s Status) error {
	if s == "" || s.Valid() {
		return nil
	}
	return errStatus
}

// emptyToNil keeps optional text columns NULL instead of "".
func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
