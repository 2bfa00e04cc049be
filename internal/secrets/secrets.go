// Package secrets stores the service credentials in the OS keyring.
package secrets

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/friendskids/friendskids/internal/config"
	"github.com/zalando/go-keyring"
)

var (
	// ErrNotFound is returned when no value is stored under the name.
	ErrNotFound = errors.New(config.MsgSecretMissing)
	// ErrKeyringUnavailable is returned when the OS keyring is not available.
	ErrKeyringUnavailable = errors.New(config.ErrKeyringUnavail)
)

// Names lists the secrets the CLI can set.
var Names = []string{config.SecretServiceKey, config.SecretDatabaseURL, config.SecretJWTSecret}

// Known reports whether name is a settable secret.
func Known(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}

// Get retrieves a secret. Returns ErrNotFound if nothing is stored.
func Get(name string) (string, error) {
	value, err := keyring.Get(config.KeyringService, name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return value, nil
}

// Set stores a secret.
func Set(name, value string) error {
	if value == "" {
		return errors.New(config.ErrSecretEmpty)
	}
	if err := keyring.Set(config.KeyringService, name, value); err != nil {
		return fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	slog.Debug(config.MsgSecretStored,
		config.LogKeyComponent, config.CompSecrets,
		config.LogKeyKey, name,
	)
	return nil
}

// Delete removes a secret.
func Delete(name string) error {
	if err := keyring.Delete(config.KeyringService, name); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	slog.Debug(config.MsgSecretDeleted,
		config.LogKeyComponent, config.CompSecrets,
		config.LogKeyKey, name,
	)
	return nil
}

// WebPasswordName is the keyring entry holding the password of a vCard URL user.
func WebPasswordName(user string) string {
	return config.SecretWebPrefix + user
}

// Resolve fills the credential fields of s left empty by the file and the
// environment. A keyring that is missing or locked is logged, not fatal.
func Resolve(s *config.Settings) {
	fields := []struct {
		name string
		dst  *string
	}{
		{config.SecretServiceKey, &s.Backend.ServiceKey},
		{config.SecretDatabaseURL, &s.Backend.DatabaseURL},
		{config.SecretJWTSecret, &s.Auth.JWTSecret},
	}

	for _, f := range fields {
		if *f.dst != "" {
			continue
		}
		value, err := Get(f.name)
		switch {
		case err == nil:
			*f.dst = value
		case errors.Is(err, ErrNotFound):
			slog.Debug(config.MsgSecretMissing,
				config.LogKeyComponent, config.CompSecrets,
				config.LogKeyKey, f.name,
			)
		default:
			slog.Warn(config.ErrKeyringUnavail,
				config.LogKeyComponent, config.CompSecrets,
				config.LogKeyError, err,
			)
			return
		}
	}
}
