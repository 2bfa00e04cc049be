package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Settings holds the runtime configuration loaded from the TOML file and the environment.
type Settings struct {
	Server    ServerSettings   `toml:"server"`
	Backend   BackendSettings  `toml:"backend"`
	Auth      AuthSettings     `toml:"auth"`
	Reminders ReminderSettings `toml:"reminders"`
	Calendar  CalendarSettings `toml:"calendar"`
	Log       LogSettings      `toml:"log"`
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Addr            string `toml:"addr"`
	DefaultLanguage string `toml:"default_language"`
	DashboardSize   int    `toml:"dashboard_size"`
}

// BackendSettings selects and configures the hosted backend.
type BackendSettings struct {
	Mode        string `toml:"mode"` // BackendModeREST or BackendModePostgres
	URL         string `toml:"url"`
	AnonKey     string `toml:"anon_key"`
	ServiceKey  string `toml:"service_key,omitempty"`
	DatabaseURL string `toml:"database_url,omitempty"`
}

// AuthSettings configures access token verification.
type AuthSettings struct {
	JWTSecret string `toml:"jwt_secret,omitempty"`
	Issuer    string `toml:"issuer,omitempty"`
	Audience  string `toml:"audience"`
}

// ReminderSettings configures the background reminder worker.
type ReminderSettings struct {
	Enabled  bool   `toml:"enabled"`
	Interval string `toml:"interval"` // Go duration, e.g. "1h"
	LeadDays []int  `toml:"lead_days"`
}

// CalendarSettings configures the calendar feed.
type CalendarSettings struct {
	// ReminderTrigger is an ISO8601 duration (e.g. "-P1D"). Empty disables alarms.
	ReminderTrigger string `toml:"reminder_trigger"`
}

// LogSettings configures the rotating log file.
type LogSettings struct {
	Debug      bool   `toml:"debug"`
	Dir        string `toml:"dir,omitempty"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// DefaultSettings returns the configuration used when no file is present.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{
			Addr:            DefaultListenAddr,
			DefaultLanguage: DefaultLanguage,
			DashboardSize:   DefaultDashboardSize,
		},
		Backend: BackendSettings{
			Mode: BackendModeREST,
		},
		Auth: AuthSettings{
			Audience: AuthAudience,
		},
		Reminders: ReminderSettings{
			Enabled:  true,
			Interval: DefaultReminderEvery.String(),
			LeadDays: append([]int(nil), DefaultReminderLeadDays...),
		},
		Calendar: CalendarSettings{
			ReminderTrigger: "-P1D",
		},
		Log: LogSettings{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppID)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", AppID)
}

// DefaultPath returns the full path to the default config file.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), ConfigFileName)
}

// Load reads the settings from path (or the default path when empty) and applies
// environment overrides. A missing default file is not an error.
func Load(path string) (Settings, error) {
	return LoadWithEnv(path, os.Getenv)
}

// LoadWithEnv is Load with an injectable environment lookup.
func LoadWithEnv(path string, getenv func(string) string) (Settings, error) {
	s := DefaultSettings()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	// A missing default file means defaults + environment.
	if _, err := toml.DecodeFile(path, &s); err != nil && (explicit || !errors.Is(err, fs.ErrNotExist)) {
		return Settings{}, fmt.Errorf("%s: %w", ErrConfigLoad, err)
	}

	s.applyEnv(getenv)

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s *Settings) applyEnv(getenv func(string) string) {
	set := func(name string, dst *string) {
		if v := strings.TrimSpace(getenv(EnvPrefix + name)); v != "" {
			*dst = v
		}
	}

	set("ADDR", &s.Server.Addr)
	set("LANGUAGE", &s.Server.DefaultLanguage)
	set("BACKEND_MODE", &s.Backend.Mode)
	set("BACKEND_URL", &s.Backend.URL)
	set("ANON_KEY", &s.Backend.AnonKey)
	set("SERVICE_KEY", &s.Backend.ServiceKey)
	set("DATABASE_URL", &s.Backend.DatabaseURL)
	set("JWT_SECRET", &s.Auth.JWTSecret)
	set("JWT_ISSUER", &s.Auth.Issuer)
	set("REMINDER_INTERVAL", &s.Reminders.Interval)

	if v := getenv(EnvPrefix + "DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			s.Log.Debug = b
		}
	}
}

// Validate checks the values that do not depend on secrets.
func (s Settings) Validate() error {
	switch s.Backend.Mode {
	case BackendModeREST, BackendModePostgres:
	default:
		return fmt.Errorf("%s: %s: %q", ErrConfigInvalid, ErrModeUnsupport, s.Backend.Mode)
	}

	if _, err := s.ReminderInterval(); err != nil {
		return fmt.Errorf("%s: reminders.interval: %w", ErrConfigInvalid, err)
	}

	for _, d := range s.Reminders.LeadDays {
		if d < 0 {
			return fmt.Errorf("%s: reminders.lead_days must not be negative", ErrConfigInvalid)
		}
	}

	if s.Server.DashboardSize < 0 {
		return fmt.Errorf("%s: server.dashboard_size must not be negative", ErrConfigInvalid)
	}
	return nil
}

// ReminderInterval parses the reminder interval.
func (s Settings) ReminderInterval() (time.Duration, error) {
	d, err := time.ParseDuration(s.Reminders.Interval)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("interval must be positive, got %s", d)
	}
	return d, nil
}

// LogDir returns the directory of the rotating log file.
func (s Settings) LogDir() (string, error) {
	if s.Log.Dir != "" {
		return s.Log.Dir, nil
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrCacheDir, err)
	}
	return filepath.Join(cacheDir, AppID), nil
}
