// Package i18n loads the embedded translations and formats the countdown labels.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/friendskids/friendskids/internal/config"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator owns the message bundle. It is safe for concurrent use.
type Translator struct {
	bundle      *goi18n.Bundle
	languages   []string
	defaultLang string
}

// New loads every locales/active.<lang>.json file. defaultLang is used when a
// request names no supported language.
func New(defaultLang string) (*Translator, error) {
	base, err := language.Parse(defaultLang)
	if err != nil {
		base = language.English
	}

	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrLocalesAccess, err)
	}

	var detected []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if _, err := language.Parse(langCode); langCode == "" || err != nil {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			return nil, fmt.Errorf("%s %s: %w", config.ErrLocaleLoad, name, err)
		}
		detected = append(detected, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}
	sort.Strings(detected)

	return &Translator{
		bundle:      bundle,
		languages:   detected,
		defaultLang: base.String(),
	}, nil
}

// Languages returns the loaded language codes, sorted.
func (t *Translator) Languages() []string {
	return append([]string(nil), t.languages...)
}

// Localizer picks the best language for the given preferences, typically the
// raw Accept-Language header. The default language is the last resort.
func (t *Translator) Localizer(preferences ...string) *Localizer {
	langs := append(append([]string{}, preferences...), t.defaultLang)
	return &Localizer{l: goi18n.NewLocalizer(t.bundle, langs...)}
}

// Localizer formats messages in one resolved language.
type Localizer struct {
	l *goi18n.Localizer
}

// Msg translates a key without arguments. Unknown keys are returned as is.
func (l *Localizer) Msg(key string) string {
	return l.localize(&goi18n.LocalizeConfig{MessageID: key})
}

// Countdown renders a non-negative day count: today, tomorrow, or in N days.
func (l *Localizer) Countdown(days int) string {
	switch {
	case days <= 0:
		return l.Msg(config.TKeyToday)
	case days == 1:
		return l.Msg(config.TKeyTomorrow)
	default:
		return l.count(config.TKeyInDays, days)
	}
}

// Turning renders the "Turning N" label.
func (l *Localizer) Turning(age int) string {
	return l.localize(&goi18n.LocalizeConfig{
		MessageID:    config.TKeyTurning,
		TemplateData: map[string]any{"Age": age},
	})
}

// DueIn renders the days left before a due date; negative values are overdue.
func (l *Localizer) DueIn(days int) string {
	if days < 0 {
		return l.count(config.TKeyOverdue, -days)
	}
	return l.count(config.TKeyDueIn, days)
}

// EventSummary is the calendar event title. age 0 is the day of birth.
func (l *Localizer) EventSummary(name string, age int) string {
	key := config.TKeyEvtSummaryAge
	if age == 0 {
		key = config.TKeyEvtSummaryBirt
	}
	return l.localize(&goi18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: map[string]any{"Name": name, "Age": age},
	})
}

func (l *Localizer) count(key string, n int) string {
	return l.localize(&goi18n.LocalizeConfig{
		MessageID:    key,
		PluralCount:  n,
		TemplateData: map[string]any{"Count": n},
	})
}

func (l *Localizer) localize(cfg *goi18n.LocalizeConfig) string {
	if l == nil || l.l == nil {
		return cfg.MessageID
	}
	msg, err := l.l.Localize(cfg)
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, cfg.MessageID,
			config.LogKeyError, err,
		)
		return cfg.MessageID
	}
	return msg
}
