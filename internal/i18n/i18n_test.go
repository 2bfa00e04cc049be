package i18n_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/friendskids/friendskids/internal/config"
	"github.com/friendskids/friendskids/internal/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestI18nIntegrity ensures that every translation key defined in config.go
// exists in every locale file.
func TestI18nIntegrity(t *testing.T) {
	keysToCheck := []string{
		config.TKeyToday,
		config.TKeyTomorrow,
		config.TKeyInDays,
		config.TKeyTurning,
		config.TKeyMilestone,
		config.TKeyEvtSummaryAge,
		config.TKeyEvtSummaryBirt,
		config.TKeyDueIn,
		config.TKeyOverdue,
		config.TKeyEmptyUpcoming,
	}

	files, err := filepath.Glob(filepath.Join("locales", "active.*.json"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			content, err := os.ReadFile(path)
			require.NoError(t, err)

			var jsonMap map[string]any
			require.NoError(t, json.Unmarshal(content, &jsonMap), "JSON must be valid")

			for _, key := range keysToCheck {
				assert.Containsf(t, jsonMap, key, "Key '%s' is missing in %s", key, path)
			}
			for jsonKey := range jsonMap {
				if !strings.HasPrefix(jsonKey, "_") {
					assert.Containsf(t, keysToCheck, jsonKey, "Key '%s' is not declared in config.go", jsonKey)
				}
			}
		})
	}
}

func TestTranslator_Languages(t *testing.T) {
	tr, err := i18n.New(config.DefaultLanguage)
	require.NoError(t, err)
	assert.Equal(t, []string{"en", "fr"}, tr.Languages())
}

func TestLocalizer_Countdown(t *testing.T) {
	tr, err := i18n.New(config.DefaultLanguage)
	require.NoError(t, err)

	tests := []struct {
		accept string
		days   int
		want   string
	}{
		{"en-US,en;q=0.9", 0, "Today!"},
		{"en", 1, "Tomorrow"},
		{"en", 9, "In 9 days"},
		{"fr-FR,fr;q=0.9", 0, "Aujourd'hui !"},
		{"fr", 1, "Demain"},
		{"fr", 12, "Dans 12 jours"},
		{"de", 3, "In 3 days"},
		{"", 2, "In 2 days"},
	}

	for _, tt := range tests {
		t.Run(tt.accept, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.Localizer(tt.accept).Countdown(tt.days))
		})
	}
}

func TestLocalizer_Labels(t *testing.T) {
	tr, err := i18n.New(config.DefaultLanguage)
	require.NoError(t, err)

	en := tr.Localizer("en")
	assert.Equal(t, "Turning 5", en.Turning(5))
	assert.Equal(t, "Birthday: Mia (4)", en.EventSummary("Mia", 4))
	assert.Equal(t, "Birthday: Mia (birth)", en.EventSummary("Mia", 0))
	assert.Equal(t, "Due in 1 day", en.DueIn(1))
	assert.Equal(t, "Due in 20 days", en.DueIn(20))
	assert.Equal(t, "3 days overdue", en.DueIn(-3))
	assert.Equal(t, "No upcoming birthdays", en.Msg(config.TKeyEmptyUpcoming))

	fr := tr.Localizer("fr")
	assert.Equal(t, "Fête ses 10 ans", fr.Turning(10))
	assert.Equal(t, "Anniversaire : Mia (naissance)", fr.EventSummary("Mia", 0))
}

func TestLocalizer_DefaultLanguage(t *testing.T) {
	tr, err := i18n.New("fr")
	require.NoError(t, err)

	assert.Equal(t, "Demain", tr.Localizer("es").Countdown(1))
	assert.Equal(t, "Tomorrow", tr.Localizer("en").Countdown(1))
}

func TestLocalizer_UnknownKey(t *testing.T) {
	tr, err := i18n.New(config.DefaultLanguage)
	require.NoError(t, err)

	assert.Equal(t, "no_such_key", tr.Localizer("en").Msg("no_such_key"))

	var nilLocalizer *i18n.Localizer
	assert.Equal(t, config.TKeyToday, nilLocalizer.Countdown(0))
}
