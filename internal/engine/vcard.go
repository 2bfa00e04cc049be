package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/friendskids/friendskids/internal/config"
)

const maxConsecutiveCardErrors = 3

// Contact is a vCard entry with a usable full birthdate.
type Contact struct {
	Name      string
	Birthdate string // YYYY-MM-DD
}

// ImportStats summarizes a vCard parse.
type ImportStats struct {
	Processed int
	WithBday  int
	NoYear    int
	Malformed int
}

// Source locates a vCard stream: a local path or an http(s) URL.
type Source struct {
	Path string
	URL  string
	User string
	Pass string
}

// OpenSource opens the stream described by src.
func OpenSource(ctx context.Context, fetcher VCardFetcher, src Source) (io.ReadCloser, error) {
	switch {
	case src.URL != "":
		if fetcher == nil {
			fetcher = NewHTTPFetcher()
		}
		return fetcher.Fetch(ctx, src.URL, src.User, src.Pass)
	case src.Path != "":
		f, err := os.Open(src.Path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrReadFile, err)
		}
		return f, nil
	default:
		return nil, errors.New(config.ErrReadFile)
	}
}

// ParseVCards decodes every card of r. Cards without a birthday, with a
// year-less birthday or with an unparseable one are skipped; a kid needs a
// full birthdate.
func ParseVCards(ctx context.Context, r io.Reader) ([]Contact, ImportStats, error) {
	decoder := vcard.NewDecoder(r)
	var stats ImportStats
	var contacts []Contact
	consecutive := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A broken card does not invalidate the rest of the stream, but a
			// reader stuck on the same error does.
			stats.Malformed++
			consecutive++
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyError, err)
			if consecutive >= maxConsecutiveCardErrors {
				return nil, stats, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
			}
			continue
		}
		consecutive = 0

		stats.Processed++
		bday := card.Get(config.VCardBDAY)
		if bday == nil || bday.Value == "" {
			continue
		}

		birth, yearKnown, err := parseVCardDate(bday.Value)
		if err != nil {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyValue, bday.Value)
			continue
		}

		name := cardName(card)
		if !yearKnown {
			stats.NoYear++
			slog.Debug(config.MsgSkippedNoYear,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, name)
			continue
		}

		stats.WithBday++
		contacts = append(contacts, Contact{
			Name:      name,
			Birthdate: birth.Format(config.DateFormatISO),
		})
	}

	return contacts, stats, nil
}

// cardName prefers FN (formatted) over N (structured).
func cardName(card vcard.Card) string {
	if fn := card.Get(config.VCardFN); fn != nil && strings.TrimSpace(fn.Value) != "" {
		return strings.TrimSpace(fn.Value)
	}
	if n := card.Name(); n != nil {
		full := strings.TrimSpace(strings.Join([]string{n.GivenName, n.FamilyName}, " "))
		if full != "" {
			return full
		}
	}
	return config.FallbackName
}

// parseVCardDate handles the vCard BDAY formats. yearKnown is false for --MM-DD.
func parseVCardDate(value string) (time.Time, bool, error) {
	formatsWithYear := []string{
		config.DateFormatISO,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			return t, true, nil
		}
	}

	for _, f := range []string{config.DateFormatNoYearD, config.DateFormatNoYearB} {
		if t, err := time.Parse(f, value); err == nil {
			return t, false, nil
		}
	}

	return time.Time{}, false, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}
