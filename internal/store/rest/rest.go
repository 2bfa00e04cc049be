// Package rest implements store.Store against a PostgREST-style API
// (/rest/v1/<table>) guarded by row-level security.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/friendskids/friendskids/internal/config"
	"github.com/friendskids/friendskids/internal/models"
	"github.com/friendskids/friendskids/internal/store"
	"github.com/google/uuid"
)

// Column and embedded-filter names used in query strings.
const (
	colID                    = "id"
	colUserID                = "user_id"
	colFriendID              = "friend_id"
	colBabyBorn              = "baby_born"
	colReminderEnabled       = "reminder_enabled"
	colFriendUserID          = "friends.user_id"
	colFriendReminderEnabled = "friends.reminder_enabled"
)

var errNoServiceKey = errors.New(config.ErrServiceKeyEmpty)

// Client talks to the backend's REST endpoint.
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	http       *http.Client
}

var _ store.Store = (*Client)(nil)

// New validates baseURL and returns a client. serviceKey may be empty when
// the reminder worker is not used.
func New(baseURL, anonKey, serviceKey string) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New(config.ErrBackendURLEmpty)
	}
	if anonKey == "" {
		return nil, errors.New(config.ErrAnonKeyEmpty)
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		serviceKey: serviceKey,
		http:       &http.Client{Timeout: config.HTTPTimeout},
	}, nil
}

// Close is a no-op; the HTTP client holds no dedicated resources.
func (c *Client) Close() {}

// request describes one REST call.
type request struct {
	method     string
	table      string
	query      url.Values
	body       any
	privileged bool
}

// do sends req and decodes the JSON response into out (nil discards it).
// The caller's access token is forwarded when present; privileged calls use
// the service key and bypass row-level security.
func (c *Client) do(ctx context.Context, req request, out any) error {
	start := time.Now()

	target := c.baseURL + config.RESTPathPrefix + req.table
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("%s: %w", config.ErrBackendRequest, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrBackendRequest, err)
	}

	apiKey, bearer := c.anonKey, c.anonKey
	if token, ok := store.AccessToken(ctx); ok {
		bearer = token
	}
	if req.privileged {
		apiKey, bearer = c.serviceKey, c.serviceKey
	}
	httpReq.Header.Set(config.HeaderAPIKey, apiKey)
	httpReq.Header.Set(config.HeaderAuth, config.AuthScheme+" "+bearer)
	httpReq.Header.Set(config.HeaderAccept, config.MimeJSON)
	httpReq.Header.Set(config.HeaderUserAgent, config.UserAgent)
	if req.body != nil {
		httpReq.Header.Set(config.HeaderContentType, config.MimeJSON)
	}
	if req.method != http.MethodGet {
		httpReq.Header.Set(config.HeaderPrefer, config.RESTPreferReturn)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrBackendRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	slog.Debug(config.MsgBackendRequest,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyMethod, req.method,
		config.LogKeyTable, req.table,
		config.LogKeyStatus, resp.StatusCode,
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)

	limited := io.LimitReader(resp.Body, config.MaxHTTPResponseSize)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(limited, 512))
		return fmt.Errorf("%s: %d %s", config.ErrBackendStatus, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, limited)
		return nil
	}
	if err := json.NewDecoder(limited).Decode(out); err != nil {
		return fmt.Errorf("%s: %w", config.ErrBackendDecode, err)
	}
	return nil
}

func eq(v any) string {
	return config.RESTEqPrefix + fmt.Sprint(v)
}

// first returns the single row of rows or store.ErrNotFound.
func first[T any](rows []T) (T, error) {
	if len(rows) == 0 {
		var zero T
		return zero, store.ErrNotFound
	}
	return rows[0], nil
}

// -----------------------------------------------------------------------------
// Row shapes
// -----------------------------------------------------------------------------

// friendWrite omits the timestamps so the database defaults apply.
type friendWrite struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	Name            string    `json:"name"`
	Email           *string   `json:"email"`
	Phone           *string   `json:"phone"`
	Notes           *string   `json:"notes"`
	ReminderEnabled bool      `json:"reminder_enabled"`
}

func toFriendWrite(f models.Friend) friendWrite {
	return friendWrite{
		ID:              f.ID,
		UserID:          f.UserID,
		Name:            f.Name,
		Email:           f.Email,
		Phone:           f.Phone,
		Notes:           f.Notes,
		ReminderEnabled: f.ReminderEnabled,
	}
}

type kidWrite struct {
	ID              uuid.UUID     `json:"id"`
	FriendID        uuid.UUID     `json:"friend_id"`
	Name            string        `json:"name"`
	Birthdate       string        `json:"birthdate"`
	ReminderEnabled bool          `json:"reminder_enabled"`
	GiftNotes       *string       `json:"gift_notes"`
	RSVPStatus      models.Status `json:"rsvp_status"`
	GiftBought      models.Status `json:"gift_bought"`
	TextedHB        bool          `json:"texted_hb"`
}

func toKidWrite(k models.Kid) kidWrite {
	return kidWrite{
		ID:              k.ID,
		FriendID:        k.FriendID,
		Name:            k.Name,
		Birthdate:       k.Birthdate,
		ReminderEnabled: k.ReminderEnabled,
		GiftNotes:       k.GiftNotes,
		RSVPStatus:      k.RSVPStatus,
		GiftBought:      k.GiftBought,
		TextedHB:        k.TextedHB,
	}
}

type pregnancyWrite struct {
	ID        uuid.UUID `json:"id"`
	FriendID  uuid.UUID `json:"friend_id"`
	DueDate   string    `json:"due_date"`
	Notes     *string   `json:"notes"`
	BabyBorn  bool      `json:"baby_born"`
	BirthDate *string   `json:"birth_date"`
}

func toPregnancyWrite(p models.Pregnancy) pregnancyWrite {
	return pregnancyWrite{
		ID:        p.ID,
		FriendID:  p.FriendID,
		DueDate:   p.DueDate,
		Notes:     p.Notes,
		BabyBorn:  p.BabyBorn,
		BirthDate: p.BirthDate,
	}
}

// embeddedFriend is the friends!inner(...) part of a joined select.
type embeddedFriend struct {
	Name            string    `json:"name"`
	UserID          uuid.UUID `json:"user_id"`
	ReminderEnabled bool      `json:"reminder_enabled"`
}

type kidRow struct {
	models.Kid
	Friend embeddedFriend `json:"friends"`
}

type pregnancyRow struct {
	models.Pregnancy
	Friend embeddedFriend `json:"friends"`
}
