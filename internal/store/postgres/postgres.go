// Package postgres implements store.Store with a pgx connection pool against
// the backend's database. Ownership is enforced in SQL through friends.user_id.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/friendskids/friendskids/internal/config"
	"github.com/friendskids/friendskids/internal/engine"
	"github.com/friendskids/friendskids/internal/models"
	"github.com/friendskids/friendskids/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps the pool.
type DB struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*DB)(nil)

// New opens and pings a pool for connString.
func New(ctx context.Context, connString string) (*DB, error) {
	if connString == "" {
		return nil, errors.New(config.ErrDatabaseURLEmpty)
	}
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrDatabaseConnect, err)
	}

	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute
	cfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrDatabaseConnect, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrDatabaseConnect, err)
	}

	return &DB{pool: pool}, nil
}

// Close releases the pool.
func (db *DB) Close() {
	db.pool.Close()
}

// queryErr maps pgx errors to store errors.
func queryErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	return fmt.Errorf("%s: %w", config.ErrDatabaseQuery, err)
}

// execErr turns a zero-row command into ErrNotFound.
func execErr(rows int64, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrDatabaseQuery, err)
	}
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

// -----------------------------------------------------------------------------
// Friends
// -----------------------------------------------------------------------------

const friendColumns = `f.id, f.user_id, f.name, f.email, f.phone, f.notes, f.reminder_enabled, f.created_at, f.updated_at`

func scanFriend(row pgx.Row) (models.Friend, error) {
	var f models.Friend
	err := row.Scan(
		&f.ID,
		&f.UserID,
		&f.Name,
		&f.Email,
		&f.Phone,
		&f.Notes,
		&f.ReminderEnabled,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	return f, err
}

func (db *DB) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.Friend, error) {
	query := `
		SELECT ` + friendColumns + `
		FROM friends f
		WHERE f.user_id = $1
		ORDER BY f.name
	`

	rows, err := db.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, queryErr(err)
	}
	defer rows.Close()

	friends := []models.Friend{}
	for rows.Next() {
		f, err := scanFriend(rows)
		if err != nil {
			return nil, queryErr(err)
		}
		friends = append(friends, f)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr(err)
	}
	return friends, nil
}

func (db *DB) GetFriend(ctx context.Context, userID, friendID uuid.UUID) (models.Friend, error) {
	query := `
		SELECT ` + friendColumns + `
		FROM friends f
		WHERE f.id = $1 AND f.user_id = $2
	`

	f, err := scanFriend(db.pool.QueryRow(ctx, query, friendID, userID))
	if err != nil {
		return models.Friend{}, queryErr(err)
	}
	return f, nil
}

func (db *DB) CreateFriend(ctx context.Context, f models.Friend) (models.Friend, error) {
	query := `
		INSERT INTO friends AS f (id, user_id, name, email, phone, notes, reminder_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING ` + friendColumns

	out, err := scanFriend(db.pool.QueryRow(ctx, query,
		f.ID,
		f.UserID,
		f.Name,
		f.Email,
		f.Phone,
		f.Notes,
		f.ReminderEnabled,
	))
	if err != nil {
		return models.Friend{}, queryErr(err)
	}
	return out, nil
}

func (db *DB) UpdateFriend(ctx context.Context, f models.Friend) (models.Friend, error) {
	query := `
		UPDATE friends AS f
		SET name = $1, email = $2, phone = $3, notes = $4, reminder_enabled = $5, updated_at = NOW()
		WHERE f.id = $6 AND f.user_id = $7
		RETURNING ` + friendColumns

	out, err := scanFriend(db.pool.QueryRow(ctx, query,
		f.Name,
		f.Email,
		f.Phone,
		f.Notes,
		f.ReminderEnabled,
		f.ID,
		f.UserID,
	))
	if err != nil {
		return models.Friend{}, queryErr(err)
	}
	return out, nil
}

func (db *DB) DeleteFriend(ctx context.Context, userID, friendID uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM friends WHERE id = $1 AND user_id = $2`, friendID, userID)
	return execErr(tag.RowsAffected(), err)
}

// -----------------------------------------------------------------------------
// Kids
// -----------------------------------------------------------------------------

// birthdate is read as text to keep the YYYY-MM-DD form without a time zone.
const kidColumns = `k.id, k.friend_id, k.name, k.birthdate::text, k.reminder_enabled, k.gift_notes,
	k.rsvp_status, k.gift_bought, k.texted_hb, k.created_at, k.updated_at`

func scanKid(row pgx.Row, extra ...any) (models.Kid, error) {
	var k models.Kid
	dest := append([]any{
		&k.ID,
		&k.FriendID,
		&k.Name,
		&k.Birthdate,
		&k.ReminderEnabled,
		&k.GiftNotes,
		&k.RSVPStatus,
		&k.GiftBought,
		&k.TextedHB,
		&k.CreatedAt,
		&k.UpdatedAt,
	}, extra...)
	err := row.Scan(dest...)
	return k, err
}

func (db *DB) ListKids(ctx context.Context, userID, friendID uuid.UUID) ([]models.Kid, error) {
	query := `
		SELECT ` + kidColumns + `
		FROM kids k
		JOIN friends f ON f.id = k.friend_id
		WHERE k.friend_id = $1 AND f.user_id = $2
		ORDER BY k.birthdate
	`

	rows, err := db.pool.Query(ctx, query, friendID, userID)
	if err != nil {
		return nil, queryErr(err)
	}
	defer rows.Close()

	kids := []models.Kid{}
	for rows.Next() {
		k, err := scanKid(rows)
		if err != nil {
			return nil, queryErr(err)
		}
		kids = append(kids, k)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr(err)
	}
	return kids, nil
}

func (db *DB) ListKidRecords(ctx context.Context, userID uuid.UUID) ([]engine.KidRecord, error) {
	query := `
		SELECT ` + kidColumns + `, f.name
		FROM kids k
		JOIN friends f ON f.id = k.friend_id
		WHERE f.user_id = $1
		ORDER BY k.birthdate
	`

	rows, err := db.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, queryErr(err)
	}
	defer rows.Close()

	records := []engine.KidRecord{}
	for rows.Next() {
		var friendName string
		k, err := scanKid(rows, &friendName)
		if err != nil {
			return nil, queryErr(err)
		}
		records = append(records, engine.KidRecord{Kid: k, FriendName: friendName})
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr(err)
	}
	return records, nil
}

func (db *DB) GetKid(ctx context.Context, userID, kidID uuid.UUID) (models.Kid, error) {
	query := `
		SELECT ` + kidColumns + `
		FROM kids k
		JOIN friends f ON f.id = k.friend_id
		WHERE k.id = $1 AND f.user_id = $2
	`

	k, err := scanKid(db.pool.QueryRow(ctx, query, kidID, userID))
	if err != nil {
		return models.Kid{}, queryErr(err)
	}
	return k, nil
}

func (db *DB) CreateKid(ctx context.Context, k models.Kid) (models.Kid, error) {
	query := `
		INSERT INTO kids AS k (id, friend_id, name, birthdate, reminder_enabled, gift_notes,
			rsvp_status, gift_bought, texted_hb, created_at, updated_at)
		VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING ` + kidColumns

	out, err := scanKid(db.pool.QueryRow(ctx, query,
		k.ID,
		k.FriendID,
		k.Name,
		k.Birthdate,
		k.ReminderEnabled,
		k.GiftNotes,
		k.RSVPStatus,
		k.GiftBought,
		k.TextedHB,
	))
	if err != nil {
		return models.Kid{}, queryErr(err)
	}
	return out, nil
}

func (db *DB) UpdateKid(ctx context.Context, userID uuid.UUID, k models.Kid) (models.Kid, error) {
	query := `
		UPDATE kids AS k
		SET name = $1, birthdate = $2::date, reminder_enabled = $3, gift_notes = $4,
			rsvp_status = $5, gift_bought = $6, texted_hb = $7, updated_at = NOW()
		FROM friends f
		WHERE k.id = $8 AND f.id = k.friend_id AND f.user_id = $9
		RETURNING ` + kidColumns

	out, err := scanKid(db.pool.QueryRow(ctx, query,
		k.Name,
		k.Birthdate,
		k.ReminderEnabled,
		k.GiftNotes,
		k.RSVPStatus,
		k.GiftBought,
		k.TextedHB,
		k.ID,
		userID,
	))
	if err != nil {
		return models.Kid{}, queryErr(err)
	}
	return out, nil
}

func (db *DB) DeleteKid(ctx context.Context, userID, kidID uuid.UUID) error {
	query := `
		DELETE FROM kids k
		USING friends f
		WHERE k.id = $1 AND f.id = k.friend_id AND f.user_id = $2
	`
	tag, err := db.pool.Exec(ctx, query, kidID, userID)
	return execErr(tag.RowsAffected(), err)
}

// -----------------------------------------------------------------------------
// Pregnancies
// -----------------------------------------------------------------------------

const pregnancyColumns = `p.id, p.friend_id, p.due_date::text, p.notes, p.baby_born, p.birth_date::text,
	p.created_at, p.updated_at`

func scanPregnancy(row pgx.Row, extra ...any) (models.Pregnancy, error) {
	var p models.Pregnancy
	dest := append([]any{
		&p.ID,
		&p.FriendID,
		&p.DueDate,
		&p.Notes,
		&p.BabyBorn,
		&p.BirthDate,
		&p.CreatedAt,
		&p.UpdatedAt,
	}, extra...)
	err := row.Scan(dest...)
	return p, err
}

func (db *DB) ListPregnancies(ctx context.Context, userID uuid.UUID) ([]models.PregnancyWithFriend, error) {
	query := `
		SELECT ` + pregnancyColumns + `, f.name
		FROM pregnancies p
		JOIN friends f ON f.id = p.friend_id
		WHERE f.user_id = $1 AND NOT p.baby_born
		ORDER BY p.due_date
	`

	rows, err := db.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, queryErr(err)
	}
	defer rows.Close()

	out := []models.PregnancyWithFriend{}
	for rows.Next() {
		var friendName string
		p, err := scanPregnancy(rows, &friendName)
		if err != nil {
			return nil, queryErr(err)
		}
		out = append(out, models.PregnancyWithFriend{Pregnancy: p, FriendName: friendName})
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr(err)
	}
	return out, nil
}

func (db *DB) GetPregnancy(ctx context.Context, userID, pregnancyID uuid.UUID) (models.Pregnancy, error) {
	query := `
		SELECT ` + pregnancyColumns + `
		FROM pregnancies p
		JOIN friends f ON f.id = p.friend_id
		WHERE p.id = $1 AND f.user_id = $2
	`

	p, err := scanPregnancy(db.pool.QueryRow(ctx, query, pregnancyID, userID))
	if err != nil {
		return models.Pregnancy{}, queryErr(err)
	}
	return p, nil
}

func (db *DB) CreatePregnancy(ctx context.Context, p models.Pregnancy) (models.Pregnancy, error) {
	query := `
		INSERT INTO pregnancies AS p (id, friend_id, due_date, notes, baby_born, birth_date, created_at, updated_at)
		VALUES ($1, $2, $3::date, $4, $5, $6::date, NOW(), NOW())
		RETURNING ` + pregnancyColumns

	out, err := scanPregnancy(db.pool.QueryRow(ctx, query,
		p.ID,
		p.FriendID,
		p.DueDate,
		p.Notes,
		p.BabyBorn,
		p.BirthDate,
	))
	if err != nil {
		return models.Pregnancy{}, queryErr(err)
	}
	return out, nil
}

func (db *DB) UpdatePregnancy(ctx context.Context, userID uuid.UUID, p models.Pregnancy) (models.Pregnancy, error) {
	query := `
		UPDATE pregnancies AS p
		SET due_date = $1::date, notes = $2, baby_born = $3, birth_date = $4::date, updated_at = NOW()
		FROM friends f
		WHERE p.id = $5 AND f.id = p.friend_id AND f.user_id = $6
		RETURNING ` + pregnancyColumns

	out, err := scanPregnancy(db.pool.QueryRow(ctx, query,
		p.DueDate,
		p.Notes,
		p.BabyBorn,
		p.BirthDate,
		p.ID,
		userID,
	))
	if err != nil {
		return models.Pregnancy{}, queryErr(err)
	}
	return out, nil
}

func (db *DB) DeletePregnancy(ctx context.Context, userID, pregnancyID uuid.UUID) error {
	query := `
		DELETE FROM pregnancies p
		USING friends f
		WHERE p.id = $1 AND f.id = p.friend_id AND f.user_id = $2
	`
	tag, err := db.pool.Exec(ctx, query, pregnancyID, userID)
	return execErr(tag.RowsAffected(), err)
}

// -----------------------------------------------------------------------------
// Reminders
// -----------------------------------------------------------------------------

func (db *DB) ListReminderCandidates(ctx context.Context) ([]models.ReminderCandidate, error) {
	query := `
		SELECT ` + kidColumns + `, f.name, f.user_id
		FROM kids k
		JOIN friends f ON f.id = k.friend_id
		WHERE k.reminder_enabled AND f.reminder_enabled
		ORDER BY k.birthdate
	`

	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, queryErr(err)
	}
	defer rows.Close()

	out := []models.ReminderCandidate{}
	for rows.Next() {
		var c models.ReminderCandidate
		k, err := scanKid(rows, &c.FriendName, &c.UserID)
		if err != nil {
			return nil, queryErr(err)
		}
		c.Kid = k
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr(err)
	}
	return out, nil
}
