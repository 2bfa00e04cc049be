package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/friendskids/friendskids/internal/config"
	"github.com/friendskids/friendskids/internal/engine"
	"github.com/friendskids/friendskids/internal/models"
	"github.com/friendskids/friendskids/internal/store"
	"github.com/google/uuid"
)

type idRow struct {
	ID uuid.UUID `json:"id"`
}

// remove deletes the rows matching query and reports ErrNotFound when none matched.
func (c *Client) remove(ctx context.Context, table string, query url.Values) error {
	var rows []idRow
	query.Set(config.RESTParamSelect, colID)
	if err := c.do(ctx, request{method: http.MethodDelete, table: table, query: query}, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return store.ErrNotFound
	}
	return nil
}

// -----------------------------------------------------------------------------
// Friends
// -----------------------------------------------------------------------------

func (c *Client) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.Friend, error) {
	q := url.Values{}
	q.Set(config.RESTParamSelect, config.RESTSelectAll)
	q.Set(colUserID, eq(userID))
	q.Set(config.RESTParamOrder, config.RESTOrderName)

	friends := []models.Friend{}
	if err := c.do(ctx, request{method: http.MethodGet, table: config.RESTTableFriends, query: q}, &friends); err != nil {
		return nil, err
	}
	return friends, nil
}

func (c *Client) GetFriend(ctx context.Context, userID, friendID uuid.UUID) (models.Friend, error) {
	q := url.Values{}
	q.Set(config.RESTParamSelect, config.RESTSelectAll)
	q.Set(colID, eq(friendID))
	q.Set(colUserID, eq(userID))

	var rows []models.Friend
	if err := c.do(ctx, request{method: http.MethodGet, table: config.RESTTableFriends, query: q}, &rows); err != nil {
		return models.Friend{}, err
	}
	return first(rows)
}

func (c *Client) CreateFriend(ctx context.Context, f models.Friend) (models.Friend, error) {
	var rows []models.Friend
	req := request{method: http.MethodPost, table: config.RESTTableFriends, body: toFriendWrite(f)}
	if err := c.do(ctx, req, &rows); err != nil {
		return models.Friend{}, err
	}
	return first(rows)
}

func (c *Client) UpdateFriend(ctx context.Context, f models.Friend) (models.Friend, error) {
	q := url.Values{}
	q.Set(colID, eq(f.ID))
	q.Set(colUserID, eq(f.UserID))

	var rows []models.Friend
	req := request{method: http.MethodPatch, table: config.RESTTableFriends, query: q, body: toFriendWrite(f)}
	if err := c.do(ctx, req, &rows); err != nil {
		return models.Friend{}, err
	}
	return first(rows)
}

func (c *Client) DeleteFriend(ctx context.Context, userID, friendID uuid.UUID) error {
	q := url.Values{}
	q.Set(colID, eq(friendID))
	q.Set(colUserID, eq(userID))
	return c.remove(ctx, config.RESTTableFriends, q)
}

// -----------------------------------------------------------------------------
// Kids
// -----------------------------------------------------------------------------

// kidQuery selects kids joined to their friend, scoped to userID.
func kidQuery(userID uuid.UUID) url.Values {
	q := url.Values{}
	q.Set(config.RESTParamSelect, config.RESTSelectWithFK)
	q.Set(colFriendUserID, eq(userID))
	q.Set(config.RESTParamOrder, config.RESTOrderBirth)
	return q
}

func (c *Client) ListKids(ctx context.Context, userID, friendID uuid.UUID) ([]models.Kid, error) {
	q := kidQuery(userID)
	q.Set(colFriendID, eq(friendID))

	var rows []kidRow
	if err := c.do(ctx, request{method: http.MethodGet, table: config.RESTTableKids, query: q}, &rows); err != nil {
		return nil, err
	}
	kids := make([]models.Kid, 0, len(rows))
	for _, r := range rows {
		kids = append(kids, r.Kid)
	}
	return kids, nil
}

func (c *Client) ListKidRecords(ctx context.Context, userID uuid.UUID) ([]engine.KidRecord, error) {
	var rows []kidRow
	if err := c.do(ctx, request{method: http.MethodGet, table: config.RESTTableKids, query: kidQuery(userID)}, &rows); err != nil {
		return nil, err
	}
	records := make([]engine.KidRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, engine.KidRecord{Kid: r.Kid, FriendName: r.Friend.Name})
	}
	return records, nil
}

func (c *Client) GetKid(ctx context.Context, userID, kidID uuid.UUID) (models.Kid, error) {
	q := kidQuery(userID)
	q.Set(colID, eq(kidID))

	var rows []kidRow
	if err := c.do(ctx, request{method: http.MethodGet, table: config.RESTTableKids, query: q}, &rows); err != nil {
		return models.Kid{}, err
	}
	row, err := first(rows)
	return row.Kid, err
}

func (c *Client) CreateKid(ctx context.Context, k models.Kid) (models.Kid, error) {
	var rows []models.Kid
	req := request{method: http.MethodPost, table: config.RESTTableKids, body: toKidWrite(k)}
	if err := c.do(ctx, req, &rows); err != nil {
		return models.Kid{}, err
	}
	return first(rows)
}

// UpdateKid checks ownership first: the kids table has no user column to filter on.
func (c *Client) UpdateKid(ctx context.Context, userID uuid.UUID, k models.Kid) (models.Kid, error) {
	if _, err := c.GetKid(ctx, userID, k.ID); err != nil {
		return models.Kid{}, err
	}

	q := url.Values{}
	q.Set(colID, eq(k.ID))

	var rows []models.Kid
	req := request{method: http.MethodPatch, table: config.RESTTableKids, query: q, body: toKidWrite(k)}
	if err := c.do(ctx, req, &rows); err != nil {
		return models.Kid{}, err
	}
	return first(rows)
}

func (c *Client) DeleteKid(ctx context.Context, userID, kidID uuid.UUID) error {
	if _, err := c.GetKid(ctx, userID, kidID); err != nil {
		return err
	}
	q := url.Values{}
	q.Set(colID, eq(kidID))
	return c.remove(ctx, config.RESTTableKids, q)
}

// -----------------------------------------------------------------------------
// Pregnancies
// -----------------------------------------------------------------------------

func pregnancyQuery(userID uuid.UUID) url.Values {
	q := url.Values{}
	q.Set(config.RESTParamSelect, config.RESTSelectWithFK)
	q.Set(colFriendUserID, eq(userID))
	q.Set(config.RESTParamOrder, config.RESTOrderDueDate)
	return q
}

func (c *Client) ListPregnancies(ctx context.Context, userID uuid.UUID) ([]models.PregnancyWithFriend, error) {
	q := pregnancyQuery(userID)
	q.Set(colBabyBorn, eq(false))

	var rows []pregnancyRow
	if err := c.do(ctx, request{method: http.MethodGet, table: config.RESTTablePregs, query: q}, &rows); err != nil {
		return nil, err
	}
	out := make([]models.PregnancyWithFriend, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.PregnancyWithFriend{Pregnancy: r.Pregnancy, FriendName: r.Friend.Name})
	}
	return out, nil
}

func (c *Client) GetPregnancy(ctx context.Context, userID, pregnancyID uuid.UUID) (models.Pregnancy, error) {
	q := pregnancyQuery(userID)
	q.Set(colID, eq(pregnancyID))

	var rows []pregnancyRow
	if err := c.do(ctx, request{method: http.MethodGet, table: config.RESTTablePregs, query: q}, &rows); err != nil {
		return models.Pregnancy{}, err
	}
	row, err := first(rows)
	return row.Pregnancy, err
}

func (c *Client) CreatePregnancy(ctx context.Context, p models.Pregnancy) (models.Pregnancy, error) {
	var rows []models.Pregnancy
	req := request{method: http.MethodPost, table: config.RESTTablePregs, body: toPregnancyWrite(p)}
	if err := c.do(ctx, req, &rows); err != nil {
		return models.Pregnancy{}, err
	}
	return first(rows)
}

func (c *Client) UpdatePregnancy(ctx context.Context, userID uuid.UUID, p models.Pregnancy) (models.Pregnancy, error) {
	if _, err := c.GetPregnancy(ctx, userID, p.ID); err != nil {
		return models.Pregnancy{}, err
	}

	q := url.Values{}
	q.Set(colID, eq(p.ID))

	var rows []models.Pregnancy
	req := request{method: http.MethodPatch, table: config.RESTTablePregs, query: q, body: toPregnancyWrite(p)}
	if err := c.do(ctx, req, &rows); err != nil {
		return models.Pregnancy{}, err
	}
	return first(rows)
}

func (c *Client) DeletePregnancy(ctx context.Context, userID, pregnancyID uuid.UUID) error {
	if _, err := c.GetPregnancy(ctx, userID, pregnancyID); err != nil {
		return err
	}
	q := url.Values{}
	q.Set(colID, eq(pregnancyID))
	return c.remove(ctx, config.RESTTablePregs, q)
}

// -----------------------------------------------------------------------------
// Reminders
// -----------------------------------------------------------------------------

// ListReminderCandidates runs with the service key across every user.
func (c *Client) ListReminderCandidates(ctx context.Context) ([]models.ReminderCandidate, error) {
	if c.serviceKey == "" {
		return nil, errNoServiceKey
	}

	q := url.Values{}
	q.Set(config.RESTParamSelect, config.RESTSelectWithFK)
	q.Set(colReminderEnabled, eq(true))
	q.Set(colFriendReminderEnabled, eq(true))
	q.Set(config.RESTParamOrder, config.RESTOrderBirth)

	var rows []kidRow
	req := request{method: http.MethodGet, table: config.RESTTableKids, query: q, privileged: true}
	if err := c.do(ctx, req, &rows); err != nil {
		return nil, err
	}
	out := make([]models.ReminderCandidate, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.ReminderCandidate{Kid: r.Kid, FriendName: r.Friend.Name, UserID: r.Friend.UserID})
	}
	return out, nil
}
