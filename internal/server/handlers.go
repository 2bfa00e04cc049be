package server

import (
	"net/http"
	"strconv"

	"github.com/friendskids/friendskids/internal/config"
	"github.com/friendskids/friendskids/internal/engine"
	"github.com/friendskids/friendskids/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Dashboard
// -----------------------------------------------------------------------------

func (s *Server) handleDashboard(c *gin.Context) {
	userID, _ := GetAuthUserID(c)
	ctx := c.Request.Context()

	limit := s.dashboardSize
	if raw, ok := c.GetQuery(config.QueryLimit); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, config.HTTPMsgBadQuery)
			return
		}
		limit = n
	}

	q := engine.Query{
		Search: c.Query(config.QuerySearch),
		Filter: engine.ParseFilter(c.Query(config.QueryFilter)),
		Limit:  limit,
	}

	friends, err := s.store.ListFriends(ctx, userID)
	if err != nil {
		s.fail(c, err)
		return
	}
	records, err := s.store.ListKidRecords(ctx, userID)
	if err != nil {
		s.fail(c, err)
		return
	}
	pregnancies, err := s.store.ListPregnancies(ctx, userID)
	if err != nil {
		s.fail(c, err)
		return
	}

	now := s.clock.Now()
	l := GetLocalizer(c)
	resp := dashboardResponse{
		Upcoming:    newKidViews(engine.Upcoming(records, now, q), l),
		Stats:       stats{TotalFriends: len(friends), TotalKids: len(records)},
		Pregnancies: newPregnancyViews(pregnancies, now, l),
		Filter:      q.Filter,
		Search:      q.Search,
	}
	if len(resp.Upcoming) == 0 {
		resp.EmptyLabel = l.Msg(config.TKeyEmptyUpcoming)
	}
	c.JSON(http.StatusOK, resp)
}

// -----------------------------------------------------------------------------
// Friends
// -----------------------------------------------------------------------------

func (s *Server) handleListFriends(c *gin.Context) {
	userID, _ := GetAuthUserID(c)
	ctx := c.Request.Context()

	friends, err := s.store.ListFriends(ctx, userID)
	if err != nil {
		s.fail(c, err)
		return
	}
	records, err := s.store.ListKidRecords(ctx, userID)
	if err != nil {
		s.fail(c, err)
		return
	}

	counts := make(map[uuid.UUID]int, len(friends))
	for _, r := range records {
		counts[r.Kid.FriendID]++
	}
	items := make([]friendItem, 0, len(friends))
	for _, f := range friends {
		items = append(items, friendItem{Friend: f, KidCount: counts[f.ID]})
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) handleGetFriend(c *gin.Context) {
	userID, _ := GetAuthUserID(c)
	friendID, ok := pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	friend, err := s.store.GetFriend(ctx, userID, friendID)
	if err != nil {
		s.fail(c, err)
		return
	}
	kids, err := s.store.ListKids(ctx, userID, friendID)
	if err != nil {
		s.fail(c, err)
		return
	}

	records := make([]engine.KidRecord, 0, len(kids))
	for _, k := range kids {
		records = append(records, engine.KidRecord{Kid: k, FriendName: friend.Name})
	}
	c.JSON(http.StatusOK, friendDetail{
		Friend: friend,
		Kids:   newKidViews(engine.Annotate(records, s.clock.Now()), GetLocalizer(c)),
	})
}

func (s *Server) handleCreateFriend(c *gin.Context) {
	userID, _ := GetAuthUserID(c)

	var req models.FriendCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, config.HTTPMsgBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err.Error())
		return
	}

	friend, err := s.store.CreateFriend(c.Request.Context(), models.NewFriend(userID, req))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, friend)
}

func (s *Server) handleUpdateFriend(c *gin.Context) {
	userID, _ := GetAuthUserID(c)
	friendID, ok := pathID(c)
	if !ok {
		return
	}

	var req models.FriendUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, config.HTTPMsgBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	friend, err := s.store.GetFriend(ctx, userID, friendID)
	if err != nil {
		s.fail(c, err)
		return
	}
	req.Apply(&friend)

	friend, err = s.store.UpdateFriend(ctx, friend)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, friend)
}

func (s *Server) handleDeleteFriend(c *gin.Context) {
	userID, _ := GetAuthUserID(c)
	friendID, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.store.DeleteFriend(c.Request.Context(), userID, friendID); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// -----------------------------------------------------------------------------
// Kids
// -----------------------------------------------------------------------------

func (s *Server) handleCreateKid(c *gin.Context) {
	userID, _ := GetAuthUserID(c)
	friendID, ok := pathID(c)
	if !ok {
		return
	}

	var req models.KidCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, config.HTTPMsgBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	if _, err := s.store.GetFriend(ctx, userID, friendID); err != nil {
		s.fail(c, err)
		return
	}

	kid, err := s.store.CreateKid(ctx, models.NewKid(friendID, req))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, kid)
}

func (s *Server) handleUpdateKid(c *gin.Context) {
	userID, _ := GetAuthUserID(c)
	kidID, ok := pathID(c)
	if !ok {
		return
	}

	var req models.KidUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, config.HTTPMsgBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	kid, err := s.store.GetKid(ctx, userID, kidID)
	if err != nil {
		s.fail(c, err)
		return
	}
	req.Apply(&kid)

	kid, err = s.store.UpdateKid(ctx, userID, kid)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, kid)
}

func (s *Server) handleDeleteKid(c *gin.Context) {
	userID, _ := GetAuthUserID(c)
	kidID, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.store.DeleteKid(c.Request.Context(), userID, kidID); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// -----------------------------------------------------------------------------
// Pregnancies
// -----------------------------------------------------------------------------

func (s *Server) handleCreatePregnancy(c *gin.Context) {
	userID, _ := GetAuthUserID(c)
	friendID, ok := pathID(c)
	if !ok {
		return
	}

	var req models.PregnancyCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, config.HTTPMsgBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	if _, err := s.store.GetFriend(ctx, userID, friendID); err != nil {
		s.fail(c, err)
		return
	}

	p, err := s.store.CreatePregnancy(ctx, models.NewPregnancy(friendID, req))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) handleUpdatePregnancy(c *gin.Context) {
	userID, _ := GetAuthUserID(c)
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.PregnancyUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, config.HTTPMsgBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	p, err := s.store.GetPregnancy(ctx, userID, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	req.Apply(&p)

	p, err = s.store.UpdatePregnancy(ctx, userID, p)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleDeletePregnancy(c *gin.Context) {
	userID, _ := GetAuthUserID(c)
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.store.DeletePregnancy(c.Request.Context(), userID, id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
