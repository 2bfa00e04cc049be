// Package server exposes the JSON API and the calendar feed over gin.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/friendskids/friendskids/internal/auth"
	"github.com/friendskids/friendskids/internal/config"
	"github.com/friendskids/friendskids/internal/engine"
	"github.com/friendskids/friendskids/internal/i18n"
	"github.com/friendskids/friendskids/internal/store"
	"github.com/gin-gonic/gin"
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// Options configures a Server.
type Options struct {
	Addr            string
	Store           store.Store
	Verifier        TokenVerifier
	Translator      *i18n.Translator
	Clock           engine.Clock
	DashboardSize   int
	ReminderTrigger string
}

// Server serves the API.
type Server struct {
	addr            string
	store           store.Store
	verifier        TokenVerifier
	translator      *i18n.Translator
	clock           engine.Clock
	dashboardSize   int
	reminderTrigger string
	calendars       *calendarCache
	router          *gin.Engine
}

// New builds the router. It does not listen.
func New(opts Options) *Server {
	if opts.Clock == nil {
		opts.Clock = engine.RealClock{}
	}
	s := &Server{
		addr:            opts.Addr,
		store:           opts.Store,
		verifier:        opts.Verifier,
		translator:      opts.Translator,
		clock:           opts.Clock,
		dashboardSize:   opts.DashboardSize,
		reminderTrigger: opts.ReminderTrigger,
		calendars:       newCalendarCache(),
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(), Localize(s.translator))

	r.GET(config.RouteHealth, s.handleHealth)

	api := r.Group(config.RouteAPI)
	api.Use(RequireAuth(s.verifier))
	{
		api.GET(config.RouteDashboard, s.handleDashboard)

		api.GET(config.RouteFriends, s.handleListFriends)
		api.POST(config.RouteFriends, s.handleCreateFriend)
		api.GET(config.RouteFriend, s.handleGetFriend)
		api.PATCH(config.RouteFriend, s.handleUpdateFriend)
		api.DELETE(config.RouteFriend, s.handleDeleteFriend)

		api.POST(config.RouteFriendKids, s.handleCreateKid)
		api.PATCH(config.RouteKid, s.handleUpdateKid)
		api.DELETE(config.RouteKid, s.handleDeleteKid)

		api.POST(config.RouteFriendPregs, s.handleCreatePregnancy)
		api.PATCH(config.RoutePregnancy, s.handleUpdatePregnancy)
		api.DELETE(config.RoutePregnancy, s.handleDeletePregnancy)

		api.GET(config.RouteCalendar, s.handleCalendar)
	}
	return r
}

// Start listens on the configured address and blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyAddr, s.addr,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		config.HTTPKeyStatus:  config.HTTPStatusHealthy,
		config.HTTPKeyVersion: config.Version,
	})
}

// fail maps store errors to HTTP statuses. Unexpected errors are logged and
// hidden behind a generic message.
func (s *Server) fail(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{config.HTTPKeyError: config.HTTPMsgNotFound})
		return
	}
	slog.Error(config.MsgRequestFailed,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyMethod, c.Request.Method,
		config.LogKeyPath, c.FullPath(),
		config.LogKeyError, err,
	)
	c.JSON(http.StatusInternalServerError, gin.H{config.HTTPKeyError: config.HTTPMsgInternalErr})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{config.HTTPKeyError: msg})
}
