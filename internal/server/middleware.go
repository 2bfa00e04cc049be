package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/friendskids/friendskids/internal/auth"
	"github.com/friendskids/friendskids/internal/config"
	"github.com/friendskids/friendskids/internal/i18n"
	"github.com/friendskids/friendskids/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestLogger writes one slog record per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.Log(c.Request.Context(), level, config.MsgRequest,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyMethod, c.Request.Method,
			config.LogKeyPath, c.Request.URL.Path,
			config.LogKeyStatus, c.Writer.Status(),
			config.LogKeyDuration, time.Since(start).Milliseconds(),
		)
	}
}

// Localize resolves the request's Accept-Language once.
func Localize(tr *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tr != nil {
			c.Set(config.ContextKeyLocal, tr.Localizer(c.GetHeader(config.HeaderAcceptLang)))
		}
		c.Next()
	}
}

// GetLocalizer returns the request's localizer; nil renders message keys.
func GetLocalizer(c *gin.Context) *i18n.Localizer {
	if l, ok := c.Get(config.ContextKeyLocal); ok {
		return l.(*i18n.Localizer)
	}
	return nil
}

// RequireAuth validates the bearer token and sets the user in the context.
// The raw token is attached to the request context for the store.
func RequireAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(config.HeaderAuth)
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{config.HTTPKeyError: config.HTTPMsgAuthRequired})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != config.AuthScheme || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{config.HTTPKeyError: config.HTTPMsgAuthFormat})
			return
		}
		tokenString := parts[1]

		claims, err := verifier.ValidateToken(tokenString)
		if err != nil {
			msg := config.HTTPMsgTokenInvalid
			if errors.Is(err, auth.ErrExpiredToken) {
				msg = config.HTTPMsgTokenExpired
			}
			slog.Debug(msg,
				config.LogKeyComponent, config.CompAuth,
				config.LogKeyError, err,
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{config.HTTPKeyError: msg})
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{config.HTTPKeyError: config.HTTPMsgTokenInvalid})
			return
		}

		c.Set(config.ContextKeyUserID, userID)
		c.Set(config.ContextKeyEmail, claims.Email)
		c.Request = c.Request.WithContext(store.WithAccessToken(c.Request.Context(), tokenString))

		c.Next()
	}
}

// GetAuthUserID retrieves the authenticated user ID from context.
func GetAuthUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(config.ContextKeyUserID)
	if !exists {
		return uuid.Nil, false
	}
	return userID.(uuid.UUID), true
}

// pathID parses the :id route parameter, answering 400 on failure.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(config.ParamID))
	if err != nil {
		badRequest(c, config.HTTPMsgBadID)
		return uuid.Nil, false
	}
	return id, true
}
