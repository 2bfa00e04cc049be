package server

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/friendskids/friendskids/internal/config"
	"github.com/friendskids/friendskids/internal/engine"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// cacheItem stores a rendered calendar and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// calendarCache keeps the last feed served to each user so Last-Modified only
// moves when the content does.
type calendarCache struct {
	mu    sync.Mutex
	items map[uuid.UUID]*cacheItem
}

func newCalendarCache() *calendarCache {
	return &calendarCache{items: make(map[uuid.UUID]*cacheItem)}
}

// update stores data for userID and returns the current item.
func (cc *calendarCache) update(userID uuid.UUID, data []byte, now time.Time) *cacheItem {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	cc.mu.Lock()
	defer cc.mu.Unlock()

	if prev, ok := cc.items[userID]; ok && prev.etag == etag {
		return prev
	}

	item := &cacheItem{
		data:         data,
		etag:         etag,
		lastModified: now.UTC().Format(http.TimeFormat),
	}
	cc.items[userID] = item

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyUser, userID.String(),
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
	return item
}

// handleCalendar renders the user's birthday feed with HTTP caching support.
func (s *Server) handleCalendar(c *gin.Context) {
	userID, _ := GetAuthUserID(c)
	ctx := c.Request.Context()

	records, err := s.store.ListKidRecords(ctx, userID)
	if err != nil {
		s.fail(c, err)
		return
	}

	now := s.clock.Now()
	builder := &engine.CalendarBuilder{
		Clock:           engine.FixedClock(now),
		ReminderTrigger: s.reminderTrigger,
	}
	if l := GetLocalizer(c); l != nil {
		builder.FormatSummary = l.EventSummary
	}
	data, _, err := builder.Build(ctx, records)
	if err != nil {
		s.fail(c, err)
		return
	}
	item := s.calendars.update(userID, data, now)

	h := c.Writer.Header()
	h.Set(config.HeaderContentType, config.MimeTextCalendar)
	h.Set(config.HeaderXContent, config.MimeNoSniff)
	h.Set(config.HeaderCacheCtl, config.CacheControlPrivate)
	h.Set(config.HeaderETag, item.etag)
	h.Set(config.HeaderLastMod, item.lastModified)

	if match := c.GetHeader(config.HeaderIfNoneMatch); match == item.etag {
		c.Status(http.StatusNotModified)
		return
	}

	if since := c.GetHeader(config.HeaderIfModSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				if !serverTime.After(clientTime) {
					c.Status(http.StatusNotModified)
					return
				}
			}
		}
	}

	c.Data(http.StatusOK, config.MimeTextCalendar, item.data)
}
