package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/govuk-domains/domain-request/internal/session"
)

const recordKey = "session_record"

// Purger removes everything a dead session left behind.
type Purger interface {
	Purge(ctx context.Context, sessionID string) error
}

// RequireSession loads the wizard session for the request. Requests with
// no live session are sent back to the start of the wizard; sessions past
// their expiry are evicted on the spot and the browser lands on the
// session-ended page. onExpired, when non-nil, is called once per
// eviction so the caller can count them.
func RequireSession(store session.Store, timeout session.Timeout, purger Purger, onExpired func()) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(session.CookieName)
		if err != nil || id == "" {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		rec, err := store.Get(c.Request.Context(), id)
		if errors.Is(err, session.ErrNotFound) {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		if err != nil {
			c.String(http.StatusInternalServerError, "Sorry, there is a problem with the service")
			c.Abort()
			return
		}

		now := time.Now().UTC()
		if timeout.StateOf(rec, now) == session.Expired {
			_ = store.Delete(c.Request.Context(), id)
			if purger != nil {
				_ = purger.Purge(c.Request.Context(), id)
			}
			if onExpired != nil {
				onExpired()
			}
			c.Redirect(http.StatusFound, "/session-ended/")
			c.Abort()
			return
		}

		c.Set(recordKey, rec)
		c.Next()
	}
}

// TouchSession pushes the session's activity clock forward and persists
// it. Registered after RequireSession on wizard pages; the expiry probe
// endpoints deliberately skip it so polling does not keep a session alive.
func TouchSession(store session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rec := Record(c); rec != nil {
			rec.LastActive = time.Now().UTC()
			_ = store.Put(c.Request.Context(), rec)
		}
		c.Next()
	}
}

// SetRecord installs a session record on the request, for handlers that
// mint sessions themselves.
func SetRecord(c *gin.Context, rec *session.Record) {
	c.Set(recordKey, rec)
}

// Record returns the session record RequireSession loaded, or nil.
func Record(c *gin.Context) *session.Record {
	v, ok := c.Get(recordKey)
	if !ok {
		return nil
	}
	rec, _ := v.(*session.Record)
	return rec
}
