package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/govuk-domains/domain-request/internal/middleware"
	"github.com/govuk-domains/domain-request/internal/session"
)

// sessionCookieMaxAge outlives the inactivity window comfortably; the
// server-side record is what actually decides whether a session is live.
const sessionCookieMaxAge = 4 * 60 * 60

func (s *Server) setSessionCookie(c *gin.Context, id string) {
	c.SetCookie(session.CookieName, id, sessionCookieMaxAge, "/",
		"", s.cfg.Session.CookieSecure, true)
}

// handleStartGET renders the service start page. No session is needed to
// look at it.
func (s *Server) handleStartGET(c *gin.Context) {
	s.html(c, http.StatusOK, "start.html", gin.H{
		"title": "Get approval to use a .gov.uk domain name",
	})
}

// handleStartPOST mints a brand-new session and enters the wizard,
// discarding any in-progress application the browser still had a cookie
// for.
func (s *Server) handleStartPOST(c *gin.Context) {
	if old, err := c.Cookie(session.CookieName); err == nil && old != "" {
		_ = s.store.Delete(c.Request.Context(), old)
		if s.evidence != nil {
			_ = s.evidence.Purge(c.Request.Context(), old)
		}
	}
	rec := session.New(time.Now().UTC())
	if err := s.store.Put(c.Request.Context(), rec); err != nil {
		s.serverError(c, err)
		return
	}
	s.setSessionCookie(c, rec.ID)
	s.metrics.SessionsStarted.Inc()
	c.Redirect(http.StatusFound, "/registrar-details/")
}

// ensureSession loads the session like middleware.RequireSession but mints
// a fresh one instead of bouncing to the start page. Registered on the
// first wizard step only, so a direct visit begins an application.
func (s *Server) ensureSession() gin.HandlerFunc {
	requireSession := middleware.RequireSession(s.store, s.timeout, s.evidence, s.metrics.SessionsExpired.Inc)
	return func(c *gin.Context) {
		id, cookieErr := c.Cookie(session.CookieName)
		if cookieErr == nil && id != "" {
			if _, err := s.store.Get(c.Request.Context(), id); err == nil {
				requireSession(c)
				return
			} else if !errors.Is(err, session.ErrNotFound) {
				s.serverError(c, err)
				return
			}
		}
		rec := session.New(time.Now().UTC())
		if err := s.store.Put(c.Request.Context(), rec); err != nil {
			s.serverError(c, err)
			return
		}
		s.setSessionCookie(c, rec.ID)
		s.metrics.SessionsStarted.Inc()
		middleware.SetRecord(c, rec)
		c.Next()
	}
}

// handleSessionEndedGET is where expired sessions land. Continue restarts
// the wizard from scratch.
func (s *Server) handleSessionEndedGET(c *gin.Context) {
	s.html(c, http.StatusOK, "session-ended.html", gin.H{
		"title": "Your session has ended",
	})
}

// handleSessionExpiryGET reports the authoritative timeout state without
// refreshing the activity clock, so the browser countdown can poll it.
func (s *Server) handleSessionExpiryGET(c *gin.Context) {
	rec := middleware.Record(c)
	now := time.Now().UTC()
	c.JSON(http.StatusOK, gin.H{
		"state":             s.timeout.StateOf(rec, now).String(),
		"seconds_remaining": int(s.timeout.Remaining(rec, now).Seconds()),
	})
}

// handleSessionKeepalivePOST is the timeout modal's continue action: it
// pushes LastActive to now for every tab sharing the session.
func (s *Server) handleSessionKeepalivePOST(c *gin.Context) {
	rec := middleware.Record(c)
	rec.LastActive = time.Now().UTC()
	if err := s.store.Put(c.Request.Context(), rec); err != nil {
		s.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": session.Active.String()})
}
