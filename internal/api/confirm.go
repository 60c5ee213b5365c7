package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/govuk-domains/domain-request/internal/middleware"
	"github.com/govuk-domains/domain-request/internal/wizard"
)

// handleConfirmPOST freezes the application into an immutable record,
// consumes the session and hands off to the one-time success view.
// Saving is idempotent per session, so a double-submitted form still
// yields a single record and a single reference.
func (s *Server) handleConfirmPOST(c *gin.Context) {
	rec := middleware.Record(c)
	app := &rec.Application
	if rec.Consumed {
		c.Redirect(http.StatusFound, "/success/")
		return
	}
	if !wizard.Accessible(wizard.StepConfirm, app) {
		s.invalidRequest(c)
		return
	}

	reference, err := s.repo.Save(c.Request.Context(), rec.ID, app)
	if err != nil {
		s.serverError(c, err)
		return
	}

	rec.Consumed = true
	rec.Reference = reference
	if err := s.store.Put(c.Request.Context(), rec); err != nil {
		s.serverError(c, err)
		return
	}
	s.metrics.Submissions.Inc()

	// The application is already safely stored; a failed email must not
	// take the success page down with it.
	if err := s.notifier.SendConfirmation(c.Request.Context(), app, reference); err != nil {
		s.metrics.NotifyFailures.Inc()
		log.Printf("confirmation email for %s failed: %v", reference, err)
	}

	c.Redirect(http.StatusFound, "/success/")
}

// handleSuccessGET renders the submission reference exactly once. The
// session is consumed by then, so a refresh or a bookmarked return is a
// hard client error, the same as any other post-submission replay.
func (s *Server) handleSuccessGET(c *gin.Context) {
	rec := middleware.Record(c)
	if !rec.Consumed || rec.SuccessShown {
		s.invalidRequest(c)
		return
	}
	rec.SuccessShown = true
	if err := s.store.Put(c.Request.Context(), rec); err != nil {
		s.serverError(c, err)
		return
	}
	s.html(c, http.StatusOK, "success.html", gin.H{
		"title":     "Application submitted",
		"reference": rec.Reference,
		"email":     rec.Application.RegistrarEmail,
	})
}
