package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/govuk-domains/domain-request/internal/middleware"
	"github.com/govuk-domains/domain-request/internal/wizard"
)

// handleAnswersGET renders the check-your-answers page. It is only
// reachable once every step the route requires is complete.
func (s *Server) handleAnswersGET(c *gin.Context) {
	rec := middleware.Record(c)
	app := &rec.Application
	if !wizard.Accessible(wizard.StepConfirm, app) {
		s.invalidRequest(c)
		return
	}
	token, err := s.csrf.Issue(rec.ID)
	if err != nil {
		s.serverError(c, err)
		return
	}
	s.html(c, http.StatusOK, "answers.html", gin.H{
		"title":      "Check your answers",
		"rows":       wizard.Summary(app),
		"csrf_token": token,
	})
}
