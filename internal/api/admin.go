package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/govuk-domains/domain-request/internal/repository"
	"github.com/govuk-domains/domain-request/internal/wizard"
)

// requireAdminToken guards the read-only admin surface with a static
// bearer token from config. No token configured means no admin surface.
func (s *Server) requireAdminToken(c *gin.Context) {
	token := s.cfg.Admin.Token
	if !s.cfg.Admin.Enabled || token == "" {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != token {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

// handleAdminApplicationGET returns a submitted application by reference,
// with evidence-presence flags summarised per slot.
func (s *Server) handleAdminApplicationGET(c *gin.Context) {
	rec, err := s.repo.GetByReference(c.Request.Context(), c.Param("reference"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	evidenceFlags := gin.H{}
	for _, slot := range []wizard.EvidenceSlot{wizard.SlotExemption, wizard.SlotPermission, wizard.SlotMinister} {
		evidenceFlags[string(slot)] = rec.Application.EvidenceFor(slot) != nil
	}

	c.JSON(http.StatusOK, gin.H{
		"reference":    rec.Reference,
		"submitted_at": rec.SubmittedAt,
		"application":  rec.Application,
		"evidence":     evidenceFlags,
	})
}
