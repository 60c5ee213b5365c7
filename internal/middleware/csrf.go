package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/govuk-domains/domain-request/internal/shared"
)

// CSRFField is the hidden input name every wizard form carries.
const CSRFField = "csrf_token"

// VerifyCSRF checks the form token on mutating requests. A missing or
// forged token sends the browser back to the start rather than serving
// an error page.
func VerifyCSRF(mgr *shared.CSRFManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		rec := Record(c)
		if rec == nil {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		token := c.PostForm(CSRFField)
		if token == "" {
			token = c.GetHeader("X-CSRF-Token")
		}
		if err := mgr.Verify(token, rec.ID); err != nil {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}
