package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/govuk-domains/domain-request/internal/middleware"
)

const robotsTxt = `User-agent: *
Disallow: /
`

const securityTxt = `Contact: https://www.gov.uk/contact
Preferred-Languages: en
`

func (s *Server) handleRobotsTxt(c *gin.Context) {
	c.String(http.StatusOK, robotsTxt)
}

func (s *Server) handleSecurityTxt(c *gin.Context) {
	c.String(http.StatusOK, securityTxt)
}

// staticPage renders one of the footer information pages.
func (s *Server) staticPage(template, title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.html(c, http.StatusOK, template, gin.H{"title": title})
	}
}

// handleCookiesPOST saves the visitor's cookie-banner choice. Only the
// consent cookies themselves come out of it.
func (s *Server) handleCookiesPOST(c *gin.Context) {
	accepted := "false"
	if c.PostForm("cookies") == "accept" {
		accepted = "true"
	}
	const year = 365 * 24 * 60 * 60
	c.SetCookie(middleware.ConsentCookie, "true", year, "/", "", s.cfg.Session.CookieSecure, false)
	c.SetCookie(middleware.ConsentAcceptedCookie, accepted, year, "/", "", s.cfg.Session.CookieSecure, false)
	c.Redirect(http.StatusFound, "/cookies/")
}
