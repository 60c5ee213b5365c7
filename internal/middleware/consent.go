package middleware

import (
	"github.com/gin-gonic/gin"
)

const (
	// ConsentCookie records that the visitor has answered the cookie
	// banner; ConsentAcceptedCookie records the answer as true/false.
	ConsentCookie         = "cookies_preference_set"
	ConsentAcceptedCookie = "cookies_accepted"
)

// CookieConsent exposes the visitor's cookie-banner state to handlers and
// templates: show_cookie_banner is true until a preference has been saved.
func CookieConsent() gin.HandlerFunc {
	return func(c *gin.Context) {
		set, err := c.Cookie(ConsentCookie)
		answered := err == nil && set == "true"
		c.Set("show_cookie_banner", !answered)

		accepted, err := c.Cookie(ConsentAcceptedCookie)
		if err != nil {
			accepted = ""
		}
		c.Set("cookies_accepted", accepted)
		c.Next()
	}
}
