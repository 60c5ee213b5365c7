package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/govuk-domains/domain-request/internal/middleware"
	"github.com/govuk-domains/domain-request/internal/wizard"
)

// requireUnconsumed rejects wizard traffic on a session that has already
// submitted. Back-button replays after submission are a hard client error,
// not a silent redirect.
func (s *Server) requireUnconsumed(c *gin.Context) {
	if rec := middleware.Record(c); rec != nil && rec.Consumed {
		s.invalidRequest(c)
		return
	}
	c.Next()
}

// Engine assembles the router.
func (s *Server) Engine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.CookieConsent())
	r.NoRoute(s.notFound)

	// Public surface: start page, session-ended, information pages.
	r.GET("/", s.handleStartGET)
	r.POST("/start/", s.handleStartPOST)
	r.GET("/session-ended/", s.handleSessionEndedGET)
	r.GET("/robots.txt", s.handleRobotsTxt)
	r.GET("/.well-known/security.txt", s.handleSecurityTxt)
	r.GET("/cookies/", s.staticPage("pages/cookies.html", "Cookies"))
	r.POST("/cookies/", s.handleCookiesPOST)
	r.GET("/accessibility/", s.staticPage("pages/accessibility.html", "Accessibility statement"))
	r.GET("/privacy/", s.staticPage("pages/privacy.html", "Privacy notice"))
	r.GET("/terms/", s.staticPage("pages/terms.html", "Terms and conditions"))

	if s.cfg.Metrics.Enabled {
		path := s.cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	}

	admin := r.Group("/admin", s.requireAdminToken)
	admin.GET("/applications/:reference", s.handleAdminApplicationGET)

	requireSession := middleware.RequireSession(s.store, s.timeout, s.evidence, s.metrics.SessionsExpired.Inc)
	verifyCSRF := middleware.VerifyCSRF(s.csrf)
	touch := middleware.TouchSession(s.store)

	// The first step mints a session on arrival; everything after it
	// demands one.
	entry := r.Group("", s.ensureSession(), s.requireUnconsumed, verifyCSRF, touch)
	entry.GET(wizard.StepRegistrarDetails.Path(), s.handleStepGET(wizard.StepRegistrarDetails))
	entry.POST(wizard.StepRegistrarDetails.Path(), s.handleStepPOST(wizard.StepRegistrarDetails))

	wiz := r.Group("", requireSession, s.requireUnconsumed, verifyCSRF, touch)
	for id := range stepPages {
		if id == wizard.StepRegistrarDetails {
			continue
		}
		wiz.GET(id.Path(), s.handleStepGET(id))
		wiz.POST(id.Path(), s.handleStepPOST(id))
	}

	// Answers-page edit affordances. The contact-detail steps get named
	// change URLs; choice steps reuse their step URL with ?change.
	changeAliases := map[string]wizard.StepID{
		"/change-registrar-details/":  wizard.StepRegistrarDetails,
		"/change-email/":              wizard.StepRegistrarDetails,
		"/change-registrant-details/": wizard.StepRegistrantDetails,
		"/change-registry-details/":   wizard.StepRegistryDetails,
		"/change-domain/":             wizard.StepDomain,
		"/change-written-permission/": wizard.StepWrittenPermission,
	}
	for path, id := range changeAliases {
		wiz.GET(path, withChangeMode(s.handleStepGET(id)))
		wiz.POST(path, withChangeMode(s.handleStepPOST(id)))
	}

	for _, page := range uploadPages {
		wiz.GET(page.upload.Path(), s.handleUploadGET(page))
		wiz.POST(page.upload.Path(), s.handleUploadPOST(page))
		wiz.GET(page.confirm.Path(), s.handleUploadConfirmGET(page))
		wiz.POST(page.confirm.Path(), s.handleUploadConfirmPOST(page))
		wiz.GET("/"+string(page.upload)+"-remove/", s.handleUploadRemove(page))
	}
	wiz.GET("/uploads/*name", s.handleUploadDownload)

	for id := range failPages {
		wiz.GET(id.Path(), s.handleFailGET(id))
	}

	wiz.GET("/confirm/", s.handleAnswersGET)

	// Submission bypasses the consumed-session guard: a double-clicked
	// submit button must land on the same success page, not an error.
	r.POST("/confirm/", requireSession, verifyCSRF, touch, s.handleConfirmPOST)

	// The success view and the timeout probes run on consumed sessions
	// too, and polling must not refresh the activity clock.
	sess := r.Group("", requireSession)
	sess.GET("/success/", s.handleSuccessGET)
	sess.GET("/session-expiry", s.handleSessionExpiryGET)
	sess.POST("/session-keepalive", verifyCSRF, s.handleSessionKeepalivePOST)

	return r
}
