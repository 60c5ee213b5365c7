// Package api assembles the wizard's HTTP surface: the step controller,
// upload endpoints, the answers page, submission, the session timeout
// probes and the small read-only admin surface.
package api

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/govuk-domains/domain-request/internal/config"
	"github.com/govuk-domains/domain-request/internal/evidence"
	"github.com/govuk-domains/domain-request/internal/metrics"
	"github.com/govuk-domains/domain-request/internal/notify"
	"github.com/govuk-domains/domain-request/internal/repository"
	"github.com/govuk-domains/domain-request/internal/session"
	"github.com/govuk-domains/domain-request/internal/shared"
	"github.com/govuk-domains/domain-request/internal/storage"
)

// Server carries the wizard's collaborators. Handlers hang off it so tests
// can assemble one against in-memory implementations.
type Server struct {
	cfg      *config.Config
	renderer *shared.TemplateRenderer
	store    session.Store
	timeout  session.Timeout
	evidence *evidence.Manager
	repo     repository.ApplicationRepository
	notifier notify.Sender
	csrf     *shared.CSRFManager
	metrics  *metrics.Metrics
	registry *prometheus.Registry
}

// Options collects everything NewServer needs.
type Options struct {
	Config   *config.Config
	Renderer *shared.TemplateRenderer
	Store    session.Store
	Timeout  session.Timeout
	Evidence *evidence.Manager
	Repo     repository.ApplicationRepository
	Notifier notify.Sender
	CSRF     *shared.CSRFManager
}

// NewServer wires a Server. Zero-value option fields get safe defaults so
// handler tests only set what they exercise.
func NewServer(opts Options) *Server {
	if opts.Config == nil {
		opts.Config = &config.Config{}
	}
	if opts.Store == nil {
		opts.Store = session.NewMemoryStore()
	}
	if opts.Timeout == (session.Timeout{}) {
		opts.Timeout = session.DefaultTimeout
	}
	if opts.Repo == nil {
		opts.Repo = repository.NewMemoryApplicationRepository()
	}
	if opts.Evidence == nil {
		if backend, err := storage.NewFilesystemBackend(filepath.Join(os.TempDir(), "domain-request-uploads")); err == nil {
			opts.Evidence = evidence.NewManager(backend)
		}
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Noop{}
	}
	if opts.CSRF == nil {
		opts.CSRF = shared.NewCSRFManager(opts.Config.Server.CSRFSecret, time.Hour)
	}
	registry := prometheus.NewRegistry()
	return &Server{
		cfg:      opts.Config,
		renderer: opts.Renderer,
		store:    opts.Store,
		timeout:  opts.Timeout,
		evidence: opts.Evidence,
		repo:     opts.Repo,
		notifier: opts.Notifier,
		csrf:     opts.CSRF,
		metrics:  metrics.New(registry),
		registry: registry,
	}
}

// html renders a page through the shared renderer.
func (s *Server) html(c *gin.Context, code int, name string, ctx gin.H) {
	if ctx == nil {
		ctx = gin.H{}
	}
	ctx["show_cookie_banner"], _ = c.Get("show_cookie_banner")
	ctx["cookies_accepted"], _ = c.Get("cookies_accepted")
	s.renderer.HTML(c, code, name, ctx)
}

// invalidRequest is the hard stop for sequence violations and post-
// submission replays.
func (s *Server) invalidRequest(c *gin.Context) {
	s.html(c, http.StatusBadRequest, "error.html", gin.H{
		"title":   "Invalid request",
		"message": "Invalid request",
	})
	c.Abort()
}

func (s *Server) notFound(c *gin.Context) {
	s.html(c, http.StatusNotFound, "error.html", gin.H{
		"title":   "Page not found",
		"message": "If you typed the web address, check it is correct.",
	})
	c.Abort()
}

func (s *Server) serverError(c *gin.Context, err error) {
	log.Printf("internal error: %v", err)
	s.html(c, http.StatusInternalServerError, "error.html", gin.H{
		"title":   "Sorry, there is a problem with the service",
		"message": "Try again later.",
	})
	c.Abort()
}
