// Command server runs the .gov.uk domain-request wizard.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/govuk-domains/domain-request/internal/api"
	"github.com/govuk-domains/domain-request/internal/config"
	"github.com/govuk-domains/domain-request/internal/evidence"
	"github.com/govuk-domains/domain-request/internal/notify"
	"github.com/govuk-domains/domain-request/internal/repository"
	"github.com/govuk-domains/domain-request/internal/session"
	"github.com/govuk-domains/domain-request/internal/shared"
	"github.com/govuk-domains/domain-request/internal/storage"
)

var (
	version = "dev"
	commit  = "none"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:     "server",
	Short:   "The get-approval-to-use-a-.gov.uk-domain-name service",
	Version: fmt.Sprintf("%s (commit: %s)", version, commit),
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the wizard HTTP server",
	RunE:  runServe,
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one session eviction pass and exit",
	RunE:  runSweep,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "directory holding config.yaml")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sweepCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// deps is everything the serve and sweep commands share.
type deps struct {
	cfg     *config.Config
	store   session.Store
	memory  *session.MemoryStore
	manager *evidence.Manager
	repo    repository.ApplicationRepository
	timeout session.Timeout
}

func buildDeps() (*deps, func(), error) {
	if err := config.Load(configPath); err != nil {
		return nil, nil, err
	}
	cfg := config.Get()

	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var db *sqlx.DB
	var err error
	if cfg.Database.Driver != "" {
		db, err = sqlx.Open(cfg.Database.Driver, cfg.Database.GetDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
		closers = append(closers, func() { db.Close() })
	}

	timeout := session.Timeout{
		WarnAfter:   cfg.Session.WarnAfter,
		ExpireAfter: cfg.Session.ExpireAfter,
	}

	var store session.Store
	var memory *session.MemoryStore
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.GetRedisAddr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})
		closers = append(closers, func() { client.Close() })
		// TTL a little past expiry so the expired-session redirect can
		// still find the record and show the session-ended page.
		store = session.NewRedisStore(client, "wizard:session:", timeout.ExpireAfter+time.Hour)
	} else {
		memory = session.NewMemoryStore()
		store = memory
	}

	backend, err := storage.New(cfg.Uploads.Backend, cfg.Uploads.BasePath, db)
	if err != nil {
		closeAll()
		return nil, nil, fmt.Errorf("storage backend: %w", err)
	}

	var repo repository.ApplicationRepository
	if db != nil {
		sqlRepo := repository.NewSQLApplicationRepository(db)
		if err := sqlRepo.EnsureSchema(context.Background()); err != nil {
			closeAll()
			return nil, nil, err
		}
		repo = sqlRepo
	} else {
		repo = repository.NewMemoryApplicationRepository()
	}

	return &deps{
		cfg:     cfg,
		store:   store,
		memory:  memory,
		manager: evidence.NewManager(backend),
		repo:    repo,
		timeout: timeout,
	}, closeAll, nil
}

// sweepOnce evicts expired in-memory sessions and deletes their orphaned
// evidence. The Redis store expires records by TTL instead; its evidence
// is cleaned by the expiry redirect path.
func sweepOnce(d *deps) {
	if d.memory == nil {
		return
	}
	for _, rec := range d.memory.Sweep(d.timeout, time.Now().UTC()) {
		if err := d.manager.Purge(context.Background(), rec.ID); err != nil {
			log.Printf("sweep: purge evidence for %s: %v", rec.ID, err)
		}
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	d, cleanup, err := buildDeps()
	if err != nil {
		return err
	}
	defer cleanup()
	cfg := d.cfg

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var notifier notify.Sender = notify.Noop{}
	if cfg.Notify.Enabled {
		client, err := notify.NewClient(cfg.Notify.APIKey, cfg.Notify.Templates)
		if err != nil {
			return fmt.Errorf("notify client: %w", err)
		}
		notifier = client
	}

	renderer, err := shared.NewTemplateRenderer(cfg.Server.TemplatesPath)
	if err != nil {
		log.Printf("templates unavailable, using fallback renderer: %v", err)
		renderer = nil
	}

	server := api.NewServer(api.Options{
		Config:   cfg,
		Renderer: renderer,
		Store:    d.store,
		Timeout:  d.timeout,
		Evidence: d.manager,
		Repo:     d.repo,
		Notifier: notifier,
	})
	engine := server.Engine()
	if cfg.Server.StaticPath != "" {
		engine.Static("/static", cfg.Server.StaticPath)
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Session.SweepInterval, func() { sweepOnce(d) }); err != nil {
		return fmt.Errorf("sweep schedule %q: %w", cfg.Session.SweepInterval, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Printf("shutting down on %s", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

func runSweep(cmd *cobra.Command, args []string) error {
	d, cleanup, err := buildDeps()
	if err != nil {
		return err
	}
	defer cleanup()
	sweepOnce(d)
	return nil
}
