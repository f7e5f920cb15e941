package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lodgeline/lodgeline/internal/team/directory"
	"github.com/lodgeline/lodgeline/internal/team/directory/local"
	httpapi "github.com/lodgeline/lodgeline/internal/team/http"
	"github.com/lodgeline/lodgeline/internal/team/service"
	"github.com/lodgeline/lodgeline/internal/team/store"
	"github.com/lodgeline/lodgeline/internal/team/store/drivers/sqlite"
	"github.com/lodgeline/lodgeline/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the team service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db        store.Store
	directory directory.Directory

	authzService        *service.AuthzService
	membersService      *service.MembersService
	invitesService      *service.InvitesService
	joinService         *service.JoinService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "team-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initDirectory(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("team service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests, stops the housekeeping worker and
// closes the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down team service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("team service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initDirectory() error {
	switch app.cfg.DirectoryMode {
	case "remote":
		if app.cfg.DirectoryURL == "" {
			return fmt.Errorf("DIRECTORY_URL is required in remote directory mode")
		}
		app.directory = directory.NewRemoteClient(app.cfg.DirectoryURL, app.cfg.DirectoryToken)
		app.logger.Info("using remote user directory", "url", app.cfg.DirectoryURL)
	case "local", "":
		if app.cfg.TokenSecret == "" {
			return fmt.Errorf("TOKEN_SECRET is required in local directory mode")
		}
		app.directory = local.New(app.db, []byte(app.cfg.TokenSecret), app.cfg.TokenIssuer)
		app.logger.Info("using local user directory", "issuer", app.cfg.TokenIssuer)
	default:
		return fmt.Errorf("unknown directory mode %q", app.cfg.DirectoryMode)
	}
	return nil
}

func (app *Application) initServices() {
	app.authzService = service.NewAuthzService(app.db, app.directory)
	app.membersService = service.NewMembersService(app.db, app.directory)
	app.invitesService = service.NewInvitesService(app.db, app.directory, service.LogMailer{})
	app.joinService = service.NewJoinService(app.db, app.directory, app.invitesService)

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.InviteRetention,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)

	router.AuthzService = app.authzService
	router.MembersService = app.membersService
	router.InvitesService = app.invitesService
	router.JoinService = app.joinService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
