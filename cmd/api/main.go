package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/emulab/applianced/cmd/api/api"
	"github.com/emulab/applianced/cmd/api/config"
	"github.com/emulab/applianced/lib/compute"
	"github.com/emulab/applianced/lib/images"
	"github.com/emulab/applianced/lib/middleware"
	"github.com/emulab/applianced/lib/providers"
	"github.com/emulab/applianced/lib/registry"
	"github.com/emulab/applianced/lib/templates"
)

// application holds the initialized components
type application struct {
	Ctx        context.Context
	Logger     *slog.Logger
	Config     *config.Config
	Store      *images.Store
	Registry   *registry.Registry
	Templates  templates.Manager
	Compute    *compute.Client
	ApiService *api.ApiService
}

func main() {
	if err := run(); err != nil {
		slog.Error("application terminated", "error", err)
		os.Exit(1)
	}
}

func run() error {
	app, cleanup, err := initializeApp()
	if err != nil {
		return err
	}
	defer cleanup()

	logger := app.Logger
	slog.SetDefault(logger)

	// Unreadable search directories degrade lookups, they don't stop the
	// daemon. Surface them once at startup.
	if err := app.Registry.CheckDirectories(); err != nil {
		logger.Warn("some search directories are not readable", "error", err)
	}

	ctx, stop := signal.NotifyContext(app.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.InjectLogger(logger))
	r.Use(middleware.AccessLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	httpMetrics, err := middleware.NewHTTPMetrics(providers.ProvideMeter())
	if err != nil {
		return err
	}
	r.Use(httpMetrics.Middleware)

	if app.Config.JwtSecret != "" {
		r.Use(middleware.VerifyJWT(app.Config.JwtSecret))
	}

	app.ApiService.Routes(r)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", app.Config.Port),
		Handler: r,
	}

	grp, gctx := errgroup.WithContext(ctx)

	grp.Go(func() error {
		logger.Info("starting applianced API server", "port", app.Config.Port,
			"search_dirs", app.Registry.Dirs())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			return err
		}
		return nil
	})

	grp.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown http server", "error", err)
			return err
		}

		logger.Info("http server shutdown complete")
		return nil
	})

	return grp.Wait()
}
