package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/hookah/internal/adapters/catalog"
	"github.com/okian/hookah/internal/adapters/http/api"
	"github.com/okian/hookah/internal/adapters/http/site"
	"github.com/okian/hookah/internal/adapters/http/swagger"
	"github.com/okian/hookah/internal/adapters/repository"
	app "github.com/okian/hookah/internal/app"
	"github.com/okian/hookah/internal/config"
	"github.com/okian/hookah/internal/domain/attributes"
	"github.com/okian/hookah/internal/domain/model"
	"github.com/okian/hookah/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
	statsInterval     = 10 * time.Second
	dataDirPerm       = 0o755
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return errors.New("failed to load config: " + err.Error())
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return errors.New("failed to initialize logging: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := os.MkdirAll(cfg.DataDir, dataDirPerm); err != nil {
		return errors.New("failed to create data dir: " + err.Error())
	}

	flavors := repository.NewFlavorStore(cfg.FlavorsPath())
	mixes := repository.NewMixStore(cfg.MixesPath(), repository.WithMaxMixes(cfg.MaxMixes))

	cat := catalog.New(nil)
	watcher := catalog.NewWatcher(flavors.Path(), cat,
		func(ctx context.Context) ([]model.Flavor, error) { return flavors.List(ctx, "") },
		catalog.WithPollInterval(cfg.CatalogPollInterval()),
	)

	deriver := attributes.New(
		attributes.WithBrandDefaults(cfg.BrandStrength),
		attributes.WithFallbackStrength(cfg.FallbackStrength),
	)

	svc := app.New(flavors, mixes, cat,
		app.WithLogger(log.Named("service")),
		app.WithDeriver(deriver),
		app.WithBannedWords(cfg.BannedWords),
		app.WithNormalizeOnSubmit(cfg.NormalizeOnSubmit),
		app.WithReloader(watcher.Reload),
	)

	if n, err := svc.SeedIfEmpty(ctx, cfg.CatalogSeedFile); err != nil {
		log.Warn(ctx, "catalog seed skipped", logger.String("file", cfg.CatalogSeedFile), logger.Error(err))
	} else if n > 0 {
		log.Info(ctx, "catalog seeded", logger.Int("flavors", n))
	}

	if err := svc.Start(ctx); err != nil {
		return errors.New("failed to start service: " + err.Error())
	}
	defer svc.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           routes(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return watcher.Run(gctx)
	})
	g.Go(func() error {
		refreshGauges(gctx, svc)
		return nil
	})
	g.Go(func() error {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return api.WrapKind("http.listen", api.ErrServe, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(ctx, "shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error(ctx, "server stopped with error", logger.Error(err))
		return err
	}
	log.Info(ctx, "server stopped")
	return nil
}

// routes builds the HTTP mux: API docs, the business API and the static site.
func routes(ctx context.Context, cfg *config.Config, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc,
		api.WithAdminKey(cfg.AdminKey),
		api.WithBodyLimit(cfg.BodyLimitBytes),
	).Register(mux)
	site.Register(ctx, mux, cfg.PublicDir)
	return mux
}

// refreshGauges keeps the mix, flavor and system gauges current between
// scrapes. GetStats updates them as a side effect.
func refreshGauges(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = svc.GetStats()
		}
	}
}
