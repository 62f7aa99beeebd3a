package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	httpapp "marketplace_admin/internal/app/http"
	"marketplace_admin/internal/client/marketplace"
	"marketplace_admin/internal/config"
	"marketplace_admin/internal/lib/logger/sl"
	services_category "marketplace_admin/internal/services/category_service"
	services_publication "marketplace_admin/internal/services/publication_service"
	services_upload "marketplace_admin/internal/services/upload_service"
	filestorage "marketplace_admin/internal/storage/filestorage"
	"marketplace_admin/internal/storage/memory"
	"marketplace_admin/internal/storage/overlay"
	"marketplace_admin/internal/storage/postgresql"
	redisstorage "marketplace_admin/internal/storage/redis"
	httprouters "marketplace_admin/internal/transport/http"
)

type App struct {
	HTTPServer *httpapp.Server
	Overlay    *overlay.Store

	log     *slog.Logger
	cancel  context.CancelFunc
	closers []func()
}

// substrate opens the overlay storage selected by cfg.Overlay.Driver. The
// returned health check is nil for in-process drivers.
func substrate(ctx context.Context, cfg *config.Config) (overlay.Substrate, func(context.Context) error, func(), error) {
	const op = "app.substrate"

	switch cfg.Overlay.Driver {
	case config.OverlayRedis:
		client := redisstorage.NewClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)
		if err := client.HealthCheck(ctx); err != nil {
			_ = client.Close()
			return nil, nil, nil, fmt.Errorf("%s: %w", op, err)
		}

		return redisstorage.NewOverlayStorage(client, cfg.Overlay.Channel), client.HealthCheck, func() { _ = client.Close() }, nil

	case config.OverlayPostgres:
		pg, err := postgresql.New(ctx, cfg.Overlay.DSN, cfg.Overlay.Channel)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Stop()
			return nil, nil, nil, fmt.Errorf("%s: %w", op, err)
		}

		return pg, pg.Ping, pg.Stop, nil

	case config.OverlayFile:
		fs, err := filestorage.NewLocalFileStorage(cfg.Overlay.Dir)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%s: %w", op, err)
		}

		return fs, nil, func() {}, nil

	case config.OverlayMemory, "":
		return memory.New(), nil, func() {}, nil
	}

	return nil, nil, nil, fmt.Errorf("%s: unknown overlay driver %q", op, cfg.Overlay.Driver)
}

func New(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.New"

	sub, health, closeSub, err := substrate(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	store := overlay.New(log, sub, cfg.Overlay.Prefix)

	backend := marketplace.New(log, cfg.Backend.BaseURL, cfg.Backend.Timeout)

	publicationService := services_publication.NewPublicationService(log, backend, store)
	categoryService := services_category.NewCategoryService(log, backend, marketplace.IsNotFound, cfg.Categories.CacheTTL)
	uploadService := services_upload.NewUploadService(log, backend, cfg.Upload.MaxFiles, cfg.Upload.MaxSizeMB)

	routers := httprouters.NewRouter(log, publicationService, categoryService, uploadService)
	routers.SetKeepAlive(cfg.HTTP.SSEKeepAlive)
	if health != nil {
		routers.SetHealthCheck(overlayHealth(store, health))
	}

	log.Info("application configured",
		slog.String("overlay", cfg.Overlay.Driver),
		slog.String("backend", cfg.Backend.BaseURL),
	)

	return &App{
		HTTPServer: httpapp.New(log, cfg.HTTP.Host, cfg.HTTP.Port, routers),
		Overlay:    store,
		log:        log,
		closers:    []func(){closeSub},
	}, nil
}

// overlayHealth fails while the change listener is disconnected, otherwise
// defers to the substrate check.
func overlayHealth(store *overlay.Store, substrate func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := store.ListenErr(); err != nil {
			return fmt.Errorf("overlay listener: %w", err)
		}
		return substrate(ctx)
	}
}

// RunListener relays change signals of other instances until Stop is called.
func (a *App) RunListener() {
	const op = "app.RunListener"

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	go func() {
		if err := a.Overlay.Listen(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.log.Error("overlay listener stopped", slog.String("op", op), sl.Err(err))
		}
	}()
}

func (a *App) Stop() {
	const op = "app.Stop"

	if err := a.HTTPServer.Stop(); err != nil {
		a.log.Error("http server stop", slog.String("op", op), sl.Err(err))
	}

	if a.cancel != nil {
		a.cancel()
	}

	for _, closeFn := range a.closers {
		closeFn()
	}
}
