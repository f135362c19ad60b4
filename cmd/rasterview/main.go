package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/airbusgeo/godal"
	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"github.com/odra-labs/rasterview/internal/api"
	"github.com/odra-labs/rasterview/internal/blob"
	"github.com/odra-labs/rasterview/internal/cache"
	"github.com/odra-labs/rasterview/internal/config"
	"github.com/odra-labs/rasterview/internal/dashboard"
	"github.com/odra-labs/rasterview/internal/notification"
	"github.com/odra-labs/rasterview/internal/raster"
	"github.com/odra-labs/rasterview/internal/stac"
	"github.com/odra-labs/rasterview/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	godal.RegisterAll()

	ctx := context.Background()
	httpClient := stac.NewHTTPClient(ctx, cfg.CatalogClientID, cfg.CatalogClientSecret, cfg.CatalogTokenURL)

	var signer stac.Signer = stac.NoopSigner{}
	if cfg.SignEndpoint != "" {
		signer = stac.NewSASSigner(cfg.SignEndpoint, cfg.Collection, httpClient)
	}

	var statsStore store.StatsStore
	if cfg.DatabaseURL != "" {
		pg := store.NewPostgresStore(cfg.DatabaseURL)
		if err := pg.Migrate(ctx); err != nil {
			slog.Error("database migration failed", "error", err)
			os.Exit(1)
		}
		statsStore = pg
	} else {
		slog.Warn("DATABASE_URL not set, stats saving disabled")
	}

	var blobs dashboard.BlobGetter
	if cfg.StorageAccount != "" {
		blobs = blob.NewClient(cfg.StorageAccount, cfg.BlobContainer, cfg.BlobSASToken, &http.Client{})
	} else {
		slog.Warn("AZURE_STORAGE_ACCOUNT not set, raster visualization disabled")
	}

	loader := &raster.GodalLoader{HTTPClient: httpClient}

	svc := dashboard.NewService(dashboard.Options{
		Catalog: stac.NewClient(cfg.CatalogEndpoint, httpClient),
		Signer:  signer,
		Loader:  loader,
		Decoder: loader,
		Store:   statsStore,
		Blobs:   blobs,
		Grids:   cache.NewFileCache[*raster.Grid](cfg.CacheDir),
		Notifier: &notification.Notifier{
			SuccessURL: cfg.WebhookSuccessURL,
			ErrorURL:   cfg.WebhookErrorURL,
		},
		Logger:     slog.Default(),
		Collection: cfg.Collection,
		Bounds:     cfg.Bounds,
		TimeRange:  cfg.TimeRange,
	})

	app := fiber.New(fiber.Config{
		AppName:      "rasterview",
		ErrorHandler: errorHandler,
	})
	api.RegisterRoutes(app, svc)

	slog.Info("starting dashboard", "port", cfg.Port, "collection", cfg.Collection)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
