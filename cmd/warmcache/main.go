// warmcache pre-fetches the session scene's bands and computes every index
// once so the dashboard serves its first request from the file cache.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/gammazero/workerpool"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"

	"github.com/odra-labs/rasterview/internal/cache"
	"github.com/odra-labs/rasterview/internal/config"
	"github.com/odra-labs/rasterview/internal/dashboard"
	"github.com/odra-labs/rasterview/internal/raster"
	"github.com/odra-labs/rasterview/internal/stac"
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

	svc := dashboard.NewService(dashboard.Options{
		Catalog:    stac.NewClient(cfg.CatalogEndpoint, httpClient),
		Signer:     signer,
		Loader:     &raster.GodalLoader{HTTPClient: httpClient},
		Grids:      cache.NewFileCache[*raster.Grid](cfg.CacheDir),
		Logger:     slog.Default(),
		Collection: cfg.Collection,
		Bounds:     cfg.Bounds,
		TimeRange:  cfg.TimeRange,
	})

	scene, err := svc.Scene(ctx)
	if err != nil {
		slog.Error("failed to select scene", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Warming cache for scene %s (cloud cover %.2f%%)\n", scene.ID, scene.CloudCover())

	indexes := raster.Indexes()
	bar := progressbar.Default(int64(len(indexes)), "computing indices")

	// Pool size 2: the SWIR-matched indices share B11/B08 loads through the
	// file cache, so wider pools mostly duplicate downloads.
	wp := workerpool.New(2)
	var mu sync.Mutex
	failures := 0

	for _, idx := range indexes {
		idx := idx
		wp.Submit(func() {
			stats, err := svc.IndexStats(ctx, idx)
			mu.Lock()
			defer mu.Unlock()
			bar.Add(1)
			if err != nil {
				failures++
				fmt.Fprintf(os.Stderr, "\n%s failed: %v\n", idx, err)
				return
			}
			fmt.Printf("\n%s: min=%.4f max=%.4f mean=%.4f std=%.4f\n",
				idx, stats.Min, stats.Max, stats.Mean, stats.StdDev)
		})
	}
	wp.StopWait()

	if failures > 0 {
		os.Exit(1)
	}
}
