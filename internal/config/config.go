package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// AppConfig holds everything the dashboard needs, resolved from environment
// variables with defaults matching the Wrocław deployment.
type AppConfig struct {
	// STAC catalog.
	CatalogEndpoint string
	Collection      string
	Bounds          orb.Bound
	TimeRange       string

	// Planetary-Computer style SAS signing endpoint for asset hrefs.
	// Empty disables signing.
	SignEndpoint string

	// Optional OAuth2 client-credentials auth for catalogs that need it
	// (e.g. the Copernicus data space). All three must be set together.
	CatalogClientID     string
	CatalogClientSecret string
	CatalogTokenURL     string

	// Blob storage holding pre-rendered rasters.
	StorageAccount string
	BlobContainer  string
	BlobSASToken   string

	// Postgres DSN for stats persistence. Empty disables the save path.
	DatabaseURL string

	// Webhook notifications for save outcomes. Empty disables.
	WebhookSuccessURL string
	WebhookErrorURL   string

	CacheDir string
	Port     string
}

// Load reads configuration from the environment.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		CatalogEndpoint:     getenvDefault("STAC_ENDPOINT", "https://planetarycomputer.microsoft.com/api/stac/v1"),
		Collection:          getenvDefault("STAC_COLLECTION", "sentinel-2-l2a"),
		TimeRange:           getenvDefault("STAC_TIME_RANGE", "2024-04-01/2025-04-30"),
		SignEndpoint:        getenvDefault("STAC_SIGN_ENDPOINT", "https://planetarycomputer.microsoft.com/api/sas/v1/token"),
		CatalogClientID:     os.Getenv("CATALOG_CLIENT_ID"),
		CatalogClientSecret: os.Getenv("CATALOG_CLIENT_SECRET"),
		CatalogTokenURL:     os.Getenv("CATALOG_TOKEN_URL"),
		StorageAccount:      os.Getenv("AZURE_STORAGE_ACCOUNT"),
		BlobContainer:       getenvDefault("BLOB_CONTAINER", "geotiff"),
		BlobSASToken:        os.Getenv("BLOB_SAS_TOKEN"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		WebhookSuccessURL:   os.Getenv("WEBHOOK_SUCCESS_URL"),
		WebhookErrorURL:     os.Getenv("WEBHOOK_ERROR_URL"),
		CacheDir:            getenvDefault("CACHE_DIR", "data/cache"),
		Port:                getenvDefault("PORT", "8080"),
	}

	bounds, err := parseBounds(getenvDefault("STAC_BBOX", "16.8,51.04,17.17,51.21"))
	if err != nil {
		return nil, fmt.Errorf("invalid STAC_BBOX: %w", err)
	}
	cfg.Bounds = bounds

	if (cfg.CatalogClientID == "") != (cfg.CatalogClientSecret == "") {
		return nil, fmt.Errorf("CATALOG_CLIENT_ID and CATALOG_CLIENT_SECRET must be set together")
	}

	return cfg, nil
}

// parseBounds parses "minLon,minLat,maxLon,maxLat" into an orb.Bound.
func parseBounds(s string) (orb.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return orb.Bound{}, fmt.Errorf("expected 4 comma-separated values, got %d", len(parts))
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("value %q is not a number", p)
		}
		vals[i] = v
	}
	if vals[0] >= vals[2] || vals[1] >= vals[3] {
		return orb.Bound{}, fmt.Errorf("min corner must be strictly south-west of max corner")
	}
	return orb.Bound{
		Min: orb.Point{vals[0], vals[1]},
		Max: orb.Point{vals[2], vals[3]},
	}, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
