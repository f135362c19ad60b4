package config

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://planetarycomputer.microsoft.com/api/stac/v1", cfg.CatalogEndpoint)
	assert.Equal(t, "sentinel-2-l2a", cfg.Collection)
	assert.Equal(t, "2024-04-01/2025-04-30", cfg.TimeRange)
	assert.Equal(t, "geotiff", cfg.BlobContainer)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, orb.Point{16.8, 51.04}, cfg.Bounds.Min)
	assert.Equal(t, orb.Point{17.17, 51.21}, cfg.Bounds.Max)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STAC_BBOX", "10,20,11,21")
	t.Setenv("PORT", "9999")
	t.Setenv("STAC_COLLECTION", "landsat-c2-l2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "landsat-c2-l2", cfg.Collection)
	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, orb.Bound{Min: orb.Point{10, 20}, Max: orb.Point{11, 21}}, cfg.Bounds)
}

func TestLoadBadBBox(t *testing.T) {
	cases := map[string]string{
		"too few values":   "1,2,3",
		"not numeric":      "a,b,c,d",
		"inverted corners": "17.17,51.21,16.8,51.04",
	}
	for name, bbox := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("STAC_BBOX", bbox)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadPartialOAuthCredentials(t *testing.T) {
	t.Setenv("CATALOG_CLIENT_ID", "id-only")

	_, err := Load()
	assert.Error(t, err)
}
