package dashboard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odra-labs/rasterview/internal/cache"
	"github.com/odra-labs/rasterview/internal/raster"
	"github.com/odra-labs/rasterview/internal/render"
	"github.com/odra-labs/rasterview/internal/stac"
	"github.com/odra-labs/rasterview/internal/store"
)

type stubCatalog struct {
	items []stac.Item
	err   error
	calls int
}

func (c *stubCatalog) Search(_ context.Context, _ stac.SearchRequest) ([]stac.Item, error) {
	c.calls++
	return c.items, c.err
}

// stubLoader serves synthetic grids keyed by href and counts loads.
type stubLoader struct {
	mu    sync.Mutex
	grids map[string]*raster.Grid
	loads map[string]int
}

func (l *stubLoader) LoadBand(_ context.Context, href string, match *raster.Grid) (*raster.Grid, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	grid, ok := l.grids[href]
	if !ok {
		return nil, fmt.Errorf("no such asset %s", href)
	}
	if l.loads == nil {
		l.loads = map[string]int{}
	}
	l.loads[href]++
	return grid, nil
}

type stubStore struct {
	records []store.StatsRecord
	saveErr error
}

func (s *stubStore) SaveStats(_ context.Context, rec store.StatsRecord) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *stubStore) History(_ context.Context, limit int) ([]store.StatsRecord, error) {
	if limit < len(s.records) {
		return s.records[:limit], nil
	}
	return s.records, nil
}

type stubNotifier struct {
	successes, failures []string
}

func (n *stubNotifier) NotifySuccess(m string) error {
	n.successes = append(n.successes, m)
	return nil
}

func (n *stubNotifier) NotifyError(m string) error {
	n.failures = append(n.failures, m)
	return nil
}

func sceneItem() stac.Item {
	return stac.Item{
		ID:         "S2A_20240615",
		Properties: map[string]interface{}{"eo:cloud_cover": 2.0},
		Assets: map[string]stac.Asset{
			"B03": {Href: "mem://B03"},
			"B04": {Href: "mem://B04"},
			"B08": {Href: "mem://B08"},
			"B11": {Href: "mem://B11"},
		},
	}
}

func flatGrid(w, h int, v float32) *raster.Grid {
	g := raster.NewGrid(w, h)
	for i := range g.Data {
		g.Data[i] = v
	}
	return g
}

func newTestService(t *testing.T, st store.StatsStore, notifier Notifier) (*Service, *stubLoader, *stubCatalog) {
	t.Helper()

	loader := &stubLoader{grids: map[string]*raster.Grid{
		"mem://B03": flatGrid(2, 2, 0.1),
		"mem://B04": gridOf(2, 2, 1, 2, 3, 4),
		"mem://B08": gridOf(2, 2, 4, 3, 2, 1),
		"mem://B11": flatGrid(2, 2, 0.3),
	}}
	catalog := &stubCatalog{items: []stac.Item{sceneItem()}}

	svc := NewService(Options{
		Catalog:    catalog,
		Loader:     loader,
		Store:      st,
		Notifier:   notifier,
		Collection: "sentinel-2-l2a",
		Bounds:     orb.Bound{Min: orb.Point{16.8, 51.04}, Max: orb.Point{17.17, 51.21}},
		TimeRange:  "2024-04-01/2025-04-30",
	})
	return svc, loader, catalog
}

func gridOf(w, h int, vals ...float32) *raster.Grid {
	g := raster.NewGrid(w, h)
	copy(g.Data, vals)
	return g
}

func TestSceneSelectedOnce(t *testing.T) {
	svc, _, catalog := newTestService(t, nil, nil)

	s1, err := svc.Scene(context.Background())
	require.NoError(t, err)
	s2, err := svc.Scene(context.Background())
	require.NoError(t, err)

	assert.Equal(t, s1.ID, s2.ID)
	assert.Equal(t, 1, catalog.calls, "session must reuse the selected scene")
}

func TestSceneEmptyCatalog(t *testing.T) {
	svc, _, catalog := newTestService(t, nil, nil)
	catalog.items = nil

	_, err := svc.Scene(context.Background())
	assert.ErrorIs(t, err, stac.ErrNoItems)
}

func TestIndexStatsNDVI(t *testing.T) {
	svc, _, _ := newTestService(t, nil, nil)

	stats, err := svc.IndexStats(context.Background(), raster.NDVI)
	require.NoError(t, err)

	assert.InDelta(t, -0.6, stats.Min, 1e-6)
	assert.InDelta(t, 0.6, stats.Max, 1e-6)
	assert.InDelta(t, 0.0, stats.Mean, 1e-6)
	assert.InDelta(t, math.Sqrt(0.2), stats.StdDev, 1e-6)
}

func TestComputeIndexCachesBands(t *testing.T) {
	svc, loader, _ := newTestService(t, nil, nil)
	svc.opts.Grids = cache.NewFileCache[*raster.Grid](t.TempDir())

	_, err := svc.ComputeIndex(context.Background(), raster.NDVI)
	require.NoError(t, err)
	_, err = svc.ComputeIndex(context.Background(), raster.NDVI)
	require.NoError(t, err)

	assert.Equal(t, 1, loader.loads["mem://B04"], "second run must hit the cache")
	assert.Equal(t, 1, loader.loads["mem://B08"])
}

func TestSaveStatsInsertsOneRow(t *testing.T) {
	st := &stubStore{}
	notifier := &stubNotifier{}
	svc, _, _ := newTestService(t, st, notifier)

	before := time.Now().UTC()
	rec, err := svc.SaveStats(context.Background(), raster.NDWI)
	require.NoError(t, err)

	require.Len(t, st.records, 1)
	saved := st.records[0]
	assert.Equal(t, "NDWI", saved.IndexName)
	assert.Equal(t, 2.0, saved.CloudCover)
	assert.WithinDuration(t, before, saved.CalculationDate, 5*time.Second)
	assert.Equal(t, rec, saved)
	assert.Len(t, notifier.successes, 1)
}

func TestSaveStatsFailureSurfacedNoRow(t *testing.T) {
	st := &stubStore{saveErr: errors.New("connection refused")}
	notifier := &stubNotifier{}
	svc, _, _ := newTestService(t, st, notifier)

	_, err := svc.SaveStats(context.Background(), raster.NDVI)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	assert.Empty(t, st.records, "failed save must not leave a row")
	assert.Len(t, notifier.failures, 1)
}

func TestSaveStatsWithoutStore(t *testing.T) {
	svc, _, _ := newTestService(t, nil, nil)
	_, err := svc.SaveStats(context.Background(), raster.NDVI)
	assert.Error(t, err)
}

func TestBlobKey(t *testing.T) {
	cm, err := render.ParseColormap("RdYlGn")
	require.NoError(t, err)
	assert.Equal(t, "NDVI_RdYlGn.tif", BlobKey(raster.NDVI, cm))
}

func TestHistoryCSV(t *testing.T) {
	st := &stubStore{records: []store.StatsRecord{{
		IndexName:       "NDVI",
		MinValue:        -0.6,
		MaxValue:        0.6,
		CalculationDate: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}}}
	svc, _, _ := newTestService(t, st, nil)

	out, err := svc.HistoryCSV(context.Background(), 10)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "index_name,"))
	assert.Contains(t, out, "NDVI")
}
