// Package dashboard orchestrates one viewing session: a scene selected once
// from the catalog, index grids computed from its bands, statistics, the
// optional database save and the stored-raster visualization.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"

	"github.com/odra-labs/rasterview/internal/cache"
	"github.com/odra-labs/rasterview/internal/raster"
	"github.com/odra-labs/rasterview/internal/render"
	"github.com/odra-labs/rasterview/internal/stac"
	"github.com/odra-labs/rasterview/internal/store"
)

// Catalog is the slice of the STAC client the service needs.
type Catalog interface {
	Search(ctx context.Context, req stac.SearchRequest) ([]stac.Item, error)
}

// BlobGetter downloads pre-rendered rasters by object key.
type BlobGetter interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// RasterDecoder turns stored GeoTIFF bytes into a grid.
type RasterDecoder interface {
	DecodeTIFF(data []byte) (*raster.Grid, error)
}

// Options wires the service's collaborators. Store, Blobs, Grids and
// Notifier may be nil; the corresponding features degrade explicitly.
type Options struct {
	Catalog  Catalog
	Signer   stac.Signer
	Loader   raster.BandLoader
	Decoder  RasterDecoder
	Store    store.StatsStore
	Blobs    BlobGetter
	Grids    *cache.FileCache[*raster.Grid]
	Notifier Notifier
	Logger   *slog.Logger

	Collection string
	Bounds     orb.Bound
	TimeRange  string
}

// Notifier mirrors the notification package surface so tests can stub it.
type Notifier interface {
	NotifySuccess(message string) error
	NotifyError(message string) error
}

// Service holds the per-session state. The selected scene is resolved on
// first use and kept for the lifetime of the service.
type Service struct {
	opts Options

	mu    sync.Mutex
	scene *stac.Item
}

func NewService(opts Options) *Service {
	if opts.Signer == nil {
		opts.Signer = stac.NoopSigner{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{opts: opts}
}

// Scene returns the session's scene, searching the catalog and selecting the
// least cloudy item on first call. A failed selection is not cached, so a
// later request can retry after a transient catalog outage.
func (s *Service) Scene(ctx context.Context) (stac.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scene != nil {
		return *s.scene, nil
	}

	req := stac.NewSearchRequest(s.opts.Collection, s.opts.Bounds, s.opts.TimeRange)
	items, err := s.opts.Catalog.Search(ctx, req)
	if err != nil {
		return stac.Item{}, fmt.Errorf("catalog search failed: %w", err)
	}

	selected, err := stac.SelectClearest(items)
	if err != nil {
		return stac.Item{}, err
	}

	s.opts.Logger.Info("selected scene",
		"id", selected.ID,
		"cloud_cover", selected.CloudCover(),
		"candidates", len(items))

	s.scene = &selected
	return selected, nil
}

// ComputeIndex loads the bands the index needs and evaluates it. The two
// native-grid indices load both bands concurrently; the SWIR-matched ones
// load the reference band first so the second can be resampled onto it.
func (s *Service) ComputeIndex(ctx context.Context, idx raster.Index) (*raster.Grid, error) {
	scene, err := s.Scene(ctx)
	if err != nil {
		return nil, err
	}

	plan := idx.Plan()
	bands := make(map[string]*raster.Grid, 2)

	if plan.Matched != "" {
		ref, err := s.loadBand(ctx, scene, plan.Reference, nil)
		if err != nil {
			return nil, err
		}
		matched, err := s.loadBand(ctx, scene, plan.Matched, ref)
		if err != nil {
			return nil, err
		}
		bands[plan.Reference] = ref
		bands[plan.Matched] = matched
	} else {
		var mu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		for _, name := range []string{plan.Numerator, plan.Denominator} {
			name := name
			g.Go(func() error {
				grid, err := s.loadBand(gctx, scene, name, nil)
				if err != nil {
					return err
				}
				mu.Lock()
				bands[name] = grid
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	return idx.Compute(bands)
}

// IndexStats computes the NaN-aware summary of an index grid.
func (s *Service) IndexStats(ctx context.Context, idx raster.Index) (raster.Stats, error) {
	grid, err := s.ComputeIndex(ctx, idx)
	if err != nil {
		return raster.Stats{}, err
	}
	return raster.ComputeStats(grid), nil
}

func (s *Service) loadBand(ctx context.Context, scene stac.Item, bandID string, match *raster.Grid) (*raster.Grid, error) {
	var key string
	if s.opts.Grids != nil {
		key = s.opts.Grids.Key(scene.ID, bandID, match.GeometryKey())
		if grid, ok := s.opts.Grids.Get(key); ok {
			return grid, nil
		}
	}

	href, err := scene.AssetHref(bandID)
	if err != nil {
		return nil, err
	}
	signed, err := s.opts.Signer.SignHref(ctx, href)
	if err != nil {
		return nil, fmt.Errorf("failed to sign asset href for %s: %w", bandID, err)
	}

	grid, err := s.opts.Loader.LoadBand(ctx, signed, match)
	if err != nil {
		return nil, fmt.Errorf("failed to load band %s: %w", bandID, err)
	}

	if s.opts.Grids != nil {
		if err := s.opts.Grids.Set(key, grid); err != nil {
			s.opts.Logger.Warn("failed to cache band grid", "band", bandID, "error", err)
		}
	}
	return grid, nil
}

// SaveStats recomputes the index statistics and inserts one row. Errors are
// returned for the caller to surface; the session itself is unaffected.
func (s *Service) SaveStats(ctx context.Context, idx raster.Index) (store.StatsRecord, error) {
	if s.opts.Store == nil {
		return store.StatsRecord{}, fmt.Errorf("stats persistence is not configured")
	}

	scene, err := s.Scene(ctx)
	if err != nil {
		return store.StatsRecord{}, err
	}
	stats, err := s.IndexStats(ctx, idx)
	if err != nil {
		return store.StatsRecord{}, err
	}

	rec := store.StatsRecord{
		IndexName:       idx.String(),
		MinValue:        stats.Min,
		MaxValue:        stats.Max,
		MeanValue:       stats.Mean,
		StdDev:          stats.StdDev,
		CloudCover:      scene.CloudCover(),
		CalculationDate: time.Now().UTC(),
	}

	if err := s.opts.Store.SaveStats(ctx, rec); err != nil {
		if s.opts.Notifier != nil {
			if nerr := s.opts.Notifier.NotifyError(fmt.Sprintf("saving %s stats failed: %v", idx, err)); nerr != nil {
				s.opts.Logger.Warn("failed to send error notification", "error", nerr)
			}
		}
		return store.StatsRecord{}, fmt.Errorf("failed to save stats: %w", err)
	}

	if s.opts.Notifier != nil {
		if nerr := s.opts.Notifier.NotifySuccess(fmt.Sprintf("saved %s stats for scene %s", idx, scene.ID)); nerr != nil {
			s.opts.Logger.Warn("failed to send success notification", "error", nerr)
		}
	}
	return rec, nil
}

// BlobKey is the object naming convention for pre-rendered rasters.
func BlobKey(idx raster.Index, cmap render.Colormap) string {
	return fmt.Sprintf("%s_%s.tif", idx, cmap.Name)
}

// RenderStored downloads the pre-rendered raster for the index and colormap
// and renders it as a PNG with a colorbar labeled with the index name.
func (s *Service) RenderStored(ctx context.Context, idx raster.Index, cmap render.Colormap) ([]byte, error) {
	if s.opts.Blobs == nil {
		return nil, fmt.Errorf("blob storage is not configured")
	}

	data, err := s.opts.Blobs.Get(ctx, BlobKey(idx, cmap))
	if err != nil {
		return nil, err
	}

	grid, err := s.opts.Decoder.DecodeTIFF(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode stored raster: %w", err)
	}

	return render.Render(grid, cmap, idx.String())
}

// History returns the most recent saved stats rows.
func (s *Service) History(ctx context.Context, limit int) ([]store.StatsRecord, error) {
	if s.opts.Store == nil {
		return nil, fmt.Errorf("stats persistence is not configured")
	}
	return s.opts.Store.History(ctx, limit)
}

// HistoryCSV returns the history serialized as CSV.
func (s *Service) HistoryCSV(ctx context.Context, limit int) (string, error) {
	records, err := s.History(ctx, limit)
	if err != nil {
		return "", err
	}
	out, err := gocsv.MarshalString(&records)
	if err != nil {
		return "", fmt.Errorf("failed to marshal history CSV: %w", err)
	}
	return out, nil
}
