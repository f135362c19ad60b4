package raster

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/airbusgeo/godal"
)

// BandLoader fetches one spectral band by asset href, optionally resampled
// onto a reference grid.
type BandLoader interface {
	LoadBand(ctx context.Context, href string, match *Grid) (*Grid, error)
}

// GodalLoader loads bands through GDAL. Assets are fetched over HTTP into a
// temporary file, opened with godal, optionally warped onto the reference
// grid and read as float32 scaled by the Sentinel-2 reflectance factor.
// Callers must run godal.RegisterAll() once before using it.
type GodalLoader struct {
	HTTPClient *http.Client
	TempDir    string // empty means the system temp dir
}

// reflectanceScale converts Sentinel-2 L2A digital numbers to reflectance.
// Applied exactly once, at load time.
const reflectanceScale = 1.0 / 10000.0

func (l *GodalLoader) LoadBand(ctx context.Context, href string, match *Grid) (*Grid, error) {
	path, err := l.fetchToFile(ctx, href)
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)

	ds, err := godal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open band asset: %w", err)
	}
	defer ds.Close()

	grid, err := readDataset(ds)
	if err != nil {
		return nil, err
	}

	if match != nil && !grid.SameGeometry(match) {
		grid, err = warpToMatch(ds, match)
		if err != nil {
			return nil, err
		}
	}

	return grid.Scale(reflectanceScale), nil
}

// DecodeTIFF opens raw GeoTIFF bytes (e.g. a pre-rendered raster pulled from
// blob storage) and reads its first band without any rescaling.
func (l *GodalLoader) DecodeTIFF(data []byte) (*Grid, error) {
	tmp, err := os.CreateTemp(l.TempDir, "raster-*.tif")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp raster file: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write temp raster file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp raster file: %w", err)
	}

	ds, err := godal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode raster: %w", err)
	}
	defer ds.Close()

	return readDataset(ds)
}

func (l *GodalLoader) fetchToFile(ctx context.Context, href string) (string, error) {
	client := l.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, href, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build asset request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("asset fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("asset fetch returned status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(l.TempDir, "band-*.tif")
	if err != nil {
		return "", fmt.Errorf("failed to create temp band file: %w", err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to download band asset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close temp band file: %w", err)
	}
	return tmp.Name(), nil
}

// readDataset squeezes the dataset to its first band as a 2-D float32 grid.
func readDataset(ds *godal.Dataset) (*Grid, error) {
	bands := ds.Bands()
	if len(bands) == 0 {
		return nil, fmt.Errorf("dataset has no raster bands")
	}
	band := bands[0]

	xSize := ds.Structure().SizeX
	ySize := ds.Structure().SizeY

	data := make([]float64, xSize*ySize)
	if err := band.Read(0, 0, data, xSize, ySize); err != nil {
		return nil, fmt.Errorf("failed to read raster data: %w", err)
	}

	grid := NewGrid(xSize, ySize)
	for i, v := range data {
		grid.Data[i] = float32(v)
	}

	gt, err := ds.GeoTransform()
	if err == nil {
		grid.GeoTransform = gt
	}
	grid.Projection = ds.Projection()

	return grid, nil
}

// warpToMatch resamples the dataset onto the reference grid's projection,
// extent and resolution.
func warpToMatch(ds *godal.Dataset, match *Grid) (*Grid, error) {
	tmp, err := os.CreateTemp("", "warp-*.tif")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp warp file: %w", err)
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	xmin, ymin, xmax, ymax := match.Extent()
	switches := []string{
		"-of", "GTiff",
		"-t_srs", match.Projection,
		"-te", floatArg(xmin), floatArg(ymin), floatArg(xmax), floatArg(ymax),
		"-ts", strconv.Itoa(match.Width), strconv.Itoa(match.Height),
		"-r", "bilinear",
	}

	warped, err := ds.Warp(path, switches)
	if err != nil {
		return nil, fmt.Errorf("failed to reproject band: %w", err)
	}
	defer warped.Close()

	return readDataset(warped)
}

func floatArg(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
