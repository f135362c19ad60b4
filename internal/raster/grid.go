package raster

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"math"
)

// Grid is a two-dimensional float32 raster with its georeferencing. Data is
// stored row-major, Data[y*Width+x].
type Grid struct {
	Data         []float32  `json:"data"`
	Width        int        `json:"width"`
	Height       int        `json:"height"`
	GeoTransform [6]float64 `json:"geo_transform"`
	Projection   string     `json:"projection"`
}

// NewGrid allocates a zero-filled grid without georeferencing.
func NewGrid(width, height int) *Grid {
	return &Grid{
		Data:   make([]float32, width*height),
		Width:  width,
		Height: height,
	}
}

func (g *Grid) At(x, y int) float32 {
	return g.Data[y*g.Width+x]
}

func (g *Grid) Set(x, y int, v float32) {
	g.Data[y*g.Width+x] = v
}

// Extent returns (xmin, ymin, xmax, ymax) in the grid's projected units.
func (g *Grid) Extent() (float64, float64, float64, float64) {
	xmin := g.GeoTransform[0]
	ymax := g.GeoTransform[3]
	xmax := xmin + g.GeoTransform[1]*float64(g.Width)
	ymin := ymax + g.GeoTransform[5]*float64(g.Height)
	return xmin, ymin, xmax, ymax
}

// SameGeometry reports whether two grids share size, transform and
// projection, i.e. whether reprojecting one onto the other would be a no-op.
func (g *Grid) SameGeometry(other *Grid) bool {
	if other == nil {
		return false
	}
	if g.Width != other.Width || g.Height != other.Height {
		return false
	}
	if g.Projection != other.Projection {
		return false
	}
	for i := range g.GeoTransform {
		if g.GeoTransform[i] != other.GeoTransform[i] {
			return false
		}
	}
	return true
}

// GeometryKey is a stable digest of the grid geometry, used in cache keys so
// a band loaded against different reference grids caches separately.
func (g *Grid) GeometryKey() string {
	if g == nil {
		return "native"
	}
	s := fmt.Sprintf("%dx%d_%v_%s", g.Width, g.Height, g.GeoTransform, g.Projection)
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}

// Scale multiplies every cell by factor in place and returns the grid.
func (g *Grid) Scale(factor float32) *Grid {
	for i := range g.Data {
		g.Data[i] *= factor
	}
	return g
}

// NormalizedDifference computes (a-b)/(a+b) elementwise. Cells where the
// denominator is zero become NaN. The inputs must share dimensions.
func NormalizedDifference(a, b *Grid) (*Grid, error) {
	if a.Width != b.Width || a.Height != b.Height {
		return nil, fmt.Errorf("grid size mismatch: %dx%d vs %dx%d", a.Width, a.Height, b.Width, b.Height)
	}
	out := &Grid{
		Data:         make([]float32, len(a.Data)),
		Width:        a.Width,
		Height:       a.Height,
		GeoTransform: a.GeoTransform,
		Projection:   a.Projection,
	}
	nan := float32(math.NaN())
	for i := range a.Data {
		denom := a.Data[i] + b.Data[i]
		if denom == 0 {
			out.Data[i] = nan
			continue
		}
		out.Data[i] = (a.Data[i] - b.Data[i]) / denom
	}
	return out, nil
}
