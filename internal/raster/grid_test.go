package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func geoGrid(w, h int, gt [6]float64, proj string) *Grid {
	g := NewGrid(w, h)
	g.GeoTransform = gt
	g.Projection = proj
	return g
}

func TestSameGeometry(t *testing.T) {
	gt := [6]float64{600000, 20, 0, 5700000, 0, -20}
	a := geoGrid(100, 80, gt, "EPSG:32633")

	assert.True(t, a.SameGeometry(geoGrid(100, 80, gt, "EPSG:32633")),
		"a grid matches its own geometry, so matching it is a no-op")

	assert.False(t, a.SameGeometry(geoGrid(100, 81, gt, "EPSG:32633")))
	assert.False(t, a.SameGeometry(geoGrid(100, 80, gt, "EPSG:32634")))

	shifted := gt
	shifted[0] += 10
	assert.False(t, a.SameGeometry(geoGrid(100, 80, shifted, "EPSG:32633")))

	assert.False(t, a.SameGeometry(nil))
}

func TestGeometryKey(t *testing.T) {
	gt := [6]float64{600000, 20, 0, 5700000, 0, -20}
	a := geoGrid(100, 80, gt, "EPSG:32633")
	b := geoGrid(100, 80, gt, "EPSG:32633")

	assert.Equal(t, a.GeometryKey(), b.GeometryKey())

	c := geoGrid(50, 80, gt, "EPSG:32633")
	assert.NotEqual(t, a.GeometryKey(), c.GeometryKey())

	var nilGrid *Grid
	assert.Equal(t, "native", nilGrid.GeometryKey())
}

func TestScaleAppliedOnce(t *testing.T) {
	g := gridFrom([][]float32{{10000, 5000}})
	g.Scale(1.0 / 10000.0)

	assert.InDelta(t, 1.0, g.At(0, 0), 1e-6)
	assert.InDelta(t, 0.5, g.At(1, 0), 1e-6)

	// Scaling again would change the values; the loader must not do that.
	g.Scale(1.0 / 10000.0)
	assert.InDelta(t, 0.0001, g.At(0, 0), 1e-9)
}

func TestExtent(t *testing.T) {
	g := geoGrid(10, 5, [6]float64{100, 2, 0, 50, 0, -4}, "")
	xmin, ymin, xmax, ymax := g.Extent()
	assert.Equal(t, 100.0, xmin)
	assert.Equal(t, 120.0, xmax)
	assert.Equal(t, 50.0, ymax)
	assert.Equal(t, 30.0, ymin)
}
