package render

import (
	"bytes"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odra-labs/rasterview/internal/raster"
)

func testGrid(w, h int, fill float32) *raster.Grid {
	g := raster.NewGrid(w, h)
	for i := range g.Data {
		g.Data[i] = fill + float32(i)*0.01
	}
	return g
}

func TestRenderProducesPNG(t *testing.T) {
	cm, err := ParseColormap("RdYlGn")
	require.NoError(t, err)

	data, err := Render(testGrid(32, 24, -0.5), cm, "NDVI")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	bounds := img.Bounds()
	assert.Equal(t, 24, bounds.Dy())
	assert.Greater(t, bounds.Dx(), 32, "output must be wider than the grid to fit the colorbar")
}

func TestRenderWithNaNCells(t *testing.T) {
	g := testGrid(8, 8, 0)
	g.Data[0] = float32(math.NaN())
	g.Data[10] = float32(math.NaN())

	cm, err := ParseColormap("coolwarm")
	require.NoError(t, err)

	data, err := Render(g, cm, "NDWI")
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestRenderAllNaN(t *testing.T) {
	g := raster.NewGrid(4, 4)
	nan := float32(math.NaN())
	for i := range g.Data {
		g.Data[i] = nan
	}

	cm, err := ParseColormap("RdGy")
	require.NoError(t, err)

	_, err = Render(g, cm, "NDBI")
	assert.Error(t, err)
}

func TestRenderConstantGrid(t *testing.T) {
	g := raster.NewGrid(6, 6)
	for i := range g.Data {
		g.Data[i] = 0.4
	}

	cm, err := ParseColormap("CMRmap")
	require.NoError(t, err)

	data, err := Render(g, cm, "NDII")
	require.NoError(t, err)
	assert.NotEmpty(t, data, "zero value span must not divide by zero")
}
