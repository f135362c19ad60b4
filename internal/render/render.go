package render

import (
	"bytes"
	"fmt"
	"math"

	"github.com/fogleman/gg"

	"github.com/odra-labs/rasterview/internal/raster"
)

const (
	barWidth   = 24
	barGap     = 16
	labelSpace = 64
)

// Render draws the grid with the given colormap plus a vertical colorbar
// labeled with the index name, and returns the encoded PNG. Values are
// normalized over the grid's finite range; NaN cells render white.
func Render(g *raster.Grid, cmap Colormap, label string) ([]byte, error) {
	stats := raster.ComputeStats(g)
	if math.IsNaN(stats.Min) {
		return nil, fmt.Errorf("cannot render %s: raster has no finite cells", label)
	}
	span := stats.Max - stats.Min
	if span == 0 {
		span = 1
	}

	width := g.Width + barGap + barWidth + labelSpace
	height := g.Height
	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			v := float64(g.At(x, y))
			if math.IsNaN(v) {
				continue
			}
			r, gr, b := cmap.At((v - stats.Min) / span)
			dc.SetRGB255(int(r), int(gr), int(b))
			dc.SetPixel(x, y)
		}
	}

	drawColorbar(dc, cmap, g, stats, label)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func drawColorbar(dc *gg.Context, cmap Colormap, g *raster.Grid, stats raster.Stats, label string) {
	barX := g.Width + barGap
	barTop := g.Height / 10
	barHeight := g.Height - 2*barTop
	if barHeight < 1 {
		barTop = 0
		barHeight = g.Height
	}

	// Top of the bar is the maximum value.
	for i := 0; i < barHeight; i++ {
		t := 1.0
		if barHeight > 1 {
			t = 1 - float64(i)/float64(barHeight-1)
		}
		r, gr, b := cmap.At(t)
		dc.SetRGB255(int(r), int(gr), int(b))
		for x := 0; x < barWidth; x++ {
			dc.SetPixel(barX+x, barTop+i)
		}
	}

	dc.SetRGB(0, 0, 0)
	textX := float64(barX + barWidth + 6)
	dc.DrawString(fmt.Sprintf("%.2f", stats.Max), textX, float64(barTop)+10)
	dc.DrawString(fmt.Sprintf("%.2f", stats.Min), textX, float64(barTop+barHeight)-2)
	dc.DrawStringAnchored(label, textX, float64(barTop+barHeight/2), 0, 0.5)
}
