package render

import "fmt"

// stop is one gradient anchor at position 0..1.
type stop struct {
	pos     float64
	r, g, b uint8
}

// Colormap maps normalized values in [0,1] to colors by linear interpolation
// between anchors. The four names mirror the matplotlib palettes the
// dashboard exposes.
type Colormap struct {
	Name  string
	stops []stop
}

var colormaps = map[string]Colormap{
	"RdYlGn": {Name: "RdYlGn", stops: []stop{
		{0, 165, 0, 38},
		{0.25, 244, 109, 67},
		{0.5, 255, 255, 191},
		{0.75, 102, 189, 99},
		{1, 0, 104, 55},
	}},
	"coolwarm": {Name: "coolwarm", stops: []stop{
		{0, 59, 76, 192},
		{0.5, 221, 221, 221},
		{1, 180, 4, 38},
	}},
	"RdGy": {Name: "RdGy", stops: []stop{
		{0, 103, 0, 31},
		{0.5, 255, 255, 255},
		{1, 26, 26, 26},
	}},
	"CMRmap": {Name: "CMRmap", stops: []stop{
		{0, 0, 0, 0},
		{0.125, 38, 38, 128},
		{0.25, 77, 38, 191},
		{0.375, 153, 51, 128},
		{0.5, 255, 64, 38},
		{0.625, 230, 128, 0},
		{0.75, 230, 191, 26},
		{0.875, 230, 230, 128},
		{1, 255, 255, 255},
	}},
}

// ColormapNames lists the supported palettes in dashboard order.
func ColormapNames() []string {
	return []string{"RdYlGn", "coolwarm", "RdGy", "CMRmap"}
}

// ParseColormap validates a user-supplied palette name.
func ParseColormap(name string) (Colormap, error) {
	cm, ok := colormaps[name]
	if !ok {
		return Colormap{}, fmt.Errorf("unknown colormap %q", name)
	}
	return cm, nil
}

// At returns the interpolated color for t, clamping t into [0,1].
func (cm Colormap) At(t float64) (uint8, uint8, uint8) {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	stops := cm.stops
	for i := 1; i < len(stops); i++ {
		if t > stops[i].pos {
			continue
		}
		lo, hi := stops[i-1], stops[i]
		span := hi.pos - lo.pos
		f := 0.0
		if span > 0 {
			f = (t - lo.pos) / span
		}
		return lerp(lo.r, hi.r, f), lerp(lo.g, hi.g, f), lerp(lo.b, hi.b, f)
	}
	last := stops[len(stops)-1]
	return last.r, last.g, last.b
}

func lerp(a, b uint8, f float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*f + 0.5)
}
