package raster

import "math"

// Stats summarizes a grid, ignoring NaN cells. When every cell is NaN all
// four values are NaN.
type Stats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// ComputeStats returns NaN-aware min/max/mean/population-std of the grid.
func ComputeStats(g *Grid) Stats {
	var (
		count      int
		sum, sumSq float64
		min        = math.Inf(1)
		max        = math.Inf(-1)
	)

	for _, v := range g.Data {
		f := float64(v)
		if math.IsNaN(f) {
			continue
		}
		count++
		sum += f
		sumSq += f * f
		if f < min {
			min = f
		}
		if f > max {
			max = f
		}
	}

	if count == 0 {
		nan := math.NaN()
		return Stats{Min: nan, Max: nan, Mean: nan, StdDev: nan}
	}

	mean := sum / float64(count)
	variance := sumSq/float64(count) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return Stats{
		Min:    min,
		Max:    max,
		Mean:   mean,
		StdDev: math.Sqrt(variance),
	}
}
