package raster

import "fmt"

// Index is one of the four supported normalized-difference indices. The set
// is closed; ParseIndex rejects anything else.
type Index string

const (
	NDVI Index = "NDVI" // vegetation: (B08-B04)/(B08+B04)
	NDII Index = "NDII" // infrared moisture: (B08-B11)/(B08+B11)
	NDBI Index = "NDBI" // built-up: (B11-B08)/(B11+B08)
	NDWI Index = "NDWI" // water: (B03-B08)/(B03+B08)
)

// Indexes lists the supported indices in dashboard order.
func Indexes() []Index {
	return []Index{NDVI, NDII, NDBI, NDWI}
}

// ParseIndex validates a user-supplied index name.
func ParseIndex(s string) (Index, error) {
	switch Index(s) {
	case NDVI, NDII, NDBI, NDWI:
		return Index(s), nil
	}
	return "", fmt.Errorf("unknown index %q", s)
}

func (idx Index) String() string { return string(idx) }

// BandPlan describes which bands an index needs and how to load them.
// Reference is loaded first on its native grid; Matched is then reprojected
// onto Reference's grid. Numerator/Denominator name the operand order of the
// normalized difference.
type BandPlan struct {
	Reference   string
	Matched     string // empty when both bands share a native grid
	Numerator   string
	Denominator string
}

// Plan returns the band plan for the index. The 20 m SWIR band B11 never
// shares a grid with the 10 m B08, so the SWIR-based indices resample B08
// onto B11's grid before differencing.
func (idx Index) Plan() BandPlan {
	switch idx {
	case NDVI:
		return BandPlan{Reference: "B04", Numerator: "B08", Denominator: "B04"}
	case NDII:
		return BandPlan{Reference: "B11", Matched: "B08", Numerator: "B08", Denominator: "B11"}
	case NDBI:
		return BandPlan{Reference: "B11", Matched: "B08", Numerator: "B11", Denominator: "B08"}
	case NDWI:
		return BandPlan{Reference: "B03", Numerator: "B03", Denominator: "B08"}
	}
	// Unreachable for values produced by ParseIndex.
	return BandPlan{}
}

// Compute evaluates the index from its two loaded bands.
func (idx Index) Compute(bands map[string]*Grid) (*Grid, error) {
	plan := idx.Plan()
	num, ok := bands[plan.Numerator]
	if !ok {
		return nil, fmt.Errorf("missing band %s for %s", plan.Numerator, idx)
	}
	den, ok := bands[plan.Denominator]
	if !ok {
		return nil, fmt.Errorf("missing band %s for %s", plan.Denominator, idx)
	}
	return NormalizedDifference(num, den)
}
