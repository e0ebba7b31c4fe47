package domain

import "fmt"

// TimeIndexedField is a read-only gridded scalar field over an ordered time
// axis. Depth values are stored row-major per band: Depths[b][iy*len(XS)+ix]
// with XS and YS holding the grid's cell-center coordinates. Elevation, when
// present, is a single static band in the same layout.
//
// A field is loaded once at pipeline start and never mutated, so it is safe
// to share across sampling workers without locking.
type TimeIndexedField struct {
	XS, YS    []float64
	Bands     []string // band labels in time order (timestamps or band indices)
	Depths    [][]float64
	Elevation []float64 // nil when the source has no elevation variable
	CRS       CRS
}

// DepthAt returns the depth stored at cell (ix, iy) for the given band.
func (f *TimeIndexedField) DepthAt(band, ix, iy int) float64 {
	return f.Depths[band][iy*len(f.XS)+ix]
}

// ElevationAt returns the terrain elevation at cell (ix, iy), or false when
// the field carries no elevation layer.
func (f *TimeIndexedField) ElevationAt(ix, iy int) (float64, bool) {
	if f.Elevation == nil {
		return 0, false
	}
	return f.Elevation[iy*len(f.XS)+ix], true
}

// Validate checks the field's internal dimensions for consistency.
func (f *TimeIndexedField) Validate() error {
	if len(f.XS) == 0 || len(f.YS) == 0 {
		return fmt.Errorf("field has empty coordinate axes (%d x, %d y)", len(f.XS), len(f.YS))
	}
	if len(f.Bands) != len(f.Depths) {
		return fmt.Errorf("field has %d band labels for %d depth bands", len(f.Bands), len(f.Depths))
	}
	cells := len(f.XS) * len(f.YS)
	for b, band := range f.Depths {
		if len(band) != cells {
			return fmt.Errorf("band %d has %d cells, grid is %dx%d", b, len(band), len(f.XS), len(f.YS))
		}
	}
	if f.Elevation != nil && len(f.Elevation) != cells {
		return fmt.Errorf("elevation layer has %d cells, grid is %dx%d", len(f.Elevation), len(f.XS), len(f.YS))
	}
	return nil
}
