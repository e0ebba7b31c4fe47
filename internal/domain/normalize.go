package domain

// Normalize re-expresses each point in the local coordinate system anchored
// at origin: translate by the origin, then flip the Y axis. X and Z are
// never flipped; Z passes through untouched. The output aligns 1:1 with the
// input by position.
//
// Points and origin must share a CRS with linear units; a mismatch returns
// a *CoordinateSystemMismatchError rather than silently proceeding.
func Normalize(points []SampledPoint, origin Point) ([]NormalizedPoint, error) {
	for i := range points {
		if points[i].CRS.Code != origin.CRS.Code {
			return nil, &CoordinateSystemMismatchError{Have: points[i].CRS, Want: origin.CRS}
		}
	}
	if !origin.CRS.Linear() {
		return nil, &CoordinateSystemMismatchError{Have: origin.CRS, Want: origin.CRS}
	}

	out := make([]NormalizedPoint, len(points))
	for i, p := range points {
		np := p
		np.X = p.X - origin.X
		np.Y = -(p.Y - origin.Y)
		out[i] = NormalizedPoint{SampledPoint: np}
	}
	return out, nil
}
