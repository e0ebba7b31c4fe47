package domain

// CRS identifies a coordinate reference system by authority code plus the
// unit of its horizontal axes.
type CRS struct {
	Code string // authority code, e.g. "EPSG:2193"
	Unit string // axis unit name, e.g. "metre"
}

// Linear reports whether the system's axes use linear (distance) units.
// Geographic systems measured in degrees are not linear and cannot be
// normalized into scene coordinates.
func (c CRS) Linear() bool {
	switch c.Unit {
	case "metre", "meter", "foot":
		return true
	}
	return false
}

// knownCRSUnits covers the systems this pipeline encounters in practice.
// Codes outside the table keep whatever unit the caller configured.
var knownCRSUnits = map[string]string{
	"EPSG:2193":  "metre", // NZTM2000
	"EPSG:27200": "metre", // NZMG
	"EPSG:32759": "metre", // UTM zone 59S
	"EPSG:32760": "metre", // UTM zone 60S
	"EPSG:3857":  "metre", // web mercator
	"EPSG:4326":  "degree",
	"EPSG:4167":  "degree", // NZGD2000
}

// LookupCRS resolves an authority code against the known-systems table.
func LookupCRS(code string) (CRS, bool) {
	unit, ok := knownCRSUnits[code]
	if !ok {
		return CRS{Code: code}, false
	}
	return CRS{Code: code, Unit: unit}, true
}

// Point is a 2D or 3D coordinate in a named CRS. Points are values and are
// never mutated after construction; transforms return new points.
type Point struct {
	X, Y float64
	Z    float64
	HasZ bool
	CRS  CRS
}

// SampledPoint is a point plus its depth series, one value per field band in
// the field's declared order. Elevation, when sampled, lives in Point.Z.
type SampledPoint struct {
	Point
	Depths []float64
}

// NormalizedPoint is a SampledPoint whose coordinates have been translated
// to a local origin with the Y axis flipped. The distinct type marks that
// normalization has been applied; it is applied at most once per point.
type NormalizedPoint struct {
	SampledPoint
}
