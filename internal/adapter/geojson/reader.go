// Package geojson reads gauge points and normalization origins from GeoJSON
// vector files.
package geojson

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"

	geom "github.com/twpayne/go-geom"
	gj "github.com/twpayne/go-geom/encoding/geojson"

	"github.com/riverbed-labs/flood-source-etl/internal/domain"
)

// PointReader reads point features from a GeoJSON file.
// It implements pipeline.PointExtractor.
type PointReader struct {
	path   string
	crs    domain.CRS
	logger *slog.Logger
}

// NewPointReader creates a reader for the gauge-point file. crs is the
// fallback system for files without a declared one.
func NewPointReader(path string, crs domain.CRS, logger *slog.Logger) *PointReader {
	return &PointReader{path: path, crs: crs, logger: logger}
}

// ExtractPoints reads every feature as a 2D or 3D point. Non-point
// geometries are an error; the gauge file carries nothing else.
func (r *PointReader) ExtractPoints(_ context.Context) ([]domain.Point, error) {
	fc, crs, err := readFeatureCollection(r.path, r.crs)
	if err != nil {
		return nil, err
	}

	points := make([]domain.Point, 0, len(fc.Features))
	for i, f := range fc.Features {
		pt, ok := f.Geometry.(*geom.Point)
		if !ok {
			return nil, fmt.Errorf("feature %d in %s: got %T, want point geometry", i, r.path, f.Geometry)
		}
		points = append(points, pointFromGeom(pt, crs))
	}

	r.logger.Debug("gauge points read", "path", r.path, "count", len(points), "crs", crs.Code)
	return points, nil
}

// OriginReader derives the normalization origin from the centroid of a
// bounds file's first feature. It implements pipeline.OriginResolver.
type OriginReader struct {
	path   string
	crs    domain.CRS
	logger *slog.Logger
}

// NewOriginReader creates a resolver for the level-bounds file.
func NewOriginReader(path string, crs domain.CRS, logger *slog.Logger) *OriginReader {
	return &OriginReader{path: path, crs: crs, logger: logger}
}

// ResolveOrigin returns the centroid of the first feature's geometry.
func (r *OriginReader) ResolveOrigin(_ context.Context) (domain.Point, error) {
	fc, crs, err := readFeatureCollection(r.path, r.crs)
	if err != nil {
		return domain.Point{}, err
	}
	if len(fc.Features) == 0 {
		return domain.Point{}, fmt.Errorf("bounds file %s has no features", r.path)
	}

	switch g := fc.Features[0].Geometry.(type) {
	case *geom.Point:
		origin := pointFromGeom(g, crs)
		r.logger.Debug("origin resolved", "x", origin.X, "y", origin.Y, "crs", crs.Code)
		return origin, nil
	case *geom.Polygon:
		x, y, err := ringCentroid(g.LinearRing(0).FlatCoords(), g.Stride())
		if err != nil {
			return domain.Point{}, fmt.Errorf("bounds file %s: %w", r.path, err)
		}
		r.logger.Debug("origin resolved", "x", x, "y", y, "crs", crs.Code)
		return domain.Point{X: x, Y: y, CRS: crs}, nil
	default:
		return domain.Point{}, fmt.Errorf("bounds file %s: got %T, want point or polygon", r.path, fc.Features[0].Geometry)
	}
}

func pointFromGeom(pt *geom.Point, crs domain.CRS) domain.Point {
	c := pt.Coords()
	p := domain.Point{X: c.X(), Y: c.Y(), CRS: crs}
	if zi := pt.Layout().ZIndex(); zi >= 0 && zi < len(c) {
		p.Z = c[zi]
		p.HasZ = true
	}
	return p
}

// ringCentroid is the area centroid of a closed ring in flat-coordinate
// form. The shoelace accumulation matches what desktop GIS tools report for
// the same polygon.
func ringCentroid(flat []float64, stride int) (x, y float64, err error) {
	n := len(flat) / stride
	if n < 3 {
		return 0, 0, fmt.Errorf("ring has %d vertices, want at least 3", n)
	}

	var area, cx, cy float64
	for i := 0; i < n-1; i++ {
		x0, y0 := flat[i*stride], flat[i*stride+1]
		x1, y1 := flat[(i+1)*stride], flat[(i+1)*stride+1]
		cross := x0*y1 - x1*y0
		area += cross
		cx += (x0 + x1) * cross
		cy += (y0 + y1) * cross
	}
	if area == 0 {
		return 0, 0, fmt.Errorf("ring encloses no area")
	}
	area /= 2
	return cx / (6 * area), cy / (6 * area), nil
}

// crsNameRe matches both "EPSG:2193" and the URN form
// "urn:ogc:def:crs:EPSG::2193" produced by GIS exports.
var crsNameRe = regexp.MustCompile(`EPSG:+(\d+)$`)

func readFeatureCollection(path string, fallback domain.CRS) (*gj.FeatureCollection, domain.CRS, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.CRS{}, &domain.MissingInputFileError{Path: path, Err: err}
	}

	var fc gj.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, domain.CRS{}, fmt.Errorf("parse %s: %w", path, err)
	}

	return &fc, fileCRS(data, fallback), nil
}

// fileCRS reads the optional legacy "crs" member. GeoJSON per RFC 7946 has
// no CRS field, but geopandas still writes one for projected systems; when
// absent the configured fallback applies.
func fileCRS(data []byte, fallback domain.CRS) domain.CRS {
	var doc struct {
		CRS struct {
			Properties struct {
				Name string `json:"name"`
			} `json:"properties"`
		} `json:"crs"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fallback
	}

	m := crsNameRe.FindStringSubmatch(doc.CRS.Properties.Name)
	if m == nil {
		return fallback
	}
	crs, known := domain.LookupCRS("EPSG:" + m[1])
	if !known {
		// Unknown code: trust the declaration but keep the configured unit.
		crs.Unit = fallback.Unit
	}
	return crs
}
