package geojson

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverbed-labs/flood-source-etl/internal/domain"
)

var testCRS = domain.CRS{Code: "EPSG:2193", Unit: "metre"}

func writeFixture(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestPointReaderExtractPoints(t *testing.T) {
	t.Run("reads 3D points", func(t *testing.T) {
		path := writeFixture(t, "gauges.geojson", `{
			"type": "FeatureCollection",
			"features": [
				{"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [1570703.6, 5181107.2, 12.5]}},
				{"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [1570710.0, 5181100.0, 13.0]}}
			]
		}`)

		reader := NewPointReader(path, testCRS, slog.Default())
		points, err := reader.ExtractPoints(context.Background())

		require.NoError(t, err)
		require.Len(t, points, 2)
		assert.Equal(t, 1570703.6, points[0].X)
		assert.Equal(t, 5181107.2, points[0].Y)
		assert.True(t, points[0].HasZ)
		assert.Equal(t, 12.5, points[0].Z)
		assert.Equal(t, testCRS, points[0].CRS)
	})

	t.Run("reads 2D points without elevation", func(t *testing.T) {
		path := writeFixture(t, "gauges.geojson", `{
			"type": "FeatureCollection",
			"features": [
				{"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [100.0, 200.0]}}
			]
		}`)

		reader := NewPointReader(path, testCRS, slog.Default())
		points, err := reader.ExtractPoints(context.Background())

		require.NoError(t, err)
		require.Len(t, points, 1)
		assert.False(t, points[0].HasZ)
		assert.Zero(t, points[0].Z)
	})

	t.Run("file CRS declaration wins over fallback", func(t *testing.T) {
		path := writeFixture(t, "gauges.geojson", `{
			"type": "FeatureCollection",
			"crs": {"type": "name", "properties": {"name": "urn:ogc:def:crs:EPSG::4326"}},
			"features": [
				{"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [174.5, -41.2]}}
			]
		}`)

		reader := NewPointReader(path, testCRS, slog.Default())
		points, err := reader.ExtractPoints(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "EPSG:4326", points[0].CRS.Code)
		assert.Equal(t, "degree", points[0].CRS.Unit)
	})

	t.Run("missing file yields typed error", func(t *testing.T) {
		reader := NewPointReader(filepath.Join(t.TempDir(), "nope.geojson"), testCRS, slog.Default())
		_, err := reader.ExtractPoints(context.Background())

		var missing *domain.MissingInputFileError
		require.ErrorAs(t, err, &missing)
	})

	t.Run("rejects non-point geometry", func(t *testing.T) {
		path := writeFixture(t, "gauges.geojson", `{
			"type": "FeatureCollection",
			"features": [
				{"type": "Feature", "properties": {}, "geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 1]]}}
			]
		}`)

		reader := NewPointReader(path, testCRS, slog.Default())
		_, err := reader.ExtractPoints(context.Background())

		assert.ErrorContains(t, err, "want point geometry")
	})
}

func TestOriginReaderResolveOrigin(t *testing.T) {
	t.Run("polygon centroid", func(t *testing.T) {
		path := writeFixture(t, "bounds.geojson", `{
			"type": "FeatureCollection",
			"features": [
				{"type": "Feature", "properties": {}, "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [10, 0], [10, 20], [0, 20], [0, 0]]]}}
			]
		}`)

		reader := NewOriginReader(path, testCRS, slog.Default())
		origin, err := reader.ResolveOrigin(context.Background())

		require.NoError(t, err)
		assert.InDelta(t, 5.0, origin.X, 1e-9)
		assert.InDelta(t, 10.0, origin.Y, 1e-9)
		assert.Equal(t, testCRS, origin.CRS)
	})

	t.Run("point feature is its own origin", func(t *testing.T) {
		path := writeFixture(t, "bounds.geojson", `{
			"type": "FeatureCollection",
			"features": [
				{"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [7.5, -3.0]}}
			]
		}`)

		reader := NewOriginReader(path, testCRS, slog.Default())
		origin, err := reader.ResolveOrigin(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 7.5, origin.X)
		assert.Equal(t, -3.0, origin.Y)
	})

	t.Run("empty collection", func(t *testing.T) {
		path := writeFixture(t, "bounds.geojson", `{"type": "FeatureCollection", "features": []}`)

		reader := NewOriginReader(path, testCRS, slog.Default())
		_, err := reader.ResolveOrigin(context.Background())

		assert.ErrorContains(t, err, "no features")
	})
}

func TestRingCentroid(t *testing.T) {
	t.Run("offset rectangle", func(t *testing.T) {
		flat := []float64{100, 50, 104, 50, 104, 52, 100, 52, 100, 50}
		x, y, err := ringCentroid(flat, 2)
		require.NoError(t, err)
		assert.InDelta(t, 102.0, x, 1e-9)
		assert.InDelta(t, 51.0, y, 1e-9)
	})

	t.Run("degenerate ring", func(t *testing.T) {
		flat := []float64{0, 0, 1, 1, 2, 2, 0, 0}
		_, _, err := ringCentroid(flat, 2)
		assert.ErrorContains(t, err, "no area")
	})
}
