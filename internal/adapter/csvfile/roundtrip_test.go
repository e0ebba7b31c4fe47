package csvfile

import (
	"context"
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverbed-labs/flood-source-etl/internal/domain"
	"github.com/riverbed-labs/flood-source-etl/internal/observability"
)

// Exporting with grid snapping and re-parsing the file must reproduce the
// matched cell-center coordinates exactly: snapped coordinates are axis
// values copied verbatim, and the plain-decimal cells round-trip float64.
func TestSnapExportReadRoundTrip(t *testing.T) {
	field := &domain.TimeIndexedField{
		XS:    []float64{1570703.6, 1570713.6},
		YS:    []float64{5181107.2, 5181117.2},
		Bands: []string{"1", "2"},
		Depths: [][]float64{
			{0.1, 0.2, 0.3, 0.4},
			{0.5, 0.6, 0.7, 0.8},
		},
		Elevation: []float64{12.5, 13, 14.5, 15},
		CRS:       testCRS,
	}

	// Off-center queries that snap to cells (0,0) and (1,1).
	points := []domain.Point{
		{X: 1570705.0, Y: 5181108.0, CRS: testCRS},
		{X: 1570712.9, Y: 5181116.0, CRS: testCRS},
	}

	sampled := domain.Sample(points, field, domain.SampleOptions{
		SnapToGrid:       true,
		IncludeElevation: true,
	})

	path := filepath.Join(t.TempDir(), "water_sources.csv")
	set := domain.NewWaterSourceSet(sampled, field.Bands, field.CRS)
	require.NoError(t, NewExporter(path, observability.NewMetricsForTesting(), slog.Default()).Load(context.Background(), set))

	t.Run("raw cells reproduce cell centers", func(t *testing.T) {
		data, err := os.ReadFile(path)
		require.NoError(t, err)

		rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, []string{"x", "y", "z", "1", "2"}, rows[0])

		x0, err := strconv.ParseFloat(rows[1][0], 64)
		require.NoError(t, err)
		y0, err := strconv.ParseFloat(rows[1][1], 64)
		require.NoError(t, err)
		assert.Equal(t, field.XS[0], x0, "snapped x is the axis value, bit for bit")
		assert.Equal(t, field.YS[0], y0)

		x1, err := strconv.ParseFloat(rows[2][0], 64)
		require.NoError(t, err)
		y1, err := strconv.ParseFloat(rows[2][1], 64)
		require.NoError(t, err)
		assert.Equal(t, field.XS[1], x1)
		assert.Equal(t, field.YS[1], y1)
	})

	t.Run("ReadSources reproduces locations and depths", func(t *testing.T) {
		cal := domain.DefaultCalibration()
		sources, err := ReadSources(path, cal, domain.DefaultReferenceEpoch)
		require.NoError(t, err)
		require.Len(t, sources, 2)

		assert.Equal(t, cal.Vector(sampled[0].Point), sources[0].Location)
		assert.Equal(t, cal.Vector(sampled[1].Point), sources[1].Location)

		require.Len(t, sources[0].Series, 2)
		assert.Equal(t, cal.Depth(0.1), sources[0].Series[0].Depth)
		assert.Equal(t, cal.Depth(0.5), sources[0].Series[1].Depth)
		assert.Equal(t, cal.Depth(0.4), sources[1].Series[0].Depth)
		assert.Equal(t, cal.Depth(0.8), sources[1].Series[1].Depth)
	})
}
