package netcdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToFloat64s(t *testing.T) {
	tests := []struct {
		name   string
		values any
		want   []float64
	}{
		{"float64 passthrough", []float64{1.5, 2.5}, []float64{1.5, 2.5}},
		{"float32 widened", []float32{1.5, 2.5}, []float64{1.5, 2.5}},
		{"int32 widened", []int32{1, 2, 3}, []float64{1, 2, 3}},
		{"int64 widened", []int64{10, 20}, []float64{10, 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toFloat64s(tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("rejects 2D input", func(t *testing.T) {
		_, err := toFloat64s([][]float64{{1}})
		assert.ErrorContains(t, err, "want a 1D numeric array")
	})
}

func TestGridValues(t *testing.T) {
	t.Run("flattens row-major", func(t *testing.T) {
		got, err := gridValues([][]float64{{1, 2}, {3, 4}})
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 2, 3, 4}, got)
	})

	t.Run("widens float32", func(t *testing.T) {
		got, err := gridValues([][]float32{{1.5, 2.5}})
		require.NoError(t, err)
		assert.Equal(t, []float64{1.5, 2.5}, got)
	})

	t.Run("rejects 1D input", func(t *testing.T) {
		_, err := gridValues([]float64{1, 2})
		assert.ErrorContains(t, err, "want a 2D numeric array")
	})
}

func TestDepthBands(t *testing.T) {
	t.Run("cube splits into per-band grids", func(t *testing.T) {
		cube := [][][]float64{
			{{1, 2}, {3, 4}},
			{{5, 6}, {7, 8}},
		}
		got, err := depthBands(cube)
		require.NoError(t, err)
		assert.Equal(t, [][]float64{{1, 2, 3, 4}, {5, 6, 7, 8}}, got)
	})

	t.Run("2D variable is one band", func(t *testing.T) {
		got, err := depthBands([][]float64{{1, 2}, {3, 4}})
		require.NoError(t, err)
		assert.Equal(t, [][]float64{{1, 2, 3, 4}}, got)
	})

	t.Run("rejects scalar input", func(t *testing.T) {
		_, err := depthBands(3.14)
		assert.ErrorContains(t, err, "want a 3D numeric array")
	})
}

func TestBandLabels(t *testing.T) {
	tests := []struct {
		name   string
		values any
		want   []string
	}{
		{"strings kept", []string{"2000-01-01T00:00:00", "2000-01-01T01:00:00"}, []string{"2000-01-01T00:00:00", "2000-01-01T01:00:00"}},
		{"integer bands plain decimal", []int32{1, 2, 3}, []string{"1", "2", "3"}},
		{"whole floats drop the fraction", []float64{1, 2}, []string{"1", "2"}},
		{"fractional floats keep it", []float64{0.5, 1.25}, []string{"0.5", "1.25"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := bandLabels(tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
