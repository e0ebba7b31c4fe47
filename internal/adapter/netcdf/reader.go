// Package netcdf reads time-indexed flood depth fields from NetCDF model
// output.
package netcdf

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/riverbed-labs/flood-source-etl/internal/domain"
)

// VarNames selects the dataset variables to read. Hydrodynamic solvers name
// these differently between versions, so they are configured rather than
// hardcoded.
type VarNames struct {
	X         string
	Y         string
	Time      string
	Depth     string
	Elevation string
}

// FieldReader loads a depth field from a NetCDF file.
// It implements pipeline.FieldExtractor.
type FieldReader struct {
	path   string
	vars   VarNames
	crs    domain.CRS
	logger *slog.Logger
}

// NewFieldReader creates a reader for the model-output file.
func NewFieldReader(path string, vars VarNames, crs domain.CRS, logger *slog.Logger) *FieldReader {
	return &FieldReader{path: path, vars: vars, crs: crs, logger: logger}
}

// ExtractField reads the coordinate axes, band labels, depth cube and
// optional bed elevation into a TimeIndexedField. The elevation variable is
// best-effort; models run without a bathymetry layer simply omit it.
func (r *FieldReader) ExtractField(_ context.Context) (*domain.TimeIndexedField, error) {
	if _, err := os.Stat(r.path); err != nil {
		return nil, &domain.MissingInputFileError{Path: r.path, Err: err}
	}

	nc, err := netcdf.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open field %s: %w", r.path, err)
	}
	defer nc.Close()

	xs, err := r.axis(nc, r.vars.X)
	if err != nil {
		return nil, err
	}
	ys, err := r.axis(nc, r.vars.Y)
	if err != nil {
		return nil, err
	}

	timeVar, err := nc.GetVariable(r.vars.Time)
	if err != nil {
		return nil, fmt.Errorf("read %s from %s: %w", r.vars.Time, r.path, err)
	}
	bands, err := bandLabels(timeVar.Values)
	if err != nil {
		return nil, fmt.Errorf("variable %s in %s: %w", r.vars.Time, r.path, err)
	}

	depthVar, err := nc.GetVariable(r.vars.Depth)
	if err != nil {
		return nil, fmt.Errorf("read %s from %s: %w", r.vars.Depth, r.path, err)
	}
	depths, err := depthBands(depthVar.Values)
	if err != nil {
		return nil, fmt.Errorf("variable %s in %s: %w", r.vars.Depth, r.path, err)
	}

	field := &domain.TimeIndexedField{
		XS:     xs,
		YS:     ys,
		Bands:  bands,
		Depths: depths,
		CRS:    r.crs,
	}

	if r.vars.Elevation != "" {
		if elevVar, err := nc.GetVariable(r.vars.Elevation); err == nil {
			field.Elevation, err = gridValues(elevVar.Values)
			if err != nil {
				return nil, fmt.Errorf("variable %s in %s: %w", r.vars.Elevation, r.path, err)
			}
		} else {
			r.logger.Debug("no elevation variable", "path", r.path, "var", r.vars.Elevation)
		}
	}

	if err := field.Validate(); err != nil {
		return nil, fmt.Errorf("field %s: %w", r.path, err)
	}

	r.logger.Debug("field read",
		"path", r.path,
		"grid", fmt.Sprintf("%dx%d", len(xs), len(ys)),
		"bands", len(bands),
		"elevation", field.Elevation != nil)
	return field, nil
}

func (r *FieldReader) axis(nc api.Group, name string) ([]float64, error) {
	v, err := nc.GetVariable(name)
	if err != nil {
		return nil, fmt.Errorf("read %s from %s: %w", name, r.path, err)
	}
	vals, err := toFloat64s(v.Values)
	if err != nil {
		return nil, fmt.Errorf("variable %s in %s: %w", name, r.path, err)
	}
	return vals, nil
}

// toFloat64s widens a 1D numeric variable to float64.
func toFloat64s(values any) ([]float64, error) {
	switch v := values.(type) {
	case []float64:
		return v, nil
	case []float32:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, nil
	case []int64:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, nil
	case []int32:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, nil
	case []int16:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("got %T, want a 1D numeric array", values)
	}
}

// gridValues flattens a 2D variable row-major, matching the field's
// iy*len(xs)+ix cell addressing.
func gridValues(values any) ([]float64, error) {
	switch v := values.(type) {
	case [][]float64:
		return flattenRows(v), nil
	case [][]float32:
		out := make([]float64, 0, len(v)*rowLen(v))
		for _, row := range v {
			for _, x := range row {
				out = append(out, float64(x))
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("got %T, want a 2D numeric array", values)
	}
}

// depthBands flattens a (time, y, x) cube into one row-major grid per band.
// A plain 2D variable is treated as a single band.
func depthBands(values any) ([][]float64, error) {
	switch v := values.(type) {
	case [][][]float64:
		out := make([][]float64, len(v))
		for b, grid := range v {
			out[b] = flattenRows(grid)
		}
		return out, nil
	case [][][]float32:
		out := make([][]float64, len(v))
		for b, grid := range v {
			flat, err := gridValues(grid)
			if err != nil {
				return nil, err
			}
			out[b] = flat
		}
		return out, nil
	case [][]float64, [][]float32:
		flat, err := gridValues(v)
		if err != nil {
			return nil, err
		}
		return [][]float64{flat}, nil
	default:
		return nil, fmt.Errorf("got %T, want a 3D numeric array", values)
	}
}

// bandLabels renders the time coordinate as the band labels used for CSV
// column headers. Integer band indexes keep their plain decimal form so the
// retrofit pass can recognize them later.
func bandLabels(values any) ([]string, error) {
	switch v := values.(type) {
	case []string:
		return v, nil
	case []float64:
		out := make([]string, len(v))
		for i, x := range v {
			out[i] = strconv.FormatFloat(x, 'f', -1, 64)
		}
		return out, nil
	case []float32:
		out := make([]string, len(v))
		for i, x := range v {
			out[i] = strconv.FormatFloat(float64(x), 'f', -1, 32)
		}
		return out, nil
	case []int64:
		out := make([]string, len(v))
		for i, x := range v {
			out[i] = strconv.FormatInt(x, 10)
		}
		return out, nil
	case []int32:
		out := make([]string, len(v))
		for i, x := range v {
			out[i] = strconv.Itoa(int(x))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("got %T, want a 1D time coordinate", values)
	}
}

func flattenRows(grid [][]float64) []float64 {
	out := make([]float64, 0, len(grid)*rowLen(grid))
	for _, row := range grid {
		out = append(out, row...)
	}
	return out
}

func rowLen[T any](grid [][]T) int {
	if len(grid) == 0 {
		return 0
	}
	return len(grid[0])
}
