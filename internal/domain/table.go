package domain

import (
	"fmt"
	"time"
)

// Table is a flat export table: a header row and one numeric row per point,
// coordinates first, series values after in band order. Rows are plain
// float64s; serialization formatting belongs to the writer.
type Table struct {
	Header []string
	Rows   [][]float64
}

// BuildTable flattens sampled (or normalized) points into export rows. The
// column order is fixed: x, y, z when present, then one column per label in
// the supplied order. Every point's series length must equal the label
// count; a disagreement returns a *ColumnCountMismatchError. All points
// must agree on whether they carry a z coordinate, since a single z column
// covers the whole table.
func BuildTable(points []SampledPoint, labels []string) (*Table, error) {
	hasZ := len(points) > 0 && points[0].HasZ
	for i, p := range points {
		if p.HasZ != hasZ {
			return nil, fmt.Errorf("point %d mixes dimensionality: has_z=%t, table has_z=%t", i, p.HasZ, hasZ)
		}
	}

	header := make([]string, 0, 3+len(labels))
	header = append(header, "x", "y")
	if hasZ {
		header = append(header, "z")
	}
	header = append(header, labels...)

	rows := make([][]float64, len(points))
	for i, p := range points {
		if len(p.Depths) != len(labels) {
			return nil, &ColumnCountMismatchError{Labels: len(labels), Series: len(p.Depths), Point: i}
		}
		row := make([]float64, 0, len(header))
		row = append(row, p.X, p.Y)
		if hasZ {
			row = append(row, p.Z)
		}
		row = append(row, p.Depths...)
		rows[i] = row
	}

	return &Table{Header: header, Rows: rows}, nil
}

// WaterSourceSet is the transform output handed to loaders: the normalized
// (or raw sampled) points, their column labels, and the generation stamp.
type WaterSourceSet struct {
	Points      []SampledPoint
	Labels      []string
	CRS         CRS
	GeneratedAt time.Time
}

// NewWaterSourceSet stamps a transform result with the current clock.
func NewWaterSourceSet(points []SampledPoint, labels []string, crs CRS) *WaterSourceSet {
	return &WaterSourceSet{
		Points:      points,
		Labels:      labels,
		CRS:         crs,
		GeneratedAt: clock.Now().UTC(),
	}
}

// Table flattens the set for tabular serialization.
func (s *WaterSourceSet) Table() (*Table, error) {
	return BuildTable(s.Points, s.Labels)
}

// Sources converts the set into scene records: one WaterSource per point,
// location and depths in scene units via cal, series timestamps parsed from
// the column labels (formatted timestamps or band indices counted from
// epoch).
func (s *WaterSourceSet) Sources(cal Calibration, epoch time.Time) ([]WaterSource, error) {
	times := make([]time.Time, len(s.Labels))
	for i, label := range s.Labels {
		t, err := ParseLabelTime(label, epoch)
		if err != nil {
			return nil, err
		}
		times[i] = t
	}

	out := make([]WaterSource, len(s.Points))
	for i, p := range s.Points {
		if len(p.Depths) != len(times) {
			return nil, &ColumnCountMismatchError{Labels: len(times), Series: len(p.Depths), Point: i}
		}
		series := make([]DepthTimeEntry, len(times))
		for j := range times {
			series[j] = DepthTimeEntry{Timestamp: times[j], Depth: cal.Depth(p.Depths[j])}
		}
		out[i] = NewWaterSource(cal.Vector(p.Point), series)
	}
	return out, nil
}
