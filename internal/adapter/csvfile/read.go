package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/riverbed-labs/flood-source-etl/internal/domain"
)

// ReadSources parses an exported CSV back into scene records. The header's
// series labels may be timestamps or band indices; either is resolved
// against epoch. Locations and depth series are converted to scene units
// via cal.
func ReadSources(path string, cal domain.Calibration, epoch time.Time) ([]domain.WaterSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.MissingInputFileError{Path: path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, &domain.MalformedRowError{File: path, Row: 0, Got: 0, Want: coordinateColumns}
	}
	if err != nil {
		return nil, fmt.Errorf("parse header of %s: %w", path, err)
	}

	hasZ := len(header) > 2 && header[2] == "z"
	seriesStart := 2
	if hasZ {
		seriesStart = 3
	}
	if len(header) <= seriesStart {
		return nil, &domain.MalformedRowError{File: path, Row: 0, Got: len(header), Want: seriesStart + 1}
	}

	times := make([]time.Time, len(header)-seriesStart)
	for i, label := range header[seriesStart:] {
		t, err := domain.ParseLabelTime(label, epoch)
		if err != nil {
			return nil, fmt.Errorf("column %d of %s: %w", seriesStart+i, path, err)
		}
		times[i] = t
	}

	var sources []domain.WaterSource
	for row := 1; ; row++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, csv.ErrFieldCount) {
			return nil, &domain.MalformedRowError{File: path, Row: row, Got: len(record), Want: len(header)}
		}
		if err != nil {
			return nil, fmt.Errorf("row %d of %s: %w", row, path, err)
		}

		values, err := parseFloats(record)
		if err != nil {
			return nil, fmt.Errorf("row %d of %s: %w", row, path, err)
		}

		p := domain.Point{X: values[0], Y: values[1]}
		if hasZ {
			p.Z = values[2]
			p.HasZ = true
		}
		series := make([]domain.DepthTimeEntry, len(times))
		for j := range times {
			series[j] = domain.DepthTimeEntry{Timestamp: times[j], Depth: cal.Depth(values[seriesStart+j])}
		}
		sources = append(sources, domain.NewWaterSource(cal.Vector(p), series))
	}
	return sources, nil
}

func parseFloats(record []string) ([]float64, error) {
	out := make([]float64, len(record))
	for i, s := range record {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
