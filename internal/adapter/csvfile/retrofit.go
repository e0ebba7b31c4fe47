package csvfile

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riverbed-labs/flood-source-etl/internal/domain"
)

// coordinateColumns is the x, y, z prefix every exported file carries.
const coordinateColumns = 3

// Retrofit rewrites the header of an exported CSV in place, replacing
// integer band-index columns with timestamps counted from epoch. Data rows
// pass through byte for byte; only the header line is regenerated.
func Retrofit(path string, epoch time.Time) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &domain.MissingInputFileError{Path: path, Err: err}
	}

	headerLine, rest := splitHeader(data)
	fields, err := csv.NewReader(strings.NewReader(headerLine)).Read()
	if err != nil {
		return fmt.Errorf("parse header of %s: %w", path, err)
	}
	if len(fields) < coordinateColumns+1 {
		return &domain.MalformedRowError{File: path, Row: 0, Got: len(fields), Want: coordinateColumns + 1}
	}

	bands := make([]int, len(fields)-coordinateColumns)
	for i, label := range fields[coordinateColumns:] {
		band, err := strconv.Atoi(label)
		if err != nil {
			return fmt.Errorf("column %d of %s: band label %q is not an integer", coordinateColumns+i, path, label)
		}
		bands[i] = band
	}

	if err := validateRows(path, rest, len(fields)); err != nil {
		return err
	}

	header := append(append([]string{}, fields[:coordinateColumns]...), domain.TimestampsFromBands(bands, epoch)...)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("render header for %s: %w", path, err)
	}
	w.Flush()
	buf.Write(rest)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// splitHeader cuts the first line off, returning it without its terminator
// and the remaining bytes untouched.
func splitHeader(data []byte) (header string, rest []byte) {
	i := bytes.IndexByte(data, '\n')
	if i < 0 {
		return string(data), nil
	}
	line := data[:i]
	line = bytes.TrimSuffix(line, []byte("\r"))
	return string(line), data[i+1:]
}

// validateRows checks every data row carries the declared column count
// before anything is rewritten.
func validateRows(path string, rest []byte, want int) error {
	r := csv.NewReader(bytes.NewReader(rest))
	r.FieldsPerRecord = want
	for row := 1; ; row++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, csv.ErrFieldCount) {
			return &domain.MalformedRowError{File: path, Row: row, Got: len(record), Want: want}
		}
		if err != nil {
			return fmt.Errorf("row %d of %s: %w", row, path, err)
		}
	}
}
