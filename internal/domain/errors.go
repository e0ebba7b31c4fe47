package domain

import "fmt"

// CoordinateSystemMismatchError reports points and an origin that do not
// share a coordinate reference system with linear units. Normalization never
// proceeds silently on mismatched systems.
type CoordinateSystemMismatchError struct {
	Have CRS
	Want CRS
}

func (e *CoordinateSystemMismatchError) Error() string {
	if e.Have.Code == e.Want.Code {
		return fmt.Sprintf("coordinate system mismatch: %s uses non-linear unit %q", e.Have.Code, e.Have.Unit)
	}
	return fmt.Sprintf("coordinate system mismatch: points use %s, origin uses %s", e.Have.Code, e.Want.Code)
}

// ColumnCountMismatchError reports a label set whose length disagrees with
// the per-point series length during export.
type ColumnCountMismatchError struct {
	Labels int
	Series int
	Point  int // index of the offending point
}

func (e *ColumnCountMismatchError) Error() string {
	return fmt.Sprintf("column count mismatch: %d labels for %d series values at point %d", e.Labels, e.Series, e.Point)
}

// MissingInputFileError reports a required input file that could not be read.
type MissingInputFileError struct {
	Path string
	Err  error
}

func (e *MissingInputFileError) Error() string {
	return fmt.Sprintf("missing input file %s: %v", e.Path, e.Err)
}

func (e *MissingInputFileError) Unwrap() error { return e.Err }

// MalformedRowError reports a CSV row with fewer fields than its header
// implies. Row 0 is the header itself.
type MalformedRowError struct {
	File string
	Row  int
	Got  int
	Want int
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("malformed row %d in %s: %d fields, expected %d", e.Row, e.File, e.Got, e.Want)
}
