package domain

// Band-index timestamp derivation. Flood-model outputs without a real time
// axis number their bands from 1; band N means N-1 hours after a fixed
// reference epoch.

import (
	"fmt"
	"strconv"
	"time"
)

// TimestampLayout is the column-label timestamp format, microsecond
// precision to match the tables the flood model tooling produces.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// DefaultReferenceEpoch is the calendar epoch band indices count from when
// no other epoch is configured.
var DefaultReferenceEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// BandTime converts a 1-based band index into a timestamp: epoch plus
// (band-1) hours.
func BandTime(band int, epoch time.Time) time.Time {
	return epoch.Add(time.Duration(band-1) * time.Hour)
}

// TimestampsFromBands derives one formatted timestamp per band index, in
// input order. Pure function; a zero epoch means DefaultReferenceEpoch.
func TimestampsFromBands(bands []int, epoch time.Time) []string {
	if epoch.IsZero() {
		epoch = DefaultReferenceEpoch
	}
	out := make([]string, len(bands))
	for i, b := range bands {
		out[i] = BandTime(b, epoch).Format(TimestampLayout)
	}
	return out
}

// ParseLabelTime interprets a series column label as a point in time. Labels
// are either formatted timestamps or bare 1-based band indices counted from
// epoch; anything else is an error.
func ParseLabelTime(label string, epoch time.Time) (time.Time, error) {
	if epoch.IsZero() {
		epoch = DefaultReferenceEpoch
	}
	layouts := []string{
		TimestampLayout,
		"2006-01-02T15:04:05.000000000", // numpy datetime64 renders nanoseconds
		"2006-01-02T15:04:05",
		time.RFC3339,
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, label, time.UTC); err == nil {
			return t, nil
		}
	}
	if band, err := strconv.Atoi(label); err == nil {
		return BandTime(band, epoch), nil
	}
	return time.Time{}, fmt.Errorf("column label %q is neither a timestamp nor a band index", label)
}
