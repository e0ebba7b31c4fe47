// Package csvfile serializes water-source sets to CSV and reads them back
// for the spawn consumer.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/riverbed-labs/flood-source-etl/internal/domain"
	"github.com/riverbed-labs/flood-source-etl/internal/observability"
)

// Exporter writes a water-source set to a CSV file.
// It implements pipeline.Loader.
type Exporter struct {
	path    string
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewExporter creates a loader writing to path.
func NewExporter(path string, metrics *observability.Metrics, logger *slog.Logger) *Exporter {
	return &Exporter{path: path, metrics: metrics, logger: logger}
}

// Name identifies the sink in logs and metrics labels.
func (e *Exporter) Name() string { return "csv" }

// Load flattens the set and writes it atomically.
func (e *Exporter) Load(_ context.Context, set *domain.WaterSourceSet) error {
	table, err := set.Table()
	if err != nil {
		return err
	}
	if err := WriteTable(e.path, table); err != nil {
		return err
	}

	e.metrics.RowsExported.Add(float64(len(table.Rows)))
	e.logger.Info("water sources exported",
		"path", e.path,
		"rows", len(table.Rows),
		"columns", len(table.Header))
	return nil
}

// WriteTable serializes a table to path. The file is written to a sibling
// temp file and renamed into place, so readers never observe a partial
// export.
func WriteTable(path string, t *domain.Table) error {
	f, err := os.Create(path + ".tmp")
	if err != nil {
		return fmt.Errorf("create %s.tmp: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(t.Header); err != nil {
		f.Close()
		return fmt.Errorf("write header to %s: %w", path, err)
	}
	record := make([]string, len(t.Header))
	for _, row := range t.Rows {
		for i, v := range row {
			record[i] = formatValue(v)
		}
		if err := w.Write(record); err != nil {
			f.Close()
			return fmt.Errorf("write row to %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s.tmp: %w", path, err)
	}

	if err := os.Rename(path+".tmp", path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// formatValue renders a float as plain decimal text at full precision, never
// scientific notation. The shortest round-trip form keeps whole numbers
// clean while preserving every stored bit.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
