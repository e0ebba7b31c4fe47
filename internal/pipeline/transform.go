package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/riverbed-labs/flood-source-etl/internal/config"
	"github.com/riverbed-labs/flood-source-etl/internal/domain"
)

// OriginResolver produces the local-coordinate origin for normalization.
type OriginResolver interface {
	ResolveOrigin(ctx context.Context) (domain.Point, error)
}

// FloodTransformer implements Transformer: nearest-neighbour depth sampling,
// band selection, and optional normalization into local coordinates.
type FloodTransformer struct {
	origin OriginResolver // nil skips normalization
	sample domain.SampleOptions
	mode   config.OutputMode
	drop   bool
	logger *slog.Logger
}

// NewTransformer creates a FloodTransformer. Pass a nil origin resolver to
// keep points in the source CRS.
func NewTransformer(origin OriginResolver, cfg *config.Config, logger *slog.Logger) *FloodTransformer {
	return &FloodTransformer{
		origin: origin,
		sample: domain.SampleOptions{
			SnapToGrid:       cfg.SnapToGrid,
			IncludeElevation: cfg.IncludeElevation,
			Workers:          cfg.SampleWorkers,
		},
		mode:   cfg.OutputMode,
		drop:   cfg.DropInitialBand,
		logger: logger,
	}
}

func (t *FloodTransformer) Transform(ctx context.Context, points []domain.Point, field *domain.TimeIndexedField) (*domain.WaterSourceSet, error) {
	if err := field.Validate(); err != nil {
		return nil, err
	}

	sampled := domain.Sample(points, field, t.sample)
	labels := field.Bands

	switch {
	case !t.mode.All:
		// Single-slice export; the initial-band drop does not apply.
		if t.mode.Slice >= len(labels) {
			return nil, fmt.Errorf("slice band %d out of range: field has %d bands", t.mode.Slice, len(labels))
		}
		labels = labels[t.mode.Slice : t.mode.Slice+1]
		for i := range sampled {
			sampled[i].Depths = sampled[i].Depths[t.mode.Slice : t.mode.Slice+1]
		}
	case t.drop && len(labels) > 1:
		// The first band is the model's quiescent initial state; it carries
		// no flood signal and is dropped from the export.
		t.logger.Debug("dropping initial band", "label", labels[0])
		labels = labels[1:]
		for i := range sampled {
			sampled[i].Depths = sampled[i].Depths[1:]
		}
	}

	if t.origin == nil {
		return domain.NewWaterSourceSet(sampled, labels, field.CRS), nil
	}

	origin, err := t.origin.ResolveOrigin(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve origin: %w", err)
	}
	normalized, err := domain.Normalize(sampled, origin)
	if err != nil {
		return nil, err
	}
	flat := make([]domain.SampledPoint, len(normalized))
	for i := range normalized {
		flat[i] = normalized[i].SampledPoint
	}
	return domain.NewWaterSourceSet(flat, labels, origin.CRS), nil
}
