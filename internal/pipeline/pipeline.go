package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/riverbed-labs/flood-source-etl/internal/domain"
	"github.com/riverbed-labs/flood-source-etl/internal/observability"
)

// PointExtractor reads the gauge points to sample.
type PointExtractor interface {
	ExtractPoints(ctx context.Context) ([]domain.Point, error)
}

// FieldExtractor loads the gridded depth field into memory.
type FieldExtractor interface {
	ExtractField(ctx context.Context) (*domain.TimeIndexedField, error)
}

// Transformer converts gauge points and a field into a water-source set.
type Transformer interface {
	Transform(ctx context.Context, points []domain.Point, field *domain.TimeIndexedField) (*domain.WaterSourceSet, error)
}

// Loader writes a water-source set to a destination. A pipeline fans out to
// every configured loader.
type Loader interface {
	Name() string
	Load(ctx context.Context, set *domain.WaterSourceSet) error
}

// RunStatus summarizes a completed conversion run for operational
// consumers.
type RunStatus struct {
	Records     int       `json:"records"`
	Sinks       []string  `json:"sinks"`
	CompletedAt time.Time `json:"completed_at"`
}

// Pipeline orchestrates one extract-transform-load pass over a point set and
// a depth field. Any stage failure aborts the run; there is no retry and no
// partial output.
type Pipeline struct {
	points      PointExtractor
	field       FieldExtractor
	transformer Transformer
	loaders     []Loader
	logger      *slog.Logger
	metrics     *observability.Metrics
	status      atomic.Pointer[RunStatus]
}

// New creates a Pipeline with the given stages and observability.
func New(points PointExtractor, field FieldExtractor, t Transformer, loaders []Loader, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		points:      points,
		field:       field,
		transformer: t,
		loaders:     loaders,
		logger:      logger,
		metrics:     metrics,
	}
}

// CheckReadiness returns nil once a run has completed all of its loads,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(ctx context.Context) error {
	_, err := p.RunStatus(ctx)
	return err
}

// RunStatus returns the summary of the completed run. It errors while the
// run is still in progress, which doubles as the not-ready signal for the
// operational endpoints.
func (p *Pipeline) RunStatus(_ context.Context) (RunStatus, error) {
	s := p.status.Load()
	if s == nil {
		return RunStatus{}, errors.New("pipeline has not completed a conversion run yet")
	}
	return *s, nil
}

// Run executes a single conversion pass.
func (p *Pipeline) Run(ctx context.Context) error {
	if len(p.loaders) == 0 {
		return errors.New("pipeline has no loaders configured")
	}

	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	points, err := p.points.ExtractPoints(ctx)
	if err != nil {
		return fmt.Errorf("extract points: %w", err)
	}
	p.metrics.PointsExtracted.Add(float64(len(points)))
	p.metrics.PointBatchSize.Observe(float64(len(points)))
	p.logger.Info("points extracted", "count", len(points))

	fieldStart := time.Now()
	field, err := p.field.ExtractField(ctx)
	if err != nil {
		return fmt.Errorf("extract field: %w", err)
	}
	p.metrics.FieldLoadDuration.Observe(time.Since(fieldStart).Seconds())
	p.logger.Info("field loaded",
		"bands", len(field.Bands),
		"grid_x", len(field.XS),
		"grid_y", len(field.YS),
		"has_elevation", field.Elevation != nil,
	)

	if err := ctx.Err(); err != nil {
		return err
	}

	sampleStart := time.Now()
	set, err := p.transformer.Transform(ctx, points, field)
	if err != nil {
		p.metrics.TransformErrors.Inc()
		return fmt.Errorf("transform: %w", err)
	}
	p.metrics.SampleDuration.Observe(time.Since(sampleStart).Seconds())
	p.metrics.RecordsSampled.Add(float64(len(set.Points)))

	for _, loader := range p.loaders {
		if err := ctx.Err(); err != nil {
			return err
		}
		loadStart := time.Now()
		if err := loader.Load(ctx, set); err != nil {
			return fmt.Errorf("load %s: %w", loader.Name(), err)
		}
		p.metrics.LoadDuration.WithLabelValues(loader.Name()).Observe(time.Since(loadStart).Seconds())
		p.logger.Info("set loaded", "sink", loader.Name(), "records", len(set.Points))
	}

	sinks := make([]string, len(p.loaders))
	for i, loader := range p.loaders {
		sinks[i] = loader.Name()
	}
	p.status.Store(&RunStatus{
		Records:     len(set.Points),
		Sinks:       sinks,
		CompletedAt: time.Now().UTC(),
	})
	return nil
}
