// Command floodsource samples flood-model depth fields at gauge points and
// exports the result as water-source CSV, optionally publishing scene
// records to Kafka.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/riverbed-labs/flood-source-etl/internal/adapter/csvfile"
	"github.com/riverbed-labs/flood-source-etl/internal/adapter/geojson"
	httpadapter "github.com/riverbed-labs/flood-source-etl/internal/adapter/http"
	kafkaadapter "github.com/riverbed-labs/flood-source-etl/internal/adapter/kafka"
	"github.com/riverbed-labs/flood-source-etl/internal/adapter/netcdf"
	"github.com/riverbed-labs/flood-source-etl/internal/config"
	"github.com/riverbed-labs/flood-source-etl/internal/observability"
	"github.com/riverbed-labs/flood-source-etl/internal/pipeline"
)

func main() {
	pointsPath := flag.String("points", "", "GeoJSON gauge-points file (required)")
	fieldPath := flag.String("field", "", "NetCDF flood-model output (required)")
	boundsPath := flag.String("bounds", "", "GeoJSON level-bounds file whose centroid becomes the local origin")
	outPath := flag.String("out", "water_sources.csv", "output CSV path")
	snap := flag.Bool("snap", false, "snap exported coordinates to the matched grid cell centers (overrides SNAP_TO_GRID)")
	noNormalize := flag.Bool("no-normalize", false, "keep source CRS coordinates instead of normalizing to the bounds origin")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)

	if *pointsPath == "" || *fieldPath == "" {
		logger.Error("both -points and -field are required")
		flag.Usage()
		os.Exit(2)
	}
	if !*noNormalize && *boundsPath == "" {
		logger.Error("-bounds is required unless -no-normalize is set")
		os.Exit(2)
	}

	opts := options{
		pointsPath:  *pointsPath,
		fieldPath:   *fieldPath,
		boundsPath:  *boundsPath,
		outPath:     *outPath,
		noNormalize: *noNormalize,
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "snap" {
			opts.snap = snap
		}
	})
	applyOverrides(cfg, opts)

	if err := run(cfg, opts, logger); err != nil {
		logger.Error("pipeline error", "error", err)
		os.Exit(1)
	}
}

type options struct {
	pointsPath  string
	fieldPath   string
	boundsPath  string
	outPath     string
	noNormalize bool
	snap        *bool // nil when the flag was not passed
}

// applyOverrides lets command-line flags win over environment configuration
// when both are present.
func applyOverrides(cfg *config.Config, opts options) {
	if opts.snap != nil {
		cfg.SnapToGrid = *opts.snap
	}
}

func run(cfg *config.Config, opts options, logger *slog.Logger) error {
	metrics := observability.NewMetrics()

	points := geojson.NewPointReader(opts.pointsPath, cfg.CRS, logger)
	field := netcdf.NewFieldReader(opts.fieldPath, netcdf.VarNames{
		X:         cfg.FieldXVar,
		Y:         cfg.FieldYVar,
		Time:      cfg.FieldTimeVar,
		Depth:     cfg.FieldDepthVar,
		Elevation: cfg.FieldElevationVar,
	}, cfg.CRS, logger)

	var origin pipeline.OriginResolver
	if !opts.noNormalize {
		origin = geojson.NewOriginReader(opts.boundsPath, cfg.CRS, logger)
	}

	loaders := []pipeline.Loader{csvfile.NewExporter(opts.outPath, metrics, logger)}
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, metrics, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		loaders = append(loaders, writer)
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaTopic)
	}

	transformer := pipeline.NewTransformer(origin, cfg, logger)
	p := pipeline.New(points, field, transformer, loaders, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The observability server is opt-in; batch runs under a scheduler set
	// HTTP_ADDR so the scheduler can scrape metrics and gate on readiness.
	if cfg.HTTPAddr != "" {
		srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http server shutdown error", "error", err)
			}
		}()
	}

	if err := p.Run(ctx); err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}
	return nil
}
