// Command spawn replays an exported water-source CSV into scene records:
// either a spawn-script directory for an editor-side consumer, or the
// configured Kafka topic.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/riverbed-labs/flood-source-etl/internal/adapter/csvfile"
	kafkaadapter "github.com/riverbed-labs/flood-source-etl/internal/adapter/kafka"
	"github.com/riverbed-labs/flood-source-etl/internal/adapter/scenescript"
	"github.com/riverbed-labs/flood-source-etl/internal/config"
	"github.com/riverbed-labs/flood-source-etl/internal/domain"
	"github.com/riverbed-labs/flood-source-etl/internal/observability"
)

func main() {
	csvPath := flag.String("csv", "", "exported water-source CSV (required)")
	outDir := flag.String("out-dir", "scene_out", "spawn-script output directory (script mode)")
	mode := flag.String("mode", "script", "record sink: script or kafka")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)

	if *csvPath == "" {
		logger.Error("-csv is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *csvPath, *outDir, *mode, logger); err != nil {
		logger.Error("spawn failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, csvPath, outDir, mode string, logger *slog.Logger) error {
	sources, err := csvfile.ReadSources(csvPath, cfg.Calibration, cfg.ReferenceEpoch)
	if err != nil {
		return err
	}
	logger.Info("water sources read", "path", csvPath, "count", len(sources))

	switch mode {
	case "script":
		return writeScript(ctx, outDir, sources, logger)
	case "kafka":
		if !cfg.KafkaEnabled {
			return fmt.Errorf("kafka mode needs KAFKA_BROKERS configured")
		}
		writer := kafkaadapter.NewWriter(cfg, observability.NewMetrics(), logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		return writer.PublishSources(ctx, sources, cfg.CRS)
	default:
		return fmt.Errorf("unknown mode %q, want script or kafka", mode)
	}
}

func writeScript(ctx context.Context, outDir string, sources []domain.WaterSource, logger *slog.Logger) error {
	author, err := scenescript.NewWriter(outDir, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := author.Close(); err != nil {
			logger.Error("script writer close error", "error", err)
		}
	}()

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := author.CreateSceneObject(ctx, src); err != nil {
			return err
		}
	}
	logger.Info("spawn script written", "dir", outDir, "sources", len(sources))
	return nil
}
