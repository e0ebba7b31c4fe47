// Command retrofit rewrites the header of an exported water-source CSV,
// turning integer band-index columns into timestamps. Data rows pass through
// untouched, so a retrofitted file stays byte-compatible with the original
// export below the header line.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/riverbed-labs/flood-source-etl/internal/adapter/csvfile"
	"github.com/riverbed-labs/flood-source-etl/internal/config"
	"github.com/riverbed-labs/flood-source-etl/internal/observability"
)

func main() {
	csvPath := flag.String("csv", "", "exported water-source CSV to rewrite in place (required)")
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

	if err := csvfile.Retrofit(*csvPath, cfg.ReferenceEpoch); err != nil {
		logger.Error("retrofit failed", "path", *csvPath, "error", err)
		os.Exit(1)
	}
	logger.Info("header retrofitted", "path", *csvPath, "epoch", cfg.ReferenceEpoch)
}
