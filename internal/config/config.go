package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riverbed-labs/flood-source-etl/internal/domain"
)

// OutputMode selects which bands are exported: every band, or one
// hand-picked slice.
type OutputMode struct {
	All   bool
	Slice int // 0-based band index, meaningful when All is false
}

// Config holds all service settings, populated from environment variables.
// Input and output paths are command-line flags, not configuration.
type Config struct {
	LogLevel        string
	LogFormat       string
	HTTPAddr        string // empty disables the observability server
	ShutdownTimeout time.Duration

	CRS              domain.CRS
	SnapToGrid       bool
	IncludeElevation bool
	DropInitialBand  bool
	OutputMode       OutputMode
	SampleWorkers    int
	ReferenceEpoch   time.Time
	Calibration      domain.Calibration

	// Variable names inside the gridded field source.
	FieldXVar         string
	FieldYVar         string
	FieldTimeVar      string
	FieldDepthVar     string
	FieldElevationVar string

	// Optional Kafka sink for downstream scene-spawner consumers.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	crs, err := parseCRS()
	if err != nil {
		return nil, err
	}

	mode, err := parseOutputMode(envOrDefault("OUTPUT_MODE", "all"))
	if err != nil {
		return nil, err
	}

	epoch := domain.DefaultReferenceEpoch
	if s := os.Getenv("REFERENCE_EPOCH"); s != "" {
		epoch, err = time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("invalid REFERENCE_EPOCH: %w", err)
		}
	}

	cal, err := parseCalibration()
	if err != nil {
		return nil, err
	}

	workers, err := parsePositiveInt("SAMPLE_WORKERS", 1)
	if err != nil {
		return nil, err
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		ShutdownTimeout: shutdownTimeout,

		CRS:              crs,
		SnapToGrid:       envBool("SNAP_TO_GRID", false),
		IncludeElevation: envBool("INCLUDE_ELEVATION", true),
		DropInitialBand:  envBool("DROP_INITIAL_BAND", true),
		OutputMode:       mode,
		SampleWorkers:    workers,
		ReferenceEpoch:   epoch,
		Calibration:      cal,

		FieldXVar:         envOrDefault("FIELD_X_VAR", "xx_P0"),
		FieldYVar:         envOrDefault("FIELD_Y_VAR", "yy_P0"),
		FieldTimeVar:      envOrDefault("FIELD_TIME_VAR", "time"),
		FieldDepthVar:     envOrDefault("FIELD_DEPTH_VAR", "h_P0"),
		FieldElevationVar: envOrDefault("FIELD_ELEVATION_VAR", "zb_P0"),

		KafkaBrokers: brokers,
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "water-source-records"),
		KafkaEnabled: kafkaEnabled,
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when the Kafka sink is enabled")
	}

	return cfg, nil
}

// parseCRS resolves CRS_CODE against the known-systems table, with CRS_UNIT
// as an override for codes the table does not carry.
func parseCRS() (domain.CRS, error) {
	code := envOrDefault("CRS_CODE", "EPSG:2193")
	crs, known := domain.LookupCRS(code)
	if unit := os.Getenv("CRS_UNIT"); unit != "" {
		crs.Unit = unit
		return crs, nil
	}
	if !known {
		return domain.CRS{}, fmt.Errorf("unknown CRS_CODE %q and no CRS_UNIT set", code)
	}
	return crs, nil
}

func parseOutputMode(s string) (OutputMode, error) {
	if s == "all" {
		return OutputMode{All: true}, nil
	}
	idx, ok := strings.CutPrefix(s, "slice:")
	if !ok {
		return OutputMode{}, fmt.Errorf("invalid OUTPUT_MODE %q: want \"all\" or \"slice:<n>\"", s)
	}
	n, err := strconv.Atoi(idx)
	if err != nil || n < 0 {
		return OutputMode{}, fmt.Errorf("invalid OUTPUT_MODE slice index %q", idx)
	}
	return OutputMode{Slice: n}, nil
}

func parseCalibration() (domain.Calibration, error) {
	cal := domain.DefaultCalibration()
	var err error
	if cal.UnitScale, err = envFloat("UNIT_SCALE", cal.UnitScale); err != nil {
		return domain.Calibration{}, err
	}
	if cal.ZScale, err = envFloat("Z_SCALE", cal.ZScale); err != nil {
		return domain.Calibration{}, err
	}
	if cal.ZIntercept, err = envFloat("Z_INTERCEPT", cal.ZIntercept); err != nil {
		return domain.Calibration{}, err
	}
	if cal.UnitScale <= 0 {
		return domain.Calibration{}, errors.New("UNIT_SCALE must be positive")
	}
	return cal, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	switch os.Getenv(key) {
	case "true":
		return true
	case "false":
		return false
	}
	return def
}

func envFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func parseBrokers(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
