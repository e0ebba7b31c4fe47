package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/riverbed-labs/flood-source-etl/internal/config"
)

func TestApplyOverrides(t *testing.T) {
	boolPtr := func(v bool) *bool { return &v }

	t.Run("snap flag wins over env", func(t *testing.T) {
		cfg := &config.Config{SnapToGrid: false}
		applyOverrides(cfg, options{snap: boolPtr(true)})
		assert.True(t, cfg.SnapToGrid)
	})

	t.Run("explicit -snap=false disables env snapping", func(t *testing.T) {
		cfg := &config.Config{SnapToGrid: true}
		applyOverrides(cfg, options{snap: boolPtr(false)})
		assert.False(t, cfg.SnapToGrid)
	})

	t.Run("unset flag keeps env value", func(t *testing.T) {
		cfg := &config.Config{SnapToGrid: true}
		applyOverrides(cfg, options{})
		assert.True(t, cfg.SnapToGrid)
	})
}
