package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Vector is a 3D position in scene units.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Calibration converts normalized metric coordinates into scene units. The
// values are hand-calibrated per dataset and passed explicitly so they stay
// visible at call sites instead of hiding in module constants.
//
// Horizontal axes and depths scale by UnitScale. The vertical axis is
// different: the scene terrain is already in its own landscape units, so Z
// gets only the hand-calibrated affine adjustment and no unit scaling.
type Calibration struct {
	UnitScale  float64 // metres to scene units; 100 for a centimetre-based scene
	ZScale     float64 // multiplicative terrain Z adjustment
	ZIntercept float64 // additive terrain Z adjustment, in landscape units
}

// DefaultCalibration matches a centimetre-based scene with unadjusted
// terrain.
func DefaultCalibration() Calibration {
	return Calibration{UnitScale: 100, ZScale: 1, ZIntercept: 0}
}

// Vector applies the calibration to a normalized point.
func (c Calibration) Vector(p Point) Vector {
	return Vector{
		X: p.X * c.UnitScale,
		Y: p.Y * c.UnitScale,
		Z: p.Z*c.ZScale + c.ZIntercept,
	}
}

// Depth converts a sampled depth from metres into scene units.
func (c Calibration) Depth(d float64) float64 {
	return d * c.UnitScale
}

// DepthTimeEntry is one step of a water source's depth curve.
type DepthTimeEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Depth     float64   `json:"depth"`
}

// WaterSource is the record handed to scene-authoring consumers: a location
// in scene units plus the depth series over time.
type WaterSource struct {
	ID          string           `json:"id"`
	Location    Vector           `json:"location"`
	Series      []DepthTimeEntry `json:"series"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// Volume is the initial water volume for the spawned source, taken from the
// first entry of the depth series.
func (w WaterSource) Volume() float64 {
	if len(w.Series) == 0 {
		return 0
	}
	return w.Series[0].Depth
}

// NewWaterSource builds a record with a deterministic ID derived from the
// location and series shape. Re-running the pipeline over the same inputs
// yields the same IDs, so downstream consumers can replace rather than
// duplicate scene objects.
func NewWaterSource(location Vector, series []DepthTimeEntry) WaterSource {
	return WaterSource{
		ID:          generateID(location, series),
		Location:    location,
		Series:      series,
		GeneratedAt: clock.Now().UTC(),
	}
}

func generateID(location Vector, series []DepthTimeEntry) string {
	input := fmt.Sprintf("%.4f|%.4f|%.4f|%d", location.X, location.Y, location.Z, len(series))
	if len(series) > 0 {
		input += "|" + series[0].Timestamp.UTC().Format(time.RFC3339)
	}
	hash := sha256.Sum256([]byte(input))
	return "ws-" + hex.EncodeToString(hash[:8])
}

// SceneAuthor creates objects in a scene-authoring host. The host API itself
// lives outside this module; implementations write spawn scripts or publish
// records for an editor-side consumer. The narrow surface keeps the sampling
// and export core testable with a fake.
type SceneAuthor interface {
	// CreateSceneObject materializes one water source and returns an opaque
	// handle for it.
	CreateSceneObject(ctx context.Context, src WaterSource) (string, error)
}
