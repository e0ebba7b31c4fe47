// Package domain models flood-model water-source extraction.
//
// # Data Source
//
// Depth fields come from hydrodynamic flood-model runs exported as gridded
// NetCDF: one scalar depth variable over (time, y, x) plus a static terrain
// elevation variable over (y, x). The time axis is a sequence of discrete
// bands; model runs without real timestamps number the bands from 1, with
// band N meaning N-1 hours after a fixed reference epoch (2000-01-01 by
// convention). Gauge points arrive as GeoJSON point features in a projected
// CRS with metric axes (NZTM2000 in practice).
//
// # Sampling Conventions
//
// Depth is read at the grid cell whose center is Euclidean-nearest to the
// query point, with no interpolation between cells. Queries outside the
// grid's coverage clamp to the nearest edge cell; that is the accepted
// behavior of nearest-neighbour lookup, not an error. With snap-to-grid
// enabled the sampled point's coordinates are replaced by the matched cell
// center. Terrain elevation, when requested, is read once from the elevation
// band at the same matched cell.
//
// # Scene Coordinates
//
// The authoring target uses a local coordinate system: metric units, origin
// at the centroid of the level bounds, Y axis pointing the opposite way.
// Normalization translates by the origin and flips Y; X and Z are never
// flipped. Both sides of the translation must share a CRS with linear units.
// Unit scaling into scene units (metres to centimetres, plus hand-calibrated
// terrain Z scale and intercept) is carried by an explicit [Calibration] so
// calibration values stay visible at call sites.
//
// # ID Generation
//
// Water-source IDs are deterministic SHA-256 hashes of the record's location
// and series shape, so re-running the pipeline over the same inputs produces
// the same IDs and downstream consumers can replay or upsert safely. See
// [NewWaterSource].
package domain
