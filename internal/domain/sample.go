package domain

import (
	"math"
	"sort"
	"sync"
)

// SampleOptions control a sampling pass.
type SampleOptions struct {
	// SnapToGrid replaces each sampled point's (x, y) with the matched
	// cell-center coordinates instead of the original query coordinates.
	SnapToGrid bool

	// IncludeElevation reads the field's elevation layer at the matched cell
	// into the point's Z. Ignored when the field has no elevation layer.
	IncludeElevation bool

	// Workers bounds the sampling worker pool. Values below 2 sample
	// sequentially; correctness does not depend on the worker count.
	Workers int
}

// Sample looks up the field's depth at the grid cell nearest each point, for
// every band in the field's declared order. Nearest means Euclidean-nearest
// cell center in the field's CRS with no interpolation; points outside the
// grid's coverage clamp to the nearest edge cell. Pure function of its
// inputs: the field is only read and the input points are not modified.
func Sample(points []Point, field *TimeIndexedField, opts SampleOptions) []SampledPoint {
	out := make([]SampledPoint, len(points))
	if opts.Workers > 1 && len(points) > 1 {
		sampleParallel(points, field, opts, out)
		return out
	}
	for i, p := range points {
		out[i] = sampleOne(p, field, opts)
	}
	return out
}

// sampleParallel fans points out over a bounded worker pool. Workers write
// to disjoint indices of out, so no locking is needed; the field is shared
// read-only.
func sampleParallel(points []Point, field *TimeIndexedField, opts SampleOptions, out []SampledPoint) {
	workers := opts.Workers
	if workers > len(points) {
		workers = len(points)
	}

	var wg sync.WaitGroup
	indices := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				out[i] = sampleOne(points[i], field, opts)
			}
		}()
	}
	for i := range points {
		indices <- i
	}
	close(indices)
	wg.Wait()
}

func sampleOne(p Point, field *TimeIndexedField, opts SampleOptions) SampledPoint {
	ix := nearestIndex(field.XS, p.X)
	iy := nearestIndex(field.YS, p.Y)

	depths := make([]float64, len(field.Depths))
	for b := range field.Depths {
		depths[b] = field.DepthAt(b, ix, iy)
	}

	sp := SampledPoint{Point: p, Depths: depths}
	if opts.SnapToGrid {
		sp.X = field.XS[ix]
		sp.Y = field.YS[iy]
	}
	if opts.IncludeElevation {
		if z, ok := field.ElevationAt(ix, iy); ok {
			sp.Z = z
			sp.HasZ = true
		}
	}
	return sp
}

// nearestIndex returns the index of the axis value closest to v. Monotonic
// axes (either direction) use binary search; anything else falls back to a
// linear scan. Out-of-range values clamp to the first or last index.
func nearestIndex(axis []float64, v float64) int {
	n := len(axis)
	if n == 1 {
		return 0
	}

	switch {
	case sort.Float64sAreSorted(axis):
		i := sort.SearchFloat64s(axis, v)
		if i == 0 {
			return 0
		}
		if i == n {
			return n - 1
		}
		if v-axis[i-1] <= axis[i]-v {
			return i - 1
		}
		return i
	case descending(axis):
		i := sort.Search(n, func(i int) bool { return axis[i] <= v })
		if i == 0 {
			return 0
		}
		if i == n {
			return n - 1
		}
		if axis[i-1]-v <= v-axis[i] {
			return i - 1
		}
		return i
	}

	best, bestDist := 0, math.Abs(axis[0]-v)
	for i := 1; i < n; i++ {
		if d := math.Abs(axis[i] - v); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func descending(axis []float64) bool {
	for i := 1; i < len(axis); i++ {
		if axis[i] > axis[i-1] {
			return false
		}
	}
	return true
}
