package sbr

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// BundleStats aggregates leaf-depth and draw-outcome statistics over an
// annotated bundle, for reports and run records.
type BundleStats struct {
	TrackCount      int `json:"track_count"`
	DrawnTrackCount int `json:"drawn_track_count"`
	LeafCount       int `json:"leaf_count"`

	MeanLeafDepth   float64 `json:"mean_leaf_depth"`
	StdDevLeafDepth float64 `json:"stddev_leaf_depth"`
	MedianLeafDepth float64 `json:"median_leaf_depth"`

	// DepthHistogram counts leaves by their maximum reachable depth
	// (escaping rays included as one extra step).
	DepthHistogram map[int]int `json:"depth_histogram"`
}

// ComputeStats summarizes an annotated bundle. A bundle with zero leaves
// is a valid state and yields zeroed statistics, not an error.
func ComputeStats(b *RayBundle) (*BundleStats, error) {
	if !b.Filtered() {
		return nil, ErrNotFiltered
	}

	stats := &BundleStats{
		TrackCount:     len(b.Tracks),
		DepthHistogram: make(map[int]int),
	}

	var depths []float64
	for ti := range b.Tracks {
		t := &b.Tracks[ti]
		if t.Root != InvalidNode && b.Node(t.Root).DrawBranch {
			stats.DrawnTrackCount++
		}
		for _, leaf := range t.Leaves {
			d := b.Node(leaf).MaxDepth
			stats.DepthHistogram[d]++
			depths = append(depths, float64(d))
		}
	}
	stats.LeafCount = len(depths)
	if len(depths) == 0 {
		return stats, nil
	}

	sort.Float64s(depths)
	stats.MeanLeafDepth = stat.Mean(depths, nil)
	stats.MedianLeafDepth = stat.Quantile(0.5, stat.Empirical, depths, nil)
	if len(depths) > 1 {
		stats.StdDevLeafDepth = stat.StdDev(depths, nil)
	}
	return stats, nil
}
