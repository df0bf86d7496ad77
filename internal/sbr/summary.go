package sbr

// TrackSummary is the per-track rollup handed to reports, stores, and
// renderer-side listings.
type TrackSummary struct {
	TrackIndex           int       `json:"track_index"`
	TrackType            TrackType `json:"track_type"`
	LeafCount            int       `json:"leaf_count"`
	MaxDepth             int       `json:"max_depth"`
	MaxReflectionDepth   int       `json:"max_reflection_depth"`
	MaxTransmissionDepth int       `json:"max_transmission_depth"`
	Drawn                bool      `json:"drawn"`
}

// Summarize builds one summary per track of an annotated bundle.
func Summarize(b *RayBundle) ([]TrackSummary, error) {
	if !b.Filtered() {
		return nil, ErrNotFiltered
	}
	summaries := make([]TrackSummary, 0, len(b.Tracks))
	for ti := range b.Tracks {
		t := &b.Tracks[ti]
		s := TrackSummary{
			TrackIndex: ti,
			TrackType:  t.TrackType,
			LeafCount:  len(t.Leaves),
		}
		if t.Root != InvalidNode {
			root := b.Node(t.Root)
			s.MaxDepth = root.MaxDepth
			s.MaxReflectionDepth = root.MaxReflectionDepth
			s.MaxTransmissionDepth = root.MaxTransmissionDepth
			s.Drawn = root.DrawBranch
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}
