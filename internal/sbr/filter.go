package sbr

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/raytrack.report/internal/monitoring"
)

// ApplyFilter runs the full annotation pipeline over the bundle in
// place: tree initialization, branch metrics, the track-type gate, and
// the branch/bounce draw passes, then stamps the bundle and its tracks
// with the run's provenance.
//
// Tracks are processed in bundle order, children transmission side
// before reflection side, so branch numbering is reproducible. Tracks
// whose type the config excludes still get their metrics computed but
// keep every draw flag false. Filtering never deletes or reshapes nodes,
// so the same bundle can be re-filtered with a different config.
func ApplyFilter(b *RayBundle, cfg FilterConfig) error {
	included, err := cfg.includedTypes()
	if err != nil {
		return err
	}

	initializeTrees(b)

	for ti := range b.Tracks {
		t := &b.Tracks[ti]
		tt, err := ParseTrackType(string(t.TrackType))
		if err != nil {
			return fmt.Errorf("track %d: %w", ti, err)
		}
		t.TrackType = tt
		computeBranchMetrics(b, t)
	}

	run := &FilterProvenance{
		RunID:            uuid.NewString(),
		Config:           cfg,
		AppliedUnixNanos: time.Now().UnixNano(),
	}

	drawn := 0
	for ti := range b.Tracks {
		t := &b.Tracks[ti]
		t.FilteredBy = run.RunID
		if !included[t.TrackType] {
			continue
		}
		applyBranchDraw(b, t, cfg)
		applyBounceDraw(b, t, cfg)
		if t.Root != InvalidNode && b.Node(t.Root).DrawBranch {
			drawn++
		}
	}
	b.Provenance = run

	monitoring.Logf("sbr: filter run %s on bundle %q: %d/%d tracks drawn", run.RunID, b.Name, drawn, len(b.Tracks))
	return nil
}

// SelectTracks returns the indices of tracks whose root draw decision
// equals wantDrawn. The bundle must have been through ApplyFilter;
// otherwise ErrNotFiltered is returned.
func SelectTracks(b *RayBundle, wantDrawn bool) ([]int, error) {
	if !b.Filtered() {
		return nil, ErrNotFiltered
	}
	var indices []int
	for ti := range b.Tracks {
		t := &b.Tracks[ti]
		drawn := t.Root != InvalidNode && b.Node(t.Root).DrawBranch
		if drawn == wantDrawn {
			indices = append(indices, ti)
		}
	}
	return indices, nil
}
