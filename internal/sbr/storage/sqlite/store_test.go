package sqlite

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/raytrack.report/internal/sbr"
	"github.com/banshee-data/raytrack.report/internal/testutil"
)

func newStoreForTest(t *testing.T) *FilterRunStore {
	t.Helper()
	db := testutil.OpenTestDB(t)
	require.NoError(t, MigrateUp(db))
	return NewFilterRunStore(db)
}

func TestMigrateUp(t *testing.T) {
	t.Parallel()
	db := testutil.OpenTestDB(t)
	require.NoError(t, MigrateUp(db))

	// Idempotent: a second run is a no-change.
	require.NoError(t, MigrateUp(db))

	version, dirty, err := MigrateVersion(db)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(1), version)
}

func TestInsertAndGetRun(t *testing.T) {
	t.Parallel()
	store := newStoreForTest(t)

	run := &FilterRun{
		BundleName:      "dipole-scan",
		ConfigJSON:      []byte(`{"depth_range":{"min":0,"max":4}}`),
		TrackCount:      3,
		DrawnTrackCount: 2,
		LeafCount:       9,
	}
	tracks := []RunTrack{
		{TrackIndex: 0, TrackType: "sbr", LeafCount: 4, MaxDepth: 3, RootDrawn: true},
		{TrackIndex: 1, TrackType: "sbr", LeafCount: 3, MaxDepth: 2, RootDrawn: true},
		{TrackIndex: 2, TrackType: "utd", LeafCount: 2, MaxDepth: 1, RootDrawn: false},
	}
	require.NoError(t, store.InsertRun(run, tracks))
	require.NotEmpty(t, run.RunID, "InsertRun should assign a run ID")
	require.NotZero(t, run.CreatedAt)

	got, err := store.GetRun(run.RunID)
	require.NoError(t, err)
	assert.Equal(t, run.BundleName, got.BundleName)
	assert.Equal(t, run.TrackCount, got.TrackCount)
	assert.Equal(t, run.DrawnTrackCount, got.DrawnTrackCount)
	assert.JSONEq(t, string(run.ConfigJSON), string(got.ConfigJSON))

	gotTracks, err := store.ListRunTracks(run.RunID)
	require.NoError(t, err)
	require.Len(t, gotTracks, 3)
	assert.Equal(t, "utd", gotTracks[2].TrackType)
	assert.False(t, gotTracks[2].RootDrawn)
}

func TestGetRunMissing(t *testing.T) {
	t.Parallel()
	store := newStoreForTest(t)

	_, err := store.GetRun("no-such-run")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListRunsOrder(t *testing.T) {
	t.Parallel()
	store := newStoreForTest(t)

	older := &FilterRun{BundleName: "scan", CreatedAt: 100}
	newer := &FilterRun{BundleName: "scan", CreatedAt: 200}
	other := &FilterRun{BundleName: "other-scan", CreatedAt: 150}
	require.NoError(t, store.InsertRun(older, nil))
	require.NoError(t, store.InsertRun(newer, nil))
	require.NoError(t, store.InsertRun(other, nil))

	runs, err := store.ListRuns("scan")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer.RunID, runs[0].RunID, "newest run should come first")
	assert.Equal(t, older.RunID, runs[1].RunID)
}

func TestRecordRun(t *testing.T) {
	t.Parallel()
	store := newStoreForTest(t)

	b := &sbr.RayBundle{Name: "monopole-export"}
	bounce := sbr.NewRayBounceNode()
	bounce.HasEscapingReflectionRay = true
	root := b.AddNode(bounce)
	b.Tracks = append(b.Tracks, sbr.RayTrack{TrackType: sbr.TrackTypeSBR, Root: root})
	require.NoError(t, sbr.ApplyFilter(b, sbr.DefaultFilterConfig()))

	run, err := store.RecordRun(b)
	require.NoError(t, err)
	assert.Equal(t, b.Provenance.RunID, run.RunID)
	assert.Equal(t, 1, run.TrackCount)
	assert.Equal(t, 1, run.DrawnTrackCount)

	tracks, err := store.ListRunTracks(run.RunID)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.True(t, tracks[0].RootDrawn)
}

func TestRecordRunUnfiltered(t *testing.T) {
	t.Parallel()
	store := newStoreForTest(t)

	_, err := store.RecordRun(&sbr.RayBundle{Name: "raw"})
	assert.ErrorIs(t, err, sbr.ErrNotFiltered)
}
