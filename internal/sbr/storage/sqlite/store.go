package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/raytrack.report/internal/sbr"
)

// FilterRun is one persisted application of a filter config to a bundle.
type FilterRun struct {
	RunID           string          `json:"run_id"`
	BundleName      string          `json:"bundle_name"`
	ConfigJSON      json.RawMessage `json:"config_json,omitempty"`
	TrackCount      int             `json:"track_count"`
	DrawnTrackCount int             `json:"drawn_track_count"`
	LeafCount       int             `json:"leaf_count"`
	CreatedAt       int64           `json:"created_at"`
}

// RunTrack is the per-track outcome of a filter run.
type RunTrack struct {
	RunID      string `json:"run_id"`
	TrackIndex int    `json:"track_index"`
	TrackType  string `json:"track_type"`
	LeafCount  int    `json:"leaf_count"`
	MaxDepth   int    `json:"max_depth"`
	RootDrawn  bool   `json:"root_drawn"`
}

// FilterRunStore provides persistence for filter runs.
type FilterRunStore struct {
	db *sql.DB
}

// NewFilterRunStore creates a FilterRunStore backed by the given database.
func NewFilterRunStore(db *sql.DB) *FilterRunStore {
	return &FilterRunStore{db: db}
}

// InsertRun persists a run and its track outcomes in one transaction.
// If RunID is empty, a UUID is generated.
func (s *FilterRunStore) InsertRun(run *FilterRun, tracks []RunTrack) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}

	var configStr interface{}
	if len(run.ConfigJSON) > 0 {
		configStr = string(run.ConfigJSON)
	}

	return retryOnBusy(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin insert run: %w", err)
		}
		defer tx.Rollback()

		_, err = tx.Exec(`
			INSERT INTO filter_runs (
				run_id, bundle_name, config_json,
				track_count, drawn_track_count, leaf_count, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.BundleName, configStr,
			run.TrackCount, run.DrawnTrackCount, run.LeafCount, run.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert filter run: %w", err)
		}

		for i := range tracks {
			rt := &tracks[i]
			rt.RunID = run.RunID
			_, err = tx.Exec(`
				INSERT INTO filter_run_tracks (
					run_id, track_index, track_type, leaf_count, max_depth, root_drawn
				) VALUES (?, ?, ?, ?, ?, ?)`,
				rt.RunID, rt.TrackIndex, rt.TrackType, rt.LeafCount, rt.MaxDepth, rt.RootDrawn,
			)
			if err != nil {
				return fmt.Errorf("insert run track %d: %w", rt.TrackIndex, err)
			}
		}
		return tx.Commit()
	})
}

// RecordRun builds a FilterRun from an annotated bundle and persists it.
func (s *FilterRunStore) RecordRun(b *sbr.RayBundle) (*FilterRun, error) {
	stats, err := sbr.ComputeStats(b)
	if err != nil {
		return nil, err
	}
	summaries, err := sbr.Summarize(b)
	if err != nil {
		return nil, err
	}

	configJSON, err := json.Marshal(b.Provenance.Config)
	if err != nil {
		return nil, fmt.Errorf("marshal filter config: %w", err)
	}

	run := &FilterRun{
		RunID:           b.Provenance.RunID,
		BundleName:      b.Name,
		ConfigJSON:      configJSON,
		TrackCount:      stats.TrackCount,
		DrawnTrackCount: stats.DrawnTrackCount,
		LeafCount:       stats.LeafCount,
		CreatedAt:       b.Provenance.AppliedUnixNanos,
	}
	tracks := make([]RunTrack, 0, len(summaries))
	for _, sum := range summaries {
		tracks = append(tracks, RunTrack{
			TrackIndex: sum.TrackIndex,
			TrackType:  string(sum.TrackType),
			LeafCount:  sum.LeafCount,
			MaxDepth:   sum.MaxDepth,
			RootDrawn:  sum.Drawn,
		})
	}
	if err := s.InsertRun(run, tracks); err != nil {
		return nil, err
	}
	return run, nil
}

// GetRun returns a single run by ID, or sql.ErrNoRows if absent.
func (s *FilterRunStore) GetRun(runID string) (*FilterRun, error) {
	row := s.db.QueryRow(`
		SELECT run_id, bundle_name, config_json,
		       track_count, drawn_track_count, leaf_count, created_at
		FROM filter_runs
		WHERE run_id = ?`, runID)
	return scanRun(row)
}

// ListRuns returns all runs for a bundle, newest first.
func (s *FilterRunStore) ListRuns(bundleName string) ([]*FilterRun, error) {
	rows, err := s.db.Query(`
		SELECT run_id, bundle_name, config_json,
		       track_count, drawn_track_count, leaf_count, created_at
		FROM filter_runs
		WHERE bundle_name = ?
		ORDER BY created_at DESC`, bundleName)
	if err != nil {
		return nil, fmt.Errorf("query filter runs: %w", err)
	}
	defer rows.Close()

	var runs []*FilterRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ListRunTracks returns the per-track outcomes of a run in track order.
func (s *FilterRunStore) ListRunTracks(runID string) ([]*RunTrack, error) {
	rows, err := s.db.Query(`
		SELECT run_id, track_index, track_type, leaf_count, max_depth, root_drawn
		FROM filter_run_tracks
		WHERE run_id = ?
		ORDER BY track_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*RunTrack
	for rows.Next() {
		var rt RunTrack
		if err := rows.Scan(&rt.RunID, &rt.TrackIndex, &rt.TrackType, &rt.LeafCount, &rt.MaxDepth, &rt.RootDrawn); err != nil {
			return nil, fmt.Errorf("scan run track: %w", err)
		}
		tracks = append(tracks, &rt)
	}
	return tracks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*FilterRun, error) {
	var r FilterRun
	var configStr sql.NullString
	err := row.Scan(&r.RunID, &r.BundleName, &configStr,
		&r.TrackCount, &r.DrawnTrackCount, &r.LeafCount, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	if configStr.Valid {
		r.ConfigJSON = json.RawMessage(configStr.String)
	}
	return &r, nil
}

// retryOnBusy retries fn a few times when SQLite reports a locked or
// busy database, which WAL-mode writers can hit under contention.
func retryOnBusy(fn func() error) error {
	const attempts = 5
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || !isBusy(err) {
			return err
		}
		time.Sleep(time.Duration(i+1) * 10 * time.Millisecond)
	}
	return err
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}
