package sbr

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/raytrack.report/internal/testutil"
)

func TestIntRangeContains(t *testing.T) {
	t.Parallel()

	r := Between(2, 5)
	assert.False(t, r.Contains(1))
	assert.True(t, r.Contains(2))
	assert.True(t, r.Contains(5))
	assert.False(t, r.Contains(6))

	u := Unbounded()
	assert.True(t, u.Contains(0))
	assert.True(t, u.Contains(math.MaxInt))
	assert.False(t, u.Contains(-1))
}

func TestDefaultFilterConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultFilterConfig()
	assert.Equal(t, Unbounded(), cfg.DepthRange)
	assert.Equal(t, Unbounded(), cfg.TotalReflectionsRange)
	assert.ElementsMatch(t, []TrackType{TrackTypeSBR, TrackTypeUTD}, cfg.TrackTypes)

	included, err := cfg.includedTypes()
	require.NoError(t, err)
	assert.True(t, included[TrackTypeSBR])
	assert.True(t, included[TrackTypeUTD])
}

func TestIncludedTypesEmptyMeansBoth(t *testing.T) {
	t.Parallel()

	included, err := FilterConfig{}.includedTypes()
	require.NoError(t, err)
	assert.True(t, included[TrackTypeSBR])
	assert.True(t, included[TrackTypeUTD])
}

func TestFilterTuning(t *testing.T) {
	t.Parallel()

	t.Run("loads bounds and types", func(t *testing.T) {
		t.Parallel()
		path := testutil.WriteTempFile(t, "tuning.json", []byte(`{
			"depth_max": 6,
			"total_reflections_min": 1,
			"total_reflections_max": 4,
			"track_types": ["SBR"]
		}`))

		tuning, err := LoadFilterTuning(path)
		require.NoError(t, err)

		cfg, err := tuning.Config()
		require.NoError(t, err)
		assert.Equal(t, IntRange{Min: 0, Max: 6}, cfg.DepthRange)
		assert.Equal(t, Between(1, 4), cfg.TotalReflectionsRange)
		assert.Equal(t, Unbounded(), cfg.TransmissionDepthRange, "absent bounds stay unbounded")
		assert.Equal(t, []TrackType{TrackTypeSBR}, cfg.TrackTypes)
	})

	t.Run("empty file yields defaults", func(t *testing.T) {
		t.Parallel()
		path := testutil.WriteTempFile(t, "tuning.json", []byte(`{}`))
		tuning, err := LoadFilterTuning(path)
		require.NoError(t, err)

		cfg, err := tuning.Config()
		require.NoError(t, err)
		assert.Equal(t, DefaultFilterConfig(), cfg)
	})

	t.Run("bad track type", func(t *testing.T) {
		t.Parallel()
		path := testutil.WriteTempFile(t, "tuning.json", []byte(`{"track_types": ["geo"]}`))
		tuning, err := LoadFilterTuning(path)
		require.NoError(t, err)

		_, err = tuning.Config()
		var typeErr *InvalidTrackTypeError
		require.True(t, errors.As(err, &typeErr))
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadFilterTuning("does/not/exist.json")
		assert.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		t.Parallel()
		path := testutil.WriteTempFile(t, "tuning.json", []byte(`{`))
		_, err := LoadFilterTuning(path)
		assert.Error(t, err)
	})
}
