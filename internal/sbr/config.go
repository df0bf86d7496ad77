package sbr

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// IntRange is an inclusive [Min, Max] bound used by the bounce- and
// branch-level filters.
type IntRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Unbounded is the default range [0, +inf).
func Unbounded() IntRange {
	return IntRange{Min: 0, Max: math.MaxInt}
}

// Between returns the inclusive range [min, max].
func Between(min, max int) IntRange {
	return IntRange{Min: min, Max: max}
}

// Contains reports whether v lies inside the range.
func (r IntRange) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// FilterConfig is the immutable input to one filter run.
//
// The depth ranges are bounce-level filters evaluated at individual
// nodes; the total-count ranges are branch-level filters evaluated over
// whole root-to-leaf paths. Construct configs from DefaultFilterConfig
// or a FilterTuning file; the zero value carries empty [0,0] ranges.
type FilterConfig struct {
	DepthRange             IntRange `json:"depth_range"`
	ReflectionDepthRange   IntRange `json:"reflection_depth_range"`
	TransmissionDepthRange IntRange `json:"transmission_depth_range"`

	TotalReflectionsRange   IntRange `json:"total_reflections_range"`
	TotalTransmissionsRange IntRange `json:"total_transmissions_range"`

	// TrackTypes selects which track types are drawn at all. Empty means
	// both SBR and UTD.
	TrackTypes []TrackType `json:"track_types,omitempty"`
}

// DefaultFilterConfig returns a config that draws everything: all ranges
// unbounded, both track types included.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		DepthRange:              Unbounded(),
		ReflectionDepthRange:    Unbounded(),
		TransmissionDepthRange:  Unbounded(),
		TotalReflectionsRange:   Unbounded(),
		TotalTransmissionsRange: Unbounded(),
		TrackTypes:              []TrackType{TrackTypeSBR, TrackTypeUTD},
	}
}

// includedTypes canonicalizes TrackTypes into a membership set. An
// unparseable token is an InvalidTrackTypeError.
func (c FilterConfig) includedTypes() (map[TrackType]bool, error) {
	if len(c.TrackTypes) == 0 {
		return map[TrackType]bool{TrackTypeSBR: true, TrackTypeUTD: true}, nil
	}
	set := make(map[TrackType]bool, len(c.TrackTypes))
	for _, raw := range c.TrackTypes {
		tt, err := ParseTrackType(string(raw))
		if err != nil {
			return nil, fmt.Errorf("filter config: %w", err)
		}
		set[tt] = true
	}
	return set, nil
}

// FilterTuning is the on-disk shape of a filter config. All fields are
// optional; absent bounds fall back to the unbounded default. The same
// JSON can be used for startup configuration and runtime updates.
type FilterTuning struct {
	DepthMin *int `json:"depth_min,omitempty"`
	DepthMax *int `json:"depth_max,omitempty"`

	ReflectionDepthMin *int `json:"reflection_depth_min,omitempty"`
	ReflectionDepthMax *int `json:"reflection_depth_max,omitempty"`

	TransmissionDepthMin *int `json:"transmission_depth_min,omitempty"`
	TransmissionDepthMax *int `json:"transmission_depth_max,omitempty"`

	TotalReflectionsMin *int `json:"total_reflections_min,omitempty"`
	TotalReflectionsMax *int `json:"total_reflections_max,omitempty"`

	TotalTransmissionsMin *int `json:"total_transmissions_min,omitempty"`
	TotalTransmissionsMax *int `json:"total_transmissions_max,omitempty"`

	TrackTypes []string `json:"track_types,omitempty"`
}

// LoadFilterTuning reads a tuning file from disk.
func LoadFilterTuning(path string) (*FilterTuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read filter tuning: %w", err)
	}
	var t FilterTuning
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse filter tuning %s: %w", path, err)
	}
	return &t, nil
}

// Config materializes the tuning into a FilterConfig, applying the
// unbounded defaults for absent bounds.
func (t *FilterTuning) Config() (FilterConfig, error) {
	cfg := DefaultFilterConfig()
	cfg.DepthRange = rangeFrom(t.DepthMin, t.DepthMax)
	cfg.ReflectionDepthRange = rangeFrom(t.ReflectionDepthMin, t.ReflectionDepthMax)
	cfg.TransmissionDepthRange = rangeFrom(t.TransmissionDepthMin, t.TransmissionDepthMax)
	cfg.TotalReflectionsRange = rangeFrom(t.TotalReflectionsMin, t.TotalReflectionsMax)
	cfg.TotalTransmissionsRange = rangeFrom(t.TotalTransmissionsMin, t.TotalTransmissionsMax)

	if len(t.TrackTypes) > 0 {
		cfg.TrackTypes = cfg.TrackTypes[:0]
		for _, token := range t.TrackTypes {
			tt, err := ParseTrackType(token)
			if err != nil {
				return FilterConfig{}, fmt.Errorf("filter tuning: %w", err)
			}
			cfg.TrackTypes = append(cfg.TrackTypes, tt)
		}
	}
	return cfg, nil
}

func rangeFrom(min, max *int) IntRange {
	r := Unbounded()
	if min != nil {
		r.Min = *min
	}
	if max != nil {
		r.Max = *max
	}
	return r
}
