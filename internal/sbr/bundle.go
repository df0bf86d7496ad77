package sbr

import (
	"encoding/json"
	"fmt"
)

// RayTrack is the bounce tree for one emitted ray.
type RayTrack struct {
	TrackType   TrackType `json:"track_type"`
	SourcePoint Vec3      `json:"source_point"`
	// EdgeDiffractionPoint is set for UTD tracks that record a
	// diffraction edge between the source and the first bounce.
	EdgeDiffractionPoint *Vec3 `json:"edge_diffraction_point,omitempty"`

	// Root is the track's tree root. Decoders point it at the first real
	// bounce (or leave it InvalidNode for an empty track); after tree
	// initialization it is always a synthetic Source node.
	Root NodeID `json:"root"`

	// Leaves is the leaf registry, rebuilt on every metrics pass in
	// visitation order. Leaves[i] is the leaf whose branch index is i.
	Leaves []NodeID `json:"leaves,omitempty"`

	// FilteredBy records the run ID of the filter that last annotated
	// this track.
	FilteredBy string `json:"filtered_by,omitempty"`
}

// UnmarshalJSON decodes a track with an absent root defaulting to
// InvalidNode instead of node 0.
func (t *RayTrack) UnmarshalJSON(data []byte) error {
	type alias RayTrack
	a := alias{Root: InvalidNode}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*t = RayTrack(a)
	return nil
}

// FilterProvenance identifies the filter run that last annotated a
// bundle, together with the config it used. Its presence is the
// idempotence marker checked before SelectTracks and on re-filtering.
type FilterProvenance struct {
	RunID            string       `json:"run_id"`
	Config           FilterConfig `json:"config"`
	AppliedUnixNanos int64        `json:"applied_unix_nanos"`
}

// RayBundle is a full simulation export: a named, ordered collection of
// ray tracks sharing one node arena. The bundle is owned by the caller
// for the whole pipeline; the engine mutates it in place and never takes
// ownership.
type RayBundle struct {
	Name string `json:"name"`
	// Source names the exporting solver or file for provenance.
	Source            string `json:"source,omitempty"`
	ExportedUnixNanos int64  `json:"exported_unix_nanos,omitempty"`

	Nodes  []RayBounceNode `json:"nodes"`
	Tracks []RayTrack      `json:"tracks"`

	Provenance *FilterProvenance `json:"provenance,omitempty"`
}

// Node returns the arena node for id. The pointer is invalidated by the
// next AddNode call; do not hold it across arena growth.
func (b *RayBundle) Node(id NodeID) *RayBounceNode {
	return &b.Nodes[id]
}

// AddNode appends a node to the arena and returns its id.
func (b *RayBundle) AddNode(n RayBounceNode) NodeID {
	b.Nodes = append(b.Nodes, n)
	return NodeID(len(b.Nodes) - 1)
}

// Filtered reports whether the bundle has been through ApplyFilter.
func (b *RayBundle) Filtered() bool {
	return b.Provenance != nil
}

// validate checks the structural shape a decoder must deliver: links in
// arena range and recognizable track types. Malformed trees beyond that
// (cycles, shared children) are the decoder's contract to uphold.
func (b *RayBundle) validate() error {
	inRange := func(id NodeID) bool {
		return id == InvalidNode || (id >= 0 && int(id) < len(b.Nodes))
	}
	for i := range b.Nodes {
		n := &b.Nodes[i]
		if !inRange(n.TransmissionChild) || !inRange(n.ReflectionChild) || !inRange(n.Parent) {
			return fmt.Errorf("node %d: link out of arena range [0,%d)", i, len(b.Nodes))
		}
	}
	for i := range b.Tracks {
		t := &b.Tracks[i]
		if !inRange(t.Root) {
			return fmt.Errorf("track %d: root %d out of arena range [0,%d)", i, t.Root, len(b.Nodes))
		}
		if _, err := ParseTrackType(string(t.TrackType)); err != nil {
			return fmt.Errorf("track %d: %w", i, err)
		}
	}
	return nil
}
