package sbr

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// NodeID indexes a RayBounceNode in its bundle's node arena.
type NodeID int32

// InvalidNode marks an absent child or parent link.
const InvalidNode NodeID = -1

// Vec3 is a 3-D position in the export's model coordinates (metres).
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// BounceType classifies a single point along a ray track.
type BounceType uint8

const (
	BounceUndefined BounceType = iota
	BounceSource
	BounceEdgeDiffraction
	BounceSurface
)

func (bt BounceType) String() string {
	switch bt {
	case BounceSource:
		return "source"
	case BounceEdgeDiffraction:
		return "edge_diffraction"
	case BounceSurface:
		return "surface"
	default:
		return "undefined"
	}
}

// ParseBounceType maps a serialized token back to a BounceType.
// Unknown tokens decode as BounceUndefined; the tree initializer
// defaults those to BounceSurface.
func ParseBounceType(token string) BounceType {
	switch strings.ToLower(token) {
	case "source":
		return BounceSource
	case "edge_diffraction":
		return BounceEdgeDiffraction
	case "surface":
		return BounceSurface
	default:
		return BounceUndefined
	}
}

// MarshalJSON serializes the bounce type as its string token.
func (bt BounceType) MarshalJSON() ([]byte, error) {
	return json.Marshal(bt.String())
}

// UnmarshalJSON parses a bounce type from its string token.
func (bt *BounceType) UnmarshalJSON(data []byte) error {
	var token string
	if err := json.Unmarshal(data, &token); err != nil {
		return fmt.Errorf("bounce type: %w", err)
	}
	*bt = ParseBounceType(token)
	return nil
}

// TrackType identifies the solver that produced a ray track.
type TrackType string

const (
	// TrackTypeSBR is a shooting-and-bouncing-ray track.
	TrackTypeSBR TrackType = "sbr"
	// TrackTypeUTD is a uniform-theory-of-diffraction track.
	TrackTypeUTD TrackType = "utd"
)

// ParseTrackType canonicalizes a track-type token. Unrecognized tokens
// are an InvalidTrackTypeError: there is no silent default.
func ParseTrackType(token string) (TrackType, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case string(TrackTypeSBR):
		return TrackTypeSBR, nil
	case string(TrackTypeUTD):
		return TrackTypeUTD, nil
	default:
		return "", &InvalidTrackTypeError{Token: token}
	}
}

// BranchSet is a set of leaf-registry indices identifying the branches
// that pass through a node.
type BranchSet map[int]struct{}

// NewBranchSet builds a set from the given indices.
func NewBranchSet(indices ...int) BranchSet {
	s := make(BranchSet, len(indices))
	for _, i := range indices {
		s.Add(i)
	}
	return s
}

// Add inserts an index into the set.
func (s BranchSet) Add(i int) { s[i] = struct{}{} }

// Union adds every index of other into s.
func (s BranchSet) Union(other BranchSet) {
	for i := range other {
		s[i] = struct{}{}
	}
}

// Contains reports whether the set holds index i.
func (s BranchSet) Contains(i int) bool {
	_, ok := s[i]
	return ok
}

// Indices returns the sorted members of the set.
func (s BranchSet) Indices() []int {
	out := make([]int, 0, len(s))
	for i := range s {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// MarshalJSON serializes the set as a sorted index array.
func (s BranchSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Indices())
}

// UnmarshalJSON parses the set from an index array.
func (s *BranchSet) UnmarshalJSON(data []byte) error {
	var indices []int
	if err := json.Unmarshal(data, &indices); err != nil {
		return fmt.Errorf("branch set: %w", err)
	}
	*s = NewBranchSet(indices...)
	return nil
}

// RayBounceNode is one hit point along a ray track. Nodes are owned by
// their bundle's arena; parent links are non-owning back-references used
// only for upward propagation.
type RayBounceNode struct {
	HitPoint  Vec3       `json:"hit_point"`
	Footprint []Vec3     `json:"footprint,omitempty"`
	Bounce    BounceType `json:"bounce_type"`

	// Tree shape. The owning edges run parent -> child; Parent is set by
	// the tree initializer and must not be used for lifetime decisions.
	TransmissionChild NodeID `json:"transmission_child"`
	ReflectionChild   NodeID `json:"reflection_child"`
	Parent            NodeID `json:"parent"`

	HasEscapingTransmissionRay bool `json:"escaping_transmission,omitempty"`
	HasEscapingReflectionRay   bool `json:"escaping_reflection,omitempty"`

	// Derived state, overwritten on every filter run.
	IsLeaf               bool      `json:"is_leaf,omitempty"`
	MaxDepth             int       `json:"max_depth,omitempty"`
	MaxTransmissionDepth int       `json:"max_transmission_depth,omitempty"`
	MaxReflectionDepth   int       `json:"max_reflection_depth,omitempty"`
	BranchIndices        BranchSet `json:"branch_indices,omitempty"`

	DrawThisBounce           bool `json:"draw_this_bounce,omitempty"`
	DrawEscapingTransmission bool `json:"draw_escaping_transmission,omitempty"`
	DrawEscapingReflection   bool `json:"draw_escaping_reflection,omitempty"`
	DrawBranch               bool `json:"draw_branch,omitempty"`
}

// NewRayBounceNode returns a node with all links set to InvalidNode.
// Decoders should start from this rather than the zero value, where the
// zero NodeID would alias node 0.
func NewRayBounceNode() RayBounceNode {
	return RayBounceNode{
		TransmissionChild: InvalidNode,
		ReflectionChild:   InvalidNode,
		Parent:            InvalidNode,
	}
}

// UnmarshalJSON decodes a node with absent links defaulting to
// InvalidNode instead of node 0.
func (n *RayBounceNode) UnmarshalJSON(data []byte) error {
	type alias RayBounceNode
	a := alias(NewRayBounceNode())
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*n = RayBounceNode(a)
	return nil
}

// hasChildren reports whether the node owns a child on either side.
func (n *RayBounceNode) hasChildren() bool {
	return n.TransmissionChild != InvalidNode || n.ReflectionChild != InvalidNode
}

// isTerminal reports whether the node ends its path outright: no
// escaping rays and no children.
func (n *RayBounceNode) isTerminal() bool {
	return !n.HasEscapingTransmissionRay && !n.HasEscapingReflectionRay && !n.hasChildren()
}

// resetDerived clears everything the filter passes compute.
func (n *RayBounceNode) resetDerived() {
	n.IsLeaf = false
	n.MaxDepth = 0
	n.MaxTransmissionDepth = 0
	n.MaxReflectionDepth = 0
	n.BranchIndices = nil
	n.DrawThisBounce = false
	n.DrawEscapingTransmission = false
	n.DrawEscapingReflection = false
	n.DrawBranch = false
}
