package sbr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeafRegistryOrder(t *testing.T) {
	t.Parallel()

	// Transmission subtrees are numbered before reflection subtrees.
	b := newTestBundle("order")
	tLeaf := addBounce(b, nil)
	rLeaf := addBounce(b, nil)
	fork := addBounce(b, func(n *RayBounceNode) {
		n.TransmissionChild = tLeaf
		n.ReflectionChild = rLeaf
	})
	addTrack(b, TrackTypeSBR, fork)

	require.NoError(t, ApplyFilter(b, DefaultFilterConfig()))

	tr := &b.Tracks[0]
	require.Equal(t, []NodeID{tLeaf, rLeaf}, tr.Leaves)
	assert.Equal(t, []int{0}, b.Node(tLeaf).BranchIndices.Indices())
	assert.Equal(t, []int{1}, b.Node(rLeaf).BranchIndices.Indices())
	assert.Equal(t, []int{0, 1}, b.Node(fork).BranchIndices.Indices())
	assert.Equal(t, []int{0, 1}, b.Node(tr.Root).BranchIndices.Indices())
}

func TestDepthMetricsAggregation(t *testing.T) {
	t.Parallel()

	// source -> A(surface) -> B(surface, escaping reflection).
	// B sits at depth 2 with reflection depth 1; its escape adds one
	// more step on both axes.
	b := newTestBundle("depths")
	bNode := addBounce(b, func(n *RayBounceNode) {
		n.HasEscapingReflectionRay = true
	})
	aNode := addBounce(b, func(n *RayBounceNode) {
		n.ReflectionChild = bNode
	})
	addTrack(b, TrackTypeSBR, aNode)

	require.NoError(t, ApplyFilter(b, DefaultFilterConfig()))

	root := b.Node(b.Tracks[0].Root)
	assert.Equal(t, 3, root.MaxDepth)
	assert.Equal(t, 2, root.MaxReflectionDepth)
	assert.Equal(t, 0, root.MaxTransmissionDepth)

	leaf := b.Node(bNode)
	assert.Equal(t, 3, leaf.MaxDepth)
	assert.Equal(t, 2, leaf.MaxReflectionDepth)
}

func TestTransmissionDepthMetrics(t *testing.T) {
	t.Parallel()

	// source -> A(surface) with a transmission child that escapes by
	// transmission: transmission depth 1 at the child, 2 after escape.
	b := newTestBundle("transmission")
	child := addBounce(b, func(n *RayBounceNode) {
		n.HasEscapingTransmissionRay = true
	})
	aNode := addBounce(b, func(n *RayBounceNode) {
		n.TransmissionChild = child
	})
	addTrack(b, TrackTypeSBR, aNode)

	require.NoError(t, ApplyFilter(b, DefaultFilterConfig()))

	root := b.Node(b.Tracks[0].Root)
	assert.Equal(t, 3, root.MaxDepth)
	assert.Equal(t, 2, root.MaxTransmissionDepth)
	assert.Equal(t, 0, root.MaxReflectionDepth, "reflection depth only grows below surface bounces")
}

func TestReflectionDepthRequiresSurfaceParent(t *testing.T) {
	t.Parallel()

	// The first bounce hangs off the synthetic source's reflection edge,
	// but the source is not a surface bounce, so the first descent does
	// not count as a reflection.
	b := newTestBundle("source-edge")
	leaf := addBounce(b, nil)
	first := addBounce(b, func(n *RayBounceNode) {
		n.ReflectionChild = leaf
	})
	addTrack(b, TrackTypeSBR, first)

	require.NoError(t, ApplyFilter(b, DefaultFilterConfig()))

	assert.Equal(t, 1, b.Node(b.Tracks[0].Root).MaxReflectionDepth,
		"only the surface-to-surface descent counts")
}

func TestEdgeDiffractionNormalization(t *testing.T) {
	t.Parallel()

	b := newTestBundle("utd")
	first := addBounce(b, nil)
	ti := addTrack(b, TrackTypeUTD, first)
	edge := Vec3{X: 0.5, Y: 0, Z: 1.2}
	b.Tracks[ti].EdgeDiffractionPoint = &edge
	b.Tracks[ti].SourcePoint = Vec3{X: 0, Y: 0, Z: 0}

	require.NoError(t, ApplyFilter(b, DefaultFilterConfig()))

	tr := &b.Tracks[0]
	source := b.Node(tr.Root)
	require.Equal(t, BounceSource, source.Bounce)
	assert.Equal(t, tr.SourcePoint, source.HitPoint)

	diffraction := nodeAt(t, b, tr, "r")
	require.Equal(t, BounceEdgeDiffraction, diffraction.Bounce)
	assert.Equal(t, edge, diffraction.HitPoint)

	bounce := nodeAt(t, b, tr, "r", "r")
	assert.Equal(t, BounceSurface, bounce.Bounce)
	assert.Equal(t, first, diffraction.ReflectionChild, "first real bounce hangs off the diffraction node")
}

func TestParentBackReferences(t *testing.T) {
	t.Parallel()

	b := newTestBundle("parents")
	leaf := addBounce(b, nil)
	first := addBounce(b, func(n *RayBounceNode) {
		n.TransmissionChild = leaf
	})
	addTrack(b, TrackTypeSBR, first)

	require.NoError(t, ApplyFilter(b, DefaultFilterConfig()))

	tr := &b.Tracks[0]
	assert.Equal(t, InvalidNode, b.Node(tr.Root).Parent)
	assert.Equal(t, tr.Root, b.Node(first).Parent)
	assert.Equal(t, first, b.Node(leaf).Parent)
}
