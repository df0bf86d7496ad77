package sbr

import (
	"testing"
)

// newTestBundle returns an empty named bundle for building trees by hand.
func newTestBundle(name string) *RayBundle {
	return &RayBundle{Name: name}
}

// addTrack appends a track rooted at root and returns its index.
func addTrack(b *RayBundle, tt TrackType, root NodeID) int {
	b.Tracks = append(b.Tracks, RayTrack{TrackType: tt, Root: root})
	return len(b.Tracks) - 1
}

// addBounce appends a fresh bounce node and returns its id.
func addBounce(b *RayBundle, mutate func(n *RayBounceNode)) NodeID {
	n := NewRayBounceNode()
	if mutate != nil {
		mutate(&n)
	}
	return b.AddNode(n)
}

// reflectionChain appends length bounces linked by reflection edges and
// returns the id of the first. The last bounce is a true terminal.
func reflectionChain(b *RayBundle, length int) NodeID {
	var next NodeID = InvalidNode
	for i := 0; i < length; i++ {
		n := NewRayBounceNode()
		n.ReflectionChild = next
		next = b.AddNode(n)
	}
	return next
}

// nodeAt walks child links from the track root; each step is "t" for the
// transmission child or "r" for the reflection child.
func nodeAt(t *testing.T, b *RayBundle, tr *RayTrack, path ...string) *RayBounceNode {
	t.Helper()
	id := tr.Root
	for _, step := range path {
		if id == InvalidNode {
			t.Fatalf("nodeAt: hit InvalidNode before finishing path %v", path)
		}
		switch step {
		case "t":
			id = b.Node(id).TransmissionChild
		case "r":
			id = b.Node(id).ReflectionChild
		default:
			t.Fatalf("nodeAt: bad step %q", step)
		}
	}
	if id == InvalidNode {
		t.Fatalf("nodeAt: path %v ends at InvalidNode", path)
	}
	return b.Node(id)
}
