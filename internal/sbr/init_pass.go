package sbr

// initializeTrees normalizes every track in the bundle into a uniform
// rooted tree whose root is a synthetic Source node, wires parent
// back-references, and resets all derived state. Running it again on an
// already-initialized bundle reuses the existing synthetic roots, so
// re-filtering never duplicates them.
func initializeTrees(b *RayBundle) {
	for ti := range b.Tracks {
		initializeTrack(b, &b.Tracks[ti])
	}
}

func initializeTrack(b *RayBundle, t *RayTrack) {
	if t.Root == InvalidNode || b.Node(t.Root).Bounce != BounceSource {
		// The first real bounce hangs off the reflection side of the
		// synthetic chain; a recorded edge-diffraction point gets its own
		// node between source and first bounce. Later passes then treat
		// UTD vs SBR and diffraction-present vs -absent as ordinary tree
		// shape.
		child := t.Root
		if t.EdgeDiffractionPoint != nil {
			diffraction := NewRayBounceNode()
			diffraction.HitPoint = *t.EdgeDiffractionPoint
			diffraction.Bounce = BounceEdgeDiffraction
			diffraction.ReflectionChild = child
			child = b.AddNode(diffraction)
		}
		source := NewRayBounceNode()
		source.HitPoint = t.SourcePoint
		source.Bounce = BounceSource
		source.ReflectionChild = child
		t.Root = b.AddNode(source)
	}

	b.Node(t.Root).Parent = InvalidNode
	stack := []NodeID{t.Root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := b.Node(id)
		if n.Bounce == BounceUndefined {
			n.Bounce = BounceSurface
		}
		n.resetDerived()

		if c := n.ReflectionChild; c != InvalidNode {
			b.Node(c).Parent = id
			stack = append(stack, c)
		}
		if c := n.TransmissionChild; c != InvalidNode {
			b.Node(c).Parent = id
			stack = append(stack, c)
		}
	}
}
