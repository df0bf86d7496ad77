package sbr

// computeBranchMetrics runs the bottom-up metrics pass over one track:
// leaf classification, subtree depth maxima, branch index sets, and the
// leaf registry. It always runs, even for tracks the type gate will
// exclude from the draw passes, so a later re-filter with a different
// type set needs no extra pass.
func computeBranchMetrics(b *RayBundle, t *RayTrack) {
	t.Leaves = t.Leaves[:0]
	if t.Root == InvalidNode {
		return
	}

	// Post-order via a two-phase stack: a frame is expanded on first
	// visit and finished once its children have been.
	stack := []depthFrame{{id: t.Root}}
	for len(stack) > 0 {
		top := len(stack) - 1
		f := stack[top]
		if !f.expanded {
			stack[top].expanded = true
			// LIFO: push reflection first so the transmission subtree is
			// finished first. Branch numbering depends on this order.
			tf, rf, hasT, hasR := childFrames(b.Node(f.id), f)
			if hasR {
				stack = append(stack, rf)
			}
			if hasT {
				stack = append(stack, tf)
			}
			continue
		}
		stack = stack[:top]
		finishNodeMetrics(b, t, f)
	}
}

// finishNodeMetrics computes one node's derived metrics from its already
// finished children.
func finishNodeMetrics(b *RayBundle, t *RayTrack, f depthFrame) {
	n := b.Node(f.id)

	// A node is a leaf iff it has an escaping ray on either side, or it
	// has neither child; an escaping ray takes precedence even when the
	// other side still has a child.
	n.IsLeaf = n.HasEscapingTransmissionRay || n.HasEscapingReflectionRay || !n.hasChildren()

	n.MaxDepth = f.depth
	n.MaxTransmissionDepth = f.transmissionDepth
	n.MaxReflectionDepth = f.reflectionDepth
	n.BranchIndices = BranchSet{}

	if n.IsLeaf {
		t.Leaves = append(t.Leaves, f.id)
		n.BranchIndices.Add(len(t.Leaves) - 1)
	}

	if c := n.TransmissionChild; c != InvalidNode {
		mergeChildMetrics(n, b.Node(c))
	}
	if c := n.ReflectionChild; c != InvalidNode {
		mergeChildMetrics(n, b.Node(c))
	}

	// An escaping ray is a one-step terminal even though it spawns no
	// child node.
	if n.HasEscapingTransmissionRay {
		n.MaxDepth = max(n.MaxDepth, f.depth+1)
		n.MaxTransmissionDepth = max(n.MaxTransmissionDepth, f.transmissionDepth+1)
	}
	if n.HasEscapingReflectionRay {
		n.MaxDepth = max(n.MaxDepth, f.depth+1)
		n.MaxReflectionDepth = max(n.MaxReflectionDepth, f.reflectionDepth+1)
	}
}

func mergeChildMetrics(n, child *RayBounceNode) {
	n.BranchIndices.Union(child.BranchIndices)
	n.MaxDepth = max(n.MaxDepth, child.MaxDepth)
	n.MaxTransmissionDepth = max(n.MaxTransmissionDepth, child.MaxTransmissionDepth)
	n.MaxReflectionDepth = max(n.MaxReflectionDepth, child.MaxReflectionDepth)
}
