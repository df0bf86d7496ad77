package sbr

// applyBranchDraw evaluates every leaf of the track against the
// branch-level count ranges and propagates positive decisions up the
// parent chain. The propagation is a monotonic OR: a node marked by one
// branch is never cleared by a sibling branch that fails its own test.
func applyBranchDraw(b *RayBundle, t *RayTrack, cfg FilterConfig) {
	walkTrackDepths(b, t, func(id NodeID, depth, reflectionDepth, transmissionDepth int) {
		n := b.Node(id)
		if !n.IsLeaf || !branchAdmitsLeaf(n, reflectionDepth, transmissionDepth, cfg) {
			return
		}
		n.DrawBranch = true
		for p := n.Parent; p != InvalidNode; p = b.Node(p).Parent {
			pn := b.Node(p)
			if pn.DrawBranch {
				// Marking always runs to the root, so everything above
				// is already set.
				break
			}
			pn.DrawBranch = true
		}
	})
}

// branchAdmitsLeaf is the branch-level admission test for one leaf.
// The escape tests run before the terminal test and return on the first
// success; when both escape flags are set, the reflection-side ranges
// alone gate the decision.
func branchAdmitsLeaf(n *RayBounceNode, reflectionDepth, transmissionDepth int, cfg FilterConfig) bool {
	if n.HasEscapingReflectionRay &&
		cfg.TotalReflectionsRange.Contains(reflectionDepth+1) &&
		cfg.TotalTransmissionsRange.Contains(transmissionDepth) {
		return true
	}
	if n.HasEscapingTransmissionRay &&
		cfg.TotalTransmissionsRange.Contains(transmissionDepth+1) &&
		cfg.TotalReflectionsRange.Contains(reflectionDepth) {
		return true
	}
	if n.isTerminal() &&
		cfg.TotalReflectionsRange.Contains(reflectionDepth) &&
		cfg.TotalTransmissionsRange.Contains(transmissionDepth) {
		return true
	}
	return false
}

// applyBounceDraw sets the three node-local draw flags top-down, gated
// by DrawBranch. Nodes on unmarked branches are still visited for
// traversal symmetry but keep all flags false.
func applyBounceDraw(b *RayBundle, t *RayTrack, cfg FilterConfig) {
	walkTrackDepths(b, t, func(id NodeID, depth, reflectionDepth, transmissionDepth int) {
		n := b.Node(id)
		if !n.DrawBranch {
			return
		}

		n.DrawThisBounce = cfg.DepthRange.Contains(depth) &&
			cfg.ReflectionDepthRange.Contains(reflectionDepth) &&
			cfg.TransmissionDepthRange.Contains(transmissionDepth)

		if n.HasEscapingTransmissionRay {
			n.DrawEscapingTransmission = cfg.TotalTransmissionsRange.Contains(transmissionDepth+1) &&
				cfg.TotalReflectionsRange.Contains(reflectionDepth) &&
				cfg.DepthRange.Contains(depth+1) &&
				cfg.ReflectionDepthRange.Contains(reflectionDepth) &&
				cfg.TransmissionDepthRange.Contains(transmissionDepth+1)
		}
		if n.HasEscapingReflectionRay {
			n.DrawEscapingReflection = cfg.TotalReflectionsRange.Contains(reflectionDepth+1) &&
				cfg.TotalTransmissionsRange.Contains(transmissionDepth) &&
				cfg.DepthRange.Contains(depth+1) &&
				cfg.TransmissionDepthRange.Contains(transmissionDepth) &&
				cfg.ReflectionDepthRange.Contains(reflectionDepth+1)
		}
	})
}
