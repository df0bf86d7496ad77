package sbr

// depthFrame carries the running counters threaded through a traversal.
// Counters live on the explicit stack, never on the node, so processing
// one subtree can never leak depth into a sibling.
type depthFrame struct {
	id                NodeID
	depth             int
	reflectionDepth   int
	transmissionDepth int
	expanded          bool
}

// childFrames returns the frames for f's children under the counter
// rules: depth always increments on descent; transmissionDepth
// increments on the transmission side; reflectionDepth increments on the
// reflection side only when the parent is a Surface bounce.
func childFrames(n *RayBounceNode, f depthFrame) (transmission, reflection depthFrame, hasT, hasR bool) {
	if c := n.TransmissionChild; c != InvalidNode {
		transmission = depthFrame{
			id:                c,
			depth:             f.depth + 1,
			reflectionDepth:   f.reflectionDepth,
			transmissionDepth: f.transmissionDepth + 1,
		}
		hasT = true
	}
	if c := n.ReflectionChild; c != InvalidNode {
		rd := f.reflectionDepth
		if n.Bounce == BounceSurface {
			rd++
		}
		reflection = depthFrame{
			id:                c,
			depth:             f.depth + 1,
			reflectionDepth:   rd,
			transmissionDepth: f.transmissionDepth,
		}
		hasR = true
	}
	return transmission, reflection, hasT, hasR
}

// walkTrackDepths visits every node of the track pre-order with its
// depth counters, transmission side before reflection side. The visit
// callback may mutate node flags but not tree shape.
func walkTrackDepths(b *RayBundle, t *RayTrack, visit func(id NodeID, depth, reflectionDepth, transmissionDepth int)) {
	if t.Root == InvalidNode {
		return
	}
	stack := []depthFrame{{id: t.Root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		visit(f.id, f.depth, f.reflectionDepth, f.transmissionDepth)

		// LIFO: push reflection first so transmission is visited first.
		tf, rf, hasT, hasR := childFrames(b.Node(f.id), f)
		if hasR {
			stack = append(stack, rf)
		}
		if hasT {
			stack = append(stack, tf)
		}
	}
}
