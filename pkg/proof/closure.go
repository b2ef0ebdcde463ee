package proof

import "github.com/DrSkyle/proofscope/pkg/graph"

// closure walks prerequisite edges backwards from target for up to depth
// hops and returns the hop distance of every node reached. A negative depth
// means unbounded. A target missing from the index yields an empty result.
func closure(ix *graph.Index, target string, depth int) map[string]int {
	hops := make(map[string]int)
	if _, ok := ix.Node(target); !ok {
		return hops
	}

	hops[target] = 0
	queue := []string{target}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		d := hops[cur]
		if depth >= 0 && d >= depth {
			continue
		}
		for _, a := range ix.Incoming[cur] {
			if _, seen := hops[a.S]; seen {
				continue
			}
			hops[a.S] = d + 1
			queue = append(queue, a.S)
		}
	}
	return hops
}

// MaxPrereqDepth returns the greatest finite hop distance reachable from
// target through prerequisite edges. A target without prerequisites yields 0.
func MaxPrereqDepth(ix *graph.Index, target string) int {
	best := 0
	for _, d := range closure(ix, target, -1) {
		best = max(best, d)
	}
	return best
}
