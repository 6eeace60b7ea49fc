package routing

import "slices"

// noNode marks "no parent" in predecessor arrays.
const noNode = ^uint32(0)

// newParents returns a predecessor array of n entries set to noNode.
func newParents(n int) []uint32 {
	parent := make([]uint32, n)
	for i := range parent {
		parent[i] = noNode
	}
	return parent
}

// newDistances returns n distances set to +Inf.
func newDistances(n int) []float64 {
	dist := make([]float64, n)
	for i := range dist {
		dist[i] = inf
	}
	return dist
}

// reconstructPath walks parent links back from t and returns the path s..t.
// It returns nil if the chain ends before reaching s.
func reconstructPath(parent []uint32, s, t uint32) []uint32 {
	var path []uint32
	for v := t; v != noNode; v = parent[v] {
		path = append(path, v)
		if v == s {
			slices.Reverse(path)
			return path
		}
		if len(path) > len(parent) {
			// Corrupt parent array with a cycle.
			return nil
		}
	}
	return nil
}
