package native

import "math"

const zeroThreshold = 1e-35

func (n *node) eval(x []float64) float64 {
	for !n.leaf() {
		if n.goLeft(x[*n.SplitFeature]) {
			n = n.LeftChild
		} else {
			n = n.RightChild
		}
	}
	return n.LeafValue
}

func (n *node) goLeft(v float64) bool {
	if n.cats != nil {
		// Unknown or negative categories always go right.
		if math.IsNaN(v) || v < 0 {
			return false
		}
		_, ok := n.cats[int(v)]
		return ok
	}

	switch n.MissingType {
	case "NaN":
		if math.IsNaN(v) {
			return n.DefaultLeft
		}
	case "Zero":
		if math.IsNaN(v) || math.Abs(v) <= zeroThreshold {
			return n.DefaultLeft
		}
	default:
		if math.IsNaN(v) {
			v = 0
		}
	}
	return v <= n.num
}
