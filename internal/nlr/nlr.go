// Package nlr is a minimal Network-Level Reasoner: spec.md §1 scopes
// the real DeepPoly/symbolic propagation engine out as an external
// collaborator, but the solver engine still needs something concrete to
// drive warm-start and interval-based bound tightening end to end.
// Layer holds a dense affine transform with a reference to its
// predecessor; ReLU clipping between layers is modeled by intersecting
// the propagated interval with [0, +Inf), matching how the real NLR's
// piecewise-linear layers interact with the engine's PL constraints.
package nlr

import "math"

// Layer is one affine transform y = Wx + b, optionally followed by a
// ReLU clip, feeding the variable range [FirstVar, FirstVar+len(b)).
type Layer struct {
	Weights  [][]float64
	Biases   []float64
	FirstVar int
	ReLU     bool
}

func (l *Layer) outSize() int { return len(l.Biases) }

// NLR is an ordered feedforward network: each layer's output variables
// are the next layer's input variables, matching getLayerIndexToLayer
// in spec.md §6.
type NLR struct {
	Layers       []*Layer
	InputFirst   int
	InputSize    int
}

// New builds an NLR with inputs occupying [inputFirst, inputFirst+inputSize).
func New(inputFirst, inputSize int) *NLR {
	return &NLR{InputFirst: inputFirst, InputSize: inputSize}
}

// AddLayer appends a layer; FirstVar is assigned by the caller (the
// ingestion pipeline owns variable numbering).
func (n *NLR) AddLayer(weights [][]float64, biases []float64, firstVar int, relu bool) {
	n.Layers = append(n.Layers, &Layer{Weights: weights, Biases: biases, FirstVar: firstVar, ReLU: relu})
}

// GetLayer returns the i'th layer.
func (n *NLR) GetLayer(i int) *Layer { return n.Layers[i] }

// GetConstraintsInTopologicalOrder returns, for each ReLU layer in
// order, the variable indices of its output — the order the SMT core's
// EarliestReLU/Polarity branching strategies iterate over (spec.md
// §4.6).
func (n *NLR) GetConstraintsInTopologicalOrder() []int {
	var order []int
	for _, l := range n.Layers {
		if !l.ReLU {
			continue
		}
		for i := 0; i < l.outSize(); i++ {
			order = append(order, l.FirstVar+i)
		}
	}
	return order
}

// Evaluate runs a concrete forward pass: in is indexed by input
// position, out is written at each layer's output variable offset.
func (n *NLR) Evaluate(in []float64, out map[int]float64) {
	current := append([]float64(nil), in...)
	for _, l := range n.Layers {
		next := make([]float64, l.outSize())
		for i := range next {
			sum := l.Biases[i]
			for j, w := range l.Weights[i] {
				if j < len(current) {
					sum += w * current[j]
				}
			}
			if l.ReLU && sum < 0 {
				sum = 0
			}
			next[i] = sum
			out[l.FirstVar+i] = sum
		}
		current = next
	}
}

// Simulate evaluates the network on a batch of random input vectors
// drawn from the input bounds, the way processInputQuery's simulation
// phase does (spec.md §4.10) before MILP-based tightening.
func (n *NLR) Simulate(vectors [][]float64) []map[int]float64 {
	results := make([]map[int]float64, len(vectors))
	for i, v := range vectors {
		out := map[int]float64{}
		n.Evaluate(v, out)
		results[i] = out
	}
	return results
}

// Bounds is a per-variable [lb, ub] interval keyed by variable index.
type Bounds map[int][2]float64

// IntervalBoundPropagation is the interval-arithmetic stand-in for the
// real NLR's symbolicBoundPropagation/deepPolyPropagation (spec.md §6):
// it propagates input intervals layer by layer and returns tightened
// bounds for every hidden and output variable. It is sound but looser
// than symbolic/DeepPoly propagation, which is an acceptable
// approximation for a from-scratch NLR stand-in.
func (n *NLR) IntervalBoundPropagation(inputBounds Bounds) Bounds {
	result := Bounds{}
	current := make([][2]float64, n.InputSize)
	for i := 0; i < n.InputSize; i++ {
		if b, ok := inputBounds[n.InputFirst+i]; ok {
			current[i] = b
		} else {
			current[i] = [2]float64{math.Inf(-1), math.Inf(1)}
		}
	}

	for _, l := range n.Layers {
		next := make([][2]float64, l.outSize())
		for i := range next {
			lo, hi := l.Biases[i], l.Biases[i]
			for j, w := range l.Weights[i] {
				if j >= len(current) {
					continue
				}
				cl, ch := current[j][0], current[j][1]
				if w >= 0 {
					lo += w * cl
					hi += w * ch
				} else {
					lo += w * ch
					hi += w * cl
				}
			}
			if l.ReLU {
				if lo < 0 {
					lo = 0
				}
				if hi < 0 {
					hi = 0
				}
			}
			next[i] = [2]float64{lo, hi}
			result[l.FirstVar+i] = next[i]
		}
		current = next
	}
	return result
}
