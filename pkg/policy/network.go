package policy

import (
	"math"
	"math/rand"
)

// valueNetwork is a small fully-connected network estimating action values:
// Linear(stateDim, hidden) -> ReLU -> Linear(hidden, hidden) -> ReLU ->
// Linear(hidden, actionDim).
type valueNetwork struct {
	l1, l2, l3 *dense
}

type dense struct {
	W [][]float64 // out x in
	B []float64
}

func newDense(in, out int, rng *rand.Rand) *dense {
	scale := math.Sqrt(2.0 / float64(in))
	d := &dense{
		W: make([][]float64, out),
		B: make([]float64, out),
	}
	for i := range d.W {
		d.W[i] = make([]float64, in)
		for j := range d.W[i] {
			d.W[i][j] = rng.NormFloat64() * scale
		}
	}
	return d
}

func (d *dense) forward(x []float64) []float64 {
	out := make([]float64, len(d.W))
	for i, row := range d.W {
		sum := d.B[i]
		for j, w := range row {
			sum += w * x[j]
		}
		out[i] = sum
	}
	return out
}

func newValueNetwork(stateDim, hidden, actionDim int, rng *rand.Rand) *valueNetwork {
	return &valueNetwork{
		l1: newDense(stateDim, hidden, rng),
		l2: newDense(hidden, hidden, rng),
		l3: newDense(hidden, actionDim, rng),
	}
}

// forward returns action values for a state.
func (n *valueNetwork) forward(state []float64) []float64 {
	return n.l3.forward(relu(n.l2.forward(relu(n.l1.forward(state)))))
}

// forwardCached runs forward keeping pre-activations for backprop.
type cache struct {
	x      []float64
	z1, a1 []float64
	z2, a2 []float64
	q      []float64
}

func (n *valueNetwork) forwardCached(state []float64) cache {
	c := cache{x: state}
	c.z1 = n.l1.forward(state)
	c.a1 = relu(c.z1)
	c.z2 = n.l2.forward(c.a1)
	c.a2 = relu(c.z2)
	c.q = n.l3.forward(c.a2)
	return c
}

// grads mirrors the network's parameter shapes for accumulation.
type grads struct {
	l1, l2, l3 denseGrads
}

type denseGrads struct {
	W [][]float64
	B []float64
}

func newGrads(n *valueNetwork) *grads {
	mk := func(d *dense) denseGrads {
		g := denseGrads{W: make([][]float64, len(d.W)), B: make([]float64, len(d.B))}
		for i := range g.W {
			g.W[i] = make([]float64, len(d.W[i]))
		}
		return g
	}
	return &grads{l1: mk(n.l1), l2: mk(n.l2), l3: mk(n.l3)}
}

// accumulate backpropagates the squared-error gradient for a single sample:
// dLoss/dQ[action] = dq, all other action outputs have zero gradient.
func (g *grads) accumulate(n *valueNetwork, c cache, action int, dq float64) {
	// Output layer: only the taken action's row receives gradient.
	da2 := make([]float64, len(c.a2))
	for j := range c.a2 {
		g.l3.W[action][j] += dq * c.a2[j]
		da2[j] = dq * n.l3.W[action][j]
	}
	g.l3.B[action] += dq

	dz2 := reluBackward(da2, c.z2)
	da1 := make([]float64, len(c.a1))
	for i := range dz2 {
		if dz2[i] == 0 {
			continue
		}
		for j := range c.a1 {
			g.l2.W[i][j] += dz2[i] * c.a1[j]
			da1[j] += dz2[i] * n.l2.W[i][j]
		}
		g.l2.B[i] += dz2[i]
	}

	dz1 := reluBackward(da1, c.z1)
	for i := range dz1 {
		if dz1[i] == 0 {
			continue
		}
		for j := range c.x {
			g.l1.W[i][j] += dz1[i] * c.x[j]
		}
		g.l1.B[i] += dz1[i]
	}
}

// tensors exposes parameters and matching gradients in a stable order for the
// optimizer.
func (n *valueNetwork) tensors(g *grads) (params, grad [][]float64) {
	params = [][]float64{n.l1.B, n.l2.B, n.l3.B}
	grad = [][]float64{g.l1.B, g.l2.B, g.l3.B}
	for i := range n.l1.W {
		params = append(params, n.l1.W[i])
		grad = append(grad, g.l1.W[i])
	}
	for i := range n.l2.W {
		params = append(params, n.l2.W[i])
		grad = append(grad, g.l2.W[i])
	}
	for i := range n.l3.W {
		params = append(params, n.l3.W[i])
		grad = append(grad, g.l3.W[i])
	}
	return params, grad
}

func relu(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		if v > 0 {
			out[i] = v
		}
	}
	return out
}

func reluBackward(dOut, z []float64) []float64 {
	out := make([]float64, len(dOut))
	for i := range dOut {
		if z[i] > 0 {
			out[i] = dOut[i]
		}
	}
	return out
}

func argmax(x []float64) int {
	best := 0
	for i := 1; i < len(x); i++ {
		if x[i] > x[best] {
			best = i
		}
	}
	return best
}

func maxOf(x []float64) float64 {
	m := x[0]
	for _, v := range x[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
