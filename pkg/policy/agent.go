// Package policy implements the value-based curriculum decision agent:
// epsilon-greedy action selection over a learned state-value estimate, with
// experience replay and online one-step bootstrapped updates.
package policy

import (
	"errors"
	"fmt"
	"math/rand"
)

const (
	// StateDim is the fixed width of the state vector the agent accepts.
	StateDim = 64
	// ActionDim is the size of the discrete curriculum action space.
	ActionDim = 10

	hiddenDim      = 128
	bufferCapacity = 10000
	batchSize      = 32
	gamma          = 0.99
	learningRate   = 0.001

	epsilonStart = 1.0
	epsilonMin   = 0.01
	epsilonDecay = 0.995
)

// ErrStateDim reports a state vector of the wrong width. Unlike the normal
// degraded-data fallbacks, this is a configuration defect and is surfaced.
var ErrStateDim = errors.New("policy: state vector width mismatch")

// Agent is the shared process-wide curriculum policy: one value network,
// one experience buffer and one exploration schedule learned across all
// learners.
//
// Agent methods are not self-synchronizing. The curriculum optimizer wraps
// select/store/train in a single critical section; anyone else driving an
// Agent directly must serialize access the same way.
type Agent struct {
	net     *valueNetwork
	buffer  *replayBuffer
	opt     *adam
	rng     *rand.Rand
	epsilon float64
}

// NewAgent creates an agent with freshly-initialized parameters. rng seeds
// both weight initialization and the exploration/sampling draws; nil gets a
// fixed-seed source.
func NewAgent(rng *rand.Rand) *Agent {
	if rng == nil {
		rng = rand.New(rand.NewSource(42))
	}
	return &Agent{
		net:     newValueNetwork(StateDim, hiddenDim, ActionDim, rng),
		buffer:  newReplayBuffer(bufferCapacity),
		opt:     newAdam(learningRate),
		rng:     rng,
		epsilon: epsilonStart,
	}
}

// SelectAction chooses an action for the state: with probability epsilon a
// uniform random action, otherwise the highest-valued one.
func (a *Agent) SelectAction(state []float64) (int, error) {
	if len(state) != StateDim {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrStateDim, len(state), StateDim)
	}
	if a.rng.Float64() < a.epsilon {
		return a.rng.Intn(ActionDim), nil
	}
	return argmax(a.net.forward(state)), nil
}

// StoreTransition appends an experience to the replay buffer.
func (a *Agent) StoreTransition(t Transition) error {
	if len(t.State) != StateDim || len(t.NextState) != StateDim {
		return fmt.Errorf("%w: transition states %d/%d, want %d",
			ErrStateDim, len(t.State), len(t.NextState), StateDim)
	}
	if t.Action < 0 || t.Action >= ActionDim {
		return fmt.Errorf("policy: action %d out of range [0,%d)", t.Action, ActionDim)
	}
	a.buffer.add(t)
	return nil
}

// TrainStep performs one online update from replayed experience. With fewer
// than batchSize stored transitions it is a no-op reporting zero loss and
// leaving epsilon unchanged. Otherwise it samples a batch, regresses the
// taken-action value toward reward + (1-terminal)·γ·max_a' Q(next, a'), and
// decays epsilon.
func (a *Agent) TrainStep() float64 {
	if a.buffer.len() < batchSize {
		return 0
	}

	batch := a.buffer.sample(batchSize, a.rng)
	g := newGrads(a.net)
	var loss float64

	for _, t := range batch {
		c := a.net.forwardCached(t.State)

		target := t.Reward
		if !t.Terminal {
			target += gamma * maxOf(a.net.forward(t.NextState))
		}

		diff := c.q[t.Action] - target
		loss += diff * diff
		// d(mean squared error)/dQ[action]
		g.accumulate(a.net, c, t.Action, 2*diff/batchSize)
	}
	loss /= batchSize

	params, grad := a.net.tensors(g)
	a.opt.update(params, grad)

	if a.epsilon > epsilonMin {
		a.epsilon *= epsilonDecay
		if a.epsilon < epsilonMin {
			a.epsilon = epsilonMin
		}
	}

	return loss
}

// Values returns the estimated action values for a state (exploitation view).
func (a *Agent) Values(state []float64) ([]float64, error) {
	if len(state) != StateDim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrStateDim, len(state), StateDim)
	}
	return a.net.forward(state), nil
}

// Epsilon returns the current exploration rate.
func (a *Agent) Epsilon() float64 { return a.epsilon }

// BufferLen returns the number of stored transitions.
func (a *Agent) BufferLen() int { return a.buffer.len() }

// OldestTransition returns the front of the replay buffer and whether one
// exists.
func (a *Agent) OldestTransition() (Transition, bool) {
	if a.buffer.len() == 0 {
		return Transition{}, false
	}
	return a.buffer.oldest(), true
}
