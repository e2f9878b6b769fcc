package policy

import "math/rand"

// Transition is one stored experience: the state the agent saw, the action it
// took, the reward observed, and the resulting state.
type Transition struct {
	State     []float64
	Action    int
	Reward    float64
	NextState []float64
	Terminal  bool
}

// replayBuffer is a bounded FIFO of transitions. Replaying past experience
// decorrelates updates and lets the agent learn from more than just the most
// recent transition.
type replayBuffer struct {
	items    []Transition
	capacity int
}

func newReplayBuffer(capacity int) *replayBuffer {
	return &replayBuffer{capacity: capacity}
}

// add appends a transition, evicting the oldest when full.
func (b *replayBuffer) add(t Transition) {
	b.items = append(b.items, t)
	if len(b.items) > b.capacity {
		b.items = b.items[len(b.items)-b.capacity:]
	}
}

// sample draws n transitions uniformly at random.
func (b *replayBuffer) sample(n int, rng *rand.Rand) []Transition {
	out := make([]Transition, n)
	for i := range out {
		out[i] = b.items[rng.Intn(len(b.items))]
	}
	return out
}

func (b *replayBuffer) len() int { return len(b.items) }

// oldest returns the front of the buffer; callers must check len first.
func (b *replayBuffer) oldest() Transition { return b.items[0] }
