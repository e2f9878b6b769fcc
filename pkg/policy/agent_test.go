package policy

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aaaravM/PathLearn/pkg/model"
)

func testState(seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	s := make([]float64, StateDim)
	for i := range s {
		s[i] = rng.Float64()
	}
	return s
}

func testTransition(rng *rand.Rand) Transition {
	return Transition{
		State:     testState(rng.Int63()),
		Action:    rng.Intn(ActionDim),
		Reward:    rng.Float64()*20 - 5,
		NextState: testState(rng.Int63()),
	}
}

func fillBuffer(a *Agent, n int, rng *rand.Rand) {
	for i := 0; i < n; i++ {
		if err := a.StoreTransition(testTransition(rng)); err != nil {
			panic(err)
		}
	}
}

func TestSelectAction_WrongStateWidth(t *testing.T) {
	a := NewAgent(rand.New(rand.NewSource(1)))
	_, err := a.SelectAction(make([]float64, 8))
	assert.ErrorIs(t, err, ErrStateDim)
}

func TestSelectAction_ExploresFullActionSpace(t *testing.T) {
	a := NewAgent(rand.New(rand.NewSource(1)))
	assert.Equal(t, 1.0, a.Epsilon())

	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		act, err := a.SelectAction(testState(7))
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, act, 0)
		assert.Less(t, act, ActionDim)
		seen[act] = true
	}
	// With epsilon=1.0 all ten actions should show up in 500 draws.
	assert.Len(t, seen, ActionDim)
}

func TestTrainStep_NoOpBelowBatchSize(t *testing.T) {
	a := NewAgent(rand.New(rand.NewSource(2)))
	rng := rand.New(rand.NewSource(3))
	fillBuffer(a, batchSize-1, rng)

	before := a.Epsilon()
	loss := a.TrainStep()

	assert.Equal(t, 0.0, loss)
	assert.Equal(t, before, a.Epsilon())
}

func TestTrainStep_EpsilonSchedule(t *testing.T) {
	a := NewAgent(rand.New(rand.NewSource(4)))
	rng := rand.New(rand.NewSource(5))
	fillBuffer(a, batchSize, rng)

	prev := a.Epsilon()
	for i := 0; i < 200; i++ {
		a.TrainStep()
		eps := a.Epsilon()
		assert.LessOrEqual(t, eps, prev)
		assert.GreaterOrEqual(t, eps, epsilonMin)
		assert.LessOrEqual(t, eps, 1.0)
		prev = eps
	}

	assert.InDelta(t, math.Pow(epsilonDecay, 200), a.Epsilon(), 1e-9)
}

func TestTrainStep_EpsilonFloor(t *testing.T) {
	a := NewAgent(rand.New(rand.NewSource(6)))
	rng := rand.New(rand.NewSource(7))
	fillBuffer(a, batchSize, rng)

	// 0.995^n reaches 0.01 near n=919; overshoot well past it.
	for i := 0; i < 1100; i++ {
		a.TrainStep()
	}
	assert.Equal(t, epsilonMin, a.Epsilon())
}

func TestTrainStep_ReducesLossOnFixedTarget(t *testing.T) {
	a := NewAgent(rand.New(rand.NewSource(8)))

	// One repeated terminal transition: the taken action's value must
	// converge toward the fixed reward.
	tr := Transition{
		State:     testState(100),
		Action:    3,
		Reward:    5,
		NextState: testState(101),
		Terminal:  true,
	}
	for i := 0; i < batchSize; i++ {
		assert.NoError(t, a.StoreTransition(tr))
	}

	first := a.TrainStep()
	var last float64
	for i := 0; i < 300; i++ {
		last = a.TrainStep()
	}
	assert.Less(t, last, first)

	vals, err := a.Values(tr.State)
	assert.NoError(t, err)
	assert.InDelta(t, 5.0, vals[3], 0.5)
}

func TestBufferEviction(t *testing.T) {
	a := NewAgent(rand.New(rand.NewSource(9)))

	first := Transition{
		State:     testState(1),
		Action:    0,
		Reward:    -123, // marker
		NextState: testState(2),
	}
	assert.NoError(t, a.StoreTransition(first))

	rng := rand.New(rand.NewSource(10))
	fillBuffer(a, bufferCapacity, rng)

	assert.Equal(t, bufferCapacity, a.BufferLen())
	oldest, ok := a.OldestTransition()
	assert.True(t, ok)
	assert.NotEqual(t, first.Reward, oldest.Reward)
}

func TestStoreTransition_Validation(t *testing.T) {
	a := NewAgent(rand.New(rand.NewSource(11)))

	err := a.StoreTransition(Transition{State: make([]float64, 3), NextState: testState(1)})
	assert.ErrorIs(t, err, ErrStateDim)

	err = a.StoreTransition(Transition{State: testState(1), NextState: testState(2), Action: ActionDim})
	assert.Error(t, err)
}

func TestDecodeAction_PureTable(t *testing.T) {
	for i := 0; i < 4; i++ {
		d := DecodeAction(i)
		assert.Equal(t, model.ActionSetDifficulty, d.Type)
		assert.Equal(t, i, d.Params["level"])
	}

	assert.Equal(t, model.ActionAddPractice, DecodeAction(4).Type)
	assert.Equal(t, 3, DecodeAction(4).Params["count"])
	assert.Equal(t, model.ActionAddExplanation, DecodeAction(5).Type)
	assert.Equal(t, model.ActionAddExample, DecodeAction(6).Type)
	assert.Equal(t, model.ActionReview, DecodeAction(7).Type)
	assert.Equal(t, model.ActionChallenge, DecodeAction(8).Type)
	assert.Equal(t, model.ActionProgress, DecodeAction(9).Type)

	// Unknown index falls back to intermediate difficulty.
	fallback := DecodeAction(42)
	assert.Equal(t, model.ActionSetDifficulty, fallback.Type)
	assert.Equal(t, 1, fallback.Params["level"])

	// Stateless: repeated decoding is identical.
	assert.Equal(t, DecodeAction(0), DecodeAction(0))
}

func TestSnapshotRoundTrip(t *testing.T) {
	a := NewAgent(rand.New(rand.NewSource(12)))
	rng := rand.New(rand.NewSource(13))
	fillBuffer(a, batchSize, rng)
	for i := 0; i < 50; i++ {
		a.TrainStep()
	}

	state := testState(55)
	want, err := a.Values(state)
	assert.NoError(t, err)

	blob, err := a.Snapshot()
	assert.NoError(t, err)

	b := NewAgent(rand.New(rand.NewSource(99)))
	assert.NoError(t, b.Restore(blob))

	got, err := b.Values(state)
	assert.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, a.Epsilon(), b.Epsilon())
}

func TestRestoreMissingOrBadBlob(t *testing.T) {
	a := NewAgent(rand.New(rand.NewSource(14)))
	state := testState(3)
	before, _ := a.Values(state)

	assert.NoError(t, a.Restore(nil))
	assert.Error(t, a.Restore([]byte("garbage")))

	after, _ := a.Values(state)
	assert.Equal(t, before, after)
}
