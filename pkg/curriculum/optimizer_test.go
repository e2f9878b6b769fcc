package curriculum

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aaaravM/PathLearn/pkg/model"
	"github.com/aaaravM/PathLearn/pkg/policy"
)

func TestBuildState_ColdStart(t *testing.T) {
	state := BuildState(nil, model.LessonContext{Complexity: 0.9, Importance: 0.9})

	assert.Len(t, state, policy.StateDim)
	for _, v := range state {
		assert.Equal(t, 0.0, v)
	}
}

func TestBuildState_Packing(t *testing.T) {
	summary := &model.StateSummary{
		AvgPerformance:    0.7,
		AvgTime:           150,
		AvgAttempts:       2.5,
		CurrentDifficulty: 3,
		Streak:            5,
		TotalInteractions: 50,
	}
	lesson := model.LessonContext{Complexity: 0.6, Importance: 0.4}

	state := BuildState(summary, lesson)

	assert.Len(t, state, policy.StateDim)
	assert.Equal(t, 0.7, state[0])
	assert.Equal(t, 0.5, state[1])  // 150/300
	assert.Equal(t, 0.5, state[2])  // 2.5/5
	assert.Equal(t, 1.0, state[3])  // 3/3
	assert.Equal(t, 0.5, state[4])  // 5/10
	assert.Equal(t, 0.5, state[5])  // 50/100
	assert.Equal(t, 0.6, state[6])
	assert.Equal(t, 0.4, state[7])
	for _, v := range state[8:] {
		assert.Equal(t, 0.0, v)
	}
}

func TestReward_Components(t *testing.T) {
	tests := []struct {
		name    string
		outcome model.Outcome
		want    float64
	}{
		{
			name:    "first try correct with good pacing",
			outcome: model.Outcome{Correct: true, Attempts: 1, TimeTaken: 100, ExpectedTime: 120},
			want:    18, // 10 + 5 + 3
		},
		{
			name:    "correct within three attempts",
			outcome: model.Outcome{Correct: true, Attempts: 3, TimeTaken: 100, ExpectedTime: 120},
			want:    15, // 10 + 2 + 3
		},
		{
			name:    "incorrect and slow with many attempts",
			outcome: model.Outcome{Correct: false, Attempts: 6, TimeTaken: 300, ExpectedTime: 120},
			want:    -7, // -2 - 3 - 2 (ratio 2.5)
		},
		{
			name:    "time ratio outside band but not slow",
			outcome: model.Outcome{Correct: true, Attempts: 1, TimeTaken: 30, ExpectedTime: 120},
			want:    15, // 10 + 5 + 0 (ratio 0.25)
		},
		{
			name: "all bonuses and hint penalty",
			outcome: model.Outcome{
				Correct: true, Attempts: 1, TimeTaken: 100, ExpectedTime: 120,
				ConfidenceHigh: true, CareerRelevant: true, HintUsed: true,
			},
			want: 20.5, // 18 + 2 + 1 - 0.5
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Reward(tt.outcome), 1e-12)
		})
	}
}

func TestReward_Pure(t *testing.T) {
	outcome := model.Outcome{Correct: true, Attempts: 2, TimeTaken: 90, ExpectedTime: 100}
	first := Reward(outcome)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Reward(outcome))
	}
}

func TestRecommendDifficulty_Boundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  int
	}{
		{0.90, 3},
		{0.86, 3},
		{0.85, 2}, // boundary is an exclusive lower bound
		{0.80, 2},
		{0.76, 2},
		{0.75, 1},
		{0.65, 1},
		{0.61, 1},
		{0.60, 0},
		{0.40, 0},
		{0.0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RecommendDifficulty(tt.score), "score %v", tt.score)
	}
}

func TestRecommendPacing(t *testing.T) {
	assert.Equal(t, model.PacingNormal, RecommendPacing(nil))
	assert.Equal(t, model.PacingAccelerated,
		RecommendPacing(&model.StateSummary{AvgPerformance: 0.9, AvgTime: 60}))
	assert.Equal(t, model.PacingSlower,
		RecommendPacing(&model.StateSummary{AvgPerformance: 0.4, AvgTime: 100}))
	assert.Equal(t, model.PacingSlower,
		RecommendPacing(&model.StateSummary{AvgPerformance: 0.7, AvgTime: 200}))
	assert.Equal(t, model.PacingNormal,
		RecommendPacing(&model.StateSummary{AvgPerformance: 0.7, AvgTime: 120}))
}

func TestShouldReview(t *testing.T) {
	assert.False(t, ShouldReview(model.RetentionCurve{}))
	assert.True(t, ShouldReview(model.RetentionCurve{Retention: []float64{0.9, 0.5}}))
	assert.False(t, ShouldReview(model.RetentionCurve{Retention: []float64{0.5, 0.9}}))
}

func TestOptimizeNextLesson_Flow(t *testing.T) {
	o := NewOptimizer(policy.NewAgent(rand.New(rand.NewSource(1))))

	summary := &model.StateSummary{AvgPerformance: 0.8, AvgTime: 100, AvgAttempts: 1.5, CurrentDifficulty: 2, Streak: 4, TotalInteractions: 30}
	lesson := model.LessonContext{Complexity: 0.5, Importance: 0.5}
	outcome := model.Outcome{Correct: true, Attempts: 1, TimeTaken: 100, ExpectedTime: 120}

	res, err := o.OptimizeNextLesson(summary, lesson, outcome)
	assert.NoError(t, err)
	assert.Equal(t, 18.0, res.Reward)
	assert.NotEmpty(t, res.Decision.Type)
	// First call: buffer holds a single transition, update is a no-op.
	assert.Equal(t, 0.0, res.TrainingLoss)
	assert.Equal(t, 1.0, res.Epsilon)

	// Once the buffer fills past the batch size, updates run and epsilon
	// starts decaying.
	var last model.OptimizationResult
	for i := 0; i < 40; i++ {
		last, err = o.OptimizeNextLesson(summary, lesson, outcome)
		assert.NoError(t, err)
	}
	assert.Less(t, last.Epsilon, 1.0)
	assert.GreaterOrEqual(t, last.Epsilon, 0.01)
	assert.Equal(t, 41, o.Agent().BufferLen())
}

func TestOptimizeNextLesson_ColdStartLearner(t *testing.T) {
	o := NewOptimizer(policy.NewAgent(rand.New(rand.NewSource(2))))

	res, err := o.OptimizeNextLesson(nil, model.LessonContext{}, model.Outcome{Correct: false, Attempts: 1, TimeTaken: 60, ExpectedTime: 60})
	assert.NoError(t, err)
	// -2 incorrect + 5 first try + 3 pacing
	assert.Equal(t, 6.0, res.Reward)
}

func TestOptimizeNextLesson_ConcurrentCallers(t *testing.T) {
	o := NewOptimizer(policy.NewAgent(rand.New(rand.NewSource(3))))
	summary := &model.StateSummary{AvgPerformance: 0.5, AvgTime: 120, AvgAttempts: 2, CurrentDifficulty: 1, Streak: 1, TotalInteractions: 10}
	outcome := model.Outcome{Correct: true, Attempts: 2, TimeTaken: 110, ExpectedTime: 120}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				_, err := o.OptimizeNextLesson(summary, model.LessonContext{}, outcome)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 200, o.Agent().BufferLen())
	eps := o.Agent().Epsilon()
	assert.GreaterOrEqual(t, eps, 0.01)
	assert.LessOrEqual(t, eps, 1.0)
}
