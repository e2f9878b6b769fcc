// Package curriculum composes the learner summary, the retention model and
// the policy agent into next-lesson decisions.
package curriculum

import (
	"sync"

	"github.com/aaaravM/PathLearn/pkg/model"
	"github.com/aaaravM/PathLearn/pkg/policy"
)

// Normalization scales used when packing summaries into state vectors.
// Fixed, not learned.
const (
	timeScale         = 300.0
	attemptsScale     = 5.0
	difficultyScale   = 3.0
	streakScale       = 10.0
	interactionsScale = 100.0
)

// Optimizer drives the shared policy agent. All learners' optimization calls
// flow through the same instance: one global curriculum policy learned across
// the population. The mutex serializes state-read, experience-store and
// parameter-update as a single atomic unit.
type Optimizer struct {
	mu    sync.Mutex
	agent *policy.Agent
}

// NewOptimizer wraps the given agent. A nil agent gets a default-constructed
// one.
func NewOptimizer(agent *policy.Agent) *Optimizer {
	if agent == nil {
		agent = policy.NewAgent(nil)
	}
	return &Optimizer{agent: agent}
}

// Agent exposes the underlying policy agent for inspection in tests. Callers
// must not drive training through it concurrently with OptimizeNextLesson.
func (o *Optimizer) Agent() *policy.Agent {
	return o.agent
}

// SnapshotAgent serializes the policy weights under the same lock that
// guards training.
func (o *Optimizer) SnapshotAgent() ([]byte, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.agent.Snapshot()
}

// RestoreAgent replaces the policy weights under the training lock. An empty
// blob is a no-op.
func (o *Optimizer) RestoreAgent(blob []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.agent.Restore(blob)
}

// BuildState packs a learner summary and lesson context into the fixed-width
// state vector. A nil summary produces the all-zero cold-start state, which
// is distinct from any real learner state.
func BuildState(summary *model.StateSummary, lesson model.LessonContext) []float64 {
	state := make([]float64, policy.StateDim)
	if summary == nil {
		return state
	}
	state[0] = summary.AvgPerformance
	state[1] = summary.AvgTime / timeScale
	state[2] = summary.AvgAttempts / attemptsScale
	state[3] = float64(summary.CurrentDifficulty) / difficultyScale
	state[4] = float64(summary.Streak) / streakScale
	state[5] = float64(summary.TotalInteractions) / interactionsScale
	state[6] = lesson.Complexity
	state[7] = lesson.Importance
	return state
}

// Reward scores a learning outcome. Pure and deterministic: correctness
// dominates, efficient attempts and reasonable pacing earn bonuses, excessive
// struggle and hint reliance cost.
func Reward(outcome model.Outcome) float64 {
	var reward float64

	if outcome.Correct {
		reward += 10
	} else {
		reward -= 2
	}

	attempts := outcome.Attempts
	if attempts < 1 {
		attempts = 1
	}
	switch {
	case attempts == 1:
		reward += 5
	case attempts <= 3:
		reward += 2
	default:
		reward -= float64(attempts - 3)
	}

	// Missing expected time means the caller had no estimate; assume the
	// standard two minutes rather than skewing the ratio.
	expected := outcome.ExpectedTime
	if expected <= 0 {
		expected = 120
	}
	ratio := outcome.TimeTaken / expected
	if ratio >= 0.5 && ratio <= 1.5 {
		reward += 3
	} else if ratio > 2.0 {
		reward -= 2
	}

	if outcome.ConfidenceHigh {
		reward += 2
	}
	if outcome.CareerRelevant {
		reward += 1
	}
	if outcome.HintUsed {
		reward -= 0.5
	}

	return reward
}

// RecommendDifficulty maps a predicted next-performance score to a level.
// Thresholds are exclusive lower bounds.
func RecommendDifficulty(predictedScore float64) int {
	switch {
	case predictedScore > 0.85:
		return 3
	case predictedScore > 0.75:
		return 2
	case predictedScore > 0.60:
		return 1
	default:
		return 0
	}
}

// RecommendPacing suggests delivery speed from the current summary. A nil
// summary (new learner) gets normal pacing.
func RecommendPacing(summary *model.StateSummary) model.Pacing {
	if summary == nil {
		return model.PacingNormal
	}
	if summary.AvgPerformance > 0.8 && summary.AvgTime < 90 {
		return model.PacingAccelerated
	}
	if summary.AvgPerformance < 0.6 || summary.AvgTime > 180 {
		return model.PacingSlower
	}
	return model.PacingNormal
}

// ShouldReview reports whether the concept behind the curve needs review:
// projected retention at the end of the horizon below 0.7.
func ShouldReview(curve model.RetentionCurve) bool {
	if len(curve.Retention) == 0 {
		return false
	}
	return curve.Retention[len(curve.Retention)-1] < 0.7
}

// Plan assembles a coarse curriculum plan from a prediction and summary.
func Plan(prediction model.Prediction, summary *model.StateSummary) model.CurriculumPlan {
	challengeReady := false
	if summary != nil && summary.AvgPerformance > 0.8 {
		challengeReady = true
	}
	return model.CurriculumPlan{
		RecommendedDifficulty: RecommendDifficulty(prediction.PredictedScore),
		Pacing:                RecommendPacing(summary),
		ChallengeReady:        challengeReady,
	}
}

// OptimizeNextLesson runs one decision/learn cycle: build the state, let the
// agent pick an action, score the observed outcome, store the transition,
// take one training step and decode the action.
//
// Known limitation, preserved deliberately: the "next" state is packed from
// the same summary as the current state, since the summary is not re-derived
// mid-call. The caller's subsequent interaction submission refreshes it.
func (o *Optimizer) OptimizeNextLesson(summary *model.StateSummary, lesson model.LessonContext, outcome model.Outcome) (model.OptimizationResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	state := BuildState(summary, lesson)

	action, err := o.agent.SelectAction(state)
	if err != nil {
		return model.OptimizationResult{}, err
	}

	reward := Reward(outcome)
	nextState := BuildState(summary, lesson)

	if err := o.agent.StoreTransition(policy.Transition{
		State:     state,
		Action:    action,
		Reward:    reward,
		NextState: nextState,
		Terminal:  outcome.LessonComplete,
	}); err != nil {
		return model.OptimizationResult{}, err
	}

	loss := o.agent.TrainStep()

	return model.OptimizationResult{
		Decision:     policy.DecodeAction(action),
		Reward:       reward,
		TrainingLoss: loss,
		Epsilon:      o.agent.Epsilon(),
	}, nil
}
