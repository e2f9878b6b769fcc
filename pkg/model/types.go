package model

import (
	"time"
)

// InteractionEvent is one recorded attempt at a question or exercise.
// Events are immutable once stored; apply Normalize at the boundary before
// handing one to the core.
type InteractionEvent struct {
	Correct      bool      `json:"correct"`
	TimeTaken    float64   `json:"time_taken"` // seconds
	Attempts     int       `json:"attempts"`
	Difficulty   int       `json:"difficulty"` // 0..3
	DaysSince    float64   `json:"days_since"`
	Confidence   float64   `json:"confidence"` // 0..1
	Hesitation   float64   `json:"hesitation"`
	HintUsed     bool      `json:"hint_used"`
	Skip         bool      `json:"skip"`
	MasteryScore float64   `json:"mastery_score"` // 0..1
	Topic        string    `json:"topic,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Normalize substitutes documented defaults for missing or out-of-range
// fields. Upstream telemetry is best-effort, so malformed events are repaired
// here rather than rejected.
func (e *InteractionEvent) Normalize() {
	if e.Attempts < 1 {
		e.Attempts = 1
	}
	if e.Difficulty < 0 || e.Difficulty > 3 {
		e.Difficulty = 1
	}
	if e.TimeTaken < 0 {
		e.TimeTaken = 0
	}
	if e.DaysSince < 0 {
		e.DaysSince = 0
	}
	e.Confidence = clamp01(e.Confidence)
	e.MasteryScore = clamp01(e.MasteryScore)
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// StateSummary is the derived snapshot of a learner's recent behavior.
// Averages cover the most recent analysis window; Streak covers the whole log.
type StateSummary struct {
	AvgPerformance    float64 `json:"avg_performance"`
	AvgTime           float64 `json:"avg_time"`
	AvgAttempts       float64 `json:"avg_attempts"`
	CurrentDifficulty int     `json:"current_difficulty"`
	Streak            int     `json:"streak"`
	TotalInteractions int     `json:"total_interactions"`
}

// RetentionCurve models recall probability decaying over elapsed days.
type RetentionCurve struct {
	Days      []int     `json:"days"`
	Retention []float64 `json:"retention"`
	HalfLife  float64   `json:"half_life"`
}

// Confidence labels how much history backs a prediction.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Prediction is the sequence model's forward-looking estimate.
type Prediction struct {
	PredictedScore        float64    `json:"predicted_score"`
	RetentionProb         float64    `json:"retention_prob"`
	RecommendedDifficulty int        `json:"recommended_difficulty"`
	EstimatedTime         float64    `json:"estimated_time"`
	Confidence            Confidence `json:"confidence"`
}

// PredictorOutputs are the raw heads of the sequence model: next-performance
// estimate, retention probability, a distribution over the four difficulty
// levels, and a time-to-complete estimate in seconds.
type PredictorOutputs struct {
	Performance    float64
	Retention      float64
	DifficultyDist [4]float64
	TimeEstimate   float64
}

// Predictor is the capability interface for the sequence model, so the
// underlying numeric implementation can be swapped without touching the
// summarizer, policy, or optimizer.
type Predictor interface {
	Predict(history []InteractionEvent) (PredictorOutputs, error)
}

// LessonContext describes the content a decision is being made about.
type LessonContext struct {
	Topic          string  `json:"topic,omitempty"`
	Complexity     float64 `json:"complexity"` // 0..1
	Importance     float64 `json:"importance"` // 0..1
	CareerRelevant bool    `json:"career_relevant"`
}

// Outcome is the observed result of the learner's latest attempt, used to
// score the policy's decision.
type Outcome struct {
	Correct        bool    `json:"correct"`
	Attempts       int     `json:"attempts"`
	TimeTaken      float64 `json:"time_taken"`
	ExpectedTime   float64 `json:"expected_time"`
	ConfidenceHigh bool    `json:"confidence_high"`
	CareerRelevant bool    `json:"career_relevant"`
	HintUsed       bool    `json:"hint_used"`
	LessonComplete bool    `json:"lesson_complete"`
}

// ActionType enumerates the curriculum moves the policy can take.
type ActionType string

const (
	ActionSetDifficulty  ActionType = "set_difficulty"
	ActionAddPractice    ActionType = "add_practice"
	ActionAddExplanation ActionType = "add_explanation"
	ActionAddExample     ActionType = "add_example"
	ActionReview         ActionType = "review"
	ActionChallenge      ActionType = "challenge"
	ActionProgress       ActionType = "progress"
)

// Decision is a decoded curriculum action. Params carries the per-action
// payload (difficulty level, practice count, ...). Ephemeral, never persisted.
type Decision struct {
	Type   ActionType     `json:"type"`
	Params map[string]any `json:"params,omitempty"`
}

// OptimizationResult is returned by one optimize-next-lesson call.
type OptimizationResult struct {
	Decision     Decision `json:"decision"`
	Reward       float64  `json:"reward"`
	TrainingLoss float64  `json:"training_loss"`
	Epsilon      float64  `json:"epsilon"`
}

// Pacing recommendation for lesson delivery speed.
type Pacing string

const (
	PacingAccelerated Pacing = "accelerated"
	PacingNormal      Pacing = "normal"
	PacingSlower      Pacing = "slower"
)

// TimePattern summarizes how a learner spends time on exercises.
type TimePattern struct {
	AverageSeconds float64 `json:"average_seconds"`
	Pattern        string  `json:"pattern"` // methodical | balanced | quick | unknown
}

// Fingerprint is a learner's learning-pattern signature.
type Fingerprint struct {
	LearningSpeed        string      `json:"learning_speed"` // fast | medium | slow | unknown
	RetentionStrength    float64     `json:"retention_strength"`
	DifficultyPreference int         `json:"difficulty_preference"`
	TimePattern          TimePattern `json:"time_pattern"`
}

// CurriculumPlan is a coarse personalized sequence recommendation.
type CurriculumPlan struct {
	RecommendedDifficulty int    `json:"recommended_difficulty"`
	Pacing                Pacing `json:"pacing"`
	ChallengeReady        bool   `json:"challenge_ready"`
}
