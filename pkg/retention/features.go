package retention

import (
	"github.com/aaaravM/PathLearn/pkg/model"
)

// featureDim is the fixed per-event input width. The tail positions are
// reserved for future context features and stay zero.
const featureDim = 20

// Normalization scales for raw event fields. Fixed, not learned.
const (
	timeScale     = 300.0
	attemptsScale = 5.0
	diffScale     = 3.0
	recencyScale  = 30.0
)

// featurize reduces one event to its fixed-width numeric vector:
// [correct, time, attempts, difficulty, recency, confidence, hesitation,
// hint, skip, mastery, reserved...].
func featurize(ev model.InteractionEvent) [featureDim]float64 {
	var f [featureDim]float64
	if ev.Correct {
		f[0] = 1
	}
	f[1] = ev.TimeTaken / timeScale
	f[2] = float64(ev.Attempts) / attemptsScale
	f[3] = float64(ev.Difficulty) / diffScale
	f[4] = ev.DaysSince / recencyScale
	f[5] = ev.Confidence
	f[6] = ev.Hesitation
	if ev.HintUsed {
		f[7] = 1
	}
	if ev.Skip {
		f[8] = 1
	}
	f[9] = ev.MasteryScore
	return f
}
