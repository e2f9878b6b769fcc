package learner

import (
	"github.com/aaaravM/PathLearn/pkg/model"
)

// learningSpeed classifies how quickly the learner reaches mastery. A mastery
// point is the end of any 5-event window answered fully correct; the mean
// position of those points determines the class.
func learningSpeed(history []model.InteractionEvent) string {
	if len(history) < 10 {
		return "unknown"
	}

	var masteryIdx []int
	for i := 0; i+5 <= len(history); i++ {
		allCorrect := true
		for _, ev := range history[i : i+5] {
			if !ev.Correct {
				allCorrect = false
				break
			}
		}
		if allCorrect {
			masteryIdx = append(masteryIdx, i+5)
		}
	}
	if len(masteryIdx) == 0 {
		return "slow"
	}

	var sum float64
	for _, idx := range masteryIdx {
		sum += float64(idx)
	}
	avg := sum / float64(len(masteryIdx))
	switch {
	case avg < 10:
		return "fast"
	case avg < 20:
		return "medium"
	default:
		return "slow"
	}
}

// retentionStrength compares early and late accuracy. Below 20 events there is
// not enough spread to measure, so it reports a neutral 0.5.
func retentionStrength(history []model.InteractionEvent) float64 {
	if len(history) < 20 {
		return 0.5
	}
	return (accuracy(history[:10]) + accuracy(history[len(history)-10:])) / 2
}

// difficultyPreference finds the level where the learner performs in the
// productive-struggle band [0.7, 0.85], preferring the best accuracy within
// it. Defaults to intermediate.
func difficultyPreference(history []model.InteractionEvent) int {
	if len(history) == 0 {
		return 1
	}

	correct := map[int]float64{}
	seen := map[int]float64{}
	for _, ev := range history {
		seen[ev.Difficulty]++
		if ev.Correct {
			correct[ev.Difficulty]++
		}
	}

	best, bestScore := 1, 0.0
	for level, n := range seen {
		avg := correct[level] / n
		if avg >= 0.7 && avg <= 0.85 && avg > bestScore {
			bestScore = avg
			best = level
		}
	}
	return best
}

// timePattern labels the learner's pace from average answer time.
func timePattern(history []model.InteractionEvent) model.TimePattern {
	if len(history) == 0 {
		return model.TimePattern{Pattern: "unknown"}
	}

	var sum float64
	for _, ev := range history {
		sum += ev.TimeTaken
	}
	avg := sum / float64(len(history))

	pattern := "balanced"
	if avg > 180 {
		pattern = "methodical"
	} else if avg < 60 {
		pattern = "quick"
	}
	return model.TimePattern{AverageSeconds: avg, Pattern: pattern}
}

func accuracy(events []model.InteractionEvent) float64 {
	if len(events) == 0 {
		return 0
	}
	var correct float64
	for _, ev := range events {
		if ev.Correct {
			correct++
		}
	}
	return correct / float64(len(events))
}
