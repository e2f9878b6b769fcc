package learner

import (
	"github.com/aaaravM/PathLearn/pkg/memory"
	"github.com/aaaravM/PathLearn/pkg/model"
)

// summaryWindow is how many recent events feed the rolling averages.
const summaryWindow = 10

// Summarize derives a state summary from the log. It returns nil when the log
// is empty: "no data yet" is distinct from a zero-valued state, and callers
// substitute their own defaults on nil.
func Summarize(log *memory.InteractionLog) *model.StateSummary {
	total := log.Len()
	if total == 0 {
		return nil
	}

	window := log.Recent(summaryWindow)

	var perf, timeSum, attempts float64
	for _, ev := range window {
		if ev.Correct {
			perf++
		}
		timeSum += ev.TimeTaken
		attempts += float64(ev.Attempts)
	}
	n := float64(len(window))

	return &model.StateSummary{
		AvgPerformance:    perf / n,
		AvgTime:           timeSum / n,
		AvgAttempts:       attempts / n,
		CurrentDifficulty: window[len(window)-1].Difficulty,
		Streak:            streak(log.All()),
		TotalInteractions: total,
	}
}

// streak counts trailing consecutive correct events, newest backwards.
func streak(events []model.InteractionEvent) int {
	count := 0
	for i := len(events) - 1; i >= 0; i-- {
		if !events[i].Correct {
			break
		}
		count++
	}
	return count
}
