package policy

import (
	"github.com/aaaravM/PathLearn/pkg/model"
)

// DecodeAction maps an action index to its curriculum decision. Pure and
// stateless: the same index always yields the same decision.
//
//	0-3: set difficulty (0=beginner .. 3=expert)
//	4:   add practice problems
//	5:   add conceptual explanation
//	6:   add career-aligned example
//	7:   review previous concept
//	8:   challenge problem
//	9:   advance to next topic
//
// An out-of-range index falls back to the intermediate-difficulty action; it
// cannot occur for actions produced by the agent itself.
func DecodeAction(action int) model.Decision {
	switch action {
	case 0, 1, 2, 3:
		return model.Decision{Type: model.ActionSetDifficulty, Params: map[string]any{"level": action}}
	case 4:
		return model.Decision{Type: model.ActionAddPractice, Params: map[string]any{"count": 3}}
	case 5:
		return model.Decision{Type: model.ActionAddExplanation, Params: map[string]any{"style": "conceptual"}}
	case 6:
		return model.Decision{Type: model.ActionAddExample, Params: map[string]any{"career_aligned": true}}
	case 7:
		return model.Decision{Type: model.ActionReview, Params: map[string]any{"depth": "deep"}}
	case 8:
		return model.Decision{Type: model.ActionChallenge, Params: map[string]any{"difficulty": "high"}}
	case 9:
		return model.Decision{Type: model.ActionProgress, Params: map[string]any{"next_topic": true}}
	default:
		return model.Decision{Type: model.ActionSetDifficulty, Params: map[string]any{"level": 1}}
	}
}
