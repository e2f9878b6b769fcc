package learner

import (
	"sync"

	"github.com/aaaravM/PathLearn/pkg/memory"
	"github.com/aaaravM/PathLearn/pkg/model"
)

// Profile owns one learner's interaction log and derived views. A profile is
// created on first contact and lives for the learner's session; it is mutated
// only by the request handling that learner, so profiles for different
// learners never contend.
type Profile struct {
	mu  sync.Mutex
	id  string
	log *memory.InteractionLog

	// careerPath is set when the learner picks a track; it only informs
	// content selection upstream.
	careerPath string
}

// NewProfile creates an empty profile for the given learner id.
func NewProfile(id string) *Profile {
	return &Profile{
		id:  id,
		log: memory.NewInteractionLog(memory.DefaultCapacity),
	}
}

// ID returns the learner id this profile tracks.
func (p *Profile) ID() string { return p.id }

// SetCareerPath records the learner's chosen track.
func (p *Profile) SetCareerPath(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.careerPath = path
}

// CareerPath returns the learner's chosen track, empty if none.
func (p *Profile) CareerPath() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.careerPath
}

// AddInteraction appends a (normalized) event to the learner's log.
func (p *Profile) AddInteraction(ev model.InteractionEvent) {
	p.log.Record(ev)
}

// History returns a copy of the full log, oldest first.
func (p *Profile) History() []model.InteractionEvent {
	return p.log.All()
}

// State returns the current summary, nil when no history exists yet.
func (p *Profile) State() *model.StateSummary {
	return Summarize(p.log)
}

// Fingerprint derives the learner's learning-pattern signature.
func (p *Profile) Fingerprint() model.Fingerprint {
	history := p.log.All()
	return model.Fingerprint{
		LearningSpeed:        learningSpeed(history),
		RetentionStrength:    retentionStrength(history),
		DifficultyPreference: difficultyPreference(history),
		TimePattern:          timePattern(history),
	}
}
