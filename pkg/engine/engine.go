// Package engine wires the learner profiles, retention model and curriculum
// optimizer into one inbound surface for the glue layers. The web and
// persistence layers depend on this package; it depends on neither.
package engine

import (
	"context"
	"log/slog"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/aaaravM/PathLearn/pkg/curriculum"
	"github.com/aaaravM/PathLearn/pkg/learner"
	"github.com/aaaravM/PathLearn/pkg/memory"
	"github.com/aaaravM/PathLearn/pkg/metrics"
	"github.com/aaaravM/PathLearn/pkg/model"
	"github.com/aaaravM/PathLearn/pkg/policy"
	"github.com/aaaravM/PathLearn/pkg/retention"
)

// Store is the pluggable persistence boundary. The engine works fully
// in-memory when none is configured; a store only adds durable interaction
// rows and model snapshots.
type Store interface {
	InsertInteraction(ctx context.Context, learnerID string, ev model.InteractionEvent) (string, error)
	RecentInteractions(ctx context.Context, learnerID string, n int) ([]model.InteractionEvent, error)
	SaveSnapshot(ctx context.Context, tag string, blob []byte) error
	LoadSnapshot(ctx context.Context, tag string) ([]byte, error)
	Close() error
}

// Options configures the Engine. Zero values get defaults.
type Options struct {
	Store   Store
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Rand    *rand.Rand
}

// Engine is the adaptive learner-state core. Each learner's profile is
// mutated only by requests for that learner; the curriculum policy is one
// shared, serialized instance learned across all learners.
type Engine struct {
	mu       sync.RWMutex
	profiles map[string]*learner.Profile

	predictor *retention.Model
	optimizer *curriculum.Optimizer

	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New creates an engine and, when a store is present, restores any persisted
// model snapshots. A missing snapshot leaves the freshly-initialized
// parameters in place; only a corrupt one is worth a log line.
func New(ctx context.Context, opt Options) (*Engine, error) {
	if opt.Logger == nil {
		opt.Logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}
	if opt.Rand == nil {
		opt.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opt.Metrics == nil {
		opt.Metrics = metrics.New()
	}

	e := &Engine{
		profiles:  make(map[string]*learner.Profile),
		predictor: retention.New(opt.Rand),
		optimizer: curriculum.NewOptimizer(policy.NewAgent(opt.Rand)),
		store:     opt.Store,
		logger:    opt.Logger,
		metrics:   opt.Metrics,
	}

	if e.store != nil {
		e.restoreSnapshot(ctx, retention.SnapshotTag, e.predictor.Restore)
		e.restoreSnapshot(ctx, policy.SnapshotTag, e.optimizer.RestoreAgent)
	}
	return e, nil
}

func (e *Engine) restoreSnapshot(ctx context.Context, tag string, restore func([]byte) error) {
	blob, err := e.store.LoadSnapshot(ctx, tag)
	if err != nil {
		e.logger.Warn("snapshot load failed, using fresh parameters", "tag", tag, "err", err)
		return
	}
	if blob == nil {
		return
	}
	if err := restore(blob); err != nil {
		e.logger.Warn("snapshot restore failed, using fresh parameters", "tag", tag, "err", err)
		return
	}
	e.logger.Info("restored model snapshot", "tag", tag)
}

// profileFor returns the learner's profile, creating it on first contact.
func (e *Engine) profileFor(learnerID string) *learner.Profile {
	e.mu.RLock()
	p, ok := e.profiles[learnerID]
	e.mu.RUnlock()
	if ok {
		return p
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if p, ok = e.profiles[learnerID]; ok {
		return p
	}
	p = learner.NewProfile(learnerID)
	e.rehydrate(p)
	e.profiles[learnerID] = p
	return p
}

// rehydrate reloads a learner's persisted history into a fresh profile so a
// restarted process resumes with the same log. Failures degrade to an empty
// log, they never fail the request.
func (e *Engine) rehydrate(p *learner.Profile) {
	if e.store == nil {
		return
	}
	events, err := e.store.RecentInteractions(context.Background(), p.ID(), memory.DefaultCapacity)
	if err != nil {
		e.logger.Warn("history rehydrate failed", "learner", p.ID(), "err", err)
		return
	}
	for _, ev := range events {
		p.AddInteraction(ev)
	}
}

// RecordInteraction normalizes and appends one event to the learner's log.
// Persistence is best-effort telemetry: a store failure is logged, the
// in-memory log remains authoritative.
func (e *Engine) RecordInteraction(ctx context.Context, learnerID string, ev model.InteractionEvent) {
	ev.Normalize()
	e.profileFor(learnerID).AddInteraction(ev)
	e.metrics.InteractionsRecorded.Inc()

	if e.store != nil {
		if _, err := e.store.InsertInteraction(ctx, learnerID, ev); err != nil {
			e.logger.Warn("interaction persist failed", "learner", learnerID, "err", err)
		}
	}
}

// StateSummary returns the learner's derived state, nil when no history
// exists yet.
func (e *Engine) StateSummary(learnerID string) *model.StateSummary {
	return e.profileFor(learnerID).State()
}

// Fingerprint returns the learner's learning-pattern signature.
func (e *Engine) Fingerprint(learnerID string) model.Fingerprint {
	return e.profileFor(learnerID).Fingerprint()
}

// RetentionCurve computes the learner's forgetting curve. Short or empty
// histories flow through the low-confidence placeholder retention.
func (e *Engine) RetentionCurve(learnerID string) model.RetentionCurve {
	return e.predictor.CurveFor(e.profileFor(learnerID).History())
}

// ReviewDay returns the day the learner's retention is projected to drop
// below the review threshold.
func (e *Engine) ReviewDay(learnerID string) int {
	return retention.RecommendReviewDay(e.RetentionCurve(learnerID))
}

// PredictPerformance runs the sequence model over the learner's history.
func (e *Engine) PredictPerformance(learnerID string) model.Prediction {
	start := time.Now()
	p := e.predictor.PredictPerformance(e.profileFor(learnerID).History())
	e.metrics.PredictionLatency.Observe(time.Since(start).Seconds())
	return p
}

// Plan assembles a coarse curriculum plan for the learner.
func (e *Engine) Plan(learnerID string) model.CurriculumPlan {
	p := e.profileFor(learnerID)
	return curriculum.Plan(e.predictor.PredictPerformance(p.History()), p.State())
}

// ShouldReview reports whether the learner's projected retention warrants a
// review pass.
func (e *Engine) ShouldReview(learnerID string) bool {
	return curriculum.ShouldReview(e.RetentionCurve(learnerID))
}

// RecommendPacing suggests lesson delivery speed for the learner.
func (e *Engine) RecommendPacing(learnerID string) model.Pacing {
	return curriculum.RecommendPacing(e.profileFor(learnerID).State())
}

// OptimizeNextLesson runs one decision/learn cycle of the shared curriculum
// policy for this learner. The only error it can return is a state-width
// mismatch, which indicates a configuration defect rather than bad data.
func (e *Engine) OptimizeNextLesson(ctx context.Context, learnerID string, lesson model.LessonContext, outcome model.Outcome) (model.OptimizationResult, error) {
	summary := e.profileFor(learnerID).State()

	res, err := e.optimizer.OptimizeNextLesson(summary, lesson, outcome)
	if err != nil {
		e.logger.Error("curriculum optimization failed", "learner", learnerID, "err", err)
		return model.OptimizationResult{}, err
	}

	e.metrics.OptimizationsTotal.Inc()
	e.metrics.ExplorationRate.Set(res.Epsilon)
	if res.TrainingLoss > 0 {
		e.metrics.TrainingLoss.Observe(res.TrainingLoss)
	}
	return res, nil
}

// SetCareerPath records the learner's chosen track on their profile.
func (e *Engine) SetCareerPath(learnerID, path string) {
	e.profileFor(learnerID).SetCareerPath(path)
}

// SaveSnapshots persists the current model parameters. A no-op without a
// store.
func (e *Engine) SaveSnapshots(ctx context.Context) error {
	if e.store == nil {
		return nil
	}

	blob, err := e.predictor.Snapshot()
	if err != nil {
		return err
	}
	if err := e.store.SaveSnapshot(ctx, retention.SnapshotTag, blob); err != nil {
		return err
	}

	blob, err = e.optimizer.SnapshotAgent()
	if err != nil {
		return err
	}
	return e.store.SaveSnapshot(ctx, policy.SnapshotTag, blob)
}

// Close releases the store, if any.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}
