// Package retention models a learner's forgetting behavior with a recurrent
// sequence network. Order and recency of past events, not just their
// aggregates, predict forgetting, which is why a plain running average is not
// enough here.
package retention

import (
	"math"
	"math/rand"

	"github.com/aaaravM/PathLearn/pkg/model"
)

const (
	hiddenDim = 32

	// History thresholds for prediction confidence. Below minHistory the
	// network is skipped entirely and a fixed placeholder is returned.
	minHistory  = 5
	highHistory = 20

	// decayRate is the fixed forgetting-curve decay constant k in
	// retention(d) = p0 * exp(-k*d).
	decayRate = 0.1

	// curveDays is how many daily points a retention curve spans.
	curveDays = 30

	// reviewThreshold is the retention level below which review is due.
	reviewThreshold = 0.7
)

// parameters holds every trainable weight of the sequence model. Kept as one
// struct so snapshots can serialize it wholesale.
type parameters struct {
	// GRU cell: update gate, reset gate, candidate.
	Wz, Wr, Wh [hiddenDim][featureDim]float64
	Uz, Ur, Uh [hiddenDim][hiddenDim]float64
	Bz, Br, Bh [hiddenDim]float64

	// Output heads over the final hidden state.
	PerfW [hiddenDim]float64
	PerfB float64
	RetW  [hiddenDim]float64
	RetB  float64
	DiffW [4][hiddenDim]float64
	DiffB [4]float64
	TimeW [hiddenDim]float64
	TimeB float64
}

// Model is a GRU-style sequence model over interaction histories with four
// heads: next performance, retention probability, difficulty distribution and
// time-to-complete. It satisfies model.Predictor.
type Model struct {
	p parameters
}

// New creates a model with freshly-initialized parameters drawn from rng.
// A nil rng gets a fixed-seed source, which keeps untrained predictions
// deterministic. Untrained parameters are the documented fallback when no
// snapshot is available: predictions degrade to near-random, the pipeline
// never errors.
func New(rng *rand.Rand) *Model {
	if rng == nil {
		rng = rand.New(rand.NewSource(42))
	}
	m := &Model{}
	m.p.init(rng)
	return m
}

func (p *parameters) init(rng *rand.Rand) {
	inScale := 1 / math.Sqrt(featureDim)
	hScale := 1 / math.Sqrt(hiddenDim)
	for i := 0; i < hiddenDim; i++ {
		for j := 0; j < featureDim; j++ {
			p.Wz[i][j] = rng.NormFloat64() * inScale
			p.Wr[i][j] = rng.NormFloat64() * inScale
			p.Wh[i][j] = rng.NormFloat64() * inScale
		}
		for j := 0; j < hiddenDim; j++ {
			p.Uz[i][j] = rng.NormFloat64() * hScale
			p.Ur[i][j] = rng.NormFloat64() * hScale
			p.Uh[i][j] = rng.NormFloat64() * hScale
		}
		p.PerfW[i] = rng.NormFloat64() * hScale
		p.RetW[i] = rng.NormFloat64() * hScale
		p.TimeW[i] = rng.NormFloat64() * hScale
		for k := 0; k < 4; k++ {
			p.DiffW[k][i] = rng.NormFloat64() * hScale
		}
	}
}

// Predict runs the sequence model over the full history and returns the raw
// head outputs. It never fails on well-formed input; the error return exists
// for the Predictor contract.
func (m *Model) Predict(history []model.InteractionEvent) (model.PredictorOutputs, error) {
	var h [hiddenDim]float64
	for _, ev := range history {
		h = m.step(featurize(ev), h)
	}
	return m.heads(h), nil
}

// step advances the GRU cell by one event.
func (m *Model) step(x [featureDim]float64, h [hiddenDim]float64) [hiddenDim]float64 {
	var next [hiddenDim]float64
	for i := 0; i < hiddenDim; i++ {
		zi := m.p.Bz[i]
		ri := m.p.Br[i]
		for j := 0; j < featureDim; j++ {
			zi += m.p.Wz[i][j] * x[j]
			ri += m.p.Wr[i][j] * x[j]
		}
		for j := 0; j < hiddenDim; j++ {
			zi += m.p.Uz[i][j] * h[j]
			ri += m.p.Ur[i][j] * h[j]
		}
		z := sigmoid(zi)
		r := sigmoid(ri)

		ci := m.p.Bh[i]
		for j := 0; j < featureDim; j++ {
			ci += m.p.Wh[i][j] * x[j]
		}
		for j := 0; j < hiddenDim; j++ {
			ci += m.p.Uh[i][j] * r * h[j]
		}
		c := math.Tanh(ci)

		next[i] = (1-z)*h[i] + z*c
	}
	return next
}

// heads maps the final hidden state through the output heads.
func (m *Model) heads(h [hiddenDim]float64) model.PredictorOutputs {
	perf := m.p.PerfB
	ret := m.p.RetB
	tEst := m.p.TimeB
	var diff [4]float64
	for i := 0; i < hiddenDim; i++ {
		perf += m.p.PerfW[i] * h[i]
		ret += m.p.RetW[i] * h[i]
		tEst += m.p.TimeW[i] * h[i]
		for k := 0; k < 4; k++ {
			diff[k] += m.p.DiffW[k][i] * h[i]
		}
	}
	for k := 0; k < 4; k++ {
		diff[k] += m.p.DiffB[k]
	}

	return model.PredictorOutputs{
		Performance:    sigmoid(perf),
		Retention:      sigmoid(ret),
		DifficultyDist: softmax4(diff),
		// Time head is magnitude-only, scaled to seconds.
		TimeEstimate: math.Abs(tEst) * timeScale,
	}
}

// PredictPerformance produces a learner-facing prediction, applying the
// short-history gate: fewer than 5 events skips the network and reports a
// fixed low-confidence placeholder.
func (m *Model) PredictPerformance(history []model.InteractionEvent) model.Prediction {
	if len(history) < minHistory {
		return model.Prediction{
			PredictedScore:        0.5,
			RetentionProb:         0.5,
			RecommendedDifficulty: 1,
			EstimatedTime:         120,
			Confidence:            model.ConfidenceLow,
		}
	}

	out, _ := m.Predict(history)

	confidence := model.ConfidenceMedium
	if len(history) >= highHistory {
		confidence = model.ConfidenceHigh
	}

	return model.Prediction{
		PredictedScore:        out.Performance,
		RetentionProb:         out.Retention,
		RecommendedDifficulty: argmax4(out.DifficultyDist),
		EstimatedTime:         out.TimeEstimate,
		Confidence:            confidence,
	}
}

// Curve expands a scalar retention probability into a 30-day exponential
// decay curve: retention(d) = p0 * exp(-0.1*d).
func Curve(p0 float64) model.RetentionCurve {
	days := make([]int, curveDays)
	ret := make([]float64, curveDays)
	for d := 0; d < curveDays; d++ {
		days[d] = d
		ret[d] = p0 * math.Exp(-decayRate*float64(d))
	}
	halfLife := 0.0
	if p0 > 0 {
		halfLife = math.Ln2 / decayRate
	}
	return model.RetentionCurve{Days: days, Retention: ret, HalfLife: halfLife}
}

// CurveFor computes the retention curve for a history by running the model
// for its retention probability first.
func (m *Model) CurveFor(history []model.InteractionEvent) model.RetentionCurve {
	p := m.PredictPerformance(history)
	return Curve(p.RetentionProb)
}

// RecommendReviewDay returns the first day the curve drops below the review
// threshold, or the final day if it never does.
func RecommendReviewDay(curve model.RetentionCurve) int {
	for i, r := range curve.Retention {
		if r < reviewThreshold {
			return curve.Days[i]
		}
	}
	return curveDays - 1
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// softmax4 is a numerically-stable softmax over the difficulty head.
func softmax4(x [4]float64) [4]float64 {
	maxV := x[0]
	for _, v := range x[1:] {
		if v > maxV {
			maxV = v
		}
	}
	var sum float64
	var out [4]float64
	for i, v := range x {
		out[i] = math.Exp(v - maxV)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func argmax4(x [4]float64) int {
	best := 0
	for i := 1; i < 4; i++ {
		if x[i] > x[best] {
			best = i
		}
	}
	return best
}

var _ model.Predictor = (*Model)(nil)
