package decay

import "sort"

// ActivationThreshold is the minimum confidence score for a decay verdict.
// A single weak signal below it does not flag the document.
const ActivationThreshold = 0.25

const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Aggregate is the fused verdict over all evaluator signals.
type Aggregate struct {
	DecayDetected   bool
	ConfidenceScore float64
	RiskLevel       string
	Reasons         []string
	Breakdown       map[string]float64
}

// Fuse combines named signals into one score and verdict. Each detected
// signal contributes its weight; the sum is normalized by the total weight
// so the score stays in [0,1] whatever weights the evaluators carry.
// Reasons come out in evaluator name order so results are reproducible.
func Fuse(signals map[string]Signal) Aggregate {
	agg := Aggregate{Breakdown: map[string]float64{}}

	names := make([]string, 0, len(signals))
	for name := range signals {
		names = append(names, name)
	}
	sort.Strings(names)

	totalWeight := 0.0
	anyDetected := false
	for _, name := range names {
		signal := signals[name]
		totalWeight += signal.Weight

		contribution := 0.0
		if signal.Detected {
			anyDetected = true
			contribution = signal.Weight
			agg.Reasons = append(agg.Reasons, signal.Reasons...)
		}
		agg.Breakdown[name] = contribution
		agg.ConfidenceScore += contribution
	}

	if totalWeight > 0 {
		agg.ConfidenceScore /= totalWeight
	}

	agg.DecayDetected = anyDetected && agg.ConfidenceScore >= ActivationThreshold
	agg.RiskLevel = RiskLevel(agg.ConfidenceScore)
	return agg
}

// RiskLevel classifies a confidence score.
func RiskLevel(score float64) string {
	switch {
	case score >= 0.7:
		return RiskHigh
	case score >= 0.4:
		return RiskMedium
	default:
		return RiskLow
	}
}
