// Package scoring implements the composite risk score fusion, the decision
// explanation, and the assessment orchestrator.
package scoring

import (
	"fmt"
	"strings"

	"credit-risk-engine/internal/models"
)

// DefaultWeights are the nominal signal weights when every signal is present.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		"pod":    0.70,
		"vision": 0.15,
		"nlp":    0.15,
	}
}

// CalculateFinalScore fuses the probability of default with the optional
// vision and NLP signals into one risk score in [0,1], and returns the map of
// weights actually applied.
//
// PoD is already a risk (higher = worse). Vision and NLP are goodness scores
// (1 = good) and are inverted before contributing. When a signal is absent its
// nominal weight is redistributed across the present signals via the division
// by the present-weight total, and the result is then rescaled by the full
// nominal weight sum. A partial assessment therefore lands on a different
// scale than a full one on purpose: confidence differs when fewer signals are
// available. Preserve this formula exactly; it is a product decision.
func CalculateFinalScore(pod float64, visionScore, nlpScore *float64, weights map[string]float64) (float64, map[string]float64) {
	activeWeights := make(map[string]float64)
	totalWeight := 0.0
	weightedSum := 0.0
	nominalSum := 0.0
	for _, w := range weights {
		nominalSum += w
	}

	// PoD always included
	podWeight := weights["pod"]
	weightedSum += podWeight * pod
	totalWeight += podWeight
	activeWeights["pod"] = podWeight

	if visionScore != nil {
		visionWeight := weights["vision"]
		weightedSum += visionWeight * (1 - *visionScore)
		totalWeight += visionWeight
		activeWeights["vision"] = visionWeight
	}

	if nlpScore != nil {
		nlpWeight := weights["nlp"]
		weightedSum += nlpWeight * (1 - *nlpScore)
		totalWeight += nlpWeight
		activeWeights["nlp"] = nlpWeight
	}

	finalScore := pod
	if totalWeight > 0 {
		finalScore = weightedSum / totalWeight * nominalSum
	}
	if finalScore < 0 {
		finalScore = 0
	}
	if finalScore > 1 {
		finalScore = 1
	}

	return finalScore, activeWeights
}

// GenerateExplanation assembles the human-readable assessment rationale. One
// clause per present input, in fixed order; identical inputs always produce
// identical text.
func GenerateExplanation(pod float64, visionScore, nlpScore *float64, finalScore float64, category models.RiskCategory) string {
	parts := make([]string, 0, 4)

	switch {
	case pod >= 0.7:
		parts = append(parts, fmt.Sprintf("High default probability (%s) based on payment history and loan metrics.", percent(pod)))
	case pod >= 0.5:
		parts = append(parts, fmt.Sprintf("Moderate default probability (%s) based on payment history.", percent(pod)))
	default:
		parts = append(parts, fmt.Sprintf("Low default probability (%s) indicating good payment behavior.", percent(pod)))
	}

	if visionScore != nil {
		switch {
		case *visionScore >= 0.7:
			parts = append(parts, "Asset condition assessment shows good quality assets.")
		case *visionScore >= 0.4:
			parts = append(parts, "Asset condition is average.")
		default:
			parts = append(parts, "Asset condition raises concerns.")
		}
	}

	if nlpScore != nil {
		switch {
		case *nlpScore >= 0.7:
			parts = append(parts, "Field agent notes indicate positive customer cooperation.")
		case *nlpScore >= 0.4:
			parts = append(parts, "Field agent notes are neutral.")
		default:
			parts = append(parts, "Field agent notes indicate potential issues.")
		}
	}

	parts = append(parts, fmt.Sprintf("Overall risk score: %s. Risk category: %s.", percent(finalScore), category))

	return strings.Join(parts, " ")
}

// percent formats a [0,1] score as a one-decimal percentage.
func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}
