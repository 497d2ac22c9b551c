package scoring

import (
	"math"

	"github.com/fadilmartias/cv-screening/internal/model"
)

// Clamp coerces a raw score into [MinScore, MaxScore].
func Clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// WeightedScore averages the clamped criterion scores using weights.
// Criteria missing from evaluation count as NeutralScore. A table whose
// weights sum to zero yields 0.
func WeightedScore(evaluation map[string]model.CriterionScore, weights map[string]float64) float64 {
	var sum, total float64
	for name, w := range weights {
		if w <= 0 {
			continue
		}
		score := NeutralScore
		if c, ok := evaluation[name]; ok {
			score = Clamp(c.Score)
		}
		sum += float64(score) * w
		total += w
	}
	if total == 0 {
		return 0
	}
	return sum / total
}

// Round2 rounds to two decimal places for reporting.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Final computes the reported score triple for both evaluations.
func Final(cv, project map[string]model.CriterionScore) model.FinalScore {
	cvScore := WeightedScore(cv, CVRubric.Weights)
	projectScore := WeightedScore(project, ProjectRubric.Weights)
	return model.FinalScore{
		CVScore:      Round2(cvScore),
		ProjectScore: Round2(projectScore),
		OverallScore: Round2((cvScore + projectScore) / 2),
	}
}
