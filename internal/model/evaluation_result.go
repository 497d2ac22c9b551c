package model

// CriterionScore is a single rubric line as returned by the model.
type CriterionScore struct {
	Score   int    `json:"score"`
	Details string `json:"details"`
}

type FinalScore struct {
	CVScore      float64 `json:"cv_score"`
	ProjectScore float64 `json:"project_score"`
	OverallScore float64 `json:"overall_score"`
}

type EvaluationResult struct {
	// RubricVersion names the weight table the scores were computed with.
	RubricVersion     string                    `json:"rubric_version"`
	CVEvaluation      map[string]CriterionScore `json:"cv_evaluation"`
	ProjectEvaluation map[string]CriterionScore `json:"project_evaluation"`
	OverallSummary    string                    `json:"overall_summary"`
	FinalScore        FinalScore                `json:"final_score"`
}
