// Package scoring turns rubric responses from the model into clamped,
// weighted scores.
package scoring

// Rubric criterion names. They double as the JSON keys the model must return.
const (
	CriterionTechnicalSkillsMatch = "technicalSkillsMatch"
	CriterionExperienceLevel      = "experienceLevel"
	CriterionRelevantAchievements = "relevantAchievements"
	CriterionCulturalFit          = "culturalFit"

	CriterionCorrectness   = "correctness"
	CriterionCodeQuality   = "codeQuality"
	CriterionResilience    = "resilience"
	CriterionDocumentation = "documentation"
	CriterionCreativity    = "creativity"
)

// RubricVersion is bumped whenever a weight table or criterion list changes.
const RubricVersion = "2025-01"

const (
	MinScore     = 1
	MaxScore     = 5
	NeutralScore = 3
)

// Rubric is an ordered, weighted set of criteria.
type Rubric struct {
	Name     string
	Criteria []string
	Weights  map[string]float64
}

var CVRubric = Rubric{
	Name: "cv",
	Criteria: []string{
		CriterionTechnicalSkillsMatch,
		CriterionExperienceLevel,
		CriterionRelevantAchievements,
		CriterionCulturalFit,
	},
	Weights: map[string]float64{
		CriterionTechnicalSkillsMatch: 0.40,
		CriterionExperienceLevel:      0.25,
		CriterionRelevantAchievements: 0.20,
		CriterionCulturalFit:          0.15,
	},
}

var ProjectRubric = Rubric{
	Name: "project",
	Criteria: []string{
		CriterionCorrectness,
		CriterionCodeQuality,
		CriterionResilience,
		CriterionDocumentation,
		CriterionCreativity,
	},
	Weights: map[string]float64{
		CriterionCorrectness:   0.30,
		CriterionCodeQuality:   0.25,
		CriterionResilience:    0.20,
		CriterionDocumentation: 0.15,
		CriterionCreativity:    0.10,
	},
}
