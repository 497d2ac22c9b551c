package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fadilmartias/cv-screening/internal/model"
	"github.com/fadilmartias/cv-screening/internal/scoring"
)

var criterionGuides = map[string]string{
	scoring.CriterionTechnicalSkillsMatch: "alignment with job requirements (backend, databases, APIs, cloud, AI/LLM exposure)",
	scoring.CriterionExperienceLevel:      "years of experience and project complexity",
	scoring.CriterionRelevantAchievements: "impact and scale of past work",
	scoring.CriterionCulturalFit:          "communication, learning attitude, teamwork",
	scoring.CriterionCorrectness:          "meets the case study requirements (prompt design, chaining, RAG, error handling)",
	scoring.CriterionCodeQuality:          "clean, modular, testable code",
	scoring.CriterionResilience:           "handles failures, timeouts and retries of external APIs",
	scoring.CriterionDocumentation:        "clear README, setup steps and explanation of trade-offs",
	scoring.CriterionCreativity:           "extra features beyond the requirements",
}

func rubricSchema(r scoring.Rubric) string {
	var b strings.Builder
	b.WriteString("Criteria:\n")
	for _, name := range r.Criteria {
		fmt.Fprintf(&b, "- %s (weight %.0f%%): %s\n", name, r.Weights[name]*100, criterionGuides[name])
	}
	b.WriteString("\nJSON shape:\n{\n")
	for i, name := range r.Criteria {
		fmt.Fprintf(&b, `  "%s": {"score": <integer 1-5>, "details": "<one or two sentences>"}`, name)
		if i < len(r.Criteria)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

func buildCVPrompt(title, cvContext, jobContext, rubricContext string) string {
	return fmt.Sprintf(`You are an experienced technical recruiter evaluating a candidate for the role "%s".

Job requirements:
%s

Scoring rubric:
%s

Candidate CV excerpts:
%s

Score the CV against the job requirements. Return ONLY a JSON object, no prose.
%s
`, title, jobContext, rubricContext, cvContext, rubricSchema(scoring.CVRubric))
}

func buildProjectPrompt(title, reportContext, caseStudyContext, rubricContext string) string {
	return fmt.Sprintf(`You are a senior backend engineer reviewing a take-home project submitted for the role "%s".

Case study brief:
%s

Scoring rubric:
%s

Project report excerpts:
%s

Score the project report against the case study brief. Return ONLY a JSON object, no prose.
%s
`, title, caseStudyContext, rubricContext, reportContext, rubricSchema(scoring.ProjectRubric))
}

func buildSummaryPrompt(title string, cv, project map[string]model.CriterionScore, final model.FinalScore) string {
	return fmt.Sprintf(`You are a hiring panel lead. Write a concise 3-5 sentence summary for the candidate applying to "%s".
Cover strengths, gaps, and a recommendation. Plain text only.

CV evaluation (score %.2f / 5):
%s
Project evaluation (score %.2f / 5):
%s
Overall score: %.2f / 5
`, title, final.CVScore, describeEvaluation(cv), final.ProjectScore, describeEvaluation(project), final.OverallScore)
}

func describeEvaluation(eval map[string]model.CriterionScore) string {
	names := make([]string, 0, len(eval))
	for name := range eval {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		c := eval[name]
		fmt.Fprintf(&b, "- %s: %d/5. %s\n", name, c.Score, c.Details)
	}
	return b.String()
}
