package scoring

import (
	"sync"
	"testing"

	"github.com/fadilmartias/cv-screening/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFence(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: `{"a": 1}`, want: `{"a": 1}`},
		{name: "json fence", input: "```json\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{name: "bare fence", input: "```\n{\"a\": 1}\n```  ", want: `{"a": 1}`},
		{name: "no closing fence", input: "```json\n{\"a\": 1}", want: `{"a": 1}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripCodeFence(tc.input))
		})
	}
}

func TestParseEvaluation(t *testing.T) {
	raw := "```json\n" + `{
		"technicalSkillsMatch": {"score": 4, "details": "solid backend"},
		"experienceLevel": {"score": "5", "details": "7 years"},
		"relevantAchievements": {"score": 9.4, "details": "huge"},
		"culturalFit": {"score": "n/a", "details": " unclear "}
	}` + "\n```"

	got, err := ParseEvaluation(raw, CVRubric)
	require.NoError(t, err)
	assert.Equal(t, map[string]model.CriterionScore{
		CriterionTechnicalSkillsMatch: {Score: 4, Details: "solid backend"},
		CriterionExperienceLevel:      {Score: 5, Details: "7 years"},
		CriterionRelevantAchievements: {Score: 5, Details: "huge"},
		CriterionCulturalFit:          {Score: 3, Details: "unclear"},
	}, got)
}

func TestParseEvaluation_MissingCriterion(t *testing.T) {
	got, err := ParseEvaluation(`{"correctness": {"score": 2.6, "details": "ok"}, "extra": 1}`, ProjectRubric)
	require.NoError(t, err)
	assert.Equal(t, 3, got[CriterionCorrectness].Score)
	assert.Equal(t, NeutralScore, got[CriterionCreativity].Score)
	assert.Len(t, got, len(ProjectRubric.Criteria))
}

func TestParseEvaluation_Errors(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: "  "},
		{name: "prose", raw: "I think the candidate is great"},
		{name: "array", raw: `[1, 2, 3]`},
		{name: "criterion not an object", raw: `{"correctness": 4}`},
		{name: "details wrong type", raw: `{"correctness": {"score": 4, "details": 12}}`},
		{name: "trailing garbage", raw: `{"correctness": {"score": 4}} {"x": 1}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseEvaluation(tc.raw, ProjectRubric)
			assert.Error(t, err)
		})
	}
}

func TestNeutralEvaluation(t *testing.T) {
	got := NeutralEvaluation(CVRubric)
	require.Len(t, got, 4)
	for _, c := range got {
		assert.Equal(t, model.CriterionScore{Score: 3, Details: ParseFailedDetails}, c)
	}
}

func TestSchemaFor_CompilesOncePerRubric(t *testing.T) {
	first, err := schemaFor(CVRubric)
	require.NoError(t, err)
	again, err := schemaFor(CVRubric)
	require.NoError(t, err)
	assert.Same(t, first, again)

	project, err := schemaFor(ProjectRubric)
	require.NoError(t, err)
	assert.NotSame(t, first, project)

	narrowed := Rubric{Name: CVRubric.Name, Criteria: CVRubric.Criteria[:1], Weights: CVRubric.Weights}
	other, err := schemaFor(narrowed)
	require.NoError(t, err)
	assert.NotSame(t, first, other)
}

func TestParseEvaluation_ConcurrentCallsShareSchema(t *testing.T) {
	raw := `{"correctness": {"score": 5, "details": "complete"}}`
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := ParseEvaluation(raw, ProjectRubric)
			assert.NoError(t, err)
			assert.Equal(t, 5, got[CriterionCorrectness].Score)
		}()
	}
	wg.Wait()
}
