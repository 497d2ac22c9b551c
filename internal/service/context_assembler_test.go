package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fadilmartias/cv-screening/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextAssembler_DocumentScoped(t *testing.T) {
	scope := RetrievalScope{DocumentID: "cv1", DocumentType: model.DocumentTypeCV}
	r := &fakeRetrieval{byScope: map[RetrievalScope][]string{
		scope: {"Go and Postgres", "Led a team of 4", "Kafka pipelines"},
	}}
	a := NewContextAssembler(r, 5, time.Second, nil)

	got := a.RetrieveContext(context.Background(), "cv1", "skills", model.DocumentTypeCV, 2)
	assert.Equal(t, "Go and Postgres\n\nLed a team of 4", got)
	require.Len(t, r.calls, 1)
	assert.Equal(t, retrievalCall{scope: scope, text: "skills", topN: 2}, r.calls[0])
}

func TestContextAssembler_FallsBackToReferenceCorpus(t *testing.T) {
	r := &fakeRetrieval{byScope: map[RetrievalScope][]string{
		refScope(model.DocumentTypeJobDescription): {"Backend role", "Needs Go"},
	}}
	a := NewContextAssembler(r, 5, time.Second, nil)

	got := a.RetrieveContext(context.Background(), "unknown-doc", "requirements", model.DocumentTypeJobDescription, 0)
	assert.Equal(t, "Backend role\n\nNeeds Go", got)
	require.Len(t, r.calls, 2)
	assert.Equal(t, "unknown-doc", r.calls[0].scope.DocumentID)
	assert.Equal(t, refScope(model.DocumentTypeJobDescription), r.calls[1].scope)
	assert.Equal(t, 5, r.calls[1].topN)
}

func TestContextAssembler_ReferenceOnly(t *testing.T) {
	r := &fakeRetrieval{byScope: map[RetrievalScope][]string{
		refScope(model.DocumentTypeScoringRubric): {"Rubric"},
	}}
	a := NewContextAssembler(r, 5, time.Second, nil)

	got := a.RetrieveContext(context.Background(), "", "rubric", model.DocumentTypeScoringRubric, 5)
	assert.Equal(t, "Rubric", got)
	assert.Len(t, r.calls, 1)
}

func TestContextAssembler_PlaceholderOnError(t *testing.T) {
	types := []model.DocumentType{
		model.DocumentTypeCV,
		model.DocumentTypeProjectReport,
		model.DocumentTypeJobDescription,
		model.DocumentTypeScoringRubric,
		model.DocumentTypeCaseStudy,
	}
	seen := map[string]bool{}
	for _, dt := range types {
		t.Run(string(dt), func(t *testing.T) {
			r := &fakeRetrieval{err: errors.New("connection refused")}
			a := NewContextAssembler(r, 5, time.Second, nil)

			got := a.RetrieveContext(context.Background(), "doc", "q", dt, 5)
			assert.Equal(t, Placeholder(dt), got)
			assert.NotEmpty(t, got)
			assert.Len(t, r.calls, 1)
			assert.False(t, seen[got], "placeholder should be distinct per type")
			seen[got] = true
		})
	}
}

func TestContextAssembler_PlaceholderWhenNothingFound(t *testing.T) {
	a := NewContextAssembler(&fakeRetrieval{}, 5, time.Second, nil)
	got := a.RetrieveContext(context.Background(), "cv1", "skills", model.DocumentTypeCV, 5)
	assert.Equal(t, Placeholder(model.DocumentTypeCV), got)
}

func TestContextAssembler_NilRetrieval(t *testing.T) {
	a := NewContextAssembler(nil, 0, 0, nil)
	got := a.RetrieveContext(context.Background(), "cv1", "skills", model.DocumentTypeCV, 5)
	assert.Equal(t, Placeholder(model.DocumentTypeCV), got)
}

func TestContextAssembler_AssembleKeepsOrder(t *testing.T) {
	r := &fakeRetrieval{byScope: map[RetrievalScope][]string{
		{DocumentID: "cv1", DocumentType: model.DocumentTypeCV}: {"cv passage"},
		refScope(model.DocumentTypeJobDescription):              {"job passage"},
		refScope(model.DocumentTypeScoringRubric):               {"rubric passage"},
	}}
	a := NewContextAssembler(r, 5, time.Second, nil)

	got := a.Assemble(context.Background(), []ContextQuery{
		{DocumentID: "cv1", Text: "skills", DocumentType: model.DocumentTypeCV},
		{Text: "requirements", DocumentType: model.DocumentTypeJobDescription},
		{Text: "rubric", DocumentType: model.DocumentTypeScoringRubric},
	})
	assert.Equal(t, []string{"cv passage", "job passage", "rubric passage"}, got)
}
