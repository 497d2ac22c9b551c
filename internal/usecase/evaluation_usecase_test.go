package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fadilmartias/cv-screening/internal/model"
	"github.com/fadilmartias/cv-screening/internal/repository"
	"github.com/fadilmartias/cv-screening/internal/scoring"
	"github.com/fadilmartias/cv-screening/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	allFoursCV = `{
		"technicalSkillsMatch": {"score": 4, "details": "go and postgres"},
		"experienceLevel": {"score": 4, "details": "five years"},
		"relevantAchievements": {"score": 4, "details": "cut latency in half"},
		"culturalFit": {"score": 4, "details": "mentors juniors"}
	}`
	allFoursProject = "```json\n" + `{
		"correctness": {"score": 4, "details": "rag and chaining work"},
		"codeQuality": {"score": 4, "details": "modular"},
		"resilience": {"score": 4, "details": "retries with backoff"},
		"documentation": {"score": 4, "details": "clear readme"},
		"creativity": {"score": 4, "details": "metrics endpoint"}
	}` + "\n```"
	fixedSummary = "Strong backend candidate with a well-built project."
)

type stageReply struct {
	text string
	err  error
}

// routedCompletion answers by pipeline stage, recognised from the prompt.
type routedCompletion struct {
	mu      sync.Mutex
	replies map[string][]stageReply
	calls   map[string]int
	prompts []string
}

func newRoutedCompletion() *routedCompletion {
	return &routedCompletion{replies: map[string][]stageReply{}, calls: map[string]int{}}
}

func (c *routedCompletion) on(stage, text string, err error) *routedCompletion {
	c.replies[stage] = append(c.replies[stage], stageReply{text: text, err: err})
	return c
}

func stageOf(prompt string) string {
	switch {
	case strings.Contains(prompt, "technical recruiter"):
		return "cv"
	case strings.Contains(prompt, "take-home project"):
		return "project"
	case strings.Contains(prompt, "hiring panel lead"):
		return "summary"
	}
	return "unknown"
}

func (c *routedCompletion) Generate(_ context.Context, prompt string, _ float32, _ int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stage := stageOf(prompt)
	c.prompts = append(c.prompts, prompt)
	replies := c.replies[stage]
	n := c.calls[stage]
	c.calls[stage]++
	if len(replies) == 0 {
		return "", errors.New("no reply scripted for " + stage)
	}
	if n >= len(replies) {
		n = len(replies) - 1
	}
	return replies[n].text, replies[n].err
}

type fakeAssembler struct {
	mu      sync.Mutex
	queries [][]service.ContextQuery
}

func (a *fakeAssembler) Assemble(_ context.Context, queries []service.ContextQuery) []string {
	a.mu.Lock()
	a.queries = append(a.queries, queries)
	a.mu.Unlock()

	out := make([]string, len(queries))
	for i, q := range queries {
		out[i] = "context for " + string(q.DocumentType)
	}
	return out
}

// recordingStore keeps every accepted update so tests can inspect checkpoints.
type recordingStore struct {
	*repository.MemoryJobRepository
	mu      sync.Mutex
	updates []model.JobUpdate
}

func (s *recordingStore) UpdateJobStatus(ctx context.Context, id uuid.UUID, update model.JobUpdate) error {
	if err := s.MemoryJobRepository.UpdateJobStatus(ctx, id, update); err != nil {
		return err
	}
	s.mu.Lock()
	s.updates = append(s.updates, update)
	s.mu.Unlock()
	return nil
}

func noSleep(context.Context, time.Duration) error { return nil }

type pipelineFixture struct {
	store      *recordingStore
	completion *routedCompletion
	assembler  *fakeAssembler
	uc         *EvaluationUsecase
}

func newPipelineFixture(completion *routedCompletion) *pipelineFixture {
	store := &recordingStore{MemoryJobRepository: repository.NewMemoryJobRepository()}
	assembler := &fakeAssembler{}
	inv := service.NewRetryInvoker(completion, service.WithSleeper(noSleep))
	return &pipelineFixture{
		store:      store,
		completion: completion,
		assembler:  assembler,
		uc:         NewEvaluationUsecase(store, inv, assembler, nil),
	}
}

func (f *pipelineFixture) queue(t *testing.T) uuid.UUID {
	t.Helper()
	job := &model.EvaluationJob{
		Title:            "Backend Engineer",
		CVDocumentID:     "cv1",
		ReportDocumentID: "proj1",
		Status:           model.JobStatusQueued,
	}
	require.NoError(t, f.store.CreateJob(context.Background(), job))
	return job.ID
}

func TestEvaluationUsecase_Run_Completes(t *testing.T) {
	completion := newRoutedCompletion().
		on("cv", allFoursCV, nil).
		on("project", allFoursProject, nil).
		on("summary", fixedSummary, nil)
	f := newPipelineFixture(completion)
	id := f.queue(t)

	require.NoError(t, f.uc.Run(context.Background(), id))

	job, err := f.store.GetJob(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, job.Status)
	assert.Equal(t, 100, job.Progress)
	assert.Nil(t, job.Error)
	require.NotNil(t, job.Result)
	assert.Equal(t, model.FinalScore{CVScore: 4, ProjectScore: 4, OverallScore: 4}, job.Result.FinalScore)
	assert.Equal(t, fixedSummary, job.Result.OverallSummary)
	assert.Equal(t, scoring.RubricVersion, job.Result.RubricVersion)
	assert.Len(t, job.Result.CVEvaluation, len(scoring.CVRubric.Criteria))
	assert.Equal(t, "retries with backoff", job.Result.ProjectEvaluation[scoring.CriterionResilience].Details)

	var progress []int
	for _, u := range f.store.updates {
		progress = append(progress, *u.Progress)
	}
	assert.Equal(t, []int{10, 20, 50, 60, 80, 100}, progress)

	require.Len(t, f.assembler.queries, 2)
	cvQueries := f.assembler.queries[0]
	require.Len(t, cvQueries, len(cvFacets)+2)
	for _, q := range cvQueries[:len(cvFacets)] {
		assert.Equal(t, "cv1", q.DocumentID)
		assert.Equal(t, model.DocumentTypeCV, q.DocumentType)
	}
	assert.Equal(t, "proj1", f.assembler.queries[1][0].DocumentID)
	assert.Empty(t, f.assembler.queries[1][1].DocumentID)
}

func TestEvaluationUsecase_Run_PartialResultAfterCVStage(t *testing.T) {
	completion := newRoutedCompletion().
		on("cv", allFoursCV, nil).
		on("project", allFoursProject, nil).
		on("summary", fixedSummary, nil)
	f := newPipelineFixture(completion)
	id := f.queue(t)

	require.NoError(t, f.uc.Run(context.Background(), id))

	var partial *model.EvaluationResult
	for _, u := range f.store.updates {
		if u.Progress != nil && *u.Progress == ProgressCVDone {
			partial = u.Result
		}
	}
	require.NotNil(t, partial)
	assert.Equal(t, scoring.RubricVersion, partial.RubricVersion)
	assert.Len(t, partial.CVEvaluation, len(scoring.CVRubric.Criteria))
	assert.Empty(t, partial.ProjectEvaluation)
	assert.Empty(t, partial.OverallSummary)
}

func TestEvaluationUsecase_Run_UnparseableCVUsesNeutralScores(t *testing.T) {
	completion := newRoutedCompletion().
		on("cv", "I think this candidate is great!", nil).
		on("project", allFoursProject, nil).
		on("summary", fixedSummary, nil)
	f := newPipelineFixture(completion)
	id := f.queue(t)

	require.NoError(t, f.uc.Run(context.Background(), id))

	job, err := f.store.GetJob(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, job.Status)
	for _, c := range scoring.CVRubric.Criteria {
		assert.Equal(t, model.CriterionScore{Score: 3, Details: scoring.ParseFailedDetails}, job.Result.CVEvaluation[c])
	}
	assert.Equal(t, 3.0, job.Result.FinalScore.CVScore)
	assert.Equal(t, 4.0, job.Result.FinalScore.ProjectScore)
	assert.Equal(t, 3.5, job.Result.FinalScore.OverallScore)
	assert.Equal(t, 1, completion.calls["cv"])
}

func TestEvaluationUsecase_Run_NonRetryableFaultFailsJob(t *testing.T) {
	completion := newRoutedCompletion().
		on("cv", "", &service.StatusError{Code: http.StatusUnauthorized, Message: "invalid api key"})
	f := newPipelineFixture(completion)
	id := f.queue(t)

	err := f.uc.Run(context.Background(), id)
	require.Error(t, err)

	var invErr *service.InvocationError
	require.ErrorAs(t, err, &invErr)
	assert.False(t, invErr.Retryable)
	assert.Equal(t, 1, invErr.Attempts)
	assert.Equal(t, 1, completion.calls["cv"])
	assert.Zero(t, completion.calls["project"])

	job, err := f.store.GetJob(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, job.Status)
	require.NotNil(t, job.Error)
	assert.Contains(t, *job.Error, "invalid api key")
	assert.Nil(t, job.Result)
}

func TestEvaluationUsecase_Run_TransientFaultsExhaustAttempts(t *testing.T) {
	completion := newRoutedCompletion().
		on("cv", allFoursCV, nil).
		on("project", "", &service.StatusError{Code: http.StatusServiceUnavailable, Message: "overloaded"})
	f := newPipelineFixture(completion)
	id := f.queue(t)

	require.Error(t, f.uc.Run(context.Background(), id))
	assert.Equal(t, scoringAttempts, completion.calls["project"])

	job, err := f.store.GetJob(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, job.Status)
	assert.Equal(t, ProgressProject, job.Progress)
	assert.Nil(t, job.Result)
}

func TestEvaluationUsecase_Run_SummaryFailureIsNotFatal(t *testing.T) {
	completion := newRoutedCompletion().
		on("cv", allFoursCV, nil).
		on("project", allFoursProject, nil).
		on("summary", "   ", nil)
	f := newPipelineFixture(completion)
	id := f.queue(t)

	require.NoError(t, f.uc.Run(context.Background(), id))
	assert.Equal(t, summaryAttempts, completion.calls["summary"])

	job, err := f.store.GetJob(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, job.Status)
	assert.Equal(t, SummaryUnavailable, job.Result.OverallSummary)
	assert.Equal(t, 4.0, job.Result.FinalScore.OverallScore)
}

func TestEvaluationUsecase_Run_RejectsNonQueuedJob(t *testing.T) {
	f := newPipelineFixture(newRoutedCompletion())
	id := f.queue(t)
	progress := 10
	require.NoError(t, f.store.UpdateJobStatus(context.Background(), id, model.JobUpdate{
		Status: model.JobStatusProcessing, Progress: &progress,
	}))

	err := f.uc.Run(context.Background(), id)
	require.ErrorIs(t, err, repository.ErrInvalidTransition)
	assert.Empty(t, f.completion.prompts)

	err = f.uc.Run(context.Background(), uuid.New())
	require.ErrorIs(t, err, repository.ErrJobNotFound)
}

func TestEvaluationUsecase_Run_CanceledStopsAtCheckpoint(t *testing.T) {
	f := newPipelineFixture(newRoutedCompletion())
	id := f.queue(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.uc.Run(ctx, id)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.completion.prompts)

	job, err := f.store.GetJob(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, job.Status)
}

type panickingAssembler struct{}

func (panickingAssembler) Assemble(context.Context, []service.ContextQuery) []string {
	panic("index out of range")
}

func TestEvaluationUsecase_Run_RecoversPanic(t *testing.T) {
	store := repository.NewMemoryJobRepository()
	inv := service.NewRetryInvoker(newRoutedCompletion(), service.WithSleeper(noSleep))
	uc := NewEvaluationUsecase(store, inv, panickingAssembler{}, nil)

	job := &model.EvaluationJob{Title: "Backend Engineer", CVDocumentID: "cv1", ReportDocumentID: "proj1", Status: model.JobStatusQueued}
	require.NoError(t, store.CreateJob(context.Background(), job))

	err := uc.Run(context.Background(), job.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic")

	got, err := store.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, got.Status)
	require.NotNil(t, got.Error)
	assert.Contains(t, *got.Error, "index out of range")
}
