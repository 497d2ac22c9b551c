package queue

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fadilmartias/cv-screening/internal/model"
	"github.com/fadilmartias/cv-screening/internal/repository"
	"github.com/fadilmartias/cv-screening/internal/scoring"
	"github.com/fadilmartias/cv-screening/internal/service"
	"github.com/fadilmartias/cv-screening/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stageCompletion answers each pipeline stage with a fixed reply.
type stageCompletion struct {
	mu    sync.Mutex
	calls int
}

func (c *stageCompletion) Generate(_ context.Context, prompt string, _ float32, _ int) (string, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()

	switch {
	case strings.Contains(prompt, "technical recruiter"):
		return `{
			"technicalSkillsMatch": {"score": 4, "details": "go and postgres"},
			"experienceLevel": {"score": 4, "details": "five years"},
			"relevantAchievements": {"score": 4, "details": "cut latency in half"},
			"culturalFit": {"score": 4, "details": "mentors juniors"}
		}`, nil
	case strings.Contains(prompt, "take-home project"):
		return `{
			"correctness": {"score": 4, "details": "rag and chaining work"},
			"codeQuality": {"score": 4, "details": "modular"},
			"resilience": {"score": 4, "details": "retries with backoff"},
			"documentation": {"score": 4, "details": "clear readme"},
			"creativity": {"score": 4, "details": "metrics endpoint"}
		}`, nil
	case strings.Contains(prompt, "hiring panel lead"):
		return "Strong backend candidate with a well-built project.", nil
	}
	return "", errors.New("unexpected prompt")
}

type fixedRetrieval struct{}

func (fixedRetrieval) Query(_ context.Context, scope service.RetrievalScope, text string, _ int) ([]string, error) {
	return []string{"passage about " + string(scope.DocumentType) + ": " + text}, nil
}

func TestScheduler_RunsEvaluationPipelineEndToEnd(t *testing.T) {
	store := repository.NewMemoryJobRepository()
	metrics := NewMetrics(prometheus.NewRegistry())
	completion := &stageCompletion{}

	invoker := service.NewRetryInvoker(completion,
		service.WithSleeper(func(context.Context, time.Duration) error { return nil }),
		service.WithInvokerMetrics(metrics),
	)
	assembler := service.NewContextAssembler(fixedRetrieval{}, 5, time.Second, nil)
	pipeline := usecase.NewEvaluationUsecase(store, invoker, assembler, nil)
	s := NewScheduler(store, pipeline, WithMetrics(metrics))
	require.NoError(t, s.Start(context.Background()))

	job, err := s.Submit(context.Background(), "Backend Engineer", "cv1", "proj1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusQueued, job.Status)

	waitForStatus(t, store, job.ID, model.JobStatusCompleted)

	got, err := s.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Progress)
	assert.Nil(t, got.Error)
	require.NotNil(t, got.Result)
	assert.Equal(t, model.FinalScore{CVScore: 4.00, ProjectScore: 4.00, OverallScore: 4.00}, got.Result.FinalScore)
	assert.Equal(t, "Strong backend candidate with a well-built project.", got.Result.OverallSummary)
	assert.Equal(t, scoring.RubricVersion, got.Result.RubricVersion)

	require.NoError(t, s.Shutdown(context.Background()))
	assert.Equal(t, 3, completion.calls)
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.invocations.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.finished.WithLabelValues("completed")))
}
