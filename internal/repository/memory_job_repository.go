package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fadilmartias/cv-screening/internal/model"
	"github.com/google/uuid"
)

// MemoryJobRepository is a process-local JobStore. Records are copied on the
// way in and out so callers never share state with the store.
type MemoryJobRepository struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]*model.EvaluationJob
	now  func() time.Time
}

func NewMemoryJobRepository() *MemoryJobRepository {
	return &MemoryJobRepository{
		jobs: make(map[uuid.UUID]*model.EvaluationJob),
		now:  time.Now,
	}
}

func (r *MemoryJobRepository) CreateJob(_ context.Context, job *model.EvaluationJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	now := r.now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	r.jobs[job.ID] = cloneJob(job)
	return nil
}

func (r *MemoryJobRepository) GetJob(_ context.Context, id uuid.UUID) (*model.EvaluationJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return cloneJob(job), nil
}

func (r *MemoryJobRepository) UpdateJobStatus(_ context.Context, id uuid.UUID, update model.JobUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	if err := checkUpdate(job, update); err != nil {
		return err
	}
	applyUpdate(job, update)
	job.Result = cloneResult(job.Result)
	job.UpdatedAt = r.now()
	return nil
}

func (r *MemoryJobRepository) ListJobs(_ context.Context, filter model.JobFilter) ([]model.EvaluationJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.EvaluationJob, 0, len(r.jobs))
	for _, job := range r.jobs {
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		out = append(out, *cloneJob(job))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() > out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []model.EvaluationJob{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *MemoryJobRepository) CountJobs(_ context.Context, status model.JobStatus) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, job := range r.jobs {
		if status == "" || job.Status == status {
			n++
		}
	}
	return n, nil
}

func cloneJob(job *model.EvaluationJob) *model.EvaluationJob {
	c := *job
	c.Result = cloneResult(job.Result)
	if job.Error != nil {
		e := *job.Error
		c.Error = &e
	}
	return &c
}

func cloneResult(res *model.EvaluationResult) *model.EvaluationResult {
	if res == nil {
		return nil
	}
	c := *res
	c.CVEvaluation = cloneCriteria(res.CVEvaluation)
	c.ProjectEvaluation = cloneCriteria(res.ProjectEvaluation)
	return &c
}

func cloneCriteria(in map[string]model.CriterionScore) map[string]model.CriterionScore {
	if in == nil {
		return nil
	}
	out := make(map[string]model.CriterionScore, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
