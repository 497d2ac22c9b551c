package repository

import (
	"context"
	"errors"

	"github.com/fadilmartias/cv-screening/internal/model"
	"github.com/google/uuid"
)

var (
	ErrJobNotFound       = errors.New("job not found")
	ErrInvalidTransition = errors.New("invalid job status transition")
)

// JobStore persists evaluation jobs. Every UpdateJobStatus is atomic for a
// single record and rejects transitions out of terminal states and progress
// regressions while processing.
type JobStore interface {
	CreateJob(ctx context.Context, job *model.EvaluationJob) error
	GetJob(ctx context.Context, id uuid.UUID) (*model.EvaluationJob, error)
	UpdateJobStatus(ctx context.Context, id uuid.UUID, update model.JobUpdate) error
	ListJobs(ctx context.Context, filter model.JobFilter) ([]model.EvaluationJob, error)
	// CountJobs counts jobs with status, or all jobs when status is empty.
	CountJobs(ctx context.Context, status model.JobStatus) (int64, error)
}

// checkUpdate validates update against the current record state.
func checkUpdate(current *model.EvaluationJob, update model.JobUpdate) error {
	if !current.Status.CanTransitionTo(update.Status) {
		return ErrInvalidTransition
	}
	if update.Progress != nil {
		p := *update.Progress
		if p < 0 || p > 100 {
			return ErrInvalidTransition
		}
		if current.Status == model.JobStatusProcessing && update.Status == model.JobStatusProcessing && p < current.Progress {
			return ErrInvalidTransition
		}
	}
	if update.Error != nil && update.Status != model.JobStatusFailed {
		return ErrInvalidTransition
	}
	if update.Result != nil && update.Status != model.JobStatusProcessing && update.Status != model.JobStatusCompleted {
		return ErrInvalidTransition
	}
	return nil
}

// applyUpdate mutates job in place; callers must have run checkUpdate.
func applyUpdate(job *model.EvaluationJob, update model.JobUpdate) {
	job.Status = update.Status
	if update.Progress != nil {
		job.Progress = *update.Progress
	}
	if update.Result != nil {
		job.Result = update.Result
	}
	if update.Status == model.JobStatusFailed {
		job.Result = nil
		job.Error = update.Error
	} else {
		job.Error = nil
	}
}
