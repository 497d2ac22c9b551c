package repository

import (
	"context"
	"errors"

	"github.com/fadilmartias/cv-screening/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JobRepository is the postgres-backed JobStore.
type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db}
}

func (r *JobRepository) CreateJob(ctx context.Context, job *model.EvaluationJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *JobRepository) GetJob(ctx context.Context, id uuid.UUID) (*model.EvaluationJob, error) {
	var job model.EvaluationJob
	err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// UpdateJobStatus locks the row, validates the transition and writes it back
// inside one transaction.
func (r *JobRepository) UpdateJobStatus(ctx context.Context, id uuid.UUID, update model.JobUpdate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job model.EvaluationJob
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&job, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrJobNotFound
		}
		if err != nil {
			return err
		}
		if err := checkUpdate(&job, update); err != nil {
			return err
		}
		applyUpdate(&job, update)
		return tx.Save(&job).Error
	})
}

func (r *JobRepository) ListJobs(ctx context.Context, filter model.JobFilter) ([]model.EvaluationJob, error) {
	var jobs []model.EvaluationJob

	q := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	err := q.Find(&jobs).Error
	return jobs, err
}

func (r *JobRepository) CountJobs(ctx context.Context, status model.JobStatus) (int64, error) {
	var total int64
	q := r.db.WithContext(ctx).Model(&model.EvaluationJob{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Count(&total).Error
	return total, err
}
