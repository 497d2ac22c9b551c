package model

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of an evaluation job.
//
//	queued → processing → completed
//	                    ↘ failed
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IsTerminal reports whether no further transition is allowed out of s.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusQueued, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// CanTransitionTo reports whether s → next is a legal lifecycle move.
// processing → processing is allowed so checkpoints can be written.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	switch s {
	case JobStatusQueued:
		return next == JobStatusProcessing || next == JobStatusFailed
	case JobStatusProcessing:
		return next == JobStatusProcessing || next == JobStatusCompleted || next == JobStatusFailed
	}
	return false
}

type EvaluationJob struct {
	ID               uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title            string            `gorm:"type:varchar(255)" json:"title"`
	CVDocumentID     string            `gorm:"type:varchar(64);index" json:"cv_document_id"`
	ReportDocumentID string            `gorm:"type:varchar(64);index" json:"report_document_id"`
	Status           JobStatus         `gorm:"type:varchar(20);index" json:"status"`
	Progress         int               `gorm:"type:int;default:0" json:"progress"`
	Result           *EvaluationResult `gorm:"type:jsonb;serializer:json" json:"result,omitempty"`
	Error            *string           `gorm:"type:text" json:"error,omitempty"`
	CreatedAt        time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func (j *EvaluationJob) TableName() string {
	return "evaluation_jobs"
}

// JobUpdate describes one atomic status write. Nil fields are left untouched,
// except that a non-failed status clears Error.
type JobUpdate struct {
	Status   JobStatus
	Progress *int
	Result   *EvaluationResult
	Error    *string
}

// JobFilter narrows ListJobs. Zero value lists everything.
type JobFilter struct {
	Status JobStatus
	Limit  int
	Offset int
}
