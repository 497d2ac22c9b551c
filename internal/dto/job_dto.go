package dto

import (
	"time"

	"github.com/fadilmartias/cv-screening/internal/model"
	"github.com/google/uuid"
)

type EvaluateRequest struct {
	JobTitle string `json:"job_title"`
	CVID     string `json:"cv_id"`
	ReportID string `json:"report_id"`
}

// Validate returns field errors keyed by json name, or nil.
func (r EvaluateRequest) Validate() map[string]string {
	errs := map[string]string{}
	if r.JobTitle == "" {
		errs["job_title"] = "job_title is required"
	}
	if r.CVID == "" {
		errs["cv_id"] = "cv_id is required"
	}
	if r.ReportID == "" {
		errs["report_id"] = "report_id is required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

type SubmittedJobDTO struct {
	ID     uuid.UUID       `json:"id"`
	Status model.JobStatus `json:"status"`
}

type UploadDTO struct {
	CVID     uuid.UUID `json:"cv_id"`
	ReportID uuid.UUID `json:"report_id"`
}

type JobDTO struct {
	ID        uuid.UUID               `json:"id"`
	Title     string                  `json:"job_title"`
	CVID      string                  `json:"cv_id"`
	ReportID  string                  `json:"report_id"`
	Status    model.JobStatus         `json:"status"`
	Progress  int                     `json:"progress"`
	Result    *model.EvaluationResult `json:"result,omitempty"`
	Error     *string                 `json:"error,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

func NewJobDTO(job *model.EvaluationJob) JobDTO {
	return JobDTO{
		ID:        job.ID,
		Title:     job.Title,
		CVID:      job.CVDocumentID,
		ReportID:  job.ReportDocumentID,
		Status:    job.Status,
		Progress:  job.Progress,
		Result:    job.Result,
		Error:     job.Error,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
}

func NewJobDTOs(jobs []model.EvaluationJob) []JobDTO {
	out := make([]JobDTO, 0, len(jobs))
	for i := range jobs {
		out = append(out, NewJobDTO(&jobs[i]))
	}
	return out
}
