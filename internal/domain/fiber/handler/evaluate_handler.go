package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fadilmartias/cv-screening/internal/dto"
	"github.com/fadilmartias/cv-screening/internal/middleware"
	"github.com/fadilmartias/cv-screening/internal/model"
	"github.com/fadilmartias/cv-screening/internal/queue"
	"github.com/fadilmartias/cv-screening/internal/repository"
	"github.com/fadilmartias/cv-screening/internal/response"
	"github.com/fadilmartias/cv-screening/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type jobScheduler interface {
	Submit(ctx context.Context, title, cvDocumentID, reportDocumentID string) (*model.EvaluationJob, error)
	Get(ctx context.Context, id uuid.UUID) (*model.EvaluationJob, error)
	List(ctx context.Context, filter model.JobFilter) ([]model.EvaluationJob, error)
	Count(ctx context.Context, status model.JobStatus) (int64, error)
}

type documentFinder interface {
	FindDocumentByID(ctx context.Context, id string) (*model.Document, error)
}

type EvaluateHandler struct {
	scheduler jobScheduler
	documents documentFinder
}

// NewEvaluateHandler wires the job endpoints. documents may be nil, in which
// case submitted ids are not checked.
func NewEvaluateHandler(scheduler jobScheduler, documents documentFinder) *EvaluateHandler {
	return &EvaluateHandler{scheduler: scheduler, documents: documents}
}

func (h *EvaluateHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/evaluate", middleware.RateLimiter(10, 1*time.Minute), h.Evaluate)
	app.Get("/result/:id", h.Result)
	app.Get("/jobs", h.Jobs)
}

func (h *EvaluateHandler) Evaluate(c *fiber.Ctx) error {
	var req dto.EvaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}
	if errs := req.Validate(); errs != nil {
		return util.ValidationResponse(c, util.NewFormError("invalid evaluation request", errs))
	}

	fieldErrs := map[string]string{}
	if msg := h.checkDocument(c.UserContext(), req.CVID, model.DocumentTypeCV); msg != "" {
		fieldErrs["cv_id"] = msg
	}
	if msg := h.checkDocument(c.UserContext(), req.ReportID, model.DocumentTypeProjectReport); msg != "" {
		fieldErrs["report_id"] = msg
	}
	if len(fieldErrs) > 0 {
		return util.ValidationResponse(c, util.NewFormError("unknown documents", fieldErrs))
	}

	job, err := h.scheduler.Submit(c.UserContext(), req.JobTitle, req.CVID, req.ReportID)
	if err != nil {
		code := fiber.StatusInternalServerError
		if errors.Is(err, queue.ErrSchedulerClosed) {
			code = fiber.StatusServiceUnavailable
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    code,
			Message: "failed to submit evaluation",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusAccepted,
		Message: "Success submit evaluation",
		Data:    dto.SubmittedJobDTO{ID: job.ID, Status: job.Status},
	})
}

// checkDocument returns a field error message, or "" when id names a document of docType.
func (h *EvaluateHandler) checkDocument(ctx context.Context, id string, docType model.DocumentType) string {
	if h.documents == nil {
		return ""
	}
	if _, err := uuid.Parse(id); err != nil {
		return "must be a document id returned by /upload"
	}
	doc, err := h.documents.FindDocumentByID(ctx, id)
	if err != nil {
		return "document not found"
	}
	if doc.Type != docType {
		return fmt.Sprintf("document is a %s, expected %s", doc.Type, docType)
	}
	return ""
}

func (h *EvaluateHandler) Result(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid job id",
		}, err)
	}

	job, err := h.scheduler.Get(c.UserContext(), id)
	if errors.Is(err, repository.ErrJobNotFound) {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusNotFound,
			Message: "job not found",
		})
	}
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to get evaluation result",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get evaluation result",
		Data:    dto.NewJobDTO(job),
	})
}

func (h *EvaluateHandler) Jobs(c *fiber.Ctx) error {
	status := model.JobStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		return util.ValidationResponse(c, util.NewFormError("invalid filter", map[string]string{
			"status": "must be one of queued, processing, completed, failed",
		}))
	}
	limit := c.QueryInt("limit", defaultPageSize)
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	filter := model.JobFilter{Status: status, Limit: limit, Offset: offset}
	jobs, err := h.scheduler.List(c.UserContext(), filter)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to list jobs",
		}, err)
	}
	total, err := h.scheduler.Count(c.UserContext(), status)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to count jobs",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success list jobs",
		Data:       dto.NewJobDTOs(jobs),
		Pagination: response.NewPagination(limit, offset, len(jobs), total),
	})
}
