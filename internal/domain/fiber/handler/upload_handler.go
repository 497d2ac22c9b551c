package handler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fadilmartias/cv-screening/internal/dto"
	"github.com/fadilmartias/cv-screening/internal/ingest"
	"github.com/fadilmartias/cv-screening/internal/middleware"
	"github.com/fadilmartias/cv-screening/internal/model"
	"github.com/fadilmartias/cv-screening/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxUploadSize = 5 * 1024 * 1024

var allowedExtensions = map[string]bool{".pdf": true, ".txt": true, ".md": true}

type documentUploader interface {
	Upload(ctx context.Context, docType model.DocumentType, originalName, path string) (*model.Document, error)
}

type UploadHandler struct {
	uploader  documentUploader
	uploadDir string
}

func NewUploadHandler(uploader documentUploader, uploadDir string) *UploadHandler {
	return &UploadHandler{uploader: uploader, uploadDir: uploadDir}
}

func (h *UploadHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/upload", middleware.RateLimiter(10, 1*time.Minute), h.Upload)
}

// Upload accepts the cv and project_report files and indexes both.
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	cv, err := h.processFile(c, model.DocumentTypeCV)
	if err != nil {
		return writeUploadError(c, err)
	}
	report, err := h.processFile(c, model.DocumentTypeProjectReport)
	if err != nil {
		return writeUploadError(c, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Success upload documents",
		Data:    dto.UploadDTO{CVID: cv.ID, ReportID: report.ID},
	})
}

type uploadError struct {
	code    int
	message string
	cause   error
}

func (e *uploadError) Error() string { return e.message }

func writeUploadError(c *fiber.Ctx, err error) error {
	var ue *uploadError
	if !errors.As(err, &ue) {
		return err
	}
	return util.ErrorResponse(c, util.ErrorResponseFormat{Code: ue.code, Message: ue.message}, ue.cause)
}

func (h *UploadHandler) processFile(c *fiber.Ctx, docType model.DocumentType) (*model.Document, error) {
	field := string(docType)
	file, err := c.FormFile(field)
	if err != nil {
		return nil, &uploadError{fiber.StatusBadRequest, fmt.Sprintf("%s file is required", field), err}
	}
	if file.Size > maxUploadSize {
		return nil, &uploadError{fiber.StatusRequestEntityTooLarge, fmt.Sprintf("%s file size is too large (max 5MB)", field), nil}
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return nil, &uploadError{fiber.StatusUnsupportedMediaType, fmt.Sprintf("unsupported %s file type", field), nil}
	}

	dir := filepath.Join(h.uploadDir, field)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &uploadError{fiber.StatusInternalServerError, fmt.Sprintf("cannot save %s file", field), err}
	}
	savePath := filepath.Join(dir, uuid.NewString()+ext)
	if err := c.SaveFile(file, savePath); err != nil {
		return nil, &uploadError{fiber.StatusInternalServerError, fmt.Sprintf("cannot save %s file", field), err}
	}

	doc, err := h.uploader.Upload(c.UserContext(), docType, file.Filename, savePath)
	if err != nil {
		code := fiber.StatusInternalServerError
		if errors.Is(err, ingest.ErrContentTooShort) || errors.Is(err, ingest.ErrUnsupportedFileType) {
			code = fiber.StatusUnprocessableEntity
		}
		return nil, &uploadError{code, fmt.Sprintf("failed to process %s", field), err}
	}
	return doc, nil
}
