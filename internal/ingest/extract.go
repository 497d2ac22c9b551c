package ingest

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// MinContentLength is the shortest extracted text worth evaluating.
const MinContentLength = 100

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrContentTooShort     = errors.New("content too short for meaningful evaluation")
)

// Extractor turns uploaded files into plain text.
type Extractor struct {
	logger *zap.Logger
	// ocr enables the tesseract fallback for pages without a text layer.
	ocr bool
}

func NewExtractor(logger *zap.Logger, ocr bool) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger, ocr: ocr}
}

// ExtractFile dispatches on the file extension.
func (e *Extractor) ExtractFile(path string) (string, error) {
	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err = e.ExtractPDF(path)
	case ".txt", ".md":
		var b []byte
		b, err = os.ReadFile(path)
		text = string(b)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, filepath.Ext(path))
	}
	if err != nil {
		return "", err
	}
	return CheckContent(text)
}

// CheckContent trims text and rejects content too short to evaluate.
func CheckContent(text string) (string, error) {
	text = strings.TrimSpace(strings.ToValidUTF8(text, "�"))
	if len(text) < MinContentLength {
		return "", ErrContentTooShort
	}
	return text, nil
}

// ExtractPDF reads the text layer of every page, falling back to OCR for
// pages that have none when OCR is enabled.
func (e *Extractor) ExtractPDF(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var (
		fullText strings.Builder
		lastErr  error
	)
	for n := 0; n < doc.NumPage(); n++ {
		pageText, err := doc.Text(n)
		if err != nil {
			lastErr = fmt.Errorf("page %d: failed to extract text: %w", n+1, err)
			e.logger.Warn("pdf text extraction failed", zap.Int("page", n+1), zap.Error(err))
		}
		pageText = strings.TrimSpace(pageText)

		if pageText == "" && e.ocr {
			pageText, err = e.ocrPage(doc, n)
			if err != nil {
				lastErr = err
				e.logger.Warn("pdf ocr failed", zap.Int("page", n+1), zap.Error(err))
				continue
			}
		}
		if pageText != "" {
			fullText.WriteString(pageText)
			fullText.WriteString("\n\n")
		}
	}

	result := strings.TrimSpace(fullText.String())
	if result == "" {
		if lastErr != nil {
			return "", fmt.Errorf("failed to extract text: %w", lastErr)
		}
		return "", fmt.Errorf("no text extracted from PDF (PDF might be empty or images are unreadable)")
	}

	e.logger.Debug("pdf extracted", zap.Int("pages", doc.NumPage()), zap.Int("chars", len(result)))
	return result, nil
}

func (e *Extractor) ocrPage(doc *fitz.Document, n int) (string, error) {
	img, err := doc.Image(n)
	if err != nil {
		return "", fmt.Errorf("page %d: failed to extract image: %w", n+1, err)
	}

	tmpFile, err := os.CreateTemp("", "page-*.png")
	if err != nil {
		return "", fmt.Errorf("page %d: failed to create temp file: %w", n+1, err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	err = png.Encode(tmpFile, image.Image(img))
	tmpFile.Close()
	if err != nil {
		return "", fmt.Errorf("page %d: failed to save PNG: %w", n+1, err)
	}

	out, err := exec.Command("tesseract", tmpPath, "stdout", "-l", "eng").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("page %d: tesseract error: %w, output: %s", n+1, err, string(out))
	}
	return strings.TrimSpace(string(out)), nil
}
