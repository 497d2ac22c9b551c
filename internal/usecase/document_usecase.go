package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/fadilmartias/cv-screening/internal/ingest"
	"github.com/fadilmartias/cv-screening/internal/logger"
	"github.com/fadilmartias/cv-screening/internal/model"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

type documentRepository interface {
	CreateDocumentWithChunks(ctx context.Context, doc *model.Document, chunks []model.DocumentChunk) error
}

type chunkRepository interface {
	ReplaceReferenceChunks(ctx context.Context, types []model.DocumentType, chunks []model.DocumentChunk) error
}

type embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type textExtractor interface {
	ExtractFile(path string) (string, error)
}

// DocumentUsecase extracts, chunks and indexes documents so the retrieval
// service can answer queries over them.
type DocumentUsecase struct {
	documents    documentRepository
	chunks       chunkRepository
	embedder     embedder
	extractor    textExtractor
	chunkSize    int
	chunkOverlap int
	logger       *zap.Logger
}

func NewDocumentUsecase(documents documentRepository, chunks chunkRepository, embedder embedder, extractor textExtractor, chunkSize, chunkOverlap int, log *zap.Logger) *DocumentUsecase {
	return &DocumentUsecase{
		documents:    documents,
		chunks:       chunks,
		embedder:     embedder,
		extractor:    extractor,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		logger:       logger.OrNop(log),
	}
}

// Upload extracts the file at path and indexes it as a candidate document.
// Nothing is stored unless every chunk was embedded.
func (uc *DocumentUsecase) Upload(ctx context.Context, docType model.DocumentType, originalName, path string) (*model.Document, error) {
	if docType != model.DocumentTypeCV && docType != model.DocumentTypeProjectReport {
		return nil, fmt.Errorf("document type %q cannot be uploaded", docType)
	}
	content, err := uc.extractor.ExtractFile(path)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", docType, err)
	}

	id := uuid.New()
	chunks, err := uc.embedChunks(ctx, id.String(), docType, content)
	if err != nil {
		return nil, err
	}

	doc := &model.Document{
		ID:           id,
		Type:         docType,
		OriginalName: originalName,
		Content:      content,
		ChunkCount:   len(chunks),
	}
	if err := uc.documents.CreateDocumentWithChunks(ctx, doc, chunks); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	uc.logger.Info("document indexed",
		zap.String("document_id", doc.ID.String()),
		zap.String("document_type", string(docType)),
		zap.Int("chunks", len(chunks)),
	)
	return doc, nil
}

// SeedReference replaces the reference corpus with docs. Every document is
// embedded before the stored corpus is touched.
func (uc *DocumentUsecase) SeedReference(ctx context.Context, docs []ReferenceDocument) error {
	var (
		types  []model.DocumentType
		chunks []model.DocumentChunk
	)
	seen := map[model.DocumentType]bool{}
	for _, d := range docs {
		if !seen[d.Type] {
			seen[d.Type] = true
			types = append(types, d.Type)
		}
		text := strings.TrimSpace(d.Title + "\n\n" + d.Content)
		embedded, err := uc.embedChunks(ctx, "", d.Type, text)
		if err != nil {
			return fmt.Errorf("seed %q: %w", d.Title, err)
		}
		chunks = append(chunks, embedded...)
		uc.logger.Info("reference document embedded",
			zap.String("title", d.Title),
			zap.String("document_type", string(d.Type)),
			zap.Int("chunks", len(embedded)),
		)
	}

	if err := uc.chunks.ReplaceReferenceChunks(ctx, types, chunks); err != nil {
		return fmt.Errorf("replace reference corpus: %w", err)
	}
	return nil
}

func (uc *DocumentUsecase) embedChunks(ctx context.Context, documentID string, docType model.DocumentType, text string) ([]model.DocumentChunk, error) {
	pieces := ingest.Chunk(text, uc.chunkSize, uc.chunkOverlap)
	chunks := make([]model.DocumentChunk, 0, len(pieces))
	for i, piece := range pieces {
		emb, err := uc.embedder.GenerateEmbedding(ctx, piece)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		chunks = append(chunks, model.DocumentChunk{
			ID:           uuid.New(),
			DocumentID:   documentID,
			DocumentType: docType,
			Position:     i,
			Content:      piece,
			Embedding:    pgvector.NewVector(emb),
		})
	}
	return chunks, nil
}
