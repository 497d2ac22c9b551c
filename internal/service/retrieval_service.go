package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/fadilmartias/cv-screening/internal/model"
	"github.com/pgvector/pgvector-go"
)

// RetrievalScope restricts a query. An empty DocumentID targets the
// reference corpus for DocumentType.
type RetrievalScope struct {
	DocumentID   string
	DocumentType model.DocumentType
}

// RetrievalService returns passages ranked by relevance to text.
type RetrievalService interface {
	Query(ctx context.Context, scope RetrievalScope, text string, topN int) ([]string, error)
}

type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type chunkSearcher interface {
	Search(ctx context.Context, embedding pgvector.Vector, documentID string, docType model.DocumentType, topK int) ([]model.DocumentChunk, error)
}

// VectorRetrievalService embeds the query and runs a nearest-neighbour search
// over indexed chunks.
type VectorRetrievalService struct {
	embedder Embedder
	chunks   chunkSearcher
}

func NewVectorRetrievalService(embedder Embedder, chunks chunkSearcher) *VectorRetrievalService {
	return &VectorRetrievalService{embedder: embedder, chunks: chunks}
}

func (s *VectorRetrievalService) Query(ctx context.Context, scope RetrievalScope, text string, topN int) ([]string, error) {
	emb, err := s.embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	chunks, err := s.chunks.Search(ctx, pgvector.NewVector(emb), scope.DocumentID, scope.DocumentType, topN)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if content := strings.TrimSpace(c.Content); content != "" {
			out = append(out, content)
		}
	}
	return out, nil
}
