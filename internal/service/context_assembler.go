package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fadilmartias/cv-screening/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultTopN = 5

var errRetrievalNotConfigured = errors.New("retrieval service not configured")

// placeholders stand in for retrieved context when retrieval is down.
var placeholders = map[model.DocumentType]string{
	model.DocumentTypeCV: "Candidate CV content is currently unavailable. " +
		"Evaluate conservatively using only the information explicitly present in the prompt.",
	model.DocumentTypeProjectReport: "Candidate project report content is currently unavailable. " +
		"Evaluate conservatively and note that the report could not be reviewed in detail.",
	model.DocumentTypeJobDescription: "Backend engineering role: build and maintain server-side services, " +
		"design APIs and databases, integrate cloud infrastructure and LLM-based features, " +
		"and collaborate with product and frontend teams.",
	model.DocumentTypeCaseStudy: "Case study: build a backend service that accepts a CV and a project report, " +
		"evaluates them asynchronously with an LLM pipeline using retrieval-augmented context, " +
		"and exposes job status and results. Failures from third-party APIs must be handled gracefully.",
	model.DocumentTypeScoringRubric: "Score each criterion from 1 (very weak) to 5 (excellent). " +
		"CV: technical skills match, experience level, relevant achievements, cultural fit. " +
		"Project: correctness, code quality, resilience, documentation, creativity.",
}

// Placeholder returns the canned text used for docType when retrieval fails.
func Placeholder(docType model.DocumentType) string {
	if p, ok := placeholders[docType]; ok {
		return p
	}
	return "Relevant context is currently unavailable."
}

// ContextQuery is one facet to retrieve.
type ContextQuery struct {
	DocumentID   string
	Text         string
	DocumentType model.DocumentType
}

// ContextAssembler gathers prompt context. It never returns an error:
// retrieval failures degrade to placeholder text.
type ContextAssembler struct {
	retrieval RetrievalService
	topN      int
	timeout   time.Duration
	logger    *zap.Logger
}

func NewContextAssembler(retrieval RetrievalService, topN int, timeout time.Duration, logger *zap.Logger) *ContextAssembler {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContextAssembler{retrieval: retrieval, topN: topN, timeout: timeout, logger: logger}
}

// RetrieveContext queries documentID first, then the reference corpus for
// docType when that yields nothing. Passages are joined by blank lines.
func (a *ContextAssembler) RetrieveContext(ctx context.Context, documentID, query string, docType model.DocumentType, topN int) string {
	if topN <= 0 {
		topN = a.topN
	}
	log := a.logger.With(zap.String("document_type", string(docType)), zap.String("document_id", documentID))

	if documentID != "" {
		passages, err := a.query(ctx, RetrievalScope{DocumentID: documentID, DocumentType: docType}, query, topN)
		if err != nil {
			log.Warn("retrieval unavailable, using placeholder", zap.Error(err))
			return Placeholder(docType)
		}
		if len(passages) > 0 {
			return joinPassages(passages, topN)
		}
		log.Debug("no document passages, falling back to reference corpus")
	}

	passages, err := a.query(ctx, RetrievalScope{DocumentType: docType}, query, topN)
	if err != nil {
		log.Warn("reference retrieval unavailable, using placeholder", zap.Error(err))
		return Placeholder(docType)
	}
	if len(passages) == 0 {
		log.Debug("no reference passages, using placeholder")
		return Placeholder(docType)
	}
	return joinPassages(passages, topN)
}

// Assemble runs several queries concurrently and returns their contexts in
// the order given.
func (a *ContextAssembler) Assemble(ctx context.Context, queries []ContextQuery) []string {
	out := make([]string, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	for idx, q := range queries {
		g.Go(func() error {
			out[idx] = a.RetrieveContext(gctx, q.DocumentID, q.Text, q.DocumentType, a.topN)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (a *ContextAssembler) query(ctx context.Context, scope RetrievalScope, text string, topN int) ([]string, error) {
	if a.retrieval == nil {
		return nil, errRetrievalNotConfigured
	}
	qctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.retrieval.Query(qctx, scope, text, topN)
}

func joinPassages(passages []string, topN int) string {
	if len(passages) > topN {
		passages = passages[:topN]
	}
	return strings.Join(passages, "\n\n")
}
