package usecase

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/fadilmartias/cv-screening/internal/logger"
	"github.com/fadilmartias/cv-screening/internal/model"
	"github.com/fadilmartias/cv-screening/internal/repository"
	"github.com/fadilmartias/cv-screening/internal/scoring"
	"github.com/fadilmartias/cv-screening/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Progress checkpoints written before each stage starts.
const (
	ProgressStarted   = 10
	ProgressCVStage   = 20
	ProgressCVDone    = 50
	ProgressProject   = 60
	ProgressSummary   = 80
	ProgressCompleted = 100
)

const (
	scoringAttempts    = 3
	scoringTemperature = 0.2
	summaryAttempts    = 2
	summaryTemperature = 0.4

	// SummaryUnavailable replaces the narrative when its generation fails.
	SummaryUnavailable = "Summary unavailable: the narrative summary could not be generated. Refer to the individual scores and details."
)

// CV facets queried against the candidate's CV.
var cvFacets = []string{
	"technical skills, programming languages, frameworks, databases and tools",
	"work experience, roles, seniority and years of experience",
	"achievements, measurable impact and scale of results",
	"projects built, responsibilities and technologies used",
}

type invoker interface {
	Invoke(ctx context.Context, prompt string, maxAttempts int, temperature float32) (string, error)
}

type contextAssembler interface {
	Assemble(ctx context.Context, queries []service.ContextQuery) []string
}

// EvaluationUsecase runs the evaluation pipeline for one job at a time per
// call. It is safe for concurrent use across different jobs.
type EvaluationUsecase struct {
	store     repository.JobStore
	invoker   invoker
	assembler contextAssembler
	logger    *zap.Logger
}

func NewEvaluationUsecase(store repository.JobStore, invoker invoker, assembler contextAssembler, log *zap.Logger) *EvaluationUsecase {
	return &EvaluationUsecase{
		store:     store,
		invoker:   invoker,
		assembler: assembler,
		logger:    logger.OrNop(log),
	}
}

// Run drives a queued job to a terminal state. The returned error is the
// job-fatal cause, already recorded on the job.
func (uc *EvaluationUsecase) Run(ctx context.Context, jobID uuid.UUID) (err error) {
	log := uc.logger.With(zap.String("job_id", jobID.String()))

	job, err := uc.store.GetJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job: %w", err)
	}
	if job.Status != model.JobStatusQueued {
		return fmt.Errorf("job is %s: %w", job.Status, repository.ErrInvalidTransition)
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("pipeline panic", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			err = fmt.Errorf("pipeline panic: %v", r)
			uc.fail(ctx, jobID, err, log)
		}
	}()

	if err = uc.execute(ctx, job, log); err != nil {
		uc.fail(ctx, jobID, err, log)
		return err
	}
	return nil
}

func (uc *EvaluationUsecase) execute(ctx context.Context, job *model.EvaluationJob, log *zap.Logger) error {
	if err := uc.checkpoint(ctx, job.ID, ProgressStarted, nil); err != nil {
		return err
	}
	log.Info("evaluation started", zap.String("title", job.Title))

	// CV stage
	if err := uc.checkpoint(ctx, job.ID, ProgressCVStage, nil); err != nil {
		return err
	}
	cvEval, err := uc.evaluateCV(ctx, job, log)
	if err != nil {
		return err
	}
	partial := &model.EvaluationResult{
		RubricVersion:     scoring.RubricVersion,
		CVEvaluation:      cvEval,
		ProjectEvaluation: map[string]model.CriterionScore{},
	}
	if err := uc.checkpoint(ctx, job.ID, ProgressCVDone, partial); err != nil {
		return err
	}

	// Project stage
	if err := uc.checkpoint(ctx, job.ID, ProgressProject, nil); err != nil {
		return err
	}
	projectEval, err := uc.evaluateProject(ctx, job, log)
	if err != nil {
		return err
	}
	final := scoring.Final(cvEval, projectEval)

	// Summary stage
	if err := uc.checkpoint(ctx, job.ID, ProgressSummary, nil); err != nil {
		return err
	}
	summary := uc.summarize(ctx, job, cvEval, projectEval, final, log)

	result := &model.EvaluationResult{
		RubricVersion:     scoring.RubricVersion,
		CVEvaluation:      cvEval,
		ProjectEvaluation: projectEval,
		OverallSummary:    summary,
		FinalScore:        final,
	}
	progress := ProgressCompleted
	if err := uc.store.UpdateJobStatus(ctx, job.ID, model.JobUpdate{
		Status:   model.JobStatusCompleted,
		Progress: &progress,
		Result:   result,
	}); err != nil {
		return fmt.Errorf("finalize job: %w", err)
	}

	log.Info("evaluation completed",
		zap.Float64("cv_score", final.CVScore),
		zap.Float64("project_score", final.ProjectScore),
		zap.Float64("overall_score", final.OverallScore),
	)
	return nil
}

func (uc *EvaluationUsecase) evaluateCV(ctx context.Context, job *model.EvaluationJob, log *zap.Logger) (map[string]model.CriterionScore, error) {
	queries := make([]service.ContextQuery, 0, len(cvFacets)+2)
	for _, facet := range cvFacets {
		queries = append(queries, service.ContextQuery{
			DocumentID: job.CVDocumentID, Text: facet, DocumentType: model.DocumentTypeCV,
		})
	}
	queries = append(queries,
		service.ContextQuery{Text: job.Title + " job requirements and qualifications", DocumentType: model.DocumentTypeJobDescription},
		service.ContextQuery{Text: "CV evaluation rubric and scoring guide", DocumentType: model.DocumentTypeScoringRubric},
	)
	contexts := uc.assembler.Assemble(ctx, queries)

	n := len(cvFacets)
	cvContext := joinSections(cvFacets, contexts[:n])
	prompt := buildCVPrompt(job.Title, cvContext, contexts[n], contexts[n+1])

	raw, err := uc.invoker.Invoke(ctx, prompt, scoringAttempts, scoringTemperature)
	if err != nil {
		return nil, fmt.Errorf("cv evaluation: %w", err)
	}
	return uc.parse(raw, scoring.CVRubric, log), nil
}

func (uc *EvaluationUsecase) evaluateProject(ctx context.Context, job *model.EvaluationJob, log *zap.Logger) (map[string]model.CriterionScore, error) {
	contexts := uc.assembler.Assemble(ctx, []service.ContextQuery{
		{DocumentID: job.ReportDocumentID, Text: "implementation, architecture, error handling, retries, testing and documentation", DocumentType: model.DocumentTypeProjectReport},
		{Text: "case study requirements and deliverables", DocumentType: model.DocumentTypeCaseStudy},
		{Text: "project evaluation rubric and scoring guide", DocumentType: model.DocumentTypeScoringRubric},
	})
	prompt := buildProjectPrompt(job.Title, contexts[0], contexts[1], contexts[2])

	raw, err := uc.invoker.Invoke(ctx, prompt, scoringAttempts, scoringTemperature)
	if err != nil {
		return nil, fmt.Errorf("project evaluation: %w", err)
	}
	return uc.parse(raw, scoring.ProjectRubric, log), nil
}

func (uc *EvaluationUsecase) summarize(ctx context.Context, job *model.EvaluationJob, cv, project map[string]model.CriterionScore, final model.FinalScore, log *zap.Logger) string {
	prompt := buildSummaryPrompt(job.Title, cv, project, final)
	text, err := uc.invoker.Invoke(ctx, prompt, summaryAttempts, summaryTemperature)
	if err != nil {
		log.Warn("summary generation failed", zap.Error(err))
		return SummaryUnavailable
	}
	return text
}

// parse never fails: malformed output becomes the rubric's neutral evaluation.
func (uc *EvaluationUsecase) parse(raw string, r scoring.Rubric, log *zap.Logger) map[string]model.CriterionScore {
	eval, err := scoring.ParseEvaluation(raw, r)
	if err != nil {
		log.Warn("unparseable rubric response, using neutral scores",
			zap.String("rubric", r.Name),
			zap.String("response_preview", logger.Truncate(raw, 200)),
			zap.Error(err),
		)
		return scoring.NeutralEvaluation(r)
	}
	return eval
}

// checkpoint records progress while processing. It is also where a
// cancelled context stops the pipeline between stages.
func (uc *EvaluationUsecase) checkpoint(ctx context.Context, id uuid.UUID, progress int, partial *model.EvaluationResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := uc.store.UpdateJobStatus(ctx, id, model.JobUpdate{
		Status:   model.JobStatusProcessing,
		Progress: &progress,
		Result:   partial,
	})
	if err != nil {
		return fmt.Errorf("write progress %d: %w", progress, err)
	}
	return nil
}

func (uc *EvaluationUsecase) fail(ctx context.Context, id uuid.UUID, cause error, log *zap.Logger) {
	msg := cause.Error()
	err := uc.store.UpdateJobStatus(context.WithoutCancel(ctx), id, model.JobUpdate{
		Status: model.JobStatusFailed,
		Error:  &msg,
	})
	if err != nil && !errors.Is(err, repository.ErrInvalidTransition) {
		log.Error("could not record job failure", zap.Error(err))
	}
	log.Error("evaluation failed", zap.Error(cause))
}

func joinSections(titles, bodies []string) string {
	out := ""
	for i := range titles {
		if i > 0 {
			out += "\n\n"
		}
		out += "## " + titles[i] + "\n" + bodies[i]
	}
	return out
}
