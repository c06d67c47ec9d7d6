// Package pipeline coordinates one contract review run: ingest text,
// fan out to the reviewer capabilities, integrate the merged findings,
// and hand the result to the caller for persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"contractlens/internal/capability"
	"contractlens/internal/config"
	"contractlens/internal/envelope"
	"contractlens/internal/ingest"
	"contractlens/internal/risk"
)

const (
	StageIngest    = "ingest"
	StageReview    = "review"
	StageIntegrate = "integrate"
)

type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func StageNameFromError(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return "pipeline"
}

type StageProgressFn func(stage, message string)

// Caller is the capability client surface the pipeline depends on.
type Caller interface {
	Call(ctx context.Context, endpoint string, payload map[string]any, timeout time.Duration) (capability.Outcome, error)
}

// Ingestor produces the contract document for a run.
type Ingestor interface {
	Ingest(ctx context.Context, path string, party risk.PartyPerspective) (risk.ContractDocument, error)
}

type Pipeline struct {
	cfg      *config.Config
	caller   Caller
	ingestor Ingestor
}

func New(cfg *config.Config) *Pipeline {
	client := capability.NewClient(cfg.Credential, cfg.MaxAttempts)
	return &Pipeline{
		cfg:      cfg,
		caller:   client,
		ingestor: ingest.NewIngestor(client, cfg.Endpoints.Ingestion, cfg.Timeouts.Call()),
	}
}

// NewWithDeps wires explicit collaborators; used by tests.
func NewWithDeps(cfg *config.Config, caller Caller, ingestor Ingestor) *Pipeline {
	return &Pipeline{cfg: cfg, caller: caller, ingestor: ingestor}
}

type RunRequest struct {
	Path  string
	Party risk.PartyPerspective
}

func (p *Pipeline) Run(ctx context.Context, req RunRequest) (risk.PipelineResult, error) {
	return p.run(ctx, req, nil)
}

func (p *Pipeline) RunWithProgress(ctx context.Context, req RunRequest, progress StageProgressFn) (risk.PipelineResult, error) {
	return p.run(ctx, req, progress)
}

// run executes the stage machine. The returned error is non-nil only for
// fatal ingestion or integration failures; the stage name travels in a
// StageError so the caller can decide whether the error-shaped result
// still gets persisted.
func (p *Pipeline) run(ctx context.Context, req RunRequest, progress StageProgressFn) (risk.PipelineResult, error) {
	tracer := otel.Tracer("contractlens/pipeline")
	ctx, span := tracer.Start(ctx, "pipeline.run")
	span.SetAttributes(attribute.String("contract.path", req.Path), attribute.String("contract.party", string(req.Party)))
	defer span.End()

	res := risk.PipelineResult{SourcePath: req.Path, PartyPerspective: req.Party}
	if !risk.ValidParty(req.Party) {
		req.Party = risk.PartyA
		res.PartyPerspective = risk.PartyA
	}

	emit(progress, StageIngest, "Extracting contract text...")
	doc, err := p.runIngest(ctx, tracer, req)
	if err != nil {
		res.Error = err.Error()
		span.RecordError(err)
		return res, &StageError{Stage: StageIngest, Err: err}
	}

	emit(progress, StageReview, "Running legal, business, and format reviews...")
	responses, merged := p.runReviews(ctx, tracer, doc)
	res.ExpertResponses = responses
	res.MergedIssues = merged

	emit(progress, StageIntegrate, "Integrating findings into a risk report...")
	report, err := p.runIntegrate(ctx, tracer, doc, merged)
	if err != nil {
		span.RecordError(err)
		fatal := risk.PipelineResult{
			SourcePath:       res.SourcePath,
			PartyPerspective: res.PartyPerspective,
			Error:            err.Error(),
		}
		// The compatible behavior discards everything gathered so far;
		// keep_partial_on_integration_failure opts out of the discard.
		if p.cfg.KeepPartialOnIntegrationFailure {
			fatal.ExpertResponses = res.ExpertResponses
			fatal.MergedIssues = res.MergedIssues
		}
		return fatal, &StageError{Stage: StageIntegrate, Err: err}
	}
	res.Report = report
	return res, nil
}

func (p *Pipeline) runIngest(ctx context.Context, tracer trace.Tracer, req RunRequest) (risk.ContractDocument, error) {
	ctx, span := tracer.Start(ctx, "stage.ingest")
	defer span.End()
	return p.ingestor.Ingest(ctx, req.Path, req.Party)
}

func emit(progress StageProgressFn, stage, message string) {
	if progress != nil {
		progress(stage, message)
	}
}

func (p *Pipeline) reviewEndpoint(key string) string {
	switch key {
	case risk.ReviewerLegal:
		return p.cfg.Endpoints.Legal
	case risk.ReviewerBusiness:
		return p.cfg.Endpoints.Business
	default:
		return p.cfg.Endpoints.Format
	}
}

func reviewCategory(key string) risk.Category {
	switch key {
	case risk.ReviewerLegal:
		return risk.CategoryLegal
	case risk.ReviewerBusiness:
		return risk.CategoryBusiness
	default:
		return risk.CategoryFormat
	}
}

// runReviews issues the three reviewer calls concurrently. Failures of
// any class are absorbed as absence markers; merged issue order is fixed
// legal, business, format regardless of completion order.
func (p *Pipeline) runReviews(ctx context.Context, tracer trace.Tracer, doc risk.ContractDocument) (map[string]risk.ExpertResponse, []risk.Issue) {
	ctx, span := tracer.Start(ctx, "stage.review")
	defer span.End()

	results := make([]risk.ExpertResponse, len(risk.ReviewerOrder))
	g, gctx := errgroup.WithContext(ctx)
	for idx, key := range risk.ReviewerOrder {
		idx, key := idx, key
		g.Go(func() error {
			results[idx] = p.review(gctx, key, doc)
			return nil
		})
	}
	g.Wait()

	responses := make(map[string]risk.ExpertResponse, len(risk.ReviewerOrder))
	merged := []risk.Issue{}
	for idx, key := range risk.ReviewerOrder {
		responses[key] = results[idx]
		if results[idx].Status == risk.ExpertOK {
			merged = append(merged, results[idx].Issues...)
		}
	}
	return responses, merged
}

func (p *Pipeline) review(ctx context.Context, key string, doc risk.ContractDocument) risk.ExpertResponse {
	payload := map[string]any{"text": doc.Text}
	if key != risk.ReviewerFormat {
		payload["party_type"] = string(doc.PartyPerspective)
	}
	outcome, err := p.caller.Call(ctx, p.reviewEndpoint(key), payload, p.cfg.Timeouts.Call())
	if err != nil {
		return risk.AbsentResponse(err.Error())
	}
	if outcome.Failed() {
		return risk.AbsentResponse(outcome.Err)
	}
	normalized, ok := envelope.Normalize(outcome.Value)
	if !ok {
		return risk.AbsentResponse("invalid response envelope")
	}
	issues, err := risk.IssuesFromPayload(normalized, reviewCategory(key))
	if err != nil {
		return risk.AbsentResponse(fmt.Sprintf("unparsable issues payload: %v", err))
	}
	return risk.PresentResponse(issues)
}

func (p *Pipeline) runIntegrate(ctx context.Context, tracer trace.Tracer, doc risk.ContractDocument, merged []risk.Issue) (*risk.AnalysisReport, error) {
	ctx, span := tracer.Start(ctx, "stage.integrate")
	defer span.End()

	payload := map[string]any{
		"text":       doc.Text,
		"party_type": string(doc.PartyPerspective),
		"issues":     merged,
	}
	outcome, err := p.caller.Call(ctx, p.cfg.Endpoints.Integration, payload, p.cfg.Timeouts.Integration())
	if err != nil {
		return nil, err
	}
	if outcome.Failed() {
		return nil, fmt.Errorf("integration call failed: %s", outcome.Err)
	}
	normalized, ok := envelope.Normalize(outcome.Value)
	if !ok {
		return nil, fmt.Errorf("integration response could not be normalized")
	}
	report, err := risk.ReportFromPayload(normalized)
	if err != nil {
		return nil, fmt.Errorf("integration report: %w", err)
	}
	return report, nil
}
