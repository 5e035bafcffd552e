package ownershiprunner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"ownership/internal/artifacts"
	"ownership/internal/domain"
	"ownership/internal/platform/logger"
	"ownership/internal/ports"
	"ownership/internal/render"
	"ownership/internal/resultschema"
	"ownership/internal/services/confidence"
)

const (
	unknownShareholderLabel = "Actionnaire non public"
	stubEdgeLabel           = "N/A"
	stubEdgeConfidence      = 20

	sourcesWithIdentity = "Sirene (identity only); ownership not public"
	sourcesNone         = "none (registry unavailable)"
)

// Processor performs the work for one claimed job.
type Processor interface {
	Process(ctx context.Context, job domain.Job) (ports.Completion, error)
}

// StubProcessor runs the placeholder pipeline: whatever the input, it emits a
// graph with the target and a single non-public shareholder. Companies may be
// nil, in which case no identity is fetched.
type StubProcessor struct {
	Companies ports.Companies
	Artifacts *artifacts.Store
	Schema    *resultschema.Validator
	Logger    *slog.Logger
	Now       func() time.Time
}

func (p *StubProcessor) Process(ctx context.Context, job domain.Job) (ports.Completion, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}

	company := p.identity(ctx, log, job.SIREN)

	label := "Company " + job.SIREN
	sources := sourcesNone
	if company != nil {
		label = company.Name
		sources = sourcesWithIdentity
	}

	score := confidence.Score(confidence.Evidence{Inferred: true})
	result := domain.Result{
		SIREN:   job.SIREN,
		Depth:   job.Depth,
		Company: company,
		Nodes: []domain.Node{
			{ID: job.SIREN, Label: label, Group: domain.GroupTarget},
			{ID: domain.UnknownShareholderID, Label: unknownShareholderLabel, Group: domain.GroupUnknown},
		},
		Edges: []domain.Edge{
			{From: domain.UnknownShareholderID, To: job.SIREN, Label: stubEdgeLabel, Confidence: stubEdgeConfidence},
		},
		Summary: domain.Summary{
			DirectShareholders: 0,
			MissingData:        true,
			ConfidenceScore:    score,
			Sources:            sources,
		},
		GeneratedAt: now().UTC(),
	}

	if p.Schema != nil {
		if err := p.Schema.Validate(result); err != nil {
			return ports.Completion{}, err
		}
	}

	arts, err := p.render(ctx, job, result, label)
	if err != nil {
		return ports.Completion{}, err
	}
	return ports.Completion{Result: result, Confidence: score, Artifacts: arts}, nil
}

// identity never fails the job; a missing identity only changes labels and sources.
func (p *StubProcessor) identity(ctx context.Context, log *slog.Logger, siren string) *domain.Company {
	if p.Companies == nil {
		return nil
	}
	ctx, span := logger.StartSpan(ctx, "ownership.identity")
	defer span.End()

	c, err := p.Companies.GetIdentity(ctx, siren)
	if err != nil {
		log.WarnContext(ctx, "identity lookup failed, continuing without", "error", err)
		return nil
	}
	return &c
}

func (p *StubProcessor) render(ctx context.Context, job domain.Job, result domain.Result, name string) ([]domain.Artifact, error) {
	_, span := logger.StartSpan(ctx, "ownership.render")
	defer span.End()

	companyName := ""
	if result.Company != nil {
		companyName = name
	}
	jobID := job.ID.String()

	renderers := []struct {
		kind domain.ArtifactKind
		fn   func(io.Writer) error
	}{
		{domain.ArtifactGraph, func(w io.Writer) error {
			return render.GraphHTML(w, render.GraphPage{JobID: jobID, SIREN: job.SIREN, CompanyName: companyName, Graph: result.Graph()})
		}},
		{domain.ArtifactPDF, func(w io.Writer) error {
			return render.ReportPDF(w, render.Report{
				JobID:       jobID,
				SIREN:       job.SIREN,
				CompanyName: companyName,
				GeneratedAt: result.GeneratedAt,
				Summary:     result.Summary.Lines(),
			})
		}},
		{domain.ArtifactXLSX, func(w io.Writer) error {
			return render.EdgesXLSX(w, result.Graph())
		}},
	}

	out := make([]domain.Artifact, 0, len(renderers))
	for _, r := range renderers {
		path, err := p.Artifacts.Write(job.ID, r.kind, r.fn)
		if err != nil {
			return nil, fmt.Errorf("write %s artifact: %w", r.kind, err)
		}
		out = append(out, domain.Artifact{JobID: job.ID, Kind: r.kind, Path: path})
	}
	return out, nil
}
