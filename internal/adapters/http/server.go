package httpadapter

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	api "ownership/internal/api"
	"ownership/internal/domain"
	"ownership/internal/platform/logger"
	"ownership/internal/ports"
)

// ArtifactOpener opens stored artifact files for download.
type ArtifactOpener interface {
	Open(path string) (*os.File, error)
}

type Options struct {
	// PublicBaseURL prefixes artifact links; empty yields host-relative links.
	PublicBaseURL string
	Gatherer      prometheus.Gatherer
	Logger        *slog.Logger
}

// Server implements the generated StrictServerInterface.
type Server struct {
	ownership ports.Ownership
	companies ports.Companies
	artifacts ArtifactOpener
	baseURL   string
	gatherer  prometheus.Gatherer
	logger    *slog.Logger
}

var _ api.StrictServerInterface = (*Server)(nil)

func New(ownership ports.Ownership, companies ports.Companies, artifacts ArtifactOpener, opts Options) *Server {
	l := opts.Logger
	if l == nil {
		l = slog.Default()
	}
	g := opts.Gatherer
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return &Server{
		ownership: ownership,
		companies: companies,
		artifacts: artifacts,
		baseURL:   strings.TrimRight(opts.PublicBaseURL, "/"),
		gatherer:  g,
		logger:    l,
	}
}

// Routes returns a chi.Router mounting the generated handlers plus the
// artifact download and metrics endpoints.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	handler := api.NewStrictHandlerWithOptions(s, nil, api.StrictHTTPServerOptions{
		RequestErrorHandlerFunc:  s.requestError,
		ResponseErrorHandlerFunc: s.responseError,
	})
	api.HandlerWithOptions(handler, api.ChiServerOptions{
		BaseRouter:       r,
		ErrorHandlerFunc: s.paramError,
	})

	r.Get("/ownership/{job_id}/artifacts/{kind}", s.downloadArtifact)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

// Strict handler methods

func (s *Server) GetHealth(ctx context.Context, _ api.GetHealthRequestObject) (api.GetHealthResponseObject, error) {
	return api.GetHealth200JSONResponse{Status: "ok", Time: time.Now().UTC()}, nil
}

func (s *Server) CreateOwnershipJob(ctx context.Context, req api.CreateOwnershipJobRequestObject) (api.CreateOwnershipJobResponseObject, error) {
	if req.Body == nil {
		return nil, &runtimeError{code: http.StatusBadRequest, msg: "missing body"}
	}
	job, err := s.ownership.Create(ctx, req.Body.Siren, req.Body.Depth)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return api.CreateOwnershipJob400JSONResponse{BadRequestJSONResponse: api.BadRequestJSONResponse{Error: err.Error()}}, nil
		}
		if job.ID != uuid.Nil {
			// Stored but never handed to a worker.
			s.logger.ErrorContext(ctx, "ownership job not dispatched", "job_id", job.ID, "error", err)
			return api.CreateOwnershipJob503JSONResponse{UnavailableJSONResponse: api.UnavailableJSONResponse{Error: "job could not be dispatched"}}, nil
		}
		return nil, err
	}

	accepted := api.JobAccepted{JobId: job.ID, Status: api.JobStatus(job.Status)}
	if job.Status.Terminal() {
		return api.CreateOwnershipJob200JSONResponse(accepted), nil
	}
	return api.CreateOwnershipJob202JSONResponse(accepted), nil
}

func (s *Server) GetOwnershipJob(ctx context.Context, req api.GetOwnershipJobRequestObject) (api.GetOwnershipJobResponseObject, error) {
	job, arts, err := s.ownership.Get(ctx, req.JobId)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return api.GetOwnershipJob404JSONResponse{NotFoundJSONResponse: api.NotFoundJSONResponse{Error: "job not found"}}, nil
		}
		return nil, err
	}
	return api.GetOwnershipJob200JSONResponse(s.jobView(job, arts)), nil
}

func (s *Server) GetCompany(ctx context.Context, req api.GetCompanyRequestObject) (api.GetCompanyResponseObject, error) {
	c, err := s.companies.GetIdentity(ctx, req.Siren)
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return api.GetCompany400JSONResponse{BadRequestJSONResponse: api.BadRequestJSONResponse{Error: err.Error()}}, nil
	case errors.Is(err, domain.ErrNotFound):
		return api.GetCompany404JSONResponse{NotFoundJSONResponse: api.NotFoundJSONResponse{Error: "company not found"}}, nil
	case errors.Is(err, domain.ErrUnavailable):
		return api.GetCompany503JSONResponse{UnavailableJSONResponse: api.UnavailableJSONResponse{Error: "registry unavailable"}}, nil
	case err != nil:
		return nil, err
	}
	return api.GetCompany200JSONResponse(companyView(c)), nil
}

func (s *Server) jobView(job domain.Job, arts []domain.Artifact) api.JobView {
	links := make([]api.ArtifactLink, 0, len(arts))
	for _, a := range arts {
		links = append(links, api.ArtifactLink{
			Kind:      api.ArtifactKind(a.Kind),
			Url:       s.artifactURL(job.ID, a.Kind),
			CreatedAt: a.CreatedAt,
		})
	}
	return api.JobView{
		JobId:      job.ID,
		Siren:      job.SIREN,
		Depth:      job.Depth,
		Status:     api.JobStatus(job.Status),
		Attempts:   job.Attempts,
		CreatedAt:  job.CreatedAt,
		UpdatedAt:  job.UpdatedAt,
		StartedAt:  job.StartedAt,
		FinishedAt: job.FinishedAt,
		Error:      job.Error,
		Confidence: job.Confidence,
		Result:     job.Result,
		Artifacts:  links,
	}
}

func (s *Server) artifactURL(jobID uuid.UUID, kind domain.ArtifactKind) string {
	return s.baseURL + "/ownership/" + jobID.String() + "/artifacts/" + string(kind)
}

func companyView(c domain.Company) api.Company {
	out := api.Company{Siren: c.SIREN, Name: c.Name}
	if c.Address != "" {
		out.Address = &c.Address
	}
	if c.Status != "" {
		out.Status = &c.Status
	}
	return out
}

func (s *Server) downloadArtifact(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "job_id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	kind := domain.ArtifactKind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		writeError(w, http.StatusNotFound, "artifact not found")
		return
	}

	_, arts, err := s.ownership.Get(r.Context(), jobID)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		s.responseError(w, r, err)
		return
	}

	var path string
	for _, a := range arts {
		if a.Kind == kind {
			path = a.Path
		}
	}
	if path == "" {
		writeError(w, http.StatusNotFound, "artifact not found")
		return
	}

	f, err := s.artifacts.Open(path)
	if err != nil {
		s.logger.WarnContext(r.Context(), "artifact unavailable", "job_id", jobID, "kind", kind, "error", err)
		writeError(w, http.StatusNotFound, "artifact not found")
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		s.responseError(w, r, err)
		return
	}

	name := filepath.Base(path)
	w.Header().Set("Content-Type", kind.ContentType())
	w.Header().Set("Content-Disposition", `inline; filename="`+name+`"`)
	http.ServeContent(w, r, name, info.ModTime(), f)
}

// requestLogger logs each request once it completes and opens a span so
// trace ids follow the job onto the queue.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := logger.StartSpan(r.Context(), r.Method+" "+r.URL.Path)
		defer span.End()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(ctx))

		s.logger.InfoContext(ctx, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
