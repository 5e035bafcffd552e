package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"ownership/internal/artifacts"
	"ownership/internal/domain"
	"ownership/internal/platform/metrics"
)

type fakeOwnership struct {
	jobs      map[uuid.UUID]domain.Job
	artifacts map[uuid.UUID][]domain.Artifact
	status    domain.JobStatus
	createErr error
	lastDepth *int
}

func (f *fakeOwnership) Create(ctx context.Context, siren string, depth *int) (domain.Job, error) {
	f.lastDepth = depth
	if _, err := domain.ValidateSIREN(siren); err != nil {
		return domain.Job{}, err
	}
	if _, err := domain.NormalizeDepth(depth); err != nil {
		return domain.Job{}, err
	}
	j := domain.Job{ID: uuid.New(), SIREN: siren, Status: f.status}
	if f.createErr != nil {
		j.Status = domain.JobFailed
		return j, f.createErr
	}
	f.jobs[j.ID] = j
	return j, nil
}

func (f *fakeOwnership) Get(ctx context.Context, id uuid.UUID) (domain.Job, []domain.Artifact, error) {
	j, ok := f.jobs[id]
	if !ok {
		return domain.Job{}, nil, domain.ErrNotFound
	}
	return j, f.artifacts[id], nil
}

type fakeCompanies struct{}

func (fakeCompanies) GetIdentity(ctx context.Context, siren string) (domain.Company, error) {
	if _, err := domain.ValidateSIREN(siren); err != nil {
		return domain.Company{}, err
	}
	switch siren {
	case "552100554":
		return domain.Company{SIREN: siren, Name: "ACME", Address: "1 RUE DE LA PAIX"}, nil
	case "999999999":
		return domain.Company{}, errors.New("registry exploded")
	case "732829320":
		return domain.Company{}, fmt.Errorf("lookup %s: registry %w", siren, domain.ErrUnavailable)
	}
	return domain.Company{}, domain.ErrNotFound
}

type ServerSuite struct {
	suite.Suite
	own   *fakeOwnership
	store *artifacts.Store
	srv   *httptest.Server
}

func (s *ServerSuite) SetupTest() {
	s.own = &fakeOwnership{
		jobs:      map[uuid.UUID]domain.Job{},
		artifacts: map[uuid.UUID][]domain.Artifact{},
		status:    domain.JobQueued,
	}
	store, err := artifacts.New(s.T().TempDir())
	s.Require().NoError(err)
	s.store = store

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.IncJobsCreated()

	server := New(s.own, fakeCompanies{}, store, Options{PublicBaseURL: "https://ownership.example/", Gatherer: reg})
	s.srv = httptest.NewServer(server.Routes())
}

func (s *ServerSuite) TearDownTest() { s.srv.Close() }

func (s *ServerSuite) do(method, path, body string) (*http.Response, map[string]any) {
	req, err := http.NewRequest(method, s.srv.URL+path, strings.NewReader(body))
	s.Require().NoError(err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func (s *ServerSuite) TestHealth() {
	resp, body := s.do(http.MethodGet, "/health", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("ok", body["status"])
	_, err := time.Parse(time.RFC3339, body["time"].(string))
	s.NoError(err)
}

func (s *ServerSuite) TestCreateQueued() {
	resp, body := s.do(http.MethodPost, "/ownership", `{"siren":"552100554","depth":2}`)
	s.Equal(http.StatusAccepted, resp.StatusCode)
	s.Equal("queued", body["status"])
	_, err := uuid.Parse(body["job_id"].(string))
	s.NoError(err)
	s.Require().NotNil(s.own.lastDepth)
	s.Equal(2, *s.own.lastDepth)
}

func (s *ServerSuite) TestCreateInline() {
	s.own.status = domain.JobDone
	resp, body := s.do(http.MethodPost, "/ownership", `{"siren":"552100554"}`)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("done", body["status"])
	s.Nil(s.own.lastDepth)
}

func (s *ServerSuite) TestCreateBadInput() {
	for _, body := range []string{
		`{"siren":"123"}`,
		`{"siren":"552100554","depth":9}`,
		`{"siren":`,
		`null`,
	} {
		resp, out := s.do(http.MethodPost, "/ownership", body)
		s.Equal(http.StatusBadRequest, resp.StatusCode, body)
		s.NotEmpty(out["error"], body)
	}
}

func (s *ServerSuite) TestCreateDispatchFailure() {
	s.own.createErr = errors.New("redis down")
	resp, body := s.do(http.MethodPost, "/ownership", `{"siren":"552100554"}`)
	s.Equal(http.StatusServiceUnavailable, resp.StatusCode)
	s.Equal("job could not be dispatched", body["error"])
}

func (s *ServerSuite) TestGetJob() {
	id := uuid.New()
	now := time.Now().UTC().Truncate(time.Second)
	conf := 0
	s.own.jobs[id] = domain.Job{
		ID: id, SIREN: "552100554", Depth: 3, Status: domain.JobDone, Attempts: 1,
		CreatedAt: now, UpdatedAt: now, Confidence: &conf,
		Result: &domain.Result{SIREN: "552100554", Depth: 3, Nodes: []domain.Node{}, Edges: []domain.Edge{}},
	}
	s.own.artifacts[id] = []domain.Artifact{
		{ID: 1, JobID: id, Kind: domain.ArtifactGraph, Path: "/x/graph.html", CreatedAt: now},
		{ID: 2, JobID: id, Kind: domain.ArtifactPDF, Path: "/x/report.pdf", CreatedAt: now},
	}

	resp, body := s.do(http.MethodGet, "/ownership/"+id.String(), "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal(id.String(), body["job_id"])
	s.Equal("552100554", body["siren"])
	s.Equal("done", body["status"])
	s.Equal(float64(0), body["confidence"])
	s.NotContains(body, "error")
	s.Equal("552100554", body["result"].(map[string]any)["siren"])

	arts := body["artifacts"].([]any)
	s.Require().Len(arts, 2)
	first := arts[0].(map[string]any)
	s.Equal("graph", first["kind"])
	s.Equal("https://ownership.example/ownership/"+id.String()+"/artifacts/graph", first["url"])
}

func (s *ServerSuite) TestGetJobNotFound() {
	resp, body := s.do(http.MethodGet, "/ownership/"+uuid.NewString(), "")
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Equal("job not found", body["error"])

	resp, body = s.do(http.MethodGet, "/ownership/not-a-uuid", "")
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Equal("job not found", body["error"])
}

func (s *ServerSuite) TestDownloadArtifact() {
	id := uuid.New()
	path, err := s.store.Write(id, domain.ArtifactPDF, func(w io.Writer) error {
		_, err := io.WriteString(w, "%PDF-1.3 test")
		return err
	})
	s.Require().NoError(err)
	s.own.jobs[id] = domain.Job{ID: id, SIREN: "552100554", Status: domain.JobDone}
	s.own.artifacts[id] = []domain.Artifact{{JobID: id, Kind: domain.ArtifactPDF, Path: path}}

	resp, err := http.Get(s.srv.URL + "/ownership/" + id.String() + "/artifacts/pdf")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("application/pdf", resp.Header.Get("Content-Type"))
	b, _ := io.ReadAll(resp.Body)
	s.Equal("%PDF-1.3 test", string(b))

	for _, p := range []string{
		"/ownership/" + id.String() + "/artifacts/xlsx",
		"/ownership/" + id.String() + "/artifacts/exe",
		"/ownership/" + uuid.NewString() + "/artifacts/pdf",
		"/ownership/nope/artifacts/pdf",
	} {
		resp, _ := s.do(http.MethodGet, p, "")
		s.Equal(http.StatusNotFound, resp.StatusCode, p)
	}
}

func (s *ServerSuite) TestDownloadRejectsForeignPaths() {
	id := uuid.New()
	outside := filepath.Join(s.T().TempDir(), "secret.pdf")
	s.Require().NoError(os.WriteFile(outside, []byte("secret"), 0o600))
	s.own.jobs[id] = domain.Job{ID: id, Status: domain.JobDone}
	s.own.artifacts[id] = []domain.Artifact{{JobID: id, Kind: domain.ArtifactPDF, Path: outside}}

	resp, _ := s.do(http.MethodGet, "/ownership/"+id.String()+"/artifacts/pdf", "")
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *ServerSuite) TestGetCompany() {
	resp, body := s.do(http.MethodGet, "/companies/552100554", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("ACME", body["name"])
	s.Equal("1 RUE DE LA PAIX", body["address"])
	s.NotContains(body, "status")

	resp, _ = s.do(http.MethodGet, "/companies/ACME", "")
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp, body = s.do(http.MethodGet, "/companies/552032534", "")
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Equal("company not found", body["error"])

	resp, body = s.do(http.MethodGet, "/companies/999999999", "")
	s.Equal(http.StatusInternalServerError, resp.StatusCode)
	s.Equal("internal error", body["error"])

	resp, body = s.do(http.MethodGet, "/companies/732829320", "")
	s.Equal(http.StatusServiceUnavailable, resp.StatusCode)
	s.Equal("registry unavailable", body["error"])
}

func (s *ServerSuite) TestMetrics() {
	resp, err := http.Get(s.srv.URL + "/metrics")
	s.Require().NoError(err)
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(string(b), "ownership_jobs_created_total 1")
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func TestArtifactURLWithoutBase(t *testing.T) {
	srv := New(nil, nil, nil, Options{})
	id := uuid.MustParse("6f1c1a9e-0d4c-4c55-9c0e-2b7f2f1f3a10")
	assert.Equal(t, "/ownership/6f1c1a9e-0d4c-4c55-9c0e-2b7f2f1f3a10/artifacts/xlsx", srv.artifactURL(id, domain.ArtifactXLSX))
	require.NotNil(t, srv.gatherer)
}
