package domain

import (
	"time"

	"github.com/google/uuid"
)

// Core domain models used internally. API types are generated from OpenAPI and
// sit in internal/api; keep these decoupled.

type JobStatus string

const (
	JobQueued  JobStatus = "queued"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Terminal reports whether no further transition is possible.
func (s JobStatus) Terminal() bool {
	return s == JobDone || s == JobFailed
}

func (s JobStatus) Valid() bool {
	switch s {
	case JobQueued, JobRunning, JobDone, JobFailed:
		return true
	}
	return false
}

// Job is one ownership resolution request. Created by the API, mutated only by workers.
type Job struct {
	ID         uuid.UUID
	SIREN      string
	Depth      int
	Status     JobStatus
	Attempts   int
	Error      *string
	Confidence *int
	Result     *Result
	CreatedAt  time.Time
	UpdatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
}

type ArtifactKind string

const (
	ArtifactGraph ArtifactKind = "graph"
	ArtifactPDF   ArtifactKind = "pdf"
	ArtifactXLSX  ArtifactKind = "xlsx"
)

func (k ArtifactKind) Valid() bool {
	switch k {
	case ArtifactGraph, ArtifactPDF, ArtifactXLSX:
		return true
	}
	return false
}

func (k ArtifactKind) ContentType() string {
	switch k {
	case ArtifactGraph:
		return "text/html; charset=utf-8"
	case ArtifactPDF:
		return "application/pdf"
	case ArtifactXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}

// FileName is the on-disk name of the artifact for a job.
func (k ArtifactKind) FileName(jobID uuid.UUID) string {
	switch k {
	case ArtifactGraph:
		return "graph_" + jobID.String() + ".html"
	case ArtifactPDF:
		return "report_" + jobID.String() + ".pdf"
	case ArtifactXLSX:
		return "graph_" + jobID.String() + ".xlsx"
	}
	return string(k) + "_" + jobID.String()
}

type Artifact struct {
	ID        int64
	JobID     uuid.UUID
	Kind      ArtifactKind
	Path      string
	CreatedAt time.Time
}

// Company is a registry identity snapshot. LastSeen is storage bookkeeping only.
type Company struct {
	SIREN    string    `json:"siren" jsonschema:"pattern=^[0-9]{9}$"`
	Name     string    `json:"name"`
	Address  string    `json:"address,omitempty"`
	Status   string    `json:"status,omitempty"`
	LastSeen time.Time `json:"-"`
}
