package domain

import (
	"strconv"
	"time"
)

type NodeGroup string

const (
	GroupTarget      NodeGroup = "target"
	GroupShareholder NodeGroup = "shareholder"
	GroupUnknown     NodeGroup = "unknown"
)

// UnknownShareholderID is the node id standing in for owners that are not public.
const UnknownShareholderID = "UNKNOWN"

type Node struct {
	ID    string    `json:"id"`
	Label string    `json:"label"`
	Group NodeGroup `json:"group" jsonschema:"enum=target,enum=shareholder,enum=unknown"`
}

// Edge points from owner to owned entity.
type Edge struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Label      string `json:"label"`
	Confidence int    `json:"confidence" jsonschema:"minimum=0,maximum=100"`
}

type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

type Summary struct {
	DirectShareholders int    `json:"direct_shareholders" jsonschema:"minimum=0"`
	MissingData        bool   `json:"missing_data"`
	ConfidenceScore    int    `json:"confidence_score" jsonschema:"minimum=0,maximum=100"`
	Sources            string `json:"sources"`
}

type SummaryLine struct {
	Label string
	Value string
}

// Lines renders the summary in report order.
func (s Summary) Lines() []SummaryLine {
	missing := "No"
	if s.MissingData {
		missing = "Yes"
	}
	return []SummaryLine{
		{Label: "Direct shareholders found", Value: strconv.Itoa(s.DirectShareholders)},
		{Label: "Missing data", Value: missing},
		{Label: "Confidence score", Value: strconv.Itoa(s.ConfidenceScore)},
		{Label: "Sources", Value: s.Sources},
	}
}

// Result is the document stored on a finished job.
type Result struct {
	SIREN       string    `json:"siren" jsonschema:"pattern=^[0-9]{9}$"`
	Depth       int       `json:"depth" jsonschema:"minimum=1,maximum=6"`
	Company     *Company  `json:"company,omitempty"`
	Nodes       []Node    `json:"nodes"`
	Edges       []Edge    `json:"edges"`
	Summary     Summary   `json:"summary"`
	GeneratedAt time.Time `json:"generated_at"`
}

func (r Result) Graph() Graph {
	return Graph{Nodes: r.Nodes, Edges: r.Edges}
}
