// Package render turns an ownership result into the downloadable artifacts:
// an HTML graph page, a PDF report and an XLSX workbook.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"ownership/internal/domain"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var graphTmpl = template.Must(template.ParseFS(templatesFS, "templates/graph.html.tmpl"))

type GraphPage struct {
	JobID       string
	SIREN       string
	CompanyName string
	Graph       domain.Graph
}

// GraphHTML writes a standalone page that draws the graph with vis-network.
func GraphHTML(w io.Writer, p GraphPage) error {
	if p.Graph.Nodes == nil {
		p.Graph.Nodes = []domain.Node{}
	}
	if p.Graph.Edges == nil {
		p.Graph.Edges = []domain.Edge{}
	}
	if err := graphTmpl.Execute(w, p); err != nil {
		return fmt.Errorf("render graph page: %w", err)
	}
	return nil
}
