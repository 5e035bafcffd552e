package render

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"ownership/internal/domain"
)

const reportTitle = "Ownership Chain Report (MVP)"

type Report struct {
	JobID       string
	SIREN       string
	CompanyName string
	GeneratedAt time.Time
	Summary     []domain.SummaryLine
}

// ReportPDF writes an A4 report. Long summaries flow onto further pages.
func ReportPDF(w io.Writer, r Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(reportTitle, true)
	pdf.SetCreator("ownership", true)
	pdf.SetMargins(18, 20, 18)
	pdf.SetAutoPageBreak(true, 25)
	// core fonts are cp1252; company names carry accents
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, reportTitle, "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 12)
	line := func(s string) {
		pdf.CellFormat(0, 7, tr(s), "", 1, "L", false, 0, "")
	}
	line("SIREN: " + r.SIREN)
	if r.CompanyName != "" {
		line("Company: " + r.CompanyName)
	}
	line("Job ID: " + r.JobID)
	line("Generated at: " + r.GeneratedAt.UTC().Format("2006-01-02 15:04:05") + " UTC")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, s := range r.Summary {
		pdf.MultiCell(0, 5, tr(fmt.Sprintf("- %s: %s", s.Label, s.Value)), "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
