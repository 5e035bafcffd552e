package render

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"ownership/internal/domain"
)

const (
	nodesSheet = "Nodes"
	edgesSheet = "Edges"
)

// EdgesXLSX writes the graph as a workbook with one sheet per element type.
func EdgesXLSX(w io.Writer, g domain.Graph) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", nodesSheet); err != nil {
		return fmt.Errorf("xlsx nodes sheet: %w", err)
	}
	if _, err := f.NewSheet(edgesSheet); err != nil {
		return fmt.Errorf("xlsx edges sheet: %w", err)
	}

	if err := f.SetSheetRow(nodesSheet, "A1", &[]any{"ID", "Label", "Group"}); err != nil {
		return err
	}
	for i, n := range g.Nodes {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(nodesSheet, cell, &[]any{n.ID, n.Label, string(n.Group)}); err != nil {
			return err
		}
	}

	if err := f.SetSheetRow(edgesSheet, "A1", &[]any{"From", "To", "Label", "Confidence"}); err != nil {
		return err
	}
	for i, e := range g.Edges {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(edgesSheet, cell, &[]any{e.From, e.To, e.Label, e.Confidence}); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(nodesSheet, "A", "A", 14)
	_ = f.SetColWidth(nodesSheet, "B", "B", 40)
	_ = f.SetColWidth(edgesSheet, "A", "B", 14)
	_ = f.SetColWidth(edgesSheet, "C", "C", 20)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}
