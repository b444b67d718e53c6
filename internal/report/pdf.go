package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"taskmanager/internal/models"
)

// WritePDF renders tasks as a one-column A4 report.
func WritePDF(w io.Writer, heading string, tasks []models.Task, counts models.Counts) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(heading, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, heading)
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(40, 6, fmt.Sprintf("%d remaining, %d completed, %d total", counts.Remaining, counts.Completed, counts.Total))
	pdf.Ln(10)

	// gofpdf core fonts are cp1252; translate titles so accents survive.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if len(tasks) == 0 {
		pdf.MultiCell(0, 6, "No tasks.", "0", "L", false)
	}
	for _, t := range tasks {
		mark := "[ ]"
		if t.Completed {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s  (created %s)", mark, tr(t.Title), t.Created().Format(time.DateOnly))
		pdf.MultiCell(0, 6, line, "0", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}
