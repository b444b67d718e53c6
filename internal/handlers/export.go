package handlers

import (
	"bytes"
	"net/http"
	"strconv"

	"taskmanager/internal/report"
)

// ExportPDF renders the filtered task list as a PDF download.
func (h *Handlers) ExportPDF(w http.ResponseWriter, r *http.Request) {
	filter, q := viewParams(r)
	counts := h.tasks.Counts()

	var buf bytes.Buffer
	if err := report.WritePDF(&buf, counts.Summary(), h.tasks.FilteredAndSorted(filter, q), counts); err != nil {
		respondServerError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="tasks.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}
