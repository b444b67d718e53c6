package handlers

import (
	"net/http"
	"strings"

	"taskmanager/internal/models"
)

// HomeData holds data for the home page template.
type HomeData struct {
	Title        string
	Filter       models.Filter
	Filters      []models.Filter
	Query        string
	Tasks        []models.Task
	Counts       models.Counts
	EmptyMessage string
}

// Home renders the task list filtered by the filter and q query parameters.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	filter, q := viewParams(r)

	counts := h.tasks.Counts()
	data := HomeData{
		Title:   counts.Summary(),
		Filter:  filter,
		Filters: []models.Filter{models.FilterAll, models.FilterActive, models.FilterCompleted},
		Query:   strings.TrimSpace(q),
		Tasks:   h.tasks.FilteredAndSorted(filter, q),
		Counts:  counts,
	}

	if counts.Total == 0 {
		data.EmptyMessage = "No tasks yet. Add one above or load the samples."
	} else {
		data.EmptyMessage = "No tasks match your filters."
	}

	h.render(w, "home.html", data)
}
