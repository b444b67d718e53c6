package handlers

import (
	"encoding/json"
	"html/template"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"taskmanager/internal/models"
	"taskmanager/internal/tasks"
)

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	tasks     *tasks.Store
	templates *template.Template
}

// New creates a new Handlers instance. A nil store is a wiring bug.
func New(s *tasks.Store, tmpl *template.Template) *Handlers {
	if s == nil {
		panic("handlers: task store is required")
	}
	return &Handlers{
		tasks:     s,
		templates: tmpl,
	}
}

// ViewResponse is returned by the JSON API after reads and commands.
type ViewResponse struct {
	Tasks   []models.Task `json:"tasks"`
	Counts  models.Counts `json:"counts"`
	Summary string        `json:"summary"`
}

// viewParams reads the filter and search query parameters.
// Unknown filters fall back to "all".
func viewParams(r *http.Request) (models.Filter, string) {
	filter, _ := models.ParseFilter(r.URL.Query().Get("filter"))
	return filter, r.URL.Query().Get("q")
}

// taskID extracts the task id URL parameter.
func taskID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, code int, message string) {
	w.WriteHeader(code)
	w.Write([]byte(message))
}

func respondServerError(w http.ResponseWriter, err error) {
	log.Printf("internal server error: %v", err)
	respondError(w, http.StatusInternalServerError, "internal server error")
}

func respondJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// respondView writes the current derived view for the request's filter.
func (h *Handlers) respondView(w http.ResponseWriter, r *http.Request) {
	filter, q := viewParams(r)
	counts := h.tasks.Counts()
	respondJSON(w, http.StatusOK, ViewResponse{
		Tasks:   h.tasks.FilteredAndSorted(filter, q),
		Counts:  counts,
		Summary: counts.Summary(),
	})
}

func (h *Handlers) render(w http.ResponseWriter, name string, data interface{}) {
	if h.templates == nil {
		// For testing without templates
		w.WriteHeader(http.StatusOK)
		return
	}
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		respondServerError(w, err)
	}
}
