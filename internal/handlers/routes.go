package handlers

import (
	"github.com/go-chi/chi/v5"
)

// Register mounts the page and API routes on r.
func (h *Handlers) Register(r chi.Router) {
	// Page routes
	r.Get("/", h.Home)
	r.Get("/export.pdf", h.ExportPDF)

	// Task API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/tasks", h.ListTasks)
		r.Post("/tasks", h.CreateTask)
		r.Put("/tasks", h.ReplaceTasks)
		r.Post("/tasks/clear-completed", h.ClearCompleted)
		r.Post("/tasks/sample", h.LoadSample)
		r.Post("/tasks/reset", h.Reset)
		r.Put("/tasks/{id}", h.UpdateTask)
		r.Delete("/tasks/{id}", h.DeleteTask)
		r.Post("/tasks/{id}/toggle", h.ToggleTask)

		r.Get("/counts", h.Counts)
		r.Get("/events", h.Events)
	})
}
