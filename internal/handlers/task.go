package handlers

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"

	"taskmanager/internal/models"
)

// readTitle reads the "title" field from a JSON or form body.
func readTitle(r *http.Request) (string, error) {
	if isJSON(r) {
		var payload struct {
			Title string `json:"title"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return "", fmt.Errorf("invalid json: %w", err)
		}
		return payload.Title, nil
	}

	if err := r.ParseForm(); err != nil {
		return "", fmt.Errorf("invalid form data: %w", err)
	}
	return r.FormValue("title"), nil
}

func isJSON(r *http.Request) bool {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mediaType == "application/json"
}

// ListTasks returns the filtered and sorted task list with counts.
func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, r)
}

// CreateTask adds a task. A blank title is accepted and ignored.
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	title, err := readTitle(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.tasks.Add(title)
	h.respondView(w, r)
}

// UpdateTask renames a task.
func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	title, err := readTitle(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.tasks.Edit(taskID(r), title)
	h.respondView(w, r)
}

// ToggleTask toggles the completion status of a task.
func (h *Handlers) ToggleTask(w http.ResponseWriter, r *http.Request) {
	h.tasks.Toggle(taskID(r))
	h.respondView(w, r)
}

// DeleteTask deletes a task.
func (h *Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	h.tasks.Delete(taskID(r))
	h.respondView(w, r)
}

// ClearCompleted removes all completed tasks.
func (h *Handlers) ClearCompleted(w http.ResponseWriter, r *http.Request) {
	h.tasks.ClearCompleted()
	h.respondView(w, r)
}

// ReplaceTasks installs the JSON array in the body as the whole task list.
// Every task must be valid and ids must be unique.
func (h *Handlers) ReplaceTasks(w http.ResponseWriter, r *http.Request) {
	var payload []models.Task
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}

	seen := make(map[string]struct{}, len(payload))
	for i := range payload {
		if err := payload[i].Validate(); err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("task %d: %v", i, err))
			return
		}
		if _, dup := seen[payload[i].ID]; dup {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("task %d: duplicate id %q", i, payload[i].ID))
			return
		}
		seen[payload[i].ID] = struct{}{}
	}

	h.tasks.Replace(payload)
	h.respondView(w, r)
}

// LoadSample replaces the task list with the demo tasks.
func (h *Handlers) LoadSample(w http.ResponseWriter, r *http.Request) {
	h.tasks.LoadSample()
	h.respondView(w, r)
}

// Reset removes every task.
func (h *Handlers) Reset(w http.ResponseWriter, r *http.Request) {
	h.tasks.Reset()
	h.respondView(w, r)
}

// Counts returns the task counts and page title.
func (h *Handlers) Counts(w http.ResponseWriter, r *http.Request) {
	counts := h.tasks.Counts()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"counts":  counts,
		"summary": counts.Summary(),
	})
}
