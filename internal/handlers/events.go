package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"taskmanager/internal/models"
	"taskmanager/internal/tasks"
)

// Events streams task counts as server-sent events: once on connect, then
// after every change until the client goes away.
func (h *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	updates := make(chan models.Counts, 16)
	unsubscribe := h.tasks.Subscribe(func(ts []models.Task) {
		// Slow clients miss intermediate counts rather than block commands.
		select {
		case updates <- tasks.CountOf(ts):
		default:
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeCountsEvent(w, h.tasks.Counts()); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case c := <-updates:
			if err := writeCountsEvent(w, c); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeCountsEvent(w http.ResponseWriter, c models.Counts) error {
	data, err := json.Marshal(map[string]interface{}{
		"counts":  c,
		"summary": c.Summary(),
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: counts\ndata: %s\n\n", data)
	return err
}
