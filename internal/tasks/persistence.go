package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"taskmanager/internal/models"
	"taskmanager/internal/store"
)

// StorageKey is the key the task list is persisted under.
const StorageKey = "taskmanager:tasks:v1"

// Persistence loads and saves the task list in a key-value store.
type Persistence struct {
	kv store.Store
}

// NewPersistence creates a Persistence on top of kv.
func NewPersistence(kv store.Store) *Persistence {
	return &Persistence{kv: kv}
}

// Load returns the persisted tasks. ok is false when nothing usable is
// stored; read and decode failures are treated the same way.
func (p *Persistence) Load(ctx context.Context) ([]models.Task, bool) {
	raw, ok, err := p.kv.Get(ctx, StorageKey)
	if err != nil || !ok || raw == "" {
		return nil, false
	}

	records, ok := decodeRecords([]byte(raw))
	if !ok {
		return nil, false
	}

	return normalizeRecords(records, models.NowMillis()), true
}

// Save writes tasks under StorageKey.
func (p *Persistence) Save(ctx context.Context, tasks []models.Task) error {
	data, err := Marshal(tasks)
	if err != nil {
		return err
	}

	if err := p.kv.Set(ctx, StorageKey, string(data)); err != nil {
		return fmt.Errorf("failed to save tasks: %w", err)
	}
	return nil
}

// Marshal encodes tasks in the persisted layout. A nil list encodes as [].
func Marshal(tasks []models.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []models.Task{}
	}

	data, err := json.Marshal(tasks)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tasks: %w", err)
	}
	return data, nil
}

// Normalize decodes a persisted task list leniently. Records without a
// string id, a string title and a boolean completed flag are dropped, as are
// blank titles and repeated ids. Missing or non-numeric timestamps are
// replaced by now. Anything that is not a JSON array yields an empty list.
func Normalize(raw []byte, now int64) []models.Task {
	records, _ := decodeRecords(raw)
	return normalizeRecords(records, now)
}

func decodeRecords(raw []byte) ([]any, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var records []any
	if err := dec.Decode(&records); err != nil {
		return nil, false
	}
	return records, true
}

func normalizeRecords(records []any, now int64) []models.Task {
	tasks := make([]models.Task, 0, len(records))
	seen := make(map[string]struct{}, len(records))

	for _, rec := range records {
		obj, ok := rec.(map[string]any)
		if !ok {
			continue
		}

		id, ok := obj["id"].(string)
		if !ok || id == "" {
			continue
		}
		title, ok := obj["title"].(string)
		if !ok || strings.TrimSpace(title) == "" {
			continue
		}
		completed, ok := obj["completed"].(bool)
		if !ok {
			continue
		}

		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		t := models.Task{
			ID:        id,
			Title:     title,
			Completed: completed,
			CreatedAt: millis(obj["createdAt"], now),
			UpdatedAt: millis(obj["updatedAt"], now),
		}
		if t.UpdatedAt < t.CreatedAt {
			t.UpdatedAt = t.CreatedAt
		}
		tasks = append(tasks, t)
	}

	return tasks
}

func millis(v any, fallback int64) int64 {
	n, ok := v.(json.Number)
	if !ok {
		return fallback
	}

	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return int64(f)
	}
	return fallback
}
