package tasks

import (
	"strings"

	"taskmanager/internal/models"
)

// Command is one of the state transitions the Store accepts.
// The set is closed: Add, Toggle, Delete, Edit, ClearCompleted and Replace.
type Command interface {
	apply(state []models.Task, now int64, newID func() string) ([]models.Task, bool)
}

// Add prepends a new open task. Blank titles are ignored.
type Add struct {
	Title string
}

// Toggle flips the completion flag of the task with ID.
type Toggle struct {
	ID string
}

// Delete removes the task with ID.
type Delete struct {
	ID string
}

// Edit renames the task with ID. Blank titles are ignored.
type Edit struct {
	ID    string
	Title string
}

// ClearCompleted removes every completed task.
type ClearCompleted struct{}

// Replace discards the current list and installs Tasks as given.
// Callers must supply valid tasks.
type Replace struct {
	Tasks []models.Task
}

// Reduce applies cmd to state and reports whether anything changed.
// state is never modified; a changed result is always a new slice.
func Reduce(state []models.Task, cmd Command, now int64, newID func() string) ([]models.Task, bool) {
	if cmd == nil {
		return state, false
	}
	return cmd.apply(state, now, newID)
}

func (c Add) apply(state []models.Task, now int64, newID func() string) ([]models.Task, bool) {
	title := strings.TrimSpace(c.Title)
	if title == "" {
		return state, false
	}

	next := make([]models.Task, 0, len(state)+1)
	next = append(next, models.Task{
		ID:        newID(),
		Title:     title,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return append(next, state...), true
}

func (c Toggle) apply(state []models.Task, now int64, _ func() string) ([]models.Task, bool) {
	return update(state, c.ID, func(t *models.Task) {
		t.Completed = !t.Completed
		t.UpdatedAt = bump(t, now)
	})
}

func (c Delete) apply(state []models.Task, _ int64, _ func() string) ([]models.Task, bool) {
	i := indexOf(state, c.ID)
	if i < 0 {
		return state, false
	}

	next := make([]models.Task, 0, len(state)-1)
	next = append(next, state[:i]...)
	return append(next, state[i+1:]...), true
}

func (c Edit) apply(state []models.Task, now int64, _ func() string) ([]models.Task, bool) {
	title := strings.TrimSpace(c.Title)
	if title == "" {
		return state, false
	}

	return update(state, c.ID, func(t *models.Task) {
		t.Title = title
		t.UpdatedAt = bump(t, now)
	})
}

func (ClearCompleted) apply(state []models.Task, _ int64, _ func() string) ([]models.Task, bool) {
	next := make([]models.Task, 0, len(state))
	for _, t := range state {
		if !t.Completed {
			next = append(next, t)
		}
	}

	if len(next) == len(state) {
		return state, false
	}
	return next, true
}

func (c Replace) apply(_ []models.Task, _ int64, _ func() string) ([]models.Task, bool) {
	next := make([]models.Task, len(c.Tasks))
	copy(next, c.Tasks)
	return next, true
}

// update copies state and applies fn to the task with id.
func update(state []models.Task, id string, fn func(*models.Task)) ([]models.Task, bool) {
	i := indexOf(state, id)
	if i < 0 {
		return state, false
	}

	next := make([]models.Task, len(state))
	copy(next, state)
	fn(&next[i])
	return next, true
}

func indexOf(state []models.Task, id string) int {
	for i := range state {
		if state[i].ID == id {
			return i
		}
	}
	return -1
}

// bump returns the new updatedAt, never earlier than createdAt.
func bump(t *models.Task, now int64) int64 {
	if now < t.CreatedAt {
		return t.CreatedAt
	}
	return now
}
