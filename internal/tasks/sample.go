package tasks

import "taskmanager/internal/models"

var sampleTitles = []struct {
	title     string
	completed bool
}{
	{"Read about state machines vs ad-hoc updates", false},
	{"Add tasks and toggle completion", false},
	{"Persist the task list between runs", false},
	{"Move business logic behind a store", false},
	{"Share one store across handlers", true},
}

// SampleTasks builds the demo task list. Each task is created one
// millisecond after the previous one, so the last sample sorts first.
func SampleTasks(now int64, newID func() string) []models.Task {
	tasks := make([]models.Task, 0, len(sampleTitles))
	for i, s := range sampleTitles {
		ts := now + int64(i)
		tasks = append(tasks, models.Task{
			ID:        newID(),
			Title:     s.title,
			Completed: s.completed,
			CreatedAt: ts,
			UpdatedAt: ts,
		})
	}
	return tasks
}
