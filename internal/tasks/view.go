package tasks

import (
	"sort"
	"strings"

	"taskmanager/internal/models"
)

// FilterAndSort returns the tasks matching filter whose title contains
// search (case-insensitive, trimmed; empty matches all), newest first.
// Tasks created in the same millisecond keep their relative order.
func FilterAndSort(tasks []models.Task, filter models.Filter, search string) []models.Task {
	query := strings.ToLower(strings.TrimSpace(search))

	result := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if !filter.Matches(t) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(t.Title), query) {
			continue
		}
		result = append(result, t)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt > result[j].CreatedAt
	})

	return result
}

// CountOf tallies tasks.
func CountOf(tasks []models.Task) models.Counts {
	c := models.Counts{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			c.Completed++
		}
	}
	c.Remaining = c.Total - c.Completed
	return c
}
