package models

import (
	"errors"
	"strings"
	"time"
)

// Task represents a single to-do item.
type Task struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	CreatedAt int64  `json:"createdAt"` // unix milliseconds
	UpdatedAt int64  `json:"updatedAt"` // unix milliseconds
}

// Validate checks that the task has valid field values.
func (t *Task) Validate() error {
	if t.ID == "" {
		return errors.New("id is required")
	}

	if strings.TrimSpace(t.Title) == "" {
		return errors.New("title is required")
	}

	if t.UpdatedAt < t.CreatedAt {
		return errors.New("updatedAt must not be before createdAt")
	}

	return nil
}

// Created returns the creation timestamp as a time.Time.
func (t *Task) Created() time.Time {
	return time.UnixMilli(t.CreatedAt)
}

// Updated returns the last modification timestamp as a time.Time.
func (t *Task) Updated() time.Time {
	return time.UnixMilli(t.UpdatedAt)
}

// NowMillis returns the current time in unix milliseconds.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
