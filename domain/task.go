package domain

import (
	"time"
	"unicode/utf8"
)

// TaskStatus enumerates the workflow states of a task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in-progress"
	StatusDone       TaskStatus = "done"
)

// TaskPriority enumerates task priorities.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

const (
	TaskTitleMaxLen       = 200
	TaskDescriptionMaxLen = 1000
)

// Task belongs to exactly one project. CreatorID and ProjectID are immutable
// after creation; AssigneeID is empty when the task is unassigned.
type Task struct {
	ID          string       `json:"id"`
	ProjectID   string       `json:"project_id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	AssigneeID  string       `json:"assigned_to,omitempty"`
	CreatorID   string       `json:"created_by"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// IsAssigned reports whether the task currently has an assignee.
func (t *Task) IsAssigned() bool {
	return t != nil && t.AssigneeID != ""
}

// ValidStatus reports whether s is one of the known workflow states.
func ValidStatus(s TaskStatus) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// ValidPriority reports whether p is one of the known priorities.
func ValidPriority(p TaskPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ValidateTaskTitle enforces the 1-200 character bound.
func ValidateTaskTitle(title string) error {
	n := utf8.RuneCountInString(title)
	if n == 0 {
		return NewError(ErrCodeInvalid, "please add a task title")
	}
	if n > TaskTitleMaxLen {
		return NewError(ErrCodeInvalid, "task title cannot be more than 200 characters")
	}
	return nil
}

// ValidateTaskDescription enforces the optional 1000 character cap.
func ValidateTaskDescription(description string) error {
	if utf8.RuneCountInString(description) > TaskDescriptionMaxLen {
		return NewError(ErrCodeInvalid, "task description cannot be more than 1000 characters")
	}
	return nil
}
