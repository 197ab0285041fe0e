package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Task-specific validation errors
var (
	// ErrTaskIDEmpty is returned when a task ID is empty or nil.
	ErrTaskIDEmpty = errors.New("task ID cannot be empty")

	// ErrTaskUserIDEmpty is returned when a task's user ID is empty or nil.
	ErrTaskUserIDEmpty = errors.New("task user ID cannot be empty")

	// ErrTaskTitleEmpty is returned when a task's title is empty.
	ErrTaskTitleEmpty = errors.New("task title cannot be empty")

	// ErrTaskParentMissing is returned when an instance task has no parent
	// template reference.
	ErrTaskParentMissing = errors.New("instance task must reference its parent template")

	// ErrTaskInstanceDateMissing is returned when an instance task has no
	// occurrence date.
	ErrTaskInstanceDateMissing = errors.New("instance task must carry its occurrence date")
)

// Task represents a single task. A task is either a template (the entity the
// user created, possibly carrying a recurrence spec) or an instance (a
// concrete occurrence produced by the generator for one date).
//
// A task is recurring, and therefore eligible to generate instances, iff its
// pattern is not "never" and it is not itself an instance. Instances are
// leaves in the generation graph and never recur.
type Task struct {
	ID          uuid.UUID      `json:"id"`
	UserID      uuid.UUID      `json:"user_id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	SectionID   *uuid.UUID     `json:"section_id,omitempty"`
	DueDate     *time.Time     `json:"due_date,omitempty"`
	IsCompleted bool           `json:"is_completed"`
	Recurrence  RecurrenceSpec `json:"recurrence"`

	// IsInstance is true for generated occurrence tasks, false for templates.
	IsInstance bool `json:"is_instance"`

	// ParentTaskID references the template a generated instance belongs to.
	// Set only on instances; uuid.Nil on templates.
	ParentTaskID uuid.UUID `json:"parent_task_id,omitempty"`

	// InstanceDate is the occurrence date an instance represents.
	InstanceDate *time.Time `json:"instance_date,omitempty"`

	// GeneratedThrough is the last occurrence date the generator has produced
	// for this template. Generation resumes from it, so repeated calls over
	// the same horizon do not duplicate instances. Nil until the first
	// generation call completes.
	GeneratedThrough *time.Time `json:"generated_through,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTask creates a template task with the given owner, title and due date.
// It generates a new UUID for the task and sets a non-recurring spec; the
// caller configures recurrence afterwards when needed.
func NewTask(userID uuid.UUID, title string, dueDate *time.Time) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:         uuid.New(),
		UserID:     userID,
		Title:      title,
		DueDate:    dueDate,
		Recurrence: NewRecurrenceSpec(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if t.UserID == uuid.Nil {
		return ErrTaskUserIDEmpty
	}

	if t.Title == "" {
		return ErrTaskTitleEmpty
	}

	if t.IsInstance {
		if t.ParentTaskID == uuid.Nil {
			return ErrTaskParentMissing
		}
		if t.InstanceDate == nil {
			return ErrTaskInstanceDateMissing
		}
	}

	return t.Recurrence.Validate()
}

// IsRecurring reports whether this task is a template eligible to generate
// instances: a non-"never" pattern on a task that is not itself an instance.
func (t *Task) IsRecurring() bool {
	return t.Recurrence.Pattern != PatternNever && !t.IsInstance
}
