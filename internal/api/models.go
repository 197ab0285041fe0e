package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskcycle/taskcycle-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Token  string    `json:"token"`
}

// RecurrenceRequest defines the recurrence settings in task payloads.
type RecurrenceRequest struct {
	Pattern  string  `json:"pattern"             validate:"required"`
	Interval int     `json:"interval,omitempty"`
	Weekdays []int   `json:"weekdays,omitempty"  validate:"omitempty,dive,min=1,max=7"`
	EndType  string  `json:"end_type,omitempty"`
	EndCount int     `json:"end_count,omitempty"`
	EndDate  *string `json:"end_date,omitempty"`
}

// CreateTaskRequest defines the payload for the task creation endpoint.
type CreateTaskRequest struct {
	Title       string             `json:"title"                validate:"required,max=500"`
	Description string             `json:"description,omitempty"`
	SectionID   *uuid.UUID         `json:"section_id,omitempty"`
	DueDate     *string            `json:"due_date,omitempty"`
	Recurrence  *RecurrenceRequest `json:"recurrence,omitempty"`
}

// RecurrenceResponse carries a task's recurrence settings together with its
// rendered description.
type RecurrenceResponse struct {
	Pattern     string     `json:"pattern"`
	Interval    int        `json:"interval"`
	Weekdays    []int      `json:"weekdays,omitempty"`
	EndType     string     `json:"end_type"`
	EndCount    int        `json:"end_count,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Count       int        `json:"generated_count"`
	Ended       bool       `json:"ended"`
	Description string     `json:"description"`
}

// TaskResponse represents a task in API responses.
type TaskResponse struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	SectionID        *uuid.UUID `json:"section_id,omitempty"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	IsCompleted      bool       `json:"is_completed"`
	IsInstance       bool       `json:"is_instance"`
	ParentTaskID     *uuid.UUID `json:"parent_task_id,omitempty"`
	InstanceDate     *time.Time `json:"instance_date,omitempty"`
	GeneratedThrough *time.Time `json:"generated_through,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NextDueResponse defines the response of the next-due endpoint.
type NextDueResponse struct {
	TaskID      uuid.UUID  `json:"task_id"`
	NextDueDate *time.Time `json:"next_due_date"`
}

// GenerateRequest defines the optional payload for the generation endpoint.
type GenerateRequest struct {
	// Horizon is the inclusive end date of the generation window, RFC 3339.
	// When omitted the server's configured horizon window is used.
	Horizon *string `json:"horizon,omitempty"`
}

// GenerateResponse defines the response of the generation endpoint.
type GenerateResponse struct {
	TaskID           uuid.UUID      `json:"task_id"`
	Generated        int            `json:"generated"`
	GeneratedThrough *time.Time     `json:"generated_through,omitempty"`
	Instances        []TaskResponse `json:"instances"`
}

func taskToResponse(task *domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:               task.ID,
		UserID:           task.UserID,
		Title:            task.Title,
		Description:      task.Description,
		SectionID:        task.SectionID,
		DueDate:          task.DueDate,
		IsCompleted:      task.IsCompleted,
		IsInstance:       task.IsInstance,
		InstanceDate:     task.InstanceDate,
		GeneratedThrough: task.GeneratedThrough,
		CreatedAt:        task.CreatedAt,
		UpdatedAt:        task.UpdatedAt,
	}
	if task.ParentTaskID != uuid.Nil {
		parentID := task.ParentTaskID
		resp.ParentTaskID = &parentID
	}
	return resp
}
