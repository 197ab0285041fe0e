package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/taskcycle/taskcycle-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task (template or instance) to the store.
	// Returns validation errors if the task data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ListTemplates retrieves all recurring template tasks: tasks with a
	// non-"never" pattern that are not themselves instances. Used by the
	// background scheduler to find generation candidates.
	ListTemplates(ctx context.Context) ([]*domain.Task, error)

	// ListInstances retrieves the generated instances of a template, ordered
	// by occurrence date.
	ListInstances(ctx context.Context, parentID uuid.UUID) ([]*domain.Task, error)

	// CreateInstances saves a batch of generated instance tasks.
	// IMPORTANT: This method MUST be run within a transaction together with
	// RecordGeneration so instances and the template's counter cannot drift.
	// Use WithTx and store.RunInTransaction:
	//
	//	err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
	//	    txStore := taskStore.WithTx(tx)
	//	    if err := txStore.CreateInstances(ctx, instances); err != nil {
	//	        return err
	//	    }
	//	    return txStore.RecordGeneration(ctx, template)
	//	})
	CreateInstances(ctx context.Context, instances []*domain.Task) error

	// RecordGeneration persists the generation bookkeeping on a template:
	// its cumulative instance count and the GeneratedThrough cursor.
	// Returns ErrTaskNotFound if the template does not exist.
	RecordGeneration(ctx context.Context, template *domain.Task) error

	// UpdateDueDate moves a task's due date.
	// Returns ErrTaskNotFound if the task does not exist.
	UpdateDueDate(ctx context.Context, id uuid.UUID, dueDate *time.Time) error

	// Delete removes a task from the store by its ID. Deleting a template
	// cascades to its generated instances through the parent_task_id
	// foreign key.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller,
	// typically a service via store.RunInTransaction.
	WithTx(tx *sql.Tx) TaskStore
}
