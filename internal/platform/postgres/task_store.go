package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskcycle/taskcycle-api/internal/domain"
	"github.com/taskcycle/taskcycle-api/internal/platform/logger"
	"github.com/taskcycle/taskcycle-api/internal/store"
)

// taskColumns is the column list shared by every task SELECT.
const taskColumns = `id, user_id, title, description, section_id, due_date, is_completed,
	recur_pattern, recur_interval, recur_weekdays, recur_end_type, recur_end_count,
	recur_end_date, recur_count, is_instance, parent_task_id, instance_date,
	generated_through, created_at, updated_at`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
func NewPostgresTaskStore(db store.DBTX, log *slog.Logger) *PostgresTaskStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: log.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	weekdays, err := domain.EncodeWeekdays(task.Recurrence.Weekdays)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	_, err = s.db.ExecContext(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.SectionID,
		task.DueDate,
		task.IsCompleted,
		task.Recurrence.Pattern,
		task.Recurrence.Interval,
		weekdays,
		task.Recurrence.EndType,
		task.Recurrence.EndCount,
		task.Recurrence.EndDate,
		task.Recurrence.Count,
		task.IsInstance,
		nullableUUID(task.ParentTaskID),
		task.InstanceDate,
		task.GeneratedThrough,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create task",
			"task_id", task.ID,
			"error", err)
		return MapError(err)
	}

	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if IsNotFoundError(MapError(err)) {
			return nil, store.ErrTaskNotFound
		}
		return nil, MapError(err)
	}

	return task, nil
}

// ListTemplates implements store.TaskStore.ListTemplates
func (s *PostgresTaskStore) ListTemplates(ctx context.Context) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE is_instance = FALSE AND recur_pattern <> 'never'
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to query recurring templates", "error", err)
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return collectTasks(rows)
}

// ListInstances implements store.TaskStore.ListInstances
func (s *PostgresTaskStore) ListInstances(ctx context.Context, parentID uuid.UUID) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE parent_task_id = $1
		ORDER BY instance_date ASC
	`

	rows, err := s.db.QueryContext(ctx, query, parentID)
	if err != nil {
		log.Error("failed to query task instances",
			"parent_task_id", parentID,
			"error", err)
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return collectTasks(rows)
}

// CreateInstances implements store.TaskStore.CreateInstances
func (s *PostgresTaskStore) CreateInstances(ctx context.Context, instances []*domain.Task) error {
	for _, instance := range instances {
		if err := s.Create(ctx, instance); err != nil {
			return fmt.Errorf("failed to create instance dated %v: %w",
				instance.InstanceDate, err)
		}
	}
	return nil
}

// RecordGeneration implements store.TaskStore.RecordGeneration
func (s *PostgresTaskStore) RecordGeneration(ctx context.Context, template *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET recur_count = $1, generated_through = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query,
		template.Recurrence.Count,
		template.GeneratedThrough,
		template.UpdatedAt,
		template.ID,
	)
	if err != nil {
		log.Error("failed to record generation bookkeeping",
			"task_id", template.ID,
			"error", err)
		return MapError(err)
	}

	return CheckRowsAffected(result, "task")
}

// UpdateDueDate implements store.TaskStore.UpdateDueDate
func (s *PostgresTaskStore) UpdateDueDate(ctx context.Context, id uuid.UUID, dueDate *time.Time) error {
	query := `
		UPDATE tasks
		SET due_date = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, dueDate, time.Now().UTC(), id)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, "task")
}

// Delete implements store.TaskStore.Delete
//
// Instances of a deleted template are removed by the ON DELETE CASCADE
// constraint on parent_task_id; application code does not delete them
// explicitly.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, "task")
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanTask.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask reads one task row into a domain.Task, decoding the stored
// weekday set. A malformed weekday encoding is surfaced as an error, not
// silently replaced with an empty set.
func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task         domain.Task
		description  sql.NullString
		weekdays     []byte
		parentTaskID uuid.NullUUID
	)

	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&description,
		&task.SectionID,
		&task.DueDate,
		&task.IsCompleted,
		&task.Recurrence.Pattern,
		&task.Recurrence.Interval,
		&weekdays,
		&task.Recurrence.EndType,
		&task.Recurrence.EndCount,
		&task.Recurrence.EndDate,
		&task.Recurrence.Count,
		&task.IsInstance,
		&parentTaskID,
		&task.InstanceDate,
		&task.GeneratedThrough,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Description = description.String
	if parentTaskID.Valid {
		task.ParentTaskID = parentTaskID.UUID
	}

	task.Recurrence.Weekdays, err = domain.DecodeWeekdays(weekdays)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", task.ID, err)
	}

	return &task, nil
}

// collectTasks drains a result set produced with taskColumns.
func collectTasks(rows *sql.Rows) ([]*domain.Task, error) {
	var tasks []*domain.Task

	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	return tasks, nil
}

// nullableUUID maps uuid.Nil to SQL NULL so templates carry no parent row.
func nullableUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}
