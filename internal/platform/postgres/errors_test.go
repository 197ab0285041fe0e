package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/taskcycle/taskcycle-api/internal/store"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    error
		expected error
	}{
		{
			name:     "nil error",
			input:    nil,
			expected: nil,
		},
		{
			name:     "no rows maps to not found",
			input:    sql.ErrNoRows,
			expected: store.ErrNotFound,
		},
		{
			name:     "unique violation maps to duplicate",
			input:    &pgconn.PgError{Code: uniqueViolationCode},
			expected: store.ErrDuplicate,
		},
		{
			name:     "foreign key violation maps to invalid entity",
			input:    &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "tasks_parent_task_id_fkey"},
			expected: store.ErrInvalidEntity,
		},
		{
			name:     "check violation maps to invalid entity",
			input:    &pgconn.PgError{Code: checkViolationCode},
			expected: store.ErrInvalidEntity,
		},
		{
			name:     "not null violation maps to invalid entity",
			input:    &pgconn.PgError{Code: notNullViolationCode, ColumnName: "title"},
			expected: store.ErrInvalidEntity,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := MapError(tc.input)
			if tc.expected == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tc.expected)
		})
	}

	t.Run("unmapped errors pass through", func(t *testing.T) {
		original := errors.New("connection reset")
		assert.Equal(t, original, MapError(original))
	})

	t.Run("wrapped pg errors are still detected", func(t *testing.T) {
		wrapped := fmt.Errorf("insert failed: %w", &pgconn.PgError{Code: uniqueViolationCode})
		assert.ErrorIs(t, MapError(wrapped), store.ErrDuplicate)
	})
}

func TestViolationPredicates(t *testing.T) {
	t.Parallel()

	unique := &pgconn.PgError{Code: uniqueViolationCode}
	fk := &pgconn.PgError{Code: foreignKeyViolationCode}

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsUniqueViolation(fk))
	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsForeignKeyViolation(errors.New("other")))
}

// fakeResult implements sql.Result for CheckRowsAffected tests.
type fakeResult struct {
	rows int64
	err  error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	assert.NoError(t, CheckRowsAffected(fakeResult{rows: 1}, "task"))

	err := CheckRowsAffected(fakeResult{rows: 0}, "task")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Contains(t, err.Error(), "task")

	assert.Error(t, CheckRowsAffected(nil, "task"))
	assert.Error(t, CheckRowsAffected(fakeResult{err: errors.New("driver does not support")}, "task"))
}
