package taskgen

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taskcycle/taskcycle-api/internal/domain"
	"github.com/taskcycle/taskcycle-api/internal/domain/recur"
	"github.com/taskcycle/taskcycle-api/internal/platform/logger"
	"github.com/taskcycle/taskcycle-api/internal/store"
)

// TxManager runs a function inside a database transaction.
type TxManager interface {
	RunInTransaction(ctx context.Context, fn store.TxFn) error
}

// sqlTxManager implements TxManager over a *sql.DB using
// store.RunInTransaction.
type sqlTxManager struct {
	db *sql.DB
}

// NewSQLTxManager creates a TxManager backed by the given database handle.
func NewSQLTxManager(db *sql.DB) TxManager {
	return &sqlTxManager{db: db}
}

func (m *sqlTxManager) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	return store.RunInTransaction(ctx, m.db, fn)
}

// Summary reports the outcome of a generation pass over one template.
type Summary struct {
	// TemplateID identifies the template the pass ran for.
	TemplateID uuid.UUID

	// Instances are the newly created instance tasks, in occurrence order.
	Instances []*domain.Task

	// GeneratedThrough is the template's generation cursor after the pass.
	GeneratedThrough *time.Time
}

// Generator materializes upcoming instances of recurring task templates.
type Generator struct {
	taskStore store.TaskStore
	txManager TxManager
	recurSvc  recur.Service
	locks     templateLocks
	timeFunc  func() time.Time
}

// NewGenerator creates a Generator using the given store, transaction
// manager, and recurrence service.
func NewGenerator(taskStore store.TaskStore, txManager TxManager, recurSvc recur.Service) *Generator {
	return &Generator{
		taskStore: taskStore,
		txManager: txManager,
		recurSvc:  recurSvc,
		timeFunc:  time.Now,
	}
}

// GenerateForTemplate generates and persists instances for one template up to
// the horizon date. Calls for the same template are serialized so the
// generation cursor is always read fresh; a template whose recurrence has
// ended or that produces no occurrences yields an empty summary.
func (g *Generator) GenerateForTemplate(
	ctx context.Context,
	templateID uuid.UUID,
	horizon time.Time,
) (*Summary, error) {
	log := logger.FromContext(ctx)

	unlock := g.locks.lock(templateID)
	defer unlock()

	// Load inside the lock so a concurrent pass that just finished is
	// reflected in the cursor and counter we generate from.
	template, err := g.taskStore.GetByID(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}

	now := g.timeFunc()
	result, err := g.recurSvc.GenerateInstances(template, horizon, now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate instances: %w", err)
	}

	summary := &Summary{
		TemplateID:       templateID,
		Instances:        result.Instances,
		GeneratedThrough: result.Template.GeneratedThrough,
	}

	if len(result.Instances) == 0 {
		log.Debug("no instances to generate",
			slog.String("template_id", templateID.String()))
		return summary, nil
	}

	err = g.txManager.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := g.taskStore.WithTx(tx)
		if err := txStore.CreateInstances(ctx, result.Instances); err != nil {
			return fmt.Errorf("failed to persist instances: %w", err)
		}
		if err := txStore.RecordGeneration(ctx, result.Template); err != nil {
			return fmt.Errorf("failed to record generation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("generated task instances",
		slog.String("template_id", templateID.String()),
		slog.Int("count", len(result.Instances)),
		slog.Time("horizon", horizon))

	return summary, nil
}

// GenerateAll runs a generation pass over every recurring template, as the
// background scheduler does. A failure on one template is logged and does not
// stop the pass; the first error is returned after all templates were tried.
func (g *Generator) GenerateAll(ctx context.Context, horizon time.Time) error {
	log := logger.FromContext(ctx)

	templates, err := g.taskStore.ListTemplates(ctx)
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}

	var firstErr error
	for _, template := range templates {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := g.GenerateForTemplate(ctx, template.ID, horizon); err != nil {
			log.Error("generation pass failed for template",
				slog.String("template_id", template.ID.String()),
				slog.String("error", err.Error()))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}
