package recur

import (
	"errors"
	"time"

	"github.com/samber/mo"
	"github.com/taskcycle/taskcycle-api/internal/domain"
)

// Common errors
var (
	ErrNilTemplate    = errors.New("template task cannot be nil")
	ErrHorizonInvalid = errors.New("horizon must not be before the template's due date")
)

// Service defines the interface for recurrence operations.
type Service interface {
	// NextDueDate computes the next occurrence date for a template from the
	// given reference instant. Returns None when the task is not recurring
	// or has no due date.
	NextDueDate(template *domain.Task, now time.Time) mo.Option[time.Time]

	// HasEnded reports whether the template's recurrence has terminated.
	HasEnded(template *domain.Task, now time.Time) bool

	// GenerateInstances materializes instance tasks for every occurrence up
	// to and including the horizon date, bounded by the per-call safety cap.
	// Templates that are not recurring, have ended, or have no due date
	// yield an empty result rather than an error.
	GenerateInstances(template *domain.Task, horizon, now time.Time) (*GenerationResult, error)

	// Describe renders a human-readable summary of a recurrence spec.
	Describe(spec domain.RecurrenceSpec) string
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a recurrence service with default parameters.
func NewDefaultService() Service {
	return &defaultService{params: NewDefaultParams()}
}

// NewServiceWithParams creates a recurrence service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{params: params}
}

func (s *defaultService) NextDueDate(template *domain.Task, now time.Time) mo.Option[time.Time] {
	if template == nil || !template.IsRecurring() {
		return mo.None[time.Time]()
	}

	ref := now
	if template.DueDate != nil {
		ref = *template.DueDate
	}

	return NextDate(template.Recurrence, ref)
}

func (s *defaultService) HasEnded(template *domain.Task, now time.Time) bool {
	if template == nil {
		return false
	}
	return HasEnded(template.Recurrence, now)
}

func (s *defaultService) GenerateInstances(
	template *domain.Task,
	horizon, now time.Time,
) (*GenerationResult, error) {
	if template == nil {
		return nil, ErrNilTemplate
	}

	if template.DueDate != nil && horizon.Before(*template.DueDate) {
		return nil, ErrHorizonInvalid
	}

	return generateInstances(template, horizon, now, s.params), nil
}

func (s *defaultService) Describe(spec domain.RecurrenceSpec) string {
	return Describe(spec)
}
