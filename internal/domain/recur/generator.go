package recur

import (
	"time"

	"github.com/google/uuid"
	"github.com/taskcycle/taskcycle-api/internal/domain"
)

// GenerationResult holds the outcome of one generation call.
//
// Template is an updated copy of the input template with its cumulative
// instance count advanced and GeneratedThrough moved to the last produced
// occurrence. The generator never mutates its input; the caller is
// responsible for persisting the updated template atomically alongside the
// produced instances so counter and storage cannot drift.
type GenerationResult struct {
	Instances []*domain.Task
	Template  *domain.Task
}

// generateInstances walks occurrence dates from the template's cursor up to
// the horizon and materializes one instance task per date.
//
// The walk starts from the template's GeneratedThrough cursor when one is
// persisted, falling back to the original due date on the first call. This
// makes repeated calls over the same horizon idempotent: without the
// persisted cursor every call would re-walk from the due date and duplicate
// the full instance set.
//
// The loop stops at the first of: the next date passing the horizon, the
// per-call cap, the occurrence-count limit (counting instances from prior
// calls), or the end date.
func generateInstances(
	template *domain.Task,
	horizon time.Time,
	now time.Time,
	params *Params,
) *GenerationResult {
	updated := cloneTask(template)
	result := &GenerationResult{Template: updated}

	if !template.IsRecurring() || template.DueDate == nil {
		return result
	}

	spec := template.Recurrence
	if HasEnded(spec, now) {
		return result
	}

	cursor := *template.DueDate
	if template.GeneratedThrough != nil {
		cursor = *template.GeneratedThrough
	}

	produced := 0
	for !cursor.After(horizon) && produced < params.MaxInstancesPerCall {
		next, ok := NextDate(spec, cursor).Get()
		if !ok {
			break
		}

		if next.After(horizon) {
			break
		}

		if spec.EndType == domain.EndAfterCount && spec.Count+produced >= spec.EndCount {
			break
		}

		if spec.EndType == domain.EndOnDate && next.After(*spec.EndDate) {
			break
		}

		result.Instances = append(result.Instances, newInstance(template, next, now))
		cursor = next
		produced++
	}

	if produced > 0 {
		last := *result.Instances[produced-1].InstanceDate
		updated.Recurrence.Count += produced
		updated.GeneratedThrough = &last
		updated.UpdatedAt = now
	}

	return result
}

// newInstance materializes one occurrence of the template on the given date.
// The instance copies the template's payload fields verbatim, carries a
// durable reference to the template's ID, and never recurs itself.
func newInstance(template *domain.Task, date time.Time, now time.Time) *domain.Task {
	occurrence := date
	return &domain.Task{
		ID:           uuid.New(),
		UserID:       template.UserID,
		Title:        template.Title,
		Description:  template.Description,
		SectionID:    template.SectionID,
		DueDate:      &occurrence,
		IsCompleted:  false,
		Recurrence:   domain.NewRecurrenceSpec(),
		IsInstance:   true,
		ParentTaskID: template.ID,
		InstanceDate: &occurrence,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// cloneTask returns a shallow copy of the task with its own copies of the
// pointer-valued date fields.
func cloneTask(t *domain.Task) *domain.Task {
	c := *t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.InstanceDate != nil {
		d := *t.InstanceDate
		c.InstanceDate = &d
	}
	if t.GeneratedThrough != nil {
		d := *t.GeneratedThrough
		c.GeneratedThrough = &d
	}
	if t.Recurrence.EndDate != nil {
		d := *t.Recurrence.EndDate
		c.Recurrence.EndDate = &d
	}
	if t.Recurrence.Weekdays != nil {
		c.Recurrence.Weekdays = append([]domain.Weekday(nil), t.Recurrence.Weekdays...)
	}
	return &c
}
