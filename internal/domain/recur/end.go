package recur

import (
	"time"

	"github.com/taskcycle/taskcycle-api/internal/domain"
)

// HasEnded reports whether the recurrence described by spec has terminated.
// It is evaluated against the template, not against an individual candidate
// occurrence.
//
//   - EndNever: never ends.
//   - EndAfterCount: ended once the template's cumulative instance count has
//     reached the limit.
//   - EndOnDate: ended once now is strictly after the end date. Callers
//     inject now rather than the evaluator reading the wall clock, which
//     keeps the check deterministic under test; the generator additionally
//     compares each candidate date against the end date so no instance is
//     ever produced past it.
func HasEnded(spec domain.RecurrenceSpec, now time.Time) bool {
	switch spec.EndType {
	case domain.EndAfterCount:
		return spec.Count >= spec.EndCount
	case domain.EndOnDate:
		return spec.EndDate != nil && now.After(*spec.EndDate)
	default:
		return false
	}
}
