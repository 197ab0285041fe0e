package recur

import (
	"time"

	"github.com/samber/mo"
	"github.com/taskcycle/taskcycle-api/internal/domain"
)

// NextDate computes the next occurrence date after referenceDate for the
// given spec. It returns None when the spec's pattern is "never", so a
// non-recurring spec never yields a date.
//
// All arithmetic is calendar arithmetic in the reference date's location;
// month and year steps follow time.AddDate's end-of-month normalization
// (e.g. Jan 31 + 1 month rolls into March).
func NextDate(spec domain.RecurrenceSpec, referenceDate time.Time) mo.Option[time.Time] {
	interval := spec.Interval
	if interval < 1 {
		interval = 1
	}

	switch spec.Pattern {
	case domain.PatternNever:
		return mo.None[time.Time]()

	case domain.PatternDaily:
		return mo.Some(referenceDate.AddDate(0, 0, interval))

	case domain.PatternWeekdays:
		// Interval is ignored: always the next Monday-Friday date.
		return mo.Some(nextBusinessDay(referenceDate))

	case domain.PatternWeekly:
		if spec.HasWeekdays() {
			return mo.Some(nextInWeekdaySet(referenceDate, spec.Weekdays))
		}
		return mo.Some(referenceDate.AddDate(0, 0, 7*interval))

	case domain.PatternBiweekly:
		return mo.Some(referenceDate.AddDate(0, 0, 14*interval))

	case domain.PatternMonthly:
		return mo.Some(referenceDate.AddDate(0, interval, 0))

	case domain.PatternYearly:
		return mo.Some(referenceDate.AddDate(interval, 0, 0))

	case domain.PatternCustom:
		if spec.HasWeekdays() {
			return mo.Some(nextInWeekdaySet(referenceDate, spec.Weekdays))
		}
		return mo.Some(referenceDate.AddDate(0, 0, interval))

	default:
		return mo.None[time.Time]()
	}
}

// nextBusinessDay advances one day at a time from the day after ref,
// skipping Saturdays and Sundays.
func nextBusinessDay(ref time.Time) time.Time {
	next := ref.AddDate(0, 0, 1)
	for {
		wd := domain.WeekdayOf(next)
		if wd != domain.Saturday && wd != domain.Sunday {
			return next
		}
		next = next.AddDate(0, 0, 1)
	}
}

// nextInWeekdaySet finds the next date whose weekday is in the set, strictly
// after ref. Weekday codes run 1 (Sunday) to 7 (Saturday) and are compared
// numerically: the smallest code in the set strictly greater than ref's code
// wins, otherwise the search wraps to the smallest code in the following
// week. From a Saturday (code 7) no in-week code can match, so Saturday
// always wraps. The spec's interval does not apply on this path.
func nextInWeekdaySet(ref time.Time, weekdays []domain.Weekday) time.Time {
	current := domain.WeekdayOf(ref)

	// Smallest code strictly greater than the current one.
	var inWeek domain.Weekday
	for _, w := range weekdays {
		if w > current && (inWeek == 0 || w < inWeek) {
			inWeek = w
		}
	}
	if inWeek != 0 {
		return ref.AddDate(0, 0, int(inWeek-current))
	}

	// Wrap to the smallest code in the set, next week.
	smallest := weekdays[0]
	for _, w := range weekdays[1:] {
		if w < smallest {
			smallest = w
		}
	}
	return ref.AddDate(0, 0, 7-int(current)+int(smallest))
}
