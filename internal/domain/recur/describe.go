package recur

import (
	"fmt"
	"strings"

	"github.com/taskcycle/taskcycle-api/internal/domain"
)

// Describe renders a human-readable summary of the spec: the pattern with
// its interval, any selected weekdays, and the end condition.
func Describe(spec domain.RecurrenceSpec) string {
	if spec.Pattern == domain.PatternNever {
		return "Does not repeat"
	}

	var b strings.Builder
	b.WriteString(describePattern(spec))

	switch spec.EndType {
	case domain.EndAfterCount:
		fmt.Fprintf(&b, ", %d times", spec.EndCount)
	case domain.EndOnDate:
		if spec.EndDate != nil {
			fmt.Fprintf(&b, ", until %s", spec.EndDate.Format("January 2, 2006"))
		}
	}

	return b.String()
}

func describePattern(spec domain.RecurrenceSpec) string {
	interval := spec.Interval
	if interval < 1 {
		interval = 1
	}

	switch spec.Pattern {
	case domain.PatternDaily:
		if interval == 1 {
			return "Repeats daily"
		}
		return fmt.Sprintf("Repeats every %d days", interval)

	case domain.PatternWeekdays:
		return "Repeats every weekday (Monday to Friday)"

	case domain.PatternWeekly:
		if spec.HasWeekdays() {
			return "Repeats weekly on " + weekdayList(spec.Weekdays)
		}
		if interval == 1 {
			return "Repeats weekly"
		}
		return fmt.Sprintf("Repeats every %d weeks", interval)

	case domain.PatternBiweekly:
		if interval == 1 {
			return "Repeats every 2 weeks"
		}
		return fmt.Sprintf("Repeats every %d weeks", 2*interval)

	case domain.PatternMonthly:
		if interval == 1 {
			return "Repeats monthly"
		}
		return fmt.Sprintf("Repeats every %d months", interval)

	case domain.PatternYearly:
		if interval == 1 {
			return "Repeats yearly"
		}
		return fmt.Sprintf("Repeats every %d years", interval)

	case domain.PatternCustom:
		if spec.HasWeekdays() {
			return "Repeats on " + weekdayList(spec.Weekdays)
		}
		if interval == 1 {
			return "Repeats daily"
		}
		return fmt.Sprintf("Repeats every %d days", interval)

	default:
		return "Does not repeat"
	}
}

// weekdayList joins weekday names in code order, e.g.
// "Monday, Wednesday and Friday".
func weekdayList(weekdays []domain.Weekday) string {
	sorted := append([]domain.Weekday(nil), weekdays...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	names := make([]string, len(sorted))
	for i, w := range sorted {
		names[i] = w.String()
	}

	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}
