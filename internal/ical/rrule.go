// Package ical renders recurring task templates and their generated
// instances as iCalendar VTODO feeds.
package ical

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/taskcycle/taskcycle-api/internal/domain"
)

// ErrNotRecurring indicates a recurrence rule was requested for a spec that
// does not repeat.
var ErrNotRecurring = errors.New("recurrence spec does not repeat")

// businessDays covers Monday through Friday for the weekday pattern.
var businessDays = []rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR}

// RuleFor maps a recurrence spec to an RFC 5545 recurrence rule anchored at
// the given start date.
func RuleFor(spec domain.RecurrenceSpec, dtstart time.Time) (*rrule.RRule, error) {
	if spec.Pattern == domain.PatternNever {
		return nil, ErrNotRecurring
	}

	interval := spec.Interval
	if interval < 1 {
		interval = 1
	}

	opt := rrule.ROption{
		Dtstart:  dtstart,
		Interval: interval,
	}

	switch spec.Pattern {
	case domain.PatternDaily:
		opt.Freq = rrule.DAILY
	case domain.PatternWeekdays:
		opt.Freq = rrule.DAILY
		opt.Interval = 1
		opt.Byweekday = businessDays
	case domain.PatternWeekly:
		opt.Freq = rrule.WEEKLY
		opt.Byweekday = rruleWeekdays(spec.Weekdays)
	case domain.PatternBiweekly:
		opt.Freq = rrule.WEEKLY
		opt.Interval = interval * 2
	case domain.PatternMonthly:
		opt.Freq = rrule.MONTHLY
	case domain.PatternYearly:
		opt.Freq = rrule.YEARLY
	case domain.PatternCustom:
		// RRULE has no equivalent of the custom pattern's interval-plus-
		// weekday-set combination; the weekday set wins, matching the
		// engine's occurrence order.
		if spec.HasWeekdays() {
			opt.Freq = rrule.WEEKLY
			opt.Byweekday = rruleWeekdays(spec.Weekdays)
		} else {
			opt.Freq = rrule.DAILY
		}
	default:
		return nil, fmt.Errorf("%w: unknown pattern %q", domain.ErrRecurrencePatternInvalid, spec.Pattern)
	}

	switch spec.EndType {
	case domain.EndAfterCount:
		opt.Count = spec.EndCount
	case domain.EndOnDate:
		if spec.EndDate != nil {
			opt.Until = *spec.EndDate
		}
	}

	return rrule.NewRRule(opt)
}

// rruleWeekdays converts domain weekday codes to rrule weekdays.
func rruleWeekdays(weekdays []domain.Weekday) []rrule.Weekday {
	if len(weekdays) == 0 {
		return nil
	}
	out := make([]rrule.Weekday, 0, len(weekdays))
	for _, wd := range weekdays {
		switch wd {
		case domain.Sunday:
			out = append(out, rrule.SU)
		case domain.Monday:
			out = append(out, rrule.MO)
		case domain.Tuesday:
			out = append(out, rrule.TU)
		case domain.Wednesday:
			out = append(out, rrule.WE)
		case domain.Thursday:
			out = append(out, rrule.TH)
		case domain.Friday:
			out = append(out, rrule.FR)
		case domain.Saturday:
			out = append(out, rrule.SA)
		}
	}
	return out
}
