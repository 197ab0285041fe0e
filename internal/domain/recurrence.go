package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Recurrence-specific validation errors
var (
	// ErrRecurrenceIntervalInvalid is returned when a recurrence interval is zero or negative.
	ErrRecurrenceIntervalInvalid = errors.New("recurrence interval must be a positive integer")

	// ErrRecurrencePatternInvalid is returned when a recurrence pattern is not a known value.
	ErrRecurrencePatternInvalid = errors.New("invalid recurrence pattern")

	// ErrRecurrenceEndTypeInvalid is returned when a recurrence end type is not a known value.
	ErrRecurrenceEndTypeInvalid = errors.New("invalid recurrence end type")

	// ErrRecurrenceEndCountInvalid is returned when the end type is "after_count"
	// but the occurrence limit is zero or negative.
	ErrRecurrenceEndCountInvalid = errors.New("recurrence end count must be a positive integer")

	// ErrRecurrenceEndDateMissing is returned when the end type is "on_date"
	// but no end date is set.
	ErrRecurrenceEndDateMissing = errors.New("recurrence end date is required for on_date end type")

	// ErrWeekdayCodeInvalid is returned when a stored weekday code is outside
	// the 1 (Sunday) to 7 (Saturday) range.
	ErrWeekdayCodeInvalid = errors.New("weekday code must be between 1 and 7")
)

// RecurrencePattern identifies how a task repeats.
type RecurrencePattern string

const (
	PatternNever    RecurrencePattern = "never"
	PatternDaily    RecurrencePattern = "daily"
	PatternWeekdays RecurrencePattern = "weekdays"
	PatternWeekly   RecurrencePattern = "weekly"
	PatternBiweekly RecurrencePattern = "biweekly"
	PatternMonthly  RecurrencePattern = "monthly"
	PatternYearly   RecurrencePattern = "yearly"
	PatternCustom   RecurrencePattern = "custom"
)

// IsValid reports whether the pattern is one of the known values.
func (p RecurrencePattern) IsValid() bool {
	switch p {
	case PatternNever, PatternDaily, PatternWeekdays, PatternWeekly,
		PatternBiweekly, PatternMonthly, PatternYearly, PatternCustom:
		return true
	default:
		return false
	}
}

// RecurrenceEndType identifies how a recurrence terminates.
type RecurrenceEndType string

const (
	EndNever      RecurrenceEndType = "never"
	EndAfterCount RecurrenceEndType = "after_count"
	EndOnDate     RecurrenceEndType = "on_date"
)

// IsValid reports whether the end type is one of the known values.
func (e RecurrenceEndType) IsValid() bool {
	switch e {
	case EndNever, EndAfterCount, EndOnDate:
		return true
	default:
		return false
	}
}

// Weekday is a weekday code in the 1..7 range with Sunday = 1 and
// Saturday = 7. Comparisons between codes are purely numeric.
type Weekday int

const (
	Sunday    Weekday = 1
	Monday    Weekday = 2
	Tuesday   Weekday = 3
	Wednesday Weekday = 4
	Thursday  Weekday = 5
	Friday    Weekday = 6
	Saturday  Weekday = 7
)

// weekdayNames maps weekday codes to their display names, used by the
// recurrence description formatter.
var weekdayNames = map[Weekday]string{
	Sunday:    "Sunday",
	Monday:    "Monday",
	Tuesday:   "Tuesday",
	Wednesday: "Wednesday",
	Thursday:  "Thursday",
	Friday:    "Friday",
	Saturday:  "Saturday",
}

// IsValid reports whether the code is within the 1..7 range.
func (w Weekday) IsValid() bool {
	return w >= Sunday && w <= Saturday
}

// String returns the English name of the weekday, or "Unknown" for codes
// outside the valid range.
func (w Weekday) String() string {
	if name, ok := weekdayNames[w]; ok {
		return name
	}
	return "Unknown"
}

// WeekdayOf converts a time.Time to its weekday code.
// time.Weekday numbers Sunday as 0; the code space here starts at 1.
func WeekdayOf(t time.Time) Weekday {
	return Weekday(int(t.Weekday()) + 1)
}

// RecurrenceSpec describes how a task repeats. A spec with PatternNever
// means the owning task does not recur regardless of the other fields.
type RecurrenceSpec struct {
	Pattern  RecurrencePattern `json:"pattern"`
	Interval int               `json:"interval"`
	Weekdays []Weekday         `json:"weekdays,omitempty"`
	EndType  RecurrenceEndType `json:"end_type"`
	EndCount int               `json:"end_count,omitempty"`
	EndDate  *time.Time        `json:"end_date,omitempty"`

	// Count is the cumulative number of instances generated for the owning
	// template across all generation calls. It is a running counter persisted
	// alongside the template, not a value derived from storage.
	Count int `json:"count"`
}

// NewRecurrenceSpec returns a non-recurring spec with defaulted fields.
func NewRecurrenceSpec() RecurrenceSpec {
	return RecurrenceSpec{
		Pattern:  PatternNever,
		Interval: 1,
		EndType:  EndNever,
	}
}

// Validate checks the spec for internal consistency.
func (s RecurrenceSpec) Validate() error {
	if !s.Pattern.IsValid() {
		return fmt.Errorf("%w: %q", ErrRecurrencePatternInvalid, s.Pattern)
	}

	if s.Interval < 1 {
		return ErrRecurrenceIntervalInvalid
	}

	if !s.EndType.IsValid() {
		return fmt.Errorf("%w: %q", ErrRecurrenceEndTypeInvalid, s.EndType)
	}

	if s.EndType == EndAfterCount && s.EndCount < 1 {
		return ErrRecurrenceEndCountInvalid
	}

	if s.EndType == EndOnDate && s.EndDate == nil {
		return ErrRecurrenceEndDateMissing
	}

	for _, w := range s.Weekdays {
		if !w.IsValid() {
			return fmt.Errorf("%w: %d", ErrWeekdayCodeInvalid, w)
		}
	}

	return nil
}

// HasWeekdays reports whether an explicit weekday set is configured.
// Only the Weekly and Custom patterns consult the set.
func (s RecurrenceSpec) HasWeekdays() bool {
	return len(s.Weekdays) > 0
}

// EncodeWeekdays serializes a weekday set to its stored representation,
// an opaque JSON list of small integers.
func EncodeWeekdays(weekdays []Weekday) ([]byte, error) {
	codes := make([]int, len(weekdays))
	for i, w := range weekdays {
		if !w.IsValid() {
			return nil, fmt.Errorf("%w: %d", ErrWeekdayCodeInvalid, w)
		}
		codes[i] = int(w)
	}
	return json.Marshal(codes)
}

// DecodeWeekdays parses the stored weekday encoding. A decode failure is
// surfaced as a typed error so callers can distinguish "no custom weekdays
// configured" from corrupt configuration; it is never silently replaced
// with an empty set.
func DecodeWeekdays(data []byte) ([]Weekday, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var codes []int
	if err := json.Unmarshal(data, &codes); err != nil {
		return nil, fmt.Errorf("malformed weekday encoding: %w", err)
	}

	weekdays := make([]Weekday, len(codes))
	for i, c := range codes {
		w := Weekday(c)
		if !w.IsValid() {
			return nil, fmt.Errorf("%w: %d", ErrWeekdayCodeInvalid, c)
		}
		weekdays[i] = w
	}

	return weekdays, nil
}
