package recur

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/taskcycle/taskcycle-api/internal/domain"
)

func newTemplate(t *testing.T, due time.Time, s domain.RecurrenceSpec) *domain.Task {
	t.Helper()

	template, err := domain.NewTask(uuid.New(), "water the plants", &due)
	if err != nil {
		t.Fatalf("failed to create template: %v", err)
	}
	template.Description = "front and back garden"
	template.Recurrence = s
	return template
}

func TestGenerateWeeklyUpToHorizon(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	template := newTemplate(t, date(2024, time.January, 1), spec(domain.PatternWeekly, 1))
	now := date(2024, time.January, 1)

	result, err := svc.GenerateInstances(template, date(2024, time.January, 22), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []time.Time{
		date(2024, time.January, 8),
		date(2024, time.January, 15),
		date(2024, time.January, 22), // horizon date itself is included
	}

	if len(result.Instances) != len(expected) {
		t.Fatalf("Expected %d instances, got %d", len(expected), len(result.Instances))
	}

	for i, inst := range result.Instances {
		if !inst.InstanceDate.Equal(expected[i]) {
			t.Errorf("Instance %d: expected date %v, got %v", i, expected[i], *inst.InstanceDate)
		}
		if !inst.DueDate.Equal(expected[i]) {
			t.Errorf("Instance %d: expected due date %v, got %v", i, expected[i], *inst.DueDate)
		}
		if !inst.IsInstance {
			t.Errorf("Instance %d: IsInstance not set", i)
		}
		if inst.IsRecurring() {
			t.Errorf("Instance %d: generated instances must never recur", i)
		}
		if inst.ParentTaskID != template.ID {
			t.Errorf("Instance %d: expected parent %v, got %v", i, template.ID, inst.ParentTaskID)
		}
		if inst.Title != template.Title || inst.Description != template.Description {
			t.Errorf("Instance %d: payload fields not copied verbatim", i)
		}
		if inst.IsCompleted {
			t.Errorf("Instance %d: new instances must not be completed", i)
		}
	}

	if result.Template.Recurrence.Count != 3 {
		t.Errorf("Expected cumulative count 3, got %d", result.Template.Recurrence.Count)
	}
	if result.Template.GeneratedThrough == nil ||
		!result.Template.GeneratedThrough.Equal(date(2024, time.January, 22)) {
		t.Errorf("Expected GeneratedThrough at horizon, got %v", result.Template.GeneratedThrough)
	}
	if template.Recurrence.Count != 0 || template.GeneratedThrough != nil {
		t.Error("Generate must not mutate the input template")
	}
}

func TestGenerateWeekdaysFromFriday(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	friday := date(2024, time.January, 5)
	template := newTemplate(t, friday, spec(domain.PatternWeekdays, 1))

	result, err := svc.GenerateInstances(template, date(2024, time.January, 9), friday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Instances) == 0 {
		t.Fatal("Expected at least one instance")
	}

	monday := date(2024, time.January, 8)
	if !result.Instances[0].InstanceDate.Equal(monday) {
		t.Errorf("Expected first instance on the following Monday %v, got %v",
			monday, *result.Instances[0].InstanceDate)
	}

	for _, inst := range result.Instances {
		if wd := domain.WeekdayOf(*inst.InstanceDate); wd == domain.Saturday || wd == domain.Sunday {
			t.Errorf("Weekdays pattern generated a weekend instance: %v", *inst.InstanceDate)
		}
	}
}

func TestGenerateRespectsSafetyCap(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	template := newTemplate(t, date(2024, time.January, 1), spec(domain.PatternDaily, 1))

	// A horizon decades away with a never-ending daily spec would produce
	// thousands of instances without the cap.
	result, err := svc.GenerateInstances(template, date(2074, time.January, 1), date(2024, time.January, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Instances) != 100 {
		t.Errorf("Expected exactly 100 instances at the cap, got %d", len(result.Instances))
	}
	if result.Template.Recurrence.Count != 100 {
		t.Errorf("Expected cumulative count 100, got %d", result.Template.Recurrence.Count)
	}
}

func TestGenerateAfterCountLimit(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	s := spec(domain.PatternDaily, 1)
	s.EndType = domain.EndAfterCount
	s.EndCount = 3
	template := newTemplate(t, date(2024, time.January, 1), s)

	result, err := svc.GenerateInstances(template, date(2024, time.December, 31), date(2024, time.January, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Instances) != 3 {
		t.Errorf("Expected exactly 3 instances, got %d", len(result.Instances))
	}
}

func TestGenerateAfterCountHonorsPriorInstances(t *testing.T) {
	t.Parallel()

	// A template that already produced 2 of its 3 allowed occurrences in an
	// earlier call may only produce 1 more, regardless of the horizon.
	svc := NewDefaultService()
	s := spec(domain.PatternDaily, 1)
	s.EndType = domain.EndAfterCount
	s.EndCount = 3
	s.Count = 2
	template := newTemplate(t, date(2024, time.January, 1), s)
	through := date(2024, time.January, 3)
	template.GeneratedThrough = &through

	result, err := svc.GenerateInstances(template, date(2024, time.December, 31), date(2024, time.January, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Instances) != 1 {
		t.Fatalf("Expected exactly 1 remaining instance, got %d", len(result.Instances))
	}
	if result.Template.Recurrence.Count != 3 {
		t.Errorf("Expected cumulative count 3, got %d", result.Template.Recurrence.Count)
	}
}

func TestGenerateOnDateNeverPassesEndDate(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	endDate := date(2024, time.January, 10)
	s := spec(domain.PatternDaily, 3)
	s.EndType = domain.EndOnDate
	s.EndDate = &endDate
	template := newTemplate(t, date(2024, time.January, 1), s)

	result, err := svc.GenerateInstances(template, date(2024, time.March, 1), date(2024, time.January, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Instances) == 0 {
		t.Fatal("Expected instances before the end date")
	}
	for _, inst := range result.Instances {
		if inst.DueDate.After(endDate) {
			t.Errorf("Instance dated %v is past the end date %v", *inst.DueDate, endDate)
		}
	}
}

func TestGenerateResumesFromPersistedCursor(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	template := newTemplate(t, date(2024, time.January, 1), spec(domain.PatternWeekly, 1))
	now := date(2024, time.January, 1)
	horizon := date(2024, time.January, 22)

	first, err := svc.GenerateInstances(template, horizon, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first.Instances) != 3 {
		t.Fatalf("Expected 3 instances from first call, got %d", len(first.Instances))
	}

	// Re-running over the same horizon with the unchanged input template
	// re-walks from the original due date and duplicates the set. The
	// persisted cursor on the updated template is what prevents that.
	repeat, err := svc.GenerateInstances(template, horizon, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repeat.Instances) != 3 {
		t.Fatalf("Expected duplicate walk from the stale template, got %d instances", len(repeat.Instances))
	}

	// The updated template resumes after the last produced occurrence.
	second, err := svc.GenerateInstances(first.Template, horizon, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second.Instances) != 0 {
		t.Errorf("Expected no new instances when resuming at the horizon, got %d", len(second.Instances))
	}

	extended, err := svc.GenerateInstances(first.Template, date(2024, time.February, 5), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []time.Time{
		date(2024, time.January, 29),
		date(2024, time.February, 5),
	}
	if len(extended.Instances) != len(expected) {
		t.Fatalf("Expected %d instances past the old horizon, got %d", len(expected), len(extended.Instances))
	}
	for i, inst := range extended.Instances {
		if !inst.InstanceDate.Equal(expected[i]) {
			t.Errorf("Instance %d: expected %v, got %v", i, expected[i], *inst.InstanceDate)
		}
	}
	if extended.Template.Recurrence.Count != 5 {
		t.Errorf("Expected cumulative count 5 across calls, got %d", extended.Template.Recurrence.Count)
	}
}

func TestGeneratePreconditions(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	now := date(2024, time.January, 1)
	horizon := date(2024, time.June, 1)

	t.Run("nil template is an error", func(t *testing.T) {
		if _, err := svc.GenerateInstances(nil, horizon, now); err != ErrNilTemplate {
			t.Errorf("Expected ErrNilTemplate, got %v", err)
		}
	})

	t.Run("non-recurring template yields nothing", func(t *testing.T) {
		template := newTemplate(t, date(2024, time.January, 1), domain.NewRecurrenceSpec())
		result, err := svc.GenerateInstances(template, horizon, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Instances) != 0 {
			t.Errorf("Expected no instances, got %d", len(result.Instances))
		}
	})

	t.Run("template without due date yields nothing", func(t *testing.T) {
		template := newTemplate(t, date(2024, time.January, 1), spec(domain.PatternDaily, 1))
		template.DueDate = nil
		result, err := svc.GenerateInstances(template, horizon, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Instances) != 0 {
			t.Errorf("Expected no instances, got %d", len(result.Instances))
		}
	})

	t.Run("ended template yields nothing", func(t *testing.T) {
		s := spec(domain.PatternDaily, 1)
		s.EndType = domain.EndAfterCount
		s.EndCount = 2
		s.Count = 2
		template := newTemplate(t, date(2024, time.January, 1), s)
		result, err := svc.GenerateInstances(template, horizon, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Instances) != 0 {
			t.Errorf("Expected no instances, got %d", len(result.Instances))
		}
	})

	t.Run("instance task never generates", func(t *testing.T) {
		template := newTemplate(t, date(2024, time.January, 1), spec(domain.PatternDaily, 1))
		template.IsInstance = true
		template.ParentTaskID = uuid.New()
		instDate := date(2024, time.January, 1)
		template.InstanceDate = &instDate
		result, err := svc.GenerateInstances(template, horizon, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Instances) != 0 {
			t.Errorf("Expected no instances, got %d", len(result.Instances))
		}
	})

	t.Run("horizon before due date is an error", func(t *testing.T) {
		template := newTemplate(t, date(2024, time.June, 1), spec(domain.PatternDaily, 1))
		if _, err := svc.GenerateInstances(template, date(2024, time.January, 1), now); err != ErrHorizonInvalid {
			t.Errorf("Expected ErrHorizonInvalid, got %v", err)
		}
	})
}

func TestNextDueDateService(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	now := date(2024, time.March, 1)

	t.Run("non-recurring task has no next due date", func(t *testing.T) {
		template := newTemplate(t, date(2024, time.January, 1), domain.NewRecurrenceSpec())
		if next := svc.NextDueDate(template, now); next.IsPresent() {
			t.Errorf("Expected no next due date, got %v", next.MustGet())
		}
	})

	t.Run("due date is the reference when present", func(t *testing.T) {
		template := newTemplate(t, date(2024, time.January, 1), spec(domain.PatternWeekly, 1))
		next := svc.NextDueDate(template, now)
		expected := date(2024, time.January, 8)
		if got := next.MustGet(); !got.Equal(expected) {
			t.Errorf("Expected %v, got %v", expected, got)
		}
	})

	t.Run("falls back to now without a due date", func(t *testing.T) {
		template := newTemplate(t, date(2024, time.January, 1), spec(domain.PatternDaily, 1))
		template.DueDate = nil
		next := svc.NextDueDate(template, now)
		expected := date(2024, time.March, 2)
		if got := next.MustGet(); !got.Equal(expected) {
			t.Errorf("Expected %v, got %v", expected, got)
		}
	})
}
