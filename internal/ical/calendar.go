package ical

import (
	"errors"
	"fmt"
	"io"
	"time"

	goical "github.com/emersion/go-ical"

	"github.com/taskcycle/taskcycle-api/internal/domain"
)

const productID = "-//taskcycle//taskcycle-api//EN"

// ErrNilTemplate indicates a calendar was requested for a nil template.
var ErrNilTemplate = errors.New("template task cannot be nil")

// Calendar builds an iCalendar object holding the template as a VTODO with
// its recurrence rule, followed by one VTODO per generated instance linked
// back to the template through RELATED-TO.
func Calendar(template *domain.Task, instances []*domain.Task, now time.Time) (*goical.Calendar, error) {
	if template == nil {
		return nil, ErrNilTemplate
	}

	cal := goical.NewCalendar()
	cal.Props.SetText(goical.PropProductID, productID)
	cal.Props.SetText(goical.PropVersion, "2.0")

	templateTodo, err := todoComponent(template, now)
	if err != nil {
		return nil, err
	}
	if template.IsRecurring() {
		rule, err := RuleFor(template.Recurrence, anchorDate(template, now))
		if err != nil {
			return nil, fmt.Errorf("failed to build recurrence rule: %w", err)
		}
		templateTodo.Props.SetText(goical.PropRecurrenceRule, rule.String())
	}
	cal.Children = append(cal.Children, templateTodo)

	for _, instance := range instances {
		todo, err := todoComponent(instance, now)
		if err != nil {
			return nil, err
		}
		todo.Props.SetText("RELATED-TO", instance.ParentTaskID.String())
		cal.Children = append(cal.Children, todo)
	}

	return cal, nil
}

// Write encodes the calendar for the template and instances to the writer in
// iCalendar wire format.
func Write(w io.Writer, template *domain.Task, instances []*domain.Task, now time.Time) error {
	cal, err := Calendar(template, instances, now)
	if err != nil {
		return err
	}
	if err := goical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

func todoComponent(task *domain.Task, now time.Time) (*goical.Component, error) {
	if task == nil {
		return nil, ErrNilTemplate
	}

	todo := goical.NewComponent(goical.CompToDo)
	todo.Props.SetText(goical.PropUID, task.ID.String())
	todo.Props.SetDateTime(goical.PropDateTimeStamp, now.UTC())
	todo.Props.SetText(goical.PropSummary, task.Title)
	if task.Description != "" {
		todo.Props.SetText(goical.PropDescription, task.Description)
	}
	if task.DueDate != nil {
		todo.Props.SetDateTime(goical.PropDue, task.DueDate.UTC())
	}
	if task.IsCompleted {
		todo.Props.SetText(goical.PropStatus, "COMPLETED")
	}

	return todo, nil
}

// anchorDate picks the recurrence rule's start: the task's due date when it
// has one, the current instant otherwise.
func anchorDate(task *domain.Task, now time.Time) time.Time {
	if task.DueDate != nil {
		return *task.DueDate
	}
	return now
}
