package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskcycle/taskcycle-api/internal/api/middleware"
	"github.com/taskcycle/taskcycle-api/internal/api/shared"
	"github.com/taskcycle/taskcycle-api/internal/domain"
	"github.com/taskcycle/taskcycle-api/internal/domain/recur"
	"github.com/taskcycle/taskcycle-api/internal/ical"
	"github.com/taskcycle/taskcycle-api/internal/platform/logger"
	"github.com/taskcycle/taskcycle-api/internal/service/taskgen"
	"github.com/taskcycle/taskcycle-api/internal/store"
)

// InstanceGenerator is the slice of the generation service the task handler
// drives. Satisfied by *taskgen.Generator.
type InstanceGenerator interface {
	GenerateForTemplate(ctx context.Context, templateID uuid.UUID, horizon time.Time) (*taskgen.Summary, error)
}

// TaskHandler handles task-related HTTP requests.
type TaskHandler struct {
	taskStore store.TaskStore
	generator InstanceGenerator
	recurSvc  recur.Service
	horizon   time.Duration
	logger    *slog.Logger
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
// horizon is the default generation window applied when a generation request
// does not name one.
func NewTaskHandler(
	taskStore store.TaskStore,
	generator InstanceGenerator,
	recurSvc recur.Service,
	horizon time.Duration,
	log *slog.Logger,
) *TaskHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		taskStore: taskStore,
		generator: generator,
		recurSvc:  recurSvc,
		horizon:   horizon,
		logger:    log.With(slog.String("component", "task_handler")),
	}
}

// CreateTask handles POST /tasks requests.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	dueDate, err := parseOptionalDate(req.DueDate)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid due_date")
		return
	}

	task, err := domain.NewTask(userID, req.Title, dueDate)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task data: "+err.Error())
		return
	}
	task.Description = req.Description
	task.SectionID = req.SectionID

	if req.Recurrence != nil {
		spec, err := recurrenceFromRequest(req.Recurrence)
		if err != nil {
			shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
			return
		}
		if spec.Pattern != domain.PatternNever && task.DueDate == nil {
			shared.RespondWithError(w, r, http.StatusBadRequest,
				"Recurring tasks require a due_date")
			return
		}
		task.Recurrence = spec
	}

	if err := h.taskStore.Create(r.Context(), task); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err),
			"Failed to create task", err)
		return
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("pattern", string(task.Recurrence.Pattern)))

	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// GetNextDue handles GET /tasks/{id}/next-due requests. It reports the next
// occurrence of the task after its current due date, null when the task does
// not repeat or its recurrence has ended.
func (h *TaskHandler) GetNextDue(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadOwnedTask(w, r)
	if !ok {
		return
	}

	resp := NextDueResponse{TaskID: task.ID}
	now := time.Now().UTC()
	if !h.recurSvc.HasEnded(task, now) {
		if next, ok := h.recurSvc.NextDueDate(task, now).Get(); ok {
			resp.NextDueDate = &next
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetRecurrence handles GET /tasks/{id}/recurrence requests.
func (h *TaskHandler) GetRecurrence(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadOwnedTask(w, r)
	if !ok {
		return
	}

	spec := task.Recurrence
	resp := RecurrenceResponse{
		Pattern:     string(spec.Pattern),
		Interval:    spec.Interval,
		EndType:     string(spec.EndType),
		EndCount:    spec.EndCount,
		EndDate:     spec.EndDate,
		Count:       spec.Count,
		Ended:       h.recurSvc.HasEnded(task, time.Now().UTC()),
		Description: h.recurSvc.Describe(spec),
	}
	for _, wd := range spec.Weekdays {
		resp.Weekdays = append(resp.Weekdays, int(wd))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Generate handles POST /tasks/{id}/generate requests. It materializes the
// task's upcoming instances up to the requested horizon, or the server's
// default window when the body names none.
func (h *TaskHandler) Generate(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadOwnedTask(w, r)
	if !ok {
		return
	}

	horizon := time.Now().UTC().Add(h.horizon)
	if r.ContentLength > 0 {
		var req GenerateRequest
		if err := shared.DecodeJSON(r, &req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
			return
		}
		if req.Horizon != nil {
			parsed, err := parseOptionalDate(req.Horizon)
			if err != nil {
				shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid horizon")
				return
			}
			horizon = *parsed
		}
	}

	summary, err := h.generator.GenerateForTemplate(r.Context(), task.ID, horizon)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err),
			GetSafeErrorMessage(err), err)
		return
	}

	resp := GenerateResponse{
		TaskID:           summary.TemplateID,
		Generated:        len(summary.Instances),
		GeneratedThrough: summary.GeneratedThrough,
		Instances:        make([]TaskResponse, 0, len(summary.Instances)),
	}
	for _, instance := range summary.Instances {
		resp.Instances = append(resp.Instances, taskToResponse(instance))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Calendar handles GET /tasks/{id}/calendar.ics requests, serving the task
// and its generated instances as an iCalendar VTODO feed.
func (h *TaskHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadOwnedTask(w, r)
	if !ok {
		return
	}

	instances, err := h.taskStore.ListInstances(r.Context(), task.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err),
			"Failed to load task instances", err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	if err := ical.Write(w, task, instances, time.Now().UTC()); err != nil {
		// Headers are already written; log and give up on the body.
		logger.FromContextOrDefault(r.Context(), h.logger).Error(
			"failed to write calendar feed",
			slog.String("task_id", task.ID.String()),
			slog.String("error", err.Error()))
	}
}

// loadOwnedTask resolves the {id} route parameter, loads the task, and
// enforces that the authenticated user owns it. On failure it writes the
// error response and returns ok=false.
func (h *TaskHandler) loadOwnedTask(w http.ResponseWriter, r *http.Request) (*domain.Task, bool) {
	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return nil, false
	}

	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return nil, false
	}

	task, err := h.taskStore.GetByID(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
			return nil, false
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to load task", err)
		return nil, false
	}

	if task.UserID != userID {
		shared.RespondWithError(w, r, MapErrorToStatusCode(ErrTaskNotOwned),
			GetSafeErrorMessage(ErrTaskNotOwned))
		return nil, false
	}

	return task, true
}

// recurrenceFromRequest maps the request recurrence block onto a validated
// domain spec. Omitted fields keep their defaults.
func recurrenceFromRequest(req *RecurrenceRequest) (domain.RecurrenceSpec, error) {
	spec := domain.NewRecurrenceSpec()
	spec.Pattern = domain.RecurrencePattern(req.Pattern)
	if req.Interval > 0 {
		spec.Interval = req.Interval
	}
	for _, code := range req.Weekdays {
		spec.Weekdays = append(spec.Weekdays, domain.Weekday(code))
	}
	if req.EndType != "" {
		spec.EndType = domain.RecurrenceEndType(req.EndType)
	}
	spec.EndCount = req.EndCount
	if req.EndDate != nil {
		endDate, err := parseOptionalDate(req.EndDate)
		if err != nil {
			return spec, domain.ErrRecurrenceEndDateMissing
		}
		spec.EndDate = endDate
	}

	if err := spec.Validate(); err != nil {
		return spec, err
	}
	return spec, nil
}

// parseOptionalDate parses an RFC 3339 timestamp or a bare 2006-01-02 date,
// the latter normalized to midnight UTC. A nil input yields a nil date.
func parseOptionalDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, *value); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", *value)
	if err != nil {
		return nil, err
	}
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &t, nil
}
