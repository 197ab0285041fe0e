package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/taskcycle/taskcycle-api/internal/domain"
	"github.com/taskcycle/taskcycle-api/internal/domain/recur"
	"github.com/taskcycle/taskcycle-api/internal/service/auth"
	"github.com/taskcycle/taskcycle-api/internal/store"
)

// ErrTaskNotOwned indicates the authenticated user does not own the task.
var ErrTaskNotOwned = errors.New("task is not owned by the user")

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, ErrTaskNotOwned):
		return http.StatusForbidden

	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrTaskNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrEmailExists):
		return http.StatusConflict

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrRecurrencePatternInvalid),
		errors.Is(err, domain.ErrRecurrenceIntervalInvalid),
		errors.Is(err, domain.ErrRecurrenceEndTypeInvalid),
		errors.Is(err, domain.ErrRecurrenceEndCountInvalid),
		errors.Is(err, domain.ErrRecurrenceEndDateMissing),
		errors.Is(err, domain.ErrWeekdayCodeInvalid),
		errors.Is(err, recur.ErrHorizonInvalid):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for the error.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, ErrTaskNotOwned):
		return "You do not own this task"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, recur.ErrHorizonInvalid):
		return "Horizon must not be before the task's due date"

	case errors.Is(err, domain.ErrRecurrencePatternInvalid),
		errors.Is(err, domain.ErrRecurrenceIntervalInvalid),
		errors.Is(err, domain.ErrRecurrenceEndTypeInvalid),
		errors.Is(err, domain.ErrRecurrenceEndCountInvalid),
		errors.Is(err, domain.ErrRecurrenceEndDateMissing),
		errors.Is(err, domain.ErrWeekdayCodeInvalid):
		return "Invalid recurrence settings"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError trims field validation errors down to a message
// safe to return to clients.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// "Key: 'LoginRequest.Email' Error:Field validation for 'Email'
		// failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, validationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "gt", "gte":
		return "value too small"
	default:
		return "validation failed"
	}
}
