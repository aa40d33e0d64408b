package api

import (
	"database/sql"
	"errors"
	"net/http"

	"pollsite/internal/domain/question"
	"pollsite/internal/domain/user"
	"pollsite/internal/platform/apperr"
)

func errorResponse(w http.ResponseWriter, err error) {
	appErr := mapError(err)
	if appErr.StatusCode() >= http.StatusInternalServerError {
		slogLogger.Error("request failed", "error", err)
	}
	writeJSON(w, appErr.StatusCode(), map[string]string{
		"error":   appErr.Code,
		"message": appErr.Message,
	})
}

func mapError(err error) *apperr.AppError {
	if err == nil {
		return apperr.Internal("internal_error", "internal server error", nil)
	}

	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, question.ErrNotFound):
		return apperr.NotFound("question_not_found", "question not found", err)
	case errors.Is(err, question.ErrNoChoiceSelected):
		return apperr.BadRequest("no_choice_selected", "You didn't select a choice.", err)
	case errors.Is(err, question.ErrTextRequired):
		return apperr.BadRequest("invalid_input", "question_text is required", err)
	case errors.Is(err, question.ErrChoiceRequired):
		return apperr.BadRequest("invalid_input", "choice_text is required", err)
	case errors.Is(err, question.ErrTextTooLong):
		return apperr.BadRequest("invalid_input", "text must be at most 200 characters", err)
	case errors.Is(err, question.ErrInvalidPage):
		return apperr.BadRequest("invalid_input", "invalid page", err)
	case errors.Is(err, question.ErrInvalidDateFilter):
		return apperr.BadRequest("invalid_filter", "unknown pub_date filter", err)
	case errors.Is(err, sql.ErrNoRows):
		return apperr.NotFound("not_found", "resource not found", err)
	case errors.Is(err, user.ErrInvalidCredentials):
		return apperr.Unauthorized("invalid_credentials", "invalid credentials", err)
	case errors.Is(err, user.ErrEmailTaken):
		return apperr.Conflict("email_taken", "email already taken", err)
	case errors.Is(err, user.ErrMissingFields):
		return apperr.BadRequest("invalid_input", "email and password required", err)
	case errors.Is(err, user.ErrInvalidRole):
		return apperr.BadRequest("invalid_input", "invalid role", err)
	default:
		return apperr.Internal("internal_error", http.StatusText(http.StatusInternalServerError), err)
	}
}
