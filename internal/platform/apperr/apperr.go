package apperr

import (
	"errors"
	"net/http"
)

// AppError is an error that knows how it should be presented over HTTP.
type AppError struct {
	Code    string `json:"error"`
	Message string `json:"message"`
	Err     error  `json:"-"`
	status  int
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.StatusCode())
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *AppError) StatusCode() int {
	if e == nil || e.status == 0 {
		return http.StatusInternalServerError
	}
	return e.status
}

func New(status int, code, msg string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: msg,
		Err:     err,
		status:  status,
	}
}

func BadRequest(code, msg string, err error) *AppError {
	return New(http.StatusBadRequest, code, msg, err)
}

func NotFound(code, msg string, err error) *AppError {
	return New(http.StatusNotFound, code, msg, err)
}

func Conflict(code, msg string, err error) *AppError {
	return New(http.StatusConflict, code, msg, err)
}

func Unauthorized(code, msg string, err error) *AppError {
	return New(http.StatusUnauthorized, code, msg, err)
}

func Forbidden(code, msg string, err error) *AppError {
	return New(http.StatusForbidden, code, msg, err)
}

func TooManyRequests(code, msg string) *AppError {
	return New(http.StatusTooManyRequests, code, msg, nil)
}

func Internal(code, msg string, err error) *AppError {
	return New(http.StatusInternalServerError, code, msg, err)
}

// FromError returns err as an *AppError, wrapping unknown errors as 500s.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("internal_error", http.StatusText(http.StatusInternalServerError), err)
}
