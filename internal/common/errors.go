package common

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error codes
const (
	CodeExtraction      = "EXTRACTION_FAILED"
	CodeEmptyExtraction = "EMPTY_EXTRACTION"
	CodeUpstream        = "UPSTREAM_FAILURE"
	CodeConfig          = "CONFIG_ERROR"
	CodeBusy            = "BUSY"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeNotFound        = "NOT_FOUND"
)

// Common application errors
var (
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrExtraction      = errors.New("extraction failed")
	ErrEmptyExtraction = errors.New("no text extracted")
	ErrUpstream        = errors.New("upstream failure")
	ErrConfiguration   = errors.New("configuration error")
	ErrBusy            = errors.New("operation already in progress")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf returns the AppError code found in err's chain, or "".
func CodeOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// HTTPStatus maps an error to the status code the HTTP API answers with.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch CodeOf(err) {
	case CodeExtraction, CodeEmptyExtraction:
		return http.StatusUnprocessableEntity
	case CodeUpstream:
		return http.StatusBadGateway
	case CodeConfig:
		return http.StatusInternalServerError
	case CodeBusy:
		return http.StatusConflict
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrBusy):
		return http.StatusConflict
	case errors.Is(err, ErrExtraction), errors.Is(err, ErrEmptyExtraction):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// PublicMessage is the text safe to show a client for err. Configuration
// and unclassified failures get a generic message.
func PublicMessage(err error) string {
	var ae *AppError
	if !errors.As(err, &ae) || ae.Code == CodeConfig {
		return "Something went wrong. Please try again."
	}
	return ae.Message
}
