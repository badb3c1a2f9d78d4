package errors

import (
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid      = "CONFIG_INVALID"
	CodeInvalidShape       = "INVALID_SHAPE"
	CodeAdapterFailure     = "ADAPTER_FAILURE"
	CodeVocabularyMismatch = "VOCABULARY_MISMATCH"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeInternalError      = "INTERNAL_ERROR"
)

// Common error constructors

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InvalidShape(cause error) *AppError {
	return &AppError{
		Code:    CodeInvalidShape,
		Message: "malformed input tensor",
		Cause:   cause,
	}
}

// AdapterFailure tags a fatal error from an external collaborator with the
// pipeline stage and, when applicable, the trial index (-1 when the failure
// is not tied to one trial).
func AdapterFailure(stage string, trial int, cause error) *AppError {
	msg := fmt.Sprintf("%s adapter failed", stage)
	if trial >= 0 {
		msg = fmt.Sprintf("%s adapter failed for trial %d", stage, trial)
	}
	return &AppError{
		Code:    CodeAdapterFailure,
		Message: msg,
		Cause:   cause,
	}
}

func VocabularyMismatch(trial int, cause error) *AppError {
	return &AppError{
		Code:    CodeVocabularyMismatch,
		Message: fmt.Sprintf("pattern vocabulary mismatch at trial %d", trial),
		Cause:   cause,
	}
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}
