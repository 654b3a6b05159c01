package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Configuration errors: detected at load time, abort the whole run
	ErrConfigLoad      ErrorCode = "CONFIG_LOAD"
	ErrConfigParse     ErrorCode = "CONFIG_PARSE"
	ErrConfigInvalid   ErrorCode = "CONFIG_INVALID"
	ErrOverrideInvalid ErrorCode = "OVERRIDE_INVALID"

	// Rule errors
	ErrRuleLoad    ErrorCode = "RULE_LOAD"
	ErrRuleParse   ErrorCode = "RULE_PARSE"
	ErrRuleInvalid ErrorCode = "RULE_INVALID"
	ErrRuleFetch   ErrorCode = "RULE_FETCH"

	// Pattern errors
	ErrPatternInvalid ErrorCode = "PATTERN_INVALID"

	// Bundle errors
	ErrBundleGlob   ErrorCode = "BUNDLE_GLOB"
	ErrBundleRead   ErrorCode = "BUNDLE_READ"
	ErrBundleDecode ErrorCode = "BUNDLE_DECODE"

	// Validator errors
	ErrValidatorNotFound ErrorCode = "VALIDATOR_NOT_FOUND"
	ErrValidatorInvalid  ErrorCode = "VALIDATOR_INVALID"
	ErrValidatorExecute  ErrorCode = "VALIDATOR_EXECUTE"
	ErrProviderNotFound  ErrorCode = "PROVIDER_NOT_FOUND"
	ErrPromptExecute     ErrorCode = "PROMPT_EXECUTE"

	// Graph errors
	ErrGraphBuild ErrorCode = "GRAPH_BUILD"
	ErrGraphCycle ErrorCode = "GRAPH_CYCLE"

	// Cache errors
	ErrCacheRead  ErrorCode = "CACHE_READ"
	ErrCacheWrite ErrorCode = "CACHE_WRITE"

	// Execution errors
	ErrUnitTimeout ErrorCode = "UNIT_TIMEOUT"
	ErrUnitExecute ErrorCode = "UNIT_EXECUTE"
)

// VigilError represents a structured error with code and details
type VigilError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *VigilError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *VigilError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *VigilError) Is(target error) bool {
	var targetErr *VigilError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new VigilError with the given code and message
func New(code ErrorCode, message string) *VigilError {
	return &VigilError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new VigilError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *VigilError {
	return &VigilError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a VigilError
func Wrap(err error, code ErrorCode, message string) *VigilError {
	if err == nil {
		return nil
	}
	return &VigilError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *VigilError {
	if err == nil {
		return nil
	}
	return &VigilError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *VigilError) WithDetail(key string, value interface{}) *VigilError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *VigilError) WithDetails(details map[string]interface{}) *VigilError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var vigilErr *VigilError
	if errors.As(err, &vigilErr) {
		return vigilErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a VigilError
func GetErrorCode(err error) ErrorCode {
	var vigilErr *VigilError
	if errors.As(err, &vigilErr) {
		return vigilErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a VigilError
func GetErrorDetails(err error) map[string]interface{} {
	var vigilErr *VigilError
	if errors.As(err, &vigilErr) {
		return vigilErr.Details
	}
	return nil
}

// IsConfiguration reports whether the error belongs to the load-time
// configuration category, which must abort the run before any validation.
func IsConfiguration(err error) bool {
	switch GetErrorCode(err) {
	case ErrConfigLoad, ErrConfigParse, ErrConfigInvalid, ErrOverrideInvalid,
		ErrRuleLoad, ErrRuleParse, ErrRuleInvalid, ErrRuleFetch,
		ErrValidatorNotFound, ErrProviderNotFound:
		return true
	}
	return false
}
