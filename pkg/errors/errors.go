package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeAuth       = "AUTH_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeAPIError   = "API_ERROR"
	CodeCache      = "CACHE_ERROR"
	CodeDatabase   = "DATABASE_ERROR"
	CodeService    = "SERVICE_ERROR"
	CodeAIProvider = "AI_PROVIDER_ERROR"
)

// AppError is the base error type carried through handlers. MessageKey is an
// i18n catalog key; the HTTP layer resolves it against the request language.
type AppError struct {
	MessageKey string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.MessageKey, e.Cause)
	}
	return e.MessageKey
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

type carrier interface {
	appError() *AppError
}

func (e *AppError) appError() *AppError {
	return e
}

// AsAppError walks the error chain and returns the first embedded AppError.
// Every typed error in this package satisfies it through promotion.
func AsAppError(err error) (*AppError, bool) {
	for err != nil {
		if c, ok := err.(carrier); ok {
			return c.appError(), true
		}
		err = stderrors.Unwrap(err)
	}
	return nil, false
}

func New(messageKey, code string, statusCode int, context map[string]any) *AppError {
	return &AppError{
		MessageKey: messageKey,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

type ValidationError struct {
	*AppError
	Field string
	Value interface{}
}

func NewValidationError(messageKey, field string, value interface{}) *ValidationError {
	return &ValidationError{
		AppError: &AppError{
			MessageKey: messageKey,
			Code:       CodeValidation,
			StatusCode: 400,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

type AuthError struct {
	*AppError
}

func NewAuthError(messageKey string) *AuthError {
	return &AuthError{
		AppError: &AppError{
			MessageKey: messageKey,
			Code:       CodeAuth,
			StatusCode: 401,
		},
	}
}

type NotFoundError struct {
	*AppError
	Resource string
}

func NewNotFoundError(messageKey, resource string) *NotFoundError {
	return &NotFoundError{
		AppError: &AppError{
			MessageKey: messageKey,
			Code:       CodeNotFound,
			StatusCode: 404,
			Context: map[string]any{
				"resource": resource,
			},
		},
		Resource: resource,
	}
}

type APIError struct {
	*AppError
}

func NewAPIError(messageKey string, statusCode int, context map[string]any) *APIError {
	return &APIError{
		AppError: &AppError{
			MessageKey: messageKey,
			Code:       CodeAPIError,
			StatusCode: statusCode,
			Context:    context,
		},
	}
}

type CacheError struct {
	*AppError
	Operation string
	Key       string
}

func NewCacheError(messageKey, operation, key string, cause error) *CacheError {
	return &CacheError{
		AppError: &AppError{
			MessageKey: messageKey,
			Code:       CodeCache,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

type DatabaseError struct {
	*AppError
	Operation string
}

func NewDatabaseError(messageKey, operation string, cause error) *DatabaseError {
	return &DatabaseError{
		AppError: &AppError{
			MessageKey: messageKey,
			Code:       CodeDatabase,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
			},
			Cause: cause,
		},
		Operation: operation,
	}
}

type ServiceError struct {
	*AppError
	Service   string
	Operation string
}

func NewServiceError(messageKey, service, operation string, cause error) *ServiceError {
	return &ServiceError{
		AppError: &AppError{
			MessageKey: messageKey,
			Code:       CodeService,
			StatusCode: 500,
			Context: map[string]any{
				"service":   service,
				"operation": operation,
			},
			Cause: cause,
		},
		Service:   service,
		Operation: operation,
	}
}

// AIProviderError keeps the raw provider message so the remediation
// classifier can pattern-match it (PERMISSION_DENIED, 429, ...).
type AIProviderError struct {
	*AppError
	Provider   string
	RawMessage string
}

func NewAIProviderError(messageKey, provider, rawMessage string, cause error) *AIProviderError {
	return &AIProviderError{
		AppError: &AppError{
			MessageKey: messageKey,
			Code:       CodeAIProvider,
			StatusCode: 502,
			Context: map[string]any{
				"provider": provider,
			},
			Cause: cause,
		},
		Provider:   provider,
		RawMessage: rawMessage,
	}
}
