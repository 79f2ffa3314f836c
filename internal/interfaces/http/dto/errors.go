package dto

import "net/http"

// Stable error codes exposed by the HTTP API.
const (
	ErrCodeInvalidInput        = "ERR_INVALID_INPUT"
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeInvalidState        = "ERR_INVALID_STATE"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeUnauthorized        = "ERR_UNAUTHORIZED"
	ErrCodeForbidden           = "ERR_FORBIDDEN"
	ErrCodeUnbalancedEntry     = "ERR_UNBALANCED_ENTRY"
	ErrCodeAlreadyAccrued      = "ERR_ALREADY_ACCRUED"
	ErrCodeDuplicateCode       = "ERR_DUPLICATE_CODE"
	ErrCodeChartNotConfigured  = "ERR_CHART_NOT_CONFIGURED"
	ErrCodeInstallmentExceeded = "ERR_INSTALLMENT_EXCEEDED"
	ErrCodeInternal            = "ERR_INTERNAL"
)

// ErrorCodeHTTPStatus maps API error codes to HTTP status codes.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInvalidInput:        http.StatusBadRequest,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeUnauthorized:        http.StatusUnauthorized,
	ErrCodeForbidden:           http.StatusForbidden,
	ErrCodeUnbalancedEntry:     http.StatusUnprocessableEntity,
	ErrCodeAlreadyAccrued:      http.StatusConflict,
	ErrCodeDuplicateCode:       http.StatusConflict,
	ErrCodeChartNotConfigured:  http.StatusInternalServerError,
	ErrCodeInstallmentExceeded: http.StatusUnprocessableEntity,
	ErrCodeInternal:            http.StatusInternalServerError,
}

// domainErrorCodeMapping translates domain error codes to API error codes.
var domainErrorCodeMapping = map[string]string{
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_STATE":        ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"UNBALANCED_ENTRY":     ErrCodeUnbalancedEntry,
	"ALREADY_ACCRUED":      ErrCodeAlreadyAccrued,
	"DUPLICATE_CODE":       ErrCodeDuplicateCode,
	"CHART_NOT_CONFIGURED": ErrCodeChartNotConfigured,
	"INSTALLMENT_EXCEEDED": ErrCodeInstallmentExceeded,
}

// NormalizeErrorCode converts a domain error code into its API error code.
// Unknown codes collapse to ERR_INTERNAL so internals never leak to clients.
func NormalizeErrorCode(code string) string {
	if mapped, ok := domainErrorCodeMapping[code]; ok {
		return mapped
	}
	if _, ok := ErrorCodeHTTPStatus[code]; ok {
		return code
	}
	return ErrCodeInternal
}

// GetHTTPStatus returns the HTTP status for an API error code.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
