package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrUnbalancedEntry     = NewDomainError("UNBALANCED_ENTRY", "Transaction entry debits and credits do not balance")
	ErrAlreadyAccrued      = NewDomainError("ALREADY_ACCRUED", "Rental income has already been accrued for this lease")
	ErrDuplicateCode       = NewDomainError("DUPLICATE_CODE", "Account code already exists")
	ErrChartNotConfigured  = NewDomainError("CHART_NOT_CONFIGURED", "Required chart of accounts mapping is missing")
	ErrInstallmentExceeded = NewDomainError("INSTALLMENT_EXCEEDED", "Installment amount exceeds the remaining item balance")
)
