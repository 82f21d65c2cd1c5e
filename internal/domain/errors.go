package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Validation errors (VALIDATION_*) - caller input problems, never retried
	ErrorCodeValidationFailed        ErrorCode = "VALIDATION_FAILED"
	ErrorCodeValidationAmountInvalid ErrorCode = "VALIDATION_AMOUNT_INVALID"
	ErrorCodeValidationCardInvalid   ErrorCode = "VALIDATION_CARD_INVALID"
	ErrorCodeOrderNotFound           ErrorCode = "ORDER_NOT_FOUND"
	ErrorCodeTxnNotFound             ErrorCode = "TXN_NOT_FOUND"

	// 3-D Secure challenge failed - terminal for this payment attempt
	ErrorCodeNotAuthenticated ErrorCode = "AUTH_NOT_AUTHENTICATED"

	// Gateway-facing errors
	ErrorCodeGatewayDeclined ErrorCode = "GATEWAY_DECLINED"
	ErrorCodeTransport       ErrorCode = "TRANSPORT_ERROR"
	ErrorCodeProtocol        ErrorCode = "PROTOCOL_ERROR"

	// Deployment/setup defects - allowed to propagate, not payment failures
	ErrorCodeConfig ErrorCode = "CONFIG_ERROR"

	// Shipping errors
	ErrorCodeCarrierNotFound ErrorCode = "CARRIER_NOT_FOUND"
	ErrorCodePrinterMissing  ErrorCode = "PRINTER_MISSING"

	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// GenericPaymentMessage is the only text shown to a payer when a
// transport or protocol failure occurs. The original cause stays in the
// (redacted) operator logs.
const GenericPaymentMessage = "Payment Error: An error occurred. Please try again."

// DomainError is a structured error with a machine-readable code and
// optional gateway-supplied reason text.
type DomainError struct {
	Err     error
	Code    ErrorCode
	Message string
	// GatewayReason carries the provider's own text for declines, when present.
	GatewayReason string
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// UserMessage returns the text safe to show to the payer.
func (e *DomainError) UserMessage() string {
	switch e.Code {
	case ErrorCodeTransport, ErrorCodeProtocol:
		return GenericPaymentMessage
	case ErrorCodeGatewayDeclined:
		if e.GatewayReason != "" {
			return fmt.Sprintf("Payment Error: %s", e.GatewayReason)
		}
		return "Payment Error: The payment was declined."
	case ErrorCodeNotAuthenticated:
		return "Payment failed. POS: Card is not authenticated."
	default:
		return e.Message
	}
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// NewDeclinedError creates a decline error carrying the provider's reason text.
func NewDeclinedError(reason string) *DomainError {
	return &DomainError{
		Code:          ErrorCodeGatewayDeclined,
		Message:       "payment declined by gateway",
		GatewayReason: reason,
	}
}

// IsDomainError checks if an error is a DomainError with the given code
func IsDomainError(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error, returns empty
// string if the error is not a DomainError.
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}
