package dto

import "net/http"

// Error codes surfaced by the API. Handlers pass domain error codes
// through unchanged; these constants exist for codes the interface
// layer raises itself.
const (
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes.
// Resource-missing codes map to 404, conflicts to 409, malformed
// input to 400 and business-rule rejections to 422.
var errorCodeHTTPStatus = map[string]int{
	// Missing resources
	"NOT_FOUND":         http.StatusNotFound,
	"ACCOUNT_NOT_FOUND": http.StatusNotFound,
	"CHARGE_NOT_FOUND":  http.StatusNotFound,
	"DRAFT_NOT_FOUND":   http.StatusNotFound,
	"ENTITY_NOT_FOUND":  http.StatusNotFound,
	"PAYMENT_NOT_FOUND": http.StatusNotFound,
	"PRODUCT_NOT_FOUND": http.StatusNotFound,
	"VARIANT_NOT_FOUND": http.StatusNotFound,

	// Conflicts
	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"DUPLICATE_SUBMISSION": http.StatusConflict,
	"VAT_EXISTS":           http.StatusConflict,

	// Malformed input
	"INVALID_INPUT":            http.StatusBadRequest,
	"INVALID_AMOUNT":           http.StatusBadRequest,
	"INVALID_BALANCE":          http.StatusBadRequest,
	"INVALID_BEARER":           http.StatusBadRequest,
	"INVALID_CHARGE_TYPE":      http.StatusBadRequest,
	"INVALID_DISCOUNT":         http.StatusBadRequest,
	"INVALID_NAME":             http.StatusBadRequest,
	"INVALID_ORDER_NUMBER":     http.StatusBadRequest,
	"INVALID_ORDER_TYPE":       http.StatusBadRequest,
	"INVALID_ORG":              http.StatusBadRequest,
	"INVALID_PERCENTAGE":       http.StatusBadRequest,
	"INVALID_QUANTITY":         http.StatusBadRequest,
	"INVALID_RATE":             http.StatusBadRequest,
	"INVALID_STOCK":            http.StatusBadRequest,
	"INVALID_ACCOUNT_TYPE":     http.StatusBadRequest,
	"INVALID_TRANSACTION_TYPE": http.StatusBadRequest,
	"INVALID_VAT_STATUS":       http.StatusBadRequest,

	// Business-rule rejections
	"ACCOUNT_REQUIRED":        http.StatusUnprocessableEntity,
	"CHEQUE_DETAILS_REQUIRED": http.StatusUnprocessableEntity,
	"ENTITY_REQUIRED":         http.StatusUnprocessableEntity,
	"INSUFFICIENT_BALANCE":    http.StatusUnprocessableEntity,
	"INSUFFICIENT_STOCK":      http.StatusUnprocessableEntity,
	"INVALID_ACCOUNT":         http.StatusUnprocessableEntity,
	"INVALID_STATE":           http.StatusUnprocessableEntity,
	"INVALID_STEP":            http.StatusUnprocessableEntity,
	"NO_ITEMS":                http.StatusUnprocessableEntity,
	"OVERPAYMENT":             http.StatusUnprocessableEntity,
	"VAT_FORBIDDEN":           http.StatusUnprocessableEntity,
	"VAT_REQUIRED":            http.StatusUnprocessableEntity,

	// Interface-level codes
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeInternal:     http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for an error code,
// defaulting to 500 for unknown codes
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
