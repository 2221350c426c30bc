package dto

import "net/http"

// API error codes. Every code starts with ERR_ and maps to one HTTP status.
const (
	ErrCodeInternal       = "ERR_INTERNAL"
	ErrCodePartialFailure = "ERR_PARTIAL_FAILURE"

	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"

	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeInvalidState  = "ERR_INVALID_STATE"

	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// errorCodes ties each API code to its HTTP status and to the domain
// error code it is reported for, if any.
var errorCodes = []struct {
	code   string
	status int
	domain string
}{
	{ErrCodeInternal, http.StatusInternalServerError, "INTERNAL_ERROR"},
	{ErrCodePartialFailure, http.StatusInternalServerError, "PARTIAL_FAILURE"},
	{ErrCodeValidation, http.StatusBadRequest, "VALIDATION_ERROR"},
	{ErrCodeBadRequest, http.StatusBadRequest, "BAD_REQUEST"},
	{ErrCodeInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
	{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge, ""},
	{ErrCodeUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
	{ErrCodeForbidden, http.StatusForbidden, "FORBIDDEN"},
	{ErrCodeNotFound, http.StatusNotFound, "NOT_FOUND"},
	{ErrCodeAlreadyExists, http.StatusConflict, "ALREADY_EXISTS"},
	{ErrCodeInvalidState, http.StatusUnprocessableEntity, "INVALID_STATE"},
	{ErrCodeRateLimited, http.StatusTooManyRequests, ""},
}

var (
	statusByCode = map[string]int{}
	codeByDomain = map[string]string{}
)

func init() {
	for _, c := range errorCodes {
		statusByCode[c.code] = c.status
		if c.domain != "" {
			codeByDomain[c.domain] = c.code
		}
	}
}

// GetHTTPStatus returns the status of an API code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode turns a domain error code such as NOT_FOUND into its
// API code. API codes and unknown codes pass through.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := codeByDomain[code]; ok {
		return apiCode
	}
	return code
}
