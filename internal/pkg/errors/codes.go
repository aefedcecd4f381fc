package errors

import (
	"fmt"
	"net/http"
)

// Code represents an error code with HTTP status and message
type Code struct {
	Code    int    // Business error code
	Status  int    // HTTP status code
	Message string // Error message
}

// Error codes for different modules
const (
	// Success
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer  = 1000
	ErrInvalidParams   = 1001
	ErrNotFound        = 1002
	ErrUnauthorized    = 1003
	ErrForbidden       = 1004
	ErrConflict        = 1005
	ErrTooManyRequests = 1006
	ErrBadRequest      = 1007
	ErrServiceUnavail  = 1008

	// Auth errors (2000-2999)
	ErrAuthInvalidToken = 2000
	ErrAuthTokenExpired = 2001

	// Profile errors (3000-3999)
	ErrProfileNotFound       = 3000
	ErrProfileInvalidInput   = 3001
	ErrProfileTrackingFailed = 3002

	// Assistant errors (4000-4999)
	ErrAssistantEmptyMessage  = 4000
	ErrAssistantContextFailed = 4001

	// Catalog errors (5000-5999)
	ErrProductNotFound = 5000

	// Ambassador errors (6000-6999)
	ErrInviteCodeInvalid  = 6000
	ErrInviteCodeNotFound = 6001
	ErrInviteCodeInactive = 6002
)

// codeMap maps error codes to their details
var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	// Common errors
	ErrInternalServer:  {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:   {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:        {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrUnauthorized:    {ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	ErrForbidden:       {ErrForbidden, http.StatusForbidden, "Forbidden"},
	ErrConflict:        {ErrConflict, http.StatusConflict, "Resource conflict"},
	ErrTooManyRequests: {ErrTooManyRequests, http.StatusTooManyRequests, "Too many requests"},
	ErrBadRequest:      {ErrBadRequest, http.StatusBadRequest, "Bad request"},
	ErrServiceUnavail:  {ErrServiceUnavail, http.StatusServiceUnavailable, "Service unavailable"},

	// Auth errors
	ErrAuthInvalidToken: {ErrAuthInvalidToken, http.StatusUnauthorized, "Invalid or expired token"},
	ErrAuthTokenExpired: {ErrAuthTokenExpired, http.StatusUnauthorized, "Token expired"},

	// Profile errors
	ErrProfileNotFound:       {ErrProfileNotFound, http.StatusNotFound, "User profile not found"},
	ErrProfileInvalidInput:   {ErrProfileInvalidInput, http.StatusBadRequest, "Invalid profile input"},
	ErrProfileTrackingFailed: {ErrProfileTrackingFailed, http.StatusInternalServerError, "Failed to record user activity"},

	// Assistant errors
	ErrAssistantEmptyMessage:  {ErrAssistantEmptyMessage, http.StatusBadRequest, "Message cannot be empty"},
	ErrAssistantContextFailed: {ErrAssistantContextFailed, http.StatusInternalServerError, "Conversation context unavailable"},

	// Catalog errors
	ErrProductNotFound: {ErrProductNotFound, http.StatusNotFound, "Product not found"},

	// Ambassador errors
	ErrInviteCodeInvalid:  {ErrInviteCodeInvalid, http.StatusBadRequest, "Invalid invite code format"},
	ErrInviteCodeNotFound: {ErrInviteCodeNotFound, http.StatusNotFound, "Invite code not found"},
	ErrInviteCodeInactive: {ErrInviteCodeInactive, http.StatusForbidden, "Invite code is no longer active"},
}

// GetCode returns the Code for a given error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus returns HTTP status for a given error code
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}

// FormatError formats an error message with code
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}
