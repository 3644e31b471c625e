package pnpsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error codes the server may return in ErrorResponse.Error.
const (
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeAccountInactive    = "account_inactive"
	ErrorCodeInvalidOTP         = "invalid_otp"
	ErrorCodeTooManyAttempts    = "too_many_attempts"
	ErrorCodeNoPendingAuth      = "no_pending_auth"
	ErrorCodeDispatchFailed     = "dispatch_failed"
	ErrorCodePasswordMismatch   = "password_mismatch"
	ErrorCodeAlreadyExists      = "already_exists"
	ErrorCodeNotFound           = "not_found"
	ErrorCodeLeaveNotPending    = "leave_not_pending"
	ErrorCodeLoginRequired      = "login_required"
	ErrorCodeAccessDenied       = "access_denied"
	ErrorCodeRateLimited        = "rate_limit_exceeded"
	ErrorCodeServerError        = "server_error"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("%d %s", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Description)
}

// IsCode reports whether err is an *APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

func parseErrorResponse(resp *http.Response, body []byte) error {
	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err != nil || er.Error == "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        ErrorCodeServerError,
			Description: http.StatusText(resp.StatusCode),
		}
	}
	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        er.Error,
		Description: er.ErrorDescription,
	}
}
