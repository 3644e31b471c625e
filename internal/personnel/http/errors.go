package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/service"
	"github.com/aussiebroadwan/pnpstation/pkg/httpx"
	"github.com/aussiebroadwan/pnpstation/pkg/pnpsdk"
	"github.com/aussiebroadwan/pnpstation/pkg/slogx"
	"github.com/aussiebroadwan/pnpstation/pkg/validatex"
)

type errorMapping struct {
	err         error
	status      int
	code        string
	description string
}

// serviceErrors is checked in order; the first errors.Is match wins.
var serviceErrors = []errorMapping{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, pnpsdk.ErrorCodeInvalidCredentials, "Invalid username or password."},
	{service.ErrAccountInactive, http.StatusForbidden, pnpsdk.ErrorCodeAccountInactive, "Your account is not active. Please contact the administrator."},
	{service.ErrInvalidOTP, http.StatusUnauthorized, pnpsdk.ErrorCodeInvalidOTP, "Invalid or expired verification code."},
	{service.ErrTooManyAttempts, http.StatusTooManyRequests, pnpsdk.ErrorCodeTooManyAttempts, "Too many attempts. Please log in again."},
	{service.ErrNoPendingAuth, http.StatusConflict, pnpsdk.ErrorCodeNoPendingAuth, "There is no login waiting for a verification code."},
	{service.ErrDispatchFailed, http.StatusBadGateway, pnpsdk.ErrorCodeDispatchFailed, "Failed to send verification code. Please try again."},
	{service.ErrPasswordMismatch, http.StatusBadRequest, pnpsdk.ErrorCodePasswordMismatch, "Passwords do not match."},
	{service.ErrAlreadyExists, http.StatusConflict, pnpsdk.ErrorCodeAlreadyExists, "Username or email already exists."},
	{service.ErrNotFound, http.StatusNotFound, pnpsdk.ErrorCodeNotFound, "Not found."},
	{service.ErrLeaveNotPending, http.StatusConflict, pnpsdk.ErrorCodeLeaveNotPending, "Only pending leave applications can be changed."},
}

// writeServiceError turns a service error into a response. Anything that is
// not a known sentinel is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			httpx.WriteError(w, m.status, m.code, m.description)
			return
		}
	}

	if errors.Is(err, service.ErrInvalidRequest) {
		httpx.WriteError(w, http.StatusBadRequest, pnpsdk.ErrorCodeInvalidRequest, err.Error())
		return
	}

	slogx.FromContext(r.Context()).Error("request failed", "error", err)
	httpx.WriteError(w, http.StatusInternalServerError, pnpsdk.ErrorCodeServerError, "Something went wrong. Please try again.")
}

// decode reads and validates a JSON body, writing a 400 when either fails.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(w, r, dst); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, pnpsdk.ErrorCodeInvalidRequest, err.Error())
		return false
	}
	if err := validatex.Struct(dst); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, pnpsdk.ErrorCodeInvalidRequest, err.Error())
		return false
	}
	return true
}
