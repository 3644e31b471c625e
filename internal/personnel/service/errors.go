package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAccountInactive    = errors.New("account_inactive")
	ErrInvalidOTP         = errors.New("invalid_otp")
	ErrTooManyAttempts    = errors.New("too_many_attempts")
	ErrDispatchFailed     = errors.New("dispatch_failed")
	ErrNoPendingAuth      = errors.New("no_pending_auth")

	ErrAlreadyExists    = errors.New("already_exists")
	ErrNotFound         = errors.New("not_found")
	ErrPasswordMismatch = errors.New("password_mismatch")
	ErrLeaveNotPending  = errors.New("leave_not_pending")
	ErrInvalidRequest   = errors.New("invalid_request")
)
