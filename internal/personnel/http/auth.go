package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/service"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/session"
	"github.com/aussiebroadwan/pnpstation/pkg/httpx"
	"github.com/aussiebroadwan/pnpstation/pkg/pnpsdk"
	"github.com/aussiebroadwan/pnpstation/pkg/slogx"
)

// AuthHandler serves the login flow. Every handler reads the session that
// SessionMiddleware loaded, asks the LoginService for the next state and
// saves it.
type AuthHandler struct {
	Login        *service.LoginService
	Registration *service.RegistrationService
	Sessions     *session.Manager
}

func sessionResponse(s domain.AuthState) pnpsdk.SessionResponse {
	switch s.Phase {
	case domain.PhaseAuthenticated:
		return pnpsdk.SessionResponse{State: pnpsdk.StateAuthenticated, UserID: s.UserID, Username: s.Username, Role: string(s.Role)}
	case domain.PhasePrimaryVerified:
		return pnpsdk.SessionResponse{State: pnpsdk.StateOTPRequired}
	default:
		return pnpsdk.SessionResponse{State: pnpsdk.StateAnonymous}
	}
}

// commit stores next on the session. The id is rotated whenever the user
// behind the session or its privilege changes.
func (h *AuthHandler) commit(ctx context.Context, w http.ResponseWriter, s *session.Session, next domain.AuthState) error {
	if next.Phase == domain.PhaseAnonymous {
		if s.ID == "" {
			return nil
		}
		return h.Sessions.Destroy(ctx, w, s)
	}

	rotate := s.State.Phase != next.Phase || s.State.UserID != next.UserID
	s.State = next
	return h.Sessions.Save(ctx, w, s, rotate)
}

// HandleLogin handles POST /v1/auth/login
//
//	@Summary		Log in
//	@Description	Checks username and password. Users with 2FA get an emailed code and state otp_required; others are authenticated at once.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		pnpsdk.LoginRequest		true	"Credentials"
//	@Success		200		{object}	pnpsdk.SessionResponse	"authenticated or otp_required"
//	@Failure		400		{object}	pnpsdk.ErrorResponse	"invalid_request"
//	@Failure		401		{object}	pnpsdk.ErrorResponse	"invalid_credentials"
//	@Failure		403		{object}	pnpsdk.ErrorResponse	"account_inactive"
//	@Failure		429		{object}	pnpsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		502		{object}	pnpsdk.ErrorResponse	"dispatch_failed"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req pnpsdk.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	s := sessionFrom(ctx)

	// A rejected attempt leaves the session as it was, so a mistyped
	// re-login does not sign the caller out.
	next, err := h.Login.Login(ctx, req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.commit(ctx, w, s, next); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sessionResponse(next))
}

// HandleVerify handles POST /v1/auth/otp/verify
//
//	@Summary		Verify login code
//	@Description	Redeems the emailed code for the pending login. Too many wrong codes drop the session back to anonymous.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		pnpsdk.VerifyOTPRequest	true	"Code"
//	@Success		200		{object}	pnpsdk.SessionResponse	"authenticated"
//	@Failure		401		{object}	pnpsdk.ErrorResponse	"invalid_otp"
//	@Failure		409		{object}	pnpsdk.ErrorResponse	"no_pending_auth"
//	@Failure		429		{object}	pnpsdk.ErrorResponse	"too_many_attempts"
//	@Router			/v1/auth/otp/verify [post].
func (h *AuthHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req pnpsdk.VerifyOTPRequest
	if !decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	s := sessionFrom(ctx)

	next, err := h.Login.VerifyOTP(ctx, s.State, req.Code)
	if next != s.State {
		if cerr := h.commit(ctx, w, s, next); cerr != nil {
			writeServiceError(w, r, cerr)
			return
		}
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(ctx).Info("session authenticated", "user_id", next.UserID, "role", next.Role)
	httpx.WriteJSON(w, http.StatusOK, sessionResponse(next))
}

// HandleResend handles POST /v1/auth/otp/resend
//
//	@Summary		Resend login code
//	@Description	Issues and emails a new code for the pending login. The previous code stops working.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	pnpsdk.SessionResponse	"otp_required"
//	@Failure		403	{object}	pnpsdk.ErrorResponse	"account_inactive"
//	@Failure		409	{object}	pnpsdk.ErrorResponse	"no_pending_auth"
//	@Failure		429	{object}	pnpsdk.ErrorResponse	"too_many_attempts"
//	@Failure		502	{object}	pnpsdk.ErrorResponse	"dispatch_failed"
//	@Router			/v1/auth/otp/resend [post].
func (h *AuthHandler) HandleResend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s := sessionFrom(ctx)

	next, err := h.Login.ResendOTP(ctx, s.State)
	if next != s.State {
		if cerr := h.commit(ctx, w, s, next); cerr != nil {
			writeServiceError(w, r, cerr)
			return
		}
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sessionResponse(next))
}

// HandleLogout handles POST /v1/auth/logout
//
//	@Summary	Log out
//	@Tags		Auth
//	@Success	204	"Session destroyed"
//	@Router		/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s := sessionFrom(ctx)

	h.Login.Logout(ctx, s.State)
	if err := h.Sessions.Destroy(ctx, w, s); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleSession handles GET /v1/auth/session
//
//	@Summary	Current session
//	@Tags		Auth
//	@Produce	json
//	@Success	200	{object}	pnpsdk.SessionResponse	"anonymous, otp_required or authenticated"
//	@Router		/v1/auth/session [get].
func (h *AuthHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, sessionResponse(sessionFrom(r.Context()).State))
}

// HandleRegister handles POST /v1/auth/register
//
//	@Summary		Register as an applicant
//	@Description	Creates an active applicant account with 2FA on and notifies every admin.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		pnpsdk.RegisterRequest	true	"Sign up form"
//	@Success		201		{object}	pnpsdk.UserResponse		"Created account"
//	@Failure		400		{object}	pnpsdk.ErrorResponse	"invalid_request, password_mismatch"
//	@Failure		409		{object}	pnpsdk.ErrorResponse	"already_exists"
//	@Router			/v1/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req pnpsdk.RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	u, err := h.Registration.Register(r.Context(), service.Registration{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, userResponse(u))
}

func userResponse(u domain.User) pnpsdk.UserResponse {
	return pnpsdk.UserResponse{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		Role:             string(u.Role),
		Status:           string(u.Status),
		TwoFactorEnabled: u.TwoFactorEnabled,
		CreatedAt:        u.CreatedAt.Format(time.RFC3339),
	}
}
