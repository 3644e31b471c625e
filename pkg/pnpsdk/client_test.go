package pnpsdk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientKeepsSessionCookie(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		http.SetCookie(w, &http.Cookie{Name: "pnp_session", Value: "sid-" + req.Username, Path: "/"})
		_ = json.NewEncoder(w).Encode(SessionResponse{State: StateOTPRequired})
	})
	mux.HandleFunc("GET /v1/auth/session", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("pnp_session")
		if err != nil {
			_ = json.NewEncoder(w).Encode(SessionResponse{State: StateAnonymous})
			return
		}
		_ = json.NewEncoder(w).Encode(SessionResponse{State: StateOTPRequired, Username: c.Value})
	})
	mux.HandleFunc("POST /v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	resp, err := c.Login(ctx, "officer", "secret")
	require.NoError(t, err)
	require.Equal(t, StateOTPRequired, resp.State)

	resp, err = c.Session(ctx)
	require.NoError(t, err)
	require.Equal(t, "sid-officer", resp.Username)

	require.NoError(t, c.Logout(ctx))
}

func TestClientErrors(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/auth/otp/verify", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(ErrorResponse{Error: ErrorCodeInvalidOTP, ErrorDescription: "Invalid or expired verification code."})
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broke", http.StatusBadGateway)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("error body is decoded", func(t *testing.T) {
		_, err := c.VerifyOTP(ctx, "123456")
		require.Error(t, err)
		require.True(t, IsCode(err, ErrorCodeInvalidOTP))

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		require.Contains(t, apiErr.Error(), "invalid_otp")
	})

	t.Run("non JSON error falls back to status text", func(t *testing.T) {
		_, err := c.GetReadiness(ctx)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
		require.Equal(t, ErrorCodeServerError, apiErr.Code)
		require.Equal(t, "Bad Gateway", apiErr.Description)
	})

	t.Run("unexpected success status is an error", func(t *testing.T) {
		err := c.Do(ctx, http.MethodGet, "/missing", nil, nil, http.StatusOK)
		require.True(t, IsCode(err, ErrorCodeServerError))
	})
}
