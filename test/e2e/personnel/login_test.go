package personnel_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
	"github.com/aussiebroadwan/pnpstation/pkg/pnpsdk"
	"github.com/stretchr/testify/require"
)

func TestLoginWithEmailedCode(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	mail := setupMailpit(t)
	baseURL := startService(t, mail)
	ctx := context.Background()

	for role, u := range seeded {
		t.Run(string(role), func(t *testing.T) {
			c, err := pnpsdk.NewClient(baseURL)
			require.NoError(t, err)

			resp, err := c.Login(ctx, u.Username, u.Password)
			require.NoError(t, err)
			require.Equal(t, pnpsdk.StateOTPRequired, resp.State)

			code := mail.latestCode(t, u.Email)

			resp, err = c.VerifyOTP(ctx, code)
			require.NoError(t, err)
			require.Equal(t, pnpsdk.StateAuthenticated, resp.State)
			require.Equal(t, string(role), resp.Role)

			t.Run("code is single use", func(t *testing.T) {
				require.NoError(t, c.Logout(ctx))

				_, err := c.Login(ctx, u.Username, u.Password)
				require.NoError(t, err)

				_, err = c.VerifyOTP(ctx, code)
				require.True(t, pnpsdk.IsCode(err, pnpsdk.ErrorCodeInvalidOTP), "got %v", err)
			})
		})
	}
}

func TestResendInvalidatesEarlierCode(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	mail := setupMailpit(t)
	baseURL := startService(t, mail)
	ctx := context.Background()
	u := seeded[domain.RoleEmployee]

	c, err := pnpsdk.NewClient(baseURL)
	require.NoError(t, err)

	_, err = c.Login(ctx, u.Username, u.Password)
	require.NoError(t, err)
	first := mail.latestCode(t, u.Email)

	_, err = c.ResendOTP(ctx)
	require.NoError(t, err)

	second := mail.codeOtherThan(t, u.Email, first)

	_, err = c.VerifyOTP(ctx, first)
	var apiErr *pnpsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	resp, err := c.VerifyOTP(ctx, second)
	require.NoError(t, err)
	require.Equal(t, pnpsdk.StateAuthenticated, resp.State)

	var p domain.EmployeeProfile
	require.NoError(t, c.Do(ctx, http.MethodGet, "/v1/employee/profile", nil, &p, http.StatusOK))
	require.Equal(t, "PO1", p.Rank)
}
