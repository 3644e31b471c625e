package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/notify"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/service"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/session"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/store/drivers/sqlite"
	"github.com/aussiebroadwan/pnpstation/pkg/cryptox"
	"github.com/aussiebroadwan/pnpstation/pkg/httpx"
	"github.com/aussiebroadwan/pnpstation/pkg/jwtx"
	"github.com/aussiebroadwan/pnpstation/pkg/pnpsdk"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	cryptox.SetPepper("test-pepper")
	os.Exit(m.Run())
}

// mailbox keeps the last code sent to each address.
type mailbox struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *mailbox) SendOTP(_ context.Context, to, code, _ string) notify.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[to] = code
	return notify.Result{Channel: "mailbox"}
}

func (m *mailbox) code(t *testing.T, to string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[to]
	require.True(t, ok, "no code sent to %s", to)
	return c
}

type testServer struct {
	*httptest.Server
	mail  *mailbox
	users *service.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewHS256([]byte("0123456789abcdef0123456789abcdef"), "pnpstation-test")
	require.NoError(t, err)
	sessions := session.NewManager(session.NewMemoryStore(), signer, session.Options{TTL: time.Hour})

	mail := &mailbox{codes: map[string]string{}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := NewRouter(sessions, nil, "test", st, logger)
	r.LoginService = &service.LoginService{
		Credentials: &service.CredentialService{Store: st},
		OTP:         &service.OTPService{Store: st},
		Sender:      mail,
	}
	r.RegistrationService = &service.RegistrationService{Store: st}
	r.UserService = &service.UserService{Store: st}
	r.ProfileService = &service.ProfileService{Store: st}
	r.LeaveService = &service.LeaveService{Store: st}
	r.DeploymentService = &service.DeploymentService{Store: st}
	r.NotificationService = &service.NotificationService{Store: st}
	r.ApplyRoutes()

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, mail: mail, users: r.UserService}
}

func (s *testServer) user(t *testing.T, name string, role domain.Role, status domain.Status, twoFactor bool) domain.User {
	t.Helper()
	u, err := s.users.Create(context.Background(), service.NewUser{
		Username:         name,
		Email:            name + "@pnp.test",
		Password:         name + "-password",
		Role:             role,
		Status:           status,
		TwoFactorEnabled: twoFactor,
	})
	require.NoError(t, err)
	return u
}

func (s *testServer) client(t *testing.T) *pnpsdk.Client {
	t.Helper()
	c, err := pnpsdk.NewClient(s.URL)
	require.NoError(t, err)
	return c
}

// loggedIn returns a client holding an authenticated session for a user
// without 2FA.
func (s *testServer) loggedIn(t *testing.T, name string, role domain.Role) (*pnpsdk.Client, domain.User) {
	t.Helper()
	u := s.user(t, name, role, domain.StatusActive, false)
	c := s.client(t)
	resp, err := c.Login(context.Background(), name, name+"-password")
	require.NoError(t, err)
	require.Equal(t, pnpsdk.StateAuthenticated, resp.State)
	return c, u
}

func requireCode(t *testing.T, err error, status int, code string) {
	t.Helper()
	var apiErr *pnpsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, code, apiErr.Code)
}

func TestLoginFlow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestServer(t)
	s.user(t, "officer", domain.RoleEmployee, domain.StatusActive, true)

	c := s.client(t)

	resp, err := c.Session(ctx)
	require.NoError(t, err)
	require.Equal(t, pnpsdk.StateAnonymous, resp.State)

	resp, err = c.Login(ctx, "officer", "officer-password")
	require.NoError(t, err)
	require.Equal(t, pnpsdk.StateOTPRequired, resp.State)
	require.Zero(t, resp.UserID)

	t.Run("pending session cannot reach role pages", func(t *testing.T) {
		err := c.Do(ctx, http.MethodGet, "/v1/employee/profile", nil, nil, http.StatusOK)
		requireCode(t, err, http.StatusUnauthorized, pnpsdk.ErrorCodeLoginRequired)
	})

	t.Run("wrong code", func(t *testing.T) {
		code := s.mail.code(t, "officer@pnp.test")
		wrong := "000000"
		if code == wrong {
			wrong = "111111"
		}
		_, err := c.VerifyOTP(ctx, wrong)
		requireCode(t, err, http.StatusUnauthorized, pnpsdk.ErrorCodeInvalidOTP)

		resp, err := c.Session(ctx)
		require.NoError(t, err)
		require.Equal(t, pnpsdk.StateOTPRequired, resp.State)
	})

	t.Run("right code authenticates", func(t *testing.T) {
		resp, err := c.VerifyOTP(ctx, s.mail.code(t, "officer@pnp.test"))
		require.NoError(t, err)
		require.Equal(t, pnpsdk.StateAuthenticated, resp.State)
		require.Equal(t, "officer", resp.Username)
		require.Equal(t, "employee", resp.Role)

		var p domain.EmployeeProfile
		require.NoError(t, c.Do(ctx, http.MethodGet, "/v1/employee/profile", nil, &p, http.StatusOK))
		require.Equal(t, resp.UserID, p.UserID)
	})

	t.Run("other roles are denied", func(t *testing.T) {
		err := c.Do(ctx, http.MethodGet, "/v1/admin/users", nil, nil, http.StatusOK)
		requireCode(t, err, http.StatusForbidden, pnpsdk.ErrorCodeAccessDenied)

		err = c.Do(ctx, http.MethodGet, "/v1/applicant/profile", nil, nil, http.StatusOK)
		requireCode(t, err, http.StatusForbidden, pnpsdk.ErrorCodeAccessDenied)
	})

	t.Run("verify after login has nothing pending", func(t *testing.T) {
		_, err := c.VerifyOTP(ctx, "123456")
		requireCode(t, err, http.StatusConflict, pnpsdk.ErrorCodeNoPendingAuth)
	})

	t.Run("logout", func(t *testing.T) {
		require.NoError(t, c.Logout(ctx))

		resp, err := c.Session(ctx)
		require.NoError(t, err)
		require.Equal(t, pnpsdk.StateAnonymous, resp.State)

		err = c.Do(ctx, http.MethodGet, "/v1/employee/profile", nil, nil, http.StatusOK)
		requireCode(t, err, http.StatusUnauthorized, pnpsdk.ErrorCodeLoginRequired)
	})
}

func TestLoginRejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestServer(t)
	s.user(t, "suspended", domain.RoleEmployee, domain.StatusSuspended, true)
	s.user(t, "plain", domain.RoleApplicant, domain.StatusActive, false)

	c := s.client(t)

	_, err := c.Login(ctx, "plain", "not-the-password")
	requireCode(t, err, http.StatusUnauthorized, pnpsdk.ErrorCodeInvalidCredentials)

	_, err = c.Login(ctx, "nobody", "whatever-password")
	requireCode(t, err, http.StatusUnauthorized, pnpsdk.ErrorCodeInvalidCredentials)

	_, err = c.Login(ctx, "suspended", "suspended-password")
	requireCode(t, err, http.StatusForbidden, pnpsdk.ErrorCodeAccountInactive)

	err = c.Do(ctx, http.MethodPost, "/v1/auth/login", map[string]string{"username": "plain"}, nil, http.StatusOK)
	requireCode(t, err, http.StatusBadRequest, pnpsdk.ErrorCodeInvalidRequest)

	_, err = c.ResendOTP(ctx)
	requireCode(t, err, http.StatusConflict, pnpsdk.ErrorCodeNoPendingAuth)

	t.Run("without 2FA the login is immediate", func(t *testing.T) {
		resp, err := c.Login(ctx, "plain", "plain-password")
		require.NoError(t, err)
		require.Equal(t, pnpsdk.StateAuthenticated, resp.State)
		require.Equal(t, "applicant", resp.Role)
	})

	t.Run("a failed login keeps the current session", func(t *testing.T) {
		_, err := c.Login(ctx, "plain", "mistyped-password")
		requireCode(t, err, http.StatusUnauthorized, pnpsdk.ErrorCodeInvalidCredentials)

		resp, err := c.Session(ctx)
		require.NoError(t, err)
		require.Equal(t, pnpsdk.StateAuthenticated, resp.State)
		require.Equal(t, "plain", resp.Username)

		var p domain.ApplicantProfile
		require.NoError(t, c.Do(ctx, http.MethodGet, "/v1/applicant/profile", nil, &p, http.StatusOK))
	})
}

func TestLoginThrottledPerUsername(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.user(t, "bob", domain.RoleEmployee, domain.StatusActive, true)

	attempts := httpx.StrictLimit.Burst + 10
	statuses := map[int]int{}
	for i := range attempts {
		body := strings.NewReader(fmt.Sprintf(`{"username":"bob","password":"guess-%d"}`, i))
		req, err := http.NewRequest(http.MethodPost, s.URL+"/v1/auth/login", body)
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		// A fresh forwarded address on every try must not reset the bucket.
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		statuses[resp.StatusCode]++
	}

	require.Equal(t, httpx.StrictLimit.Burst, statuses[http.StatusUnauthorized])
	require.Equal(t, attempts-httpx.StrictLimit.Burst, statuses[http.StatusTooManyRequests])
}

func TestRegister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestServer(t)
	admin, _ := s.loggedIn(t, "chief", domain.RoleAdmin)

	c := s.client(t)
	req := pnpsdk.RegisterRequest{
		Username:        "recruit",
		Email:           "recruit@pnp.test",
		Password:        "recruit-password",
		ConfirmPassword: "recruit-password",
	}

	u, err := c.Register(ctx, req)
	require.NoError(t, err)
	require.Equal(t, "applicant", u.Role)
	require.Equal(t, "active", u.Status)
	require.True(t, u.TwoFactorEnabled)

	_, err = c.Register(ctx, req)
	requireCode(t, err, http.StatusConflict, pnpsdk.ErrorCodeAlreadyExists)

	mismatch := req
	mismatch.Username, mismatch.Email = "recruit2", "recruit2@pnp.test"
	mismatch.ConfirmPassword = "something-else"
	_, err = c.Register(ctx, mismatch)
	requireCode(t, err, http.StatusBadRequest, pnpsdk.ErrorCodePasswordMismatch)

	bad := req
	bad.Username, bad.Email = "recruit3", "not-an-email"
	_, err = c.Register(ctx, bad)
	requireCode(t, err, http.StatusBadRequest, pnpsdk.ErrorCodeInvalidRequest)

	inbox, err := admin.Notifications(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 1, inbox.Total)
	require.Equal(t, 1, inbox.Unread)
}

func TestLeaveEndpoints(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestServer(t)
	admin, _ := s.loggedIn(t, "chief", domain.RoleAdmin)
	emp, _ := s.loggedIn(t, "officer", domain.RoleEmployee)

	apply := pnpsdk.LeaveRequest{
		LeaveType: "Vacation Leave",
		StartDate: "2025-04-01",
		EndDate:   "2025-04-03",
		DaysCount: 3,
		Reason:    "Family trip",
	}

	var l domain.LeaveApplication
	require.NoError(t, emp.Do(ctx, http.MethodPost, "/v1/employee/leaves", apply, &l, http.StatusCreated))
	require.Equal(t, domain.LeavePending, l.Status)

	t.Run("invalid leave type", func(t *testing.T) {
		bad := apply
		bad.LeaveType = "Holiday"
		err := emp.Do(ctx, http.MethodPost, "/v1/employee/leaves", bad, nil, http.StatusCreated)
		requireCode(t, err, http.StatusBadRequest, pnpsdk.ErrorCodeInvalidRequest)
	})

	t.Run("end before start", func(t *testing.T) {
		bad := apply
		bad.EndDate = "2025-03-30"
		err := emp.Do(ctx, http.MethodPost, "/v1/employee/leaves", bad, nil, http.StatusCreated)
		requireCode(t, err, http.StatusBadRequest, pnpsdk.ErrorCodeInvalidRequest)
	})

	t.Run("unknown id", func(t *testing.T) {
		err := emp.Do(ctx, http.MethodGet, "/v1/employee/leaves/9999", nil, nil, http.StatusOK)
		requireCode(t, err, http.StatusNotFound, pnpsdk.ErrorCodeNotFound)

		err = emp.Do(ctx, http.MethodGet, "/v1/employee/leaves/abc", nil, nil, http.StatusOK)
		requireCode(t, err, http.StatusNotFound, pnpsdk.ErrorCodeNotFound)
	})

	var all pnpsdk.Page[domain.LeaveApplication]
	require.NoError(t, admin.Do(ctx, http.MethodGet, "/v1/admin/leaves?status=Pending", nil, &all, http.StatusOK))
	require.Equal(t, 1, all.Total)

	review := pnpsdk.LeaveReviewRequest{Status: "Approved", Remarks: "Enjoy"}
	var reviewed domain.LeaveApplication
	require.NoError(t, admin.Do(ctx, http.MethodPost, fmt.Sprintf("/v1/admin/leaves/%d/review", l.ID), review, &reviewed, http.StatusOK))
	require.Equal(t, domain.LeaveApproved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedAt)

	t.Run("reviewed leave is frozen", func(t *testing.T) {
		path := fmt.Sprintf("/v1/employee/leaves/%d", l.ID)
		err := emp.Do(ctx, http.MethodPut, path, apply, nil, http.StatusOK)
		requireCode(t, err, http.StatusConflict, pnpsdk.ErrorCodeLeaveNotPending)

		err = emp.Do(ctx, http.MethodDelete, path, nil, nil, http.StatusNoContent)
		requireCode(t, err, http.StatusConflict, pnpsdk.ErrorCodeLeaveNotPending)
	})

	t.Run("employee is notified", func(t *testing.T) {
		inbox, err := emp.Notifications(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, 1, inbox.Unread)
		require.Equal(t, "Leave Application Approved", inbox.Items[0].Title)

		require.NoError(t, emp.Do(ctx, http.MethodPost, "/v1/notifications/read-all", nil, nil, http.StatusNoContent))
		inbox, err = emp.Notifications(ctx, 1)
		require.NoError(t, err)
		require.Zero(t, inbox.Unread)
	})

	t.Run("employees cannot review", func(t *testing.T) {
		err := emp.Do(ctx, http.MethodPost, fmt.Sprintf("/v1/admin/leaves/%d/review", l.ID), review, nil, http.StatusOK)
		requireCode(t, err, http.StatusForbidden, pnpsdk.ErrorCodeAccessDenied)
	})
}

func TestAdminUsers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestServer(t)
	admin, me := s.loggedIn(t, "chief", domain.RoleAdmin)

	var created pnpsdk.UserResponse
	require.NoError(t, admin.Do(ctx, http.MethodPost, "/v1/admin/users", pnpsdk.CreateUserRequest{
		Username: "deputy",
		Email:    "deputy@pnp.test",
		Password: "deputy-password",
		Role:     "employee",
	}, &created, http.StatusCreated))
	require.True(t, created.TwoFactorEnabled)
	require.Equal(t, "active", created.Status)

	suspended := "suspended"
	var updated pnpsdk.UserResponse
	require.NoError(t, admin.Do(ctx, http.MethodPatch, fmt.Sprintf("/v1/admin/users/%d", created.ID),
		pnpsdk.UpdateUserRequest{Status: &suspended}, &updated, http.StatusOK))
	require.Equal(t, "suspended", updated.Status)

	var page pnpsdk.Page[pnpsdk.UserResponse]
	require.NoError(t, admin.Do(ctx, http.MethodGet, "/v1/admin/users?role=employee", nil, &page, http.StatusOK))
	require.Equal(t, 1, page.Total)
	require.Equal(t, "deputy", page.Items[0].Username)

	t.Run("deployment for the new employee", func(t *testing.T) {
		var d domain.Deployment
		require.NoError(t, admin.Do(ctx, http.MethodPost, "/v1/admin/deployments", pnpsdk.DeploymentRequest{
			EmployeeID: created.ID,
			Station:    "San Juan Police Station",
			StartDate:  "2025-03-01",
		}, &d, http.StatusCreated))
		require.Equal(t, domain.DeploymentActive, d.Status)

		err := admin.Do(ctx, http.MethodPost, "/v1/admin/deployments", pnpsdk.DeploymentRequest{
			EmployeeID: me.ID,
			Station:    "San Juan Police Station",
			StartDate:  "2025-03-01",
		}, nil, http.StatusCreated)
		requireCode(t, err, http.StatusBadRequest, pnpsdk.ErrorCodeInvalidRequest)
	})

	require.NoError(t, admin.Do(ctx, http.MethodDelete, fmt.Sprintf("/v1/admin/users/%d", created.ID), nil, nil, http.StatusNoContent))
	err := admin.Do(ctx, http.MethodDelete, fmt.Sprintf("/v1/admin/users/%d", created.ID), nil, nil, http.StatusNoContent)
	requireCode(t, err, http.StatusNotFound, pnpsdk.ErrorCodeNotFound)
}

func TestSystemEndpoints(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestServer(t)
	c := s.client(t)

	live, err := c.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	ready, err := c.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, "ok", ready.Checks.Database)

	get := func(path string) (int, string) {
		resp, err := http.Get(s.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(b)
	}

	code, body := get("/metrics")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "go_goroutines")

	code, body = get("/swagger/doc.json")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "PNP San Juan Personnel API")
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return fmt.Errorf("connection refused") }

func TestReadyzDegraded(t *testing.T) {
	t.Parallel()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	rec := httptest.NewRecorder()
	ReadyzHandler(time.Now(), "test", st, failingPinger{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp pnpsdk.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "degraded", resp.Status)
	require.Equal(t, "ok", resp.Checks.Database)
	require.True(t, strings.HasPrefix(resp.Checks.Sessions, "error:"))
}

func TestWriteServiceError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{service.ErrInvalidCredentials, http.StatusUnauthorized, pnpsdk.ErrorCodeInvalidCredentials},
		{service.ErrAccountInactive, http.StatusForbidden, pnpsdk.ErrorCodeAccountInactive},
		{service.ErrInvalidOTP, http.StatusUnauthorized, pnpsdk.ErrorCodeInvalidOTP},
		{service.ErrTooManyAttempts, http.StatusTooManyRequests, pnpsdk.ErrorCodeTooManyAttempts},
		{service.ErrNoPendingAuth, http.StatusConflict, pnpsdk.ErrorCodeNoPendingAuth},
		{service.ErrDispatchFailed, http.StatusBadGateway, pnpsdk.ErrorCodeDispatchFailed},
		{fmt.Errorf("leave 4: %w", service.ErrLeaveNotPending), http.StatusConflict, pnpsdk.ErrorCodeLeaveNotPending},
		{fmt.Errorf("%w: bad date", service.ErrInvalidRequest), http.StatusBadRequest, pnpsdk.ErrorCodeInvalidRequest},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError, pnpsdk.ErrorCodeServerError},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)

			require.Equal(t, tc.status, rec.Code)
			var body pnpsdk.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, tc.code, body.Error)
			require.NotContains(t, body.ErrorDescription, "disk on fire")
		})
	}
}
