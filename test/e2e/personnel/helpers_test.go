package personnel_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/app"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/service"
	"github.com/aussiebroadwan/pnpstation/pkg/httpx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * End-to-end helpers: a Mailpit container catches the SMTP traffic and the
 * personnel service runs in-process against it.
 */

const mailpitImage = "axllent/mailpit:v1.21"

// TestMain lifts the rate limits; every client here shares one IP.
func TestMain(m *testing.M) {
	relaxed := httpx.RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}
	httpx.StrictLimit = relaxed
	httpx.ModerateLimit = relaxed

	os.Exit(m.Run())
}

type mailpit struct {
	smtpHost string
	smtpPort int
	apiURL   string
}

func setupMailpit(t *testing.T) *mailpit {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        mailpitImage,
			ExposedPorts: []string{"1025/tcp", "8025/tcp"},
			WaitingFor: wait.ForHTTP("/livez").
				WithPort("8025/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate mailpit: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	smtpPort, err := container.MappedPort(ctx, "1025")
	require.NoError(t, err)
	apiPort, err := container.MappedPort(ctx, "8025")
	require.NoError(t, err)

	return &mailpit{
		smtpHost: host,
		smtpPort: smtpPort.Int(),
		apiURL:   fmt.Sprintf("http://%s:%s", host, apiPort.Port()),
	}
}

var codePattern = regexp.MustCompile(`verification code for PNP San Juan is:\s*(\d+)`)

// latestCode waits for a message to to arrive and returns its code.
func (m *mailpit) latestCode(t *testing.T, to string) string {
	t.Helper()
	return m.codeOtherThan(t, to, "")
}

// codeOtherThan waits until the newest message to to carries a code that is
// not previous.
func (m *mailpit) codeOtherThan(t *testing.T, to, previous string) string {
	t.Helper()

	var code string
	require.Eventually(t, func() bool {
		c, err := m.newestCode(to)
		if err != nil || c == "" || c == previous {
			return false
		}
		code = c
		return true
	}, 15*time.Second, 250*time.Millisecond, "no new code reached %s", to)

	return code
}

func (m *mailpit) newestCode(to string) (string, error) {
	var search struct {
		Messages []struct {
			ID string `json:"ID"`
		} `json:"messages"`
	}
	if err := m.getJSON("/api/v1/search?query="+url.QueryEscape("to:"+to), &search); err != nil {
		return "", err
	}
	if len(search.Messages) == 0 {
		return "", nil
	}

	// Newest first.
	var msg struct {
		Text string `json:"Text"`
	}
	if err := m.getJSON("/api/v1/message/"+search.Messages[0].ID, &msg); err != nil {
		return "", err
	}

	match := codePattern.FindStringSubmatch(msg.Text)
	if match == nil {
		return "", fmt.Errorf("no code in message %s", search.Messages[0].ID)
	}
	return match[1], nil
}

func (m *mailpit) getJSON(path string, out any) error {
	resp, err := http.Get(m.apiURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mailpit %s: %s", path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// startService boots the personnel service wired to mail and returns its
// base URL.
func startService(t *testing.T, mail *mailpit) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("ENV", "test")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("DB_FILE", filepath.Join(dir, "personnel.db"))
	t.Setenv("PASSWORD_PEPPER_FILE", filepath.Join(dir, "pepper"))
	t.Setenv("SMTP_HOST", mail.smtpHost)
	t.Setenv("SMTP_PORT", fmt.Sprint(mail.smtpPort))
	t.Setenv("SMTP_SENDER_EMAIL", "noreply@pnpsanjuan.test")

	cfg, err := app.LoadConfig()
	require.NoError(t, err)

	application, err := app.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Shutdown() })

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(srv.Close)

	n, err := app.Seed(context.Background(), cfg, "../../../seed.yaml")
	require.NoError(t, err)
	require.Equal(t, 3, n)

	return srv.URL
}

// Accounts from seed.yaml.
var seeded = map[domain.Role]service.NewUser{
	domain.RoleAdmin:     {Username: "admin", Email: "admin@pnpsanjuan.gov.ph", Password: "admin-change-me"},
	domain.RoleEmployee:  {Username: "employee1", Email: "employee1@pnpsanjuan.gov.ph", Password: "employee-change-me"},
	domain.RoleApplicant: {Username: "applicant1", Email: "applicant1@example.com", Password: "applicant-change-me"},
}
