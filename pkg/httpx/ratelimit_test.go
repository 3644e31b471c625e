package httpx_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/pnpstation/pkg/httpx"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func requestFrom(ip string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = ip + ":12345"
	return req
}

func TestIPKeyExtractor(t *testing.T) {
	t.Run("extracts from RemoteAddr", func(t *testing.T) {
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(requestFrom("192.168.1.1")))
	})

	t.Run("ignores forwarding headers from untrusted peers", func(t *testing.T) {
		req := requestFrom("192.168.1.1")
		req.Header.Set("X-Forwarded-For", "203.0.113.1")
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(req))
	})

	t.Run("trusted proxy", func(t *testing.T) {
		require.NoError(t, httpx.SetTrustedProxies([]string{"10.0.0.0/8", "192.168.1.1"}))
		t.Cleanup(func() { require.NoError(t, httpx.SetTrustedProxies(nil)) })

		t.Run("nearest untrusted hop wins", func(t *testing.T) {
			req := requestFrom("192.168.1.1")
			req.Header.Set("X-Forwarded-For", "198.51.100.7, 203.0.113.1, 10.1.2.3")
			require.Equal(t, "203.0.113.1", httpx.IPKeyExtractor(req))
		})

		t.Run("uses X-Real-IP if X-Forwarded-For absent", func(t *testing.T) {
			req := requestFrom("10.0.0.5")
			req.Header.Set("X-Real-IP", "203.0.113.2")
			require.Equal(t, "203.0.113.2", httpx.IPKeyExtractor(req))
		})

		t.Run("peer outside the list is still used as is", func(t *testing.T) {
			req := requestFrom("172.16.0.9")
			req.Header.Set("X-Forwarded-For", "203.0.113.1")
			require.Equal(t, "172.16.0.9", httpx.IPKeyExtractor(req))
		})
	})

	t.Run("rejects malformed proxies", func(t *testing.T) {
		require.Error(t, httpx.SetTrustedProxies([]string{"not-an-ip"}))
		t.Cleanup(func() { require.NoError(t, httpx.SetTrustedProxies(nil)) })
	})
}

func TestJSONFieldKeyExtractor(t *testing.T) {
	t.Run("reads field and restores body", func(t *testing.T) {
		body := `{"username":" Alice ","password":"x"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

		require.Equal(t, "alice", httpx.JSONFieldKeyExtractor("username")(req))

		rest, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.Equal(t, body, string(rest))
	})

	t.Run("empty on non JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("username=alice"))
		require.Equal(t, "", httpx.JSONFieldKeyExtractor("username")(req))
	})

	t.Run("empty on non string field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":42}`))
		require.Equal(t, "", httpx.JSONFieldKeyExtractor("username")(req))
	})
}

func TestCompositeKeyExtractor(t *testing.T) {
	extractor := httpx.CompositeKeyExtractor(":",
		httpx.IPKeyExtractor,
		httpx.JSONFieldKeyExtractor("username"),
	)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"alice"}`))
	req.RemoteAddr = "192.168.1.1:12345"
	require.Equal(t, "192.168.1.1:alice", extractor(req))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.RemoteAddr = "192.168.1.1:12345"
	require.Equal(t, "192.168.1.1", extractor(req))
}

func TestUserIDKeyExtractor(t *testing.T) {
	req := requestFrom("10.0.0.1")
	require.Equal(t, "", httpx.UserIDKeyExtractor(req))

	req = req.WithContext(httpx.WithIdentity(req.Context(), httpx.Identity{UserID: 42, Role: "employee"}))
	require.Equal(t, "42", httpx.UserIDKeyExtractor(req))
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("blocks requests over limit", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3})(okHandler)

		for i := range 3 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, requestFrom("192.168.1.1"))
			require.Equal(t, http.StatusOK, rec.Code, "request %d should succeed", i+1)
		}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("192.168.1.1"))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))
		require.Contains(t, rec.Body.String(), "rate_limit_exceeded")

		// A different IP has its own bucket
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("192.168.1.2"))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("allows request when key extractor returns empty", func(t *testing.T) {
		h := httpx.RateLimitMiddleware(
			httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1},
			func(*http.Request) string { return "" },
		)(okHandler)

		for range 3 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, requestFrom("192.168.1.1"))
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("per username buckets on login", func(t *testing.T) {
		h := httpx.RateLimitByIPAndJSONField(httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}, "username")(okHandler)

		send := func(user string) int {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"`+user+`"}`))
			req.RemoteAddr = "192.168.1.1:12345"
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			return rec.Code
		}

		require.Equal(t, http.StatusOK, send("alice"))
		require.Equal(t, http.StatusOK, send("alice"))
		require.Equal(t, http.StatusTooManyRequests, send("alice"))
		require.Equal(t, http.StatusOK, send("bob"))
	})

	t.Run("username bucket spans addresses", func(t *testing.T) {
		h := httpx.RateLimitByJSONField(httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}, "username")(okHandler)

		codes := make([]int, 0, 3)
		for _, ip := range []string{"198.51.100.1", "198.51.100.2", "198.51.100.3"} {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"alice"}`))
			req.RemoteAddr = ip + ":12345"
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			codes = append(codes, rec.Code)
		}
		require.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	})
}

func TestParseRateLimitFromEnv(t *testing.T) {
	def := httpx.RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	t.Setenv("RATELIMIT_TESTTIER_REQUESTS", "1000")
	t.Setenv("RATELIMIT_TESTTIER_WINDOW_SEC", "30")
	t.Setenv("RATELIMIT_TESTTIER_BURST", "-4")

	got := httpx.ParseRateLimitFromEnv("TESTTIER", def)
	require.Equal(t, 1000, got.RequestsPerWindow)
	require.Equal(t, 30*time.Second, got.Window)
	require.Equal(t, 5, got.Burst, "non positive values keep the default")

	require.Equal(t, def, httpx.ParseRateLimitFromEnv("UNSET_TIER", def))
}

func TestRateLimitProfiles(t *testing.T) {
	require.Less(t, httpx.StrictLimit.RequestsPerWindow, httpx.ModerateLimit.RequestsPerWindow)
	require.Less(t, httpx.ModerateLimit.RequestsPerWindow, httpx.LenientLimit.RequestsPerWindow)
	require.Less(t, httpx.LenientLimit.RequestsPerWindow, httpx.PublicLimit.RequestsPerWindow)
}
