package shield

import (
	"net/http"
	"net/http/httptest"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/adroste/nowte/dbopen"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// WHAT: Tests that SecurityHeaders sets every configured header.
func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(DefaultHeaders())(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if csp := rec.Header().Get("Content-Security-Policy"); csp == "" {
		t.Error("Content-Security-Policy not set")
	}
}

// WHAT: Tests the rate limiter against the seeded login rule: requests
// under the limit pass, the one over it gets a 429, other endpoints
// are unaffected.
// WHY: Login throttling is the only brake on credential guessing.
func TestRateLimiter(t *testing.T) {
	db := dbopen.OpenMemory(t)
	if err := Init(db); err != nil {
		t.Fatalf("Init: %v", err)
	}
	rl := NewRateLimiter(db)
	h := rl.Middleware(okHandler())

	hit := func(path, ip string) int {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = ip + ":4321"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 10; i++ {
		if code := hit("/api/auth/login", "10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d = %d, want 200", i+1, code)
		}
	}
	if code := hit("/api/auth/login", "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("over-limit request = %d, want 429", code)
	}

	// A different IP has its own bucket.
	if code := hit("/api/auth/login", "10.0.0.2"); code != http.StatusOK {
		t.Errorf("other IP = %d, want 200", code)
	}
	// Unlisted endpoints are never limited.
	for i := 0; i < 50; i++ {
		if code := hit("/api/documents", "10.0.0.1"); code != http.StatusOK {
			t.Fatalf("unlisted endpoint = %d, want 200", code)
		}
	}
}

// WHAT: Tests client IP extraction with and without X-Forwarded-For.
func TestExtractIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.7:1234"
	if got := ExtractIP(r); got != "192.0.2.7" {
		t.Errorf("ExtractIP = %q", got)
	}
	r.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	if got := ExtractIP(r); got != "203.0.113.5" {
		t.Errorf("ExtractIP with XFF = %q", got)
	}
}
