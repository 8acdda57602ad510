package auth

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

var testSecret = bytes.Repeat([]byte("s"), 32)

func TestTokenRoundTrip(t *testing.T) {
	// WHAT: A generated token validates back to the same claims.
	// WHY: The websocket join path trusts these claims for user identity.
	claims := &Claims{UserID: "usr_1", Username: "alice", Email: "a@example.com"}
	token, err := GenerateToken(testSecret, claims, time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	got, err := ValidateToken(testSecret, token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got.UserID != "usr_1" || got.Username != "alice" {
		t.Errorf("claims: %+v", got)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	claims := &Claims{UserID: "usr_1"}
	token, _ := GenerateToken(testSecret, claims, time.Hour)

	if _, err := ValidateToken(bytes.Repeat([]byte("x"), 32), token); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestTokenExpired(t *testing.T) {
	claims := &Claims{UserID: "usr_1"}
	token, _ := GenerateToken(testSecret, claims, -time.Minute)

	if _, err := ValidateToken(testSecret, token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestGenerateRejectsShortSecret(t *testing.T) {
	_, err := GenerateToken([]byte("short"), &Claims{UserID: "u"}, time.Hour)
	if err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestMiddlewareCookie(t *testing.T) {
	// WHAT: A valid token cookie puts claims and user id into context.
	// WHY: Handlers downstream rely on kit.GetUserID, not on re-parsing.
	claims := &Claims{UserID: "usr_1", Username: "alice"}
	token, _ := GenerateToken(testSecret, claims, time.Hour)

	var gotUserID string
	h := Middleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c := GetClaims(r.Context()); c != nil {
			gotUserID = c.UserID
		}
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	h.ServeHTTP(httptest.NewRecorder(), req)

	if gotUserID != "usr_1" {
		t.Errorf("user id from claims: got %q, want usr_1", gotUserID)
	}
}

func TestMiddlewareBearerHeader(t *testing.T) {
	claims := &Claims{UserID: "usr_2"}
	token, _ := GenerateToken(testSecret, claims, time.Hour)

	var got *Claims
	h := Middleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetClaims(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.UserID != "usr_2" {
		t.Errorf("claims: %+v", got)
	}
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	h := Middleware(testSecret)(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}

func TestPasswordHashVerify(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyPassword(hash, "correct horse battery") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "wrong password!") {
		t.Error("wrong password accepted")
	}
}

func TestPasswordTooShort(t *testing.T) {
	if _, err := HashPassword("short"); err == nil {
		t.Fatal("expected error for short password")
	}
}
