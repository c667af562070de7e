package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"fintrack/internal/core"
)

type fakeUsers map[string]core.User

func (f fakeUsers) UserByUsername(_ context.Context, username string) (core.User, error) {
	u, ok := f[username]
	if !ok {
		return core.User{}, core.ErrNotFound
	}
	return u, nil
}

func (f fakeUsers) ResolveUser(ctx context.Context, username string) (core.User, error) {
	return f.UserByUsername(ctx, username)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "secret1" {
		t.Fatal("hash must not equal the password")
	}
	if !CheckPassword(hash, "secret1") {
		t.Fatal("expected password to match")
	}
	if CheckPassword(hash, "secret2") {
		t.Fatal("expected wrong password to fail")
	}
}

func TestAuthenticate(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	users := fakeUsers{"alice": {ID: 1, Username: "alice", PasswordHash: hash}}

	u, err := Authenticate(context.Background(), users, "alice", "hunter22")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != 1 {
		t.Fatalf("got user %+v", u)
	}

	cases := []struct{ user, pass string }{
		{"alice", "wrong"},
		{"nobody", "hunter22"},
	}
	for _, tc := range cases {
		if _, err := Authenticate(context.Background(), users, tc.user, tc.pass); !errors.Is(err, core.ErrInvalidCredentials) {
			t.Fatalf("%s/%s: expected ErrInvalidCredentials, got %v", tc.user, tc.pass, err)
		}
	}
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 30*time.Minute)
	token, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	sub, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sub != "alice" {
		t.Fatalf("subject = %q", sub)
	}
}

func TestTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 30*time.Minute)

	expired := NewTokenIssuer("test-secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, err := expired.Issue("alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other, err := NewTokenIssuer("other-secret", time.Minute).Issue("alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	for name, token := range map[string]string{
		"expired":      old,
		"wrong secret": other,
		"alg none":     unsigned,
		"garbage":      "not-a-token",
	} {
		if _, err := issuer.Parse(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestMiddleware(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 30*time.Minute)
	users := fakeUsers{"alice": {ID: 7, Username: "alice"}}

	valid, _ := issuer.Issue("alice")
	ghost, _ := issuer.Issue("ghost")

	handler := Middleware(issuer, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		if !ok || u.ID != 7 {
			t.Errorf("user not in context: %+v", u)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + valid, http.StatusNoContent},
		{"lowercase scheme", "bearer " + valid, http.StatusNoContent},
		{"missing", "", http.StatusUnauthorized},
		{"basic scheme", "Basic abc", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"deleted user", "Bearer " + ghost, http.StatusUnauthorized},
		{"tampered", "Bearer " + valid + "x", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/expenses", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != tc.want {
			t.Fatalf("%s: status = %d, want %d", tc.name, rr.Code, tc.want)
		}
		if tc.want == http.StatusUnauthorized {
			if rr.Header().Get("WWW-Authenticate") != "Bearer" {
				t.Fatalf("%s: missing WWW-Authenticate header", tc.name)
			}
			if !strings.Contains(rr.Body.String(), `"detail"`) {
				t.Fatalf("%s: body = %s", tc.name, rr.Body.String())
			}
		}
	}
}
