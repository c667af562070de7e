package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"fintrack/internal/core"
)

type contextKey string

const userKey = contextKey("user")

// UserResolver loads the account named by a token subject.
type UserResolver interface {
	ResolveUser(ctx context.Context, username string) (core.User, error)
}

// Middleware rejects requests without a valid bearer token and stores the
// resolved user in the request context. A token whose user no longer exists
// is rejected as well.
func Middleware(issuer *TokenIssuer, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w, "Not authenticated")
				return
			}

			username, err := issuer.Parse(token)
			if err != nil {
				unauthorized(w, "Could not validate credentials")
				return
			}

			u, err := users.ResolveUser(r.Context(), username)
			if err != nil {
				unauthorized(w, "Could not validate credentials")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u core.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the authenticated user placed by Middleware.
func UserFromContext(ctx context.Context) (core.User, bool) {
	u, ok := ctx.Value(userKey).(core.User)
	return u, ok
}
