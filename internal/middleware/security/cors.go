package security

import (
	"net/http"
	"slices"
	"strings"
)

var (
	corsMethods = strings.Join([]string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
	}, ", ")
	corsHeaders = "Authorization, Content-Type, X-Request-ID"
)

// CORS allows credentialed cross-origin calls from the listed origins and
// answers preflight requests with 204.
type CORS struct {
	origins []string
}

func NewCORS(origins []string) *CORS {
	return &CORS{origins: origins}
}

func (c *CORS) allowed(origin string) bool {
	return origin != "" && (slices.Contains(c.origins, origin) || slices.Contains(c.origins, "*"))
}

func (c *CORS) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		headers := w.Header()
		headers.Add("Vary", "Origin")

		if c.allowed(origin) {
			headers.Set("Access-Control-Allow-Origin", origin)
			headers.Set("Access-Control-Allow-Credentials", "true")
			headers.Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if c.allowed(origin) {
				headers.Set("Access-Control-Allow-Methods", corsMethods)
				headers.Set("Access-Control-Allow-Headers", corsHeaders)
				headers.Set("Access-Control-Max-Age", "600")
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
