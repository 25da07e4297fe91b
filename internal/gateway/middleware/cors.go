package middleware

import (
	"net/http"
	"strings"
)

const (
	allowMethods = "GET, POST, DELETE, OPTIONS"
	allowHeaders = "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization"
)

// CORS answers preflights and stamps the CORS headers on every response.
// With no origins listed any origin is echoed back; otherwise only the
// listed ones are, and other cross-origin requests get no CORS headers.
func CORS(origins ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			allowed[o] = true
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			switch origin := strings.TrimSpace(r.Header.Get("Origin")); {
			case origin == "":
				h.Set("Access-Control-Allow-Origin", "*")
			case len(allowed) == 0 || allowed[origin]:
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Add("Vary", "Origin")
			default:
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Methods", allowMethods)
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
