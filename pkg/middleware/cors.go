package middleware

import "net/http"

// CORS reflects the request origin when it is on the allow list (or
// the list contains "*") and short-circuits OPTIONS preflights.
func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		allowOrigin := ""
		switch {
		case allowAll && origin != "":
			allowOrigin = origin
		case allowAll:
			allowOrigin = "*"
		case allowed[origin]:
			allowOrigin = origin
		case len(allowedOrigins) > 0:
			allowOrigin = allowedOrigins[0]
		}

		h := w.Header()
		h.Set("Access-Control-Allow-Origin", allowOrigin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		h.Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
