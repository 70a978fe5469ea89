package middleware

import (
	"context"
	"net/http"
	"stanza/pkg/session"
	"strings"
	"time"

	"go.uber.org/zap"
)

var authRoutes = map[string]string{
	"/api/posts":       http.MethodPost,
	"/api/auth/me":     http.MethodGet,
	"/api/auth/logout": http.MethodPost,
}

func protected(r *http.Request) bool {
	if m, ok := authRoutes[r.URL.Path]; ok && m == r.Method {
		return true
	}

	// comment creation under /api/post/{id}/comments
	return r.Method == http.MethodPost &&
		strings.HasPrefix(r.URL.Path, "/api/post/") &&
		strings.HasSuffix(r.URL.Path, "/comments")
}

// Auth gates the write paths that need a user. Voting stays open: it
// is device-scoped, not identity-scoped.
func Auth(logger *zap.SugaredLogger, sm session.SessionManager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !protected(r) {
			next.ServeHTTP(w, r)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()
		sess, err := sm.Check(ctx, r)
		if err != nil {
			logger.Infof("auth rejected: %s", err.Error())
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"unauthorized"}`))

			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), session.SessionKey, sess)))
	})
}
