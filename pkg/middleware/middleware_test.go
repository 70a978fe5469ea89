package middleware

import (
	"net/http"
	"net/http/httptest"
	"stanza/pkg/session"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/golang/mock/gomock"
	"go.uber.org/zap"
)

var logger = zap.NewNop().Sugar()

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func TestAuthPassesOpenRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)
	sm := session.NewMockSessionManager(ctrl)
	next, called := okHandler()

	h := Auth(logger, sm, next)

	open := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/posts"},
		{http.MethodGet, "/api/post/abc123"},
		{http.MethodPost, "/api/votes"},
		{http.MethodPost, "/api/auth/link"},
		{http.MethodPost, "/api/auth/verify"},
	}

	for _, tc := range open {
		*called = false
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		if !*called {
			t.Errorf("%s %s must not require auth", tc.method, tc.path)
		}
	}
}

func TestAuthRejectsWithoutSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	sm := session.NewMockSessionManager(ctrl)
	next, called := okHandler()

	h := Auth(logger, sm, next)

	guarded := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/posts"},
		{http.MethodPost, "/api/post/abc123/comments"},
		{http.MethodGet, "/api/auth/me"},
		{http.MethodPost, "/api/auth/logout"},
	}

	for _, tc := range guarded {
		*called = false
		sm.EXPECT().Check(gomock.Any(), gomock.Any()).Return(nil, jwt.ErrSignatureInvalid)

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))

		if *called {
			t.Errorf("%s %s must require auth", tc.method, tc.path)
		}
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401 but was %d", tc.method, tc.path, w.Code)
		}
	}
}

func TestAuthAttachesSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	sm := session.NewMockSessionManager(ctrl)

	sess := &session.Session{User: &session.User{ID: 7, Username: "book_lover"}}
	sm.EXPECT().Check(gomock.Any(), gomock.Any()).Return(sess, nil)

	var got *session.Session
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = session.SessionFromContext(r.Context())
	})

	h := Auth(logger, sm, next)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/posts", nil))

	if got != sess {
		t.Fatalf("expected session in context, got %v", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	next, called := okHandler()
	h := CORS([]string{"https://stanza.app"}, next)

	r := httptest.NewRequest(http.MethodOptions, "/api/posts", nil)
	r.Header.Set("Origin", "https://stanza.app")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, r)

	if *called {
		t.Error("preflight must not reach the handler")
	}
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204 but was %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "https://stanza.app" {
		t.Errorf("unexpected allow-origin %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
	if w.Header().Get("Access-Control-Allow-Headers") == "" {
		t.Error("allow-headers missing")
	}
}

func TestCORSUnknownOriginFallsBack(t *testing.T) {
	next, _ := okHandler()
	h := CORS([]string{"https://stanza.app"}, next)

	r := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	r.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, r)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://stanza.app" {
		t.Errorf("unknown origin must fall back to first allowed, got %q", got)
	}
}

func TestRecover(t *testing.T) {
	h := Recover(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/posts", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 but was %d", w.Code)
	}
}

func TestLogPreservesStatus(t *testing.T) {
	h := Log(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusTeapot {
		t.Fatalf("expected 418 but was %d", w.Code)
	}
}
