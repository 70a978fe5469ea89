package session

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"
)

type SessionManager interface {
	Create(ctx context.Context, w http.ResponseWriter, u *User, sessID string, expiresAt int64) (string, error)
	Check(ctx context.Context, r *http.Request) (*Session, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
	DestroyAll(ctx context.Context, user *User) error
}

// SessionManagerJWT signs and verifies the session credential itself.
// The same token travels either as the stanza_session cookie or as a
// bearer Authorization header; both resolve to the same claims.
type SessionManagerJWT struct {
	secret       []byte
	secureCookie bool
}

func NewSessionsJWTManager(secret []byte, secureCookie bool) *SessionManagerJWT {
	return &SessionManagerJWT{secret: secret, secureCookie: secureCookie}
}

func (sm *SessionManagerJWT) Create(ctx context.Context, w http.ResponseWriter, user *User, sessID string, expiresAt int64) (string, error) {
	sess := &Session{
		User:      &User{ID: user.ID, Username: user.Username, Email: user.Email},
		SessionID: sessID,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expiresAt,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sess)
	signed, err := token.SignedString(sm.secret)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(TTL.Seconds()),
		HttpOnly: true,
		Secure:   sm.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	return signed, nil
}

func (sm *SessionManagerJWT) Check(ctx context.Context, request *http.Request) (*Session, error) {
	tokenString := tokenFromRequest(request)
	if tokenString == "" {
		return nil, fmt.Errorf("no credential")
	}

	payload := &Session{}
	token, err := jwt.ParseWithClaims(tokenString, payload, func(token *jwt.Token) (interface{}, error) {
		method, ok := token.Method.(*jwt.SigningMethodHMAC)
		if !ok || method.Alg() != "HS256" {
			return nil, fmt.Errorf("bad sign method")
		}
		return sm.secret, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return payload, nil
}

func (sm *SessionManagerJWT) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sm.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

func (sm *SessionManagerJWT) DestroyAll(context.Context, *User) error {
	// tokens are stateless here; the redis wrapper revokes them
	return nil
}

func tokenFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}

	return cookie.Value
}
