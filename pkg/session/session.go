package session

import (
	"context"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

type key int

const (
	SessionKey key = 1
)

// TTL is the session credential lifetime. Independent of post expiry.
const TTL = 7 * 24 * time.Hour

const CookieName = "stanza_session"

type Session struct {
	User      *User `json:"user"`
	SessionID string
	jwt.StandardClaims
}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func SessionFromContext(ctx context.Context) (*Session, error) {
	sess, ok := ctx.Value(SessionKey).(*Session)
	if !ok {
		return nil, fmt.Errorf("session not found")
	}

	return sess, nil
}
