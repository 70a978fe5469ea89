package user

import (
	"errors"
	"strings"
	"time"
)

// ErrEmailTaken signals the unique email key rejected an insert. The
// caller treats it as "another request created this user first".
var ErrEmailTaken = errors.New("email already registered")

type User struct {
	ID       int64
	Email    string
	Username string
	Created  time.Time
}

// NormalizeEmail is applied before every lookup and insert, so the
// same mailbox can never yield two accounts by case games.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
