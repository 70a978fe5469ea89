package identity

import (
	"context"
	"errors"
)

// Identity is what a verified credential proves: control of a mailbox.
// It is not yet a user; the binder decides that.
type Identity struct {
	Email string
}

var ErrInvalidToken = errors.New("invalid or expired token")

type Provider interface {
	IssueLink(ctx context.Context, email string) error
	Verify(ctx context.Context, token string) (*Identity, error)
}
