package identity

import (
	"context"
	"stanza/pkg/mail"
	"stanza/pkg/user"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	tokenPrefix = "magiclink:"
	tokenTTL    = 15 * time.Minute
)

type Cmdable interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// MagicLinkProvider mints single-use sign-in tokens and mails them
// out. The token row in redis is the only state; verification consumes
// it, so a link can never be replayed.
type MagicLinkProvider struct {
	rdb    Cmdable
	sender mail.Sender
	appURL string
}

func NewMagicLinkProvider(rdb Cmdable, sender mail.Sender, appURL string) *MagicLinkProvider {
	return &MagicLinkProvider{rdb: rdb, sender: sender, appURL: appURL}
}

func (p *MagicLinkProvider) IssueLink(ctx context.Context, email string) error {
	email = user.NormalizeEmail(email)
	token := uuid.New().String()

	if err := p.rdb.Set(ctx, tokenPrefix+token, email, tokenTTL).Err(); err != nil {
		return err
	}

	html, err := mail.MagicLinkHTML(p.appURL, token, email)
	if err != nil {
		return err
	}

	return p.sender.Send(ctx, email, mail.MagicLinkSubject, html)
}

func (p *MagicLinkProvider) Verify(ctx context.Context, token string) (*Identity, error) {
	email, err := p.rdb.Get(ctx, tokenPrefix+token).Result()
	if err == redis.Nil {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	if err := p.rdb.Del(ctx, tokenPrefix+token).Err(); err != nil {
		return nil, err
	}

	return &Identity{Email: email}, nil
}
