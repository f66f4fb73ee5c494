// Package magiclink issues and redeems single-use email sign-in links.
package magiclink

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"bracket/messaging"
	"bracket/store"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidEmail = errors.New("email is invalid")
	ErrInvalidToken = errors.New("magic link token is invalid")
	ErrLinkExpired  = errors.New("magic link expired")
	ErrLinkUsed     = errors.New("magic link already used")
	ErrRateLimited  = errors.New("too many login links requested")
)

// Provider sends login links and redeems their tokens.
type Provider interface {
	// LoginOrCreate sends a login link to email. created reports whether the
	// address had no account yet. A same-site redirectTo path is carried in
	// the link so login lands where the user started.
	LoginOrCreate(ctx context.Context, email, redirectTo string) (created bool, err error)
	// Authenticate redeems a token and returns the email it was issued for.
	Authenticate(ctx context.Context, token string) (email string, err error)
}

// Store is the persistence a Local provider needs.
type Store interface {
	GetUserByEmail(email string) (*store.User, error)
	CreateMagicLink(l *store.MagicLink) error
	GetMagicLink(id string) (*store.MagicLink, error)
	MarkMagicLinkUsed(id string, at time.Time) error
	EnqueueOutbox(topic string, payload []byte, msgType string) (int64, error)
}

// Limiter bounds how often links are sent to one address.
type Limiter interface {
	Allow(ctx context.Context, email string) (bool, error)
}

// Options configure a Local provider.
type Options struct {
	BaseURL   string
	TTL       time.Duration
	MailTopic string
	Limiter   Limiter // nil disables rate limiting
	Clock     clockwork.Clock
	Cost      int // bcrypt cost; 0 means bcrypt.DefaultCost
}

// Local is a Provider backed by the application's own store. The login email
// itself is queued in the outbox for an external mailer.
type Local struct {
	db   Store
	opts Options
}

func NewLocal(db Store, opts Options) *Local {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Cost == 0 {
		opts.Cost = bcrypt.DefaultCost
	}
	return &Local{db: db, opts: opts}
}

func (p *Local) LoginOrCreate(ctx context.Context, email, redirectTo string) (bool, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return false, err
	}
	if p.opts.Limiter != nil {
		ok, err := p.opts.Limiter.Allow(ctx, email)
		if err != nil {
			return false, fmt.Errorf("rate limit: %w", err)
		}
		if !ok {
			return false, ErrRateLimited
		}
	}

	created := false
	if _, err := p.db.GetUserByEmail(email); errors.Is(err, store.ErrNotFound) {
		created = true
	} else if err != nil {
		return false, fmt.Errorf("get user: %w", err)
	}

	secret, err := newSecret()
	if err != nil {
		return false, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), p.opts.Cost)
	if err != nil {
		return false, fmt.Errorf("hash secret: %w", err)
	}
	now := p.opts.Clock.Now()
	link := &store.MagicLink{
		ID:         uuid.NewString(),
		Email:      email,
		SecretHash: string(hash),
		IssuedAt:   now,
		ExpiresAt:  now.Add(p.opts.TTL),
	}
	if err := p.db.CreateMagicLink(link); err != nil {
		return false, fmt.Errorf("store magic link: %w", err)
	}

	loginURL, err := buildLoginURL(p.opts.BaseURL, link.ID+"."+secret, redirectTo)
	if err != nil {
		return false, fmt.Errorf("build login url: %w", err)
	}
	payload, err := json.Marshal(messaging.LoginEmail{
		To:        email,
		Link:      loginURL,
		NewUser:   created,
		ExpiresAt: link.ExpiresAt,
	})
	if err != nil {
		return false, err
	}
	if _, err := p.db.EnqueueOutbox(p.opts.MailTopic, payload, messaging.TypeLoginEmail); err != nil {
		return false, fmt.Errorf("enqueue login email: %w", err)
	}
	return created, nil
}

func (p *Local) Authenticate(ctx context.Context, token string) (string, error) {
	id, secret, ok := strings.Cut(strings.TrimSpace(token), ".")
	if !ok || id == "" || secret == "" {
		return "", ErrInvalidToken
	}
	link, err := p.db.GetMagicLink(id)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrInvalidToken
	}
	if err != nil {
		return "", fmt.Errorf("load magic link: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(link.SecretHash), []byte(secret)) != nil {
		return "", ErrInvalidToken
	}

	now := p.opts.Clock.Now()
	if link.UsedAt != nil {
		return "", ErrLinkUsed
	}
	if now.After(link.ExpiresAt) {
		return "", ErrLinkExpired
	}
	if err := p.db.MarkMagicLinkUsed(id, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrLinkUsed
		}
		return "", fmt.Errorf("mark magic link used: %w", err)
	}
	return link.Email, nil
}

func newSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func buildLoginURL(base, token, redirectTo string) (string, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return "", fmt.Errorf("base url is required")
	}
	u, err := url.Parse(strings.TrimRight(base, "/") + "/login")
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	if sameSitePath(redirectTo) {
		q.Set("redirectTo", redirectTo)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// sameSitePath reports whether p is an absolute path on this site. Anything
// else is left out of the link.
func sameSitePath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}
