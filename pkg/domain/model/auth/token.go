package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// TokenID identifies a session token
type TokenID string

// TokenSecret is the secret half of a session token. It is redacted
// from logs by the logging setup.
type TokenSecret string

// String returns the string representation of TokenID
func (id TokenID) String() string {
	return string(id)
}

// Validate checks if the TokenID is usable as a document key
func (id TokenID) Validate() error {
	if id == "" {
		return goerr.New("token ID cannot be empty")
	}
	return nil
}

// TokenExpiry is how long a session token stays valid
const TokenExpiry = 7 * 24 * time.Hour

// AnonymousSub identifies requests in no-authn mode
const AnonymousSub = "anonymous"

// Token represents an authenticated session
type Token struct {
	ID        TokenID     `firestore:"id"`
	Secret    TokenSecret `firestore:"secret"`
	Sub       string      `firestore:"sub"`
	Email     string      `firestore:"email"`
	Name      string      `firestore:"name"`
	ExpiresAt time.Time   `firestore:"expires_at"`
	CreatedAt time.Time   `firestore:"created_at"`
}

// NewToken creates a session token for the given identity with a fresh
// random ID and secret.
func NewToken(sub, email, name string) *Token {
	now := time.Now()
	return &Token{
		ID:        TokenID(randomHex(16)),
		Secret:    TokenSecret(randomHex(32)),
		Sub:       sub,
		Email:     email,
		Name:      name,
		ExpiresAt: now.Add(TokenExpiry),
		CreatedAt: now,
	}
}

// NewAnonymousUser returns the token injected in no-authn mode
func NewAnonymousUser() *Token {
	now := time.Now()
	return &Token{
		ID:        TokenID(AnonymousSub),
		Sub:       AnonymousSub,
		Email:     "anonymous@localhost",
		Name:      "Anonymous",
		ExpiresAt: now.Add(TokenExpiry),
		CreatedAt: now,
	}
}

// Validate checks the token has the fields persistence requires
func (t *Token) Validate() error {
	if err := t.ID.Validate(); err != nil {
		return err
	}
	if t.Sub == "" {
		return goerr.New("token sub cannot be empty")
	}
	return nil
}

// IsExpired reports whether the token has passed its expiry
func (t *Token) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failure is not recoverable
		panic(err)
	}
	return hex.EncodeToString(buf)
}

type ctxTokenKey struct{}

// ErrNoToken is returned when the context carries no token
var ErrNoToken = goerr.New("no token in context")

// ContextWithToken returns a context carrying the token
func ContextWithToken(ctx context.Context, token *Token) context.Context {
	return context.WithValue(ctx, ctxTokenKey{}, token)
}

// TokenFromContext extracts the token from the context
func TokenFromContext(ctx context.Context) (*Token, error) {
	token, ok := ctx.Value(ctxTokenKey{}).(*Token)
	if !ok || token == nil {
		return nil, ErrNoToken
	}
	return token, nil
}

// ActorFromContext returns the email of the authenticated user, or
// "system" when the context carries no token. Audit entries use this.
func ActorFromContext(ctx context.Context) string {
	token, err := TokenFromContext(ctx)
	if err != nil {
		return "system"
	}
	return token.Email
}
