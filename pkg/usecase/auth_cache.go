package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/jungkj/riscura-sub000/pkg/domain/model/auth"
)

// authCacheTTL bounds how long a validated token is trusted without
// re-reading the repository. Revocation via Logout removes the entry
// immediately; revocation from another instance takes up to the TTL.
const authCacheTTL = 5 * time.Minute

type cachedToken struct {
	token     *auth.Token
	expiresAt time.Time
}

type authCache struct {
	mu      sync.Mutex
	entries map[auth.TokenID]cachedToken
}

func newAuthCache() *authCache {
	return &authCache{entries: make(map[auth.TokenID]cachedToken)}
}

func (c *authCache) get(tokenID auth.TokenID) (*auth.Token, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cached, ok := c.entries[tokenID]
	if !ok {
		return nil, false
	}
	if time.Now().After(cached.expiresAt) {
		delete(c.entries, tokenID)
		return nil, false
	}
	return cached.token, true
}

func (c *authCache) set(token *auth.Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[token.ID] = cachedToken{
		token:     token,
		expiresAt: time.Now().Add(authCacheTTL),
	}
}

func (c *authCache) remove(tokenID auth.TokenID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, tokenID)
}

// validateTokenWithCache checks the session token against the cache
// first and falls back to the repository on a miss. Expired tokens
// found in the repository are deleted on the spot.
func (uc *AuthUseCase) validateTokenWithCache(ctx context.Context, tokenID auth.TokenID, tokenSecret auth.TokenSecret) (*auth.Token, error) {
	if token, ok := uc.cache.get(tokenID); ok {
		if token.Secret != tokenSecret {
			return nil, goerr.New("invalid token secret")
		}
		if token.IsExpired() {
			uc.cache.remove(tokenID)
			return nil, goerr.New("token expired")
		}
		return token, nil
	}

	token, err := uc.repo.GetToken(ctx, tokenID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get token from repository")
	}
	if token.Secret != tokenSecret {
		return nil, goerr.New("invalid token secret")
	}
	if token.IsExpired() {
		if err := uc.repo.DeleteToken(ctx, tokenID); err != nil {
			return nil, goerr.Wrap(err, "failed to delete expired token", goerr.V("token_id", tokenID))
		}
		return nil, goerr.New("token expired")
	}

	uc.cache.set(token)
	return token, nil
}
