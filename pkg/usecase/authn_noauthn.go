package usecase

import (
	"context"

	"github.com/jungkj/riscura-sub000/pkg/domain/model/auth"
)

// NoAuthnUseCase skips authentication and injects an anonymous
// identity (for development/testing)
type NoAuthnUseCase struct{}

// NewNoAuthnUseCase creates a new NoAuthnUseCase instance
func NewNoAuthnUseCase() *NoAuthnUseCase {
	return &NoAuthnUseCase{}
}

// GetAuthURL returns a dummy URL (should not be called in no-auth mode)
func (uc *NoAuthnUseCase) GetAuthURL(ctx context.Context, state string) (string, error) {
	return "/", nil
}

// HandleCallback handles OAuth callback (should not be called in no-auth mode)
func (uc *NoAuthnUseCase) HandleCallback(ctx context.Context, code string) (*auth.Token, error) {
	return auth.NewAnonymousUser(), nil
}

// ValidateToken always returns the anonymous identity
func (uc *NoAuthnUseCase) ValidateToken(ctx context.Context, tokenID auth.TokenID, tokenSecret auth.TokenSecret) (*auth.Token, error) {
	return auth.NewAnonymousUser(), nil
}

// Logout does nothing in no-auth mode
func (uc *NoAuthnUseCase) Logout(ctx context.Context, tokenID auth.TokenID) error {
	return nil
}

// IsNoAuthn returns true for NoAuthnUseCase
func (uc *NoAuthnUseCase) IsNoAuthn() bool {
	return true
}
