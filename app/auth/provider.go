package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// Provider supplies valid, refreshed tokens for the spreadsheet API.
type Provider interface {
	// Token returns a valid token, refreshing it when expired. Errors wrap ErrAuth.
	Token(ctx context.Context) (*oauth2.Token, error)
	// TokenSource adapts the provider for API clients.
	TokenSource(ctx context.Context) oauth2.TokenSource
}

// providerTokenSource binds a Provider to a context.
type providerTokenSource struct {
	ctx      context.Context
	provider Provider
}

func (s *providerTokenSource) Token() (*oauth2.Token, error) {
	return s.provider.Token(s.ctx)
}

func tokenError(err error) error {
	return fmt.Errorf("%w: %w", ErrAuth, err)
}
