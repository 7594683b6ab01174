package auth

import (
	"context"
	"sync"

	"golang.org/x/oauth2"
)

var _ Provider = (*EnvironmentProvider)(nil)

// EnvironmentProvider serves pre-provisioned credentials from a variable.
// It never starts an interactive flow.
type EnvironmentProvider struct {
	creds  *Credentials
	mu     sync.Mutex
	source oauth2.TokenSource
}

func NewEnvironmentProvider(value string) (*EnvironmentProvider, error) {
	creds, err := DecodeCredentials(value)
	if err != nil {
		return nil, err
	}
	return &EnvironmentProvider{creds: creds}, nil
}

func (p *EnvironmentProvider) Token(ctx context.Context) (*oauth2.Token, error) {
	p.mu.Lock()
	if p.source == nil {
		// The refresh client outlives the first caller's context.
		p.source = p.creds.oauthConfig().TokenSource(context.WithoutCancel(ctx), p.creds.oauthToken())
	}
	source := p.source
	p.mu.Unlock()

	token, err := source.Token()
	if err != nil {
		return nil, tokenError(err)
	}
	return token, nil
}

func (p *EnvironmentProvider) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &providerTokenSource{ctx: ctx, provider: p}
}
