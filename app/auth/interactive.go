package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var _ Provider = (*InteractiveProvider)(nil)

type InteractiveOptions struct {
	TokenFile         string
	ClientSecretsFile string
	// Headless disables the browser flow; a missing token then fails with ErrAuth.
	Headless bool
	// OpenBrowser is called with the consent URL. Defaults to printing it.
	OpenBrowser func(authURL string) error
	Output      io.Writer
}

// InteractiveProvider keeps its token in a local file and, on first run,
// obtains one through the browser consent flow with a loopback redirect.
type InteractiveProvider struct {
	opts   InteractiveOptions
	mu     sync.Mutex
	creds  *Credentials
	source oauth2.TokenSource
}

func NewInteractiveProvider(opts InteractiveOptions) *InteractiveProvider {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.OpenBrowser == nil {
		out := opts.Output
		opts.OpenBrowser = func(authURL string) error {
			_, err := fmt.Fprintf(out, "Open the following URL in your browser to authorize access:\n\n%s\n\n", authURL)
			return err
		}
	}
	return &InteractiveProvider{opts: opts}
}

func (p *InteractiveProvider) Token(ctx context.Context) (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.source == nil {
		if err := p.load(ctx); err != nil {
			return nil, err
		}
	}

	token, err := p.source.Token()
	if err != nil {
		return nil, tokenError(err)
	}

	if token.AccessToken != p.creds.Token {
		p.creds = p.creds.withToken(token)
		if err := saveCredentialsFile(p.opts.TokenFile, p.creds); err != nil {
			slog.Warn("Failed to persist refreshed token", "file", p.opts.TokenFile, "error", err)
		}
	}

	return token, nil
}

func (p *InteractiveProvider) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &providerTokenSource{ctx: ctx, provider: p}
}

func (p *InteractiveProvider) load(ctx context.Context) error {
	creds, err := loadCredentialsFile(p.opts.TokenFile)
	switch {
	case err == nil:
		slog.Debug("Loaded cached token", "file", p.opts.TokenFile)
	case errors.Is(err, fs.ErrNotExist) || errors.Is(err, ErrAuth):
		if p.opts.Headless {
			return fmt.Errorf("%w: no usable token in %s and interactive authorization is disabled", ErrAuth, p.opts.TokenFile)
		}
		creds, err = p.authorize(ctx)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: failed to read token file: %w", ErrAuth, err)
	}

	p.creds = creds
	p.source = creds.oauthConfig().TokenSource(context.WithoutCancel(ctx), creds.oauthToken())
	return nil
}

// authorize runs the consent flow and stores the resulting token.
func (p *InteractiveProvider) authorize(ctx context.Context) (*Credentials, error) {
	secrets, err := os.ReadFile(p.opts.ClientSecretsFile)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read client secrets: %w", ErrAuth, err)
	}

	conf, err := google.ConfigFromJSON(secrets, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid client secrets: %w", ErrAuth, err)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to start redirect listener: %w", ErrAuth, err)
	}
	defer listener.Close()

	conf.RedirectURL = fmt.Sprintf("http://%s/", listener.Addr().String())

	state, err := randomState()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuth, err)
	}

	type result struct {
		code string
		err  error
	}
	results := make(chan result, 1)

	server := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		var res result
		switch {
		case query.Get("state") != state:
			res.err = fmt.Errorf("state mismatch")
		case query.Get("error") != "":
			res.err = fmt.Errorf("authorization denied: %s", query.Get("error"))
		case query.Get("code") == "":
			res.err = fmt.Errorf("authorization code missing")
		default:
			res.code = query.Get("code")
		}

		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "Authorization complete. You may close this window.")
		}

		select {
		case results <- res:
		default:
		}
	})}
	go server.Serve(listener)
	defer server.Close()

	authURL := conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	if err := p.opts.OpenBrowser(authURL); err != nil {
		return nil, fmt.Errorf("%w: failed to open browser: %w", ErrAuth, err)
	}

	var res result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrAuth, ctx.Err())
	case res = <-results:
	}
	if res.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuth, res.err)
	}

	token, err := conf.Exchange(ctx, res.code)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to exchange authorization code: %w", ErrAuth, err)
	}

	creds := credentialsFromConfig(conf, token)
	if err := saveCredentialsFile(p.opts.TokenFile, creds); err != nil {
		return nil, err
	}

	slog.Info("Authorization complete", "file", p.opts.TokenFile)
	return creds, nil
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
