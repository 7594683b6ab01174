package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
}

func NewFetcher(httpClient *http.Client, userAgent string, timeout time.Duration) *Fetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Fetcher{
		httpClient: httpClient,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

// Run reads the document behind uri: http(s) URLs, file:// URIs and plain paths.
func (f *Fetcher) Run(ctx context.Context, uri string) ([]byte, error) {
	if uri == "" {
		return nil, fmt.Errorf("feed URI is empty")
	}

	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		return f.fetchHTTP(ctx, uri)
	}

	return f.readFile(ctx, uri)
}

func (f *Fetcher) fetchHTTP(ctx context.Context, uri string) ([]byte, error) {
	timeoutCtx, cancel := f.callContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// callContext bounds a request by the fetch timeout; a non-positive timeout means none.
func (f *Fetcher) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, f.timeout)
}

func (f *Fetcher) readFile(ctx context.Context, uri string) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	path := uri
	if strings.HasPrefix(uri, "file://") {
		u, err := url.Parse(uri)
		if err != nil {
			return nil, fmt.Errorf("invalid file URI: %w", err)
		}
		path = u.Path
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed file: %w", err)
	}

	return data, nil
}

// Source fetches and parses a feed into raw entries.
type Source struct {
	fetcher *Fetcher
	parser  *Parser
}

func NewSource(fetcher *Fetcher, parser *Parser) *Source {
	return &Source{fetcher: fetcher, parser: parser}
}

// Fetch returns the entries of the feed at uri. Errors wrap ErrFetch.
func (s *Source) Fetch(ctx context.Context, uri string) ([]Entry, error) {
	data, err := s.fetcher.Run(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	entries, err := s.parser.Run(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	return entries, nil
}
