package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ErrAuth marks a missing, invalid or unrefreshable credential.
var ErrAuth = errors.New("authorization failed")

// Scopes requested for spreadsheet access.
var Scopes = []string{"https://www.googleapis.com/auth/spreadsheets"}

// Credentials is the serialized authorized-user form shared by the token file
// and the GOOGLE_CREDENTIALS variable.
type Credentials struct {
	Token        string     `json:"token"`
	RefreshToken string     `json:"refresh_token"`
	TokenURI     string     `json:"token_uri"`
	ClientID     string     `json:"client_id"`
	ClientSecret string     `json:"client_secret"`
	Scopes       []string   `json:"scopes"`
	Expiry       *time.Time `json:"expiry,omitempty"`
}

// DecodeCredentials accepts the JSON form or its base64 encoding.
func DecodeCredentials(value string) (*Credentials, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("%w: credentials are empty", ErrAuth)
	}

	data := []byte(value)
	if !strings.HasPrefix(value, "{") {
		decoded, err := decodeBase64(value)
		if err != nil {
			return nil, fmt.Errorf("%w: credentials are neither JSON nor base64: %w", ErrAuth, err)
		}
		data = decoded
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("%w: failed to decode credentials: %w", ErrAuth, err)
	}

	if creds.RefreshToken == "" && creds.Token == "" {
		return nil, fmt.Errorf("%w: credentials carry no token", ErrAuth)
	}

	return &creds, nil
}

func decodeBase64(value string) ([]byte, error) {
	if data, err := base64.StdEncoding.DecodeString(value); err == nil {
		return data, nil
	}
	return base64.URLEncoding.DecodeString(value)
}

func (c *Credentials) oauthConfig() *oauth2.Config {
	tokenURI := c.TokenURI
	if tokenURI == "" {
		tokenURI = google.Endpoint.TokenURL
	}

	scopes := c.Scopes
	if len(scopes) == 0 {
		scopes = Scopes
	}

	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  google.Endpoint.AuthURL,
			TokenURL: tokenURI,
		},
		Scopes: scopes,
	}
}

// oauthToken returns the stored token. Without a known expiry the access token
// cannot be trusted, so it is dropped and the first use refreshes.
func (c *Credentials) oauthToken() *oauth2.Token {
	token := &oauth2.Token{
		AccessToken:  c.Token,
		RefreshToken: c.RefreshToken,
		TokenType:    "Bearer",
	}

	if c.Expiry != nil {
		token.Expiry = *c.Expiry
	} else if c.RefreshToken != "" {
		token.AccessToken = ""
	}

	return token
}

func (c *Credentials) withToken(token *oauth2.Token) *Credentials {
	updated := *c
	updated.Token = token.AccessToken
	if token.RefreshToken != "" {
		updated.RefreshToken = token.RefreshToken
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		updated.Expiry = &expiry
	} else {
		updated.Expiry = nil
	}
	return &updated
}

func credentialsFromConfig(conf *oauth2.Config, token *oauth2.Token) *Credentials {
	creds := &Credentials{
		ClientID:     conf.ClientID,
		ClientSecret: conf.ClientSecret,
		TokenURI:     conf.Endpoint.TokenURL,
		Scopes:       conf.Scopes,
	}
	return creds.withToken(token)
}

func loadCredentialsFile(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeCredentials(string(data))
}

func saveCredentialsFile(path string, creds *Credentials) error {
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}
