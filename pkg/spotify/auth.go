package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	spotifyapi "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ErrNoToken means there is no cached user token and an interactive
// re-authorization (trackkeeper auth) is required.
var ErrNoToken = errors.New("no cached spotify token")

// Credentials holds the application id/secret used by both OAuth flows.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// CredentialsFromEnv reads SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET.
func CredentialsFromEnv(redirectURL string) (Credentials, error) {
	creds := Credentials{
		ClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		ClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
		RedirectURL:  redirectURL,
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return Credentials{}, errors.New("missing SPOTIFY_CLIENT_ID or SPOTIFY_CLIENT_SECRET environment variables")
	}
	return creds, nil
}

func (c Credentials) authenticator() *spotifyauth.Authenticator {
	return spotifyauth.New(
		spotifyauth.WithClientID(c.ClientID),
		spotifyauth.WithClientSecret(c.ClientSecret),
		spotifyauth.WithRedirectURL(c.RedirectURL),
		spotifyauth.WithScopes(spotifyauth.ScopeUserReadRecentlyPlayed),
	)
}

// NewUserClient builds a client from the cached user token at cachePath. The
// underlying transport refreshes the token as needed; call PersistToken after
// a successful run to keep the cache current.
func NewUserClient(ctx context.Context, creds Credentials, cachePath string) (*Client, error) {
	token, err := readTokenCache(cachePath)
	if err != nil {
		return nil, err
	}

	httpClient := creds.authenticator().Client(ctx, token)
	return &Client{
		api:       spotifyapi.New(httpClient),
		tokenPath: cachePath,
	}, nil
}

// NewAppClient builds a client authorized through the client-credentials
// flow. It can search the catalog but cannot read user history.
func NewAppClient(ctx context.Context, creds Credentials) (*Client, error) {
	config := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	token, err := config.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("spotify client-credentials token: %w", err)
	}

	httpClient := spotifyauth.New().Client(ctx, token)
	return &Client{api: spotifyapi.New(httpClient)}, nil
}

// AuthURL returns the URL the user visits to authorize the app.
func (c Credentials) AuthURL(state string) string {
	return c.authenticator().AuthURL(state)
}

// ExchangeCode trades an authorization code for a token and writes it to
// cachePath. Used once by the interactive auth command.
func (c Credentials) ExchangeCode(ctx context.Context, code, cachePath string) error {
	token, err := c.authenticator().Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("spotify code exchange: %w", err)
	}
	return writeTokenCache(cachePath, token)
}

// PersistToken writes the client's current (possibly refreshed) token back to
// the cache file it was loaded from.
func (c *Client) PersistToken() error {
	if c.tokenPath == "" {
		return nil
	}
	token, err := c.api.Token()
	if err != nil {
		return fmt.Errorf("read current token: %w", err)
	}
	return writeTokenCache(c.tokenPath, token)
}

func readTokenCache(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w (run 'trackkeeper auth' first)", ErrNoToken)
		}
		return nil, fmt.Errorf("read token cache: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parse token cache %s: %w", path, err)
	}
	if token.RefreshToken == "" && !token.Valid() {
		return nil, fmt.Errorf("%w: cached token expired with no refresh token", ErrNoToken)
	}
	return &token, nil
}

func writeTokenCache(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	// Token grants access to the account's listening history, keep it 0600.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write token cache: %w", err)
	}
	slog.Debug("token cache updated", "path", path)
	return nil
}
