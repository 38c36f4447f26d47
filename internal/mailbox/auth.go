// internal/mailbox/auth.go
package mailbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
)

const gmailScope = "https://www.googleapis.com/auth/gmail.modify"

var (
	ErrNotAuthenticated   = errors.New("MAILBOX_NOT_AUTHENTICATED")
	ErrTokenMissing       = errors.New("MAILBOX_TOKEN_MISSING")
	ErrCredentialsInvalid = errors.New("MAILBOX_CREDENTIALS_INVALID")
)

// clientSecrets mirrors the credentials.json downloaded for an installed or
// web OAuth client.
type clientSecrets struct {
	Installed *clientSecret `json:"installed"`
	Web       *clientSecret `json:"web"`
}

type clientSecret struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	AuthURI      string `json:"auth_uri"`
	TokenURI     string `json:"token_uri"`
}

// storedToken accepts both the authorized-user format ("token", "expiry")
// and the oauth2.Token format ("access_token", "expiry").
type storedToken struct {
	Token        string    `json:"token"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	TokenURI     string    `json:"token_uri"`
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"client_secret"`
	Expiry       time.Time `json:"expiry"`
}

func loadOAuthConfig(credentialsPath string, tok storedToken) (*oauth2.Config, error) {
	cfg := &oauth2.Config{
		ClientID:     tok.ClientID,
		ClientSecret: tok.ClientSecret,
		Scopes:       []string{gmailScope},
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.google.com/o/oauth2/auth",
			TokenURL: "https://oauth2.googleapis.com/token",
		},
	}
	if tok.TokenURI != "" {
		cfg.Endpoint.TokenURL = tok.TokenURI
	}

	raw, err := os.ReadFile(credentialsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && cfg.ClientID != "" {
			return cfg, nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrCredentialsInvalid, credentialsPath, err)
	}

	var secrets clientSecrets
	if err := json.Unmarshal(raw, &secrets); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCredentialsInvalid, err)
	}
	secret := secrets.Installed
	if secret == nil {
		secret = secrets.Web
	}
	if secret == nil || secret.ClientID == "" {
		return nil, fmt.Errorf("%w: no client in %s", ErrCredentialsInvalid, credentialsPath)
	}

	cfg.ClientID = secret.ClientID
	cfg.ClientSecret = secret.ClientSecret
	if secret.AuthURI != "" {
		cfg.Endpoint.AuthURL = secret.AuthURI
	}
	if secret.TokenURI != "" {
		cfg.Endpoint.TokenURL = secret.TokenURI
	}
	return cfg, nil
}

func loadStoredToken(tokenPath string) (storedToken, error) {
	var tok storedToken

	raw, err := os.ReadFile(tokenPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return tok, fmt.Errorf("%w: %s", ErrTokenMissing, tokenPath)
		}
		return tok, fmt.Errorf("read token: %w", err)
	}
	if err := json.Unmarshal(raw, &tok); err != nil {
		return tok, fmt.Errorf("decode token: %w", err)
	}
	if tok.AccessToken == "" {
		tok.AccessToken = tok.Token
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return tok, fmt.Errorf("%w: %s has no usable token", ErrTokenMissing, tokenPath)
	}
	return tok, nil
}

func (t storedToken) oauth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Expiry:       t.Expiry,
	}
}

func saveStoredToken(tokenPath string, prev storedToken, tok *oauth2.Token) error {
	prev.Token = tok.AccessToken
	prev.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		prev.RefreshToken = tok.RefreshToken
	}
	prev.TokenType = tok.TokenType
	prev.Expiry = tok.Expiry

	raw, err := json.MarshalIndent(prev, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(tokenPath, raw, 0o600)
}

// newTokenSource loads the stored token and returns a source that refreshes
// it when expired. No interactive consent is attempted.
func (c *Client) newTokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	stored, err := loadStoredToken(c.cfg.TokenPath)
	if err != nil {
		return nil, err
	}

	oauthCfg, err := loadOAuthConfig(c.cfg.CredentialsPath, stored)
	if err != nil {
		return nil, err
	}

	initial := stored.oauth2Token()
	ts := oauth2.ReuseTokenSource(initial, oauthCfg.TokenSource(ctx, initial))

	tok, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}
	if tok.AccessToken != initial.AccessToken {
		if err := saveStoredToken(c.cfg.TokenPath, stored, tok); err != nil {
			c.log.Warn("failed to persist refreshed token", map[string]interface{}{
				"path":  c.cfg.TokenPath,
				"error": err.Error(),
			})
		}
	}
	return ts, nil
}
