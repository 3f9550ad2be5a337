package airtable

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultAuthURL  = "https://airtable.com/oauth2/v1/authorize"
	defaultTokenURL = "https://airtable.com/oauth2/v1/token"
)

// OAuth performs the provider authorization-code exchange with client
// credentials.
type OAuth struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	httpClient *http.Client
	authURL    string
	tokenURL   string
}

// OAuthOption configures the OAuth helper.
type OAuthOption func(*OAuth)

// WithTokenURL overrides the token endpoint (tests).
func WithTokenURL(url string) OAuthOption {
	return func(o *OAuth) { o.tokenURL = url }
}

// WithAuthURL overrides the authorize endpoint (tests).
func WithAuthURL(url string) OAuthOption {
	return func(o *OAuth) { o.authURL = url }
}

// NewOAuth constructs the OAuth helper.
func NewOAuth(clientID, clientSecret, redirectURI string, opts ...OAuthOption) *OAuth {
	o := &OAuth{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  redirectURI,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		authURL:      defaultAuthURL,
		tokenURL:     defaultTokenURL,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// AuthorizationURL builds the user-facing consent URL for the given state
// nonce.
func (o *OAuth) AuthorizationURL(state string) string {
	q := url.Values{}
	q.Set("client_id", o.ClientID)
	q.Set("redirect_uri", o.RedirectURI)
	q.Set("response_type", "code")
	q.Set("state", state)
	return o.authURL + "?" + q.Encode()
}

// ExchangeCode trades an authorization code for provider tokens using HTTP
// basic client authentication and a form-encoded body.
func (o *OAuth) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", o.RedirectURI)
	form.Set("client_id", o.ClientID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("oauth exchange: build request: %w", err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(o.ClientID + ":" + o.ClientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oauth exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("oauth exchange: status %d: %s", resp.StatusCode, snippet)
	}

	var token TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("oauth exchange: decode response: %w", err)
	}
	return &token, nil
}
