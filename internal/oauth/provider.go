// Package oauth implements the Google and Microsoft sign-in flows.  Each
// provider is a tagged variant dispatched by switch; there is no dynamic
// strategy registry.  A provider without configured client credentials is
// disabled and its routes report an error.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"

	"github.com/flatlogic/usermgmt-backend/internal/config"
	"github.com/flatlogic/usermgmt-backend/internal/model"
)

// Identity is what a provider resolves an authorization code into: the
// external account's email plus a display name for the token payload.
type Identity struct {
	Email       string
	DisplayName string
}

// ErrUnknownProvider is returned for provider names outside the supported set.
var ErrUnknownProvider = errors.New("unknown oauth provider")

// ErrProviderDisabled is returned when a supported provider has no client
// credentials configured.
var ErrProviderDisabled = errors.New("oauth provider is not configured")

const (
	googleUserInfoURL   = "https://www.googleapis.com/oauth2/v2/userinfo"
	microsoftProfileURL = "https://graph.microsoft.com/v1.0/me"
)

// Registry holds one oauth2.Config per enabled provider.
type Registry struct {
	google    *oauth2.Config
	microsoft *oauth2.Config
}

// NewRegistry builds provider configs from application configuration.  The
// callback URL mirrors the route layout: /api/auth/signin/<provider>/callback.
func NewRegistry(cfg config.Config) *Registry {
	r := &Registry{}
	if cfg.OAuth.GoogleClientID != "" {
		r.google = &oauth2.Config{
			ClientID:     cfg.OAuth.GoogleClientID,
			ClientSecret: cfg.OAuth.GoogleClientSecret,
			RedirectURL:  cfg.APIURL + "/api/auth/signin/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}
	if cfg.OAuth.MicrosoftClientID != "" {
		r.microsoft = &oauth2.Config{
			ClientID:     cfg.OAuth.MicrosoftClientID,
			ClientSecret: cfg.OAuth.MicrosoftClientSecret,
			RedirectURL:  cfg.APIURL + "/api/auth/signin/microsoft/callback",
			Scopes:       []string{"openid", "email", "User.Read"},
			Endpoint:     microsoft.AzureADEndpoint("common"),
		}
	}
	return r
}

func (r *Registry) conf(provider string) (*oauth2.Config, error) {
	switch provider {
	case model.ProviderGoogle:
		if r.google == nil {
			return nil, ErrProviderDisabled
		}
		return r.google, nil
	case model.ProviderMicrosoft:
		if r.microsoft == nil {
			return nil, ErrProviderDisabled
		}
		return r.microsoft, nil
	}
	return nil, ErrUnknownProvider
}

// Enabled reports whether the named provider can be used.
func (r *Registry) Enabled(provider string) bool {
	_, err := r.conf(provider)
	return err == nil
}

// AuthCodeURL returns the provider consent-screen URL for a signin redirect.
func (r *Registry) AuthCodeURL(provider, state string) (string, error) {
	c, err := r.conf(provider)
	if err != nil {
		return "", err
	}
	return c.AuthCodeURL(state), nil
}

// ResolveExternalIdentity exchanges an authorization code and fetches the
// provider profile, returning the external account's email and display name.
// Treated as a single best-effort attempt; there is no retry policy.
func (r *Registry) ResolveExternalIdentity(ctx context.Context, provider, code string) (Identity, error) {
	c, err := r.conf(provider)
	if err != nil {
		return Identity{}, err
	}
	tok, err := c.Exchange(ctx, code)
	if err != nil {
		return Identity{}, fmt.Errorf("oauth %s: code exchange: %w", provider, err)
	}
	client := c.Client(ctx, tok)

	switch provider {
	case model.ProviderGoogle:
		return fetchGoogleIdentity(client)
	case model.ProviderMicrosoft:
		return fetchMicrosoftIdentity(client)
	}
	return Identity{}, ErrUnknownProvider
}

func fetchGoogleIdentity(client *http.Client) (Identity, error) {
	var profile struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := getJSON(client, googleUserInfoURL, &profile); err != nil {
		return Identity{}, fmt.Errorf("oauth google: userinfo: %w", err)
	}
	if profile.Email == "" {
		return Identity{}, errors.New("oauth google: profile has no email")
	}
	return Identity{Email: profile.Email, DisplayName: profile.Name}, nil
}

func fetchMicrosoftIdentity(client *http.Client) (Identity, error) {
	var profile struct {
		Mail              string `json:"mail"`
		UserPrincipalName string `json:"userPrincipalName"`
		DisplayName       string `json:"displayName"`
	}
	if err := getJSON(client, microsoftProfileURL, &profile); err != nil {
		return Identity{}, fmt.Errorf("oauth microsoft: profile: %w", err)
	}
	// Personal and some work accounts leave mail empty; fall back to the UPN.
	email := profile.Mail
	if email == "" {
		email = profile.UserPrincipalName
	}
	if email == "" {
		return Identity{}, errors.New("oauth microsoft: profile has no email")
	}
	return Identity{Email: email, DisplayName: profile.DisplayName}, nil
}

func getJSON(client *http.Client, url string, out any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
