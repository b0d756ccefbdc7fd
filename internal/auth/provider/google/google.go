package google

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/icebob/kantab-sub001/internal/auth"
	"github.com/icebob/kantab-sub001/internal/auth/provider"
)

const providerName = "google"

// Descriptor declares the google provider to the registry. Registration
// is unconditional; the strategy itself is only built when credentials
// are present.
func Descriptor() provider.Descriptor {
	return provider.Descriptor{
		Name:         providerName,
		DefaultScope: []string{oidc.ScopeOpenID, "profile", "email"},
		Normalize:    normalize,
	}
}

func normalize(raw auth.RawProfile) (auth.Profile, error) {
	sub := provider.StringField(raw, "sub")
	if sub == "" {
		return auth.Profile{}, fmt.Errorf("%w: google profile has no sub", provider.ErrProfileNormalization)
	}
	return auth.Profile{
		Provider:   providerName,
		ExternalID: sub,
		FullName:   provider.StringField(raw, "name"),
		Email:      provider.StringField(raw, "email"),
		AvatarURL:  provider.StringField(raw, "picture"),
	}, nil
}

// Strategy authenticates against Google via OIDC discovery. The exchange
// verifies the returned id_token and exposes its claims as the raw profile.
type Strategy struct {
	oauthConfig *oauth2.Config
	verifier    *oidc.IDTokenVerifier
}

func New(
	ctx context.Context,
	clientID string,
	clientSecret string,
	redirectURL string,
) (*Strategy, error) {

	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("google oauth config missing required fields")
	}

	oidcProvider, err := oidc.NewProvider(ctx, "https://accounts.google.com")
	if err != nil {
		return nil, fmt.Errorf("failed to init google oidc provider: %w", err)
	}

	verifier := oidcProvider.Verifier(&oidc.Config{
		ClientID: clientID,
	})

	oauthCfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     oidcProvider.Endpoint(),
		Scopes:       Descriptor().DefaultScope,
	}

	return &Strategy{
		oauthConfig: oauthCfg,
		verifier:    verifier,
	}, nil
}

// Name returns the provider identifier used by the registry.
func (s *Strategy) Name() string {
	return providerName
}

// AuthCodeURL builds the OAuth authorization URL with PKCE parameters.
func (s *Strategy) AuthCodeURL(state string, codeChallenge string) string {
	return s.oauthConfig.AuthCodeURL(
		state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

func (s *Strategy) Exchange(
	ctx context.Context,
	code string,
	codeVerifier string,
) (auth.RawProfile, error) {

	token, err := s.oauthConfig.Exchange(
		ctx,
		code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		return nil, fmt.Errorf("google token exchange failed: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("google did not return id_token")
	}

	idToken, err := s.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("google id_token verification failed: %w", err)
	}

	var raw auth.RawProfile
	if err := idToken.Claims(&raw); err != nil {
		return nil, fmt.Errorf("google id_token claims parse failed: %w", err)
	}

	return raw, nil
}
