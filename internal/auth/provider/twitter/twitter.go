package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/icebob/kantab-sub001/internal/auth"
	"github.com/icebob/kantab-sub001/internal/auth/provider"
)

const (
	providerName = "twitter"
	userinfoURL  = "https://api.twitter.com/2/users/me?user.fields=profile_image_url"
)

// x/oauth2 ships no twitter endpoint package; the v2 endpoints are
// specified here directly.
var endpoint = oauth2.Endpoint{
	AuthURL:  "https://twitter.com/i/oauth2/authorize",
	TokenURL: "https://api.twitter.com/2/oauth2/token",
}

func Descriptor() provider.Descriptor {
	return provider.Descriptor{
		Name:         providerName,
		DefaultScope: []string{"users.read", "tweet.read"},
		Normalize:    normalize,
	}
}

func normalize(raw auth.RawProfile) (auth.Profile, error) {
	// the v2 API wraps the user object in a "data" envelope
	id := provider.NestedField(raw, "data", "id")
	if id == "" {
		return auth.Profile{}, fmt.Errorf("%w: twitter profile has no id", provider.ErrProfileNormalization)
	}
	return auth.Profile{
		Provider:   providerName,
		ExternalID: id,
		FullName:   provider.NestedField(raw, "data", "name"),
		// twitter's v2 userinfo does not disclose email
		AvatarURL: provider.NestedField(raw, "data", "profile_image_url"),
	}, nil
}

// Strategy authenticates against the Twitter v2 OAuth2 API. Twitter
// requires PKCE on every authorization request.
type Strategy struct {
	oauthConfig *oauth2.Config
}

func New(clientID, clientSecret, redirectURL string) (*Strategy, error) {
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("twitter oauth config missing required fields")
	}

	return &Strategy{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     endpoint,
			Scopes:       Descriptor().DefaultScope,
		},
	}, nil
}

func (s *Strategy) Name() string {
	return providerName
}

func (s *Strategy) AuthCodeURL(state string, codeChallenge string) string {
	return s.oauthConfig.AuthCodeURL(
		state,
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
		return nil, fmt.Errorf("twitter token exchange failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userinfoURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.oauthConfig.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("twitter userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("twitter userinfo returned status %d", resp.StatusCode)
	}

	var raw auth.RawProfile
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("twitter userinfo decode failed: %w", err)
	}

	return raw, nil
}
