package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	githubep "golang.org/x/oauth2/github"

	"github.com/icebob/kantab-sub001/internal/auth"
	"github.com/icebob/kantab-sub001/internal/auth/provider"
)

const (
	providerName = "github"
	userinfoURL  = "https://api.github.com/user"
)

func Descriptor() provider.Descriptor {
	return provider.Descriptor{
		Name:         providerName,
		DefaultScope: []string{"read:user", "user:email"},
		Normalize:    normalize,
	}
}

func normalize(raw auth.RawProfile) (auth.Profile, error) {
	id := provider.StringField(raw, "id")
	if id == "" {
		return auth.Profile{}, fmt.Errorf("%w: github profile has no id", provider.ErrProfileNormalization)
	}
	return auth.Profile{
		Provider:   providerName,
		ExternalID: id,
		// name is unset for accounts that never filled it in
		FullName:  provider.StringField(raw, "name", "login"),
		Email:     provider.StringField(raw, "email"),
		AvatarURL: provider.StringField(raw, "avatar_url"),
	}, nil
}

// Strategy authenticates against GitHub's OAuth2 API. GitHub has no OIDC
// id_token, so the exchange fetches the user endpoint with the access
// token and returns that payload as the raw profile.
type Strategy struct {
	oauthConfig *oauth2.Config
}

func New(clientID, clientSecret, redirectURL string) (*Strategy, error) {
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("github oauth config missing required fields")
	}

	return &Strategy{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     githubep.Endpoint,
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
		return nil, fmt.Errorf("github token exchange failed: %w", err)
	}

	return fetchUserinfo(ctx, s.oauthConfig.Client(ctx, token))
}

func fetchUserinfo(ctx context.Context, client *http.Client) (auth.RawProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userinfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github userinfo returned status %d", resp.StatusCode)
	}

	var raw auth.RawProfile
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("github userinfo decode failed: %w", err)
	}

	return raw, nil
}
