package facebook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	facebookep "golang.org/x/oauth2/facebook"

	"github.com/icebob/kantab-sub001/internal/auth"
	"github.com/icebob/kantab-sub001/internal/auth/provider"
)

const (
	providerName = "facebook"
	userinfoURL  = "https://graph.facebook.com/v19.0/me?fields=id,name,email,picture"
)

func Descriptor() provider.Descriptor {
	return provider.Descriptor{
		Name:         providerName,
		DefaultScope: []string{"public_profile", "email"},
		Normalize:    normalize,
	}
}

func normalize(raw auth.RawProfile) (auth.Profile, error) {
	id := provider.StringField(raw, "id")
	if id == "" {
		return auth.Profile{}, fmt.Errorf("%w: facebook profile has no id", provider.ErrProfileNormalization)
	}
	return auth.Profile{
		Provider:   providerName,
		ExternalID: id,
		FullName:   provider.StringField(raw, "name"),
		Email:      provider.StringField(raw, "email"),
		AvatarURL:  provider.NestedField(raw, "picture", "data", "url"),
	}, nil
}

// Strategy authenticates against the Facebook Graph API.
type Strategy struct {
	oauthConfig *oauth2.Config
}

func New(clientID, clientSecret, redirectURL string) (*Strategy, error) {
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("facebook oauth config missing required fields")
	}

	return &Strategy{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     facebookep.Endpoint,
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
		return nil, fmt.Errorf("facebook token exchange failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userinfoURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.oauthConfig.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("facebook userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("facebook userinfo returned status %d", resp.StatusCode)
	}

	var raw auth.RawProfile
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("facebook userinfo decode failed: %w", err)
	}

	return raw, nil
}
