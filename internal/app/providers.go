package app

import (
	"context"
	"fmt"

	"github.com/icebob/kantab-sub001/internal/auth/provider"
	"github.com/icebob/kantab-sub001/internal/auth/provider/facebook"
	"github.com/icebob/kantab-sub001/internal/auth/provider/github"
	"github.com/icebob/kantab-sub001/internal/auth/provider/google"
	"github.com/icebob/kantab-sub001/internal/auth/provider/twitter"
	"github.com/icebob/kantab-sub001/internal/config"
	"github.com/icebob/kantab-sub001/internal/logger"
)

// setupProviders registers the closed provider set and enables every
// provider whose credentials are present and whose strategy builds.
// A provider failing here is disabled, never fatal: the remaining
// providers and the rest of the service keep working.
func setupProviders(ctx context.Context, cfg config.Config) (*provider.Registry, error) {
	registry := provider.NewRegistry()

	builders := []struct {
		desc  provider.Descriptor
		build func(clientID, clientSecret, redirectURL string) (provider.Strategy, error)
	}{
		{google.Descriptor(), func(id, secret, redirect string) (provider.Strategy, error) {
			return google.New(ctx, id, secret, redirect)
		}},
		{github.Descriptor(), func(id, secret, redirect string) (provider.Strategy, error) {
			return github.New(id, secret, redirect)
		}},
		{facebook.Descriptor(), func(id, secret, redirect string) (provider.Strategy, error) {
			return facebook.New(id, secret, redirect)
		}},
		{twitter.Descriptor(), func(id, secret, redirect string) (provider.Strategy, error) {
			return twitter.New(id, secret, redirect)
		}},
	}

	for _, b := range builders {
		if err := registry.Register(b.desc); err != nil {
			return nil, err
		}

		clientID, clientSecret := config.ProviderCredentials(b.desc.Name)
		if clientID == "" || clientSecret == "" {
			registry.Disable(b.desc.Name, fmt.Errorf("credentials not configured"))
			continue
		}

		strategy, err := b.build(clientID, clientSecret, cfg.RedirectURL(b.desc.Name))
		if err != nil {
			registry.Disable(b.desc.Name, err)
			continue
		}

		if err := registry.Enable(strategy); err != nil {
			return nil, err
		}
	}

	logger.Info("auth providers ready", map[string]any{
		"enabled": registry.Enabled(),
	})

	return registry, nil
}
