package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"8080"`

	// BaseURL is the externally visible origin used to build OAuth
	// redirect URLs, e.g. https://kanban.example.com
	BaseURL  string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	LoginURL string `env:"LOGIN_URL" envDefault:"/login"`

	TokenSecret    string        `env:"TOKEN_SECRET"`
	TokenTTL       time.Duration `env:"TOKEN_TTL" envDefault:"168h"`
	VerifyCacheTTL time.Duration `env:"TOKEN_VERIFY_CACHE_TTL" envDefault:"1h"`

	SecureIDSalt string `env:"SECURE_ID_SALT"`

	CacheBackend  string `env:"CACHE_BACKEND" envDefault:"memory"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	DatabaseDSN string `env:"DATABASE_DSN"`

	BoardServiceURL string `env:"BOARD_SERVICE_URL"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.TokenSecret == "" {
		return Config{}, fmt.Errorf("TOKEN_SECRET is required")
	}
	if cfg.SecureIDSalt == "" {
		return Config{}, fmt.Errorf("SECURE_ID_SALT is required")
	}
	if cfg.DatabaseDSN == "" {
		return Config{}, fmt.Errorf("DATABASE_DSN is required")
	}
	if cfg.CacheBackend == "redis" && cfg.RedisAddr == "" {
		return Config{}, fmt.Errorf("REDIS_ADDR is required when CACHE_BACKEND=redis")
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("TOKEN_TTL must be positive")
	}

	return cfg, nil
}

// ProviderCredentials reads {PROVIDER}_CLIENT_ID / {PROVIDER}_CLIENT_SECRET
// for the given provider name. Absent credentials disable the provider,
// they are never an error.
func ProviderCredentials(name string) (clientID, clientSecret string) {
	key := strings.ToUpper(name)
	return os.Getenv(key + "_CLIENT_ID"), os.Getenv(key + "_CLIENT_SECRET")
}

// RedirectURL builds the callback URL registered with the provider.
func (c Config) RedirectURL(provider string) string {
	return strings.TrimSuffix(c.BaseURL, "/") + "/auth/" + provider + "/callback"
}
