package app

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/icebob/kantab-sub001/internal/access"
	"github.com/icebob/kantab-sub001/internal/accounts"
	"github.com/icebob/kantab-sub001/internal/auth/handler"
	"github.com/icebob/kantab-sub001/internal/auth/linker"
	"github.com/icebob/kantab-sub001/internal/config"
	"github.com/icebob/kantab-sub001/internal/middleware"
	"github.com/icebob/kantab-sub001/internal/secureid"
	"github.com/icebob/kantab-sub001/internal/token"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	tokens, err := token.NewService(cfg.TokenSecret, cfg.TokenTTL, infra.TokenCache)
	if err != nil {
		return nil, nil, err
	}

	codec, err := secureid.New(cfg.SecureIDSalt)
	if err != nil {
		return nil, nil, err
	}

	registry, err := setupProviders(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	accountStore := accounts.NewPostgresStore(infra.DB)
	identityLinker := linker.New(accountStore)
	checker := access.NewChecker(access.NewClient(cfg.BoardServiceURL))

	authHandler := handler.NewHandler(
		registry,
		identityLinker,
		tokens,
		codec,
		checker,
		cfg.LoginURL,
	)

	authMiddleware := middleware.NewAuthMiddleware(tokens)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	// ----------------------------
	// Public Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Protected Routes
	// ----------------------------

	authz := router.Group("/authz")
	authz.Use(middleware.GinRequireAuth(authMiddleware))

	authz.POST("/check", authHandler.AuthzCheck)

	return router, infra.cleanup, nil
}
