package auth

import (
	"github.com/brizzai/image-feed/internal/auth/providers"
	"github.com/brizzai/image-feed/internal/config"
	"github.com/brizzai/image-feed/internal/logger"
	"github.com/brizzai/image-feed/internal/requester"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewTokenStorage picks memory or file storage according to cfg
func NewTokenStorage(cfg *config.StorageConfig) (TokenStorage, error) {
	if cfg.Ephemeral || cfg.TokenFile == "" {
		logger.Debug("Using in-memory token storage")
		return NewMemoryTokenStorage(""), nil
	}
	logger.Debug("Using file token storage", zap.String("path", cfg.TokenFile))
	return NewFileTokenStorage(cfg.TokenFile)
}

// Module provides token storage, the token exchange service and redirect interception
var Module = fx.Module("auth",
	fx.Provide(
		NewTokenStorage,
		func(s TokenStorage) requester.TokenSource { return s },
		fx.Annotate(
			providers.NewUnsplashProvider,
			fx.As(new(providers.Provider)),
		),
		NewService,
		NewInterceptor,
	),
)
