package app

import (
	"fmt"

	"user-service/internal/auth"
	"user-service/internal/authz"
	"user-service/internal/config"
	ihttp "user-service/internal/http"
	"user-service/internal/repository/postgres"
)

const tokenCachePrefix = "user-service:token:"

// InitializeService wires up all dependencies and returns a configured Service
func InitializeService() (*Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	userRepo := postgres.NewUserRepository(db)

	// Token cache is optional; the gate behaves identically without it.
	var clientOpts []auth.ClientOption
	var tokenCache *auth.RedisTokenCache
	if cfg.Redis.Addr != "" {
		tokenCache, err = auth.NewRedisTokenCache(cfg.Redis.Addr, cfg.Redis.Password, tokenCachePrefix)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		clientOpts = append(clientOpts, auth.WithTokenCache(tokenCache, cfg.Redis.TokenTTL))
	}

	authority := auth.NewAuthorityClient(cfg.Auth.APIURL, cfg.Auth.Timeout, clientOpts...)
	authMiddleware := auth.NewMiddleware(authority)
	engine := authz.New()

	server := ihttp.NewServer(&ihttp.ServerDependencies{
		Config:         cfg,
		UserRepo:       userRepo,
		AuthMiddleware: authMiddleware,
		Engine:         engine,
	})

	return &Service{
		config:     cfg,
		db:         db,
		tokenCache: tokenCache,
		server:     server,
	}, nil
}
