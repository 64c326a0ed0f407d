package app

import (
	"context"
	"log"

	"user-service/internal/auth"
	"user-service/internal/config"
	ihttp "user-service/internal/http"
	"user-service/internal/repository/postgres"
)

// Service represents the user management gateway application
type Service struct {
	config     *config.Config
	db         *postgres.DB
	tokenCache *auth.RedisTokenCache
	server     *ihttp.Server
}

// NewService creates and initializes a new Service instance
// This is a convenience wrapper around InitializeService
func NewService() (*Service, error) {
	return InitializeService()
}

// Start starts the HTTP server and blocks until it stops.
func (s *Service) Start() error {
	log.Println("Starting user service...")
	return s.server.Start()
}

// Shutdown gracefully shuts down the service and its connections.
func (s *Service) Shutdown(ctx context.Context) error {
	err := s.server.Shutdown(ctx)

	if s.tokenCache != nil {
		if closeErr := s.tokenCache.Close(); err == nil {
			err = closeErr
		}
	}

	s.db.Close()

	return err
}
