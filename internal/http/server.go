package http

import (
	"context"
	stdhttp "net/http"

	"user-service/internal/auth"
	"user-service/internal/authz"
	"user-service/internal/config"
	"user-service/internal/http/handler"
	"user-service/internal/http/middleware"
	"user-service/internal/repository"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

const (
	jsonKeyStatus    = "status"
	statusOK         = "ok"
	requestBodyLimit = "1M"
)

type ServerDependencies struct {
	Config         *config.Config
	UserRepo       repository.UserRepository
	AuthMiddleware *auth.Middleware
	Engine         *authz.Engine
}

type Server struct {
	echo *echo.Echo
	deps *ServerDependencies
}

func NewServer(deps *ServerDependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = CustomHTTPErrorHandler

	e.Server.ReadTimeout = deps.Config.Server.ReadTimeout
	e.Server.WriteTimeout = deps.Config.Server.WriteTimeout

	// Request ID middleware (first, so all logs have request ID)
	e.Use(middleware.RequestID())
	e.Use(middleware.SecurityHeaders())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.BodyLimit(requestBodyLimit))

	e.GET("/health", healthCheck)

	userHandler := handler.NewUserHandler(deps.UserRepo, deps.Engine, deps.Config.App.PageSize)
	rateLimiter := middleware.NewGlobalRateLimiter()

	api := e.Group(deps.Config.Server.BasePath)
	users := api.Group("/users")
	users.Use(deps.AuthMiddleware.Authenticate())
	users.Use(rateLimiter.Middleware())

	users.GET("", userHandler.List)
	users.POST("", userHandler.Create)
	users.GET("/:id", userHandler.Get)
	users.PATCH("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	return &Server{echo: e, deps: deps}
}

func healthCheck(c echo.Context) error {
	return c.JSON(stdhttp.StatusOK, map[string]string{jsonKeyStatus: statusOK})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.echo.Start(":" + s.deps.Config.Server.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
