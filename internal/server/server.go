package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Quantum-Botworks/tik-dock-bot/internal/config"
	"github.com/Quantum-Botworks/tik-dock-bot/internal/domain"
	apperrors "github.com/Quantum-Botworks/tik-dock-bot/internal/errors"
)

// healthChecker is the minimal dependency surface a backing store needs
// to expose for readiness probes. Either checker may be nil (memory
// mode, rate limiting disabled) and is then skipped.
type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Server struct {
	echo   *echo.Echo
	config *config.Config
	ledger domain.LedgerService

	dbHealth    healthChecker
	redisHealth healthChecker
}

func NewServer(cfg *config.Config, ledger domain.LedgerService, dbHealth, redisHealth healthChecker) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:        e,
		config:      cfg,
		ledger:      ledger,
		dbHealth:    dbHealth,
		redisHealth: redisHealth,
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	slog.Info("starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
