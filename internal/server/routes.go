package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/version", s.handleVersion)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Community lifecycle
	s.echo.POST("/api/communities", s.handleEnsureCommunity)
	s.echo.GET("/api/communities/:id", s.handleGetCommunity)
	s.echo.POST("/api/communities/:id/subscription", s.handleActivateSubscription)

	// Content sharing and voting
	s.echo.POST("/api/communities/:id/shares", s.handleShareContent)
	s.echo.GET("/api/interactions/:id", s.handleGetInteraction)
	s.echo.POST("/api/interactions/:id/votes", s.handleCastVote)

	// Stats and leaderboard
	s.echo.GET("/api/communities/:id/leaderboard", s.handleLeaderboard)
	s.echo.GET("/api/communities/:id/users/:user_id/stats", s.handleGetStats)
}
