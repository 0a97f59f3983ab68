package controller

import (
	"context"

	"github.com/Freeeeeet/tutor_market/internal/controller/handlers"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const appName = "tutor-market"

type Server struct {
	app      *fiber.App
	handlers *handlers.Handlers
	logger   *zap.Logger
}

func NewServer(sessions handlers.SessionService, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ErrorHandler:          handlers.ErrorHandler(logger),
	})

	s := &Server{
		app:      app,
		handlers: handlers.NewHandlers(sessions, logger),
		logger:   logger,
	}
	s.registerRoutes()

	return s
}

// registerRoutes регистрирует middleware и все маршруты
func (s *Server) registerRoutes() {
	s.app.Use(recover.New())
	s.app.Use(handlers.RequestIDMiddleware())
	s.app.Use(handlers.LoggingMiddleware(s.logger))
	s.app.Use(handlers.PrometheusMiddleware())

	s.app.Get("/health", handlers.Health)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := s.app.Group("/api")

	// Бронирование и жизненный цикл
	api.Post("/book-session", s.handlers.BookSession)
	api.Put("/sessions/:sessionId/accept", s.handlers.AcceptSession)
	api.Put("/sessions/:sessionId/complete", s.handlers.CompleteSession)
	api.Put("/sessions/:sessionId/rate", s.handlers.RateSession)
	api.Delete("/sessions/:sessionId", s.handlers.CancelSession)

	// Чтение
	api.Get("/sessions/:userId", s.handlers.ListSessions)
	api.Get("/sessions-summary/:userId", s.handlers.SessionsSummary)
	api.Get("/teachers", s.handlers.ListTeachers)
}

// App нужен тестам для app.Test
func (s *Server) App() *fiber.App {
	return s.app
}

// Start запускает HTTP-сервер, блокируется до остановки
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting HTTP server...", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown останавливает сервер, дожидаясь активных запросов
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server...")
	return s.app.ShutdownWithContext(ctx)
}
