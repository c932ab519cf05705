package main

import (
	"time"
	"webauthn_ms/config"
	"webauthn_ms/controller"
	"webauthn_ms/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Server struct {
	AuthController    controller.IAuthController
	PasskeyController controller.IPasskeyController
	Logger            *zap.Logger
}

// NOTE: Server Constructor
func NewServer(
	AuthController controller.IAuthController,
	PasskeyController controller.IPasskeyController,
	Logger *zap.Logger,
) *Server {
	return &Server{
		AuthController:    AuthController,
		PasskeyController: PasskeyController,
		Logger:            Logger,
	}
}

// NOTE: Start Fiber Server
func (s *Server) Start() *fiber.App {
	// NOTE: Initialize Fiber Server
	app := fiber.New()

	app.Use(middleware.RecoveryMiddleware(s.Logger))
	app.Use(middleware.LoggingMiddleware(s.Logger))

	// NOTE: Define API paths (context path and grouping by version)
	contextPath := app.Group(config.Conf.Application.Server.ContextPath)
	apiVersion := contextPath.Group(config.Conf.Application.Server.ApiVersion)

	authGroup := apiVersion.Group("/auth")
	authGroup.Post("/login", middleware.RouteRateLimiter(10, time.Minute), s.AuthController.LoginLocal)

	webauthnGroup := apiVersion.Group("/webauthn")
	// Registration requires a signed-in principal; the new key is bound to it.
	webauthnGroup.Post("/register/begin", middleware.AuthMiddleware(), s.PasskeyController.RegisterBegin)
	webauthnGroup.Post("/register/complete", middleware.AuthMiddleware(), s.PasskeyController.RegisterComplete)
	// Authentication begin is rate limited against credential-list probing.
	webauthnGroup.Post("/authenticate/begin", middleware.RouteRateLimiter(20, time.Minute), s.PasskeyController.AuthenticateBegin)
	webauthnGroup.Post("/authenticate/complete", s.PasskeyController.AuthenticateComplete)
	webauthnGroup.Get("/keys", middleware.AuthMiddleware(), s.PasskeyController.ListKeys)
	webauthnGroup.Delete("/keys/:keyId", middleware.AuthMiddleware(), s.PasskeyController.DeleteKey)
	webauthnGroup.Get("/users-with-keys", middleware.AuthMiddleware(), s.PasskeyController.UsersWithKeys)

	return app
}
