package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
	"webauthn_ms/config"
	"webauthn_ms/controller"
	"webauthn_ms/repository"
	"webauthn_ms/services"
	"webauthn_ms/util"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	// DB
	dbConnection *gorm.DB

	// Redis Client
	redisClient *redis.Client

	// Logger
	logger *zap.Logger

	// Repository
	userRepository       repository.IUserRepository
	credentialRepository repository.ICredentialRepository

	// Service
	challengeStore      services.IChallengeStore
	verificationAdapter services.IVerificationAdapter
	jwtService          services.IJWTService
	authService         services.IAuthService
	passkeyService      services.IPasskeyService

	// Controller
	authController    controller.IAuthController
	passkeyController controller.IPasskeyController
}

// NOTE: Service Start
func (s *service) Start() {
	log.Info("Opening database connection...")
	s.dbConnection = config.OpenDatabaseConnection(config.Conf.Application.Datasource.PrimaryURL)
	config.Migrate(config.Conf.Application.Datasource.PrimaryURL)

	log.Info("Opening redis connection...")
	s.redisClient = config.ConnectToRedis(config.Conf.Application.Redis.Host)

	log.Info("Initializing logger...")
	s.logger = config.InitLogger()

	// NOTE: Dependency Injections
	s.DependencyInjection()

	// NOTE: Start Fiber server...
	app := NewServer(s.authController, s.passkeyController, s.logger).Start()

	log.Info("Server starting..")
	// NOTE: Server start with goroutine
	go func() {
		if err := app.Listen(config.Conf.Application.Server.Port); err != nil {
			log.Fatal("Server failed to start")
		}
	}()
	// NOTE: Keep OS signals for graceful shutdown
	s.gracefulShutdown(app)
}

// NOTE: Dependency Injection Operation
func (s *service) DependencyInjection() {
	waConf := config.Conf.Application.WebAuthn

	// NOTE: JWT service configured and initialize...
	s.jwtService = services.NewJWTService(
		[]byte(config.Conf.Application.Security.Secret),
		config.Conf.Application.Security.Issuer,
		time.Duration(config.Conf.Application.Security.TokenValidityInSeconds)*time.Second,
		time.Duration(config.Conf.Application.Security.TokenValidityInSecondsForRememberMe)*time.Second,
	)

	// NOTE: Repositories Injections
	s.userRepository = repository.NewUserRepository()
	s.credentialRepository = repository.NewCredentialRepository()

	// NOTE: Services Injections
	challengeTTL := time.Duration(waConf.ChallengeTTLSeconds) * time.Second
	if challengeTTL <= 0 {
		challengeTTL = 5 * time.Minute
	}
	s.challengeStore = services.NewRedisChallengeStore(s.redisClient, challengeTTL)
	s.verificationAdapter = services.NewVerificationAdapter(waConf.RpDisplayName, time.Duration(waConf.TimeoutMillis)*time.Millisecond)

	// A pinned rp context overrides per-request resolution when both
	// values are configured.
	var pinned *util.RPContext
	if waConf.RpID != "" && waConf.RpOrigin != "" {
		pinned = &util.RPContext{Origin: waConf.RpOrigin, RpID: waConf.RpID}
	}

	s.authService = services.NewAuthService(s.dbConnection, s.userRepository, s.jwtService)
	s.passkeyService = services.NewPasskeyService(
		s.dbConnection,
		s.userRepository,
		s.credentialRepository,
		s.challengeStore,
		s.verificationAdapter,
		s.logger,
		services.ParseSignCountPolicy(waConf.SignCountPolicy),
		pinned,
	)

	// NOTE: Controllers Injections
	s.authController = controller.NewAuthController(s.authService)
	s.passkeyController = controller.NewPasskeyController(s.passkeyService, s.jwtService)
}

// NOTE: Graceful shutdown operation
func (s *service) gracefulShutdown(app *fiber.App) {

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// NOTE:Server Shutdown when keep signal
	<-sigChan
	log.Info("Shutting down server...")
	// NOTE: Creating context with timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// NOTE: Shutdown Fiber server
	if err := app.Shutdown(); err != nil {
		log.Error("error while shutting down app", err)
	}

	// NOTE: Shutdown Database connection
	done := make(chan bool)
	go func() {
		config.CloseDatabaseConnection(s.dbConnection)
		done <- true
	}()

	select {
	case <-ctx.Done():
		log.Error("timeout while shutting down database", ctx.Err())
	case <-done:
		log.Info("database is gracefully shutdown", ctx.Err())
	}
}
