package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_dragonpay/internal/cache"
	"github.com/GTDGit/gtd_dragonpay/internal/config"
	"github.com/GTDGit/gtd_dragonpay/internal/database"
	"github.com/GTDGit/gtd_dragonpay/internal/handler"
	"github.com/GTDGit/gtd_dragonpay/internal/middleware"
	"github.com/GTDGit/gtd_dragonpay/internal/repository"
	"github.com/GTDGit/gtd_dragonpay/internal/service"
	"github.com/GTDGit/gtd_dragonpay/internal/sse"
	"github.com/GTDGit/gtd_dragonpay/internal/utils"
	"github.com/GTDGit/gtd_dragonpay/internal/worker"
	"github.com/GTDGit/gtd_dragonpay/pkg/dragonpay"
)

// main is the application entrypoint for the GTD Dragonpay gateway service.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	utils.SetJWTSecret(cfg.JWTSecret)
	log.Info().Str("env", cfg.Env).Bool("sandbox", cfg.Dragonpay.Sandbox).Msg("starting gtd dragonpay")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	statusCache := cache.NewStatusCache(redisClient, cfg.Worker.StatusCacheTTL, cfg.Worker.FinalStatusCacheTTL)

	// 4. Initialize Dragonpay client
	opts := []dragonpay.Option{
		dragonpay.WithHTTPClient(&http.Client{Timeout: cfg.Dragonpay.RequestTimeout}),
	}
	if cfg.Dragonpay.Sandbox {
		opts = append(opts, dragonpay.WithSandbox())
	}
	opts = append(opts, dragonpay.WithBaseURL(cfg.Dragonpay.BaseURL))
	dpClient := dragonpay.NewClient(cfg.Dragonpay.MerchantID, cfg.Dragonpay.MerchantPassword, opts...)
	gateway := dragonpay.NewTransaction(dpClient)
	log.Info().Str("base_url", dpClient.BaseURL()).Msg("Dragonpay client initialized")

	// 5. Initialize repositories
	trxRepo := repository.NewTransactionRepository(db)
	postbackRepo := repository.NewPostbackRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)

	// 6. Initialize services
	sseHub := sse.NewHub()
	dragonpaySvc := service.NewDragonpayService(gateway, trxRepo, postbackRepo, statusCache, cfg.Dragonpay.Sandbox)
	dragonpaySvc.SetNotifier(sse.NewHubNotifier(sseHub))

	adminAuthSvc := service.NewAdminAuthService(adminRepo)
	if err := adminAuthSvc.EnsureAdmin(cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name); err != nil {
		log.Warn().Err(err).Msg("failed to seed bootstrap admin")
	}

	// 7. Initialize handlers
	handlers := &Handlers{
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"database": db,
			"redis":    handler.PingFunc(redisClient.Ping),
		}, cfg.Dragonpay.Sandbox),
		Dragonpay:        handler.NewDragonpayHandler(dragonpaySvc),
		Webhook:          handler.NewWebhookHandler(dragonpaySvc),
		AdminTransaction: handler.NewAdminTransactionHandler(dragonpaySvc),
		Auth:             handler.NewAuthHandler(adminAuthSvc),
		SSE:              handler.NewSSEHandler(sseHub),
	}

	// 8. Initialize middleware
	jwtMw := middleware.NewJWTMiddleware()
	loginLimiter := middleware.NewLoginRateLimiter(5, time.Minute)

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, jwtMw, loginLimiter)

	// 10. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 11. Start workers
	go loginLimiter.Cleanup(5*time.Minute, ctx.Done())
	go worker.NewStatusCheckWorker(
		dragonpaySvc,
		cfg.Worker.StatusCheckInterval,
		cfg.Worker.StatusCheckStaleAfter,
		cfg.Worker.StatusCheckMaxAge,
	).Start(ctx)

	// 12. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 14. Cancel context to stop workers
	cancel()

	// 15. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health           *handler.HealthHandler
	Dragonpay        *handler.DragonpayHandler
	Webhook          *handler.WebhookHandler
	AdminTransaction *handler.AdminTransactionHandler
	Auth             *handler.AuthHandler
	SSE              *handler.SSEHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware, loginLimiter *middleware.LoginRateLimiter) {
	// Dragonpay postback; the gateway may use either GET or POST.
	router.GET("/webhook/dragonpay", handlers.Webhook.HandleDragonpayPostback)
	router.POST("/webhook/dragonpay", handlers.Webhook.HandleDragonpayPostback)

	router.GET("/v1/health", handlers.Health.GetHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Code tables and digest check
	dp := router.Group("/v1/dragonpay")
	{
		dp.GET("/codes/status/:code", handlers.Dragonpay.GetStatus)
		dp.GET("/codes/error/:code", handlers.Dragonpay.GetError)
		dp.GET("/codes/cancellation/:code", handlers.Dragonpay.GetCancellationStatus)
		dp.POST("/verify", handlers.Dragonpay.Verify)
	}

	// Admin routes
	admin := router.Group("/v1/admin")
	admin.POST("/auth/login", loginLimiter.Handle(), handlers.Auth.Login)
	// SSE validates its token from the query string
	admin.GET("/sse", handlers.SSE.Stream)
	admin.Use(jwtMiddleware.Handle())
	{
		admin.POST("/payments", handlers.AdminTransaction.CreatePayment)
		admin.GET("/transactions", handlers.AdminTransaction.ListTransactions)
		admin.GET("/transactions/:txnid", handlers.AdminTransaction.GetTransaction)
		admin.GET("/transactions/:txnid/postbacks", handlers.AdminTransaction.GetPostbacks)
		admin.GET("/transactions/:txnid/urls", handlers.AdminTransaction.GetURLs)
		admin.POST("/transactions/:txnid/inquire", handlers.AdminTransaction.Inquire)
		admin.POST("/transactions/:txnid/cancel", handlers.AdminTransaction.Cancel)
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
