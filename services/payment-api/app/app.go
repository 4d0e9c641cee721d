package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/novabank/payportal/pkg"
	"github.com/novabank/payportal/pkg/cache"
	"github.com/novabank/payportal/pkg/database"
	middleware "github.com/novabank/payportal/pkg/middlewares"
	"github.com/novabank/payportal/pkg/repositories"
	"github.com/novabank/payportal/pkg/utils"
	"github.com/novabank/payportal/services/payment-api/configs"
	"github.com/novabank/payportal/services/payment-api/internal/auth"
	"github.com/novabank/payportal/services/payment-api/internal/gateway"
	"github.com/novabank/payportal/services/payment-api/internal/handlers"
	"github.com/novabank/payportal/services/payment-api/internal/services"
	"go.uber.org/zap"
)

// NewApp wires dependencies, builds the Gin engine, and returns an *http.Server and a cleanup func.
// It reads configuration from environment variables via configs.Load.
func NewApp(ctx context.Context, logger *zap.Logger) (*http.Server, func(), error) {
	// Load config
	cfg, err := configs.Load(logger)
	if err != nil {
		return nil, nil, err
	}
	aesKey, err := utils.DecodeString(cfg.AesKey)
	if err != nil {
		return nil, nil, err
	}

	// Initialize postgres db
	dbConfig := database.Config{
		PrimaryDSN:  cfg.PrimaryDbAddr,
		ReplicaDSNs: []string{cfg.ReplicaDbAddr},
		MaxConns:    cfg.MaxDbCons,
		MinConns:    cfg.MinDbCons,
	}
	db, disconnect, err := database.New(ctx, logger, dbConfig)
	if err != nil {
		return nil, nil, err
	}

	// Run migrations on primary
	if err := database.RunMigrations(logger, cfg.PrimaryDbAddr); err != nil {
		disconnect()
		return nil, nil, err
	}

	// Redis backs the per-IP rate limiters across replicas
	redisClient, closeRedis, err := cache.New(ctx, cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		disconnect()
		return nil, nil, err
	}

	window := cfg.RateLimitWindow.Seconds()
	generalLimiter := pkg.NewDistributedLimiter(redisClient, "payment_api:general",
		float64(cfg.RateLimitMax)/window, cfg.RateLimitMax, cfg.RateLimitWindow, logger)
	loginLimiter := pkg.NewDistributedLimiter(redisClient, "payment_api:login",
		float64(cfg.RateLimitLoginMax)/window, cfg.RateLimitLoginMax, cfg.RateLimitWindow, logger)

	// Gateway redirect builder; nil disables the integration
	var builder *gateway.Builder
	if cfg.GatewayEnabled {
		builder = gateway.NewBuilder(cfg.GatewayConfig(), utils.NewHTTPClient())
		logger.Info("payment gateway enabled", zap.String("process_url", cfg.PfProcessURL))
	} else {
		logger.Warn("payment gateway disabled; payments are stored without a redirect")
	}

	// Setup dependencies
	baseHandler := handlers.NewBaseHandler(logger)
	publisher := services.NewNotificationPublisher(logger, ctx, cfg)

	tokens := auth.NewTokenManager(cfg.JwtSecret, cfg.JwtIssuer, cfg.JwtTTL)
	userRepo := repositories.NewUserRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)

	authService := services.NewAuthService(logger, db, userRepo, tokens, aesKey)
	identityService := services.NewIdentityService(logger, userRepo)
	paymentService := services.NewPaymentService(logger, db, paymentRepo, publisher, builder)
	reviewService := services.NewReviewService(logger, paymentRepo, identityService)

	authHandler := handlers.NewAuthHandler(logger, authService)
	paymentHandler := handlers.NewPaymentHandler(logger, paymentService, identityService, reviewService, builder)

	// Router
	r := gin.Default()

	api := r.Group("/api/v1")
	api.Use(middleware.TraceID())
	api.Use(middleware.Metrics())
	api.Use(middleware.RateLimit(generalLimiter))

	authHandler.RegisterRoutes(api, middleware.RateLimit(loginLimiter))
	paymentHandler.RegisterRoutes(api, auth.Authenticate(tokens), auth.RequireRole(pkg.RoleEmployee))
	baseHandler.RegisterRoutes(r)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	cleanup := func() {
		// close db pools
		disconnect()
		// close redis client
		closeRedis()
		// close kafka producer
		publisher.Close()
	}

	return srv, cleanup, nil
}
