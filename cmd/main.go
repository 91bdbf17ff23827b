package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/weiawesome/wes-io-social/internal/avatar"
	"github.com/weiawesome/wes-io-social/internal/config"
	"github.com/weiawesome/wes-io-social/internal/domain"
	"github.com/weiawesome/wes-io-social/internal/graph"
	"github.com/weiawesome/wes-io-social/internal/handler"
	"github.com/weiawesome/wes-io-social/internal/hub"
	"github.com/weiawesome/wes-io-social/internal/mailer"
	"github.com/weiawesome/wes-io-social/internal/notification"
	"github.com/weiawesome/wes-io-social/internal/repository"
	"github.com/weiawesome/wes-io-social/internal/service"
	"github.com/weiawesome/wes-io-social/internal/verification"
	"github.com/weiawesome/wes-io-social/pkg/database"
	"github.com/weiawesome/wes-io-social/pkg/jwt"
	pkglog "github.com/weiawesome/wes-io-social/pkg/log"
	"github.com/weiawesome/wes-io-social/pkg/middleware"
	"github.com/weiawesome/wes-io-social/pkg/pubsub"
	"github.com/weiawesome/wes-io-social/pkg/storage"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// 2. Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty || cfg.Log.Level == "debug",
		ServiceName: "wes-io-social",
	})
	logger := pkglog.L()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Init DB (GORM, auto-migrate every model)
	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db, domain.Models()...); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("database migration completed")

	// 4. Init Redis client when a component needs it
	useRedisCodes := cfg.Verification.Backend == "redis"
	useCountsCache := cfg.Graph.CountsCacheTTL > 0

	var redisClient *redis.Client
	if useRedisCodes || useCountsCache {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.Redis.Address).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}

	// 5. Init pub/sub: activity bus and delivery fan-out
	busPS, err := pubsub.NewPubSub(cfg.Bus)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create activity bus")
	}
	defer busPS.Close()

	deliveryPS, err := pubsub.NewPubSub(cfg.Delivery)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create delivery pubsub")
	}
	defer deliveryPS.Close()
	logger.Info().Str("bus", cfg.Bus.Driver).Str("delivery", cfg.Delivery.Driver).Msg("pubsub ready")

	// 6. Create repositories, services and background workers
	userRepo := repository.NewGormUserRepository(db)
	graphRepo := repository.NewGormGraphRepository(db)
	postRepo := repository.NewGormPostRepository(db)
	commentRepo := repository.NewGormCommentRepository(db)
	likeRepo := repository.NewGormLikeRepository(db)
	listRepo := repository.NewGormListRepository(db)
	notificationRepo := repository.NewGormNotificationRepository(db)

	tokens, err := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL, cfg.Auth.Issuer)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create token manager")
	}

	objects, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to create storage")
	}

	activity := notification.NewBus(busPS)

	var counts graph.CountsCache
	if useCountsCache {
		counts = graph.NewRedisCountsCache(redisClient, cfg.Graph.CountsCacheTTL)
	}
	socialGraph := graph.New(userRepo, graphRepo, activity, counts)

	var codeStore verification.CodeStore
	var reaper *verification.Reaper
	if useRedisCodes {
		codeStore = verification.NewRedisStore(redisClient)
	} else {
		gormStore := verification.NewGormStore(db)
		codeStore = gormStore
		reaper = verification.NewReaper(gormStore, cfg.Verification.TTL, cfg.Verification.ReapInterval)
		reaper.Start(ctx)
		logger.Info().Dur("interval", cfg.Verification.ReapInterval).Msg("verification reaper started")
	}
	codes := verification.NewService(codeStore, userRepo, mailer.NewLogMailer(), cfg.Verification.TTL)

	authSvc := service.NewAuthService(userRepo, codes, tokens, cfg.Auth.BcryptCost)
	userSvc := service.NewUserService(userRepo, socialGraph, avatar.NewProcessor(objects, cfg.Avatar.Config))
	postSvc := service.NewPostService(postRepo, commentRepo, likeRepo, listRepo, userRepo, socialGraph)
	commentSvc := service.NewCommentService(commentRepo, postRepo, likeRepo, userRepo, socialGraph, activity)
	listSvc := service.NewListService(listRepo, postRepo, socialGraph)

	wsHub := hub.NewHub()
	relay := hub.NewRelay(deliveryPS, wsHub)
	if err := relay.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to start delivery relay")
	}

	notificationSvc := notification.NewService(notificationRepo, userRepo, socialGraph, relay, cfg.Notification)
	events, err := activity.Subscribe(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to subscribe to activity bus")
	}
	notificationSvc.Start(ctx, events)
	logger.Info().Int("workers", cfg.Notification.Workers).Msg("notification service started")

	// 7. Setup Gin router
	authMiddleware := middleware.NewAuthMiddleware(tokens)
	httpHandler := handler.NewHandler(handler.Services{
		Auth:          authSvc,
		Users:         userSvc,
		Posts:         postSvc,
		Comments:      commentSvc,
		Lists:         listSvc,
		Notifications: notificationSvc,
	}, authMiddleware, handler.Config{
		CookieDomain:   cfg.Auth.CookieDomain,
		CookieSecure:   cfg.Auth.CookieSecure,
		MaxAvatarBytes: cfg.Avatar.MaxBytes,
	})
	wsHandler := handler.NewWSHandler(wsHub, authMiddleware, cfg.WebSocket)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))

	handler.RegisterHealth(r)
	if cfg.Storage.Driver == "" || cfg.Storage.Driver == "local" {
		r.Static(cfg.Storage.Local.BaseURL, cfg.Storage.Local.BasePath)
	}
	httpHandler.RegisterRoutes(r)
	wsHandler.RegisterRoutes(r)

	// 8. Start server goroutine
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logger.Info().Str("addr", addr).Msg("wes-io-social starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// 9. Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutdown signal received")

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		// Drain HTTP first so no new events are published.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("HTTP server forced to shutdown")
		}

		cancel()

		if reaper != nil {
			reaper.Stop()
			<-reaper.Done()
		}
		<-notificationSvc.Done()
		<-relay.Done()
	}()

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	select {
	case <-shutdownDone:
		logger.Info().Msg("wes-io-social stopped")
	case <-time.After(timeout):
		logger.Warn().Dur("timeout", timeout).Msg("shutdown timed out")
	}
}
