package main // Entry point package

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marina-mooring-management/internal/auth"
	"github.com/iliyamo/marina-mooring-management/internal/config"
	"github.com/iliyamo/marina-mooring-management/internal/database"
	"github.com/iliyamo/marina-mooring-management/internal/handler"
	"github.com/iliyamo/marina-mooring-management/internal/logs"
	"github.com/iliyamo/marina-mooring-management/internal/middleware"
	"github.com/iliyamo/marina-mooring-management/internal/queue"
	"github.com/iliyamo/marina-mooring-management/internal/repository"
	"github.com/iliyamo/marina-mooring-management/internal/router"
	"github.com/iliyamo/marina-mooring-management/internal/scheduler"
	queuepublisher "github.com/iliyamo/marina-mooring-management/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set env directly

	logs.Init(logs.Options{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
		File:   os.Getenv("LOG_FILE"),
	})

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	moorings := repository.NewMooringRepo(db)
	yards := repository.NewBoatYardRepo(db)
	orders := repository.NewWorkOrderRepo(db)

	codec := auth.NewCodec(cfg.JWTSecret, auth.Lifetimes{
		Normal:        cfg.NormalTTL,
		Refresh:       cfg.RefreshTTL,
		ResetPassword: cfg.ResetTTL,
	})
	sessions := auth.NewSessionManager(codec, users, tokens)
	scopes := auth.NewScopeBuilder(users)

	rdb := config.NewRedisClient()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID())

	router.Register(e, router.Handlers{
		Auth:       handler.NewAuthHandler(cfg, sessions, users),
		Moorings:   handler.NewMooringHandler(scopes, moorings),
		BoatYards:  handler.NewBoatYardHandler(scopes, yards),
		WorkOrders: handler.NewWorkOrderHandler(scopes, orders, users),
		Users:      handler.NewUserHandler(cfg, scopes, users, sessions),
	},
		middleware.Authenticate(sessions),
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	)

	// Background consumer for notification events. Failure to connect is
	// logged and retried inside the consumer loop, so startup never blocks
	// on the broker being ready.
	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			logs.Logger.WithError(err).Warn("notification consumer stopped")
		}
	}()

	sweep := scheduler.NewDueWorkOrderSweep(
		orders,
		queuepublisher.PublishWorkOrderDue,
		time.Duration(cfg.DueSoonWindowDays)*24*time.Hour,
		cfg.DueSweepInterval,
	)
	go sweep.Run(context.Background())

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
