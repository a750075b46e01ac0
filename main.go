package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/cohee-app/cache"
	"github.com/yeremiapane/cohee-app/config"
	"github.com/yeremiapane/cohee-app/database"
	"github.com/yeremiapane/cohee-app/kds"
	"github.com/yeremiapane/cohee-app/models"
	"github.com/yeremiapane/cohee-app/router"
	"github.com/yeremiapane/cohee-app/services"
	"github.com/yeremiapane/cohee-app/utils"
)

func main() {
	cfg := config.Load()
	utils.InitLogger(cfg.LogLevel)

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize DB
	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	if err := database.SeedCatalog(db); err != nil {
		utils.ErrorLogger.Printf("Error seeding catalog: %v", err)
	}

	var sessionCache cache.SessionCache = cache.NoopCache{}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := client.Ping(ctx).Err(); err != nil {
			utils.ErrorLogger.Printf("Redis unavailable at %s, session cache disabled: %v", cfg.RedisAddr, err)
		} else {
			sessionCache = cache.NewRedisSessionCache(client, cfg.SessionCacheTTL)
			utils.InfoLogger.Printf("Session cache connected to %s", cfg.RedisAddr)
		}
		cancel()
	}

	policy, err := services.ParsePersistFailurePolicy(cfg.OrderPersistFailure)
	if err != nil {
		utils.ErrorLogger.Printf("%v, using %s", err, services.DropLocally)
		policy = services.DropLocally
	}

	parser := services.NewQRParser(cfg.QRScheme)
	directory := services.NewTableDirectory(db, services.DirectoryOptions{RequireToken: cfg.RequireTableToken})
	sessions := services.NewTableSessionManager(db, sessionCache)
	orders := services.NewOrderService(db)
	payments := services.NewMockPaymentGateway(cfg.PaymentDelay)
	analytics := services.NewAnalyticsService(db)
	hub := kds.NewHub()

	apps := services.NewAppRegistry(func(notifier services.Notifier) *services.AppContext {
		return services.NewAppContext(services.AppContextDeps{
			Parser:    parser,
			Directory: directory,
			Sessions:  sessions,
			Orders:    orders,
			Payments:  payments,
			Notifier:  notifier,
			Policy:    policy,
		})
	})

	// Sesi yang ditinggal terlalu lama dibatalkan otomatis
	sweeper := services.NewSessionSweeper(sessions, cfg.SessionMaxAge)
	sweeper.OnCancel = func(s *models.TableSession) {
		hub.BroadcastSessionClosed(*s)
	}
	sweeper.Devices = apps
	sweeper.DeviceIdle = cfg.DeviceIdleTTL
	if err := sweeper.Start(cfg.SessionSweepInterval); err != nil {
		utils.ErrorLogger.Printf("Session sweeper not started: %v", err)
	} else {
		defer sweeper.Stop()
	}

	r := router.SetupRouter(router.Deps{
		DB:         db,
		JWT:        utils.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL),
		Apps:       apps,
		Parser:     parser,
		Directory:  directory,
		Sessions:   sessions,
		Orders:     orders,
		Analytics:  analytics,
		Hub:        hub,
		CORSOrigin: cfg.CORSOrigin,
		Release:    cfg.GinMode == "release",
	})

	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		utils.ErrorLogger.Printf("Error setting trusted proxies: %v", err)
	}

	utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}
