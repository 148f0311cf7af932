package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/shop-backend/internal/auth"
	"github.com/iliyamo/shop-backend/internal/config"
	"github.com/iliyamo/shop-backend/internal/database"
	"github.com/iliyamo/shop-backend/internal/handler"
	"github.com/iliyamo/shop-backend/internal/middleware"
	"github.com/iliyamo/shop-backend/internal/queue"
	"github.com/iliyamo/shop-backend/internal/repository"
	"github.com/iliyamo/shop-backend/internal/router"
	"github.com/iliyamo/shop-backend/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	codec, err := auth.NewCodec(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTTL, cfg.RefreshTTL)
	if err != nil {
		log.Fatalf("jwt: %v", err)
	}

	rdb := config.NewRedisClient()
	var cache auth.TokenCache
	if rdb != nil {
		cache = auth.NewRedisTokenCache(rdb)
	} else {
		// Single-instance fallback: sessions do not survive a restart.
		log.Printf("redis unavailable, using in-memory token cache")
		cache = auth.NewMemoryTokenCache()
	}

	memberRepo := repository.NewMemberRepo(db)
	productRepo := repository.NewProductRepo(db)
	orderRepo := repository.NewOrderRepo(db)

	publisher := queue.NewPublisher(cfg.QueueURL)

	memberSvc := service.NewMemberService(memberRepo, cfg.BcryptCost)
	authSvc := service.NewAuthService(memberRepo, cache, codec)
	productSvc := service.NewProductService(productRepo)
	sellerSvc := service.NewSellerProductService(productRepo)
	orderSvc := service.NewOrderService(orderRepo, publisher)

	go queue.StartOrderConsumer(cfg.QueueURL)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	router.Register(e, router.Handlers{
		Auth:          handler.NewAuthHandler(authSvc, codec),
		Members:       handler.NewMemberHandler(memberSvc),
		Products:      handler.NewProductHandler(productSvc),
		SellerProduct: handler.NewSellerProductHandler(sellerSvc),
		Orders:        handler.NewOrderHandler(orderSvc),
		Authenticate:  middleware.Authenticate(codec, cache, memberRepo),
		RateLimit: middleware.NewTokenBucket(middleware.RateLimit{
			Enabled:        cfg.RateLimitEnabled,
			Capacity:       cfg.RateLimitCapacity,
			RefillInterval: time.Minute,
			TTL:            10 * time.Minute,
		}, rdb),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
