package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking-engine/internal/config"
	"github.com/iliyamo/hotel-booking-engine/internal/database"
	"github.com/iliyamo/hotel-booking-engine/internal/handler"
	"github.com/iliyamo/hotel-booking-engine/internal/middleware"
	"github.com/iliyamo/hotel-booking-engine/internal/queue"
	"github.com/iliyamo/hotel-booking-engine/internal/repository"
	"github.com/iliyamo/hotel-booking-engine/internal/router"
)

func main() {
	// .env is optional; real deployments pass the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs rate limiting and the availability cache.  A missing
	// Redis degrades both to no-ops rather than failing startup.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and response cache disabled")
	}

	staffRepo := repository.NewStaffRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	roomRepo := repository.NewRoomRepo(db)
	roomTypeRepo := repository.NewRoomTypeRepo(db)
	guestRepo := repository.NewGuestRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	assignmentRepo := repository.NewAssignmentRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)
	transferRepo := repository.NewTransferRepo(db)
	housekeepingRepo := repository.NewHousekeepingRepo(db)
	auditRepo := repository.NewAuditRepo(db)

	authHandler := handler.NewAuthHandler(cfg, staffRepo, tokenRepo)
	bookingHandler := handler.NewBookingHandler(cfg, bookingRepo, assignmentRepo, roomRepo,
		guestRepo, paymentRepo, transferRepo, housekeepingRepo, auditRepo)
	roomHandler := handler.NewRoomHandler(cfg, roomRepo, roomTypeRepo, assignmentRepo,
		housekeepingRepo, auditRepo)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	var cacheMW echo.MiddlewareFunc
	if rdb != nil {
		cacheMW = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterBooking(e, bookingHandler, roomHandler, cfg.JWTSecret, cacheMW)

	// Background consumer turning committed domain events into
	// notification log lines.  It reconnects forever on its own.
	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, hotel=%d)", addr, cfg.Env, cfg.HotelID)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
