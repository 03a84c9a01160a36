package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"    // .env loading for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/homestay-booking/internal/booking"
	"github.com/iliyamo/homestay-booking/internal/config"
	"github.com/iliyamo/homestay-booking/internal/database"
	"github.com/iliyamo/homestay-booking/internal/handler"
	"github.com/iliyamo/homestay-booking/internal/queue"
	"github.com/iliyamo/homestay-booking/internal/repository"
	"github.com/iliyamo/homestay-booking/internal/router"
	queue_publisher "github.com/iliyamo/homestay-booking/internal/service"
)

func main() {
	// Load .env when present; real deployments set variables directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	listings := repository.NewListingRepo(db)
	bookings := repository.NewBookingRepo(db)

	// Booking core: availability index, lifecycle machine and sweeper
	// all hang off this service.  Status events go to RabbitMQ.
	svc := booking.NewService(
		bookings,
		listings,
		queue_publisher.New(),
		time.Duration(cfg.PendingTTLHours)*time.Hour,
	)

	// Expiry sweeper: cancels bookings that sat in PENDING for too
	// long.  Runs until the process exits.
	go booking.RunSweepLoop(context.Background(), svc, time.Duration(cfg.SweepIntervalMin)*time.Minute)

	// Booking event consumer: writes confirmations/cancellations to
	// logs/booking.log.  Reconnects on broker failure.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	// Redis backs the public response cache and rate limiter; nil
	// degrades both to pass-through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; cache and rate limiting disabled")
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewPublicHandler(listings, svc), rdb)
	router.RegisterGuest(e, handler.NewGuestHandler(svc), cfg.JWTSecret)
	router.RegisterHost(e, handler.NewHostListingHandler(listings), handler.NewHostHandler(svc), cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(svc), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
