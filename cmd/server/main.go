package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/tanvichauhan7/fostertails/internal/config"
	"github.com/tanvichauhan7/fostertails/internal/database"
	"github.com/tanvichauhan7/fostertails/internal/handler"
	"github.com/tanvichauhan7/fostertails/internal/middleware"
	"github.com/tanvichauhan7/fostertails/internal/queue"
	"github.com/tanvichauhan7/fostertails/internal/repository"
	"github.com/tanvichauhan7/fostertails/internal/router"
	"github.com/tanvichauhan7/fostertails/internal/service"
)

func main() {
	// Load .env when present; real environments set variables directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	accounts := repository.NewAccountRepo(db)
	pets := repository.NewPetRepo(db)
	ngos := repository.NewNGORepo(db)
	donations := repository.NewDonationRepo(db)

	authH := handler.NewAuthHandler(cfg, accounts)
	petH := handler.NewPetHandler(cfg, pets)
	petH.PublishApproved = service.PublishRequestApproved
	ngoH := handler.NewNGOHandler(cfg, ngos)
	donationH := handler.NewDonationHandler(cfg, donations, ngos)
	donationH.PublishCompleted = service.PublishDonationCompleted

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()

	// Redis is optional; when it is unreachable both middlewares become
	// pass-throughs.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, cache and rate limiting disabled")
	}
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	gate := middleware.SessionAuth(cfg.JWTSecret, accounts)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, gate, limiter)
	router.RegisterPets(e, petH, gate, cache)
	router.RegisterNGOs(e, ngoH, gate, cache)
	router.RegisterDonations(e, donationH, gate)

	// Drain domain events into logs/activity.log in the background.
	go func() {
		if err := queue.StartActivityConsumer(); err != nil {
			log.Printf("activity consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
