package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/cinema-back-office/internal/config"     // Internal config loader
	"github.com/iliyamo/cinema-back-office/internal/database"   // MySQL connection helper
	"github.com/iliyamo/cinema-back-office/internal/handler"    // HTTP handlers
	"github.com/iliyamo/cinema-back-office/internal/mailer"     // SMTP mailer
	"github.com/iliyamo/cinema-back-office/internal/middleware" // Redis cache and rate limiting
	"github.com/iliyamo/cinema-back-office/internal/queue"      // RabbitMQ booking consumer
	"github.com/iliyamo/cinema-back-office/internal/repository" // Data access layer
	"github.com/iliyamo/cinema-back-office/internal/router"     // Route registration
	"github.com/iliyamo/cinema-back-office/internal/schedule"   // Clock and scheduling validator
	"github.com/iliyamo/cinema-back-office/internal/service"    // Transactional services
	"github.com/iliyamo/cinema-back-office/internal/tmdb"       // TMDB lookup client
)

func main() {
	// Load a local .env file when present.  In containers the variables come
	// from the environment directly and the missing file is not an error.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	// Connect to MySQL.  The application cannot run without its database, so
	// a failure here is fatal.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// The clock pins every date the API accepts or renders to the cinema's
	// own zone.  An unknown zone name is a configuration error.
	clock, err := schedule.NewClock(cfg.TimeZone)
	if err != nil {
		log.Fatalf("clock: %v", err)
	}
	validator := schedule.NewValidator(clock, cfg.SessionBufferMin)

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	halls := repository.NewHallRepo(db)
	movies := repository.NewMovieRepo(db)
	sessions := repository.NewSessionRepo(db)
	bookings := repository.NewBookingRepo(db)
	catalog := repository.NewCatalogRepo(db)
	stats := repository.NewStatsRepo(db)

	// Services own the transactions; repositories never commit.
	sessionSvc := service.NewSessionService(db, sessions, halls, movies, catalog, clock, validator)
	bookingSvc := service.NewBookingService(db, sessions, halls, movies, bookings, clock)

	// Outbound integrations.  Both degrade gracefully: without SMTP
	// credentials letters are logged instead of sent, and without a TMDB key
	// lookups return ErrDisabled.
	mail := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	tmdbClient := tmdb.New(cfg.TMDBBaseURL, cfg.TMDBKey)

	// Redis backs the response cache and the distributed rate limiter.  A
	// nil client simply disables both middlewares.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable: response cache and rate limiting disabled")
	}
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	// Start the background consumer that mails booking confirmations and
	// appends them to logs/booking.log.  It reconnects on its own, so the
	// HTTP server does not wait for the broker.
	go func() {
		if err := queue.StartBookingConsumer(mail); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	e := echo.New()   // Create Echo instance
	e.Use(limiter)    // Rate limit every route, keyed by ip/user/route
	e.HideBanner = true

	router.RegisterRoutes(e) // Health check
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens, mail), cfg.JWTSecret)
	router.RegisterCatalog(e, handler.NewCatalogHandler(catalog, halls), cache)
	router.RegisterMovies(e, handler.NewMovieHandler(sessionSvc, movies, sessions, catalog, tmdbClient, clock), cfg.JWTSecret, cache)
	router.RegisterSessions(e, handler.NewSessionHandler(sessionSvc, sessions, halls, bookings, catalog, clock), cfg.JWTSecret, cache)
	router.RegisterBookings(e, handler.NewBookingHandler(bookingSvc, users), cfg.JWTSecret)
	router.RegisterStats(e, handler.NewStatsHandler(stats, clock), cfg.JWTSecret)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
