package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/kondarsoft/marketplace/internal/cache"
	"github.com/kondarsoft/marketplace/internal/config"
	"github.com/kondarsoft/marketplace/internal/consultant"
	"github.com/kondarsoft/marketplace/internal/es"
	"github.com/kondarsoft/marketplace/internal/events"
	"github.com/kondarsoft/marketplace/internal/handlers"
	"github.com/kondarsoft/marketplace/internal/identity"
	"github.com/kondarsoft/marketplace/internal/logging"
	"github.com/kondarsoft/marketplace/internal/mail"
	"github.com/kondarsoft/marketplace/internal/store"
	httpserver "github.com/kondarsoft/marketplace/internal/transport/http"
)

const sessionTTL = 30 * 24 * time.Hour

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)
	slog.SetDefault(logger)

	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	redisCache, err := cache.NewRedis(configuration.REDIS_ADDR, configuration.REDIS_PASSWORD)
	if err != nil {
		log.Fatalf("redis init error: %v", err)
	}

	prod := events.NewProducer([]string{configuration.KAFKA_ADDRESS})

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatal(err)
	}

	sender := mail.NewSMTPSender(
		configuration.SMTP_HOST,
		configuration.SMTP_PORT,
		configuration.SMTP_USERNAME,
		configuration.SMTP_PASSWORD,
		configuration.MAIL_FROM,
	)

	var matcher consultant.Matcher
	if configuration.GEMINI_API_KEY != "" {
		m, err := consultant.NewGeminiMatcher(context.Background(), configuration.GEMINI_API_KEY, "")
		if err != nil {
			log.Fatalf("gemini init error: %v", err)
		}
		matcher = m
	} else {
		logger.Warn("GEMINI_API_KEY not set, consultant matching disabled")
	}

	jwtSecret := []byte(configuration.JWT_SECRET)

	wishlistResolver := &identity.Resolver{
		CookieName: "sessionId",
		Salt:       configuration.SESSION_SALT,
		TTL:        sessionTTL,
		Secure:     configuration.Production(),
	}
	cartResolver := &identity.Resolver{
		CookieName: "cartSessionId",
		Salt:       configuration.SESSION_SALT,
		TTL:        sessionTTL,
		Secure:     configuration.Production(),
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), logger)))
			return next(c)
		}
	})

	deps := httpserver.Deps{
		DB: db,
		WishlistHandler: &handlers.WishlistHandler{
			Store:    &store.WishlistStore{DB: db},
			Resolver: wishlistResolver,
			Producer: prod,
		},
		CartHandler: &handlers.CartHandler{
			Store:     &store.CartStore{DB: db},
			Cache:     redisCache,
			Resolver:  cartResolver,
			Producer:  prod,
			JWTSecret: jwtSecret,
		},
		ProductHandler: &handlers.ProductHandler{DB: db},
		AccountHandler: &handlers.AccountHandler{DB: db, Producer: prod},
		ConsultantHandler: &handlers.ConsultantHandler{
			Matcher:      matcher,
			Mail:         sender,
			ContactEmail: configuration.CONTACT_EMAIL,
		},
		SearchHandler: &handlers.SearchHandler{ES: esClient, Index: "product"},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := redisCache.Close(); err != nil {
		log.Printf("redis close error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
