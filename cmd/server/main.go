package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"parsegate/internal/config"
	"parsegate/internal/database"
	"parsegate/internal/handlers"
	"parsegate/internal/parser"
	"parsegate/internal/repositories"
	"parsegate/internal/services"
	"parsegate/internal/store"
)

func main() {
	ctx := context.Background()

	godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connections
	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to create redis client: %v", err)
	}
	defer redisClient.Close()

	postgresPool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create postgres pool: %v", err)
	}
	defer postgresPool.Close()

	// Storage
	kv := store.NewRedisStore(redisClient)
	devices := repositories.NewStoreDeviceRepository(kv)
	sessions := repositories.NewStoreSessionRepository(kv)
	audit := repositories.NewPostgresAuditRepository(postgresPool)

	// Services
	registry := services.NewRegistryService(devices, cfg.MasterSecret)
	limiter := services.NewRateLimiter(kv, cfg.RateLimitPerMinute)
	verifier := services.NewSignatureVerifier(registry, cfg.SignatureWindow)
	tokens := services.NewTokenIssuer(cfg.TokenSecret)
	auth := services.NewAuthService(
		registry, limiter, verifier, sessions,
		cfg.AdminPasswordHash, cfg.JWTSecret, cfg.JWTExpiry,
	)

	router := handlers.NewRouter(handlers.Deps{
		Auth:     auth,
		Registry: registry,
		Tokens:   tokens,
		Parser:   parser.NewHTTPParser(cfg.ParserURL, cfg.ParserModel),
		Audit:    audit,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Starting server on port %s", cfg.ServerPort)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// graceful shutdown
	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-sigChan:
		case <-gctx.Done():
			return gctx.Err()
		}

		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server stopped gracefully")
}
