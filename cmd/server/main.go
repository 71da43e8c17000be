package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kasszapont/backend/internal/config"
	"kasszapont/backend/internal/gateway"
	"kasszapont/backend/internal/httpapi"
	"kasszapont/backend/internal/inventory"
	"kasszapont/backend/internal/sequence"
	"kasszapont/backend/internal/service"
	"kasszapont/backend/internal/store"
	"kasszapont/backend/internal/store/memory"
	pgstore "kasszapont/backend/internal/store/postgres"
)

func main() {
	cfg := config.Load()
	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatalf("invalid security configuration: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo store.Repository
	closers := make([]func() error, 0, 2)

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres unavailable (%v) and DATABASE_URL is set; refusing to start with in-memory fallback", err)
		}
		repo = pg
		closers = append(closers, pg.Close)
		log.Println("repository: postgres")
	} else {
		repo = memory.NewSeeded(cfg.TenantID)
		log.Println("repository: in-memory")
	}

	var seq sequence.Sequencer = sequence.NewCounter(repo, cfg.SequencePrefix)
	if cfg.RedisAddr != "" {
		redisSeq := sequence.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SequencePrefix)
		if err := redisSeq.Ping(ctx); err != nil {
			log.Printf("redis unavailable (%v), using repository counter for transaction numbers", err)
		} else {
			seq = redisSeq
			closers = append(closers, redisSeq.Close)
			log.Println("sequencer: redis")
		}
	} else {
		log.Println("sequencer: repository counter")
	}

	var cardGateway gateway.CardGateway
	if cfg.GatewayBaseURL != "" {
		cardGateway = gateway.NewClient(cfg.GatewayBaseURL, cfg.GatewayAPIKey, time.Duration(cfg.GatewayTimeoutSeconds)*time.Second)
		log.Println("card gateway: http")
	} else {
		cardGateway = gateway.NewMock()
		log.Println("card gateway: mock (CARD_GATEWAY_URL not set)")
	}

	svc := service.New(repo, seq, cardGateway, inventory.New(repo))
	auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, svc)
	api := httpapi.New(svc, auth, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("sales engine listening on %s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("server stopped")
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if cfg.GatewayBaseURL != "" && cfg.GatewayAPIKey == "" {
		return fmt.Errorf("CARD_GATEWAY_API_KEY must be set when CARD_GATEWAY_URL is configured")
	}
	return nil
}
