package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"user-identity-service/internal/audit"
	"user-identity-service/internal/auth"
	"user-identity-service/internal/authz"
	"user-identity-service/internal/config"
	"user-identity-service/internal/db"
	recoveryrepo "user-identity-service/internal/recovery/repository"
	recoveryservice "user-identity-service/internal/recovery/service"
	"user-identity-service/internal/security"
	"user-identity-service/internal/server"
	sessionrepo "user-identity-service/internal/session/repository"
	sessionservice "user-identity-service/internal/session/service"
	"user-identity-service/internal/telemetry/otel"
	userrepo "user-identity-service/internal/user/repository"
	userservice "user-identity-service/internal/user/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "user-identity-service", cfg.Env != "production")
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	cipher, err := security.NewFieldCipher(cfg.FieldKey())
	if err != nil {
		log.Fatalf("field cipher: %v", err)
	}
	tokens := security.NewTokenProvider([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.AccessTTL())
	hasher := security.NewHasher(cfg.BcryptCost)

	users := userrepo.NewPostgresRepository(conn, cipher)
	sessions := sessionrepo.NewPostgresRepository(conn)
	recovery := recoveryrepo.NewPostgresRepository(conn)

	sessionSvc := sessionservice.NewService(sessions, users, tokens, cfg.RefreshTTL())
	userSvc := userservice.NewService(users, sessionSvc, hasher, tokens)
	recoverySvc := recoveryservice.NewService(recovery, cipher)

	gate := auth.NewGate(tokens, sessionSvc)
	checker, err := authz.NewChecker(ctx)
	if err != nil {
		log.Fatalf("authz: %v", err)
	}

	var emitter audit.Emitter = audit.LogEmitter{}
	if brokers := cfg.KafkaBrokersList(); len(brokers) > 0 {
		kafkaEmitter := audit.NewKafkaEmitter(brokers, cfg.AuditKafkaTopic)
		defer kafkaEmitter.Close()
		emitter = kafkaEmitter
	}

	srv := server.New(gate, checker, userSvc, sessionSvc, recoverySvc, emitter, conn)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
