// Sweeper periodically deactivates sessions whose refresh window has lapsed.
// Run it as a sidecar to the server; SWEEP_INTERVAL controls the cadence.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"user-identity-service/internal/audit"
	"user-identity-service/internal/config"
	"user-identity-service/internal/db"
	"user-identity-service/internal/security"
	sessionrepo "user-identity-service/internal/session/repository"
	sessionservice "user-identity-service/internal/session/service"
	userrepo "user-identity-service/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

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

	users := userrepo.NewPostgresRepository(conn, cipher)
	sessions := sessionservice.NewService(sessionrepo.NewPostgresRepository(conn), users, tokens, cfg.RefreshTTL())

	var emitter audit.Emitter = audit.LogEmitter{}
	if brokers := cfg.KafkaBrokersList(); len(brokers) > 0 {
		kafkaEmitter := audit.NewKafkaEmitter(brokers, cfg.AuditKafkaTopic)
		defer kafkaEmitter.Close()
		emitter = kafkaEmitter
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("sweeper: shutting down...")
		cancel()
	}()

	log.Printf("sweeper: running every %s", cfg.SweepEvery())

	ticker := time.NewTicker(cfg.SweepEvery())
	defer ticker.Stop()

	for {
		sweepCtx, sweepCancel := context.WithTimeout(ctx, 30*time.Second)
		swept, err := sessions.SweepExpired(sweepCtx)
		sweepCancel()
		if err != nil {
			log.Printf("sweeper: sweep failed: %v", err)
		} else if swept > 0 {
			log.Printf("sweeper: deactivated %d sessions", swept)
			ev := audit.NewEvent(audit.ActionSessionSweep, "")
			ev.Detail = map[string]string{"swept": strconv.FormatInt(swept, 10)}
			emitter.Emit(ctx, ev)
		}

		select {
		case <-ctx.Done():
			log.Println("sweeper: stopped")
			return
		case <-ticker.C:
		}
	}
}
