// Package main runs the escrow sweeper: a small loop that expires
// pending transfers past their claim window. Multiple instances can
// run at once; the conditional expiry transition in the repository
// keeps the sweep idempotent.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kolo/internal/config"
	"kolo/internal/ledger"
	"kolo/internal/repositories"
	"kolo/internal/services/escrow"
	"kolo/internal/services/notification"
	"kolo/internal/services/settlement"
)

func main() {
	config.LoadEnv()

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	pendingRepo := repositories.NewPendingTransferRepository(repositories.DB)
	userRepo := repositories.NewUserRepository(repositories.DB, repositories.CacheService)
	notificationRepo := repositories.NewNotificationRepository(repositories.DB)

	ledgerClient := ledger.NewHTTPClient(
		config.LedgerURL(),
		config.GetDurationEnv("LEDGER_TIMEOUT", 10*time.Second),
	)
	settler := settlement.NewExecutor(
		ledgerClient,
		config.GetDurationEnv("SETTLEMENT_TIMEOUT", 30*time.Second),
	)
	notifier := notification.NewService(notificationRepo, notification.NewSMSMessenger())

	escrowService := escrow.NewService(pendingRepo, userRepo, settler, notifier, config.ClaimWindow())

	interval := config.SweepInterval()
	log.Printf("escrow sweeper starting, interval %s", interval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sweep(ctx, escrowService)
	for {
		select {
		case <-ticker.C:
			sweep(ctx, escrowService)
		case <-ctx.Done():
			log.Println("escrow sweeper stopping")
			return
		}
	}
}

func sweep(ctx context.Context, svc escrow.Service) {
	expired, err := svc.Sweep(ctx)
	if err != nil {
		log.Printf("sweep failed: %v", err)
		return
	}
	if expired > 0 {
		log.Printf("expired %d pending transfers", expired)
	}
}
