// Package routes defines the API routing configuration.
// It wires repositories, services, and handlers together and sets up
// all HTTP routes with their middleware.
package routes

import (
	"time"

	"kolo/internal/config"
	"kolo/internal/handlers"
	"kolo/internal/ledger"
	"kolo/internal/middleware"
	"kolo/internal/models"
	"kolo/internal/repositories"
	"kolo/internal/services/auth"
	"kolo/internal/services/balance"
	"kolo/internal/services/card"
	"kolo/internal/services/escrow"
	"kolo/internal/services/funding"
	"kolo/internal/services/history"
	"kolo/internal/services/notification"
	"kolo/internal/services/orchestrator"
	"kolo/internal/services/reconciliation"
	"kolo/internal/services/settlement"
	"kolo/internal/services/user"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Repositories
	userRepo := repositories.NewUserRepository(db, repositories.CacheService)
	cardRepo := repositories.NewCreditCardRepository(db)
	transferRepo := repositories.NewTransferRepository(db)
	pendingRepo := repositories.NewPendingTransferRepository(db)
	receiptRepo := repositories.NewReceiptRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	reconciliationRepo := repositories.NewReconciliationRepository(db)
	historyRepo := repositories.NewHistoryRepository(db)

	// External clients
	ledgerClient := ledger.NewHTTPClient(
		config.LedgerURL(),
		config.GetDurationEnv("LEDGER_TIMEOUT", 10*time.Second),
	)

	// Services
	balanceService := balance.NewService(ledgerClient)
	cardService := card.NewService(cardRepo)
	fundingService := funding.NewService(balanceService, cardRepo)
	settlementExecutor := settlement.NewExecutor(
		ledgerClient,
		config.GetDurationEnv("SETTLEMENT_TIMEOUT", 30*time.Second),
	)
	notificationService := notification.NewService(notificationRepo, notification.NewSMSMessenger())
	reconciliationService := reconciliation.NewService(reconciliationRepo)
	escrowService := escrow.NewService(
		pendingRepo,
		userRepo,
		settlementExecutor,
		notificationService,
		config.ClaimWindow(),
	)
	orchestratorService := orchestrator.NewService(
		fundingService,
		balanceService,
		cardService,
		ledgerClient,
		settlementExecutor,
		escrowService,
		transferRepo,
		receiptRepo,
		reconciliationService,
		notificationService,
		repositories.CacheService,
	)
	historyService := history.NewService(historyRepo)
	userService := user.NewService(userRepo)
	authService := auth.NewService(userRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, userService)
	paymentHandler := handlers.NewPaymentHandler(orchestratorService, userService, historyService)
	claimHandler := handlers.NewClaimHandler(escrowService, userService)
	cardHandler := handlers.NewCreditCardHandler(cardService)
	balanceHandler := handlers.NewBalanceHandler(balanceService, userService)
	adminHandler := handlers.NewAdminHandler(reconciliationService, escrowService)

	app.Get("/health", handlers.HealthCheck)

	api := app.Group("/api")

	// Public endpoints
	api.Post("/register", authHandler.RegisterUser)
	api.Post("/login", authHandler.LoginUser)
	api.Post("/refresh", authHandler.RefreshToken)

	// Protected endpoints
	authMiddleware := middleware.NewAuthMiddleware(userRepo)
	protected := api.Use(authMiddleware.Handler)

	protected.Post("/logout", authHandler.LogoutUser)
	protected.Post("/change-password",
		middleware.HasPermission(models.PermissionChangePassword),
		authHandler.ChangePassword)

	protected.Post("/payments/send",
		middleware.HasPermission(models.PermissionPaymentWrite),
		paymentHandler.SendPayment)
	protected.Get("/payments/history",
		middleware.HasPermission(models.PermissionHistoryRead),
		paymentHandler.GetHistory)

	protected.Post("/claims/:token", claimHandler.ClaimTransfer)

	protected.Get("/balance", balanceHandler.GetBalance)

	protected.Post("/cards",
		middleware.HasPermission(models.PermissionCreditCardWrite),
		cardHandler.LinkCard)
	protected.Get("/cards",
		middleware.HasPermission(models.PermissionCreditCardRead),
		cardHandler.GetCards)

	// Admin endpoints
	admin := protected.Group("/admin", middleware.AdminAuthMiddleware)
	admin.Get("/reconciliation", adminHandler.ListReconciliationCases)
	admin.Post("/reconciliation/:id/resolve", adminHandler.ResolveReconciliationCase)
	admin.Post("/escrow/sweep", adminHandler.TriggerSweep)
}
