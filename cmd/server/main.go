package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	appaccounting "github.com/alamait/backend/internal/application/accounting"
	appresidence "github.com/alamait/backend/internal/application/residence"
	"github.com/alamait/backend/internal/domain/accounting"
	"github.com/alamait/backend/internal/infrastructure/auth"
	"github.com/alamait/backend/internal/infrastructure/cache"
	"github.com/alamait/backend/internal/infrastructure/config"
	"github.com/alamait/backend/internal/infrastructure/logger"
	"github.com/alamait/backend/internal/infrastructure/persistence"
	"github.com/alamait/backend/internal/interfaces/http/handler"
	"github.com/alamait/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting accommodation backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Report cache. Redis is optional; without it reports are computed fresh.
	var reportCache appaccounting.ReportCache = cache.NoopReportCache{}
	if cfg.Reports.CacheEnabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()
		reportCache = cache.NewRedisReportCache(redisClient, cfg.Reports.CacheTTL)
		log.Info("Report cache enabled", zap.Duration("ttl", cfg.Reports.CacheTTL))
	}

	// Repositories
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	entryRepo := persistence.NewGormTransactionEntryRepository(db.DB)
	studentRepo := persistence.NewGormStudentRepository(db.DB)
	leaseRepo := persistence.NewGormLeaseRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	vendorRepo := persistence.NewGormVendorRepository(db.DB)
	planRepo := persistence.NewGormInstallmentPlanRepository(db.DB)

	txManager := persistence.NewGormTransactionManager(db.DB)

	chart := accounting.ChartMap{
		Cash:              cfg.Chart.Cash,
		ReceivableControl: cfg.Chart.ReceivableControl,
		RentalIncome:      cfg.Chart.RentalIncome,
		OwnerCapital:      cfg.Chart.OwnerCapital,
		DefaultExpense:    cfg.Chart.DefaultExpense,
		PayableControl:    cfg.Chart.PayableControl,
	}

	// Refuse to start against a registry missing any mapped account.
	startupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := accounting.EnsureChartAccounts(startupCtx, chart, accountRepo); err != nil {
		cancel()
		log.Fatal("Chart of accounts verification failed", zap.Error(err))
	}
	cancel()
	log.Info("Chart of accounts verified")

	// Application services
	ledgerService := appaccounting.NewLedgerService(entryRepo, accountRepo, txManager, reportCache, log)
	accountService := appaccounting.NewAccountService(accountRepo, entryRepo, txManager, chart, log)
	accrualService := appaccounting.NewAccrualService(leaseRepo, entryRepo, accountRepo, ledgerService, txManager, chart, log)
	balanceSheetService := appaccounting.NewBalanceSheetService(entryRepo, accountRepo, chart, reportCache, log)
	cashFlowService := appaccounting.NewCashFlowService(entryRepo, accountRepo, paymentRepo, chart, reportCache, log)
	vendorSyncService := appaccounting.NewVendorSyncService(vendorRepo, entryRepo, log)
	ledgerService.AddListener(vendorSyncService)

	leaseService := appresidence.NewLeaseService(leaseRepo, studentRepo, log)
	paymentService := appresidence.NewPaymentService(paymentRepo, studentRepo, accountRepo, accrualService, ledgerService, txManager, chart, log)
	vendorService := appresidence.NewVendorService(vendorRepo, accountRepo, ledgerService, txManager, chart, log)
	installmentService := appresidence.NewInstallmentService(planRepo, accountRepo, ledgerService, txManager, chart, log)

	// Authentication is enabled whenever a secret is configured.
	var jwtService *auth.JWTService
	if cfg.JWT.Secret != "" {
		jwtService = auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.TokenExpiration, cfg.JWT.Issuer)
	} else {
		log.Warn("JWT secret not configured, authentication disabled")
	}

	handlers := router.Handlers{
		System:      handler.NewSystemHandler(db, version, log),
		Account:     handler.NewAccountHandler(accountService, log),
		Ledger:      handler.NewLedgerHandler(ledgerService, log),
		Accrual:     handler.NewAccrualHandler(accrualService, log),
		Report:      handler.NewReportHandler(balanceSheetService, cashFlowService, log),
		Vendor:      handler.NewVendorHandler(vendorService, vendorSyncService, log),
		Lease:       handler.NewLeaseHandler(leaseService, log),
		Payment:     handler.NewPaymentHandler(paymentService, log),
		Installment: handler.NewInstallmentHandler(installmentService, log),
	}

	engine := router.New(cfg, log, jwtService, handlers)

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
	log.Info("Server stopped")
}
