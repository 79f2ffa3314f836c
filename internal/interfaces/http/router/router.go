package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alamait/backend/internal/infrastructure/auth"
	"github.com/alamait/backend/internal/infrastructure/config"
	"github.com/alamait/backend/internal/infrastructure/logger"
	"github.com/alamait/backend/internal/interfaces/http/handler"
	"github.com/alamait/backend/internal/interfaces/http/middleware"
)

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	System      *handler.SystemHandler
	Account     *handler.AccountHandler
	Ledger      *handler.LedgerHandler
	Accrual     *handler.AccrualHandler
	Report      *handler.ReportHandler
	Vendor      *handler.VendorHandler
	Lease       *handler.LeaseHandler
	Payment     *handler.PaymentHandler
	Installment *handler.InstallmentHandler
}

// New builds the gin engine with all middleware and routes mounted.
// jwtService may be nil to disable authentication (development only).
func New(cfg *config.Config, log *zap.Logger, jwtService *auth.JWTService, h Handlers) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.HTTP.TrustedProxies)
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Secure(),
		middleware.CORS(&cfg.HTTP),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)
	if jwtService != nil {
		engine.Use(middleware.JWTAuth(jwtService))
	}

	engine.GET("/health", h.System.Health)
	engine.GET("/ready", h.System.Ready)

	v1 := engine.Group("/api/v1")

	accounts := v1.Group("/accounts")
	{
		accounts.POST("", h.Account.Create)
		accounts.GET("", h.Account.List)
		accounts.GET("/next-code", h.Account.NextCode)
		accounts.GET("/code/:code", h.Account.GetByCode)
		accounts.GET("/:id", h.Account.Get)
		accounts.PUT("/:id", h.Account.Update)
		accounts.DELETE("/:id", h.Account.Deactivate)
	}

	transactions := v1.Group("/transactions")
	{
		transactions.POST("", h.Ledger.Post)
		transactions.GET("", h.Ledger.List)
		transactions.GET("/:transactionId", h.Ledger.Get)
		transactions.POST("/:transactionId/reverse", h.Ledger.Reverse)
	}

	accruals := v1.Group("/accruals")
	{
		accruals.POST("/leases/:leaseId", h.Accrual.AccrueLease)
		accruals.POST("/bulk", h.Accrual.BulkAccrue)
		accruals.POST("/:transactionId/reverse", h.Accrual.Reverse)
		accruals.GET("/summary", h.Accrual.Summary)
	}

	reports := v1.Group("/reports")
	{
		reports.GET("/balance-sheet", h.Report.BalanceSheet)
		reports.GET("/student-receivables", h.Report.StudentReceivables)
		reports.GET("/trial-balance", h.Report.TrialBalance)
		reports.GET("/accounts/:code/balance", h.Report.AccountBalance)
		reports.GET("/cash-flow", h.Report.MonthlyCashFlow)
		reports.GET("/cash-flow/accounts/:code", h.Report.AccountTransactionDetails)
		reports.GET("/income-statement", h.Report.IncomeStatement)
	}

	vendors := v1.Group("/vendors")
	{
		vendors.POST("", h.Vendor.Create)
		vendors.GET("", h.Vendor.List)
		vendors.POST("/expenses", h.Vendor.RecordExpense)
		vendors.POST("/settlements", h.Vendor.Settle)
		vendors.POST("/sync-balances", h.Vendor.SyncBalances)
		vendors.POST("/:id/sync-balance", h.Vendor.SyncBalance)
		vendors.GET("/:id", h.Vendor.Get)
		vendors.DELETE("/:id", h.Vendor.Deactivate)
	}

	leases := v1.Group("/leases")
	{
		leases.POST("", h.Lease.Create)
		leases.GET("", h.Lease.List)
		leases.GET("/:id", h.Lease.Get)
		leases.POST("/:id/sign", h.Lease.Sign)
		leases.POST("/:id/activate", h.Lease.Activate)
		leases.POST("/:id/expire", h.Lease.Expire)
		leases.POST("/:id/cancel", h.Lease.Cancel)
	}

	payments := v1.Group("/payments")
	{
		payments.POST("", h.Payment.Record)
		payments.GET("/:id", h.Payment.Get)
	}
	v1.GET("/students/:studentId/payments", h.Payment.ListByStudent)

	installments := v1.Group("/installments")
	{
		installments.POST("", h.Installment.Request)
		installments.POST("/pay", h.Installment.Pay)
		installments.GET("/:planId", h.Installment.GetPlan)
		installments.POST("/:planId/installments/:installmentId/fail", h.Installment.Fail)
		installments.POST("/:planId/installments/:installmentId/cancel", h.Installment.Cancel)
	}
	v1.GET("/monthly-requests/:requestId/installments", h.Installment.ListForRequest)

	return engine
}
