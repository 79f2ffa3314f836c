package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appaccounting "github.com/alamait/backend/internal/application/accounting"
)

const dateLayout = "2006-01-02"

// ReportHandler exposes financial reporting endpoints
type ReportHandler struct {
	BaseHandler
	balanceSheets *appaccounting.BalanceSheetService
	cashFlows     *appaccounting.CashFlowService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(
	balanceSheets *appaccounting.BalanceSheetService,
	cashFlows *appaccounting.CashFlowService,
	log *zap.Logger,
) *ReportHandler {
	return &ReportHandler{
		BaseHandler:   NewBaseHandler(log),
		balanceSheets: balanceSheets,
		cashFlows:     cashFlows,
	}
}

// BalanceSheet handles GET /api/v1/reports/balance-sheet
func (h *ReportHandler) BalanceSheet(c *gin.Context) {
	asOf, ok := h.dateQuery(c, "as_of", time.Now())
	if !ok {
		return
	}
	residenceID, ok := h.residenceQuery(c)
	if !ok {
		return
	}
	report, err := h.balanceSheets.GetBalanceSheet(c.Request.Context(), asOf, residenceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// StudentReceivables handles GET /api/v1/reports/student-receivables
func (h *ReportHandler) StudentReceivables(c *gin.Context) {
	asOf, ok := h.dateQuery(c, "as_of", time.Now())
	if !ok {
		return
	}
	residenceID, ok := h.residenceQuery(c)
	if !ok {
		return
	}
	report, err := h.balanceSheets.GetStudentReceivables(c.Request.Context(), asOf, residenceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// TrialBalance handles GET /api/v1/reports/trial-balance
func (h *ReportHandler) TrialBalance(c *gin.Context) {
	asOf, ok := h.dateQuery(c, "as_of", time.Now())
	if !ok {
		return
	}
	report, err := h.balanceSheets.GetTrialBalance(c.Request.Context(), asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// AccountBalance handles GET /api/v1/reports/accounts/:code/balance
func (h *ReportHandler) AccountBalance(c *gin.Context) {
	asOf, ok := h.dateQuery(c, "as_of", time.Now())
	if !ok {
		return
	}
	balance, err := h.balanceSheets.GetAccountBalance(c.Request.Context(), c.Param("code"), asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// MonthlyCashFlow handles GET /api/v1/reports/cash-flow
func (h *ReportHandler) MonthlyCashFlow(c *gin.Context) {
	year, ok := h.intQuery(c, "year", time.Now().Year())
	if !ok {
		return
	}
	residenceID, ok := h.residenceQuery(c)
	if !ok {
		return
	}
	basis := appaccounting.CashFlowBasis(c.Query("basis"))
	report, err := h.cashFlows.GetMonthlyCashFlow(c.Request.Context(), year, basis, residenceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// AccountTransactionDetails handles GET /api/v1/reports/cash-flow/accounts/:code.
// It drills a monthly cash-flow cell down to the entries behind it.
func (h *ReportHandler) AccountTransactionDetails(c *gin.Context) {
	year, ok := h.intQuery(c, "year", time.Now().Year())
	if !ok {
		return
	}
	month, ok := h.intQuery(c, "month", 0)
	if !ok {
		return
	}
	residenceID, ok := h.residenceQuery(c)
	if !ok {
		return
	}
	details, err := h.cashFlows.GetAccountTransactionDetails(
		c.Request.Context(), c.Param("code"), year, month, residenceID, c.Query("source"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, details)
}

// IncomeStatement handles GET /api/v1/reports/income-statement
func (h *ReportHandler) IncomeStatement(c *gin.Context) {
	now := time.Now()
	from, ok := h.dateQuery(c, "from", time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC))
	if !ok {
		return
	}
	to, ok := h.dateQuery(c, "to", now)
	if !ok {
		return
	}
	residenceID, ok := h.residenceQuery(c)
	if !ok {
		return
	}
	report, err := h.cashFlows.GetIncomeStatement(c.Request.Context(), from, to, residenceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

func (h *ReportHandler) dateQuery(c *gin.Context, name string, fallback time.Time) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		h.BadRequest(c, "invalid "+name+" date, expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return parsed, true
}

func (h *ReportHandler) intQuery(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		h.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return parsed, true
}

func (h *ReportHandler) residenceQuery(c *gin.Context) (*uuid.UUID, bool) {
	raw := c.Query("residence_id")
	if raw == "" {
		return nil, true
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		h.BadRequest(c, "invalid residence id")
		return nil, false
	}
	return &parsed, true
}
