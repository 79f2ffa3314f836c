package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appaccounting "github.com/alamait/backend/internal/application/accounting"
	"github.com/alamait/backend/internal/interfaces/http/middleware"
)

// LedgerHandler exposes double-entry ledger endpoints
type LedgerHandler struct {
	BaseHandler
	ledger *appaccounting.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledger *appaccounting.LedgerService, log *zap.Logger) *LedgerHandler {
	return &LedgerHandler{
		BaseHandler: NewBaseHandler(log),
		ledger:      ledger,
	}
}

// Post handles POST /api/v1/transactions
func (h *LedgerHandler) Post(c *gin.Context) {
	var req appaccounting.PostTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.CreatedBy = middleware.Username(c)

	entry, err := h.ledger.Post(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// Get handles GET /api/v1/transactions/:transactionId
func (h *LedgerHandler) Get(c *gin.Context) {
	entry, err := h.ledger.GetByTransactionID(c.Request.Context(), c.Param("transactionId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// List handles GET /api/v1/transactions
func (h *LedgerHandler) List(c *gin.Context) {
	var filter appaccounting.EntryListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	entries, total, err := h.ledger.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, entries, total, filter.Page, filter.PageSize)
}

// Reverse handles POST /api/v1/transactions/:transactionId/reverse
func (h *LedgerHandler) Reverse(c *gin.Context) {
	entry, err := h.ledger.Reverse(c.Request.Context(), c.Param("transactionId"), middleware.Username(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}
