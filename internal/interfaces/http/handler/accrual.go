package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appaccounting "github.com/alamait/backend/internal/application/accounting"
)

// AccrualHandler exposes rental income accrual endpoints
type AccrualHandler struct {
	BaseHandler
	accruals *appaccounting.AccrualService
}

// NewAccrualHandler creates a new AccrualHandler
func NewAccrualHandler(accruals *appaccounting.AccrualService, log *zap.Logger) *AccrualHandler {
	return &AccrualHandler{
		BaseHandler: NewBaseHandler(log),
		accruals:    accruals,
	}
}

// AccrueLease handles POST /api/v1/accruals/leases/:leaseId
func (h *AccrualHandler) AccrueLease(c *gin.Context) {
	leaseID, err := uuid.Parse(c.Param("leaseId"))
	if err != nil {
		h.BadRequest(c, "invalid lease id")
		return
	}
	entries, err := h.accruals.AccrueRentalIncome(c.Request.Context(), leaseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entries)
}

// BulkAccrue handles POST /api/v1/accruals/bulk
func (h *AccrualHandler) BulkAccrue(c *gin.Context) {
	var req appaccounting.BulkAccrueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.accruals.BulkAccrue(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Reverse handles POST /api/v1/accruals/:transactionId/reverse
func (h *AccrualHandler) Reverse(c *gin.Context) {
	entry, err := h.accruals.ReverseAccrual(c.Request.Context(), c.Param("transactionId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// Summary handles GET /api/v1/accruals/summary
func (h *AccrualHandler) Summary(c *gin.Context) {
	year, residenceID, ok := h.yearAndResidence(c)
	if !ok {
		return
	}
	summary, err := h.accruals.GetAccrualSummary(c.Request.Context(), year, residenceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

func (h *AccrualHandler) yearAndResidence(c *gin.Context) (int, *uuid.UUID, bool) {
	year := time.Now().Year()
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.BadRequest(c, "invalid year")
			return 0, nil, false
		}
		year = parsed
	}
	var residenceID *uuid.UUID
	if raw := c.Query("residence_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "invalid residence id")
			return 0, nil, false
		}
		residenceID = &parsed
	}
	return year, residenceID, true
}
