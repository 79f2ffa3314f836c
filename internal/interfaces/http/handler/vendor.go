package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appaccounting "github.com/alamait/backend/internal/application/accounting"
	appresidence "github.com/alamait/backend/internal/application/residence"
	"github.com/alamait/backend/internal/interfaces/http/middleware"
)

// VendorHandler exposes vendor and accounts-payable endpoints
type VendorHandler struct {
	BaseHandler
	vendors *appresidence.VendorService
	sync    *appaccounting.VendorSyncService
}

// NewVendorHandler creates a new VendorHandler
func NewVendorHandler(
	vendors *appresidence.VendorService,
	sync *appaccounting.VendorSyncService,
	log *zap.Logger,
) *VendorHandler {
	return &VendorHandler{
		BaseHandler: NewBaseHandler(log),
		vendors:     vendors,
		sync:        sync,
	}
}

// Create handles POST /api/v1/vendors
func (h *VendorHandler) Create(c *gin.Context) {
	var req appresidence.CreateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	vendor, err := h.vendors.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, vendor)
}

// Get handles GET /api/v1/vendors/:id
func (h *VendorHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid vendor id")
		return
	}
	vendor, err := h.vendors.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, vendor)
}

// List handles GET /api/v1/vendors
func (h *VendorHandler) List(c *gin.Context) {
	vendors, err := h.vendors.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, vendors)
}

// RecordExpense handles POST /api/v1/vendors/expenses
func (h *VendorHandler) RecordExpense(c *gin.Context) {
	var req appresidence.RecordVendorExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.CreatedBy = middleware.Username(c)

	entry, err := h.vendors.RecordExpense(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// Settle handles POST /api/v1/vendors/settlements
func (h *VendorHandler) Settle(c *gin.Context) {
	var req appresidence.SettleVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.CreatedBy = middleware.Username(c)

	entry, err := h.vendors.Settle(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// Deactivate handles DELETE /api/v1/vendors/:id
func (h *VendorHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid vendor id")
		return
	}
	if err := h.vendors.Deactivate(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"deactivated": true})
}

// SyncBalances handles POST /api/v1/vendors/sync-balances.
// It reconciles every vendor's cached balance with its payable account.
func (h *VendorHandler) SyncBalances(c *gin.Context) {
	result, err := h.sync.SyncVendorBalances(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SyncBalance handles POST /api/v1/vendors/:id/sync-balance
func (h *VendorHandler) SyncBalance(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid vendor id")
		return
	}
	result, err := h.sync.SyncVendorBalance(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
