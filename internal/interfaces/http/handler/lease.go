package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appresidence "github.com/alamait/backend/internal/application/residence"
)

// LeaseHandler exposes lease lifecycle endpoints
type LeaseHandler struct {
	BaseHandler
	leases *appresidence.LeaseService
}

// NewLeaseHandler creates a new LeaseHandler
func NewLeaseHandler(leases *appresidence.LeaseService, log *zap.Logger) *LeaseHandler {
	return &LeaseHandler{
		BaseHandler: NewBaseHandler(log),
		leases:      leases,
	}
}

// Create handles POST /api/v1/leases
func (h *LeaseHandler) Create(c *gin.Context) {
	var req appresidence.CreateLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	lease, err := h.leases.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, lease)
}

// Get handles GET /api/v1/leases/:id
func (h *LeaseHandler) Get(c *gin.Context) {
	id, ok := h.leaseID(c)
	if !ok {
		return
	}
	lease, err := h.leases.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lease)
}

// List handles GET /api/v1/leases
func (h *LeaseHandler) List(c *gin.Context) {
	var filter appresidence.LeaseListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	leases, total, err := h.leases.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, leases, total, filter.Page, filter.PageSize)
}

// Sign handles POST /api/v1/leases/:id/sign
func (h *LeaseHandler) Sign(c *gin.Context) {
	h.transition(c, h.leases.Sign)
}

// Activate handles POST /api/v1/leases/:id/activate
func (h *LeaseHandler) Activate(c *gin.Context) {
	h.transition(c, h.leases.Activate)
}

// Expire handles POST /api/v1/leases/:id/expire
func (h *LeaseHandler) Expire(c *gin.Context) {
	h.transition(c, h.leases.Expire)
}

// Cancel handles POST /api/v1/leases/:id/cancel
func (h *LeaseHandler) Cancel(c *gin.Context) {
	h.transition(c, h.leases.Cancel)
}

func (h *LeaseHandler) transition(c *gin.Context, apply func(ctx context.Context, id uuid.UUID) (*appresidence.LeaseResponse, error)) {
	id, ok := h.leaseID(c)
	if !ok {
		return
	}
	lease, err := apply(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lease)
}

func (h *LeaseHandler) leaseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid lease id")
		return uuid.Nil, false
	}
	return id, true
}
