package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appresidence "github.com/alamait/backend/internal/application/residence"
	"github.com/alamait/backend/internal/interfaces/http/middleware"
)

// InstallmentHandler exposes installment plan endpoints
type InstallmentHandler struct {
	BaseHandler
	installments *appresidence.InstallmentService
}

// NewInstallmentHandler creates a new InstallmentHandler
func NewInstallmentHandler(installments *appresidence.InstallmentService, log *zap.Logger) *InstallmentHandler {
	return &InstallmentHandler{
		BaseHandler:  NewBaseHandler(log),
		installments: installments,
	}
}

// Request handles POST /api/v1/installments
func (h *InstallmentHandler) Request(c *gin.Context) {
	var req appresidence.RequestInstallmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	plan, err := h.installments.RequestInstallment(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, plan)
}

// Pay handles POST /api/v1/installments/pay
func (h *InstallmentHandler) Pay(c *gin.Context) {
	var req appresidence.PayInstallmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.CreatedBy = middleware.Username(c)

	plan, err := h.installments.PayInstallment(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plan)
}

// Fail handles POST /api/v1/installments/:planId/installments/:installmentId/fail
func (h *InstallmentHandler) Fail(c *gin.Context) {
	h.mutate(c, h.installments.FailInstallment)
}

// Cancel handles POST /api/v1/installments/:planId/installments/:installmentId/cancel
func (h *InstallmentHandler) Cancel(c *gin.Context) {
	h.mutate(c, h.installments.CancelInstallment)
}

// GetPlan handles GET /api/v1/installments/:planId
func (h *InstallmentHandler) GetPlan(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("planId"))
	if err != nil {
		h.BadRequest(c, "invalid plan id")
		return
	}
	plan, err := h.installments.GetPlan(c.Request.Context(), planID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plan)
}

// ListForRequest handles GET /api/v1/monthly-requests/:requestId/installments
func (h *InstallmentHandler) ListForRequest(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("requestId"))
	if err != nil {
		h.BadRequest(c, "invalid monthly request id")
		return
	}
	plans, err := h.installments.ListPlansForRequest(c.Request.Context(), requestID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plans)
}

type installmentMutation func(ctx context.Context, planID, installmentID uuid.UUID) (*appresidence.InstallmentPlanResponse, error)

func (h *InstallmentHandler) mutate(c *gin.Context, apply installmentMutation) {
	planID, err := uuid.Parse(c.Param("planId"))
	if err != nil {
		h.BadRequest(c, "invalid plan id")
		return
	}
	installmentID, err := uuid.Parse(c.Param("installmentId"))
	if err != nil {
		h.BadRequest(c, "invalid installment id")
		return
	}
	plan, err := apply(c.Request.Context(), planID, installmentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plan)
}
