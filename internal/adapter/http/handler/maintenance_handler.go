package handler

import (
	"webhook-dispatch-service/internal/adapter/http/dto"
	"webhook-dispatch-service/internal/core/ports"
	"webhook-dispatch-service/pkg/apperror"
	"webhook-dispatch-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// MaintenanceHandler handles retry sweep and retention endpoints.
type MaintenanceHandler struct {
	retrySvc ports.RetryService
}

// NewMaintenanceHandler creates a new MaintenanceHandler.
func NewMaintenanceHandler(retrySvc ports.RetryService) *MaintenanceHandler {
	return &MaintenanceHandler{retrySvc: retrySvc}
}

// Sweep handles POST /internal/v1/retries/sweep.
func (h *MaintenanceHandler) Sweep(c *gin.Context) {
	stats, err := h.retrySvc.ProcessRetries(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.SweepResponse{
		Scanned:   stats.Scanned,
		Delivered: stats.Delivered,
		Retrying:  stats.Retrying,
		Exhausted: stats.Exhausted,
		Skipped:   stats.Skipped,
	})
}

// Prune handles POST /internal/v1/maintenance/prune.
func (h *MaintenanceHandler) Prune(c *gin.Context) {
	pruned, err := h.retrySvc.PruneDeliveryLogs(c.Request.Context())
	if err != nil {
		response.Error(c, apperror.ErrDatabaseError(err))
		return
	}
	response.OK(c, dto.PruneResponse{Pruned: pruned})
}
