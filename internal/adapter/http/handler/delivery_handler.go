package handler

import (
	"strconv"

	"webhook-dispatch-service/internal/adapter/http/dto"
	"webhook-dispatch-service/internal/core/domain"
	"webhook-dispatch-service/internal/core/ports"
	"webhook-dispatch-service/pkg/apperror"
	"webhook-dispatch-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DeliveryHandler handles delivery log inspection endpoints.
type DeliveryHandler struct {
	logs ports.DeliveryLogRepository
}

// NewDeliveryHandler creates a new DeliveryHandler.
func NewDeliveryHandler(logs ports.DeliveryLogRepository) *DeliveryHandler {
	return &DeliveryHandler{logs: logs}
}

// List handles GET /internal/v1/organizations/:id/deliveries.
func (h *DeliveryHandler) List(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrInvalidOrganizationID())
		return
	}

	params := ports.DeliveryListParams{OrganizationID: orgID}
	if s := c.Query("status"); s != "" {
		status := domain.DeliveryStatus(s)
		switch status {
		case domain.DeliveryStatusPending, domain.DeliveryStatusDelivered,
			domain.DeliveryStatusRetrying, domain.DeliveryStatusFailed:
			params.Status = &status
		default:
			response.Error(c, apperror.Validation("unknown delivery status "+strconv.Quote(s)))
			return
		}
	}
	if e := c.Query("event"); e != "" {
		event := domain.EventType(e)
		if !event.Valid() {
			response.Error(c, apperror.ErrUnknownEventType(e))
			return
		}
		params.Event = &event
	}
	params.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	params.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}

	logs, total, err := h.logs.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, apperror.ErrDatabaseError(err))
		return
	}

	items := make([]dto.DeliveryLogResponse, 0, len(logs))
	for i := range logs {
		items = append(items, dto.ToDeliveryLogResponse(&logs[i]))
	}
	response.OK(c, dto.ListDeliveriesResponse{
		Items:    items,
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
	})
}

// Get handles GET /internal/v1/deliveries/:id.
func (h *DeliveryHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrDeliveryLogNotFound())
		return
	}

	l, err := h.logs.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, apperror.ErrDatabaseError(err))
		return
	}
	if l == nil {
		response.Error(c, apperror.ErrDeliveryLogNotFound())
		return
	}
	response.OK(c, dto.ToDeliveryLogResponse(l))
}
