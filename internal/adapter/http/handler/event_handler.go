package handler

import (
	"webhook-dispatch-service/internal/adapter/http/dto"
	"webhook-dispatch-service/internal/core/domain"
	"webhook-dispatch-service/internal/core/ports"
	"webhook-dispatch-service/pkg/apperror"
	"webhook-dispatch-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EventHandler handles event dispatch endpoints.
type EventHandler struct {
	dispatcher ports.DispatcherService
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(dispatcher ports.DispatcherService) *EventHandler {
	return &EventHandler{dispatcher: dispatcher}
}

// DispatchEvent handles POST /internal/v1/events. Delivery runs within the
// request; the response reports the first-attempt outcome per receiver.
// Failed receivers are already queued for retry by the time it returns.
func (h *EventHandler) DispatchEvent(c *gin.Context) {
	var req dto.DispatchEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	orgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		response.Error(c, apperror.ErrInvalidOrganizationID())
		return
	}

	event := domain.EventType(req.Event)
	if !event.Valid() {
		response.Error(c, apperror.ErrUnknownEventType(req.Event))
		return
	}

	outcomes := h.dispatcher.DispatchEvent(c.Request.Context(), orgID, event, req.Data)
	response.Accepted(c, dto.DispatchEventResponse{Event: req.Event, Outcomes: outcomes})
}
