package dto

import (
	"webhook-dispatch-service/internal/core/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("event_type", validateEventType)
	}
}

// validateEventType accepts only values from the closed event enumeration.
func validateEventType(fl validator.FieldLevel) bool {
	return domain.EventType(fl.Field().String()).Valid()
}
