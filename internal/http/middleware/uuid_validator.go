package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/shiftboard-backend/internal/interface/http/response"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

// UUIDValidator проверяет, что параметр пути является валидным UUID.
// Использование: shifts.GET("/:id", UUIDValidator("id"), h.Get)
func UUIDValidator(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := uuid.Parse(c.Param(paramName)); err != nil {
			response.Abort(c, apperror.ErrCodeBadRequest, "параметр "+paramName+" должен быть валидным UUID")
			return
		}
		c.Next()
	}
}
