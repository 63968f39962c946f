package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/shiftboard-backend/internal/interface/http/response"
	"github.com/ignatzorin/shiftboard-backend/internal/logger"
)

// ErrorHandler перехватывает паники и ошибки, добавленные через c.Error, если ответ ещё не отправлен.
// Коды AppError отдаются клиенту как есть, остальное маскируется.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Log.WithFields(logrus.Fields{
					"panic":  r,
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				}).Error("паника при обработке запроса")
				if !c.Writer.Written() {
					response.Error(c, fmt.Errorf("panic: %v", r))
				}
				c.Abort()
			}
		}()

		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}
		response.Error(c, c.Errors.Last().Err)
	}
}
