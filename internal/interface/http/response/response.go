package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/lifecycle"
	"github.com/ignatzorin/shiftboard-backend/internal/logger"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

// Response - общий конверт ответа API.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo. Details заполняется для INVALID_TRANSITION: kind, from, to.
type ErrorInfo struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error отдаёт AppError с его кодом; всё остальное маскируется как внутренняя ошибка.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		logger.Log.WithError(err).WithField("path", c.FullPath()).Error("непредвиденная ошибка")
		write(c, http.StatusInternalServerError, &ErrorInfo{
			Code:    string(apperror.ErrCodeInternal),
			Message: "внутренняя ошибка сервера",
		})
		return
	}

	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.Log.WithError(err).WithField("path", c.FullPath()).Error("ошибка обработки запроса")
	}
	write(c, appErr.HTTPStatus, &ErrorInfo{
		Code:    string(appErr.Code),
		Message: appErr.Message,
		Details: transitionDetails(err),
	})
}

// Abort прерывает цепочку middleware ответом с ошибкой.
func Abort(c *gin.Context, code apperror.ErrorCode, message string) {
	c.Abort()
	Error(c, apperror.New(code, message))
}

func BadRequest(c *gin.Context, message string) {
	Error(c, apperror.New(apperror.ErrCodeBadRequest, message))
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, apperror.New(apperror.ErrCodeUnauthorized, message))
}

func transitionDetails(err error) map[string]string {
	var te *lifecycle.TransitionError
	if !errors.As(err, &te) {
		return nil
	}
	return map[string]string{
		"kind": string(te.Kind),
		"from": string(te.From),
		"to":   string(te.To),
	}
}

func write(c *gin.Context, status int, info *ErrorInfo) {
	c.JSON(status, Response{Success: false, Error: info})
}
