package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/entity"
	"github.com/ignatzorin/shiftboard-backend/internal/http/middleware"
	"github.com/ignatzorin/shiftboard-backend/internal/interface/http/response"
)

// getActor достаёт пользователя из контекста; при отсутствии сам отвечает 401.
func getActor(c *gin.Context) (entity.Actor, bool) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Unauthorized(c, "требуется авторизация")
		return entity.Actor{}, false
	}
	return actor, true
}

// paramUUID разбирает параметр пути; при ошибке отвечает 400.
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "некорректный "+name)
		return uuid.Nil, false
	}
	return id, true
}

// clock подменяется в тестах.
type clock func() time.Time

func systemClock() time.Time { return time.Now() }
