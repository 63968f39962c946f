package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/entity"
	"github.com/ignatzorin/shiftboard-backend/internal/interface/http/response"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
	"github.com/ignatzorin/shiftboard-backend/internal/service"
)

// ContextActorKey - ключ вызывающего пользователя в gin.Context.
const ContextActorKey = "actor"

// AuthMiddleware проверяет JWT access токен и кладёт entity.Actor в контекст.
func AuthMiddleware(tokens *service.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			response.Abort(c, apperror.ErrCodeUnauthorized, "требуется авторизация")
			return
		}

		actor, err := tokens.ParseAccess(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			response.Abort(c, apperror.ErrCodeUnauthorized, "токен невалиден")
			return
		}

		c.Set(ContextActorKey, actor)
		c.Next()
	}
}

// ActorFromContext возвращает пользователя, установленного AuthMiddleware.
func ActorFromContext(c *gin.Context) (entity.Actor, bool) {
	value, exists := c.Get(ContextActorKey)
	if !exists {
		return entity.Actor{}, false
	}
	actor, ok := value.(entity.Actor)
	return actor, ok
}

// RequireRoles пропускает только перечисленные роли.
func RequireRoles(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		if !ok {
			response.Abort(c, apperror.ErrCodeUnauthorized, "требуется авторизация")
			return
		}
		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		c.Abort()
		response.Error(c, apperror.ErrForbidden)
	}
}
