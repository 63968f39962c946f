package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/entity"
	"github.com/ignatzorin/shiftboard-backend/internal/logger"
	"github.com/ignatzorin/shiftboard-backend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.SetOutput(io.Discard)
}

type errorBody struct {
	Success bool `json:"success"`
	Error   struct {
		Code string `json:"code"`
	} `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body.Error.Code
}

func TestRateLimitMiddleware_BlocksAfterLimit(t *testing.T) {
	store, closeStore, err := NewRateLimitStore(context.Background(), "")
	require.NoError(t, err)
	defer func() { _ = closeStore() }()

	r := gin.New()
	r.Use(RateLimitMiddleware(store, 2, time.Minute))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "RATE_LIMITED", decodeError(t, w))
}

func TestNewRateLimitStore_BadRedisURL(t *testing.T) {
	_, _, err := NewRateLimitStore(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestAuthAndRoles(t *testing.T) {
	tokens := service.NewTokenManager("middleware-test-secret", time.Hour)

	r := gin.New()
	r.Use(AuthMiddleware(tokens))
	r.GET("/admin", RequireRoles(entity.RoleAdmin), func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		require.True(t, ok)
		c.String(http.StatusOK, actor.UserID.String())
	})

	issue := func(role entity.Role) string {
		actor := entity.Actor{UserID: uuid.New(), Role: role}
		if role == entity.RoleOrganization {
			actor.OrganizationID = uuid.New()
		}
		token, _, err := tokens.Issue(actor)
		require.NoError(t, err)
		return token
	}
	call := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("missing header", func(t *testing.T) {
		w := call("")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, w))
	})

	t.Run("garbage token", func(t *testing.T) {
		w := call("Bearer nope")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong role", func(t *testing.T) {
		w := call("Bearer " + issue(entity.RoleOrganization))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "FORBIDDEN", decodeError(t, w))
	})

	t.Run("admin passes", func(t *testing.T) {
		w := call("Bearer " + issue(entity.RoleAdmin))
		assert.Equal(t, http.StatusOK, w.Code)
		_, err := uuid.Parse(w.Body.String())
		assert.NoError(t, err)
	})
}

func TestUUIDValidator(t *testing.T) {
	r := gin.New()
	r.GET("/things/:id", UUIDValidator("id"), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/things/123", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", decodeError(t, w))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/things/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
