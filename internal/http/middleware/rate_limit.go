package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/ignatzorin/shiftboard-backend/internal/interface/http/response"
	"github.com/ignatzorin/shiftboard-backend/internal/logger"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

const rateLimitPrefix = "shiftboard:ratelimit"

// NewRateLimitStore возвращает общий redis store, если задан redisURL, иначе память процесса.
// Второе значение закрывает соединение с redis и безопасно для memory store.
func NewRateLimitStore(ctx context.Context, redisURL string) (limiter.Store, func() error, error) {
	if redisURL == "" {
		return memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          rateLimitPrefix,
			CleanUpInterval: limiter.DefaultCleanUpInterval,
		}), func() error { return nil }, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("rate limit: некорректный REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("rate limit: redis недоступен: %w", err)
	}

	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:   rateLimitPrefix,
		MaxRetry: 3,
	})
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("rate limit: не удалось создать redis store: %w", err)
	}
	logger.Log.WithField("addr", opts.Addr).Info("rate limit: используется redis store")
	return store, client.Close, nil
}

// RateLimitMiddleware ограничивает число запросов с одного IP.
func RateLimitMiddleware(store limiter.Store, limit int64, period time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		limit = 60
	}
	if period <= 0 {
		period = time.Minute
	}
	instance := limiter.New(store, limiter.Rate{Period: period, Limit: limit})

	return func(c *gin.Context) {
		lctx, err := instance.Get(c.Request.Context(), c.ClientIP())
		if err != nil {
			// Недоступность хранилища лимитов не должна останавливать API.
			logger.Log.WithError(err).Warn("rate limit: хранилище недоступно, запрос пропущен")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			response.Abort(c, apperror.ErrCodeRateLimited, "слишком много запросов, попробуйте позже")
			return
		}

		c.Next()
	}
}
