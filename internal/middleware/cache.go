package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/collective-recitation/internal/config"
)

// bodyRecorder buffers the JSON body a handler writes so it can be
// stored after the response went out. Capped so an oversized payload
// simply skips the cache instead of bloating Redis.
type bodyRecorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	limit  int
}

func (r *bodyRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	if r.buf.Len()+len(b) <= r.limit {
		r.buf.Write(b)
	} else {
		r.buf.Reset()
		r.limit = 0
	}
	return r.ResponseWriter.Write(b)
}

func cacheKey(prefix string, c echo.Context) string {
	sum := sha1.Sum([]byte(c.Path() + "?" + c.Request().URL.RawQuery))
	return fmt.Sprintf("%s:%x", prefix, sum)
}

// CacheJSON serves GET responses for the wrapped route from Redis for
// the configured TTL. Only 200 JSON bodies are cached. A nil client
// or disabled config turns the middleware into a pass-through, and a
// Redis error on the read path falls through to the handler.
func CacheJSON(rdb *redis.Client, cfg config.CacheConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if rdb == nil || !cfg.Enabled || c.Request().Method != http.MethodGet {
				return next(c)
			}
			key := cacheKey(cfg.Prefix, c)

			ctx, cancel := context.WithTimeout(c.Request().Context(), 500*time.Millisecond)
			cached, err := rdb.Get(ctx, key).Bytes()
			cancel()
			if err == nil && len(cached) > 0 {
				return c.JSONBlob(http.StatusOK, cached)
			}

			rec := &bodyRecorder{
				ResponseWriter: c.Response().Writer,
				status:         http.StatusOK,
				limit:          cfg.MaxBodyBytes,
			}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				return err
			}
			if rec.status == http.StatusOK && rec.buf.Len() > 0 {
				setCtx, setCancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
				_ = rdb.Set(setCtx, key, rec.buf.Bytes(), cfg.TTL).Err()
				setCancel()
			}
			return nil
		}
	}
}
