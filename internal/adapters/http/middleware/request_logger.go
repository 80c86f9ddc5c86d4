package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"task-rbac/internal/ports"
)

func RequestLogger(logger ports.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			started := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			duration := time.Since(started)
			ctx := c.Request().Context()
			args := []any{
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"route_pattern", c.Path(),
				"status", c.Response().Status,
				"duration", duration.String(),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			}
			if uid, ok := c.Get("user_id").(string); ok {
				args = append(args, "user_id", uid)
			}
			logger.Info(ctx, "http request", args...)
			return nil
		}
	}
}
