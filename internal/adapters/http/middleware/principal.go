package middleware

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"
	"task-rbac/internal/application"
	"task-rbac/internal/domain"
	"task-rbac/internal/infrastructure/auth"
	"task-rbac/internal/ports"
)

const principalKey = "principal"

type PrincipalResolver interface {
	Resolve(ctx context.Context, userID string) (*domain.User, error)
}

// Principal loads the user behind the authenticated subject. Unknown or
// inactive users continue without a principal so the decision engine denies
// and audits them; lookup failures are logged and do the same.
func Principal(resolver PrincipalResolver, logger ports.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			uid, _ := c.Get(auth.SubjectKey).(string)
			if uid == "" {
				return next(c)
			}
			user, err := resolver.Resolve(ctx, uid)
			switch {
			case err == nil:
				c.Set(principalKey, user)
			case errors.Is(err, domain.ErrUnauthenticated):
				logger.Debug(ctx, "principal not resolved", "user_id", uid, "error", err)
			default:
				logger.Error(ctx, "failed to resolve principal", "user_id", uid, "error", err)
			}
			return next(c)
		}
	}
}

// PrincipalFrom returns the resolved user or nil.
func PrincipalFrom(c echo.Context) *domain.User {
	user, _ := c.Get(principalKey).(*domain.User)
	return user
}

// RequestMeta copies client address and user agent into the request context
// for audit entries.
func RequestMeta() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := application.WithRequestMeta(c.Request().Context(), application.RequestMeta{
				IPAddress: c.RealIP(),
				UserAgent: c.Request().UserAgent(),
			})
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
