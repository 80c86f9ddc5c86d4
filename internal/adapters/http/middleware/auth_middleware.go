package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"task-rbac/internal/infrastructure/auth"
)

type Mode string

const (
	ModeNone    Mode = "none"
	ModeJWT     Mode = "jwt"
	ModeCognito Mode = "cognito"
)

// DevUserHeader carries the caller id when AUTH_MODE=none. Development only.
const DevUserHeader = "X-User-ID"

func ParseAuthMode(raw string) (Mode, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(raw)))
	switch mode {
	case "":
		return ModeNone, nil
	case ModeNone, ModeJWT, ModeCognito:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid auth mode %q", raw)
	}
}

// AuthMiddleware picks the authentication step for mode. verifier is required
// for jwt and cognito.
func AuthMiddleware(mode Mode, verifier auth.Verifier) (echo.MiddlewareFunc, error) {
	switch mode {
	case ModeNone:
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				if uid := strings.TrimSpace(c.Request().Header.Get(DevUserHeader)); uid != "" {
					c.Set(auth.SubjectKey, uid)
				}
				return next(c)
			}
		}, nil
	case ModeJWT, ModeCognito:
		if verifier == nil {
			return nil, fmt.Errorf("a token verifier is required when AUTH_MODE=%s", mode)
		}
		return auth.Middleware(verifier), nil
	default:
		return nil, errors.New("invalid auth mode")
	}
}
