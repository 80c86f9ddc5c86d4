package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// SubjectKey is the echo context key holding the authenticated user id.
const SubjectKey = "user_id"

var ErrInvalidToken = errors.New("invalid token")

// Verifier checks a bearer token and returns its subject.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

func subject(claims jwt.MapClaims) (string, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// token subject under SubjectKey.
func Middleware(v Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing authorization token"})
			}
			scheme, tokenString, ok := strings.Cut(authHeader, " ")
			tokenString = strings.TrimSpace(tokenString)
			if !ok || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid authorization token"})
			}
			sub, err := v.Verify(c.Request().Context(), tokenString)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}
			c.Set(SubjectKey, sub)
			return next(c)
		}
	}
}
