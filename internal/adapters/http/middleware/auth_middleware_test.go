package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"task-rbac/internal/infrastructure/auth"
)

type stubVerifier struct {
	sub string
	err error
}

func (s stubVerifier) Verify(context.Context, string) (string, error) { return s.sub, s.err }

func runAuth(t *testing.T, mw echo.MiddlewareFunc, header, value string) (*httptest.ResponseRecorder, string, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var subject string
	called := false
	h := mw(func(c echo.Context) error {
		called = true
		subject, _ = c.Get(auth.SubjectKey).(string)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, subject, called
}

func TestAuthMiddleware_NoneTrustsDevHeader(t *testing.T) {
	mw, err := AuthMiddleware(ModeNone, nil)
	require.NoError(t, err)

	_, subject, called := runAuth(t, mw, DevUserHeader, "user-1")
	assert.True(t, called)
	assert.Equal(t, "user-1", subject)

	_, subject, called = runAuth(t, mw, "", "")
	assert.True(t, called)
	assert.Empty(t, subject)
}

func TestAuthMiddleware_JWTUsesVerifier(t *testing.T) {
	mw, err := AuthMiddleware(ModeJWT, stubVerifier{sub: "user-7"})
	require.NoError(t, err)

	_, subject, called := runAuth(t, mw, "Authorization", "Bearer abc.def.ghi")
	assert.True(t, called)
	assert.Equal(t, "user-7", subject)
}

func TestAuthMiddleware_RejectsBadTokens(t *testing.T) {
	mw, err := AuthMiddleware(ModeCognito, stubVerifier{err: errors.New("expired")})
	require.NoError(t, err)

	rec, _, called := runAuth(t, mw, "Authorization", "Bearer abc.def.ghi")
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _, called = runAuth(t, mw, "", "")
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _, called = runAuth(t, mw, "Authorization", "Basic dXNlcjpwYXNz")
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_RequiresVerifier(t *testing.T) {
	mw, err := AuthMiddleware(ModeCognito, nil)
	assert.Nil(t, mw)
	assert.Error(t, err)
}

func TestParseAuthMode(t *testing.T) {
	mode, err := ParseAuthMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeNone, mode)

	mode, err = ParseAuthMode(" JWT ")
	require.NoError(t, err)
	assert.Equal(t, ModeJWT, mode)

	_, err = ParseAuthMode("api_key")
	assert.Error(t, err)
}
