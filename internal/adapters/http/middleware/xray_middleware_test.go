package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveTraced(t *testing.T, handler echo.HandlerFunc) (*xray.Segment, int) {
	t.Helper()
	var seg *xray.Segment
	e := echo.New()
	e.Use(echomw.Recover(), XRayMiddleware("test"))
	e.GET("/work", func(c echo.Context) error {
		seg = xray.GetSegment(c.Request().Context())
		return handler(c)
	})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/work", nil))
	require.NotNil(t, seg)
	return seg, rec.Code
}

func TestXRayMiddleware_ClosesSegmentOnPanic(t *testing.T) {
	seg, code := serveTraced(t, func(echo.Context) error { panic("boom") })
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.False(t, seg.InProgress)
}

func TestXRayMiddleware_RecordsHandlerError(t *testing.T) {
	seg, _ := serveTraced(t, func(echo.Context) error { return errors.New("store unavailable") })
	assert.False(t, seg.InProgress)
	assert.True(t, seg.Fault)
	assert.Equal(t, "/work", seg.Annotations["route"])
}

func TestXRayMiddleware_ClosesSegmentOnSuccess(t *testing.T) {
	seg, code := serveTraced(t, func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	assert.Equal(t, http.StatusNoContent, code)
	assert.False(t, seg.InProgress)
	assert.False(t, seg.Fault)
}
