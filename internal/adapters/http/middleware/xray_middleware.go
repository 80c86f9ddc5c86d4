package middleware

import (
	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/labstack/echo/v4"
)

// XRayMiddleware opens a segment per request and records method, route and
// status on it.
func XRayMiddleware(segmentName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			ctx, seg := xray.BeginSegment(c.Request().Context(), segmentName)
			req := c.Request().Clone(ctx)
			c.SetRequest(req)
			defer func() {
				_ = seg.AddAnnotation("method", req.Method)
				_ = seg.AddAnnotation("route", c.Path())
				_ = seg.AddAnnotation("status", c.Response().Status)
				seg.Close(err)
			}()
			return next(c)
		}
	}
}
