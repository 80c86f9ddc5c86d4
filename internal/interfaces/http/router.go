package http

import (
	stdhttp "net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Middleware struct {
	XRay          echo.MiddlewareFunc
	RequestLogger echo.MiddlewareFunc
	RequestMeta   echo.MiddlewareFunc
	Auth          echo.MiddlewareFunc
	Principal     echo.MiddlewareFunc
}

type Handlers struct {
	Tasks         *TasksHandler
	Audit         *AuditHandler
	Users         *UsersHandler
	Roles         *RolesHandler
	Organizations *OrganizationsHandler
	Permissions   *PermissionsHandler
	Authorization *AuthorizationHandler
	Metrics       stdhttp.Handler
}

func newEcho(m Middleware) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	for _, mw := range []echo.MiddlewareFunc{middleware.Recover(), middleware.RequestID(), m.XRay, m.RequestLogger, m.RequestMeta} {
		if mw != nil {
			e.Use(mw)
		}
	}
	return e
}

// NewMainRouter mounts every route on one echo instance. Health and metrics
// stay outside authentication.
func NewMainRouter(h Handlers, m Middleware) *echo.Echo {
	e := newEcho(m)
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(stdhttp.StatusOK, map[string]string{"status": "ok"})
	})
	if h.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(h.Metrics))
	}

	var protected []echo.MiddlewareFunc
	for _, mw := range []echo.MiddlewareFunc{m.Auth, m.Principal} {
		if mw != nil {
			protected = append(protected, mw)
		}
	}
	api := e.Group("", protected...)

	api.GET("/tasks/audit-log", h.Audit.List)
	api.POST("/tasks", h.Tasks.Create)
	api.GET("/tasks", h.Tasks.List)
	api.GET("/tasks/:id", h.Tasks.Get)
	api.PATCH("/tasks/:id", h.Tasks.Update)
	api.PUT("/tasks/:id", h.Tasks.Update)
	api.DELETE("/tasks/:id", h.Tasks.Delete)

	api.GET("/users/me", h.Users.Me)
	api.GET("/users/:id", h.Users.Get)
	api.PUT("/users/:id/role", h.Users.AssignRole)

	api.POST("/roles", h.Roles.Create)
	api.GET("/roles", h.Roles.List)
	api.PUT("/roles/:id", h.Roles.Update)
	api.DELETE("/roles/:id", h.Roles.Delete)

	api.POST("/organizations", h.Organizations.Create)
	api.GET("/organizations/:id", h.Organizations.Get)
	api.PUT("/organizations/:id", h.Organizations.Update)

	api.GET("/permissions", h.Permissions.List)
	api.POST("/authorize", h.Authorization.Authorize)
	return e
}
