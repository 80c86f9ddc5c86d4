package http

import (
	"errors"
	stdhttp "net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"task-rbac/internal/adapters/http/middleware"
	"task-rbac/internal/application"
	"task-rbac/internal/domain"
	"task-rbac/internal/ports"
)

func handleError(c echo.Context, err error) error {
	var denied *domain.AccessDeniedError
	switch {
	case errors.As(err, &denied):
		return c.JSON(stdhttp.StatusForbidden, map[string]string{"error": err.Error(), "reason": denied.Reason})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrUnauthenticated):
		return c.JSON(stdhttp.StatusUnauthorized, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrPermissionDeny):
		return c.JSON(stdhttp.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(stdhttp.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.JSON(stdhttp.StatusConflict, map[string]string{"error": err.Error()})
	default:
		return c.JSON(stdhttp.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func badPayload(c echo.Context) error {
	return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "invalid payload"})
}

type TasksHandler struct {
	service *application.TaskService
	logger  ports.Logger
}

func NewTasksHandler(service *application.TaskService, logger ports.Logger) *TasksHandler {
	return &TasksHandler{service: service, logger: logger}
}

func (h *TasksHandler) Create(c echo.Context) error {
	var req application.CreateTaskInput
	if err := c.Bind(&req); err != nil {
		return badPayload(c)
	}
	task, err := h.service.Create(c.Request().Context(), middleware.PrincipalFrom(c), req)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusCreated, task)
}

func (h *TasksHandler) List(c echo.Context) error {
	filter := domain.TaskFilter{
		Status:      domain.TaskStatus(c.QueryParam("status")),
		Priority:    domain.TaskPriority(c.QueryParam("priority")),
		AssigneeID:  c.QueryParam("assigneeId"),
		CreatedByID: c.QueryParam("createdById"),
		Search:      c.QueryParam("search"),
	}
	if raw := c.QueryParam("isPublic"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "isPublic must be a boolean"})
		}
		filter.IsPublic = &v
	}
	tasks, err := h.service.List(c.Request().Context(), middleware.PrincipalFrom(c), filter)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, tasks)
}

func (h *TasksHandler) Get(c echo.Context) error {
	task, err := h.service.Get(c.Request().Context(), middleware.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, task)
}

func (h *TasksHandler) Update(c echo.Context) error {
	var req application.UpdateTaskInput
	if err := c.Bind(&req); err != nil {
		return badPayload(c)
	}
	task, err := h.service.Update(c.Request().Context(), middleware.PrincipalFrom(c), c.Param("id"), req)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, task)
}

func (h *TasksHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), middleware.PrincipalFrom(c), c.Param("id")); err != nil {
		return handleError(c, err)
	}
	return c.NoContent(stdhttp.StatusNoContent)
}

type AuditHandler struct {
	service *application.AuditService
}

func NewAuditHandler(service *application.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

func (h *AuditHandler) List(c echo.Context) error {
	q := application.AuditQuery{
		UserID:   c.QueryParam("userId"),
		Action:   c.QueryParam("action"),
		Resource: c.QueryParam("resource"),
	}
	var err error
	if q.From, err = parseTimeParam(c, "startDate"); err != nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "startDate must be RFC3339"})
	}
	if q.To, err = parseTimeParam(c, "endDate"); err != nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "endDate must be RFC3339"})
	}
	if q.Page, err = parseIntParam(c, "page"); err != nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "page must be a number"})
	}
	if q.Limit, err = parseIntParam(c, "limit"); err != nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "limit must be a number"})
	}
	page, err := h.service.Query(c.Request().Context(), middleware.PrincipalFrom(c), q)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, page)
}

func parseTimeParam(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseIntParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

type UsersHandler struct {
	users       *application.UserService
	permissions *application.PermissionService
}

func NewUsersHandler(users *application.UserService, permissions *application.PermissionService) *UsersHandler {
	return &UsersHandler{users: users, permissions: permissions}
}

// Me returns the caller with the permissions their role grants.
func (h *UsersHandler) Me(c echo.Context) error {
	user := middleware.PrincipalFrom(c)
	perms := h.permissions.Effective(c.Request().Context(), user)
	if user == nil {
		return handleError(c, domain.ErrUnauthenticated)
	}
	return c.JSON(stdhttp.StatusOK, map[string]any{
		"user":        user,
		"role":        user.RoleKind(),
		"permissions": perms,
	})
}

func (h *UsersHandler) Get(c echo.Context) error {
	user, err := h.users.Get(c.Request().Context(), middleware.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, user)
}

func (h *UsersHandler) AssignRole(c echo.Context) error {
	var req struct {
		RoleID string `json:"role_id"`
	}
	if err := c.Bind(&req); err != nil {
		return badPayload(c)
	}
	user, err := h.users.AssignRole(c.Request().Context(), middleware.PrincipalFrom(c), c.Param("id"), req.RoleID)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, user)
}

type RolesHandler struct{ service *application.RoleService }

func NewRolesHandler(service *application.RoleService) *RolesHandler {
	return &RolesHandler{service: service}
}

func (h *RolesHandler) Create(c echo.Context) error {
	var req application.RoleInput
	if err := c.Bind(&req); err != nil {
		return badPayload(c)
	}
	role, err := h.service.Create(c.Request().Context(), middleware.PrincipalFrom(c), req)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusCreated, role)
}

func (h *RolesHandler) Update(c echo.Context) error {
	var req application.RoleInput
	if err := c.Bind(&req); err != nil {
		return badPayload(c)
	}
	role, err := h.service.Update(c.Request().Context(), middleware.PrincipalFrom(c), c.Param("id"), req)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, role)
}

func (h *RolesHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), middleware.PrincipalFrom(c), c.Param("id")); err != nil {
		return handleError(c, err)
	}
	return c.NoContent(stdhttp.StatusNoContent)
}

func (h *RolesHandler) List(c echo.Context) error {
	roles, err := h.service.List(c.Request().Context(), middleware.PrincipalFrom(c))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, roles)
}

type OrganizationsHandler struct {
	service *application.OrganizationService
}

func NewOrganizationsHandler(service *application.OrganizationService) *OrganizationsHandler {
	return &OrganizationsHandler{service: service}
}

func (h *OrganizationsHandler) Create(c echo.Context) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return badPayload(c)
	}
	org, err := h.service.Create(c.Request().Context(), middleware.PrincipalFrom(c), domain.Organization{Name: req.Name, Description: req.Description})
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusCreated, org)
}

func (h *OrganizationsHandler) Get(c echo.Context) error {
	org, err := h.service.Get(c.Request().Context(), middleware.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, org)
}

func (h *OrganizationsHandler) Update(c echo.Context) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return badPayload(c)
	}
	org, err := h.service.Update(c.Request().Context(), middleware.PrincipalFrom(c), domain.Organization{ID: c.Param("id"), Name: req.Name, Description: req.Description})
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, org)
}

type PermissionsHandler struct {
	service *application.PermissionService
}

func NewPermissionsHandler(service *application.PermissionService) *PermissionsHandler {
	return &PermissionsHandler{service: service}
}

func (h *PermissionsHandler) List(c echo.Context) error {
	perms, err := h.service.Catalog(c.Request().Context(), middleware.PrincipalFrom(c))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, perms)
}

type AuthorizationHandler struct {
	service *application.AuthorizationService
}

func NewAuthorizationHandler(service *application.AuthorizationService) *AuthorizationHandler {
	return &AuthorizationHandler{service: service}
}

// Authorize evaluates an access requirement for the caller. The answer is
// always 200; a denial is reported in the body.
func (h *AuthorizationHandler) Authorize(c echo.Context) error {
	var req domain.AccessRequirement
	if err := c.Bind(&req); err != nil {
		return badPayload(c)
	}
	d := h.service.Decide(c.Request().Context(), middleware.PrincipalFrom(c), req)
	return c.JSON(stdhttp.StatusOK, d)
}
