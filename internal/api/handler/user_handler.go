package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tastetrail/tastetrail/internal/core/domain"
	"github.com/tastetrail/tastetrail/internal/core/ports"
)

// UserHandler serves the admin-only user management endpoints.
type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type listUsersQuery struct {
	Role string `query:"role" validate:"omitempty,oneof=user admin"`
}

// List returns every account, or only admins with ?role=admin.
//
// @Summary      List users
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Param        role  query     string  false  "Filter by role"  Enums(user, admin)
// @Success      200   {array}   domain.Identity
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	var q listUsersQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	if err := c.Validate(&q); err != nil {
		return err
	}

	users, err := h.userService.List(c.Request().Context(), domain.Role(q.Role))
	if err != nil {
		return err
	}
	out := make([]*domain.Identity, 0, len(users))
	for _, u := range users {
		out = append(out, u.Identity())
	}
	return c.JSON(http.StatusOK, out)
}

// Promote grants the admin role to a user.
//
// @Summary      Promote user to admin
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Param        id    path      string  true  "User ID"
// @Success      200   {object}  domain.Identity
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /users/admin/{id} [patch]
func (h *UserHandler) Promote(c echo.Context) error {
	user, err := h.userService.Promote(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user.Identity())
}

// Delete removes a user account.
//
// @Summary      Delete user
// @Tags         users
// @Security     BearerAuth
// @Param        id    path      string  true  "User ID"
// @Success      204
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.userService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
