package admin

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"supplement-iq/internal/api"
	"supplement-iq/internal/handler"
	"supplement-iq/internal/middleware"
	"supplement-iq/internal/model"
	"supplement-iq/internal/service"
	"supplement-iq/internal/store"
)

// RoleManager 管理使用者角色
type RoleManager interface {
	AssignRole(ctx context.Context, actor model.User, targetID uuid.UUID, role model.Role) (*model.User, error)
	ListAdmins(ctx context.Context) ([]model.User, error)
}

// UpdateUserRoleHandler 變更使用者角色
// @Summary     Change a user's role
// @Description 操作者必須高於對方目前角色；只有 owner 可指派 admin，owner 無法經由 API 指派
// @Tags        admin
// @Accept      json
// @Produce     json
// @Param       id      path     string                true "使用者 ID (uuid)"
// @Param       request body     api.UpdateRoleRequest true "新角色"
// @Success     200     {object} api.UserResponse
// @Failure     400     {object} api.ErrorResponse
// @Failure     403     {object} api.ErrorResponse
// @Failure     404     {object} api.ErrorResponse
// @Failure     429     {object} api.ErrorResponse
// @Failure     500     {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/users/{id}/role [put]
func UpdateUserRoleHandler(svc RoleManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, ok := middleware.CurrentUser(c)
		if !ok {
			return handler.Fail(c, http.StatusUnauthorized, "invalid or missing token")
		}
		targetID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			return handler.Fail(c, http.StatusBadRequest, "invalid user ID")
		}
		var req api.UpdateRoleRequest
		if err := handler.Bind(c, &req); err != nil {
			return handler.Fail(c, http.StatusBadRequest, err.Error())
		}
		role, err := model.ParseRole(req.Role)
		if err != nil {
			return handler.Fail(c, http.StatusBadRequest, "unknown role "+req.Role)
		}

		user, err := svc.AssignRole(c.Request().Context(), *actor, targetID, role)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound):
				return handler.Fail(c, http.StatusNotFound, "user not found")
			case errors.Is(err, service.ErrForbidden):
				return handler.Fail(c, http.StatusForbidden, "not allowed to assign "+string(role)+" to this user")
			}
			return handler.Error(c, err)
		}
		return c.JSON(http.StatusOK, api.NewUserResponse(user))
	}
}

// @Summary     List admins and the owner
// @Tags        admin
// @Produce     json
// @Success     200 {array}  api.UserResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/admins [get]
func ListAdminsHandler(svc RoleManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		users, err := svc.ListAdmins(c.Request().Context())
		if err != nil {
			return handler.Error(c, err)
		}
		resp := make([]api.UserResponse, 0, len(users))
		for i := range users {
			resp = append(resp, api.NewUserResponse(&users[i]))
		}
		return c.JSON(http.StatusOK, resp)
	}
}
