package users

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"supplement-iq/internal/api"
	"supplement-iq/internal/database"
	"supplement-iq/internal/handler"
	"supplement-iq/internal/middleware"
	"supplement-iq/internal/service"
	"supplement-iq/internal/store"
)

var (
	getUserByID       = store.GetUserByID
	listBadges        = store.ListBadges
	updateUserProfile = store.UpdateUserProfile
)

// PasswordChanger 驗證舊密碼後更新密碼
type PasswordChanger interface {
	ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error
}

// @Summary     Get current user info
// @Description 回傳目前登入使用者的完整資料 (含信箱與角色)
// @Tags        users
// @Produce     json
// @Success     200 {object} api.UserResponse
// @Failure     401 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /v1/users/me [get]
func GetMyUserHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return handler.Fail(c, http.StatusUnauthorized, "invalid or missing token")
		}
		return c.JSON(http.StatusOK, api.NewUserResponse(user))
	}
}

// @Summary     Update current user info
// @Description 更新帳號、Email (自動轉小寫)、自我介紹與頭像
// @Tags        users
// @Accept      json
// @Produce     json
// @Param       request body     api.UpdateUserRequest true "個人資料"
// @Success     200     {object} api.UserResponse
// @Failure     400     {object} api.ErrorResponse
// @Failure     401     {object} api.ErrorResponse
// @Failure     409     {object} api.ErrorResponse
// @Failure     500     {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /v1/users/me [put]
func UpdateMyUserHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return handler.Fail(c, http.StatusUnauthorized, "invalid or missing token")
		}

		var req api.UpdateUserRequest
		if err := handler.Bind(c, &req); err != nil {
			return handler.Fail(c, http.StatusBadRequest, err.Error())
		}

		updated := *user
		updated.Username = strings.TrimSpace(req.Username)
		updated.Email = strings.ToLower(strings.TrimSpace(req.Email))
		updated.Bio = req.Bio
		updated.AvatarURL = req.AvatarURL

		if err := updateUserProfile(c.Request().Context(), db, &updated); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return handler.Fail(c, http.StatusConflict, "username or email already taken")
			}
			return handler.Error(c, err)
		}
		return c.JSON(http.StatusOK, api.NewUserResponse(&updated))
	}
}

// @Summary     Update own password
// @Description 驗證舊密碼並更新為新密碼
// @Tags        users
// @Accept      json
// @Produce     json
// @Param       request body api.UpdateMyPasswordRequest true "新舊密碼"
// @Success     204     "No Content"
// @Failure     400     {object} api.ErrorResponse
// @Failure     401     {object} api.ErrorResponse
// @Failure     500     {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /v1/users/me/password [patch]
func UpdateMyUserPasswordHandler(svc PasswordChanger) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return handler.Fail(c, http.StatusUnauthorized, "invalid or missing token")
		}

		var req api.UpdateMyPasswordRequest
		if err := handler.Bind(c, &req); err != nil {
			return handler.Fail(c, http.StatusBadRequest, err.Error())
		}

		if err := svc.ChangePassword(c.Request().Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				return handler.Fail(c, http.StatusUnauthorized, "invalid current password")
			}
			return handler.Error(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// @Summary     Get a user profile
// @Description 公開的使用者資料與徽章，不含 Email
// @Tags        users
// @Produce     json
// @Param       id  path     string true "使用者 ID (uuid)"
// @Success     200 {object} api.ProfileResponse
// @Failure     400 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /v1/users/{id} [get]
func GetUserHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			return handler.Fail(c, http.StatusBadRequest, "invalid user ID")
		}
		ctx := c.Request().Context()

		user, err := getUserByID(ctx, db, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return handler.Fail(c, http.StatusNotFound, "user not found")
			}
			return handler.Error(c, err)
		}
		badges, err := listBadges(ctx, db, id)
		if err != nil {
			return handler.Error(c, err)
		}
		return c.JSON(http.StatusOK, api.NewProfileResponse(user, badges))
	}
}
