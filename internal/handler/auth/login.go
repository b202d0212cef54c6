package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"supplement-iq/internal/api"
	"supplement-iq/internal/handler"
	"supplement-iq/internal/model"
	"supplement-iq/internal/service"
	"supplement-iq/internal/store"
)

// Accounts 為註冊與登入所需的服務
type Accounts interface {
	Register(ctx context.Context, username, email, password string) (*model.User, error)
	Login(ctx context.Context, identifier, password string) (*service.Session, error)
	IssueSession(u *model.User) (*service.Session, error)
}

func sessionResponse(s *service.Session) api.SessionResponse {
	return api.SessionResponse{
		AccessToken: s.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   s.ExpiresAt,
		User:        api.NewUserResponse(s.User),
	}
}

// RegisterHandler 建立 newcomer 帳號並直接登入
// @Summary     Register
// @Description 建立新帳號 (Email 自動轉小寫)，成功後回傳存取令牌
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body     api.RegisterRequest true "註冊資料"
// @Success     201     {object} api.SessionResponse
// @Failure     400     {object} api.ErrorResponse
// @Failure     409     {object} api.ErrorResponse "帳號或信箱已被使用"
// @Failure     500     {object} api.ErrorResponse
// @Router      /v1/auth/register [post]
func RegisterHandler(accounts Accounts) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.RegisterRequest
		if err := handler.Bind(c, &req); err != nil {
			return handler.Fail(c, http.StatusBadRequest, err.Error())
		}

		user, err := accounts.Register(c.Request().Context(), req.Username, req.Email, req.Password)
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				return handler.Fail(c, http.StatusConflict, "username or email already taken")
			}
			return handler.Error(c, err)
		}

		session, err := accounts.IssueSession(user)
		if err != nil {
			return handler.Error(c, err)
		}
		return c.JSON(http.StatusCreated, sessionResponse(session))
	}
}

// LoginHandler 使用帳號或信箱加密碼登入並回傳 JWT
// @Summary     Login
// @Description identifier 含 @ 時視為信箱，否則為帳號
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body     api.LoginRequest true "登入資料"
// @Success     200     {object} api.SessionResponse
// @Failure     400     {object} api.ErrorResponse
// @Failure     401     {object} api.ErrorResponse
// @Failure     500     {object} api.ErrorResponse
// @Router      /v1/auth/login [post]
func LoginHandler(accounts Accounts) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.LoginRequest
		if err := handler.Bind(c, &req); err != nil {
			return handler.Fail(c, http.StatusBadRequest, err.Error())
		}

		session, err := accounts.Login(c.Request().Context(), req.Identifier, req.Password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				return handler.Fail(c, http.StatusUnauthorized, "invalid credentials")
			}
			return handler.Error(c, err)
		}
		return c.JSON(http.StatusOK, sessionResponse(session))
	}
}
