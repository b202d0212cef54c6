package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"supplement-iq/internal/api"
	"supplement-iq/internal/database"
	"supplement-iq/internal/logging"
	"supplement-iq/internal/model"
	"supplement-iq/internal/service"
	"supplement-iq/internal/store"
)

const (
	// ContextClaimsKey 存放驗證後的 *service.CustomClaims
	ContextClaimsKey = "claims"
	// ContextUserKey 存放從資料庫載入的目前使用者 *model.User
	ContextUserKey   = "user"
	ContextLoggerKey = "logger"
)

// 測試替換點
var (
	verifyAccessToken = service.VerifyAccessToken
	getUserByID       = store.GetUserByID
)

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, api.NewError(http.StatusUnauthorized, msg))
}

func extractClaims(c echo.Context, secret string) (*service.CustomClaims, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return nil, errors.New("missing token")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, errors.New("invalid authorization header format")
	}
	claims, err := verifyAccessToken(secret, strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, errors.New("invalid or expired token")
	}
	return claims, nil
}

// RequireAuth 驗證 Bearer JWT 並把 claims 放進 context
func RequireAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := extractClaims(c, secret)
			if err != nil {
				return unauthorized(c, err.Error())
			}
			c.Set(ContextClaimsKey, claims)
			return next(c)
		}
	}
}

// RequireRole 依 claims 載入目前使用者並檢查角色等級。
// 角色以資料庫為準，降級後舊令牌立即失去權限。必須接在 RequireAuth 之後。
func RequireRole(db database.DB, min model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(ContextClaimsKey).(*service.CustomClaims)
			if !ok {
				return unauthorized(c, "invalid or missing token")
			}
			id, err := claims.UserUUID()
			if err != nil {
				return unauthorized(c, "invalid token subject")
			}
			user, err := getUserByID(c.Request().Context(), db, id)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return unauthorized(c, "user no longer exists")
				}
				Logger(c).Error(c.Request().Context(), "load current user", "user_id", id, "error", err)
				return c.JSON(http.StatusInternalServerError, api.NewError(http.StatusInternalServerError, "internal server error"))
			}
			if !user.Role.AtLeast(min) {
				return c.JSON(http.StatusForbidden, api.NewError(http.StatusForbidden, string(min)+" role or higher required"))
			}
			c.Set(ContextUserKey, user)
			return next(c)
		}
	}
}

// AdminLimiter 判斷管理員能否再執行一次敏感操作
type AdminLimiter interface {
	Allow(ctx context.Context, adminID uuid.UUID) error
}

// GuardAdmin 對管理員操作套用每日上限，超過時回傳 429；owner 不受限。
// 必須接在 RequireRole 之後。
func GuardAdmin(g AdminLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return unauthorized(c, "invalid or missing token")
			}
			if user.Role == model.RoleOwner {
				return next(c)
			}
			if err := g.Allow(c.Request().Context(), user.ID); err != nil {
				Logger(c).Warn(c.Request().Context(), "admin request rejected",
					"user_id", user.ID, "path", c.Path(), "error", err)
				return c.JSON(http.StatusTooManyRequests, api.NewError(http.StatusTooManyRequests, err.Error()))
			}
			return next(c)
		}
	}
}

// CurrentUser 回傳 RequireRole 載入的使用者
func CurrentUser(c echo.Context) (*model.User, bool) {
	u, ok := c.Get(ContextUserKey).(*model.User)
	return u, ok && u != nil
}

// WithLogger 讓 handler 透過 Logger(c) 取得應用程式 logger
func WithLogger(log logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextLoggerKey, log)
			return next(c)
		}
	}
}

func Logger(c echo.Context) logging.Logger {
	if l, ok := c.Get(ContextLoggerKey).(logging.Logger); ok && l != nil {
		return l
	}
	return logging.Discard()
}
