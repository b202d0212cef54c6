package admin

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"supplement-iq/internal/api"
	"supplement-iq/internal/cache"
	"supplement-iq/internal/database"
	"supplement-iq/internal/handler"
	"supplement-iq/internal/middleware"
)

// CacheResetter 清除商品、熱門商品與管理員名單快取
type CacheResetter interface {
	Reset(ctx context.Context) error
}

// @Summary     Reset caches
// @Tags        admin
// @Produce     json
// @Success     200 {object} api.MessageResponse
// @Failure     429 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/cache [delete]
func ResetCacheHandler(pc CacheResetter) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if err := pc.Reset(ctx); err != nil {
			return handler.Error(c, err)
		}
		actor := "unknown"
		if u, ok := middleware.CurrentUser(c); ok {
			actor = u.Username
		}
		middleware.Logger(c).Info(ctx, "cache reset", "actor", actor)
		return c.JSON(http.StatusOK, api.MessageResponse{Message: "cache cleared"})
	}
}

type CacheStatser interface {
	Stats() cache.Stats
}

// @Summary     Cache statistics
// @Tags        admin
// @Produce     json
// @Success     200 {object} cache.Stats
// @Security    ApiKeyAuth
// @Router      /admin/cache/stats [get]
func CacheStatsHandler(pc CacheStatser) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, pc.Stats())
	}
}

// AdminActivity 回傳各管理員當日的敏感操作次數
type AdminActivity interface {
	Stats() []cache.AdminStats
}

// @Summary     Admin request guard statistics
// @Tags        admin
// @Produce     json
// @Success     200 {array} cache.AdminStats
// @Security    ApiKeyAuth
// @Router      /admin/guard [get]
func GuardStatsHandler(g AdminActivity) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, g.Stats())
	}
}

// @Summary     Recent activity
// @Tags        admin
// @Produce     json
// @Param       limit query    int false "筆數 (上限 100)" default(50)
// @Success     200   {array}  model.ActivityLog
// @Failure     400   {object} api.ErrorResponse
// @Failure     500   {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/activity [get]
func ListActivityHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		var limit int
		if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
			return handler.Fail(c, http.StatusBadRequest, "limit must be an integer")
		}
		logs, err := listActivity(c.Request().Context(), db, limit)
		if err != nil {
			return handler.Error(c, err)
		}
		return c.JSON(http.StatusOK, logs)
	}
}
