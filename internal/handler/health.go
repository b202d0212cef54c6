package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"supplement-iq/internal/api"
	"supplement-iq/internal/cache"
	"supplement-iq/internal/database"
)

// HealthHandler 健康檢查
// @Summary     Health Check
// @Description 檢查資料庫與 Redis 連線；Redis 無法連線時仍回傳 200 並標示 degraded
// @Tags        health
// @Produce     json
// @Success     200 {object} api.HealthResponse
// @Failure     503 {object} api.ErrorResponse
// @Router      /v1/health [get]
func HealthHandler(db database.DB, rdb cache.Cache) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if err := db.Ping(ctx); err != nil {
			return Fail(c, http.StatusServiceUnavailable, "database unhealthy")
		}
		resp := api.HealthResponse{Status: "ok", Database: "ok", Redis: "ok"}
		if rdb == nil {
			resp.Redis = "disabled"
		} else if err := rdb.Ping(ctx).Err(); err != nil {
			resp.Status = "degraded"
			resp.Redis = "unavailable"
		}
		return c.JSON(http.StatusOK, resp)
	}
}
