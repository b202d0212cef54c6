package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"supplement-iq/internal/api"
	"supplement-iq/internal/middleware"
	"supplement-iq/internal/model"
	"supplement-iq/internal/service"
	"supplement-iq/internal/storage"
	"supplement-iq/internal/store"
)

// Fail 以 {error, message} 格式回應錯誤
func Fail(c echo.Context, status int, message string) error {
	return c.JSON(status, api.NewError(status, message))
}

// 錯誤對應的狀態碼；未列出的錯誤一律 500
var errorStatus = []struct {
	err    error
	status int
}{
	{store.ErrNotFound, http.StatusNotFound},
	{store.ErrConflict, http.StatusConflict},
	{service.ErrInvalidState, http.StatusConflict},
	{service.ErrOwnerExists, http.StatusConflict},
	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrSelfReview, http.StatusForbidden},
	{service.ErrInvalidCategory, http.StatusBadRequest},
	{service.ErrInvalidJobType, http.StatusBadRequest},
	{service.ErrReasonRequired, http.StatusBadRequest},
	{service.ErrCategoryChange, http.StatusBadRequest},
	{service.ErrProductRequired, http.StatusBadRequest},
	{service.ErrInvalidSubmission, http.StatusBadRequest},
	{service.ErrInvalidRating, http.StatusBadRequest},
	{service.ErrInvalidRole, http.StatusBadRequest},
	{service.ErrPasswordTooLong, http.StatusBadRequest},
	{model.ErrInvalidDetail, http.StatusBadRequest},
	{model.ErrUnknownCategory, http.StatusBadRequest},
	{storage.ErrImageEmpty, http.StatusBadRequest},
	{storage.ErrUnsupportedType, http.StatusBadRequest},
	{storage.ErrImageTooLarge, http.StatusRequestEntityTooLarge},
}

// StatusOf 回傳錯誤對應的 HTTP 狀態碼
func StatusOf(err error) int {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// Error 依錯誤類型回應；500 只回傳通用訊息並記錄原始錯誤
func Error(c echo.Context, err error) error {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		middleware.Logger(c).Error(c.Request().Context(), "request failed",
			"method", c.Request().Method, "path", c.Path(), "error", err)
		return Fail(c, status, "internal server error")
	}
	msg := err.Error()
	if status == http.StatusNotFound {
		msg = "resource not found"
	}
	return Fail(c, status, msg)
}

// Bind 綁定並驗證請求內容
func Bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("invalid request body: %v", err)
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}

// ParamInt 解析路徑中的正整數參數
func ParamInt(c echo.Context, name string) (int, error) {
	// 資料表主鍵為 SERIAL (int4)
	v, err := strconv.ParseInt(c.Param(name), 10, 32)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return int(v), nil
}

// PageParams 解析 page 與 limit，並套用預設值與上限
func PageParams(c echo.Context) (store.Page, error) {
	var p store.Page
	err := echo.QueryParamsBinder(c).
		Int("page", &p.Page).
		Int("limit", &p.Limit).
		BindError()
	if err != nil {
		return store.Page{}, errors.New("page and limit must be integers")
	}
	if err := p.Check(); err != nil {
		return store.Page{}, err
	}
	return p.Normalize(), nil
}

// NewPage 組出分頁回應
func NewPage[T any](data []T, page store.Page, total int) api.PageResponse[T] {
	if data == nil {
		data = []T{}
	}
	return api.PageResponse[T]{
		Data:       data,
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      total,
		TotalPages: store.TotalPages(total, page.Limit),
	}
}
