package admin

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"supplement-iq/internal/api"
	"supplement-iq/internal/database"
	"supplement-iq/internal/handler"
	"supplement-iq/internal/middleware"
	"supplement-iq/internal/model"
	"supplement-iq/internal/service"
	"supplement-iq/internal/store"
)

// 測試替換點
var (
	listPending  = store.ListPending
	countPending = store.CountPending
	getPending   = store.GetPending
	listActivity = store.ListActivity
)

// Reviewer 審核待處理提案
type Reviewer interface {
	Approve(ctx context.Context, reviewer model.User, id int) (*service.ApproveResult, error)
	Reject(ctx context.Context, reviewer model.User, id int, reason string) (*model.PendingProduct, error)
}

// 未指定 status 時只列出 pending，status=all 列出全部
func pendingFilter(c echo.Context) (store.PendingFilter, error) {
	page, err := handler.PageParams(c)
	if err != nil {
		return store.PendingFilter{}, err
	}
	f := store.PendingFilter{Status: model.StatusPending, Page: page}
	switch s := c.QueryParam("status"); s {
	case "":
	case "all":
		f.Status = ""
	default:
		f.Status = model.SubmissionStatus(s)
		if !f.Status.Valid() {
			return f, errors.New("status must be pending, approved, rejected or all")
		}
	}
	return f, nil
}

func reviewError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return handler.Fail(c, http.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrSelfReview):
		return handler.Fail(c, http.StatusForbidden, "cannot review your own submission")
	}
	return handler.Error(c, err)
}

// @Summary     List submissions
// @Tags        admin
// @Produce     json
// @Param       status query    string false "pending | approved | rejected | all" default(pending)
// @Param       page   query    int    false "頁碼" default(1)
// @Param       limit  query    int    false "每頁筆數" default(20)
// @Success     200    {object} api.PageResponse[model.PendingProduct]
// @Failure     400    {object} api.ErrorResponse
// @Failure     401    {object} api.ErrorResponse
// @Failure     403    {object} api.ErrorResponse
// @Failure     500    {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/pending [get]
func ListPendingHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		f, err := pendingFilter(c)
		if err != nil {
			return handler.Fail(c, http.StatusBadRequest, err.Error())
		}
		list, total, err := listPending(c.Request().Context(), db, f)
		if err != nil {
			return handler.Error(c, err)
		}
		return c.JSON(http.StatusOK, handler.NewPage(list, f.Page, total))
	}
}

// @Summary     Count pending submissions
// @Tags        admin
// @Produce     json
// @Success     200 {object} api.CountResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/pending/count [get]
func CountPendingHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		n, err := countPending(c.Request().Context(), db)
		if err != nil {
			return handler.Error(c, err)
		}
		return c.JSON(http.StatusOK, api.CountResponse{Count: n})
	}
}

// @Summary     Get a submission
// @Tags        admin
// @Produce     json
// @Param       id  path     int true "提案 ID"
// @Success     200 {object} model.PendingProduct
// @Failure     400 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/pending/{id} [get]
func GetPendingHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamInt(c, "id")
		if err != nil {
			return handler.Fail(c, http.StatusBadRequest, "invalid submission ID")
		}
		p, err := getPending(c.Request().Context(), db, id)
		if err != nil {
			return reviewError(c, err)
		}
		return c.JSON(http.StatusOK, p)
	}
}

// ApproveHandler 核准提案並套用到商品資料
// @Summary     Approve a submission
// @Description 審核者不可核准自己的提案 (owner 除外)；提案必須仍為 pending
// @Tags        admin
// @Produce     json
// @Param       id  path     int true "提案 ID"
// @Success     200 {object} service.ApproveResult
// @Failure     400 {object} api.ErrorResponse
// @Failure     403 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Failure     409 {object} api.ErrorResponse "提案已審核"
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/pending/{id}/approve [post]
func ApproveHandler(svc Reviewer) echo.HandlerFunc {
	return func(c echo.Context) error {
		reviewer, ok := middleware.CurrentUser(c)
		if !ok {
			return handler.Fail(c, http.StatusUnauthorized, "invalid or missing token")
		}
		id, err := handler.ParamInt(c, "id")
		if err != nil {
			return handler.Fail(c, http.StatusBadRequest, "invalid submission ID")
		}
		res, err := svc.Approve(c.Request().Context(), *reviewer, id)
		if err != nil {
			return reviewError(c, err)
		}
		return c.JSON(http.StatusOK, res)
	}
}

// RejectHandler 退回提案，必須附上理由
// @Summary     Reject a submission
// @Tags        admin
// @Accept      json
// @Produce     json
// @Param       id      path     int               true "提案 ID"
// @Param       request body     api.RejectRequest true "退回理由"
// @Success     200     {object} model.PendingProduct
// @Failure     400     {object} api.ErrorResponse
// @Failure     403     {object} api.ErrorResponse
// @Failure     404     {object} api.ErrorResponse
// @Failure     409     {object} api.ErrorResponse
// @Failure     500     {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/pending/{id}/reject [post]
func RejectHandler(svc Reviewer) echo.HandlerFunc {
	return func(c echo.Context) error {
		reviewer, ok := middleware.CurrentUser(c)
		if !ok {
			return handler.Fail(c, http.StatusUnauthorized, "invalid or missing token")
		}
		id, err := handler.ParamInt(c, "id")
		if err != nil {
			return handler.Fail(c, http.StatusBadRequest, "invalid submission ID")
		}
		var req api.RejectRequest
		if err := handler.Bind(c, &req); err != nil {
			return handler.Fail(c, http.StatusBadRequest, err.Error())
		}
		p, err := svc.Reject(c.Request().Context(), *reviewer, id, req.Reason)
		if err != nil {
			return reviewError(c, err)
		}
		return c.JSON(http.StatusOK, p)
	}
}
