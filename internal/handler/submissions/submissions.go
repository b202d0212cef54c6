package submissions

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

var listPending = store.ListPending

var errInvalidStatus = errors.New("status must be pending, approved or rejected")

// Submitter 建立待審核提案
type Submitter interface {
	Submit(ctx context.Context, submitter model.User, in service.SubmitInput) (*model.PendingProduct, error)
}

// SubmitHandler 提交新增、修改或刪除商品的提案，需經 moderator 以上審核
// @Summary     Submit a product change
// @Description job_type 為 add 時需提供 brand_name、category、name；update 與 delete 需提供 product_id。
// @Description details 的欄位必須屬於該分類的細節表。
// @Tags        submissions
// @Accept      json
// @Produce     json
// @Param       request body     api.SubmissionRequest true "提案內容"
// @Success     201     {object} model.PendingProduct
// @Failure     400     {object} api.ErrorResponse
// @Failure     401     {object} api.ErrorResponse
// @Failure     404     {object} api.ErrorResponse "商品不存在"
// @Failure     500     {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /v1/submissions [post]
func SubmitHandler(svc Submitter) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return handler.Fail(c, http.StatusUnauthorized, "invalid or missing token")
		}
		var req api.SubmissionRequest
		if err := handler.Bind(c, &req); err != nil {
			return handler.Fail(c, http.StatusBadRequest, err.Error())
		}

		p, err := svc.Submit(c.Request().Context(), *user, req.ToInput())
		if err != nil {
			return handler.Error(c, err)
		}
		return c.JSON(http.StatusCreated, p)
	}
}

// @Summary     List my submissions
// @Tags        submissions
// @Produce     json
// @Param       status query    string false "pending | approved | rejected"
// @Param       page   query    int    false "頁碼" default(1)
// @Param       limit  query    int    false "每頁筆數" default(20)
// @Success     200    {object} api.PageResponse[model.PendingProduct]
// @Failure     400    {object} api.ErrorResponse
// @Failure     401    {object} api.ErrorResponse
// @Failure     500    {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /v1/submissions/mine [get]
func ListMineHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return handler.Fail(c, http.StatusUnauthorized, "invalid or missing token")
		}
		f, err := pendingFilter(c)
		if err != nil {
			return handler.Fail(c, http.StatusBadRequest, err.Error())
		}
		f.SubmittedBy = &user.ID

		list, total, err := listPending(c.Request().Context(), db, f)
		if err != nil {
			return handler.Error(c, err)
		}
		return c.JSON(http.StatusOK, handler.NewPage(list, f.Page, total))
	}
}

// pendingFilter 解析 status、page 與 limit
func pendingFilter(c echo.Context) (store.PendingFilter, error) {
	var f store.PendingFilter
	page, err := handler.PageParams(c)
	if err != nil {
		return f, err
	}
	f.Page = page
	if s := model.SubmissionStatus(c.QueryParam("status")); s != "" {
		if !s.Valid() {
			return f, errInvalidStatus
		}
		f.Status = s
	}
	return f, nil
}
