package products

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
	"supplement-iq/internal/store"
)

// ReviewPoster 新增評論並回傳是否獲得新徽章
type ReviewPoster interface {
	PostReview(ctx context.Context, r *model.Review) (bool, error)
}

// @Summary     List product reviews
// @Tags        reviews
// @Produce     json
// @Param       id    path     int true  "商品 ID"
// @Param       page  query    int false "頁碼" default(1)
// @Param       limit query    int false "每頁筆數" default(20)
// @Success     200   {object} api.PageResponse[model.Review]
// @Failure     400   {object} api.ErrorResponse
// @Failure     500   {object} api.ErrorResponse
// @Router      /v1/products/{id}/reviews [get]
func ListReviewsHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamInt(c, "id")
		if err != nil {
			return handler.Fail(c, http.StatusBadRequest, "invalid product ID")
		}
		page, err := handler.PageParams(c)
		if err != nil {
			return handler.Fail(c, http.StatusBadRequest, err.Error())
		}
		list, total, err := listReviews(c.Request().Context(), db, id, page)
		if err != nil {
			return handler.Error(c, err)
		}
		return c.JSON(http.StatusOK, handler.NewPage(list, page, total))
	}
}

// CreateReviewHandler 每位使用者對每個商品只能評論一次
// @Summary     Review a product
// @Tags        reviews
// @Accept      json
// @Produce     json
// @Param       id      path     int                     true "商品 ID"
// @Param       request body     api.CreateReviewRequest true "評論"
// @Success     201     {object} api.ReviewResponse
// @Failure     400     {object} api.ErrorResponse
// @Failure     401     {object} api.ErrorResponse
// @Failure     404     {object} api.ErrorResponse
// @Failure     409     {object} api.ErrorResponse "已評論過"
// @Failure     500     {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /v1/products/{id}/reviews [post]
func CreateReviewHandler(svc ReviewPoster) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return handler.Fail(c, http.StatusUnauthorized, "invalid or missing token")
		}
		id, err := handler.ParamInt(c, "id")
		if err != nil {
			return handler.Fail(c, http.StatusBadRequest, "invalid product ID")
		}
		var req api.CreateReviewRequest
		if err := handler.Bind(c, &req); err != nil {
			return handler.Fail(c, http.StatusBadRequest, err.Error())
		}

		review := &model.Review{
			ProductID: id,
			UserID:    user.ID,
			Username:  user.Username,
			Rating:    req.Rating,
			Title:     req.Title,
			Body:      req.Body,
		}
		newBadge, err := svc.PostReview(c.Request().Context(), review)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrConflict):
				return handler.Fail(c, http.StatusConflict, "you have already reviewed this product")
			case errors.Is(err, store.ErrNotFound):
				return handler.Fail(c, http.StatusNotFound, "product not found")
			}
			return handler.Error(c, err)
		}
		return c.JSON(http.StatusCreated, api.ReviewResponse{Review: *review, NewBadge: newBadge})
	}
}
