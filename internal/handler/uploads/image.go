package uploads

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"supplement-iq/internal/api"
	"supplement-iq/internal/handler"
	"supplement-iq/internal/storage"
)

// FormField 為上傳表單的檔案欄位名稱
const FormField = "image"

// ImageUploader 儲存商品圖片並回傳公開網址
type ImageUploader interface {
	UploadProductImage(ctx context.Context, r io.Reader, size int64) (*storage.UploadedImage, error)
}

// UploadImageHandler 上傳商品圖片 (jpeg/png/webp，最大 5 MiB)；未設定物件儲存時回傳 503
// @Summary     Upload a product image
// @Tags        uploads
// @Accept      multipart/form-data
// @Produce     json
// @Param       image formData file true "圖片檔"
// @Success     201   {object} api.UploadImageResponse
// @Failure     400   {object} api.ErrorResponse
// @Failure     401   {object} api.ErrorResponse
// @Failure     403   {object} api.ErrorResponse
// @Failure     413   {object} api.ErrorResponse
// @Failure     503   {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /v1/uploads/images [post]
func UploadImageHandler(up ImageUploader) echo.HandlerFunc {
	return func(c echo.Context) error {
		if up == nil {
			return handler.Fail(c, http.StatusServiceUnavailable, "image uploads are not configured")
		}
		file, err := c.FormFile(FormField)
		if err != nil {
			return handler.Fail(c, http.StatusBadRequest, "image file is required")
		}
		if file.Size > storage.MaxImageSize {
			return handler.Error(c, storage.ErrImageTooLarge)
		}
		src, err := file.Open()
		if err != nil {
			return handler.Error(c, err)
		}
		defer src.Close()

		img, err := up.UploadProductImage(c.Request().Context(), src, file.Size)
		if err != nil {
			return handler.Error(c, err)
		}
		return c.JSON(http.StatusCreated, api.UploadImageResponse{
			Key:         img.Key,
			URL:         img.URL,
			ContentType: img.ContentType,
			Size:        img.Size,
		})
	}
}
