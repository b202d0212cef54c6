package router

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"supplement-iq/internal/api"
	"supplement-iq/internal/autocomplete"
	"supplement-iq/internal/cache"
	"supplement-iq/internal/database"
	"supplement-iq/internal/handler"
	"supplement-iq/internal/handler/admin"
	"supplement-iq/internal/handler/auth"
	"supplement-iq/internal/handler/products"
	"supplement-iq/internal/handler/submissions"
	"supplement-iq/internal/handler/uploads"
	"supplement-iq/internal/handler/users"
	"supplement-iq/internal/logging"
	"supplement-iq/internal/middleware"
	"supplement-iq/internal/model"
	"supplement-iq/internal/service"
	"supplement-iq/internal/storage"
)

const (
	defaultRateLimit       = 20.0
	defaultAdminDailyLimit = 1
	defaultAdminCooldown   = 10 * time.Minute
)

// Deps 為路由所需的元件
type Deps struct {
	DB          database.DB
	Redis       cache.Cache
	Cache       *cache.ProductCache
	Guard       *cache.AdminGuard
	Index       *autocomplete.Index
	Users       *service.UserService
	Submissions *service.SubmissionService
	Reviews     *service.ReviewService
	// Uploader 為 nil 時圖片上傳回傳 503
	Uploader *storage.Storage
	Log      logging.Logger

	JWTSecret    string
	AppURL       string
	RateLimitRPS float64
}

// ErrorHandler 把未處理的錯誤轉為 {error, message} 格式
func ErrorHandler(log logging.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status := http.StatusInternalServerError
		msg := "internal server error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if status < http.StatusInternalServerError {
				msg = fmt.Sprint(he.Message)
			}
		}
		if status >= http.StatusInternalServerError {
			log.Error(c.Request().Context(), "unhandled error",
				"method", c.Request().Method, "path", c.Request().URL.Path, "error", err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, api.NewError(status, msg))
		}
		if err != nil {
			log.Warn(c.Request().Context(), "write error response", "error", err)
		}
	}
}

// Setup 註冊所有路由與中介層
func Setup(e *echo.Echo, d Deps) {
	if d.Log == nil {
		d.Log = logging.Discard()
	}
	rps := d.RateLimitRPS
	if rps <= 0 {
		rps = defaultRateLimit
	}
	if d.Guard == nil {
		// 僅記憶體的預設限制
		d.Guard = cache.NewAdminGuard(nil, time.UTC, defaultAdminDailyLimit, defaultAdminCooldown, d.Log)
	}

	e.HTTPErrorHandler = ErrorHandler(d.Log)
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{d.AppURL},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
	}))
	e.Use(middleware.WithLogger(d.Log))

	limit := echomw.RateLimiter(echomw.NewRateLimiterMemoryStore(rate.Limit(rps)))
	authn := middleware.RequireAuth(d.JWTSecret)
	member := []echo.MiddlewareFunc{authn, middleware.RequireRole(d.DB, model.RoleNewcomer)}
	writer := append([]echo.MiddlewareFunc{limit}, member...)

	v1 := e.Group("/api/v1")

	v1.GET("/health", handler.HealthHandler(d.DB, d.Redis))

	// 註冊與登入
	v1.POST("/auth/register", auth.RegisterHandler(d.Users), limit)
	v1.POST("/auth/login", auth.LoginHandler(d.Users), limit)

	// 公開的商品目錄
	v1.GET("/products", products.ListProductsHandler(d.DB, d.Cache))
	v1.GET("/products/top", products.TopProductsHandler(d.DB, d.Cache))
	v1.GET("/products/:id", products.GetProductHandler(d.DB))
	v1.GET("/products/:id/reviews", products.ListReviewsHandler(d.DB))
	v1.POST("/products/:id/reviews", products.CreateReviewHandler(d.Reviews), writer...)
	v1.GET("/search", products.SearchHandler(d.DB))
	v1.GET("/autocomplete", products.AutocompleteHandler(d.Index))
	v1.GET("/brands", products.ListBrandsHandler(d.DB))
	v1.GET("/categories", products.ListCategoriesHandler())
	v1.GET("/stats", products.StatsHandler(d.DB))

	// 目前使用者與公開個人頁
	v1.GET("/users/me", users.GetMyUserHandler(), member...)
	v1.PUT("/users/me", users.UpdateMyUserHandler(d.DB), writer...)
	v1.PATCH("/users/me/password", users.UpdateMyUserPasswordHandler(d.Users), writer...)
	v1.GET("/users/:id", users.GetUserHandler(d.DB), member...)

	// 提案
	v1.POST("/submissions", submissions.SubmitHandler(d.Submissions), writer...)
	v1.GET("/submissions/mine", submissions.ListMineHandler(d.DB), member...)

	var uploader uploads.ImageUploader
	if d.Uploader != nil {
		uploader = d.Uploader
	}
	v1.POST("/uploads/images", uploads.UploadImageHandler(uploader),
		limit, echomw.BodyLimit("6M"), authn, middleware.RequireRole(d.DB, model.RoleContributor))

	// moderator 以上
	moderation := e.Group("/api/admin", authn, middleware.RequireRole(d.DB, model.RoleModerator))
	moderation.GET("/pending", admin.ListPendingHandler(d.DB))
	moderation.GET("/pending/count", admin.CountPendingHandler(d.DB))
	moderation.GET("/pending/:id", admin.GetPendingHandler(d.DB))
	moderation.POST("/pending/:id/approve", admin.ApproveHandler(d.Submissions))
	moderation.POST("/pending/:id/reject", admin.RejectHandler(d.Submissions))

	// admin 以上；變更類操作另受每日次數限制
	adminOnly := middleware.RequireRole(d.DB, model.RoleAdmin)
	guarded := []echo.MiddlewareFunc{adminOnly, middleware.GuardAdmin(d.Guard)}
	moderation.PUT("/users/:id/role", admin.UpdateUserRoleHandler(d.Users), guarded...)
	moderation.GET("/admins", admin.ListAdminsHandler(d.Users), adminOnly)
	moderation.DELETE("/cache", admin.ResetCacheHandler(d.Cache), guarded...)
	moderation.GET("/cache/stats", admin.CacheStatsHandler(d.Cache), adminOnly)
	moderation.GET("/guard", admin.GuardStatsHandler(d.Guard), adminOnly)
	moderation.GET("/activity", admin.ListActivityHandler(d.DB), adminOnly)
}
