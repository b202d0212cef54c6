package products

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"supplement-iq/internal/api"
	"supplement-iq/internal/autocomplete"
	"supplement-iq/internal/cache"
	"supplement-iq/internal/database"
	"supplement-iq/internal/handler"
	"supplement-iq/internal/model"
	"supplement-iq/internal/store"
)

// 測試替換點
var (
	listProducts    = store.ListProducts
	searchProducts  = store.SearchProducts
	getProduct      = store.GetProduct
	getDetails      = store.GetDetails
	topProducts     = store.TopProducts
	getProductStats = store.GetProductStats
	listBrands      = store.ListBrands
	listReviews     = store.ListReviews
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 50
)

// Suggester 為自動完成索引
type Suggester interface {
	Search(prefix string, limit int) []string
}

func parseFilter(c echo.Context) (store.ProductFilter, error) {
	var (
		f        store.ProductFilter
		category string
		lo, hi   float64
	)
	err := echo.QueryParamsBinder(c).
		String("category", &category).
		String("brand", &f.Brand).
		Float64("price_min", &lo).
		Float64("price_max", &hi).
		String("sort_by", &f.SortBy).
		String("sort_order", &f.SortOrder).
		Int("page", &f.Page.Page).
		Int("limit", &f.Page.Limit).
		BindError()
	if err != nil {
		return f, errors.New("price_min, price_max, page and limit must be numbers")
	}
	if err := f.Page.Check(); err != nil {
		return f, err
	}

	if category != "" {
		cat, err := model.ParseCategory(category)
		if err != nil {
			return f, fmt.Errorf("unknown category %q", category)
		}
		f.Category = cat
	}
	if f.SortBy != "" && !store.ValidSortField(f.SortBy) {
		return f, errors.New("sort_by must be one of price, name, transparency_score, created_at")
	}
	if o := strings.ToLower(f.SortOrder); o != "" && o != "asc" && o != "desc" {
		return f, errors.New("sort_order must be asc or desc")
	}
	if c.QueryParam("price_min") != "" {
		f.PriceMin = &lo
	}
	if c.QueryParam("price_max") != "" {
		f.PriceMax = &hi
	}
	if (f.PriceMin != nil && *f.PriceMin < 0) || (f.PriceMax != nil && *f.PriceMax < 0) {
		return f, errors.New("price filters must not be negative")
	}
	if f.PriceMin != nil && f.PriceMax != nil && *f.PriceMin > *f.PriceMax {
		return f, errors.New("price_min must not exceed price_max")
	}
	f.Brand = strings.TrimSpace(f.Brand)
	return f.Normalize(), nil
}

// ListProductsHandler 依篩選條件列出商品，結果快取至當日午夜
// @Summary     List products
// @Description 依分類、品牌、價格區間篩選並排序，limit 上限 100
// @Tags        products
// @Produce     json
// @Param       category   query    string false "分類"
// @Param       brand      query    string false "品牌名稱或 slug"
// @Param       price_min  query    number false "最低價格"
// @Param       price_max  query    number false "最高價格"
// @Param       sort_by    query    string false "price | name | transparency_score | created_at"
// @Param       sort_order query    string false "asc | desc"
// @Param       page       query    int    false "頁碼" default(1)
// @Param       limit      query    int    false "每頁筆數" default(20)
// @Success     200        {object} api.PageResponse[model.Product]
// @Failure     400        {object} api.ErrorResponse
// @Failure     500        {object} api.ErrorResponse
// @Router      /v1/products [get]
func ListProductsHandler(db database.DB, pc *cache.ProductCache) echo.HandlerFunc {
	return func(c echo.Context) error {
		f, err := parseFilter(c)
		if err != nil {
			return handler.Fail(c, http.StatusBadRequest, err.Error())
		}

		var resp api.PageResponse[model.Product]
		err = pc.GetOrLoad(c.Request().Context(), cache.NamespaceProducts, f.CacheKey(), &resp,
			func(ctx context.Context) (any, error) {
				list, total, err := listProducts(ctx, db, f)
				if err != nil {
					return nil, err
				}
				return handler.NewPage(list, f.Page, total), nil
			})
		if err != nil {
			return handler.Error(c, err)
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// TopProductsHandler 依平均評分列出熱門商品
// @Summary     Top rated products
// @Tags        products
// @Produce     json
// @Param       limit query    int false "筆數 (上限 50)" default(10)
// @Success     200   {array}  model.TopProduct
// @Failure     400   {object} api.ErrorResponse
// @Failure     500   {object} api.ErrorResponse
// @Router      /v1/products/top [get]
func TopProductsHandler(db database.DB, pc *cache.ProductCache) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit := defaultTopLimit
		if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
			return handler.Fail(c, http.StatusBadRequest, "limit must be an integer")
		}
		if limit < 1 {
			limit = defaultTopLimit
		}
		if limit > maxTopLimit {
			limit = maxTopLimit
		}

		var top []model.TopProduct
		err := pc.GetOrLoad(c.Request().Context(), cache.NamespaceTop, fmt.Sprintf("limit=%d", limit), &top,
			func(ctx context.Context) (any, error) {
				return topProducts(ctx, db, limit)
			})
		if err != nil {
			return handler.Error(c, err)
		}
		if top == nil {
			top = []model.TopProduct{}
		}
		return c.JSON(http.StatusOK, top)
	}
}

// GetProductHandler 回傳商品、品牌與分類細節
// @Summary     Get a product
// @Tags        products
// @Produce     json
// @Param       id  path     int true "商品 ID"
// @Success     200 {object} model.Product
// @Failure     400 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Router      /v1/products/{id} [get]
func GetProductHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamInt(c, "id")
		if err != nil {
			return handler.Fail(c, http.StatusBadRequest, "invalid product ID")
		}
		ctx := c.Request().Context()

		p, err := getProduct(ctx, db, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return handler.Fail(c, http.StatusNotFound, "product not found")
			}
			return handler.Error(c, err)
		}
		details, err := getDetails(ctx, db, id, p.Category)
		if err != nil {
			return handler.Error(c, err)
		}
		p.Details = details
		return c.JSON(http.StatusOK, p)
	}
}

// @Summary     Search products
// @Description 以商品名稱或品牌名稱模糊搜尋
// @Tags        products
// @Produce     json
// @Param       q     query    string true  "關鍵字"
// @Param       page  query    int    false "頁碼" default(1)
// @Param       limit query    int    false "每頁筆數" default(20)
// @Success     200   {object} api.PageResponse[model.Product]
// @Failure     400   {object} api.ErrorResponse
// @Failure     500   {object} api.ErrorResponse
// @Router      /v1/search [get]
func SearchHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		q := strings.TrimSpace(c.QueryParam("q"))
		if q == "" {
			return handler.Fail(c, http.StatusBadRequest, "q is required")
		}
		page, err := handler.PageParams(c)
		if err != nil {
			return handler.Fail(c, http.StatusBadRequest, err.Error())
		}
		list, total, err := searchProducts(c.Request().Context(), db, q, page)
		if err != nil {
			return handler.Error(c, err)
		}
		return c.JSON(http.StatusOK, handler.NewPage(list, page, total))
	}
}

// @Summary     Autocomplete product and brand names
// @Tags        products
// @Produce     json
// @Param       q     query    string false "前綴"
// @Param       limit query    int    false "筆數 (上限 50)" default(10)
// @Success     200   {object} api.AutocompleteResponse
// @Failure     400   {object} api.ErrorResponse
// @Router      /v1/autocomplete [get]
func AutocompleteHandler(index Suggester) echo.HandlerFunc {
	return func(c echo.Context) error {
		q := c.QueryParam("q")
		limit := autocomplete.DefaultLimit
		if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
			return handler.Fail(c, http.StatusBadRequest, "limit must be an integer")
		}
		suggestions := index.Search(q, limit)
		if suggestions == nil {
			suggestions = []string{}
		}
		return c.JSON(http.StatusOK, api.AutocompleteResponse{Query: q, Suggestions: suggestions})
	}
}

// @Summary     List brands
// @Tags        products
// @Produce     json
// @Success     200 {array}  model.Brand
// @Failure     500 {object} api.ErrorResponse
// @Router      /v1/brands [get]
func ListBrandsHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		brands, err := listBrands(c.Request().Context(), db)
		if err != nil {
			return handler.Error(c, err)
		}
		return c.JSON(http.StatusOK, brands)
	}
}

// @Summary     List categories
// @Description 回傳所有分類與其細節表欄位
// @Tags        products
// @Produce     json
// @Success     200 {array} api.CategoryResponse
// @Router      /v1/categories [get]
func ListCategoriesHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		cats := model.Categories()
		resp := make([]api.CategoryResponse, 0, len(cats))
		for _, cat := range cats {
			table, _ := cat.DetailTable()
			cols, _ := cat.DetailColumns()
			resp = append(resp, api.CategoryResponse{Slug: cat, DetailTable: table, DetailColumns: cols})
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// @Summary     Catalog statistics
// @Tags        products
// @Produce     json
// @Success     200 {object} model.ProductStats
// @Failure     500 {object} api.ErrorResponse
// @Router      /v1/stats [get]
func StatsHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		stats, err := getProductStats(c.Request().Context(), db)
		if err != nil {
			return handler.Error(c, err)
		}
		return c.JSON(http.StatusOK, stats)
	}
}
