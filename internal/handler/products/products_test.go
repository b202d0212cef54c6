package products

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"supplement-iq/internal/autocomplete"
	"supplement-iq/internal/cache"
	"supplement-iq/internal/database"
	"supplement-iq/internal/handler"
	"supplement-iq/internal/logging"
	"supplement-iq/internal/middleware"
	"supplement-iq/internal/model"
	"supplement-iq/internal/store"
)

func restore() {
	listProducts = store.ListProducts
	searchProducts = store.SearchProducts
	getProduct = store.GetProduct
	getDetails = store.GetDetails
	topProducts = store.TopProducts
	getProductStats = store.GetProductStats
	listBrands = store.ListBrands
	listReviews = store.ListReviews
}

func newCtx(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = handler.NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withID(c echo.Context, id string) echo.Context {
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}

func newCache() *cache.ProductCache {
	return cache.NewProductCache(nil, time.UTC, logging.Discard())
}

var whey = model.Product{
	ID: 7, BrandID: 3, Category: model.CategoryProtein, Name: "Gold Standard 100% Whey",
	Slug: "gold-standard-100-whey", Price: 59.99, TransparencyScore: 70, ConfidenceLevel: "likely",
	Brand: &model.Brand{ID: 3, Name: "Optimum Nutrition", Slug: "optimum-nutrition"},
}

func TestParseFilter(t *testing.T) {
	cases := []struct {
		query string
		err   string
	}{
		{"/?category=vitamins", `unknown category "vitamins"`},
		{"/?sort_by=rating", "sort_by must be one of"},
		{"/?sort_order=up", "sort_order must be asc or desc"},
		{"/?price_min=abc", "must be numbers"},
		{"/?price_min=-1", "must not be negative"},
		{"/?price_min=50&price_max=10", "price_min must not exceed price_max"},
		{"/?page=4611686018427387904", "page must be at most"},
	}
	for _, tc := range cases {
		ctx, _ := newCtx(http.MethodGet, tc.query, "")
		_, err := parseFilter(ctx)
		require.ErrorContains(t, err, tc.err, tc.query)
	}

	ctx, _ := newCtx(http.MethodGet, "/?category=eaa&brand=+Transparent+Labs+&price_min=0&sort_by=price&sort_order=ASC&limit=500", "")
	f, err := parseFilter(ctx)
	require.NoError(t, err)
	require.Equal(t, model.CategoryEAA, f.Category)
	require.Equal(t, "Transparent Labs", f.Brand)
	require.NotNil(t, f.PriceMin)
	require.Zero(t, *f.PriceMin)
	require.Nil(t, f.PriceMax)
	require.Equal(t, "asc", f.SortOrder)
	require.Equal(t, store.Page{Page: 1, Limit: store.MaxLimit}, f.Page)
}

func TestListProductsHandler(t *testing.T) {
	t.Run("bad filter", func(t *testing.T) {
		ctx, rec := newCtx(http.MethodGet, "/?sort_by=rating", "")
		require.NoError(t, ListProductsHandler(nil, newCache())(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("cached", func(t *testing.T) {
		t.Cleanup(restore)
		calls := 0
		listProducts = func(_ context.Context, _ database.Querier, f store.ProductFilter) ([]model.Product, int, error) {
			calls++
			require.Equal(t, model.CategoryProtein, f.Category)
			return []model.Product{whey}, 21, nil
		}
		pc := newCache()
		for i := 0; i < 2; i++ {
			ctx, rec := newCtx(http.MethodGet, "/?category=protein", "")
			require.NoError(t, ListProductsHandler(nil, pc)(ctx))
			require.Equal(t, http.StatusOK, rec.Code)
			body := rec.Body.String()
			require.Contains(t, body, `"total":21`)
			require.Contains(t, body, `"total_pages":2`)
			require.Contains(t, body, `"slug":"gold-standard-100-whey"`)
		}
		require.Equal(t, 1, calls)

		require.NoError(t, pc.Invalidate(context.Background(), cache.NamespaceProducts))
		ctx, _ := newCtx(http.MethodGet, "/?category=protein", "")
		require.NoError(t, ListProductsHandler(nil, pc)(ctx))
		require.Equal(t, 2, calls)
	})

	t.Run("store error", func(t *testing.T) {
		t.Cleanup(restore)
		listProducts = func(context.Context, database.Querier, store.ProductFilter) ([]model.Product, int, error) {
			return nil, 0, errors.New("down")
		}
		ctx, rec := newCtx(http.MethodGet, "/", "")
		require.NoError(t, ListProductsHandler(nil, newCache())(ctx))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestTopProductsHandler(t *testing.T) {
	t.Cleanup(restore)
	var gotLimit int
	topProducts = func(_ context.Context, _ database.Querier, limit int) ([]model.TopProduct, error) {
		gotLimit = limit
		return []model.TopProduct{{Product: whey, AverageRating: 4.5, ReviewCount: 2}}, nil
	}

	ctx, rec := newCtx(http.MethodGet, "/?limit=500", "")
	require.NoError(t, TopProductsHandler(nil, newCache())(ctx))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, maxTopLimit, gotLimit)
	require.Contains(t, rec.Body.String(), `"average_rating":4.5`)

	ctx, rec = newCtx(http.MethodGet, "/?limit=x", "")
	require.NoError(t, TopProductsHandler(nil, newCache())(ctx))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProductHandler(t *testing.T) {
	t.Run("invalid id", func(t *testing.T) {
		ctx, rec := newCtx(http.MethodGet, "/", "")
		require.NoError(t, GetProductHandler(nil)(withID(ctx, "abc")))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		t.Cleanup(restore)
		getProduct = func(context.Context, database.Querier, int) (*model.Product, error) {
			return nil, fmt.Errorf("GetProduct: %w", store.ErrNotFound)
		}
		ctx, rec := newCtx(http.MethodGet, "/", "")
		require.NoError(t, GetProductHandler(nil)(withID(ctx, "9")))
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Contains(t, rec.Body.String(), "product not found")
	})

	t.Run("with details", func(t *testing.T) {
		t.Cleanup(restore)
		getProduct = func(_ context.Context, _ database.Querier, id int) (*model.Product, error) {
			p := whey
			p.ID = id
			return &p, nil
		}
		getDetails = func(_ context.Context, _ database.Querier, id int, c model.Category) (map[string]any, error) {
			require.Equal(t, 7, id)
			require.Equal(t, model.CategoryProtein, c)
			return map[string]any{"protein_claim_g": 24.0}, nil
		}
		ctx, rec := newCtx(http.MethodGet, "/", "")
		require.NoError(t, GetProductHandler(nil)(withID(ctx, "7")))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"protein_claim_g":24`)
		require.Contains(t, rec.Body.String(), `"name":"Optimum Nutrition"`)
	})
}

func TestSearchHandler(t *testing.T) {
	t.Cleanup(restore)
	ctx, rec := newCtx(http.MethodGet, "/?q=+", "")
	require.NoError(t, SearchHandler(nil)(ctx))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "q is required")

	searchProducts = func(_ context.Context, _ database.Querier, q string, page store.Page) ([]model.Product, int, error) {
		require.Equal(t, "whey", q)
		require.Equal(t, 2, page.Page)
		return nil, 0, nil
	}
	ctx, rec = newCtx(http.MethodGet, "/?q=whey&page=2", "")
	require.NoError(t, SearchHandler(nil)(ctx))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestAutocompleteHandler(t *testing.T) {
	idx := autocomplete.New()
	idx.Insert(autocomplete.Entry{ProductID: 1, Name: "Gold Standard 100% Whey", BrandName: "Optimum Nutrition"})
	idx.Insert(autocomplete.Entry{ProductID: 2, Name: "Grass-Fed Whey", BrandName: "Transparent Labs"})

	ctx, rec := newCtx(http.MethodGet, "/?q=g", "")
	require.NoError(t, AutocompleteHandler(idx)(ctx))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"query":"g","suggestions":["Gold Standard 100% Whey","Grass-Fed Whey"]}`, rec.Body.String())

	ctx, rec = newCtx(http.MethodGet, "/", "")
	require.NoError(t, AutocompleteHandler(idx)(ctx))
	require.JSONEq(t, `{"query":"","suggestions":[]}`, rec.Body.String())
}

func TestListCategoriesHandler(t *testing.T) {
	ctx, rec := newCtx(http.MethodGet, "/", "")
	require.NoError(t, ListCategoriesHandler()(ctx))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `"slug":"appetite-suppressant","detail_table":"fat_burner_details"`)
	require.Contains(t, body, `"creatine_details"`)
}

func TestBrandsAndStats(t *testing.T) {
	t.Cleanup(restore)
	listBrands = func(context.Context, database.Querier) ([]model.Brand, error) {
		return []model.Brand{{ID: 3, Name: "Optimum Nutrition", ProductCount: 4}}, nil
	}
	getProductStats = func(context.Context, database.Querier) (*model.ProductStats, error) {
		return nil, errors.New("down")
	}

	ctx, rec := newCtx(http.MethodGet, "/", "")
	require.NoError(t, ListBrandsHandler(nil)(ctx))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"product_count":4`)

	ctx, rec = newCtx(http.MethodGet, "/", "")
	require.NoError(t, StatsHandler(nil)(ctx))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

type fakeReviews struct {
	PostReviewFn func(ctx context.Context, r *model.Review) (bool, error)
}

func (f *fakeReviews) PostReview(ctx context.Context, r *model.Review) (bool, error) {
	if f.PostReviewFn != nil {
		return f.PostReviewFn(ctx, r)
	}
	panic("unexpected PostReview")
}

func TestListReviewsHandler(t *testing.T) {
	t.Cleanup(restore)
	listReviews = func(_ context.Context, _ database.Querier, productID int, page store.Page) ([]model.Review, int, error) {
		require.Equal(t, 7, productID)
		return []model.Review{{ID: 1, ProductID: 7, Rating: 5, Username: "alice"}}, 1, nil
	}
	ctx, rec := newCtx(http.MethodGet, "/", "")
	require.NoError(t, ListReviewsHandler(nil)(withID(ctx, "7")))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"username":"alice"`)
}

func TestCreateReviewHandler(t *testing.T) {
	user := &model.User{ID: uuid.New(), Username: "alice", Role: model.RoleNewcomer}
	post := func(body string, svc ReviewPoster) *httptest.ResponseRecorder {
		ctx, rec := newCtx(http.MethodPost, "/", body)
		ctx.Set(middleware.ContextUserKey, user)
		require.NoError(t, CreateReviewHandler(svc)(withID(ctx, "7")))
		return rec
	}

	t.Run("unauthenticated", func(t *testing.T) {
		ctx, rec := newCtx(http.MethodPost, "/", `{"rating":5}`)
		require.NoError(t, CreateReviewHandler(&fakeReviews{})(withID(ctx, "7")))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rating out of range", func(t *testing.T) {
		rec := post(`{"rating":6}`, &fakeReviews{})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate", func(t *testing.T) {
		rec := post(`{"rating":4}`, &fakeReviews{PostReviewFn: func(context.Context, *model.Review) (bool, error) {
			return false, fmt.Errorf("CreateReview: %w: product_reviews_product_id_user_id_key", store.ErrConflict)
		}})
		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("missing product", func(t *testing.T) {
		rec := post(`{"rating":4}`, &fakeReviews{PostReviewFn: func(context.Context, *model.Review) (bool, error) {
			return false, fmt.Errorf("GetProduct: %w", store.ErrNotFound)
		}})
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("created", func(t *testing.T) {
		rec := post(`{"rating":5,"title":"Mixes well"}`, &fakeReviews{PostReviewFn: func(_ context.Context, r *model.Review) (bool, error) {
			require.Equal(t, 7, r.ProductID)
			require.Equal(t, user.ID, r.UserID)
			require.Equal(t, "Mixes well", *r.Title)
			r.ID = 11
			return true, nil
		}})
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Contains(t, rec.Body.String(), `"new_badge":true`)
		require.Contains(t, rec.Body.String(), `"id":11`)
	})
}
