package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"supplement-iq/internal/database"
	"supplement-iq/internal/model"
)

func productRow(p model.Product) []any {
	b := p.Brand
	return []any{
		p.ID, p.BrandID, p.Category, p.Name, p.Slug, p.ReleaseYear,
		p.ImageURL, p.Description, p.ServingsPerContainer, p.Price,
		p.ServingSizeG, p.TransparencyScore, p.ConfidenceLevel,
		p.CreatedAt, p.UpdatedAt,
		b.ID, b.Name, b.Slug, b.Website, b.ProductCount, b.CreatedAt,
	}
}

func sampleProduct(id int) model.Product {
	now := time.Now()
	return model.Product{
		ID: id, BrandID: 3, Category: model.CategoryProtein, Name: "Gold Whey", Slug: "gold-whey",
		Price: 59.99, TransparencyScore: 80, ConfidenceLevel: "verified", CreatedAt: now, UpdatedAt: now,
		Brand: &model.Brand{ID: 3, Name: "Optimum", Slug: "optimum", ProductCount: 4, CreatedAt: now},
	}
}

func TestProductFilterNormalize(t *testing.T) {
	f := ProductFilter{SortBy: "drop table", SortOrder: "sideways"}.Normalize()
	require.Equal(t, "created_at", f.SortBy)
	require.Equal(t, "desc", f.SortOrder)
	require.Equal(t, Page{Page: 1, Limit: 20}, f.Page)

	f = ProductFilter{SortBy: "price", SortOrder: "ASC"}.Normalize()
	require.Equal(t, "price", f.SortBy)
	require.Equal(t, "asc", f.SortOrder)

	require.True(t, ValidSortField("transparency_score"))
	require.False(t, ValidSortField("rating"))
}

func TestProductFilterCacheKey(t *testing.T) {
	lo := 10.0
	a := ProductFilter{Category: model.CategoryProtein, Brand: "Optimum", PriceMin: &lo}
	b := ProductFilter{Category: model.CategoryProtein, Brand: "optimum", PriceMin: &lo, SortBy: "created_at", SortOrder: "desc", Page: Page{Page: 1, Limit: 20}}
	require.Equal(t, a.CacheKey(), b.CacheKey())
	require.Equal(t, "c=protein|b=optimum|min=10|max=|s=created_at:desc|p=1|l=20", a.CacheKey())

	c := a
	c.Page = Page{Page: 2}
	require.NotEqual(t, a.CacheKey(), c.CacheKey())
}

func TestProductFilterWhere(t *testing.T) {
	where, args := ProductFilter{}.where()
	require.Empty(t, where)
	require.Empty(t, args)

	lo, hi := 5.0, 40.0
	where, args = ProductFilter{Category: model.CategoryCreatine, Brand: "Optimum", PriceMin: &lo, PriceMax: &hi}.where()
	require.Equal(t,
		" WHERE p.category = $1 AND (LOWER(b.name) = LOWER($2) OR b.slug = LOWER($2)) AND p.price >= $3 AND p.price <= $4",
		where)
	require.Equal(t, []any{model.CategoryCreatine, "Optimum", 5.0, 40.0}, args)
}

func TestListProducts(t *testing.T) {
	var calls []query
	db := &database.FakeDB{
		QueryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			calls = append(calls, query{sql, args})
			return &database.FakeRow{Vals: []any{41}}
		},
		QueryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			calls = append(calls, query{sql, args})
			return &database.FakeRows{Data: [][]any{productRow(sampleProduct(1)), productRow(sampleProduct(2))}}, nil
		},
	}
	products, total, err := ListProducts(context.Background(), db, ProductFilter{
		Category: model.CategoryProtein, SortBy: "price", SortOrder: "asc", Page: Page{Page: 3, Limit: 10},
	})
	require.NoError(t, err)
	require.Equal(t, 41, total)
	require.Len(t, products, 2)
	require.Equal(t, "Optimum", products[0].Brand.Name)

	require.Len(t, calls, 2)
	require.Contains(t, calls[0].sql, "SELECT COUNT(*)")
	require.Equal(t, []any{model.CategoryProtein}, calls[0].args)
	require.Contains(t, calls[1].sql, "ORDER BY p.price ASC, p.id LIMIT $2 OFFSET $3")
	require.Equal(t, []any{model.CategoryProtein, 10, 20}, calls[1].args)
}

func TestListProductsErrors(t *testing.T) {
	db := &database.FakeDB{QueryRowFn: func(context.Context, string, ...any) pgx.Row {
		return &database.FakeRow{Err: errors.New("count")}
	}}
	_, _, err := ListProducts(context.Background(), db, ProductFilter{})
	require.ErrorContains(t, err, "ListProducts: count")

	db.QueryRowFn = func(context.Context, string, ...any) pgx.Row { return &database.FakeRow{Vals: []any{1}} }
	db.QueryFn = func(context.Context, string, ...any) (pgx.Rows, error) { return nil, errors.New("query") }
	_, _, err = ListProducts(context.Background(), db, ProductFilter{})
	require.ErrorContains(t, err, "ListProducts: query")
}

func TestSearchProductsEscapes(t *testing.T) {
	var pattern any
	db := &database.FakeDB{
		QueryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			pattern = args[0]
			return &database.FakeRow{Vals: []any{0}}
		},
		QueryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			require.Contains(t, sql, "ILIKE $1")
			return &database.FakeRows{}, nil
		},
	}
	products, total, err := SearchProducts(context.Background(), db, "  100%_whey ", Page{})
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, products)
	require.Equal(t, `%100\%\_whey%`, pattern)
}

func TestGetProduct(t *testing.T) {
	want := sampleProduct(7)
	db := &database.FakeDB{QueryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
		require.Equal(t, 7, args[0])
		return &database.FakeRow{Vals: productRow(want)}
	}}
	p, err := GetProduct(context.Background(), db, 7)
	require.NoError(t, err)
	require.Equal(t, want, *p)

	db.QueryRowFn = func(context.Context, string, ...any) pgx.Row { return &database.FakeRow{Err: pgx.ErrNoRows} }
	_, err = GetProduct(context.Background(), db, 7)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestInsertAndUpdateProduct(t *testing.T) {
	now := time.Now()
	db := &database.FakeDB{QueryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
		require.Contains(t, sql, "INSERT INTO products")
		require.Len(t, args, 12)
		return &database.FakeRow{Vals: []any{11, now, now}}
	}}
	p := sampleProduct(0)
	require.NoError(t, InsertProduct(context.Background(), db, &p))
	require.Equal(t, 11, p.ID)

	db.QueryRowFn = func(ctx context.Context, sql string, args ...any) pgx.Row {
		require.NotContains(t, sql, "category")
		require.Equal(t, 11, args[11])
		return &database.FakeRow{Vals: []any{now, now.Add(time.Minute)}}
	}
	require.NoError(t, UpdateProduct(context.Background(), db, &p))
	require.Equal(t, now.Add(time.Minute), p.UpdatedAt)

	db.QueryRowFn = func(context.Context, string, ...any) pgx.Row {
		return &database.FakeRow{Err: &pgconn.PgError{Code: "23505", ConstraintName: "products_brand_id_slug_key"}}
	}
	require.ErrorIs(t, InsertProduct(context.Background(), db, &p), ErrConflict)
}

func TestDeleteProduct(t *testing.T) {
	tag := "DELETE 1"
	db := &database.FakeDB{ExecFn: func(context.Context, string, ...any) (pgconn.CommandTag, error) {
		return pgconn.NewCommandTag(tag), nil
	}}
	require.NoError(t, DeleteProduct(context.Background(), db, 1))
	tag = "DELETE 0"
	require.ErrorIs(t, DeleteProduct(context.Background(), db, 1), ErrNotFound)
}

func TestTopProducts(t *testing.T) {
	db := &database.FakeDB{QueryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
		require.Equal(t, 10, args[0])
		row := append(productRow(sampleProduct(5)), 4.5, 12)
		return &database.FakeRows{Data: [][]any{row}}, nil
	}}
	top, err := TopProducts(context.Background(), db, 0)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, 5, top[0].ID)
	require.Equal(t, 4.5, top[0].AverageRating)
	require.Equal(t, 12, top[0].ReviewCount)
}

func TestGetProductStats(t *testing.T) {
	db := &database.FakeDB{QueryRowFn: func(context.Context, string, ...any) pgx.Row {
		return &database.FakeRow{Vals: []any{120, 30, 44.5, 61.2, 17}}
	}}
	s, err := GetProductStats(context.Background(), db)
	require.NoError(t, err)
	require.Equal(t, model.ProductStats{TotalProducts: 120, TotalBrands: 30, AveragePrice: 44.5, AverageTransparency: 61.2, VerifiedProducts: 17}, *s)
}

func TestListProductNames(t *testing.T) {
	db := &database.FakeDB{QueryFn: func(context.Context, string, ...any) (pgx.Rows, error) {
		return &database.FakeRows{Data: [][]any{{1, "Gold Whey", "Optimum"}, {2, "C4", "Cellucor"}}}, nil
	}}
	names, err := ListProductNames(context.Background(), db)
	require.NoError(t, err)
	require.Equal(t, []NameEntry{{1, "Gold Whey", "Optimum"}, {2, "C4", "Cellucor"}}, names)
}

func TestBrands(t *testing.T) {
	now := time.Now()
	brand := []any{3, "Optimum", "optimum", nil, 4, now}

	db := &database.FakeDB{QueryFn: func(context.Context, string, ...any) (pgx.Rows, error) {
		return &database.FakeRows{Data: [][]any{brand}}, nil
	}}
	brands, err := ListBrands(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, brands, 1)
	require.Nil(t, brands[0].Website)

	// 已存在：只查詢一次
	var sqls []string
	db.QueryRowFn = func(ctx context.Context, sql string, args ...any) pgx.Row {
		sqls = append(sqls, sql)
		return &database.FakeRow{Vals: brand}
	}
	b, err := GetOrCreateBrand(context.Background(), db, " Optimum ")
	require.NoError(t, err)
	require.Equal(t, 3, b.ID)
	require.Len(t, sqls, 1)

	// 不存在：建立並帶入 slug
	sqls = nil
	db.QueryRowFn = func(ctx context.Context, sql string, args ...any) pgx.Row {
		sqls = append(sqls, sql)
		if len(sqls) == 1 {
			return &database.FakeRow{Err: pgx.ErrNoRows}
		}
		require.Equal(t, []any{"Ghost & Co", "ghost-and-co"}, args)
		return &database.FakeRow{Vals: []any{9, "Ghost & Co", "ghost-and-co", nil, 0, now}}
	}
	b, err = GetOrCreateBrand(context.Background(), db, "Ghost & Co")
	require.NoError(t, err)
	require.Equal(t, 9, b.ID)
	require.Len(t, sqls, 2)
	require.Contains(t, sqls[1], "INSERT INTO brands")

	db.QueryRowFn = func(context.Context, string, ...any) pgx.Row { return &database.FakeRow{Err: errors.New("down")} }
	_, err = GetOrCreateBrand(context.Background(), db, "x")
	require.ErrorContains(t, err, "down")

	db.ExecFn = func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
		require.Contains(t, sql, "GREATEST")
		require.Equal(t, []any{-1, 3}, args)
		return pgconn.NewCommandTag("UPDATE 1"), nil
	}
	require.NoError(t, AdjustBrandProductCount(context.Background(), db, 3, -1))
}
