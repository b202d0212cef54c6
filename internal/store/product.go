package store

import (
	"context"
	"fmt"
	"strings"

	"supplement-iq/internal/database"
	"supplement-iq/internal/model"
)

const productSelect = `
	SELECT p.id, p.brand_id, p.category, p.name, p.slug, p.release_year,
	       p.image_url, p.description, p.servings_per_container, p.price,
	       p.serving_size_g, p.transparency_score, p.confidence_level,
	       p.created_at, p.updated_at,
	       b.id, b.name, b.slug, b.website, b.product_count, b.created_at
	FROM products p
	JOIN brands b ON p.brand_id = b.id`

func scanProduct(row interface{ Scan(...any) error }, extra ...any) (*model.Product, error) {
	p := &model.Product{}
	b := &model.Brand{}
	dest := []any{
		&p.ID, &p.BrandID, &p.Category, &p.Name, &p.Slug, &p.ReleaseYear,
		&p.ImageURL, &p.Description, &p.ServingsPerContainer, &p.Price,
		&p.ServingSizeG, &p.TransparencyScore, &p.ConfidenceLevel,
		&p.CreatedAt, &p.UpdatedAt,
		&b.ID, &b.Name, &b.Slug, &b.Website, &b.ProductCount, &b.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	p.Brand = b
	return p, nil
}

// 允許排序的欄位
var productSortColumns = map[string]string{
	"price":              "p.price",
	"name":               "p.name",
	"transparency_score": "p.transparency_score",
	"created_at":         "p.created_at",
}

// ValidSortField 判斷 sort_by 是否在白名單內
func ValidSortField(s string) bool {
	_, ok := productSortColumns[s]
	return ok
}

// ProductFilter 為商品列表的篩選與排序條件
type ProductFilter struct {
	Category  model.Category
	Brand     string
	PriceMin  *float64
	PriceMax  *float64
	SortBy    string
	SortOrder string
	Page      Page
}

// Normalize 套用排序與分頁預設值
func (f ProductFilter) Normalize() ProductFilter {
	if !ValidSortField(f.SortBy) {
		f.SortBy = "created_at"
	}
	f.SortOrder = strings.ToLower(f.SortOrder)
	if f.SortOrder != "asc" && f.SortOrder != "desc" {
		f.SortOrder = "desc"
	}
	f.Page = f.Page.Normalize()
	return f
}

// CacheKey 產生穩定的快取 key
func (f ProductFilter) CacheKey() string {
	f = f.Normalize()
	lo, hi := "", ""
	if f.PriceMin != nil {
		lo = fmt.Sprintf("%g", *f.PriceMin)
	}
	if f.PriceMax != nil {
		hi = fmt.Sprintf("%g", *f.PriceMax)
	}
	return fmt.Sprintf("c=%s|b=%s|min=%s|max=%s|s=%s:%s|p=%d|l=%d",
		f.Category, strings.ToLower(f.Brand), lo, hi, f.SortBy, f.SortOrder, f.Page.Page, f.Page.Limit)
}

func (f ProductFilter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Category != "" {
		add("p.category = $%d", f.Category)
	}
	if f.Brand != "" {
		add("(LOWER(b.name) = LOWER($%[1]d) OR b.slug = LOWER($%[1]d))", f.Brand)
	}
	if f.PriceMin != nil {
		add("p.price >= $%d", *f.PriceMin)
	}
	if f.PriceMax != nil {
		add("p.price <= $%d", *f.PriceMax)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListProducts 回傳分頁後的商品與總筆數
func ListProducts(ctx context.Context, db database.Querier, f ProductFilter) ([]model.Product, int, error) {
	f = f.Normalize()
	where, args := f.where()

	var total int
	if err := db.QueryRow(ctx,
		`SELECT COUNT(*) FROM products p JOIN brands b ON p.brand_id = b.id`+where,
		args...,
	).Scan(&total); err != nil {
		return nil, 0, wrap("ListProducts", err)
	}

	query := fmt.Sprintf("%s%s ORDER BY %s %s, p.id LIMIT $%d OFFSET $%d",
		productSelect, where, productSortColumns[f.SortBy], strings.ToUpper(f.SortOrder),
		len(args)+1, len(args)+2)
	products, err := queryProducts(ctx, db, query, append(args, f.Page.Limit, f.Page.Offset())...)
	if err != nil {
		return nil, 0, wrap("ListProducts", err)
	}
	return products, total, nil
}

// SearchProducts 以商品名稱或品牌名稱模糊搜尋
func SearchProducts(ctx context.Context, db database.Querier, q string, page Page) ([]model.Product, int, error) {
	page = page.Normalize()
	pattern := "%" + escapeLike(strings.TrimSpace(q)) + "%"

	var total int
	if err := db.QueryRow(ctx,
		`SELECT COUNT(*) FROM products p JOIN brands b ON p.brand_id = b.id
		 WHERE p.name ILIKE $1 OR b.name ILIKE $1`,
		pattern,
	).Scan(&total); err != nil {
		return nil, 0, wrap("SearchProducts", err)
	}

	products, err := queryProducts(ctx, db,
		productSelect+` WHERE p.name ILIKE $1 OR b.name ILIKE $1
		 ORDER BY p.name, p.id LIMIT $2 OFFSET $3`,
		pattern, page.Limit, page.Offset(),
	)
	if err != nil {
		return nil, 0, wrap("SearchProducts", err)
	}
	return products, total, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func queryProducts(ctx context.Context, db database.Querier, query string, args ...any) ([]model.Product, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// GetProduct 取得商品與品牌 (不含細節)
func GetProduct(ctx context.Context, db database.Querier, id int) (*model.Product, error) {
	p, err := scanProduct(db.QueryRow(ctx, productSelect+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, wrap("GetProduct", err)
	}
	return p, nil
}

func InsertProduct(ctx context.Context, db database.Querier, p *model.Product) error {
	err := db.QueryRow(ctx,
		`INSERT INTO products (brand_id, category, name, slug, release_year, image_url, description,
		                       servings_per_container, price, serving_size_g, transparency_score, confidence_level)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id, created_at, updated_at`,
		p.BrandID, p.Category, p.Name, p.Slug, p.ReleaseYear, p.ImageURL, p.Description,
		p.ServingsPerContainer, p.Price, p.ServingSizeG, p.TransparencyScore, p.ConfidenceLevel,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return wrap("InsertProduct", err)
	}
	return nil
}

func UpdateProduct(ctx context.Context, db database.Querier, p *model.Product) error {
	err := db.QueryRow(ctx,
		`UPDATE products SET brand_id = $1, name = $2, slug = $3, release_year = $4, image_url = $5,
		        description = $6, servings_per_container = $7, price = $8, serving_size_g = $9,
		        transparency_score = $10, confidence_level = $11, updated_at = NOW()
		 WHERE id = $12
		 RETURNING created_at, updated_at`,
		p.BrandID, p.Name, p.Slug, p.ReleaseYear, p.ImageURL, p.Description,
		p.ServingsPerContainer, p.Price, p.ServingSizeG, p.TransparencyScore, p.ConfidenceLevel,
		p.ID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return wrap("UpdateProduct", err)
	}
	return nil
}

func DeleteProduct(ctx context.Context, db database.Querier, id int) error {
	tag, err := db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return wrap("DeleteProduct", err)
	}
	if tag.RowsAffected() == 0 {
		return wrap("DeleteProduct", ErrNotFound)
	}
	return nil
}

// TopProducts 依平均評分 (至少一則評論) 排序
func TopProducts(ctx context.Context, db database.Querier, limit int) ([]model.TopProduct, error) {
	if limit <= 0 || limit > MaxLimit {
		limit = 10
	}
	rows, err := db.Query(ctx,
		`SELECT p.id, p.brand_id, p.category, p.name, p.slug, p.release_year,
		        p.image_url, p.description, p.servings_per_container, p.price,
		        p.serving_size_g, p.transparency_score, p.confidence_level,
		        p.created_at, p.updated_at,
		        b.id, b.name, b.slug, b.website, b.product_count, b.created_at,
		        r.avg_rating, r.review_count
		 FROM products p
		 JOIN brands b ON p.brand_id = b.id
		 JOIN (SELECT product_id, AVG(rating)::float8 AS avg_rating, COUNT(*)::int AS review_count
		       FROM product_reviews GROUP BY product_id) r ON r.product_id = p.id
		 ORDER BY r.avg_rating DESC, r.review_count DESC, p.id
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, wrap("TopProducts", err)
	}
	defer rows.Close()

	top := []model.TopProduct{}
	for rows.Next() {
		var t model.TopProduct
		p, err := scanProduct(rows, &t.AverageRating, &t.ReviewCount)
		if err != nil {
			return nil, wrap("TopProducts", err)
		}
		t.Product = *p
		top = append(top, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("TopProducts", err)
	}
	return top, nil
}

func GetProductStats(ctx context.Context, db database.Querier) (*model.ProductStats, error) {
	s := &model.ProductStats{}
	err := db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(DISTINCT brand_id),
		        COALESCE(AVG(price), 0)::float8,
		        COALESCE(AVG(transparency_score), 0)::float8,
		        COUNT(*) FILTER (WHERE confidence_level = 'verified')
		 FROM products`,
	).Scan(&s.TotalProducts, &s.TotalBrands, &s.AveragePrice, &s.AverageTransparency, &s.VerifiedProducts)
	if err != nil {
		return nil, wrap("GetProductStats", err)
	}
	return s, nil
}

// NameEntry 為自動完成索引的來源資料
type NameEntry struct {
	ProductID int
	Name      string
	BrandName string
}

func ListProductNames(ctx context.Context, db database.Querier) ([]NameEntry, error) {
	rows, err := db.Query(ctx,
		`SELECT p.id, p.name, b.name FROM products p JOIN brands b ON p.brand_id = b.id`)
	if err != nil {
		return nil, wrap("ListProductNames", err)
	}
	defer rows.Close()

	entries := []NameEntry{}
	for rows.Next() {
		var e NameEntry
		if err := rows.Scan(&e.ProductID, &e.Name, &e.BrandName); err != nil {
			return nil, wrap("ListProductNames", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("ListProductNames", err)
	}
	return entries, nil
}
