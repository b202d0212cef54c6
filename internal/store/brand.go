package store

import (
	"context"
	"strings"

	"supplement-iq/internal/database"
	"supplement-iq/internal/model"
)

const brandColumns = `id, name, slug, website, product_count, created_at`

func scanBrand(row interface{ Scan(...any) error }) (*model.Brand, error) {
	b := &model.Brand{}
	if err := row.Scan(&b.ID, &b.Name, &b.Slug, &b.Website, &b.ProductCount, &b.CreatedAt); err != nil {
		return nil, err
	}
	return b, nil
}

// ListBrands 依名稱排序列出所有品牌
func ListBrands(ctx context.Context, db database.Querier) ([]model.Brand, error) {
	rows, err := db.Query(ctx, `SELECT `+brandColumns+` FROM brands ORDER BY name`)
	if err != nil {
		return nil, wrap("ListBrands", err)
	}
	defer rows.Close()

	brands := []model.Brand{}
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, wrap("ListBrands", err)
		}
		brands = append(brands, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("ListBrands", err)
	}
	return brands, nil
}

func GetBrandByID(ctx context.Context, db database.Querier, id int) (*model.Brand, error) {
	b, err := scanBrand(db.QueryRow(ctx, `SELECT `+brandColumns+` FROM brands WHERE id = $1`, id))
	if err != nil {
		return nil, wrap("GetBrandByID", err)
	}
	return b, nil
}

// GetOrCreateBrand 以名稱 (不分大小寫) 取得品牌，不存在時建立。需在交易內呼叫。
func GetOrCreateBrand(ctx context.Context, db database.Querier, name string) (*model.Brand, error) {
	name = strings.TrimSpace(name)
	b, err := scanBrand(db.QueryRow(ctx,
		`SELECT `+brandColumns+` FROM brands WHERE LOWER(name) = LOWER($1)`,
		name,
	))
	if err == nil {
		return b, nil
	}
	if wrapped := wrap("GetOrCreateBrand", err); !isNotFound(wrapped) {
		return nil, wrapped
	}

	b, err = scanBrand(db.QueryRow(ctx,
		`INSERT INTO brands (name, slug) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING `+brandColumns,
		name,
		model.Slugify(name),
	))
	if err != nil {
		return nil, wrap("GetOrCreateBrand", err)
	}
	return b, nil
}

// AdjustBrandProductCount 調整品牌商品數，不會低於 0
func AdjustBrandProductCount(ctx context.Context, db database.Querier, brandID, delta int) error {
	_, err := db.Exec(ctx,
		`UPDATE brands SET product_count = GREATEST(product_count + $1, 0) WHERE id = $2`,
		delta,
		brandID,
	)
	if err != nil {
		return wrap("AdjustBrandProductCount", err)
	}
	return nil
}
