package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"supplement-iq/internal/database"
	"supplement-iq/internal/model"
)

// UpsertDetails 寫入商品的分類細節列 (每個商品只有一列)。
// 欄位必須在分類白名單內；空白 details 仍會建立一列。
func UpsertDetails(ctx context.Context, db database.Querier, productID int, category model.Category, details map[string]any) error {
	table, err := category.DetailTable()
	if err != nil {
		return wrap("UpsertDetails", err)
	}
	values, err := model.NormalizeDetails(category, details)
	if err != nil {
		return wrap("UpsertDetails", err)
	}

	cols := make([]string, 0, len(values))
	for k := range values {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	insertCols := append([]string{"product_id"}, cols...)
	placeholders := make([]string, len(insertCols))
	args := make([]any, len(insertCols))
	args[0] = productID
	for i := range insertCols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if i > 0 {
			args[i] = values[insertCols[i]]
		}
	}

	conflict := "DO NOTHING"
	if len(cols) > 0 {
		sets := make([]string, len(cols))
		for i, c := range cols {
			sets[i] = fmt.Sprintf("%s = EXCLUDED.%s", c, c)
		}
		conflict = "DO UPDATE SET " + strings.Join(sets, ", ")
	}

	// table 與欄位名稱皆來自白名單
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (product_id) %s",
		table, strings.Join(insertCols, ", "), strings.Join(placeholders, ", "), conflict)
	if _, err := db.Exec(ctx, query, args...); err != nil {
		return wrap("UpsertDetails", err)
	}
	return nil
}

// GetDetails 取得細節欄位；沒有細節列時回傳空 map
func GetDetails(ctx context.Context, db database.Querier, productID int, category model.Category) (map[string]any, error) {
	table, err := category.DetailTable()
	if err != nil {
		return nil, wrap("GetDetails", err)
	}
	var details map[string]any
	err = db.QueryRow(ctx,
		fmt.Sprintf(`SELECT to_jsonb(d) - 'product_id' FROM %s d WHERE d.product_id = $1`, table),
		productID,
	).Scan(&details)
	if err != nil {
		if wrapped := wrap("GetDetails", err); isNotFound(wrapped) {
			return map[string]any{}, nil
		}
		return nil, wrap("GetDetails", err)
	}
	return details, nil
}

func DeleteDetails(ctx context.Context, db database.Querier, productID int, category model.Category) error {
	table, err := category.DetailTable()
	if err != nil {
		return wrap("DeleteDetails", err)
	}
	if _, err := db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE product_id = $1`, table), productID); err != nil {
		return wrap("DeleteDetails", err)
	}
	return nil
}
