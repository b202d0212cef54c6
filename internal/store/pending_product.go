package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"supplement-iq/internal/database"
	"supplement-iq/internal/model"
)

const pendingSelect = `
	SELECT pp.id, pp.product_id, pp.submitted_by, pp.status, pp.job_type, pp.brand_id,
	       pp.category, pp.name, pp.slug, pp.release_year, pp.image_url, pp.description,
	       pp.servings_per_container, pp.price, pp.serving_size_g, pp.transparency_score,
	       pp.confidence_level, pp.details, pp.notes, pp.submitted_at, pp.reviewed_by,
	       pp.reviewed_at, pp.rejection_reason,
	       b.id, b.name, b.slug, b.website, b.product_count, b.created_at
	FROM pending_products pp
	JOIN brands b ON pp.brand_id = b.id`

func scanPending(row interface{ Scan(...any) error }) (*model.PendingProduct, error) {
	p := &model.PendingProduct{}
	b := &model.Brand{}
	if err := row.Scan(
		&p.ID, &p.ProductID, &p.SubmittedBy, &p.Status, &p.JobType, &p.BrandID,
		&p.Category, &p.Name, &p.Slug, &p.ReleaseYear, &p.ImageURL, &p.Description,
		&p.ServingsPerContainer, &p.Price, &p.ServingSizeG, &p.TransparencyScore,
		&p.ConfidenceLevel, &p.Details, &p.Notes, &p.SubmittedAt, &p.ReviewedBy,
		&p.ReviewedAt, &p.RejectionReason,
		&b.ID, &b.Name, &b.Slug, &b.Website, &b.ProductCount, &b.CreatedAt,
	); err != nil {
		return nil, err
	}
	if p.Details == nil {
		p.Details = map[string]any{}
	}
	p.Brand = b
	return p, nil
}

// InsertPending 新增待審核提案，狀態固定為 pending
func InsertPending(ctx context.Context, db database.Querier, p *model.PendingProduct) error {
	if p.Details == nil {
		p.Details = map[string]any{}
	}
	p.Status = model.StatusPending
	err := db.QueryRow(ctx,
		`INSERT INTO pending_products (product_id, submitted_by, status, job_type, brand_id, category, name, slug,
		                               release_year, image_url, description, servings_per_container, price,
		                               serving_size_g, transparency_score, confidence_level, details, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		 RETURNING id, submitted_at`,
		p.ProductID, p.SubmittedBy, p.Status, p.JobType, p.BrandID, p.Category, p.Name, p.Slug,
		p.ReleaseYear, p.ImageURL, p.Description, p.ServingsPerContainer, p.Price,
		p.ServingSizeG, p.TransparencyScore, p.ConfidenceLevel, p.Details, p.Notes,
	).Scan(&p.ID, &p.SubmittedAt)
	if err != nil {
		return wrap("InsertPending", err)
	}
	return nil
}

func GetPending(ctx context.Context, db database.Querier, id int) (*model.PendingProduct, error) {
	p, err := scanPending(db.QueryRow(ctx, pendingSelect+` WHERE pp.id = $1`, id))
	if err != nil {
		return nil, wrap("GetPending", err)
	}
	return p, nil
}

// GetPendingForUpdate 於交易中鎖定提案列
func GetPendingForUpdate(ctx context.Context, db database.Querier, id int) (*model.PendingProduct, error) {
	p, err := scanPending(db.QueryRow(ctx, pendingSelect+` WHERE pp.id = $1 FOR UPDATE OF pp`, id))
	if err != nil {
		return nil, wrap("GetPendingForUpdate", err)
	}
	return p, nil
}

// PendingFilter 為提案列表條件；空白欄位表示不篩選
type PendingFilter struct {
	Status      model.SubmissionStatus
	SubmittedBy *uuid.UUID
	Page        Page
}

// ListPending 依提交時間 (舊到新) 列出提案與總筆數
func ListPending(ctx context.Context, db database.Querier, f PendingFilter) ([]model.PendingProduct, int, error) {
	f.Page = f.Page.Normalize()
	where := " WHERE TRUE"
	var args []any
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(" AND pp.status = $%d", len(args))
	}
	if f.SubmittedBy != nil {
		args = append(args, *f.SubmittedBy)
		where += fmt.Sprintf(" AND pp.submitted_by = $%d", len(args))
	}

	var total int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM pending_products pp`+where, args...).Scan(&total); err != nil {
		return nil, 0, wrap("ListPending", err)
	}

	query := fmt.Sprintf("%s%s ORDER BY pp.submitted_at, pp.id LIMIT $%d OFFSET $%d",
		pendingSelect, where, len(args)+1, len(args)+2)
	rows, err := db.Query(ctx, query, append(args, f.Page.Limit, f.Page.Offset())...)
	if err != nil {
		return nil, 0, wrap("ListPending", err)
	}
	defer rows.Close()

	list := []model.PendingProduct{}
	for rows.Next() {
		p, err := scanPending(rows)
		if err != nil {
			return nil, 0, wrap("ListPending", err)
		}
		list = append(list, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrap("ListPending", err)
	}
	return list, total, nil
}

func CountPending(ctx context.Context, db database.Querier) (int, error) {
	var n int
	if err := db.QueryRow(ctx,
		`SELECT COUNT(*) FROM pending_products WHERE status = 'pending'`,
	).Scan(&n); err != nil {
		return 0, wrap("CountPending", err)
	}
	return n, nil
}

// MarkReviewed 將仍為 pending 的提案標記為 approved 或 rejected
func MarkReviewed(ctx context.Context, db database.Querier, id int, status model.SubmissionStatus, reviewer uuid.UUID, reason *string) (time.Time, error) {
	var reviewedAt time.Time
	err := db.QueryRow(ctx,
		`UPDATE pending_products
		 SET status = $1, reviewed_by = $2, reviewed_at = NOW(), rejection_reason = $3
		 WHERE id = $4 AND status = 'pending'
		 RETURNING reviewed_at`,
		status, reviewer, reason, id,
	).Scan(&reviewedAt)
	if err != nil {
		return time.Time{}, wrap("MarkReviewed", err)
	}
	return reviewedAt, nil
}

// LinkPendingProduct 記錄新增提案核准後產生的商品 ID
func LinkPendingProduct(ctx context.Context, db database.Querier, id, productID int) error {
	if _, err := db.Exec(ctx,
		`UPDATE pending_products SET product_id = $1 WHERE id = $2`,
		productID, id,
	); err != nil {
		return wrap("LinkPendingProduct", err)
	}
	return nil
}
