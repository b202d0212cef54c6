package store

import (
	"context"

	"github.com/google/uuid"

	"supplement-iq/internal/database"
	"supplement-iq/internal/model"
)

// CreateReview 新增評論；同一使用者對同一商品重複評論回傳 ErrConflict
func CreateReview(ctx context.Context, db database.Querier, r *model.Review) error {
	err := db.QueryRow(ctx,
		`INSERT INTO product_reviews (product_id, user_id, rating, title, body)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		r.ProductID, r.UserID, r.Rating, r.Title, r.Body,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return wrap("CreateReview", err)
	}
	return nil
}

func ListReviews(ctx context.Context, db database.Querier, productID int, page Page) ([]model.Review, int, error) {
	page = page.Normalize()
	var total int
	if err := db.QueryRow(ctx,
		`SELECT COUNT(*) FROM product_reviews WHERE product_id = $1`, productID,
	).Scan(&total); err != nil {
		return nil, 0, wrap("ListReviews", err)
	}

	rows, err := db.Query(ctx,
		`SELECT r.id, r.product_id, r.user_id, u.username, r.rating, r.title, r.body, r.created_at
		 FROM product_reviews r
		 JOIN users u ON u.id = r.user_id
		 WHERE r.product_id = $1
		 ORDER BY r.created_at DESC, r.id DESC
		 LIMIT $2 OFFSET $3`,
		productID, page.Limit, page.Offset(),
	)
	if err != nil {
		return nil, 0, wrap("ListReviews", err)
	}
	defer rows.Close()

	reviews := []model.Review{}
	for rows.Next() {
		var r model.Review
		if err := rows.Scan(&r.ID, &r.ProductID, &r.UserID, &r.Username, &r.Rating, &r.Title, &r.Body, &r.CreatedAt); err != nil {
			return nil, 0, wrap("ListReviews", err)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrap("ListReviews", err)
	}
	return reviews, total, nil
}

// AwardBadge 頒發徽章，已擁有時不做任何事；回傳是否為新頒發
func AwardBadge(ctx context.Context, db database.Querier, userID uuid.UUID, badge string) (bool, error) {
	tag, err := db.Exec(ctx,
		`INSERT INTO user_badges (user_id, badge) VALUES ($1, $2)
		 ON CONFLICT (user_id, badge) DO NOTHING`,
		userID, badge,
	)
	if err != nil {
		return false, wrap("AwardBadge", err)
	}
	return tag.RowsAffected() > 0, nil
}

func ListBadges(ctx context.Context, db database.Querier, userID uuid.UUID) ([]model.Badge, error) {
	rows, err := db.Query(ctx,
		`SELECT user_id, badge, awarded_at FROM user_badges WHERE user_id = $1 ORDER BY awarded_at`,
		userID,
	)
	if err != nil {
		return nil, wrap("ListBadges", err)
	}
	defer rows.Close()

	badges := []model.Badge{}
	for rows.Next() {
		var b model.Badge
		if err := rows.Scan(&b.UserID, &b.Badge, &b.AwardedAt); err != nil {
			return nil, wrap("ListBadges", err)
		}
		badges = append(badges, b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("ListBadges", err)
	}
	return badges, nil
}

// InsertActivity 寫入操作紀錄
func InsertActivity(ctx context.Context, db database.Querier, a *model.ActivityLog) error {
	if a.Metadata == nil {
		a.Metadata = map[string]any{}
	}
	err := db.QueryRow(ctx,
		`INSERT INTO activity_logs (user_id, action, entity_type, entity_id, metadata)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		a.UserID, a.Action, a.EntityType, a.EntityID, a.Metadata,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return wrap("InsertActivity", err)
	}
	return nil
}

// ListActivity 依時間新到舊列出最近的操作紀錄
func ListActivity(ctx context.Context, db database.Querier, limit int) ([]model.ActivityLog, error) {
	if limit <= 0 || limit > MaxLimit {
		limit = 50
	}
	rows, err := db.Query(ctx,
		`SELECT id, user_id, action, entity_type, entity_id, metadata, created_at
		 FROM activity_logs ORDER BY created_at DESC, id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, wrap("ListActivity", err)
	}
	defer rows.Close()

	logs := []model.ActivityLog{}
	for rows.Next() {
		var a model.ActivityLog
		if err := rows.Scan(&a.ID, &a.UserID, &a.Action, &a.EntityType, &a.EntityID, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, wrap("ListActivity", err)
		}
		logs = append(logs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("ListActivity", err)
	}
	return logs, nil
}
