package service

import (
	"context"

	"supplement-iq/internal/cache"
	"supplement-iq/internal/database"
	"supplement-iq/internal/logging"
	"supplement-iq/internal/model"
	"supplement-iq/internal/store"
)

type ReviewService struct {
	db    database.DB
	cache *cache.ProductCache
	log   logging.Logger
}

func NewReviewService(db database.DB, c *cache.ProductCache, log logging.Logger) *ReviewService {
	return &ReviewService{db: db, cache: c, log: log}
}

// PostReview 新增商品評論並於首次評論時頒發 first_review 徽章。
// 商品不存在回傳 store.ErrNotFound，重複評論回傳 store.ErrConflict。
func (s *ReviewService) PostReview(ctx context.Context, r *model.Review) (bool, error) {
	if r.Rating < 1 || r.Rating > 5 {
		return false, ErrInvalidRating
	}
	var newBadge bool
	err := database.WithTx(ctx, s.db, func(q database.Querier) error {
		if _, err := store.GetProduct(ctx, q, r.ProductID); err != nil {
			return err
		}
		if err := store.CreateReview(ctx, q, r); err != nil {
			return err
		}
		var err error
		newBadge, err = store.AwardBadge(ctx, q, r.UserID, model.BadgeFirstReview)
		return err
	})
	if err != nil {
		return false, err
	}

	// 平均評分改變，熱門商品需重算
	if err := s.cache.Invalidate(ctx, cache.NamespaceTop); err != nil {
		s.log.Warn(ctx, "invalidate top cache", "error", err)
	}
	return newBadge, nil
}
