package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"supplement-iq/internal/autocomplete"
	"supplement-iq/internal/cache"
	"supplement-iq/internal/database"
	"supplement-iq/internal/logging"
	"supplement-iq/internal/model"
	"supplement-iq/internal/mq"
	"supplement-iq/internal/store"
	"supplement-iq/internal/worker"
)

// EventPublisher 發送審核事件
type EventPublisher interface {
	PublishSubmissionReviewed(ctx context.Context, ev mq.SubmissionReviewed) error
}

// NameIndex 為自動完成索引
type NameIndex interface {
	Insert(e autocomplete.Entry)
	Remove(productID int)
}

// SubmissionService 實作提案與審核流程
// ImageRemover 刪除物件儲存中的商品圖片
type ImageRemover interface {
	RemoveProductImage(ctx context.Context, url string) error
}

type SubmissionService struct {
	db     database.DB
	cache  *cache.ProductCache
	index  NameIndex
	events EventPublisher
	pool   worker.Pool
	images ImageRemover
	log    logging.Logger
}

func NewSubmissionService(db database.DB, c *cache.ProductCache, index NameIndex, events EventPublisher, pool worker.Pool, log logging.Logger) *SubmissionService {
	return &SubmissionService{db: db, cache: c, index: index, events: events, pool: pool, log: log}
}

// UseImages 讓核准的刪除提案一併移除商品圖片
func (s *SubmissionService) UseImages(r ImageRemover) {
	s.images = r
}

// SubmitInput 為提案內容。update 與 delete 需指定 ProductID；
// update 未給 BrandName 或 Name 時沿用現有商品的值。
type SubmitInput struct {
	JobType              model.JobType
	ProductID            *int
	BrandName            string
	Category             model.Category
	Name                 string
	ReleaseYear          *int
	ImageURL             *string
	Description          *string
	ServingsPerContainer *int
	Price                float64
	ServingSizeG         *float64
	TransparencyScore    int
	ConfidenceLevel      string
	Details              map[string]any
	Notes                *string
}

// Submit 驗證並寫入待審核提案
func (s *SubmissionService) Submit(ctx context.Context, submitter model.User, in SubmitInput) (*model.PendingProduct, error) {
	if !in.JobType.Valid() {
		return nil, ErrInvalidJobType
	}
	if in.ConfidenceLevel == "" {
		in.ConfidenceLevel = "unverified"
	}
	if !model.ValidConfidenceLevel(in.ConfidenceLevel) {
		return nil, fmt.Errorf("%w: confidence_level must be one of %s",
			ErrInvalidSubmission, strings.Join(model.ConfidenceLevels, ", "))
	}
	if in.TransparencyScore < 0 || in.TransparencyScore > 100 {
		return nil, fmt.Errorf("%w: transparency_score must be between 0 and 100", ErrInvalidSubmission)
	}
	if in.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidSubmission)
	}
	if in.Price > model.MaxPrice {
		return nil, fmt.Errorf("%w: price must be at most %.2f", ErrInvalidSubmission, model.MaxPrice)
	}
	if in.ServingSizeG != nil && (*in.ServingSizeG <= 0 || *in.ServingSizeG > model.MaxServingSizeG) {
		return nil, fmt.Errorf("%w: serving_size_g must be between 0 and %.2f", ErrInvalidSubmission, model.MaxServingSizeG)
	}
	if in.ServingsPerContainer != nil && (*in.ServingsPerContainer <= 0 || *in.ServingsPerContainer > model.MaxServingsPerContainer) {
		return nil, fmt.Errorf("%w: servings_per_container must be between 1 and %d", ErrInvalidSubmission, model.MaxServingsPerContainer)
	}
	if in.ProductID != nil && (*in.ProductID <= 0 || *in.ProductID > math.MaxInt32) {
		return nil, fmt.Errorf("%w: product_id out of range", ErrInvalidSubmission)
	}

	p := &model.PendingProduct{
		SubmittedBy:          submitter.ID,
		JobType:              in.JobType,
		ProductID:            in.ProductID,
		Category:             in.Category,
		Name:                 strings.TrimSpace(in.Name),
		ReleaseYear:          in.ReleaseYear,
		ImageURL:             in.ImageURL,
		Description:          in.Description,
		ServingsPerContainer: in.ServingsPerContainer,
		Price:                in.Price,
		ServingSizeG:         in.ServingSizeG,
		TransparencyScore:    in.TransparencyScore,
		ConfidenceLevel:      in.ConfidenceLevel,
		Notes:                in.Notes,
	}

	err := database.WithTx(ctx, s.db, func(q database.Querier) error {
		brandName := strings.TrimSpace(in.BrandName)

		if in.JobType == model.JobAdd {
			if in.ProductID != nil {
				return fmt.Errorf("%w: product_id must be empty for add", ErrInvalidSubmission)
			}
			if !in.Category.Valid() {
				return ErrInvalidCategory
			}
		} else {
			if in.ProductID == nil {
				return ErrProductRequired
			}
			existing, err := store.GetProduct(ctx, q, *in.ProductID)
			if err != nil {
				return err
			}
			if in.Category != "" && in.Category != existing.Category {
				return ErrCategoryChange
			}
			p.Category = existing.Category
			if brandName == "" {
				brandName = existing.Brand.Name
			}
			if p.Name == "" {
				p.Name = existing.Name
			}
			if in.JobType == model.JobDelete {
				// 刪除提案保留目前內容供審核者確認
				p.Name = existing.Name
				brandName = existing.Brand.Name
				p.ReleaseYear = existing.ReleaseYear
				p.ImageURL = existing.ImageURL
				p.Description = existing.Description
				p.ServingsPerContainer = existing.ServingsPerContainer
				p.Price = existing.Price
				p.ServingSizeG = existing.ServingSizeG
				p.TransparencyScore = existing.TransparencyScore
				p.ConfidenceLevel = existing.ConfidenceLevel
				in.Details = nil
			}
		}

		if p.Name == "" || brandName == "" {
			return fmt.Errorf("%w: name and brand are required", ErrInvalidSubmission)
		}
		details, err := model.NormalizeDetails(p.Category, in.Details)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
		}
		p.Details = details
		p.Slug = model.Slugify(p.Name)

		brand, err := store.GetOrCreateBrand(ctx, q, brandName)
		if err != nil {
			return err
		}
		p.BrandID = brand.ID
		p.Brand = brand

		if err := store.InsertPending(ctx, q, p); err != nil {
			return err
		}
		return store.InsertActivity(ctx, q, &model.ActivityLog{
			UserID:     &submitter.ID,
			Action:     "submission.created",
			EntityType: "pending_product",
			EntityID:   strconv.Itoa(p.ID),
			Metadata:   map[string]any{"job_type": p.JobType, "category": p.Category},
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "submission created",
		"submission_id", p.ID, "job_type", p.JobType, "category", p.Category, "user_id", submitter.ID)
	return p, nil
}

// ApproveResult 為核准後的結果
type ApproveResult struct {
	Submission *model.PendingProduct `json:"submission"`
	Reward     Reward                `json:"reward"`
}

// Approve 核准提案並於同一交易內套用到商品資料
func (s *SubmissionService) Approve(ctx context.Context, reviewer model.User, id int) (*ApproveResult, error) {
	if !reviewer.Role.AtLeast(model.RoleModerator) {
		return nil, ErrForbidden
	}

	var (
		p      *model.PendingProduct
		reward Reward
	)
	err := database.WithTx(ctx, s.db, func(q database.Querier) error {
		var err error
		if p, err = s.lockForReview(ctx, q, reviewer, id); err != nil {
			return err
		}

		switch p.JobType {
		case model.JobAdd:
			err = applyAdd(ctx, q, p)
		case model.JobUpdate:
			err = applyUpdate(ctx, q, p)
		case model.JobDelete:
			err = applyDelete(ctx, q, p)
		default:
			err = ErrInvalidJobType
		}
		if err != nil {
			return err
		}

		reviewedAt, err := store.MarkReviewed(ctx, q, p.ID, model.StatusApproved, reviewer.ID, nil)
		if err != nil {
			return err
		}
		p.Status = model.StatusApproved
		p.ReviewedBy = &reviewer.ID
		p.ReviewedAt = &reviewedAt

		if reward, err = RewardContribution(ctx, q, p.SubmittedBy); err != nil {
			return err
		}

		return store.InsertActivity(ctx, q, &model.ActivityLog{
			UserID:     &reviewer.ID,
			Action:     "submission.approved",
			EntityType: "pending_product",
			EntityID:   strconv.Itoa(p.ID),
			Metadata: map[string]any{
				"job_type":   p.JobType,
				"product_id": p.ProductID,
				"promoted":   reward.Promoted,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "submission approved",
		"submission_id", p.ID, "job_type", p.JobType, "reviewer", reviewer.ID, "promoted", reward.Promoted)

	if err := s.cache.Invalidate(ctx, cache.NamespaceProducts, cache.NamespaceTop); err != nil {
		s.log.Warn(ctx, "invalidate product caches", "error", err)
	}
	if p.ProductID != nil {
		if p.JobType == model.JobDelete {
			s.index.Remove(*p.ProductID)
			s.removeImage(p)
		} else {
			s.index.Insert(autocomplete.Entry{ProductID: *p.ProductID, Name: p.Name, BrandName: p.Brand.Name})
		}
	}
	s.publish(p)

	return &ApproveResult{Submission: p, Reward: reward}, nil
}

// Reject 以理由駁回提案
func (s *SubmissionService) Reject(ctx context.Context, reviewer model.User, id int, reason string) (*model.PendingProduct, error) {
	if !reviewer.Role.AtLeast(model.RoleModerator) {
		return nil, ErrForbidden
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	var p *model.PendingProduct
	err := database.WithTx(ctx, s.db, func(q database.Querier) error {
		var err error
		if p, err = s.lockForReview(ctx, q, reviewer, id); err != nil {
			return err
		}
		reviewedAt, err := store.MarkReviewed(ctx, q, p.ID, model.StatusRejected, reviewer.ID, &reason)
		if err != nil {
			return err
		}
		p.Status = model.StatusRejected
		p.ReviewedBy = &reviewer.ID
		p.ReviewedAt = &reviewedAt
		p.RejectionReason = &reason

		return store.InsertActivity(ctx, q, &model.ActivityLog{
			UserID:     &reviewer.ID,
			Action:     "submission.rejected",
			EntityType: "pending_product",
			EntityID:   strconv.Itoa(p.ID),
			Metadata:   map[string]any{"job_type": p.JobType, "reason": reason},
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "submission rejected", "submission_id", p.ID, "reviewer", reviewer.ID)
	s.publish(p)
	return p, nil
}

// lockForReview 鎖定提案列並檢查狀態與自我審核規則
func (s *SubmissionService) lockForReview(ctx context.Context, q database.Querier, reviewer model.User, id int) (*model.PendingProduct, error) {
	p, err := store.GetPendingForUpdate(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if p.Status != model.StatusPending {
		return nil, ErrInvalidState
	}
	if p.SubmittedBy == reviewer.ID && reviewer.Role != model.RoleOwner {
		return nil, ErrSelfReview
	}
	return p, nil
}

func applyAdd(ctx context.Context, q database.Querier, p *model.PendingProduct) error {
	prod := p.ToProduct()
	if err := store.InsertProduct(ctx, q, prod); err != nil {
		return err
	}
	if err := store.UpsertDetails(ctx, q, prod.ID, prod.Category, p.Details); err != nil {
		return err
	}
	if err := store.AdjustBrandProductCount(ctx, q, prod.BrandID, 1); err != nil {
		return err
	}
	if err := store.LinkPendingProduct(ctx, q, p.ID, prod.ID); err != nil {
		return err
	}
	p.ProductID = &prod.ID
	return nil
}

func applyUpdate(ctx context.Context, q database.Querier, p *model.PendingProduct) error {
	if p.ProductID == nil {
		return ErrProductRequired
	}
	existing, err := store.GetProduct(ctx, q, *p.ProductID)
	if err != nil {
		return err
	}
	if existing.Category != p.Category {
		return ErrCategoryChange
	}
	prod := p.ToProduct()
	prod.ID = existing.ID
	if err := store.UpdateProduct(ctx, q, prod); err != nil {
		return err
	}
	if err := store.UpsertDetails(ctx, q, prod.ID, prod.Category, p.Details); err != nil {
		return err
	}
	if existing.BrandID != prod.BrandID {
		if err := store.AdjustBrandProductCount(ctx, q, existing.BrandID, -1); err != nil {
			return err
		}
		if err := store.AdjustBrandProductCount(ctx, q, prod.BrandID, 1); err != nil {
			return err
		}
	}
	return nil
}

func applyDelete(ctx context.Context, q database.Querier, p *model.PendingProduct) error {
	if p.ProductID == nil {
		return ErrProductRequired
	}
	existing, err := store.GetProduct(ctx, q, *p.ProductID)
	if err != nil {
		return err
	}
	if err := store.DeleteDetails(ctx, q, existing.ID, existing.Category); err != nil {
		return err
	}
	if err := store.DeleteProduct(ctx, q, existing.ID); err != nil {
		return err
	}
	// 以刪除當下的圖片為準
	p.ImageURL = existing.ImageURL
	return store.AdjustBrandProductCount(ctx, q, existing.BrandID, -1)
}

// removeImage 於背景刪除已移除商品的圖片
func (s *SubmissionService) removeImage(p *model.PendingProduct) {
	if s.images == nil || p.ImageURL == nil || *p.ImageURL == "" {
		return
	}
	url := *p.ImageURL
	err := s.pool.Submit(func(ctx context.Context) {
		if err := s.images.RemoveProductImage(ctx, url); err != nil {
			s.log.Error(ctx, "remove product image", "submission_id", p.ID, "url", url, "error", err)
		}
	})
	if errors.Is(err, worker.ErrStopped) {
		s.log.Warn(context.Background(), "image left in bucket, worker pool stopped", "submission_id", p.ID, "url", url)
	}
}

// publish 於背景送出審核事件
func (s *SubmissionService) publish(p *model.PendingProduct) {
	ev := mq.SubmissionReviewed{
		SubmissionID:    p.ID,
		ProductID:       p.ProductID,
		JobType:         p.JobType,
		Status:          p.Status,
		Category:        p.Category,
		ProductName:     p.Name,
		SubmittedBy:     p.SubmittedBy,
		RejectionReason: p.RejectionReason,
	}
	if p.ReviewedBy != nil {
		ev.ReviewedBy = *p.ReviewedBy
	}
	if p.ReviewedAt != nil {
		ev.ReviewedAt = *p.ReviewedAt
	}
	err := s.pool.Submit(func(ctx context.Context) {
		if err := s.events.PublishSubmissionReviewed(ctx, ev); err != nil {
			s.log.Error(ctx, "publish submission event", "submission_id", ev.SubmissionID, "error", err)
		}
	})
	if errors.Is(err, worker.ErrStopped) {
		s.log.Warn(context.Background(), "event dropped, worker pool stopped", "submission_id", ev.SubmissionID)
	}
}
