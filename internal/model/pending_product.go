package model

import (
	"time"

	"github.com/google/uuid"
)

type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "pending"
	StatusApproved SubmissionStatus = "approved"
	StatusRejected SubmissionStatus = "rejected"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type JobType string

const (
	JobAdd    JobType = "add"
	JobUpdate JobType = "update"
	JobDelete JobType = "delete"
)

func (j JobType) Valid() bool {
	switch j {
	case JobAdd, JobUpdate, JobDelete:
		return true
	}
	return false
}

// PendingProduct 為待審核的商品提案；ProductID 於新增時為 nil
type PendingProduct struct {
	ID                   int              `db:"id" json:"id"`
	ProductID            *int             `db:"product_id" json:"product_id"`
	SubmittedBy          uuid.UUID        `db:"submitted_by" json:"submitted_by"`
	Status               SubmissionStatus `db:"status" json:"status"`
	JobType              JobType          `db:"job_type" json:"job_type"`
	BrandID              int              `db:"brand_id" json:"brand_id"`
	Category             Category         `db:"category" json:"category"`
	Name                 string           `db:"name" json:"name"`
	Slug                 string           `db:"slug" json:"slug"`
	ReleaseYear          *int             `db:"release_year" json:"release_year"`
	ImageURL             *string          `db:"image_url" json:"image_url"`
	Description          *string          `db:"description" json:"description"`
	ServingsPerContainer *int             `db:"servings_per_container" json:"servings_per_container"`
	Price                float64          `db:"price" json:"price"`
	ServingSizeG         *float64         `db:"serving_size_g" json:"serving_size_g"`
	TransparencyScore    int              `db:"transparency_score" json:"transparency_score"`
	ConfidenceLevel      string           `db:"confidence_level" json:"confidence_level"`
	Details              map[string]any   `db:"details" json:"details"`
	Notes                *string          `db:"notes" json:"notes"`
	SubmittedAt          time.Time        `db:"submitted_at" json:"submitted_at"`
	ReviewedBy           *uuid.UUID       `db:"reviewed_by" json:"reviewed_by"`
	ReviewedAt           *time.Time       `db:"reviewed_at" json:"reviewed_at"`
	RejectionReason      *string          `db:"rejection_reason" json:"rejection_reason"`
	Brand                *Brand           `json:"brand,omitempty"`
}

// ToProduct 將提案內容轉為商品欄位
func (p *PendingProduct) ToProduct() *Product {
	return &Product{
		BrandID:              p.BrandID,
		Category:             p.Category,
		Name:                 p.Name,
		Slug:                 p.Slug,
		ReleaseYear:          p.ReleaseYear,
		ImageURL:             p.ImageURL,
		Description:          p.Description,
		ServingsPerContainer: p.ServingsPerContainer,
		Price:                p.Price,
		ServingSizeG:         p.ServingSizeG,
		TransparencyScore:    p.TransparencyScore,
		ConfidenceLevel:      p.ConfidenceLevel,
	}
}
