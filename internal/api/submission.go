package api

import (
	"supplement-iq/internal/model"
	"supplement-iq/internal/service"
)

// SubmissionRequest 為新增、修改或刪除商品的提案
// swagger:model api.SubmissionRequest
type SubmissionRequest struct {
	JobType              model.JobType  `json:"job_type" validate:"required,oneof=add update delete" example:"add"`
	ProductID            *int           `json:"product_id" validate:"omitempty,gt=0,lte=2147483647"`
	BrandName            string         `json:"brand_name" validate:"max=120" example:"Optimum Nutrition"`
	Category             model.Category `json:"category" example:"protein"`
	Name                 string         `json:"name" validate:"max=200" example:"Gold Standard 100% Whey"`
	ReleaseYear          *int           `json:"release_year" validate:"omitempty,min=1900,max=2100" example:"2021"`
	ImageURL             *string        `json:"image_url" validate:"omitempty,url"`
	Description          *string        `json:"description" validate:"omitempty,max=5000"`
	ServingsPerContainer *int           `json:"servings_per_container" validate:"omitempty,gt=0,lte=2147483647" example:"74"`
	Price                float64        `json:"price" validate:"gte=0,lte=99999999.99" example:"59.99"`
	ServingSizeG         *float64       `json:"serving_size_g" validate:"omitempty,gt=0,lte=999999.99" example:"30.4"`
	TransparencyScore    int            `json:"transparency_score" validate:"gte=0,lte=100" example:"70"`
	ConfidenceLevel      string         `json:"confidence_level" validate:"omitempty,oneof=unverified likely verified" example:"likely"`
	Details              map[string]any `json:"details"`
	Notes                *string        `json:"notes" validate:"omitempty,max=2000"`
}

func (r SubmissionRequest) ToInput() service.SubmitInput {
	return service.SubmitInput{
		JobType:              r.JobType,
		ProductID:            r.ProductID,
		BrandName:            r.BrandName,
		Category:             r.Category,
		Name:                 r.Name,
		ReleaseYear:          r.ReleaseYear,
		ImageURL:             r.ImageURL,
		Description:          r.Description,
		ServingsPerContainer: r.ServingsPerContainer,
		Price:                r.Price,
		ServingSizeG:         r.ServingSizeG,
		TransparencyScore:    r.TransparencyScore,
		ConfidenceLevel:      r.ConfidenceLevel,
		Details:              r.Details,
		Notes:                r.Notes,
	}
}

// swagger:model api.RejectRequest
type RejectRequest struct {
	Reason string `json:"reason" form:"reason" validate:"required,max=1000" example:"duplicate of product 42"`
}
