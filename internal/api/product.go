package api

import "supplement-iq/internal/model"

// PageResponse 為分頁列表回應
type PageResponse[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page" example:"1"`
	Limit      int `json:"limit" example:"20"`
	Total      int `json:"total" example:"42"`
	TotalPages int `json:"total_pages" example:"3"`
}

// swagger:model api.CategoryResponse
type CategoryResponse struct {
	Slug          model.Category `json:"slug" example:"protein"`
	DetailTable   string         `json:"detail_table" example:"protein_details"`
	DetailColumns []string       `json:"detail_columns"`
}

// swagger:model api.AutocompleteResponse
type AutocompleteResponse struct {
	Query       string   `json:"query" example:"gold"`
	Suggestions []string `json:"suggestions"`
}

// swagger:model api.CreateReviewRequest
type CreateReviewRequest struct {
	Rating int     `json:"rating" form:"rating" validate:"required,min=1,max=5" example:"5"`
	Title  *string `json:"title" form:"title" validate:"omitempty,max=120" example:"Mixes well"`
	Body   *string `json:"body" form:"body" validate:"omitempty,max=5000"`
}

// swagger:model api.ReviewResponse
type ReviewResponse struct {
	Review   model.Review `json:"review"`
	NewBadge bool         `json:"new_badge"`
}

// swagger:model api.UploadImageResponse
type UploadImageResponse struct {
	Key         string `json:"key" example:"products/0b6c1d3e.png"`
	URL         string `json:"url" example:"http://localhost:9000/product-images/products/0b6c1d3e.png"`
	ContentType string `json:"content_type" example:"image/png"`
	Size        int64  `json:"size" example:"52311"`
}

// swagger:model api.HealthResponse
type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Database string `json:"database" example:"ok"`
	Redis    string `json:"redis" example:"ok"`
}
