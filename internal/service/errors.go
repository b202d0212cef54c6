package service

import "errors"

// 服務層的哨兵錯誤，handler 以 errors.Is 對應 HTTP 狀態碼
var (
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidState      = errors.New("submission is not pending")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrInvalidJobType    = errors.New("invalid job type")
	ErrSelfReview        = errors.New("cannot review own submission")
	ErrReasonRequired    = errors.New("rejection reason is required")
	ErrCategoryChange    = errors.New("category cannot be changed")
	ErrProductRequired   = errors.New("product_id is required for update and delete")
	ErrInvalidSubmission = errors.New("invalid submission")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
	ErrOwnerExists        = errors.New("owner already exists")
)
