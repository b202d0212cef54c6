package api

import (
	"time"

	"github.com/google/uuid"

	"supplement-iq/internal/model"
)

// swagger:model api.UserResponse
type UserResponse struct {
	ID               uuid.UUID  `json:"id"`
	Username         string     `json:"username" example:"alice"`
	Email            string     `json:"email" example:"alice@example.com"`
	Role             model.Role `json:"role" example:"newcomer"`
	ReputationPoints int        `json:"reputation_points" example:"10"`
	Bio              *string    `json:"bio"`
	AvatarURL        *string    `json:"avatar_url"`
	CreatedAt        time.Time  `json:"created_at"`
}

func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		Role:             u.Role,
		ReputationPoints: u.ReputationPoints,
		Bio:              u.Bio,
		AvatarURL:        u.AvatarURL,
		CreatedAt:        u.CreatedAt,
	}
}

// ProfileResponse 為公開的使用者資料，不含信箱
// swagger:model api.ProfileResponse
type ProfileResponse struct {
	ID               uuid.UUID     `json:"id"`
	Username         string        `json:"username" example:"alice"`
	Role             model.Role    `json:"role" example:"contributor"`
	ReputationPoints int           `json:"reputation_points" example:"60"`
	Bio              *string       `json:"bio"`
	AvatarURL        *string       `json:"avatar_url"`
	CreatedAt        time.Time     `json:"created_at"`
	Badges           []model.Badge `json:"badges"`
}

func NewProfileResponse(u *model.User, badges []model.Badge) ProfileResponse {
	if badges == nil {
		badges = []model.Badge{}
	}
	return ProfileResponse{
		ID:               u.ID,
		Username:         u.Username,
		Role:             u.Role,
		ReputationPoints: u.ReputationPoints,
		Bio:              u.Bio,
		AvatarURL:        u.AvatarURL,
		CreatedAt:        u.CreatedAt,
		Badges:           badges,
	}
}

// swagger:model api.UpdateUserRequest
type UpdateUserRequest struct {
	Username  string  `json:"username" form:"username" validate:"required,min=3,max=32,alphanumunicode" example:"alice"`
	Email     string  `json:"email" form:"email" validate:"required,email" example:"alice@example.com"`
	Bio       *string `json:"bio" form:"bio" validate:"omitempty,max=500" example:"Lifting since 2015"`
	AvatarURL *string `json:"avatar_url" form:"avatar_url" validate:"omitempty,url" example:"https://cdn.example.com/a.png"`
}

// swagger:model api.UpdateMyPasswordRequest
type UpdateMyPasswordRequest struct {
	OldPassword string `json:"old_password" form:"old_password" validate:"required" example:"OldSecret123!"`
	NewPassword string `json:"new_password" form:"new_password" validate:"required,min=8,max=72" example:"NewSecret456!"`
}

// swagger:model api.UpdateRoleRequest
type UpdateRoleRequest struct {
	Role string `json:"role" form:"role" validate:"required" example:"moderator"`
}
