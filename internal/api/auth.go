package api

import "time"

// swagger:model api.RegisterRequest
type RegisterRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=3,max=32,alphanumunicode" example:"alice"`
	Email    string `json:"email" form:"email" validate:"required,email" example:"alice@example.com"`
	Password string `json:"password" form:"password" validate:"required,min=8,max=72" example:"Secret123!"`
}

// LoginRequest 的 Identifier 可為帳號或信箱
// swagger:model api.LoginRequest
type LoginRequest struct {
	Identifier string `json:"identifier" form:"identifier" validate:"required" example:"alice"`
	Password   string `json:"password" form:"password" validate:"required" example:"Secret123!"`
}

// swagger:model api.SessionResponse
type SessionResponse struct {
	AccessToken string       `json:"access_token" example:"eyJhbGciOi..."`
	TokenType   string       `json:"token_type" example:"Bearer"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}
