package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID               uuid.UUID `db:"id" json:"id"`
	Username         string    `db:"username" json:"username"`
	Email            string    `db:"email" json:"email"`
	PasswordHash     string    `db:"password_hash" json:"-"`
	Role             Role      `db:"role" json:"role"`
	ReputationPoints int       `db:"reputation_points" json:"reputation_points"`
	Bio              *string   `db:"bio" json:"bio"`
	AvatarURL        *string   `db:"avatar_url" json:"avatar_url"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// 新手晉升為 contributor 所需的聲望
const PromotionThreshold = 50
