package model

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID        int       `db:"id" json:"id"`
	ProductID int       `db:"product_id" json:"product_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Rating    int       `db:"rating" json:"rating"`
	Title     *string   `db:"title" json:"title"`
	Body      *string   `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

const (
	BadgeFirstContribution = "first_contribution"
	BadgeFirstReview       = "first_review"
)

type Badge struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Badge     string    `db:"badge" json:"badge"`
	AwardedAt time.Time `db:"awarded_at" json:"awarded_at"`
}

type ActivityLog struct {
	ID         int64          `db:"id" json:"id"`
	UserID     *uuid.UUID     `db:"user_id" json:"user_id"`
	Action     string         `db:"action" json:"action"`
	EntityType string         `db:"entity_type" json:"entity_type"`
	EntityID   string         `db:"entity_id" json:"entity_id"`
	Metadata   map[string]any `db:"metadata" json:"metadata"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}
