package model

import (
	"math"
	"strings"
	"time"
	"unicode"
)

type Brand struct {
	ID           int       `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Slug         string    `db:"slug" json:"slug"`
	Website      *string   `db:"website" json:"website"`
	ProductCount int       `db:"product_count" json:"product_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Product struct {
	ID                   int            `db:"id" json:"id"`
	BrandID              int            `db:"brand_id" json:"brand_id"`
	Category             Category       `db:"category" json:"category"`
	Name                 string         `db:"name" json:"name"`
	Slug                 string         `db:"slug" json:"slug"`
	ReleaseYear          *int           `db:"release_year" json:"release_year"`
	ImageURL             *string        `db:"image_url" json:"image_url"`
	Description          *string        `db:"description" json:"description"`
	ServingsPerContainer *int           `db:"servings_per_container" json:"servings_per_container"`
	Price                float64        `db:"price" json:"price"`
	ServingSizeG         *float64       `db:"serving_size_g" json:"serving_size_g"`
	TransparencyScore    int            `db:"transparency_score" json:"transparency_score"`
	ConfidenceLevel      string         `db:"confidence_level" json:"confidence_level"`
	CreatedAt            time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at" json:"updated_at"`
	Brand                *Brand         `json:"brand,omitempty"`
	Details              map[string]any `json:"details,omitempty"`
}

// TopProduct 為依平均評分排序的商品
type TopProduct struct {
	Product
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

type ProductStats struct {
	TotalProducts       int     `json:"total_products"`
	TotalBrands         int     `json:"total_brands"`
	AveragePrice        float64 `json:"average_price"`
	AverageTransparency float64 `json:"average_transparency"`
	VerifiedProducts    int     `json:"verified_products"`
}

// 商品數值欄位上限：price NUMERIC(10,2)、serving_size_g NUMERIC(8,2)、servings_per_container INTEGER
const (
	MaxPrice                = 99999999.99
	MaxServingSizeG         = 999999.99
	MaxServingsPerContainer = math.MaxInt32
)

var ConfidenceLevels = []string{"unverified", "likely", "verified"}

func ValidConfidenceLevel(s string) bool {
	for _, c := range ConfidenceLevels {
		if c == s {
			return true
		}
	}
	return false
}

// Slugify 產生網址用 slug：轉小寫、& 轉 and、非英數字元合併為單一 -
func Slugify(s string) string {
	s = strings.ReplaceAll(strings.ToLower(s), "&", " and ")
	var b strings.Builder
	dash := false
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
