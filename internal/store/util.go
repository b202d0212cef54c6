package store

import (
	"errors"
	"fmt"
	"math"
)

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Page 為分頁參數，Limit 上限 100
type Page struct {
	Page  int
	Limit int
}

const (
	DefaultLimit = 20
	MaxLimit     = 100
	// MaxPage 使 OFFSET 不超過 int32
	MaxPage = math.MaxInt32 / MaxLimit
)

// Check 拒絕超出 MaxPage 的頁碼
func (p Page) Check() error {
	if p.Page > MaxPage {
		return fmt.Errorf("page must be at most %d", MaxPage)
	}
	return nil
}

// Normalize 套用預設值與上限
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages 回傳總頁數
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
