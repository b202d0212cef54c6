package cache

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"supplement-iq/internal/logging"
)

var (
	ErrAdminDailyLimit = errors.New("daily admin request limit reached")
	ErrAdminCooldown   = errors.New("previous admin request is still active")
)

// AdminStats 為單一管理員當日的操作紀錄
type AdminStats struct {
	AdminID       uuid.UUID `json:"admin_id"`
	RequestsToday int       `json:"requests_today"`
	LastRequestAt time.Time `json:"last_request_at"`
	Active        bool      `json:"active"`
}

type guardRecord struct {
	count int
	last  time.Time
}

// AdminGuard 限制每位管理員每日的敏感操作次數，並要求兩次操作間隔 cooldown。
// 計數於 loc 時區午夜歸零；有 Redis 時以 guard:admin:<date>:<id> 跨實例共用每日計數。
type AdminGuard struct {
	redis    Cache
	loc      *time.Location
	limit    int
	cooldown time.Duration
	log      logging.Logger
	now      func() time.Time

	mu      sync.Mutex
	day     string
	records map[uuid.UUID]*guardRecord
}

// NewAdminGuard 建立 guard；redis 可為 nil
func NewAdminGuard(redis Cache, loc *time.Location, limit int, cooldown time.Duration, log logging.Logger) *AdminGuard {
	if loc == nil {
		loc = time.UTC
	}
	if limit < 1 {
		limit = 1
	}
	return &AdminGuard{
		redis:    redis,
		loc:      loc,
		limit:    limit,
		cooldown: cooldown,
		log:      log,
		now:      time.Now,
		records:  make(map[uuid.UUID]*guardRecord),
	}
}

func guardKey(day string, adminID uuid.UUID) string {
	return "guard:admin:" + day + ":" + adminID.String()
}

// rollover 在跨日時清除紀錄，呼叫端需持有 mu
func (g *AdminGuard) rollover(now time.Time) string {
	day := now.In(g.loc).Format(time.DateOnly)
	if day != g.day {
		g.day = day
		g.records = make(map[uuid.UUID]*guardRecord)
	}
	return day
}

// Allow 檢查並記錄一次操作；超過每日上限或仍在 cooldown 內時回傳錯誤
func (g *AdminGuard) Allow(ctx context.Context, adminID uuid.UUID) error {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()
	day := g.rollover(now)

	rec := g.records[adminID]
	if rec == nil {
		rec = &guardRecord{}
		g.records[adminID] = rec
	}
	if g.cooldown > 0 && !rec.last.IsZero() && now.Sub(rec.last) < g.cooldown {
		return ErrAdminCooldown
	}

	count := rec.count + 1
	if g.redis != nil {
		n, err := g.incr(ctx, guardKey(day, adminID), now)
		if err != nil {
			g.log.Warn(ctx, "admin guard counter unavailable, using memory only", "admin_id", adminID, "error", err)
		} else {
			count = int(n)
		}
	}
	if count > g.limit {
		g.log.Warn(ctx, "admin request blocked", "admin_id", adminID, "requests_today", count-1)
		return ErrAdminDailyLimit
	}
	rec.count = count
	rec.last = now
	return nil
}

func (g *AdminGuard) incr(ctx context.Context, key string, now time.Time) (int64, error) {
	n, err := g.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := g.redis.ExpireAt(ctx, key, NextMidnight(now, g.loc)).Err(); err != nil {
			g.log.Warn(ctx, "admin guard expiry not set", "key", key, "error", err)
		}
	}
	return n, nil
}

// Reset 清除本實例的紀錄，由每日工作於午夜呼叫
func (g *AdminGuard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.records = make(map[uuid.UUID]*guardRecord)
	g.day = g.now().In(g.loc).Format(time.DateOnly)
}

// Stats 回傳本實例當日有操作的管理員，依最後操作時間排序
func (g *AdminGuard) Stats() []AdminStats {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()
	g.rollover(now)

	out := make([]AdminStats, 0, len(g.records))
	for id, rec := range g.records {
		if rec.count == 0 {
			continue
		}
		out = append(out, AdminStats{
			AdminID:       id,
			RequestsToday: rec.count,
			LastRequestAt: rec.last,
			Active:        g.cooldown > 0 && now.Sub(rec.last) < g.cooldown,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastRequestAt.After(out[j].LastRequestAt) })
	return out
}
