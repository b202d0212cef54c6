package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"supplement-iq/internal/logging"
)

// Namespace 區分不同用途的快取資料
type Namespace string

const (
	NamespaceProducts Namespace = "products"
	NamespaceTop      Namespace = "top"
	NamespaceAdmins   Namespace = "admins"
)

// Namespaces 為 Reset 會清除的全部命名空間
var Namespaces = []Namespace{NamespaceProducts, NamespaceTop, NamespaceAdmins}

const maxMemoryEntries = 2048

// Loader 在快取未命中時載入資料，回傳值會以 JSON 儲存
type Loader func(ctx context.Context) (any, error)

type memEntry struct {
	data    []byte
	expires time.Time // zero 表示不過期
}

// ProductCache 為兩層快取：行程內記憶體 + Redis。
// 商品與熱門商品於快取時區的下一個午夜過期；管理員名單只在明確重設時清除。
// Redis 中的世代計數器 (cache:gen:<ns>) 併入 key，Invalidate 只需遞增計數器。
type ProductCache struct {
	redis Cache
	loc   *time.Location
	log   logging.Logger
	now   func() time.Time

	mu       sync.RWMutex
	mem      map[string]memEntry
	localGen map[Namespace]int64

	group singleflight.Group

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
	lastReset atomic.Int64 // unix nano
}

// Stats 為自上次 Reset 起的命中統計
type Stats struct {
	Hits        int64     `json:"hits"`
	Misses      int64     `json:"misses"`
	Evictions   int64     `json:"evictions"`
	Entries     int       `json:"entries"`
	LastResetAt time.Time `json:"last_reset_at"`
}

// NewProductCache 建立快取；redis 可為 nil，此時僅使用記憶體
func NewProductCache(redis Cache, loc *time.Location, log logging.Logger) *ProductCache {
	if loc == nil {
		loc = time.UTC
	}
	p := &ProductCache{
		redis:    redis,
		loc:      loc,
		log:      log,
		now:      time.Now,
		mem:      make(map[string]memEntry),
		localGen: make(map[Namespace]int64),
	}
	p.lastReset.Store(p.now().UnixNano())
	return p
}

// NextMidnight 回傳 now 在 loc 時區的下一個 00:00
func NextMidnight(now time.Time, loc *time.Location) time.Time {
	t := now.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}

func genKey(ns Namespace) string {
	return "cache:gen:" + string(ns)
}

func (p *ProductCache) expiresAt(ns Namespace) time.Time {
	if ns == NamespaceAdmins {
		return time.Time{}
	}
	return NextMidnight(p.now(), p.loc)
}

// generation 回傳目前世代以及是否可使用 Redis
func (p *ProductCache) generation(ctx context.Context, ns Namespace) (string, bool) {
	p.mu.RLock()
	local := p.localGen[ns]
	p.mu.RUnlock()
	localKey := fmt.Sprintf("l%d", local)
	if p.redis == nil {
		return localKey, false
	}
	g, err := p.redis.Get(ctx, genKey(ns)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		p.log.Warn(ctx, "cache generation unavailable, using memory only", "namespace", ns, "error", err)
		return localKey, false
	}
	return fmt.Sprintf("g%d", g), true
}

// GetOrLoad 依序查詢記憶體、Redis，最後呼叫 load；同一 key 的並行未命中只會載入一次。
// 載入不受第一個呼叫者取消影響。結果以 JSON 解碼至 dst。
func (p *ProductCache) GetOrLoad(ctx context.Context, ns Namespace, key string, dst any, load Loader) error {
	gen, shared := p.generation(ctx, ns)
	full := string(ns) + ":" + gen + ":" + key

	if data, ok := p.memGet(full); ok {
		p.hits.Add(1)
		return json.Unmarshal(data, dst)
	}

	v, err, _ := p.group.Do(full, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		expires := p.expiresAt(ns)
		if shared {
			b, err := p.redis.Get(ctx, full).Bytes()
			switch {
			case err == nil:
				p.hits.Add(1)
				p.memSet(full, b, expires)
				return b, nil
			case !errors.Is(err, redis.Nil):
				p.log.Warn(ctx, "cache read failed", "key", full, "error", err)
			}
		}

		p.misses.Add(1)
		val, err := load(ctx)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("encode cache value: %w", err)
		}
		p.memSet(full, b, expires)

		if shared {
			var ttl time.Duration
			if !expires.IsZero() {
				ttl = expires.Sub(p.now())
			}
			if err := p.redis.Set(ctx, full, b, ttl).Err(); err != nil {
				p.log.Warn(ctx, "cache write failed", "key", full, "error", err)
			}
		}
		return b, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(v.([]byte), dst)
}

// Invalidate 使命名空間內的所有項目失效
func (p *ProductCache) Invalidate(ctx context.Context, namespaces ...Namespace) error {
	p.mu.Lock()
	for _, ns := range namespaces {
		p.localGen[ns]++
		prefix := string(ns) + ":"
		for k := range p.mem {
			if strings.HasPrefix(k, prefix) {
				delete(p.mem, k)
			}
		}
	}
	p.mu.Unlock()

	if p.redis == nil {
		return nil
	}
	var errs []error
	for _, ns := range namespaces {
		if err := p.redis.Incr(ctx, genKey(ns)).Err(); err != nil {
			errs = append(errs, fmt.Errorf("bump %s generation: %w", ns, err))
		}
	}
	return errors.Join(errs...)
}

// Reset 清除所有命名空間並歸零統計
func (p *ProductCache) Reset(ctx context.Context) error {
	p.hits.Store(0)
	p.misses.Store(0)
	p.evictions.Store(0)
	p.lastReset.Store(p.now().UnixNano())
	return p.Invalidate(ctx, Namespaces...)
}

func (p *ProductCache) Stats() Stats {
	return Stats{
		Hits:        p.hits.Load(),
		Misses:      p.misses.Load(),
		Evictions:   p.evictions.Load(),
		Entries:     p.Len(),
		LastResetAt: time.Unix(0, p.lastReset.Load()).In(p.loc),
	}
}

// Len 回傳記憶體中的項目數
func (p *ProductCache) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.mem)
}

func (p *ProductCache) memGet(key string) ([]byte, bool) {
	p.mu.RLock()
	e, ok := p.mem[key]
	p.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !e.expires.IsZero() && !p.now().Before(e.expires) {
		p.mu.Lock()
		delete(p.mem, key)
		p.mu.Unlock()
		p.evictions.Add(1)
		return nil, false
	}
	return e.data, true
}

func (p *ProductCache) memSet(key string, data []byte, expires time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.mem) >= maxMemoryEntries {
		now := p.now()
		for k, e := range p.mem {
			if !e.expires.IsZero() && !now.Before(e.expires) {
				delete(p.mem, k)
				p.evictions.Add(1)
			}
		}
		if len(p.mem) >= maxMemoryEntries {
			p.evictions.Add(int64(len(p.mem)))
			p.mem = make(map[string]memEntry)
		}
	}
	p.mem[key] = memEntry{data: data, expires: expires}
}
