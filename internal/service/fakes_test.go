package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"supplement-iq/internal/cache"
	"supplement-iq/internal/database"
	"supplement-iq/internal/logging"
	"supplement-iq/internal/model"
	"supplement-iq/internal/mq"
	"supplement-iq/internal/worker"
)

func restoreGlobals() {
	bcryptGenerateFromPassword = bcrypt.GenerateFromPassword
	bcryptCompareHashAndPassword = bcrypt.CompareHashAndPassword
	timeNow = time.Now
	parseWithClaims = jwt.ParseWithClaims
}

func fastBcrypt(t *testing.T) {
	t.Cleanup(restoreGlobals)
	bcryptGenerateFromPassword = func(p []byte, _ int) ([]byte, error) {
		return bcrypt.GenerateFromPassword(p, bcrypt.MinCost)
	}
}

/* ---------- SQL 腳本 ---------- */

type rowRule struct {
	match string
	vals  []any
	err   error
}

type execRule struct {
	match string
	tag   string
	err   error
}

// script 依 SQL 子字串回應查詢，並記錄所有執行過的 SQL
type script struct {
	t     *testing.T
	rows  []rowRule
	execs []execRule
	seen  []string
}

func (s *script) queryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	s.seen = append(s.seen, sql)
	for _, r := range s.rows {
		if strings.Contains(sql, r.match) {
			return &database.FakeRow{Vals: r.vals, Err: r.err}
		}
	}
	s.t.Fatalf("unexpected QueryRow: %s", sql)
	return nil
}

func (s *script) exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	s.seen = append(s.seen, sql)
	for _, e := range s.execs {
		if strings.Contains(sql, e.match) {
			return pgconn.NewCommandTag(e.tag), e.err
		}
	}
	s.t.Fatalf("unexpected Exec: %s", sql)
	return pgconn.CommandTag{}, nil
}

func (s *script) ran(fragment string) bool {
	for _, sql := range s.seen {
		if strings.Contains(sql, fragment) {
			return true
		}
	}
	return false
}

// db 回傳會開啟腳本交易的 FakeDB；查詢也可直接走 DB
func (s *script) db() (*database.FakeDB, *database.FakeTx) {
	tx := &database.FakeTx{QueryRowFn: s.queryRow, ExecFn: s.exec}
	return &database.FakeDB{
		BeginFn:    func(context.Context) (database.Tx, error) { return tx, nil },
		QueryRowFn: s.queryRow,
		ExecFn:     s.exec,
	}, tx
}

/* ---------- 其他假實作 ---------- */

type inlinePool struct{ stopped bool }

func (p *inlinePool) Submit(t worker.Task) error {
	if p.stopped {
		return worker.ErrStopped
	}
	t(context.Background())
	return nil
}

func (p *inlinePool) Stop() { p.stopped = true }

type recordingPublisher struct {
	mu     sync.Mutex
	events []mq.SubmissionReviewed
}

func (r *recordingPublisher) PublishSubmissionReviewed(_ context.Context, ev mq.SubmissionReviewed) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

type recordingImages struct {
	removed []string
	err     error
}

func (r *recordingImages) RemoveProductImage(_ context.Context, url string) error {
	r.removed = append(r.removed, url)
	return r.err
}

func memCache() *cache.ProductCache {
	return cache.NewProductCache(nil, time.UTC, logging.Discard())
}

func userRow(u model.User) []any {
	return []any{u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.ReputationPoints, u.Bio, u.AvatarURL, u.CreatedAt, u.UpdatedAt}
}

func brandRow(b model.Brand) []any {
	return []any{b.ID, b.Name, b.Slug, b.Website, b.ProductCount, b.CreatedAt}
}

func productRow(p model.Product) []any {
	return append([]any{
		p.ID, p.BrandID, p.Category, p.Name, p.Slug, p.ReleaseYear,
		p.ImageURL, p.Description, p.ServingsPerContainer, p.Price,
		p.ServingSizeG, p.TransparencyScore, p.ConfidenceLevel,
		p.CreatedAt, p.UpdatedAt,
	}, brandRow(*p.Brand)...)
}

func pendingRow(p model.PendingProduct) []any {
	return append([]any{
		p.ID, p.ProductID, p.SubmittedBy, p.Status, p.JobType, p.BrandID,
		p.Category, p.Name, p.Slug, p.ReleaseYear, p.ImageURL, p.Description,
		p.ServingsPerContainer, p.Price, p.ServingSizeG, p.TransparencyScore,
		p.ConfidenceLevel, p.Details, p.Notes, p.SubmittedAt, p.ReviewedBy,
		p.ReviewedAt, p.RejectionReason,
	}, brandRow(*p.Brand)...)
}
