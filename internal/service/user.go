package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"supplement-iq/internal/cache"
	"supplement-iq/internal/database"
	"supplement-iq/internal/logging"
	"supplement-iq/internal/model"
	"supplement-iq/internal/store"
)

// UserService 處理註冊、登入與角色管理
type UserService struct {
	db     database.DB
	cache  *cache.ProductCache
	secret string
	log    logging.Logger
}

func NewUserService(db database.DB, c *cache.ProductCache, secret string, log logging.Logger) *UserService {
	return &UserService{db: db, cache: c, secret: secret, log: log}
}

// Session 為登入結果
type Session struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *model.User
}

// Register 建立 newcomer 帳號；帳號或信箱重複時回傳 store.ErrConflict
func (s *UserService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := store.CreateUser(ctx, s.db, &model.User{
		Username:     strings.TrimSpace(username),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Role:         model.RoleNewcomer,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user registered", "user_id", u.ID, "username", u.Username)
	return u, nil
}

// Login 以帳號或信箱登入
func (s *UserService) Login(ctx context.Context, identifier, password string) (*Session, error) {
	identifier = strings.TrimSpace(identifier)
	var (
		u   *model.User
		err error
	)
	if strings.Contains(identifier, "@") {
		u, err = store.GetUserByEmail(ctx, s.db, strings.ToLower(identifier))
	} else {
		u, err = store.GetUserByUsername(ctx, s.db, identifier)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := AuthenticateUser(ctx, *u, password); err != nil {
		return nil, err
	}
	return s.IssueSession(u)
}

// IssueSession 簽發存取令牌
func (s *UserService) IssueSession(u *model.User) (*Session, error) {
	token, expiresAt, err := IssueAccessToken(s.secret, *u, AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{AccessToken: token, ExpiresAt: expiresAt, User: u}, nil
}

// ChangePassword 驗證舊密碼後更新
func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	u, err := store.GetUserByID(ctx, s.db, userID)
	if err != nil {
		return err
	}
	if err := AuthenticateUser(ctx, *u, current); err != nil {
		return err
	}
	hash, err := HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return store.UpdateUserPassword(ctx, s.db, userID, hash)
}

// AssignRole 變更他人角色。操作者必須高於對方目前角色，且有權指派新角色
// (admin 只能由 owner 指派，owner 無法經由 API 指派)。
func (s *UserService) AssignRole(ctx context.Context, actor model.User, targetID uuid.UUID, role model.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if actor.ID == targetID {
		return nil, ErrForbidden
	}

	var (
		target   *model.User
		previous model.Role
	)
	err := database.WithTx(ctx, s.db, func(q database.Querier) error {
		var err error
		if target, err = store.GetUserByID(ctx, q, targetID); err != nil {
			return err
		}
		if !actor.Role.CanManage(target.Role) || !actor.Role.CanAssign(role) {
			return ErrForbidden
		}
		previous = target.Role
		if err := store.UpdateUserRole(ctx, q, targetID, role); err != nil {
			return err
		}
		target.Role = role
		return store.InsertActivity(ctx, q, &model.ActivityLog{
			UserID:     &actor.ID,
			Action:     "user.role_changed",
			EntityType: "user",
			EntityID:   targetID.String(),
			Metadata:   map[string]any{"from": previous, "to": role},
		})
	})
	if err != nil {
		return nil, err
	}

	if previous.AtLeast(model.RoleAdmin) || role.AtLeast(model.RoleAdmin) {
		if err := s.cache.Invalidate(ctx, cache.NamespaceAdmins); err != nil {
			s.log.Warn(ctx, "invalidate admins cache", "error", err)
		}
	}
	s.log.Info(ctx, "role changed", "actor", actor.ID, "target", targetID, "from", previous, "to", role)
	return target, nil
}

// ListAdmins 回傳 admin 與 owner 名單，結果快取至明確重設為止
func (s *UserService) ListAdmins(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := s.cache.GetOrLoad(ctx, cache.NamespaceAdmins, "all", &users, func(ctx context.Context) (any, error) {
		return store.ListUsersByRoles(ctx, s.db, []model.Role{model.RoleAdmin, model.RoleOwner})
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// CreateOwner 建立唯一的 owner 帳號，已存在時回傳 ErrOwnerExists
func (s *UserService) CreateOwner(ctx context.Context, username, email, password string) (*model.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	var owner *model.User
	err = database.WithTx(ctx, s.db, func(q database.Querier) error {
		n, err := store.CountUsersByRole(ctx, q, model.RoleOwner)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrOwnerExists
		}
		owner, err = store.CreateUser(ctx, q, &model.User{
			Username:     strings.TrimSpace(username),
			Email:        strings.ToLower(strings.TrimSpace(email)),
			PasswordHash: hash,
			Role:         model.RoleOwner,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx, cache.NamespaceAdmins); err != nil {
		s.log.Warn(ctx, "invalidate admins cache", "error", err)
	}
	return owner, nil
}
