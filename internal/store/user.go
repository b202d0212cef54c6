package store

import (
	"context"

	"github.com/google/uuid"

	"supplement-iq/internal/database"
	"supplement-iq/internal/model"
)

const userColumns = `id, username, email, password_hash, role, reputation_points, bio, avatar_url, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	u := &model.User{}
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.ReputationPoints,
		&u.Bio,
		&u.AvatarURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return u, nil
}

func GetUserByID(ctx context.Context, db database.Querier, userID uuid.UUID) (*model.User, error) {
	row := db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		userID,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, wrap("GetUserByID", err)
	}
	return u, nil
}

func GetUserByUsername(ctx context.Context, db database.Querier, username string) (*model.User, error) {
	row := db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`,
		username,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, wrap("GetUserByUsername", err)
	}
	return u, nil
}

func GetUserByEmail(ctx context.Context, db database.Querier, email string) (*model.User, error) {
	row := db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		email,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, wrap("GetUserByEmail", err)
	}
	return u, nil
}

// CreateUser 新增使用者；ID 為空時自動產生
func CreateUser(ctx context.Context, db database.Querier, u *model.User) (*model.User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = model.RoleNewcomer
	}
	row := db.QueryRow(ctx,
		`INSERT INTO users (id, username, email, password_hash, role)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING reputation_points, created_at, updated_at`,
		u.ID,
		u.Username,
		u.Email,
		u.PasswordHash,
		u.Role,
	)
	if err := row.Scan(&u.ReputationPoints, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, wrap("CreateUser", err)
	}
	return u, nil
}

// UpdateUserProfile 更新可由本人修改的欄位
func UpdateUserProfile(ctx context.Context, db database.Querier, u *model.User) error {
	row := db.QueryRow(ctx,
		`UPDATE users SET username = $1, email = $2, bio = $3, avatar_url = $4, updated_at = NOW()
		 WHERE id = $5
		 RETURNING updated_at`,
		u.Username,
		u.Email,
		u.Bio,
		u.AvatarURL,
		u.ID,
	)
	if err := row.Scan(&u.UpdatedAt); err != nil {
		return wrap("UpdateUserProfile", err)
	}
	return nil
}

func UpdateUserPassword(ctx context.Context, db database.Querier, userID uuid.UUID, passwordHash string) error {
	tag, err := db.Exec(ctx,
		`UPDATE users
		 SET password_hash = $1, updated_at = NOW()
		 WHERE id = $2`,
		passwordHash,
		userID,
	)
	if err != nil {
		return wrap("UpdateUserPassword", err)
	}
	if tag.RowsAffected() == 0 {
		return wrap("UpdateUserPassword", ErrNotFound)
	}
	return nil
}

func UpdateUserRole(ctx context.Context, db database.Querier, userID uuid.UUID, role model.Role) error {
	tag, err := db.Exec(ctx,
		`UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2`,
		role,
		userID,
	)
	if err != nil {
		return wrap("UpdateUserRole", err)
	}
	if tag.RowsAffected() == 0 {
		return wrap("UpdateUserRole", ErrNotFound)
	}
	return nil
}

// AddReputation 增加聲望並回傳新的總分與目前角色
func AddReputation(ctx context.Context, db database.Querier, userID uuid.UUID, points int) (int, model.Role, error) {
	var (
		total int
		role  model.Role
	)
	err := db.QueryRow(ctx,
		`UPDATE users SET reputation_points = reputation_points + $1, updated_at = NOW()
		 WHERE id = $2
		 RETURNING reputation_points, role`,
		points,
		userID,
	).Scan(&total, &role)
	if err != nil {
		return 0, "", wrap("AddReputation", err)
	}
	return total, role, nil
}

// ListUsersByRoles 依角色列出使用者，依角色等級與建立時間排序
func ListUsersByRoles(ctx context.Context, db database.Querier, roles []model.Role) ([]model.User, error) {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	rows, err := db.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = ANY($1) ORDER BY role DESC, created_at`,
		names,
	)
	if err != nil {
		return nil, wrap("ListUsersByRoles", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, wrap("ListUsersByRoles", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("ListUsersByRoles", err)
	}
	return users, nil
}

// CountUsersByRole 用於確認 owner 是否已存在
func CountUsersByRole(ctx context.Context, db database.Querier, role model.Role) (int, error) {
	var n int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, role).Scan(&n); err != nil {
		return 0, wrap("CountUsersByRole", err)
	}
	return n, nil
}
