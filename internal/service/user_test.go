package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"supplement-iq/internal/database"
	"supplement-iq/internal/logging"
	"supplement-iq/internal/model"
	"supplement-iq/internal/store"
)

func newUserService(db database.DB) *UserService {
	return NewUserService(db, memCache(), "secret", logging.Discard())
}

func TestRegister(t *testing.T) {
	fastBcrypt(t)
	s := &script{t: t, rows: []rowRule{
		{match: "INSERT INTO users", vals: []any{0, now, now}},
	}}
	db, _ := s.db()

	u, err := newUserService(db).Register(context.Background(), " alice ", "Alice@Example.COM", "pw123456")
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)
	require.Equal(t, "alice@example.com", u.Email)
	require.Equal(t, model.RoleNewcomer, u.Role)
	require.NotEqual(t, uuid.Nil, u.ID)
	require.NoError(t, ComparePassword(u.PasswordHash, "pw123456"))
}

func TestLogin(t *testing.T) {
	fastBcrypt(t)
	hash, err := HashPassword("pw123456")
	require.NoError(t, err)
	alice := model.User{ID: uuid.New(), Username: "alice", Email: "alice@example.com", PasswordHash: hash, Role: model.RoleContributor}

	s := &script{t: t, rows: []rowRule{
		{match: "WHERE email = $1", vals: userRow(alice)},
		{match: "WHERE username = $1", vals: userRow(alice)},
	}}
	db, _ := s.db()
	svc := newUserService(db)

	sess, err := svc.Login(context.Background(), "ALICE@example.com", "pw123456")
	require.NoError(t, err)
	require.Equal(t, alice.ID, sess.User.ID)
	claims, err := VerifyAccessToken("secret", sess.AccessToken)
	require.NoError(t, err)
	require.Equal(t, model.RoleContributor, claims.Role)

	_, err = svc.Login(context.Background(), "alice", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	s.rows[1] = rowRule{match: "WHERE username = $1", err: pgx.ErrNoRows}
	_, err = svc.Login(context.Background(), "bob", "pw123456")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	fastBcrypt(t)
	hash, _ := HashPassword("old-password")
	u := model.User{ID: uuid.New(), Username: "alice", PasswordHash: hash, Role: model.RoleNewcomer}
	s := &script{t: t,
		rows:  []rowRule{{match: "WHERE id = $1", vals: userRow(u)}},
		execs: []execRule{{match: "SET password_hash", tag: "UPDATE 1"}},
	}
	db, _ := s.db()
	svc := newUserService(db)

	require.ErrorIs(t, svc.ChangePassword(context.Background(), u.ID, "nope", "new-password"), ErrInvalidCredentials)
	require.False(t, s.ran("SET password_hash"))

	require.NoError(t, svc.ChangePassword(context.Background(), u.ID, "old-password", "new-password"))
	require.True(t, s.ran("SET password_hash"))
}

func TestAssignRole(t *testing.T) {
	owner := model.User{ID: uuid.New(), Role: model.RoleOwner}
	admin := model.User{ID: uuid.New(), Role: model.RoleAdmin}

	cases := []struct {
		name    string
		actor   model.User
		current model.Role
		role    model.Role
		err     error
	}{
		{"admin promotes to moderator", admin, model.RoleContributor, model.RoleModerator, nil},
		{"owner appoints admin", owner, model.RoleModerator, model.RoleAdmin, nil},
		{"admin cannot appoint admin", admin, model.RoleModerator, model.RoleAdmin, ErrForbidden},
		{"admin cannot demote admin", admin, model.RoleAdmin, model.RoleNewcomer, ErrForbidden},
		{"owner is not assignable", owner, model.RoleAdmin, model.RoleOwner, ErrForbidden},
		{"unknown role", admin, model.RoleNewcomer, "guru", ErrInvalidRole},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target := model.User{ID: uuid.New(), Username: "t", Role: tc.current}
			s := &script{t: t,
				rows: []rowRule{
					{match: "WHERE id = $1", vals: userRow(target)},
					{match: "INSERT INTO activity_logs", vals: []any{int64(1), now}},
				},
				execs: []execRule{{match: "UPDATE users SET role", tag: "UPDATE 1"}},
			}
			db, tx := s.db()
			got, err := newUserService(db).AssignRole(context.Background(), tc.actor, target.ID, tc.role)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				require.False(t, s.ran("UPDATE users SET role"))
				return
			}
			require.NoError(t, err)
			require.True(t, tx.Committed)
			require.Equal(t, tc.role, got.Role)
			require.True(t, s.ran("INSERT INTO activity_logs"))
		})
	}
}

func TestAssignRoleSelf(t *testing.T) {
	owner := model.User{ID: uuid.New(), Role: model.RoleOwner}
	_, err := newUserService(&database.FakeDB{}).AssignRole(context.Background(), owner, owner.ID, model.RoleNewcomer)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestListAdminsCached(t *testing.T) {
	admin := model.User{ID: uuid.New(), Username: "root", Role: model.RoleAdmin}
	queries := 0
	db := &database.FakeDB{QueryFn: func(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
		queries++
		require.Contains(t, sql, "role = ANY($1)")
		require.Equal(t, []string{"admin", "owner"}, args[0])
		return &database.FakeRows{Data: [][]any{userRow(admin)}}, nil
	}}
	svc := newUserService(db)

	for i := 0; i < 2; i++ {
		users, err := svc.ListAdmins(context.Background())
		require.NoError(t, err)
		require.Len(t, users, 1)
		require.Equal(t, "root", users[0].Username)
	}
	require.Equal(t, 1, queries)

	require.NoError(t, svc.cache.Reset(context.Background()))
	_, err := svc.ListAdmins(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, queries)
}

func TestCreateOwner(t *testing.T) {
	fastBcrypt(t)
	s := &script{t: t, rows: []rowRule{
		{match: "SELECT COUNT(*) FROM users", vals: []any{1}},
	}}
	db, tx := s.db()
	_, err := newUserService(db).CreateOwner(context.Background(), "root", "root@example.com", "pw123456")
	require.ErrorIs(t, err, ErrOwnerExists)
	require.True(t, tx.RolledBack)

	s = &script{t: t, rows: []rowRule{
		{match: "SELECT COUNT(*) FROM users", vals: []any{0}},
		{match: "INSERT INTO users", vals: []any{0, now, now}},
	}}
	db, tx = s.db()
	owner, err := newUserService(db).CreateOwner(context.Background(), "root", "Root@Example.com", "pw123456")
	require.NoError(t, err)
	require.True(t, tx.Committed)
	require.Equal(t, model.RoleOwner, owner.Role)
	require.Equal(t, "root@example.com", owner.Email)
}

func TestPostReview(t *testing.T) {
	svc := NewReviewService(&database.FakeDB{}, memCache(), logging.Discard())
	_, err := svc.PostReview(context.Background(), &model.Review{Rating: 6})
	require.ErrorIs(t, err, ErrInvalidRating)

	prod := model.Product{ID: 7, Category: model.CategoryProtein, Brand: &optimum}
	s := &script{t: t,
		rows: []rowRule{
			{match: "FROM products p", vals: productRow(prod)},
			{match: "INSERT INTO product_reviews", vals: []any{11, now}},
		},
		execs: []execRule{{match: "INSERT INTO user_badges", tag: "INSERT 0 1"}},
	}
	db, tx := s.db()
	svc = NewReviewService(db, memCache(), logging.Discard())
	r := &model.Review{ProductID: 7, UserID: uuid.New(), Rating: 5}
	badge, err := svc.PostReview(context.Background(), r)
	require.NoError(t, err)
	require.True(t, badge)
	require.True(t, tx.Committed)
	require.Equal(t, 11, r.ID)

	s.rows[0] = rowRule{match: "FROM products p", err: pgx.ErrNoRows}
	_, err = svc.PostReview(context.Background(), &model.Review{ProductID: 9, Rating: 3})
	require.ErrorIs(t, err, store.ErrNotFound)
}
