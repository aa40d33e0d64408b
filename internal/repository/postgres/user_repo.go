package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"pollsite/internal/domain/user"
)

type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, email, password_hash, role, created_at`

func (r *UserRepo) Create(ctx context.Context, u *user.User) error {
	err := r.db.QueryRowxContext(ctx, `
        INSERT INTO users (email, password_hash, role)
        VALUES ($1, $2, $3)
        RETURNING id, created_at
    `, u.Email, u.PasswordHash, u.Role).Scan(&u.ID, &u.CreatedAt)
	if isUniqueViolation(err) {
		return user.ErrEmailTaken
	}
	return err
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	u := &user.User{}
	if err := r.db.GetContext(ctx, u, `SELECT `+userColumns+` FROM users WHERE email = $1`, email); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	u := &user.User{}
	if err := r.db.GetContext(ctx, u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepo) List(ctx context.Context) ([]user.User, error) {
	users := []user.User{}
	err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY id`)
	return users, err
}

func (r *UserRepo) UpdateRole(ctx context.Context, id int64, role string) error {
	return expectRow(r.db.ExecContext(ctx, `UPDATE users SET role = $1 WHERE id = $2`, role, id))
}
