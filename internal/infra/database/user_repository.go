package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

const userColumns = `id, email, full_name, password_hash, role, active, last_login_at, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	query := `
		INSERT INTO users (id, email, full_name, password_hash, role, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.DB.ExecContext(ctx, query,
		u.ID, u.Email, u.FullName, u.PasswordHash, u.Role, u.Active, u.CreatedAt, u.UpdatedAt)
	return mapError(err)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 AND NOT deleted`, id)
	return scanUser(row)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1) AND NOT deleted`, email)
	return scanUser(row)
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`, email).Scan(&exists)
	return exists, err
}

func (r *UserRepository) List(ctx context.Context, filter entity.UserFilter, page entity.PageRequest) (*entity.Page[*entity.User], error) {
	w := &where{}
	w.add("NOT deleted")
	if filter.Role != "" {
		w.add("role = ?", filter.Role)
	}
	if filter.Active != nil {
		w.add("active = ?", *filter.Active)
	}
	if filter.Search != "" {
		w.add("(LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?)", likePattern(filter.Search), likePattern(filter.Search))
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	limit, args := w.page(page)
	rows, err := r.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users`+w.String()+` ORDER BY created_at DESC`+limit, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entity.NewPage(items, total, page), nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	query := `
		UPDATE users
		SET full_name = $2, password_hash = $3, role = $4, active = $5,
		    deleted = $6, deleted_by = $7, deleted_at = $8, updated_at = $9
		WHERE id = $1
	`
	return expectOne(r.DB.ExecContext(ctx, query,
		u.ID, u.FullName, u.PasswordHash, u.Role, u.Active,
		u.Deleted, nullString(u.DeletedBy), u.DeletedAt, u.UpdatedAt))
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return expectOne(r.DB.ExecContext(ctx,
		`UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at))
}

func scanUser(s scanner) (*entity.User, error) {
	var u entity.User
	var lastLogin sql.NullTime
	err := s.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.Role, &u.Active, &lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	u.LastLoginAt = timePtr(lastLogin)
	return &u, nil
}
