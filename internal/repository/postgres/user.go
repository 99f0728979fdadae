package postgres

import (
	"context"
	"database/sql"
	"time"

	"blooddrive-backend/internal/domain"
	"blooddrive-backend/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (email, password_hash, name, role, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Role == "" {
		u.Role = domain.UserRoleMember
	}
	err := r.db.QueryRowContext(ctx, query, u.Email, u.PasswordHash, u.Name, u.Role, u.CreatedAt, u.UpdatedAt).Scan(&u.ID)
	return translate("insert user", "user", u.Email, err)
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT id, email, password_hash, name, role, created_at, updated_at FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, translate("get user", "user", id, err)
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT id, email, password_hash, name, role, created_at, updated_at FROM users WHERE LOWER(email) = LOWER($1)`
	err := r.db.QueryRowContext(ctx, query, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, translate("get user by email", "user", email, err)
	}
	return u, nil
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET email=$1, password_hash=$2, name=$3, role=$4, updated_at=$5 WHERE id=$6`
	u.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, query, u.Email, u.PasswordHash, u.Name, u.Role, u.UpdatedAt, u.ID)
	return translate("update user", "user", u.ID, err)
}
