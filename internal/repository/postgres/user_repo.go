package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/velic22/chirp/internal/domain"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = "id, email, username, name, password_hash, image, created_at, updated_at"

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, username, name, password_hash, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Email, user.Username, user.Name,
		user.PasswordHash, user.Image, user.CreatedAt, user.UpdatedAt,
	)
	return err
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT "+userColumns+" FROM users WHERE username = $1", username)
}

func (r *UserRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error) {
	if len(ids) == 0 {
		return []domain.User{}, nil
	}

	rows, err := r.pool.Query(ctx, "SELECT "+userColumns+" FROM users WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectUsers(rows)
}

func (r *UserRepo) Search(ctx context.Context, query string, exclude uuid.UUID, limit int) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+userColumns+" FROM users WHERE username ILIKE '%' || $1 || '%' AND id != $2 ORDER BY username LIMIT $3",
		query, exclude, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectUsers(rows)
}

func (r *UserRepo) Update(ctx context.Context, user *domain.User) error {
	query := `UPDATE users SET name = $1, image = $2, updated_at = $3 WHERE id = $4`
	_, err := r.pool.Exec(ctx, query, user.Name, user.Image, time.Now(), user.ID)
	return err
}

func (r *UserRepo) scanUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.Username, &u.Name,
		&u.PasswordHash, &u.Image, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &u, err
}

func collectUsers(rows pgx.Rows) ([]domain.User, error) {
	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(
			&u.ID, &u.Email, &u.Username, &u.Name,
			&u.PasswordHash, &u.Image, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
