package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/velic22/chirp/internal/domain"
)

type PostRepo struct {
	pool *pgxpool.Pool
}

func NewPostRepo(pool *pgxpool.Pool) *PostRepo {
	return &PostRepo{pool: pool}
}

const postSelect = `
	SELECT p.id, p.author_id, p.text, p.parent_id, p.is_repost,
		p.likes_count, p.reposts_count, p.created_at, p.updated_at,
		u.name, u.username, u.image
	FROM posts p
	JOIN users u ON p.author_id = u.id`

func (r *PostRepo) Create(ctx context.Context, post *domain.Post) error {
	query := `
		INSERT INTO posts (id, author_id, text, parent_id, is_repost, likes_count, reposts_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.pool.Exec(ctx, query,
		post.ID, post.AuthorID, post.Text, post.ParentID, post.IsRepost,
		post.LikesCount, post.RepostsCount, post.CreatedAt, post.UpdatedAt,
	)
	return err
}

func (r *PostRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	var p domain.Post
	err := r.pool.QueryRow(ctx, postSelect+" WHERE p.id = $1", id).Scan(
		&p.ID, &p.AuthorID, &p.Text, &p.ParentID, &p.IsRepost,
		&p.LikesCount, &p.RepostsCount, &p.CreatedAt, &p.UpdatedAt,
		&p.AuthorName, &p.AuthorUsername, &p.AuthorImage,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &p, err
}

func (r *PostRepo) ListFeed(ctx context.Context, limit int) ([]domain.Post, error) {
	rows, err := r.pool.Query(ctx,
		postSelect+" WHERE p.parent_id IS NULL ORDER BY p.created_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows)
}

func (r *PostRepo) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]domain.Post, error) {
	rows, err := r.pool.Query(ctx,
		postSelect+" WHERE p.author_id = $1 AND p.parent_id IS NULL ORDER BY p.created_at DESC", authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows)
}

func (r *PostRepo) ListReplies(ctx context.Context, parentID uuid.UUID) ([]domain.Post, error) {
	rows, err := r.pool.Query(ctx,
		postSelect+" WHERE p.parent_id = $1 AND p.is_repost = FALSE ORDER BY p.created_at DESC", parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows)
}

func (r *PostRepo) GetRepost(ctx context.Context, authorID, parentID uuid.UUID) (*domain.Post, error) {
	var p domain.Post
	err := r.pool.QueryRow(ctx,
		postSelect+" WHERE p.author_id = $1 AND p.parent_id = $2 AND p.is_repost = TRUE", authorID, parentID).Scan(
		&p.ID, &p.AuthorID, &p.Text, &p.ParentID, &p.IsRepost,
		&p.LikesCount, &p.RepostsCount, &p.CreatedAt, &p.UpdatedAt,
		&p.AuthorName, &p.AuthorUsername, &p.AuthorImage,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &p, err
}

func (r *PostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM posts WHERE id = $1", id)
	return err
}

func (r *PostRepo) SetLikesCount(ctx context.Context, id uuid.UUID, count int) error {
	_, err := r.pool.Exec(ctx, "UPDATE posts SET likes_count = $1, updated_at = now() WHERE id = $2", count, id)
	return err
}

func (r *PostRepo) IncRepostsCount(ctx context.Context, id uuid.UUID, delta int) error {
	_, err := r.pool.Exec(ctx, "UPDATE posts SET reposts_count = reposts_count + $1, updated_at = now() WHERE id = $2", delta, id)
	return err
}

func collectPosts(rows pgx.Rows) ([]domain.Post, error) {
	var posts []domain.Post
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(
			&p.ID, &p.AuthorID, &p.Text, &p.ParentID, &p.IsRepost,
			&p.LikesCount, &p.RepostsCount, &p.CreatedAt, &p.UpdatedAt,
			&p.AuthorName, &p.AuthorUsername, &p.AuthorImage,
		); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
