package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/velic22/chirp/internal/domain"
)

type LikeRepo struct {
	pool *pgxpool.Pool
}

func NewLikeRepo(pool *pgxpool.Pool) *LikeRepo {
	return &LikeRepo{pool: pool}
}

func (r *LikeRepo) Get(ctx context.Context, authorID, postID uuid.UUID) (*domain.Like, error) {
	var l domain.Like
	err := r.pool.QueryRow(ctx,
		"SELECT id, author_id, post_id, created_at FROM likes WHERE author_id = $1 AND post_id = $2",
		authorID, postID,
	).Scan(&l.ID, &l.AuthorID, &l.PostID, &l.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &l, err
}

func (r *LikeRepo) Create(ctx context.Context, like *domain.Like) error {
	_, err := r.pool.Exec(ctx,
		"INSERT INTO likes (id, author_id, post_id, created_at) VALUES ($1, $2, $3, $4)",
		like.ID, like.AuthorID, like.PostID, like.CreatedAt,
	)
	return err
}

func (r *LikeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM likes WHERE id = $1", id)
	return err
}

func (r *LikeRepo) CountByPost(ctx context.Context, postID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT count(*) FROM likes WHERE post_id = $1", postID).Scan(&count)
	return count, err
}

func (r *LikeRepo) ListPostIDsLikedBy(ctx context.Context, authorID uuid.UUID, postIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx,
		"SELECT post_id FROM likes WHERE author_id = $1 AND post_id = ANY($2)", authorID, postIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type BookmarkRepo struct {
	pool *pgxpool.Pool
}

func NewBookmarkRepo(pool *pgxpool.Pool) *BookmarkRepo {
	return &BookmarkRepo{pool: pool}
}

func (r *BookmarkRepo) Get(ctx context.Context, userID, postID uuid.UUID) (*domain.Bookmark, error) {
	var b domain.Bookmark
	err := r.pool.QueryRow(ctx,
		"SELECT id, user_id, post_id, created_at FROM bookmarks WHERE user_id = $1 AND post_id = $2",
		userID, postID,
	).Scan(&b.ID, &b.UserID, &b.PostID, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &b, err
}

func (r *BookmarkRepo) Create(ctx context.Context, bookmark *domain.Bookmark) error {
	_, err := r.pool.Exec(ctx,
		"INSERT INTO bookmarks (id, user_id, post_id, created_at) VALUES ($1, $2, $3, $4)",
		bookmark.ID, bookmark.UserID, bookmark.PostID, bookmark.CreatedAt,
	)
	return err
}

func (r *BookmarkRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM bookmarks WHERE id = $1", id)
	return err
}

func (r *BookmarkRepo) ListPostsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Post, error) {
	query := `
		SELECT p.id, p.author_id, p.text, p.parent_id, p.is_repost,
			p.likes_count, p.reposts_count, p.created_at, p.updated_at,
			u.name, u.username, u.image
		FROM bookmarks b
		JOIN posts p ON b.post_id = p.id
		JOIN users u ON p.author_id = u.id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows)
}
