package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type migration struct {
	version int
	name    string
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "create_users",
		stmts: []string{`
			CREATE TABLE IF NOT EXISTS users (
				id UUID PRIMARY KEY,
				email TEXT NOT NULL UNIQUE,
				username TEXT NOT NULL UNIQUE,
				name TEXT NOT NULL,
				password_hash TEXT NOT NULL,
				image TEXT,
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			)`,
		},
	},
	{
		version: 2,
		name:    "create_messages",
		stmts: []string{`
			CREATE TABLE IF NOT EXISTS messages (
				id UUID PRIMARY KEY,
				sender_id UUID NOT NULL REFERENCES users(id),
				receiver_id UUID NOT NULL REFERENCES users(id),
				text TEXT NOT NULL CHECK (length(trim(text)) > 0),
				seen BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(sender_id, created_at)`,
			`CREATE INDEX IF NOT EXISTS idx_messages_receiver ON messages(receiver_id, created_at)`,
		},
	},
	{
		version: 3,
		name:    "create_posts",
		stmts: []string{`
			CREATE TABLE IF NOT EXISTS posts (
				id UUID PRIMARY KEY,
				author_id UUID NOT NULL REFERENCES users(id),
				text TEXT NOT NULL,
				parent_id UUID REFERENCES posts(id) ON DELETE CASCADE,
				is_repost BOOLEAN NOT NULL DEFAULT FALSE,
				likes_count INT NOT NULL DEFAULT 0,
				reposts_count INT NOT NULL DEFAULT 0,
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_posts_author ON posts(author_id, created_at)`,
			`CREATE INDEX IF NOT EXISTS idx_posts_parent ON posts(parent_id)`,
		},
	},
	{
		version: 4,
		name:    "create_likes_bookmarks",
		stmts: []string{`
			CREATE TABLE IF NOT EXISTS likes (
				id UUID PRIMARY KEY,
				author_id UUID NOT NULL REFERENCES users(id),
				post_id UUID NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
				created_at TIMESTAMPTZ NOT NULL,
				UNIQUE (author_id, post_id)
			)`, `
			CREATE TABLE IF NOT EXISTS bookmarks (
				id UUID PRIMARY KEY,
				user_id UUID NOT NULL REFERENCES users(id),
				post_id UUID NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
				created_at TIMESTAMPTZ NOT NULL,
				UNIQUE (user_id, post_id)
			)`,
		},
	},
}

// Migrate applies pending schema migrations in version order. Each migration
// runs in its own transaction together with its schema_migrations record.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version BIGINT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	for _, m := range migrations {
		var exists bool
		err := pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version=$1)", m.version).Scan(&exists)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		if err := apply(ctx, pool, m); err != nil {
			return fmt.Errorf("apply migration %d_%s: %w", m.version, m.name, err)
		}
	}

	return nil
}

func apply(ctx context.Context, pool *pgxpool.Pool, m migration) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, stmt := range m.stmts {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations(version, applied_at) VALUES($1, $2)", m.version, time.Now().UTC()); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
