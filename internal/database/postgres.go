package database

import (
	"context"
	"database/sql"
	"log"
	"time"

	"go-expense/internal/config"

	_ "github.com/lib/pq"
	"go.uber.org/fx"
)

// PostgresDB wraps the sql.DB handle the Postgres repositories share.
type PostgresDB struct {
	DB *sql.DB
}

// schema is applied on startup. The two partial unique indexes back the
// invariants the engines rely on: at most one PENDING invitation per
// (group, email) and at most one group membership per linked user.
const schema = `
CREATE TABLE IF NOT EXISTS groups (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	owner_user_id TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS group_members (
	id           TEXT PRIMARY KEY,
	group_id     TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
	user_id      TEXT,
	display_name TEXT NOT NULL,
	email        TEXT NOT NULL,
	role         TEXT NOT NULL,
	joined_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_group_members_group
	ON group_members (group_id, joined_at);
CREATE UNIQUE INDEX IF NOT EXISTS idx_group_members_user
	ON group_members (user_id) WHERE user_id IS NOT NULL;

CREATE TABLE IF NOT EXISTS invitations (
	id                TEXT PRIMARY KEY,
	group_id          TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
	inviter_member_id TEXT NOT NULL,
	email             TEXT NOT NULL,
	role              TEXT NOT NULL,
	token             TEXT NOT NULL UNIQUE,
	status            TEXT NOT NULL,
	message           TEXT NOT NULL DEFAULT '',
	expires_at        TIMESTAMPTZ NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_invitations_pending
	ON invitations (group_id, lower(email)) WHERE status = 'PENDING';

CREATE TABLE IF NOT EXISTS invite_links (
	id                TEXT PRIMARY KEY,
	group_id          TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
	creator_member_id TEXT NOT NULL,
	token             TEXT NOT NULL UNIQUE,
	role              TEXT NOT NULL,
	max_uses          INTEGER,
	uses              INTEGER NOT NULL DEFAULT 0,
	expires_at        TIMESTAMPTZ NOT NULL,
	is_active         BOOLEAN NOT NULL DEFAULT TRUE,
	created_at        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_invite_links_group
	ON invite_links (group_id);
`

// NewPostgres opens the Postgres connection, applies the schema, and hooks
// the pool into the fx lifecycle.
func NewPostgres(lc fx.Lifecycle, cfg *config.Config) (*PostgresDB, error) {
	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, err
	}

	log.Println("Connected to Postgres!")

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Println("Closing Postgres pool...")
			return db.Close()
		},
	})

	return &PostgresDB{DB: db}, nil
}
