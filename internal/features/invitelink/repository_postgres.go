package invitelink

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go-expense/internal/common/apperror"
	"go-expense/internal/database"
	"go-expense/internal/features/permission"
)

type PostgresInviteLinkRepository struct {
	db *sql.DB
}

func NewPostgresInviteLinkRepository(db *database.PostgresDB) *PostgresInviteLinkRepository {
	return &PostgresInviteLinkRepository{db: db.DB}
}

func (r *PostgresInviteLinkRepository) Insert(ctx context.Context, l *InviteLink) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invite_links (id, group_id, creator_member_id, token, role, max_uses, uses, expires_at, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		l.ID, l.GroupID, l.CreatorMemberID, l.Token, string(l.Role),
		l.MaxUses, l.Uses, l.ExpiresAt, l.IsActive, l.CreatedAt,
	)
	if err != nil {
		return apperror.Internal("insert invite link", err)
	}
	return nil
}

func (r *PostgresInviteLinkRepository) FindByID(ctx context.Context, id string) (*InviteLink, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT id, group_id, creator_member_id, token, role, max_uses, uses, expires_at, is_active, created_at
		 FROM invite_links WHERE id = $1`, id,
	))
}

func (r *PostgresInviteLinkRepository) FindByToken(ctx context.Context, token string) (*InviteLink, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT id, group_id, creator_member_id, token, role, max_uses, uses, expires_at, is_active, created_at
		 FROM invite_links WHERE token = $1`, token,
	))
}

func (r *PostgresInviteLinkRepository) scanOne(row *sql.Row) (*InviteLink, error) {
	var l InviteLink
	var role string
	err := row.Scan(&l.ID, &l.GroupID, &l.CreatorMemberID, &l.Token, &role,
		&l.MaxUses, &l.Uses, &l.ExpiresAt, &l.IsActive, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Internal("scan invite link", err)
	}
	l.Role = permission.Role(role)
	return &l, nil
}

func (r *PostgresInviteLinkRepository) FindActiveByGroup(ctx context.Context, groupID string) ([]InviteLink, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, group_id, creator_member_id, token, role, max_uses, uses, expires_at, is_active, created_at
		 FROM invite_links WHERE group_id = $1 AND is_active ORDER BY created_at`,
		groupID,
	)
	if err != nil {
		return nil, apperror.Internal("list invite links", err)
	}
	defer rows.Close()

	links := []InviteLink{}
	for rows.Next() {
		var l InviteLink
		var role string
		if err := rows.Scan(&l.ID, &l.GroupID, &l.CreatorMemberID, &l.Token, &role,
			&l.MaxUses, &l.Uses, &l.ExpiresAt, &l.IsActive, &l.CreatedAt); err != nil {
			return nil, apperror.Internal("scan invite link", err)
		}
		l.Role = permission.Role(role)
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal("list invite links", err)
	}
	return links, nil
}

// Redeem increments uses in one conditional UPDATE, so concurrent
// redemptions serialize on the row and the count never passes max_uses.
func (r *PostgresInviteLinkRepository) Redeem(ctx context.Context, id string, now time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invite_links
		 SET uses = uses + 1
		 WHERE id = $1
		   AND is_active
		   AND expires_at > $2
		   AND (max_uses IS NULL OR uses < max_uses)`,
		id, now,
	)
	if err != nil {
		return false, apperror.Internal("redeem invite link", err)
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

func (r *PostgresInviteLinkRepository) Release(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE invite_links SET uses = uses - 1 WHERE id = $1 AND uses > 0`, id,
	)
	if err != nil {
		return apperror.Internal("release invite link use", err)
	}
	return nil
}

func (r *PostgresInviteLinkRepository) Deactivate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invite_links SET is_active = FALSE WHERE id = $1`, id,
	)
	if err != nil {
		return apperror.Internal("deactivate invite link", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("invite link not found")
	}
	return nil
}
