package invitation

import (
	"context"
	"database/sql"
	"errors"

	"go-expense/internal/common/apperror"
	"go-expense/internal/database"
	"go-expense/internal/features/permission"

	"github.com/lib/pq"
)

const pgUniqueViolation = "23505"

type PostgresInvitationRepository struct {
	db *sql.DB
}

func NewPostgresInvitationRepository(db *database.PostgresDB) *PostgresInvitationRepository {
	return &PostgresInvitationRepository{db: db.DB}
}

func (r *PostgresInvitationRepository) Insert(ctx context.Context, inv *Invitation) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invitations (id, group_id, inviter_member_id, email, role, token, status, message, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		inv.ID, inv.GroupID, inv.InviterMemberID, inv.Email, string(inv.Role),
		inv.Token, string(inv.Status), inv.Message, inv.ExpiresAt, inv.CreatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
		return apperror.Conflict("a pending invitation already exists for this email")
	}
	if err != nil {
		return apperror.Internal("insert invitation", err)
	}
	return nil
}

func (r *PostgresInvitationRepository) FindByToken(ctx context.Context, token string) (*Invitation, error) {
	var inv Invitation
	var role, status string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, group_id, inviter_member_id, email, role, token, status, message, expires_at, created_at
		 FROM invitations WHERE token = $1`, token,
	).Scan(&inv.ID, &inv.GroupID, &inv.InviterMemberID, &inv.Email, &role,
		&inv.Token, &status, &inv.Message, &inv.ExpiresAt, &inv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Internal("find invitation", err)
	}
	inv.Role = permission.Role(role)
	inv.Status = InvitationStatus(status)
	return &inv, nil
}

func (r *PostgresInvitationRepository) FindPendingByGroup(ctx context.Context, groupID string) ([]Invitation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, group_id, inviter_member_id, email, role, token, status, message, expires_at, created_at
		 FROM invitations WHERE group_id = $1 AND status = $2 ORDER BY created_at`,
		groupID, string(StatusPending),
	)
	if err != nil {
		return nil, apperror.Internal("list invitations", err)
	}
	defer rows.Close()

	invitations := []Invitation{}
	for rows.Next() {
		var inv Invitation
		var role, status string
		if err := rows.Scan(&inv.ID, &inv.GroupID, &inv.InviterMemberID, &inv.Email, &role,
			&inv.Token, &status, &inv.Message, &inv.ExpiresAt, &inv.CreatedAt); err != nil {
			return nil, apperror.Internal("scan invitation", err)
		}
		inv.Role = permission.Role(role)
		inv.Status = InvitationStatus(status)
		invitations = append(invitations, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal("list invitations", err)
	}
	return invitations, nil
}

func (r *PostgresInvitationRepository) UpdateStatus(ctx context.Context, id string, from, to InvitationStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invitations SET status = $1 WHERE id = $2 AND status = $3`,
		string(to), id, string(from),
	)
	if err != nil {
		return false, apperror.Internal("update invitation status", err)
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}
