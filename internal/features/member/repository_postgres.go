package member

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

type PostgresMemberRepository struct {
	db *sql.DB
}

func NewPostgresMemberRepository(db *database.PostgresDB) *PostgresMemberRepository {
	return &PostgresMemberRepository{db: db.DB}
}

func (r *PostgresMemberRepository) Insert(ctx context.Context, m *GroupMember) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO group_members (id, group_id, user_id, display_name, email, role, joined_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.GroupID, m.UserID, m.DisplayName, m.Email, string(m.Role), m.JoinedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
		return apperror.Conflict("user already belongs to a group")
	}
	if err != nil {
		return apperror.Internal("insert member", err)
	}
	return nil
}

func (r *PostgresMemberRepository) FindByID(ctx context.Context, groupID, memberID string) (*GroupMember, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT id, group_id, user_id, display_name, email, role, joined_at
		 FROM group_members WHERE id = $1 AND group_id = $2`,
		memberID, groupID,
	))
}

func (r *PostgresMemberRepository) FindByUser(ctx context.Context, userID string) (*GroupMember, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT id, group_id, user_id, display_name, email, role, joined_at
		 FROM group_members WHERE user_id = $1`,
		userID,
	))
}

func (r *PostgresMemberRepository) scanOne(row *sql.Row) (*GroupMember, error) {
	var m GroupMember
	var role string
	err := row.Scan(&m.ID, &m.GroupID, &m.UserID, &m.DisplayName, &m.Email, &role, &m.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Internal("scan member", err)
	}
	m.Role = permission.Role(role)
	return &m, nil
}

func (r *PostgresMemberRepository) FindByGroup(ctx context.Context, groupID string) ([]GroupMember, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, group_id, user_id, display_name, email, role, joined_at
		 FROM group_members WHERE group_id = $1 ORDER BY joined_at`,
		groupID,
	)
	if err != nil {
		return nil, apperror.Internal("list members", err)
	}
	defer rows.Close()

	members := []GroupMember{}
	for rows.Next() {
		var m GroupMember
		var role string
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &m.DisplayName, &m.Email, &role, &m.JoinedAt); err != nil {
			return nil, apperror.Internal("scan member", err)
		}
		m.Role = permission.Role(role)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal("list members", err)
	}
	return members, nil
}

func (r *PostgresMemberRepository) UpdateRole(ctx context.Context, groupID, memberID string, role permission.Role) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE group_members SET role = $1 WHERE id = $2 AND group_id = $3`,
		string(role), memberID, groupID,
	)
	if err != nil {
		return apperror.Internal("update member role", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("member not found")
	}
	return nil
}

func (r *PostgresMemberRepository) Delete(ctx context.Context, groupID, memberID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM group_members WHERE id = $1 AND group_id = $2`,
		memberID, groupID,
	)
	if err != nil {
		return apperror.Internal("delete member", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("member not found")
	}
	return nil
}

func (r *PostgresMemberRepository) CountByGroup(ctx context.Context, groupID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM group_members WHERE group_id = $1`, groupID,
	).Scan(&n)
	if err != nil {
		return 0, apperror.Internal("count members", err)
	}
	return n, nil
}
