package group

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go-expense/internal/common/apperror"
	"go-expense/internal/database"
)

type PostgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *database.PostgresDB) *PostgresGroupRepository {
	return &PostgresGroupRepository{db: db.DB}
}

func (r *PostgresGroupRepository) Insert(ctx context.Context, g *Group) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO groups (id, name, description, owner_user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		g.ID, g.Name, g.Description, g.OwnerUserID, g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		return apperror.Internal("insert group", err)
	}
	return nil
}

func (r *PostgresGroupRepository) FindByID(ctx context.Context, id string) (*Group, error) {
	var g Group
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, owner_user_id, created_at, updated_at
		 FROM groups WHERE id = $1`, id,
	).Scan(&g.ID, &g.Name, &g.Description, &g.OwnerUserID, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Internal("find group", err)
	}
	return &g, nil
}

func (r *PostgresGroupRepository) UpdateFields(ctx context.Context, id string, name, description *string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE groups
		 SET name = COALESCE($1, name),
		     description = COALESCE($2, description),
		     updated_at = $3
		 WHERE id = $4`,
		name, description, time.Now(), id,
	)
	if err != nil {
		return apperror.Internal("update group", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("group not found")
	}
	return nil
}

// DeleteCascade relies on the ON DELETE CASCADE foreign keys, so the whole
// cascade is one atomic statement.
func (r *PostgresGroupRepository) DeleteCascade(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return apperror.Internal("delete group", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("group not found")
	}
	return nil
}
