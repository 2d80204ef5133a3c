package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hms-api/internal/model"
)

func (r *rbacRepository) GetRoleByName(ctx context.Context, name string) (*model.Role, error) {
	query := `
		SELECT id, name
		FROM roles
		WHERE lower(name) = lower($1)
	`
	var role model.Role
	if err := sqlx.GetContext(ctx, r.conn(ctx), &role, query, name); err != nil {
		return nil, fmt.Errorf("failed to get role %q: %w", name, mapError(err))
	}
	return &role, nil
}

func (r *rbacRepository) ListRoles(ctx context.Context) ([]*model.Role, error) {
	roles := []*model.Role{}
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &roles, `SELECT id, name FROM roles ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

func (r *rbacRepository) ListAccountRoles(ctx context.Context, accountID uuid.UUID) ([]*model.Role, error) {
	query := `
		SELECT r.id, r.name
		FROM roles r
		JOIN account_roles ar ON ar.role_id = r.id
		WHERE ar.account_id = $1
		ORDER BY r.name
	`
	roles := []*model.Role{}
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &roles, query, accountID); err != nil {
		return nil, fmt.Errorf("failed to list account roles: %w", err)
	}
	return roles, nil
}

func (r *rbacRepository) GrantRole(ctx context.Context, accountID, roleID uuid.UUID) error {
	query := `
		INSERT INTO account_roles (account_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	if _, err := r.conn(ctx).ExecContext(ctx, query, accountID, roleID); err != nil {
		return fmt.Errorf("failed to grant role: %w", err)
	}
	return nil
}

func (r *rbacRepository) RevokeRole(ctx context.Context, accountID, roleID uuid.UUID) (int64, error) {
	query := `DELETE FROM account_roles WHERE account_id = $1 AND role_id = $2`

	result, err := r.conn(ctx).ExecContext(ctx, query, accountID, roleID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke role: %w", err)
	}
	return rowsAffected(result)
}

func (r *rbacRepository) RevokeAllRoles(ctx context.Context, accountID uuid.UUID) (int64, error) {
	result, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM account_roles WHERE account_id = $1`, accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke roles: %w", err)
	}
	return rowsAffected(result)
}
