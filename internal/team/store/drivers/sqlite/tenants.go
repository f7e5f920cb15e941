package sqlite

import (
	"context"
	"time"

	"github.com/lodgeline/lodgeline/internal/team/domain"
)

type tenantsRepo struct {
	db dbtx
}

const tenantColumns = `id, name, business_name, logo_url, owner_user_id, max_team_members, created_at, updated_at`

func scanTenant(row interface{ Scan(...any) error }) (domain.Tenant, error) {
	var t domain.Tenant
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.BusinessName,
		&t.LogoURL,
		&t.OwnerUserID,
		&t.MaxTeamMembers,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return domain.Tenant{}, mapNotFound(err)
	}
	return t, nil
}

func (r *tenantsRepo) GetTenantByID(ctx context.Context, id string) (domain.Tenant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = ?`, id)
	return scanTenant(row)
}

func (r *tenantsRepo) GetTenantByOwner(ctx context.Context, ownerUserID string) (domain.Tenant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE owner_user_id = ?`, ownerUserID)
	return scanTenant(row)
}

func (r *tenantsRepo) CreateTenant(ctx context.Context, t domain.Tenant) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tenants (`+tenantColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.Name,
		t.BusinessName,
		t.LogoURL,
		t.OwnerUserID,
		t.MaxTeamMembers,
		t.CreatedAt,
		t.UpdatedAt,
	)
	return err
}
