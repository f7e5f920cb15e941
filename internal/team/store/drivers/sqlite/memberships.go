package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/lodgeline/lodgeline/internal/team/domain"
)

type membershipsRepo struct {
	db dbtx
}

const membershipColumns = `id, tenant_id, user_id, role, status, invited_by, invited_at, joined_at, created_at, updated_at`

func scanMembership(row interface{ Scan(...any) error }) (domain.Membership, error) {
	var (
		m        domain.Membership
		joinedAt sql.NullTime
	)
	err := row.Scan(
		&m.ID,
		&m.TenantID,
		&m.UserID,
		&m.Role,
		&m.Status,
		&m.InvitedBy,
		&m.InvitedAt,
		&joinedAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return domain.Membership{}, mapNotFound(err)
	}
	m.JoinedAt = mapNullTimePtr(joinedAt)
	return m, nil
}

func (r *membershipsRepo) GetMembership(ctx context.Context, tenantID, userID string) (domain.Membership, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM tenant_members WHERE tenant_id = ? AND user_id = ?`,
		tenantID, userID)
	return scanMembership(row)
}

func (r *membershipsRepo) GetActiveMembershipByUser(ctx context.Context, userID string) (domain.Membership, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM tenant_members WHERE user_id = ? AND status = ? LIMIT 1`,
		userID, domain.MembershipActive)
	return scanMembership(row)
}

func (r *membershipsRepo) ListTeamMembers(ctx context.Context, tenantID string) ([]domain.Membership, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+membershipColumns+` FROM tenant_members
		 WHERE tenant_id = ? AND status IN (?, ?)
		 ORDER BY joined_at IS NULL, joined_at ASC`,
		tenantID, domain.MembershipActive, domain.MembershipPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *membershipsRepo) CountActiveMembers(ctx context.Context, tenantID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tenant_members WHERE tenant_id = ? AND status = ? AND role != ?`,
		tenantID, domain.MembershipActive, domain.RoleOwner).Scan(&count)
	return count, err
}

func (r *membershipsRepo) CreateMembership(ctx context.Context, m domain.Membership) error {
	now := time.Now().UTC()
	if m.InvitedAt.IsZero() {
		m.InvitedAt = now
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tenant_members (`+membershipColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID,
		m.TenantID,
		m.UserID,
		m.Role,
		m.Status,
		m.InvitedBy,
		m.InvitedAt,
		mapOptionalTime(m.JoinedAt),
		m.CreatedAt,
		m.UpdatedAt,
	)
	return err
}

func (r *membershipsRepo) UpdateMembershipRole(ctx context.Context, tenantID, userID string, role domain.Role) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tenant_members SET role = ?, updated_at = ?
		 WHERE tenant_id = ? AND user_id = ? AND status = ?`,
		role, time.Now().UTC(), tenantID, userID, domain.MembershipActive)
	return err
}

func (r *membershipsRepo) UpdateMembershipStatus(ctx context.Context, tenantID, userID string, status domain.MembershipStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tenant_members SET status = ?, updated_at = ?
		 WHERE tenant_id = ? AND user_id = ?`,
		status, time.Now().UTC(), tenantID, userID)
	return err
}

func (r *membershipsRepo) ReactivateMembership(ctx context.Context, tenantID, userID string, role domain.Role, joinedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tenant_members SET status = ?, role = ?, joined_at = ?, updated_at = ?
		 WHERE tenant_id = ? AND user_id = ?`,
		domain.MembershipActive, role, joinedAt, time.Now().UTC(), tenantID, userID)
	return err
}
