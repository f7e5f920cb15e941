package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/lodgeline/lodgeline/internal/team/domain"
)

type invitationsRepo struct {
	db dbtx
}

const invitationColumns = `id, tenant_id, email, role, invitation_token, invitation_code, invited_by,
	status, email_sent, expires_at, accepted_at, accepted_by_user_id, created_at, updated_at`

func scanInvitation(row interface{ Scan(...any) error }) (domain.Invitation, error) {
	var (
		inv        domain.Invitation
		acceptedAt sql.NullTime
		acceptedBy sql.NullString
	)
	err := row.Scan(
		&inv.ID,
		&inv.TenantID,
		&inv.Email,
		&inv.Role,
		&inv.Token,
		&inv.Code,
		&inv.InvitedBy,
		&inv.Status,
		&inv.EmailSent,
		&inv.ExpiresAt,
		&acceptedAt,
		&acceptedBy,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	inv.AcceptedAt = mapNullTimePtr(acceptedAt)
	inv.AcceptedBy = mapNullString(acceptedBy)
	return inv, nil
}

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	now := time.Now().UTC()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}
	if inv.UpdatedAt.IsZero() {
		inv.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO member_invitations (`+invitationColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID,
		inv.TenantID,
		inv.Email,
		inv.Role,
		inv.Token,
		inv.Code,
		inv.InvitedBy,
		inv.Status,
		inv.EmailSent,
		inv.ExpiresAt,
		mapOptionalTime(inv.AcceptedAt),
		mapStringNull(inv.AcceptedBy),
		inv.CreatedAt,
		inv.UpdatedAt,
	)
	return err
}

func (r *invitationsRepo) GetInvitationByID(ctx context.Context, id, tenantID string) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM member_invitations WHERE id = ? AND tenant_id = ?`,
		id, tenantID)
	return scanInvitation(row)
}

func (r *invitationsRepo) GetInvitationByToken(ctx context.Context, token string) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM member_invitations WHERE invitation_token = ?`, token)
	return scanInvitation(row)
}

func (r *invitationsRepo) GetInvitationByCode(ctx context.Context, code, email string) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM member_invitations
		 WHERE invitation_code = ? AND LOWER(email) = LOWER(?)
		 ORDER BY created_at DESC LIMIT 1`,
		code, email)
	return scanInvitation(row)
}

func (r *invitationsRepo) GetPendingInvitationByEmail(ctx context.Context, tenantID, email string) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM member_invitations
		 WHERE tenant_id = ? AND LOWER(email) = LOWER(?) AND status = ?
		 ORDER BY created_at DESC LIMIT 1`,
		tenantID, email, domain.InvitationPending)
	return scanInvitation(row)
}

func (r *invitationsRepo) ListPendingInvitations(ctx context.Context, tenantID string) ([]domain.Invitation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+invitationColumns+` FROM member_invitations
		 WHERE tenant_id = ? AND status = ?
		 ORDER BY created_at DESC`,
		tenantID, domain.InvitationPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

func (r *invitationsRepo) MarkInvitationExpired(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE member_invitations SET status = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		domain.InvitationExpired, time.Now().UTC(), id, domain.InvitationPending)
	return err
}

func (r *invitationsRepo) CancelInvitation(ctx context.Context, id, tenantID string) error {
	// Scoped to (id, tenant, pending); zero rows affected is fine.
	_, err := r.db.ExecContext(ctx,
		`UPDATE member_invitations SET status = ?, updated_at = ?
		 WHERE id = ? AND tenant_id = ? AND status = ?`,
		domain.InvitationCancelled, time.Now().UTC(), id, tenantID, domain.InvitationPending)
	return err
}

func (r *invitationsRepo) RefreshInvitation(ctx context.Context, id, tenantID, code string, expiresAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE member_invitations SET invitation_code = ?, expires_at = ?, updated_at = ?
		 WHERE id = ? AND tenant_id = ? AND status = ?`,
		code, expiresAt, time.Now().UTC(), id, tenantID, domain.InvitationPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *invitationsRepo) AcceptInvitation(ctx context.Context, id, userID string, at time.Time) (bool, error) {
	// Conditional update: only one request can move pending → accepted.
	res, err := r.db.ExecContext(ctx,
		`UPDATE member_invitations
		 SET status = ?, accepted_at = ?, accepted_by_user_id = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		domain.InvitationAccepted, at, userID, at, id, domain.InvitationPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *invitationsRepo) MarkInvitationEmailSent(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE member_invitations SET email_sent = 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id)
	return err
}

func (r *invitationsRepo) DeleteTerminalInvitationsBefore(ctx context.Context, cutoff time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM member_invitations WHERE status != ? AND updated_at < ?`,
		domain.InvitationPending, cutoff)
	return err
}
