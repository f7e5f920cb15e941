package service

import (
	"context"

	"github.com/lodgeline/lodgeline/internal/team/domain"
	"github.com/lodgeline/lodgeline/pkg/slogx"
)

// InviteEmail is everything a mail template needs to render an invitation.
type InviteEmail struct {
	To            string
	WorkspaceName string
	InviterName   string
	Role          domain.Role
	Token         string
	Code          string
}

// Mailer delivers invitation emails. Delivery is best effort: a failure is
// logged and recorded on the invitation, never surfaced to the inviter.
type Mailer interface {
	SendInvite(ctx context.Context, email InviteEmail) error
}

// LogMailer writes the invitation to the log instead of sending mail. It is
// the default when no mail provider is configured, which keeps local and
// standalone deployments functional.
type LogMailer struct{}

func (LogMailer) SendInvite(ctx context.Context, email InviteEmail) error {
	slogx.FromContext(ctx).Info("invitation email (log mailer)",
		"to", email.To,
		"workspace", email.WorkspaceName,
		"role", string(email.Role),
		"code", email.Code,
	)
	return nil
}
