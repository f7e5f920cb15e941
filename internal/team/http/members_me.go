package http

import (
	"net/http"

	"github.com/lodgeline/lodgeline/pkg/httpx"
)

type MeHandler struct{}

// ServeHTTP godoc
//
//	@Summary		Current Member Endpoint
//	@Description	Returns the caller's workspace context: which tenant they belong to and with what role.
//	@Tags			Members
//	@Produce		json
//	@Success		200	{object}	MeResponse				"user_id, tenant_id, tenant_name, role, max_team_members"
//	@Failure		401	{object}	httpx.ErrorResponse	"error"
//	@Failure		404	{object}	httpx.ErrorResponse	"error"
//	@Security		BearerAuth
//	@Router			/members/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p := participantFrom(r.Context())

	httpx.WriteJSON(w, http.StatusOK, MeResponse{
		UserID:         p.User.ID,
		TenantID:       p.Tenant.ID,
		TenantName:     p.Tenant.DisplayName(),
		Role:           string(p.Role),
		MaxTeamMembers: p.Tenant.TeamCap(),
	})
}
