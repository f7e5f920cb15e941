package http

import (
	"net/http"

	"github.com/lodgeline/lodgeline/internal/team/service"
	"github.com/lodgeline/lodgeline/pkg/httpx"
)

// ValidateHandler serves the public invitation previews used by join pages.
// No authentication; responses carry only tenant display metadata. These
// reads never persist expiry, that happens on join attempts only.
type ValidateHandler struct {
	InvitesService *service.InvitesService
}

// HandleToken godoc
//
//	@Summary		Validate Invitation By Token Endpoint
//	@Description	Checks a link token and returns the invitation preview when it is still redeemable,
//	@Description	or the specific reason it is not.
//	@Tags			Invitations
//	@Produce		json
//	@Param			token	path		string				true	"Invitation token"
//	@Success		200		{object}	ValidateResponse	"valid, email, role, tenant_id, tenant_name, tenant_logo"
//	@Failure		400		{object}	httpx.ErrorResponse	"error"
//	@Failure		404		{object}	httpx.ErrorResponse	"error"
//	@Router			/members/invitation/{token} [get].
func (h *ValidateHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	preview, err := h.InvitesService.ValidateToken(r.Context(), r.PathValue("token"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writePreview(w, preview)
}

// HandleCode godoc
//
//	@Summary		Validate Invitation By Code Endpoint
//	@Description	Checks a code together with the invitee's email address. The code is matched
//	@Description	case-insensitively, as is the email.
//	@Tags			Invitations
//	@Produce		json
//	@Param			code	path		string				true	"Invitation code"
//	@Param			email	query		string				true	"Invitee email"
//	@Success		200		{object}	ValidateResponse	"valid, email, role, tenant_id, tenant_name, tenant_logo"
//	@Failure		400		{object}	httpx.ErrorResponse	"error"
//	@Failure		404		{object}	httpx.ErrorResponse	"error"
//	@Router			/members/invitation/code/{code} [get].
func (h *ValidateHandler) HandleCode(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	preview, err := h.InvitesService.ValidateCode(r.Context(), r.PathValue("code"), email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writePreview(w, preview)
}

func writePreview(w http.ResponseWriter, preview service.InvitePreview) {
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, ValidateResponse{
		Valid:      true,
		Email:      preview.Email,
		Role:       string(preview.Role),
		TenantID:   preview.TenantID,
		TenantName: preview.TenantName,
		TenantLogo: preview.TenantLogo,
	})
}
