package http

import (
	"encoding/json"
	"net/http"

	"github.com/lodgeline/lodgeline/internal/team/domain"
	"github.com/lodgeline/lodgeline/internal/team/service"
	"github.com/lodgeline/lodgeline/pkg/httpx"
)

type InvitesHandler struct {
	InvitesService *service.InvitesService
}

// HandleCreate godoc
//
//	@Summary		Create Invitation Endpoint
//	@Description	Issues a pending invitation for an email and role. Owner-only. At most one live pending
//	@Description	invitation exists per email; a stale pending invitation is expired and replaced.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		InviteCreateRequest		true	"Invitation request"
//	@Success		201		{object}	InviteCreateResponse	"invitation, message"
//	@Failure		400		{object}	httpx.ErrorResponse		"error"
//	@Failure		403		{object}	httpx.ErrorResponse		"error"
//	@Security		BearerAuth
//	@Router			/members/invite [post].
func (h *InvitesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p := participantFrom(r.Context())

	var req InviteCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	// The permission check precedes body-shape validation so non-owners get
	// 403 regardless of what they submitted.
	if !p.IsOwner() {
		writeServiceError(w, r, service.ErrForbidden)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "A valid email and role are required")
		return
	}

	sendEmail := req.SendEmail == nil || *req.SendEmail

	inv, err := h.InvitesService.Create(r.Context(), p, req.Email, domain.Role(req.Role), sendEmail)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, InviteCreateResponse{
		Invitation: toInvitationResponse(inv, h.InvitesService.NowUTC()),
		Message:    "Invitation created",
	})
}

// HandleList godoc
//
//	@Summary		List Invitations Endpoint
//	@Description	Lists the workspace's pending invitations, newest first, each with a computed is_expired flag.
//	@Description	Listing never changes invitation state.
//	@Tags			Invitations
//	@Produce		json
//	@Success		200	{object}	InvitationsResponse	"invitations"
//	@Failure		403	{object}	httpx.ErrorResponse	"error"
//	@Security		BearerAuth
//	@Router			/members/invitations [get].
func (h *InvitesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	p := participantFrom(r.Context())

	invitations, err := h.InvitesService.List(r.Context(), p)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	now := h.InvitesService.NowUTC()
	out := make([]InvitationResponse, 0, len(invitations))
	for _, inv := range invitations {
		out = append(out, toInvitationResponse(inv, now))
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, InvitationsResponse{Invitations: out})
}

// HandleCancel godoc
//
//	@Summary		Cancel Invitation Endpoint
//	@Description	Cancels a pending invitation. Cancelling an already-consumed or unknown invitation succeeds
//	@Description	without effect.
//	@Tags			Invitations
//	@Produce		json
//	@Param			id	path		string				true	"Invitation id"
//	@Success		200	{object}	SuccessResponse		"success, message"
//	@Failure		403	{object}	httpx.ErrorResponse	"error"
//	@Security		BearerAuth
//	@Router			/members/invite/{id} [delete].
func (h *InvitesHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	p := participantFrom(r.Context())

	if err := h.InvitesService.Cancel(r.Context(), p, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Invitation cancelled",
	})
}

// HandleResend godoc
//
//	@Summary		Resend Invitation Endpoint
//	@Description	Regenerates the code and extends the expiry of a pending invitation. The link token is
//	@Description	preserved so previously shared URLs keep working.
//	@Tags			Invitations
//	@Produce		json
//	@Param			id	path		string				true	"Invitation id"
//	@Success		200	{object}	ResendResponse		"success, message, invitation_code, expires_at"
//	@Failure		403	{object}	httpx.ErrorResponse	"error"
//	@Failure		404	{object}	httpx.ErrorResponse	"error"
//	@Security		BearerAuth
//	@Router			/members/invite/{id}/resend [post].
func (h *InvitesHandler) HandleResend(w http.ResponseWriter, r *http.Request) {
	p := participantFrom(r.Context())

	inv, err := h.InvitesService.Resend(r.Context(), p, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, ResendResponse{
		Success:        true,
		Message:        "Invitation resent",
		InvitationCode: inv.Code,
		ExpiresAt:      inv.ExpiresAt,
	})
}
