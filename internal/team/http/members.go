package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lodgeline/lodgeline/internal/team/domain"
	"github.com/lodgeline/lodgeline/internal/team/service"
	"github.com/lodgeline/lodgeline/pkg/httpx"
)

type MembersHandler struct {
	MembersService *service.MembersService
}

// HandleList godoc
//
//	@Summary		Team Roster Endpoint
//	@Description	Lists active and pending team members ordered by join time, enriched with directory profiles.
//	@Description	Accountants may not read the roster.
//	@Tags			Members
//	@Produce		json
//	@Success		200	{object}	MembersResponse		"members, total, max_members"
//	@Failure		401	{object}	httpx.ErrorResponse	"error"
//	@Failure		403	{object}	httpx.ErrorResponse	"error"
//	@Security		BearerAuth
//	@Router			/members [get].
func (h *MembersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	p := participantFrom(r.Context())

	list, err := h.MembersService.ListMembers(r.Context(), p)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	members := make([]MemberResponse, 0, len(list.Members))
	for _, entry := range list.Members {
		members = append(members, toMemberResponse(entry))
	}

	httpx.WriteJSON(w, http.StatusOK, MembersResponse{
		Members:    members,
		Total:      len(members),
		MaxMembers: list.MaxMembers,
	})
}

// HandleChangeRole godoc
//
//	@Summary		Change Member Role Endpoint
//	@Description	Moves an active member to a different role. Owner-only; the owner's own row cannot be changed.
//	@Tags			Members
//	@Accept			json
//	@Produce		json
//	@Param			userId	path		string				true	"Target user id"
//	@Param			request	body		RoleChangeRequest	true	"New role"
//	@Success		200		{object}	RoleChangeResponse	"success, message, new_role"
//	@Failure		400		{object}	httpx.ErrorResponse	"error"
//	@Failure		403		{object}	httpx.ErrorResponse	"error"
//	@Failure		404		{object}	httpx.ErrorResponse	"error"
//	@Security		BearerAuth
//	@Router			/members/{userId} [patch].
func (h *MembersHandler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	p := participantFrom(r.Context())
	targetUserID := r.PathValue("userId")

	var req RoleChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	err := h.MembersService.ChangeRole(r.Context(), p, targetUserID, domain.Role(req.Role))
	if err != nil {
		if errors.Is(err, service.ErrSelfChange) {
			httpx.WriteError(w, http.StatusBadRequest, "Cannot change your own role")
			return
		}
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, RoleChangeResponse{
		Success: true,
		Message: "Member role updated",
		NewRole: req.Role,
	})
}

// HandleRemove godoc
//
//	@Summary		Remove Member Endpoint
//	@Description	Soft deletes an active member from the workspace. Owner-only; self-removal is rejected.
//	@Tags			Members
//	@Produce		json
//	@Param			userId	path		string				true	"Target user id"
//	@Success		200		{object}	SuccessResponse		"success, message"
//	@Failure		400		{object}	httpx.ErrorResponse	"error"
//	@Failure		403		{object}	httpx.ErrorResponse	"error"
//	@Failure		404		{object}	httpx.ErrorResponse	"error"
//	@Security		BearerAuth
//	@Router			/members/{userId} [delete].
func (h *MembersHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	p := participantFrom(r.Context())
	targetUserID := r.PathValue("userId")

	if err := h.MembersService.Remove(r.Context(), p, targetUserID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Member removed from the workspace",
	})
}
