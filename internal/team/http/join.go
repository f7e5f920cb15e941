package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lodgeline/lodgeline/internal/team/service"
	"github.com/lodgeline/lodgeline/pkg/httpx"
)

type JoinHandler struct {
	JoinService *service.JoinService
}

// ServeHTTP godoc
//
//	@Summary		Join Workspace Endpoint
//	@Description	Redeems an invitation by token or by code plus email, creating a directory account when the
//	@Description	invited email has none. A password of at least 6 characters is required for new accounts;
//	@Description	a missing one is signalled with requires_account_creation so the client can prompt for it.
//	@Tags			Join
//	@Accept			json
//	@Produce		json
//	@Param			request	body		JoinRequest			true	"Join request"
//	@Success		200		{object}	JoinResponse		"success, tenant_id, user_id, role, is_new_account"
//	@Failure		400		{object}	httpx.ErrorResponse	"error"
//	@Failure		404		{object}	httpx.ErrorResponse	"error"
//	@Failure		409		{object}	httpx.ErrorResponse	"error"
//	@Router			/members/join [post].
func (h *JoinHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Token == "" && (req.Code == "" || req.Email == "") {
		httpx.WriteError(w, http.StatusBadRequest, "Either token or code and email are required")
		return
	}

	result, err := h.JoinService.Join(r.Context(), service.JoinRequest{
		Token:    req.Token,
		Code:     req.Code,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrAccountCreationRequired) {
			httpx.WriteJSON(w, http.StatusBadRequest, JoinErrorResponse{
				Error:                   "A password of at least 6 characters is required to create your account",
				RequiresAccountCreation: true,
			})
			return
		}
		if errors.Is(err, service.ErrAlreadyMember) {
			httpx.WriteError(w, http.StatusBadRequest, "You are already a member of this workspace")
			return
		}
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, JoinResponse{
		Success:      true,
		TenantID:     result.TenantID,
		UserID:       result.UserID,
		Role:         string(result.Role),
		IsNewAccount: result.NewAccount,
	})
}
