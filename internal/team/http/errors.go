package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/lodgeline/lodgeline/internal/team/service"
	"github.com/lodgeline/lodgeline/pkg/httpx"
	"github.com/lodgeline/lodgeline/pkg/slogx"
)

// writeServiceError maps a service error onto the flat `{"error"}` body with
// the right status code. Handlers that need a more specific message for one
// of these errors intercept it before calling this.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		limitErr      *service.TeamLimitError
		pendingErr    *service.PendingInviteError
		notPendingErr *service.InviteNotPendingError
	)

	switch {
	case errors.Is(err, service.ErrUnauthorized):
		httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, service.ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, "You do not have permission to perform this action")
	case errors.Is(err, service.ErrInvalidEmail):
		httpx.WriteError(w, http.StatusBadRequest, "A valid email address is required")
	case errors.Is(err, service.ErrInvalidRole):
		httpx.WriteError(w, http.StatusBadRequest, "Invalid role")
	case errors.Is(err, service.ErrMemberNotFound):
		httpx.WriteError(w, http.StatusNotFound, "Member not found")
	case errors.Is(err, service.ErrSelfChange):
		httpx.WriteError(w, http.StatusBadRequest, "Cannot remove yourself from the workspace")
	case errors.Is(err, service.ErrOwnerImmutable):
		httpx.WriteError(w, http.StatusBadRequest, "The workspace owner cannot be modified")
	case errors.Is(err, service.ErrAlreadyMember):
		httpx.WriteError(w, http.StatusBadRequest, "This user is already a team member")
	case errors.Is(err, service.ErrInviteNotFound):
		httpx.WriteError(w, http.StatusNotFound, "Invitation not found")
	case errors.Is(err, service.ErrInviteExpired):
		httpx.WriteError(w, http.StatusBadRequest, "Invitation has expired")
	case errors.Is(err, service.ErrInviteConflict):
		httpx.WriteError(w, http.StatusConflict, "Invitation has already been used")
	case errors.As(err, &limitErr):
		httpx.WriteError(w, http.StatusBadRequest,
			fmt.Sprintf("Maximum team members reached (%d)", limitErr.Limit))
	case errors.As(err, &pendingErr):
		httpx.WriteError(w, http.StatusBadRequest, "An invitation is already pending for this email")
	case errors.As(err, &notPendingErr):
		httpx.WriteError(w, http.StatusBadRequest,
			fmt.Sprintf("Invitation already %s", notPendingErr.Status))
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}
