package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/lodgeline/lodgeline/internal/team/domain"
	"github.com/lodgeline/lodgeline/internal/team/service"
	"github.com/lodgeline/lodgeline/pkg/httpx"
)

type participantKey struct{}

// ParticipantMiddleware authenticates the request and resolves the caller's
// workspace context. Requests without a workspace are rejected here with a
// 404 so handlers can assume a fully populated participant.
func ParticipantMiddleware(authz *service.AuthzService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := authz.Resolve(r.Context(), bearerToken(r))
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			if !p.HasWorkspace() {
				httpx.WriteError(w, http.StatusNotFound, "No workspace found")
				return
			}

			ctx := context.WithValue(r.Context(), participantKey{}, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// participantFrom returns the resolved participant placed by
// ParticipantMiddleware. Only call from handlers behind that middleware.
func participantFrom(ctx context.Context) domain.Participant {
	p, _ := ctx.Value(participantKey{}).(domain.Participant)
	return p
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}
