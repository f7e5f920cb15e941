package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/lodgeline/lodgeline/internal/team/service"
	"github.com/lodgeline/lodgeline/internal/team/store"
	"github.com/lodgeline/lodgeline/pkg/httpx"
	"github.com/lodgeline/lodgeline/pkg/slogx"

	_ "github.com/lodgeline/lodgeline/api/team" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store          store.Store
	AuthzService   *service.AuthzService
	MembersService *service.MembersService
	InvitesService *service.InvitesService
	JoinService    *service.JoinService
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerMembers()
	r.registerInvites()
	r.registerPublic()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Lodgeline Team Service API
//	@version		0.1.0
//	@description	Team membership and invitation management for Lodgeline workspaces: roster reads,
//	@description	role changes, member removal, invitation lifecycle and the public join flow.
//
//	@contact.name				Lodgeline Engineering
//	@contact.url				https://github.com/lodgeline/lodgeline
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer credential resolved against the user directory. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerMembers() {
	authn := ParticipantMiddleware(r.AuthzService)
	h := &MembersHandler{MembersService: r.MembersService}

	// Reads get a lenient limit, mutations a moderate one.
	r.Mux.Handle("GET /members/me",
		httpx.Chain(&MeHandler{},
			authn,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /members",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			authn,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PATCH /members/{userId}",
		httpx.Chain(http.HandlerFunc(h.HandleChangeRole),
			authn,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /members/{userId}",
		httpx.Chain(http.HandlerFunc(h.HandleRemove),
			authn,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerInvites() {
	authn := ParticipantMiddleware(r.AuthzService)
	h := &InvitesHandler{InvitesService: r.InvitesService}

	r.Mux.Handle("POST /members/invite",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			authn,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /members/invitations",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			authn,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("DELETE /members/invite/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleCancel),
			authn,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /members/invite/{id}/resend",
		httpx.Chain(http.HandlerFunc(h.HandleResend),
			authn,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerPublic() {
	validateHandler := &ValidateHandler{InvitesService: r.InvitesService}

	// Unauthenticated preview reads - moderate limit to slow code guessing.
	r.Mux.Handle("GET /members/invitation/{token}",
		httpx.Chain(http.HandlerFunc(validateHandler.HandleToken),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /members/invitation/code/{code}",
		httpx.Chain(http.HandlerFunc(validateHandler.HandleCode),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /members/join - strict limit by IP (public write endpoint that
	// can create accounts).
	r.Mux.Handle("POST /members/join",
		httpx.Chain(&JoinHandler{JoinService: r.JoinService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
