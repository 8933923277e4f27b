package backend

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/DNBN-rft/dnbn-f-sub000/internal/logger"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/token"
)

// Backend bundles the router with the hooks tests and the dev server use.
type Backend struct {
	sessions *Sessions
	hits     *Hits
	router   chi.Router
}

// New builds the backend serving realms (e.g. "admin", "store").
func New(secret string, accessTTL time.Duration, secureCookies bool, logger *logger.Logger, realms ...string) *Backend {
	manager := token.NewJWT(secret, accessTTL)
	sessions := NewSessions(manager, NewRefreshTokenStore(), manager.RefreshTTL(), logger)
	ctxMgr := NewContextManager()
	h := NewHandler(sessions, ctxMgr, manager.AccessTTL(), manager.RefreshTTL(), secureCookies, logger)
	authenticate := NewAuthenticate(sessions, ctxMgr, logger)

	b := &Backend{sessions: sessions, hits: NewHits()}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(b.hits.Handler)

	allowed := make(map[string]bool, len(realms))
	for _, realm := range realms {
		allowed[realm] = true
	}

	r.Route("/{realm}", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				if !allowed[chi.URLParam(req, "realm")] {
					writeError(w, http.StatusNotFound, "unknown realm")
					return
				}
				next.ServeHTTP(w, req)
			})
		})
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(authenticate.Handler)
			r.Get("/auth", h.Auth)
			r.HandleFunc("/echo", h.Echo)
		})
	})

	b.router = r
	return b
}

func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.router.ServeHTTP(w, r)
}

// ExpireAccess invalidates every access token issued so far.
func (b *Backend) ExpireAccess() {
	b.sessions.ExpireAccess()
}

// Hits returns how many times "METHOD path" was served.
func (b *Backend) Hits(call string) int {
	return b.hits.Count(call)
}
